package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultInstanceID       = "feedserver-1"
	DefaultAddr             = ":8080"
	DefaultWSPath           = "/ws"
	DefaultWelcomeMessage   = "NSE Market Feed (DEV)"
	DefaultWriteTimeout     = 5 * time.Second
	DefaultSendBuffer       = 256
	DefaultMaxMessageSize   = 4096
	DefaultStockInterval    = 400 * time.Millisecond
	DefaultIndexInterval    = 1500 * time.Millisecond
	DefaultDepthInterval    = 800 * time.Millisecond
	DefaultMinStocksPerTick = 3
	DefaultMaxStocksPerTick = 5
	DefaultUpdateBufferSize = 1024
	DefaultClientURL        = "ws://localhost:8080/ws"
	DefaultReconnectDelay   = 2 * time.Second
	DefaultDialTimeout      = 5 * time.Second
	DefaultLogLimit         = 50
)

func (c *FeedConfig) applyDefaults() {
	if c.Instance.ID == "" {
		c.Instance.ID = DefaultInstanceID
	}

	// Server defaults
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.WSPath == "" {
		c.Server.WSPath = DefaultWSPath
	}
	if c.Server.WelcomeMessage == "" {
		c.Server.WelcomeMessage = DefaultWelcomeMessage
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Server.SendBuffer == 0 {
		c.Server.SendBuffer = DefaultSendBuffer
	}
	if c.Server.MaxMessageSize == 0 {
		c.Server.MaxMessageSize = DefaultMaxMessageSize
	}

	// Tick engine defaults
	if c.Ticks.StockInterval == 0 {
		c.Ticks.StockInterval = DefaultStockInterval
	}
	if c.Ticks.IndexInterval == 0 {
		c.Ticks.IndexInterval = DefaultIndexInterval
	}
	if c.Ticks.DepthInterval == 0 {
		c.Ticks.DepthInterval = DefaultDepthInterval
	}
	if c.Ticks.MinStocksPerTick == 0 {
		c.Ticks.MinStocksPerTick = DefaultMinStocksPerTick
	}
	if c.Ticks.MaxStocksPerTick == 0 {
		c.Ticks.MaxStocksPerTick = DefaultMaxStocksPerTick
	}
	if c.Ticks.UpdateBufferSize == 0 {
		c.Ticks.UpdateBufferSize = DefaultUpdateBufferSize
	}

	// Client defaults
	if c.Client.URL == "" {
		c.Client.URL = DefaultClientURL
	}
	if c.Client.ReconnectDelay == 0 {
		c.Client.ReconnectDelay = DefaultReconnectDelay
	}
	if c.Client.DialTimeout == 0 {
		c.Client.DialTimeout = DefaultDialTimeout
	}
	if c.Client.LogLimit == 0 {
		c.Client.LogLimit = DefaultLogLimit
	}
}
