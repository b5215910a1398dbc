package config

import "time"

// FeedConfig is the root configuration for a feed server instance.
type FeedConfig struct {
	Instance InstanceConfig `yaml:"instance"`
	Server   ServerConfig   `yaml:"server"`
	Ticks    TicksConfig    `yaml:"ticks"`
	Client   ClientConfig   `yaml:"client"`
}

// InstanceConfig identifies this feed server.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// ServerConfig holds HTTP listener and per-connection settings.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	WSPath         string        `yaml:"ws_path"`
	WelcomeMessage string        `yaml:"welcome_message"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	SendBuffer     int           `yaml:"send_buffer"`
	MaxMessageSize int64         `yaml:"max_message_size"`
}

// TicksConfig holds tick engine cadence settings.
type TicksConfig struct {
	Seed             int64         `yaml:"seed"` // 0 means time-seeded
	StockInterval    time.Duration `yaml:"stock_interval"`
	IndexInterval    time.Duration `yaml:"index_interval"`
	DepthInterval    time.Duration `yaml:"depth_interval"`
	MinStocksPerTick int           `yaml:"min_stocks_per_tick"`
	MaxStocksPerTick int           `yaml:"max_stocks_per_tick"`
	UpdateBufferSize int           `yaml:"update_buffer_size"`
}

// ClientConfig holds feed client settings, used by the smoke client.
type ClientConfig struct {
	URL            string        `yaml:"url"`
	ReconnectDelay time.Duration `yaml:"reconnect_delay"`
	DialTimeout    time.Duration `yaml:"dial_timeout"`
	LogLimit       int           `yaml:"log_limit"`
}
