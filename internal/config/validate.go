package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *FeedConfig) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if !strings.HasPrefix(c.Server.WSPath, "/") {
		return fmt.Errorf("server.ws_path must start with /, got %q", c.Server.WSPath)
	}
	if c.Server.SendBuffer < 1 {
		return errors.New("server.send_buffer must be >= 1")
	}
	if c.Server.MaxMessageSize < 1 {
		return errors.New("server.max_message_size must be >= 1")
	}

	if c.Ticks.StockInterval <= 0 {
		return errors.New("ticks.stock_interval must be > 0")
	}
	if c.Ticks.IndexInterval <= 0 {
		return errors.New("ticks.index_interval must be > 0")
	}
	if c.Ticks.DepthInterval <= 0 {
		return errors.New("ticks.depth_interval must be > 0")
	}
	if c.Ticks.MinStocksPerTick < 1 {
		return errors.New("ticks.min_stocks_per_tick must be >= 1")
	}
	if c.Ticks.MaxStocksPerTick < c.Ticks.MinStocksPerTick {
		return fmt.Errorf("ticks.max_stocks_per_tick (%d) cannot be below min_stocks_per_tick (%d)",
			c.Ticks.MaxStocksPerTick, c.Ticks.MinStocksPerTick)
	}
	if c.Ticks.UpdateBufferSize < 1 {
		return errors.New("ticks.update_buffer_size must be >= 1")
	}

	if c.Client.ReconnectDelay <= 0 {
		return errors.New("client.reconnect_delay must be > 0")
	}
	if c.Client.LogLimit < 1 {
		return errors.New("client.log_limit must be >= 1")
	}

	return nil
}
