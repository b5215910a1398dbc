package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	yaml := `
instance:
  id: feed-dev
server:
  addr: ":9000"
  ws_path: /stream
ticks:
  stock_interval: 250ms
  seed: 42
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Instance.ID != "feed-dev" {
		t.Errorf("Instance.ID = %q, want %q", cfg.Instance.ID, "feed-dev")
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":9000")
	}
	if cfg.Ticks.StockInterval != 250*time.Millisecond {
		t.Errorf("Ticks.StockInterval = %v, want 250ms", cfg.Ticks.StockInterval)
	}
	if cfg.Ticks.Seed != 42 {
		t.Errorf("Ticks.Seed = %d, want 42", cfg.Ticks.Seed)
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_FEED_ADDR", ":7777")

	yaml := `
instance:
  id: feed-dev
server:
  addr: ${TEST_FEED_ADDR}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Addr != ":7777" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":7777")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	yaml := `
instance:
  id: feed-dev
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	// Check defaults were applied
	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Server.Addr = %q, want default %q", cfg.Server.Addr, DefaultAddr)
	}
	if cfg.Ticks.StockInterval != DefaultStockInterval {
		t.Errorf("Ticks.StockInterval = %v, want default %v", cfg.Ticks.StockInterval, DefaultStockInterval)
	}
	if cfg.Ticks.MaxStocksPerTick != DefaultMaxStocksPerTick {
		t.Errorf("Ticks.MaxStocksPerTick = %d, want default %d", cfg.Ticks.MaxStocksPerTick, DefaultMaxStocksPerTick)
	}
	if cfg.Client.ReconnectDelay != DefaultReconnectDelay {
		t.Errorf("Client.ReconnectDelay = %v, want default %v", cfg.Client.ReconnectDelay, DefaultReconnectDelay)
	}
}

func TestLoadWithDefaultsEmptyPath(t *testing.T) {
	cfg, err := LoadWithDefaults("")
	if err != nil {
		t.Fatalf("LoadWithDefaults(\"\") failed: %v", err)
	}
	if cfg.Instance.ID != DefaultInstanceID {
		t.Errorf("Instance.ID = %q, want default %q", cfg.Instance.ID, DefaultInstanceID)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	valid := func() FeedConfig {
		cfg := FeedConfig{}
		cfg.applyDefaults()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*FeedConfig)
		wantErr string
	}{
		{
			name:    "missing instance id",
			mutate:  func(c *FeedConfig) { c.Instance.ID = "" },
			wantErr: "instance.id is required",
		},
		{
			name:    "bad ws path",
			mutate:  func(c *FeedConfig) { c.Server.WSPath = "ws" },
			wantErr: `server.ws_path must start with /, got "ws"`,
		},
		{
			name:    "max below min",
			mutate:  func(c *FeedConfig) { c.Ticks.MinStocksPerTick = 6 },
			wantErr: "ticks.max_stocks_per_tick (5) cannot be below min_stocks_per_tick (6)",
		},
		{
			name:    "zero depth interval",
			mutate:  func(c *FeedConfig) { c.Ticks.DepthInterval = -time.Second },
			wantErr: "ticks.depth_interval must be > 0",
		},
		{
			name:    "valid config",
			mutate:  func(c *FeedConfig) {},
			wantErr: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() expected error containing %q, got nil", tt.wantErr)
				} else if err.Error() != tt.wantErr {
					t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}
