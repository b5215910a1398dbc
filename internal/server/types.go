package server

import "time"

// Config holds feed server settings.
type Config struct {
	Addr           string        // Listen address
	WSPath         string        // WebSocket endpoint path
	WelcomeMessage string        // Free-text banner in the CONNECTED envelope
	WriteTimeout   time.Duration // Write deadline for outbound frames
	SendBuffer     int           // Per-connection outbound frame buffer
	MaxMessageSize int64         // Inbound frame size limit
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:           ":8080",
		WSPath:         "/ws",
		WelcomeMessage: "NSE Market Feed (DEV)",
		WriteTimeout:   5 * time.Second,
		SendBuffer:     256,
		MaxMessageSize: 4096,
	}
}
