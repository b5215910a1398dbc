// Package protocol defines the JSON wire format of the feed: the tagged
// envelopes the server emits and the commands clients send. One JSON object
// per text frame, discriminated by the "type" field.
package protocol

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/nsesim/marketfeed/internal/model"
)

// Server → client envelope types.
const (
	TypeConnected    = "CONNECTED"
	TypeSnapshot     = "SNAPSHOT"
	TypeQuote        = "QUOTE"
	TypeIndex        = "INDEX"
	TypeDepth        = "DEPTH"
	TypeSubscribed   = "SUBSCRIBED"
	TypeUnsubscribed = "UNSUBSCRIBED"
	TypePong         = "PONG"
)

// Client → server command types.
const (
	TypeSubscribe   = "SUBSCRIBE"
	TypeUnsubscribe = "UNSUBSCRIBE"
	TypePing        = "PING"
)

// ErrBadCommand reports an inbound frame that is not a recognized command.
var ErrBadCommand = errors.New("malformed command")

// Welcome is the CONNECTED envelope, sent once immediately after open.
type Welcome struct {
	Type             string   `json:"type"`
	Message          string   `json:"message"`
	ServerTime       int64    `json:"serverTime"`
	AvailableSymbols []string `json:"availableSymbols"`
	AvailableIndices []string `json:"availableIndices"`
}

// QuoteEnvelope carries a full QuoteRecord, as SNAPSHOT at connect time or
// QUOTE on a live tick.
type QuoteEnvelope struct {
	Type      string            `json:"type"`
	Symbol    string            `json:"symbol"`
	Exchange  string            `json:"exchange"`
	Timestamp int64             `json:"timestamp"`
	Data      model.QuoteRecord `json:"data"`
}

// IndexEnvelope carries a full IndexRecord.
type IndexEnvelope struct {
	Type      string            `json:"type"`
	Symbol    string            `json:"symbol"`
	Timestamp int64             `json:"timestamp"`
	Data      model.IndexRecord `json:"data"`
}

// DepthEnvelope carries a depth-only update.
type DepthEnvelope struct {
	Type      string              `json:"type"`
	Symbol    string              `json:"symbol"`
	Timestamp int64               `json:"timestamp"`
	Data      model.DepthSnapshot `json:"data"`
}

// SubscriptionAck acknowledges SUBSCRIBE (with the full resulting set) or
// UNSUBSCRIBE (with the symbols that were removed).
type SubscriptionAck struct {
	Type    string   `json:"type"`
	Symbols []string `json:"symbols"`
}

// Pong answers a PING.
type Pong struct {
	Type string `json:"type"`
	TS   int64  `json:"ts"`
}

// Command is an inbound client frame.
type Command struct {
	Type    string   `json:"type"`
	Symbols []string `json:"symbols,omitempty"`
}

// ServerMessage is the generic decode target for client-side consumers: the
// envelope header plus the raw payload, deferred until the type is known.
type ServerMessage struct {
	Type             string          `json:"type"`
	Symbol           string          `json:"symbol,omitempty"`
	Exchange         string          `json:"exchange,omitempty"`
	Timestamp        int64           `json:"timestamp,omitempty"`
	Message          string          `json:"message,omitempty"`
	ServerTime       int64           `json:"serverTime,omitempty"`
	AvailableSymbols []string        `json:"availableSymbols,omitempty"`
	AvailableIndices []string        `json:"availableIndices,omitempty"`
	Symbols          []string        `json:"symbols,omitempty"`
	TS               int64           `json:"ts,omitempty"`
	Data             json.RawMessage `json:"data,omitempty"`
}

// Millis converts a time to wire-format Unix milliseconds.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

// DecodeCommand parses an inbound frame. SUBSCRIBE and UNSUBSCRIBE require a
// non-empty symbols list; anything else unrecognized is ErrBadCommand. The
// caller logs and drops bad frames, it never faults the connection.
func DecodeCommand(data []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return Command{}, err
	}

	switch cmd.Type {
	case TypeSubscribe, TypeUnsubscribe:
		if len(cmd.Symbols) == 0 {
			return Command{}, ErrBadCommand
		}
		return cmd, nil
	case TypePing:
		return cmd, nil
	default:
		return Command{}, ErrBadCommand
	}
}
