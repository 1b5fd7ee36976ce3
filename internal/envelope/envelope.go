// Package envelope defines the application-level message exchanged with the
// relay. Every frame on the wire is one JSON object; pings are websocket
// control frames and never appear here.
package envelope

import (
	"encoding/json"
	"fmt"
)

// Type identifies the kind of message.
type Type string

// TypeClipboard is the only type the sync engine acts on. Frames carrying
// any other type decode fine and are ignored.
const TypeClipboard Type = "clipboard"

// Message is the wire envelope.
type Message struct {
	Type   Type   `json:"type"`
	Text   string `json:"text"`
	Source string `json:"source"`
}

// NewClipboard builds a clipboard envelope tagged with the sending host.
func NewClipboard(text, source string) *Message {
	return &Message{Type: TypeClipboard, Text: text, Source: source}
}

// Encode serialises the message to JSON.
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Decode deserialises a message from raw JSON bytes.
func Decode(b []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("envelope decode: %w", err)
	}
	return &m, nil
}
