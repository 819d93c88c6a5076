package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Envelope schema version.
const Version = 1

const (
	TypePing  = "ping"
	TypeState = "state"
	TypeTheme = "theme"
)

// Event is the envelope written to the SSE stream. Seq is the view's
// selection counter at the time the event was produced, so a client can
// ignore anything older than what it already rendered.
type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	Seq       uint64          `json:"seq"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Encode builds the JSON envelope for one event. data may be nil.
func Encode(typ string, seq uint64, reqID string, data any) (string, error) {
	e := Event{
		Type:      typ,
		Version:   Version,
		Seq:       seq,
		At:        time.Now().UTC(),
		RequestID: reqID,
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return "", fmt.Errorf("encode %s event: %w", typ, err)
		}
		e.Data = raw
	}
	b, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func Parse(s string) (Event, error) {
	var e Event
	if err := json.Unmarshal([]byte(s), &e); err != nil {
		return Event{}, err
	}
	if e.Type == "" {
		return Event{}, errors.New("event without type")
	}
	return e, nil
}

// Decode unmarshals the payload into v.
func (e Event) Decode(v any) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("%s event has no data", e.Type)
	}
	return json.Unmarshal(e.Data, v)
}
