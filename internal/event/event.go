// Package event defines the canonical, transport-neutral representation
// of one inbound request. Every transport adapter maps its wire payload
// into an Event; everything past the normalizer consumes Events only.
package event

import (
	"errors"
	"fmt"
)

// Source tags which transport produced an event.
type Source string

const (
	SourceGateway Source = "gateway"
	SourceHTTP    Source = "http"
	SourceTool    Source = "tool"
)

// Type classifies the intent of an event.
type Type string

const (
	TypeCommand Type = "command"
	TypeEcho    Type = "echo"
	TypeSystem  Type = "system_event"
)

// ErrMalformedPayload is returned by transport adapters when a wire
// payload cannot be decoded at all.
var ErrMalformedPayload = errors.New("malformed payload")

// MissingFieldError reports a payload that decoded but lacks a required
// field.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing field %q", e.Field)
}

// Event is created once per inbound request and never mutated.
type Event struct {
	ServerID  string
	ChannelID string
	UserID    string
	RawInput  string
	Type      Type
	Source    Source
}

// Payload carries the transport-independent fields an adapter extracted
// from its wire format.
type Payload struct {
	ServerID  string
	ChannelID string
	UserID    string
	RawInput  string
}

// Normalize builds the canonical event for a payload. It rejects payloads
// missing server, user, or input, and never invents defaults for them.
// RawInput is preserved exactly; text normalization belongs to the parser.
func Normalize(p Payload, typ Type, src Source) (Event, error) {
	if p.ServerID == "" {
		return Event{}, &MissingFieldError{Field: "server_id"}
	}
	if p.UserID == "" {
		return Event{}, &MissingFieldError{Field: "user_id"}
	}
	if p.RawInput == "" {
		return Event{}, &MissingFieldError{Field: "raw_input"}
	}
	switch typ {
	case TypeCommand, TypeEcho, TypeSystem:
	default:
		return Event{}, fmt.Errorf("%w: unknown event type %q", ErrMalformedPayload, typ)
	}

	return Event{
		ServerID:  p.ServerID,
		ChannelID: p.ChannelID,
		UserID:    p.UserID,
		RawInput:  p.RawInput,
		Type:      typ,
		Source:    src,
	}, nil
}

// ParseType maps a wire-level event type string onto a Type.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeCommand, TypeEcho, TypeSystem:
		return Type(s), nil
	case "":
		return "", &MissingFieldError{Field: "event_type"}
	default:
		return "", fmt.Errorf("%w: unknown event type %q", ErrMalformedPayload, s)
	}
}
