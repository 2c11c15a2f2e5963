// Package respond converts command results into transport-neutral reply
// envelopes. Every envelope carries a text rendering, so text-only
// transports never receive an empty reply; errors are rendered with
// stable user-safe messages, never raw internal detail.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/keshon/server-banker/internal/command"
	"github.com/keshon/server-banker/internal/dispatch"
	"github.com/keshon/server-banker/internal/event"
	"github.com/keshon/server-banker/internal/ledger"
	"github.com/keshon/server-banker/internal/store"
)

// Envelope is the transport-neutral reply. Transport adapters render it
// further (plain message, JSON body, tool result).
type Envelope struct {
	Text       string `json:"text"`
	Structured any    `json:"structured,omitempty"`
	Success    bool   `json:"success"`
	ErrorKind  string `json:"error,omitempty"`
}

// Format renders one command result.
func Format(res command.Result) Envelope {
	if !res.Success {
		kind, text := describe(res.Err)
		return Envelope{Text: text, Success: false, ErrorKind: kind}
	}

	env := Envelope{Success: true}
	switch p := res.Payload.(type) {
	case nil:
		env.Text = "✅ done"
	case string:
		env.Text = p
	case fmt.Stringer:
		env.Text = p.String()
		env.Structured = p
	default:
		env.Structured = p
		if b, err := json.Marshal(p); err == nil {
			env.Text = string(b)
		} else {
			log.Printf("[WARN] Unrenderable payload %T: %v", p, err)
			env.Text = "✅ done"
		}
	}
	return env
}

// describe maps taxonomy errors onto stable, user-safe messages.
func describe(err error) (kind, text string) {
	var missing *event.MissingFieldError
	var unknown *command.UnknownCommandError
	var dup *command.DuplicateNameError
	var usage *command.UsageError

	switch {
	case err == nil:
		return "unknown", "🤷 something went wrong"
	case errors.As(err, &missing):
		return "missing_field", fmt.Sprintf("🧐 your request is missing %s", missing.Field)
	case errors.Is(err, event.ErrMalformedPayload):
		return "malformed_payload", "🧐 I could not make sense of that request"
	case errors.Is(err, command.ErrEmptyInput):
		return "empty_input", "🤨 you need to give me a command"
	case errors.As(err, &unknown):
		return "unknown_command", fmt.Sprintf("❓ no such command: %s", unknown.Name)
	case errors.As(err, &usage):
		return "usage", "📖 " + usage.Error()
	case errors.As(err, &dup):
		return "duplicate_name", "⚙️ command registry misconfigured"
	case errors.Is(err, dispatch.ErrHandlerTimeout):
		return "handler_timeout", "⏳ that took too long, try again"
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return "insufficient_funds", "💸 not enough coins"
	case errors.Is(err, ledger.ErrSameAccount):
		return "same_account", "🙃 you cannot do that with yourself"
	case errors.Is(err, ledger.ErrInvalidAmount):
		return "invalid_amount", "🤏 the amount must be positive"
	case errors.Is(err, ledger.ErrUnknownItem):
		return "unknown_item", "🔍 no such item"
	case errors.Is(err, ledger.ErrNotOwned):
		return "not_owned", "🎒 you do not own that item"
	case errors.Is(err, store.ErrConflict), errors.Is(err, store.ErrUnavailable):
		return "store_busy", "🏦 the vault is busy, try again in a moment"
	default:
		// Internal detail stays in the logs, never in the reply.
		log.Printf("[ERR] Unclassified command error: %v", err)
		return "internal", "🤷 something went wrong"
	}
}
