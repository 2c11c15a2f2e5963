// Package command holds the command parser, the handler registry, and
// the built-in command set. Handlers receive parsed arguments plus the
// scope they run under and compose their effects from ledger operations.
package command

import (
	"context"
	"strings"

	"github.com/keshon/server-banker/internal/ledger"
)

// Scope identifies where an invocation happened. Concurrency control and
// data isolation key off (ServerID, UserID).
type Scope struct {
	ServerID  string
	ChannelID string
	UserID    string
}

// Context carries everything a handler may touch during one invocation.
type Context struct {
	Ctx      context.Context
	Args     string
	Scope    Scope
	Ledger   *ledger.Ledger
	Registry *Registry
}

// Result is the dispatcher's verdict on one invocation. Payload is a
// structured value the formatter renders; Err carries the taxonomy error
// when Success is false.
type Result struct {
	Success bool
	Payload any
	Err     error
}

// Command is the unit of logic bound to a command name.
type Command interface {
	Name() string
	Description() string
	Aliases() []string
	Category() string
	Run(ctx *Context) (any, error)
}

// Middleware wraps a command with cross-cutting behavior.
type Middleware func(Command) Command

// ApplyMiddlewares wraps cmd, innermost first.
func ApplyMiddlewares(cmd Command, mws ...Middleware) Command {
	for _, mw := range mws {
		cmd = mw(cmd)
	}
	return cmd
}

// wrapped delegates identity to the inner command and behavior to Wrap.
type wrapped struct {
	Command
	wrap func(ctx *Context) (any, error)
}

func (w *wrapped) Run(ctx *Context) (any, error) {
	return w.wrap(ctx)
}

// fields splits handler arguments on whitespace runs. Handlers that need
// positional arguments use this; the parser deliberately leaves Args raw.
func fields(args string) []string {
	return strings.Fields(args)
}

// stripMention reduces a Discord-style mention like <@123> or <@!123> to
// the bare user id. Plain ids pass through unchanged.
func stripMention(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "<@") && strings.HasSuffix(s, ">") {
		s = strings.TrimSuffix(strings.TrimPrefix(s, "<@"), ">")
		s = strings.TrimPrefix(s, "!")
	}
	return s
}
