package command

import (
	"fmt"
	"log"
)

// UsageError tells the user how to invoke a command correctly. It is
// safe to render verbatim.
type UsageError struct {
	Usage string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("usage: %s", e.Usage)
}

// WithUserLog records the invoking user as known in the channel before
// the handler runs. Channel-scoped reads like the leaderboard only see
// users that passed through here.
func WithUserLog() Middleware {
	return func(cmd Command) Command {
		return &wrapped{Command: cmd, wrap: func(ctx *Context) (any, error) {
			if ctx.Scope.ChannelID != "" {
				if err := ctx.Ledger.LogChannelUser(ctx.Ctx, ctx.Scope.ServerID, ctx.Scope.ChannelID, ctx.Scope.UserID); err != nil {
					log.Printf("[WARN] Failed to log channel user %s: %v", ctx.Scope.UserID, err)
				}
			}
			return cmd.Run(ctx)
		}}
	}
}

// WithCommandLog logs every invocation with its scope.
func WithCommandLog() Middleware {
	return func(cmd Command) Command {
		return &wrapped{Command: cmd, wrap: func(ctx *Context) (any, error) {
			log.Printf("[INFO] Command %q invoked by %s in %s/%s", cmd.Name(), ctx.Scope.UserID, ctx.Scope.ServerID, ctx.Scope.ChannelID)
			return cmd.Run(ctx)
		}}
	}
}
