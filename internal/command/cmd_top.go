package command

import (
	"fmt"
	"strings"

	"github.com/keshon/server-banker/internal/store"
)

// LeaderboardPayload lists channel balances, richest first.
type LeaderboardPayload struct {
	Accounts []store.BankAccount `json:"accounts"`
}

func (p LeaderboardPayload) String() string {
	if len(p.Accounts) == 0 {
		return "🏆 nobody here has any coins yet"
	}
	var b strings.Builder
	b.WriteString("🏆 richest in this channel:\n")
	for i, a := range p.Accounts {
		fmt.Fprintf(&b, "%d. <@%s> — %d coins\n", i+1, a.UserID, a.Balance)
	}
	return strings.TrimRight(b.String(), "\n")
}

type TopCommand struct{}

func (c *TopCommand) Name() string        { return "top" }
func (c *TopCommand) Description() string { return "Channel coin leaderboard" }
func (c *TopCommand) Aliases() []string   { return []string{"leaderboard"} }
func (c *TopCommand) Category() string    { return "🏦 Economy" }

func (c *TopCommand) Run(ctx *Context) (any, error) {
	if ctx.Scope.ChannelID == "" {
		return nil, &UsageError{Usage: "top — only works inside a channel"}
	}
	accounts, err := ctx.Ledger.ChannelBalances(ctx.Ctx, ctx.Scope.ServerID, ctx.Scope.ChannelID)
	if err != nil {
		return nil, err
	}
	return LeaderboardPayload{Accounts: accounts}, nil
}
