package command

import (
	"fmt"
	"strconv"
)

// TransferPayload is the structured result of a coin transfer.
type TransferPayload struct {
	FromUserID string `json:"from_user_id"`
	ToUserID   string `json:"to_user_id"`
	Amount     int64  `json:"amount"`
}

func (p TransferPayload) String() string {
	return fmt.Sprintf("💸 <@%s> sent %d coins to <@%s>", p.FromUserID, p.Amount, p.ToUserID)
}

type PayCommand struct{}

func (c *PayCommand) Name() string        { return "pay" }
func (c *PayCommand) Description() string { return "Send coins to another user" }
func (c *PayCommand) Aliases() []string   { return []string{"transfer"} }
func (c *PayCommand) Category() string    { return "🏦 Economy" }

func (c *PayCommand) Run(ctx *Context) (any, error) {
	args := fields(ctx.Args)
	if len(args) != 2 {
		return nil, &UsageError{Usage: "pay <user> <amount>"}
	}

	toUser := stripMention(args[0])
	amount, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || amount <= 0 {
		return nil, &UsageError{Usage: "pay <user> <amount> — amount must be a positive number"}
	}

	if err := ctx.Ledger.Transfer(ctx.Ctx, ctx.Scope.ServerID, ctx.Scope.UserID, toUser, amount); err != nil {
		return nil, err
	}
	return TransferPayload{FromUserID: ctx.Scope.UserID, ToUserID: toUser, Amount: amount}, nil
}
