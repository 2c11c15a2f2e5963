package command

import "fmt"

// BalancePayload is the structured result of a balance query.
type BalancePayload struct {
	UserID  string `json:"user_id"`
	Balance int64  `json:"balance"`
}

func (p BalancePayload) String() string {
	return fmt.Sprintf("💰 <@%s> has %d coins", p.UserID, p.Balance)
}

type BalanceCommand struct{}

func (c *BalanceCommand) Name() string        { return "balance" }
func (c *BalanceCommand) Description() string { return "Show your coin balance" }
func (c *BalanceCommand) Aliases() []string   { return []string{"coins"} }
func (c *BalanceCommand) Category() string    { return "🏦 Economy" }

func (c *BalanceCommand) Run(ctx *Context) (any, error) {
	// "balance" shows the caller; "balance @user" peeks at someone else.
	userID := ctx.Scope.UserID
	if args := fields(ctx.Args); len(args) > 0 {
		userID = stripMention(args[0])
	}

	bal, err := ctx.Ledger.Balance(ctx.Ctx, ctx.Scope.ServerID, userID)
	if err != nil {
		return nil, err
	}
	return BalancePayload{UserID: userID, Balance: bal}, nil
}
