package command

import "fmt"

type TipCommand struct{}

func (c *TipCommand) Name() string        { return "tip" }
func (c *TipCommand) Description() string { return "Tip a user a couple of coins" }
func (c *TipCommand) Aliases() []string   { return []string{} }
func (c *TipCommand) Category() string    { return "🏦 Economy" }

func (c *TipCommand) Run(ctx *Context) (any, error) {
	args := fields(ctx.Args)
	if len(args) != 1 {
		return nil, &UsageError{Usage: "tip <user>"}
	}
	toUser := stripMention(args[0])

	if err := ctx.Ledger.Tip(ctx.Ctx, ctx.Scope.ServerID, ctx.Scope.UserID, toUser); err != nil {
		return nil, err
	}
	return fmt.Sprintf("🪙 <@%s> tipped <@%s>", ctx.Scope.UserID, toUser), nil
}

type UntipCommand struct{}

func (c *UntipCommand) Name() string        { return "untip" }
func (c *UntipCommand) Description() string { return "Take a tip back" }
func (c *UntipCommand) Aliases() []string   { return []string{} }
func (c *UntipCommand) Category() string    { return "🏦 Economy" }

func (c *UntipCommand) Run(ctx *Context) (any, error) {
	args := fields(ctx.Args)
	if len(args) != 1 {
		return nil, &UsageError{Usage: "untip <user>"}
	}
	toUser := stripMention(args[0])

	if err := ctx.Ledger.Untip(ctx.Ctx, ctx.Scope.ServerID, ctx.Scope.UserID, toUser); err != nil {
		return nil, err
	}
	return fmt.Sprintf("🪙 <@%s> took a tip back from <@%s>", ctx.Scope.UserID, toUser), nil
}
