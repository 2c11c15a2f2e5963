package command

import (
	"fmt"
	"strings"
)

type GiveCommand struct{}

func (c *GiveCommand) Name() string        { return "give" }
func (c *GiveCommand) Description() string { return "Give an item you own to another user" }
func (c *GiveCommand) Aliases() []string   { return []string{} }
func (c *GiveCommand) Category() string    { return "🏦 Economy" }

func (c *GiveCommand) Run(ctx *Context) (any, error) {
	args := fields(ctx.Args)
	if len(args) < 2 {
		return nil, &UsageError{Usage: "give <user> <item id or name>"}
	}

	toUser := stripMention(args[0])
	item, err := resolveItem(ctx, strings.Join(args[1:], " "))
	if err != nil {
		return nil, err
	}
	if err := ctx.Ledger.TransferItem(ctx.Ctx, ctx.Scope.ServerID, ctx.Scope.UserID, toUser, item.ID); err != nil {
		return nil, err
	}
	return fmt.Sprintf("🎁 <@%s> gave %s %s to <@%s>", ctx.Scope.UserID, item.Emoji, item.Name, toUser), nil
}
