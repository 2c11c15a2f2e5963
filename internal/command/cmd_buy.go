package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/keshon/server-banker/internal/store"
)

// resolveItem accepts either a numeric catalog id or an item name.
func resolveItem(ctx *Context, arg string) (store.Item, error) {
	arg = strings.TrimSpace(arg)
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
		return ctx.Ledger.Item(ctx.Ctx, id)
	}
	return ctx.Ledger.ItemByName(ctx.Ctx, arg)
}

type BuyCommand struct{}

func (c *BuyCommand) Name() string        { return "buy" }
func (c *BuyCommand) Description() string { return "Buy an item from the shop" }
func (c *BuyCommand) Aliases() []string   { return []string{} }
func (c *BuyCommand) Category() string    { return "🏦 Economy" }

func (c *BuyCommand) Run(ctx *Context) (any, error) {
	if strings.TrimSpace(ctx.Args) == "" {
		return nil, &UsageError{Usage: "buy <item id or name>"}
	}

	item, err := resolveItem(ctx, ctx.Args)
	if err != nil {
		return nil, err
	}
	if err := ctx.Ledger.PurchaseItem(ctx.Ctx, ctx.Scope.ServerID, ctx.Scope.UserID, item.ID); err != nil {
		return nil, err
	}
	return fmt.Sprintf("🛒 <@%s> bought %s %s for %d coins", ctx.Scope.UserID, item.Emoji, item.Name, item.Price), nil
}
