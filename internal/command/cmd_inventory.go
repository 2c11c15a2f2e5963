package command

import (
	"fmt"
	"strings"

	"github.com/keshon/server-banker/internal/store"
)

// InventoryPayload lists the items a user owns.
type InventoryPayload struct {
	UserID string       `json:"user_id"`
	Items  []store.Item `json:"items"`
}

func (p InventoryPayload) String() string {
	if len(p.Items) == 0 {
		return fmt.Sprintf("🎒 <@%s> owns nothing yet", p.UserID)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🎒 <@%s> owns:\n", p.UserID)
	for _, it := range p.Items {
		fmt.Fprintf(&b, "%s %s — %s\n", it.Emoji, it.Name, it.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

type InventoryCommand struct{}

func (c *InventoryCommand) Name() string        { return "inventory" }
func (c *InventoryCommand) Description() string { return "Show the items you own" }
func (c *InventoryCommand) Aliases() []string   { return []string{"inv"} }
func (c *InventoryCommand) Category() string    { return "🏦 Economy" }

func (c *InventoryCommand) Run(ctx *Context) (any, error) {
	items, err := ctx.Ledger.Inventory(ctx.Ctx, ctx.Scope.ServerID, ctx.Scope.UserID)
	if err != nil {
		return nil, err
	}
	return InventoryPayload{UserID: ctx.Scope.UserID, Items: items}, nil
}
