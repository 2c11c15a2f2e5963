package command

import (
	"fmt"
	"strings"

	"github.com/keshon/server-banker/internal/store"
)

// CatalogPayload lists the global item catalog.
type CatalogPayload struct {
	Items []store.Item `json:"items"`
}

func (p CatalogPayload) String() string {
	if len(p.Items) == 0 {
		return "🏪 the shop is empty"
	}
	var b strings.Builder
	b.WriteString("🏪 for sale:\n")
	for _, it := range p.Items {
		fmt.Fprintf(&b, "#%d %s %s — %d coins\n", it.ID, it.Emoji, it.Name, it.Price)
	}
	return strings.TrimRight(b.String(), "\n")
}

type ItemsCommand struct{}

func (c *ItemsCommand) Name() string        { return "items" }
func (c *ItemsCommand) Description() string { return "List items for sale" }
func (c *ItemsCommand) Aliases() []string   { return []string{"shop"} }
func (c *ItemsCommand) Category() string    { return "🏦 Economy" }

func (c *ItemsCommand) Run(ctx *Context) (any, error) {
	items, err := ctx.Ledger.Items(ctx.Ctx)
	if err != nil {
		return nil, err
	}
	return CatalogPayload{Items: items}, nil
}
