package command

import (
	"fmt"
	"strings"
)

type HelpCommand struct{}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Description() string { return "List available commands" }
func (c *HelpCommand) Aliases() []string   { return []string{"commands"} }
func (c *HelpCommand) Category() string    { return "🛠️ Maintenance" }

func (c *HelpCommand) Run(ctx *Context) (any, error) {
	var b strings.Builder
	for _, cmd := range ctx.Registry.All() {
		fmt.Fprintf(&b, "✨`%s` 👉 %s\n", cmd.Name(), cmd.Description())
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
