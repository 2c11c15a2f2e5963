package command

import (
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

const defaultPastaPath = "assets/copypasta.toml"

// PastaCommand serves named copypastas from a TOML file of name = "text"
// pairs. The file is read once on first use; a missing or unreadable file
// just means an empty menu.
type PastaCommand struct {
	Path string

	once   sync.Once
	pastas map[string]string
}

func (c *PastaCommand) Name() string        { return "pasta" }
func (c *PastaCommand) Description() string { return "Things that bear repeating" }
func (c *PastaCommand) Aliases() []string   { return []string{"copypasta"} }
func (c *PastaCommand) Category() string    { return "🗣️ Chatter" }

func (c *PastaCommand) load() {
	path := c.Path
	if path == "" {
		path = defaultPastaPath
	}
	c.pastas = map[string]string{}
	if _, err := toml.DecodeFile(path, &c.pastas); err != nil {
		log.Printf("[WARN] Failed to read copypasta file %s: %v", path, err)
	}
}

func (c *PastaCommand) Run(ctx *Context) (any, error) {
	c.once.Do(c.load)

	name := strings.TrimSpace(ctx.Args)
	if name == "" || name == "list" {
		if len(c.pastas) == 0 {
			return "🍝 the pantry is empty", nil
		}
		names := make([]string, 0, len(c.pastas))
		for n := range c.pastas {
			names = append(names, "✨`"+n+"`")
		}
		sort.Strings(names)
		return "types of pasta 🍝:\n" + strings.Join(names, "\n"), nil
	}

	text, ok := c.pastas[name]
	if !ok {
		return "try again loser", nil
	}
	return text, nil
}
