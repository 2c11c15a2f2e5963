package command

type EchoCommand struct{}

func (c *EchoCommand) Name() string        { return "echo" }
func (c *EchoCommand) Description() string { return "Repeat a message back" }
func (c *EchoCommand) Aliases() []string   { return []string{"say"} }
func (c *EchoCommand) Category() string    { return "🗣️ Chatter" }

func (c *EchoCommand) Run(ctx *Context) (any, error) {
	return ctx.Args, nil
}
