package command

type PingCommand struct{}

func (c *PingCommand) Name() string        { return "ping" }
func (c *PingCommand) Description() string { return "Check that the bot is alive" }
func (c *PingCommand) Aliases() []string   { return []string{} }
func (c *PingCommand) Category() string    { return "🛠️ Maintenance" }

func (c *PingCommand) Run(ctx *Context) (any, error) {
	if err := ctx.Ledger.Ping(ctx.Ctx); err != nil {
		return nil, err
	}
	return "🏓 Pong!", nil
}
