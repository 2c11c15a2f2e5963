package command

// RegisterDefaults installs the built-in command set. The caller freezes
// the registry once all registrations (including any extras) are done.
func RegisterDefaults(r *Registry) error {
	chatter := []Command{
		&EchoCommand{},
		&HelpCommand{},
		&PingCommand{},
		&RollCommand{},
		&PastaCommand{},
	}
	economy := []Command{
		&BalanceCommand{},
		&PayCommand{},
		&TipCommand{},
		&UntipCommand{},
		&BuyCommand{},
		&GiveCommand{},
		&InventoryCommand{},
		&ItemsCommand{},
		&TopCommand{},
	}

	for _, cmd := range chatter {
		if err := r.Register(ApplyMiddlewares(cmd, WithCommandLog())); err != nil {
			return err
		}
	}
	for _, cmd := range economy {
		if err := r.Register(ApplyMiddlewares(cmd, WithUserLog(), WithCommandLog())); err != nil {
			return err
		}
	}
	return nil
}
