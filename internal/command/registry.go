package command

import (
	"errors"
	"fmt"
	"sort"
)

// ErrRegistryFrozen is returned by Register after Freeze has been called.
var ErrRegistryFrozen = errors.New("registry is frozen")

// DuplicateNameError reports a second registration under a taken name or
// alias.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("command %q is already registered", e.Name)
}

// Registry maps command names (and aliases) to handlers. It has a
// two-phase lifecycle: mutable while the process boots, frozen before the
// first dispatch. Resolve is a plain map read, safe for unsynchronized
// concurrent use once frozen.
type Registry struct {
	commands map[string]Command
	frozen   bool
}

// NewRegistry creates an empty, unfrozen registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register binds cmd under its name and aliases. A duplicate name fails
// the whole registration; boot should treat that as fatal rather than
// silently overwriting.
func (r *Registry) Register(cmd Command) error {
	if r.frozen {
		return ErrRegistryFrozen
	}
	names := append([]string{cmd.Name()}, cmd.Aliases()...)
	for _, n := range names {
		if _, exists := r.commands[n]; exists {
			return &DuplicateNameError{Name: n}
		}
	}
	for _, n := range names {
		r.commands[n] = cmd
	}
	return nil
}

// Freeze ends the registration phase. Further Register calls fail.
func (r *Registry) Freeze() {
	r.frozen = true
}

// Resolve looks up a handler by name. Pure lookup, no side effects.
func (r *Registry) Resolve(name string) (Command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

// All returns the registered commands once each, sorted by name.
func (r *Registry) All() []Command {
	seen := map[string]bool{}
	list := make([]Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		if seen[cmd.Name()] {
			continue
		}
		seen[cmd.Name()] = true
		list = append(list, cmd)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}
