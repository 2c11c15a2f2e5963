package command

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyInput is returned when the raw input contains nothing to parse.
var ErrEmptyInput = errors.New("empty input")

// UnknownCommandError reports a command name with no registered handler.
type UnknownCommandError struct {
	Name string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command %q", e.Name)
}

// Parsed is the canonical split of a raw input line.
type Parsed struct {
	Name string
	Args string
}

// Parse splits raw input into a lower-cased command name and its argument
// remainder. Leading whitespace is stripped from the input and from the
// remainder; trailing whitespace of the arguments is preserved so handlers
// see exactly what the user typed. No quoting or escaping is applied —
// finer tokenization is each handler's business.
func Parse(raw string) (Parsed, error) {
	rest := strings.TrimLeft(raw, " \t\r\n")
	if rest == "" {
		return Parsed{}, ErrEmptyInput
	}

	name := rest
	if i := strings.IndexAny(rest, " \t\r\n"); i >= 0 {
		name = rest[:i]
		rest = strings.TrimLeft(rest[i:], " \t\r\n")
	} else {
		rest = ""
	}

	return Parsed{Name: strings.ToLower(name), Args: rest}, nil
}
