package command

import (
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
)

var (
	rollTokenRegex = regexp.MustCompile(`(?i)(\d*d\d+|\d+|[+\-*/])`)
	rollDiceRegex  = regexp.MustCompile(`(?i)^(\d*)d(\d+)$`)
	rollOps        = map[string]bool{"+": true, "-": true, "*": true, "/": true}
)

type rollTerm struct {
	value int64
	desc  string
	op    string
}

// RollPayload is the structured result of a dice roll.
type RollPayload struct {
	Formula string `json:"formula"`
	Detail  string `json:"detail"`
	Total   int64  `json:"total"`
}

func (p RollPayload) String() string {
	return fmt.Sprintf("🎲 `%s` ⟶ %s = **%d**", p.Formula, p.Detail, p.Total)
}

type RollCommand struct{}

func (c *RollCommand) Name() string        { return "roll" }
func (c *RollCommand) Description() string { return "Roll dice like `2d20+1d6-2`" }
func (c *RollCommand) Aliases() []string   { return []string{"dice"} }
func (c *RollCommand) Category() string    { return "🎲 Game Mechanics" }

func (c *RollCommand) Run(ctx *Context) (any, error) {
	formula := strings.ReplaceAll(strings.TrimSpace(ctx.Args), " ", "")
	if formula == "" {
		return nil, &UsageError{Usage: "roll <formula>, e.g. 2d6+1d4*2-3"}
	}

	tokens := rollTokenRegex.FindAllString(formula, -1)
	if len(tokens) == 0 {
		return nil, &UsageError{Usage: "roll <formula> — try something like `2d6+1d4*2-3`"}
	}

	var terms []rollTerm
	currentOp := "+"
	for _, token := range tokens {
		if rollOps[token] {
			currentOp = token
			continue
		}
		val, desc, err := evalRollToken(token)
		if err != nil {
			return nil, &UsageError{Usage: fmt.Sprintf("roll <formula> — failed to evaluate `%s`: %v", token, err)}
		}
		terms = append(terms, rollTerm{value: val, desc: desc, op: currentOp})
	}

	// Fold * and / into their left operand first so only + and - remain.
	var merged []rollTerm
	for _, t := range terms {
		if t.op == "*" || t.op == "/" {
			if len(merged) == 0 {
				return nil, &UsageError{Usage: "roll <formula> — operator without left operand"}
			}
			prev := merged[len(merged)-1]
			merged = merged[:len(merged)-1]

			var val int64
			switch t.op {
			case "*":
				val = prev.value * t.value
			case "/":
				if t.value == 0 {
					return nil, &UsageError{Usage: "roll <formula> — division by zero is forbidden, even in games"}
				}
				val = prev.value / t.value
			}
			merged = append(merged, rollTerm{
				value: val,
				desc:  fmt.Sprintf("%s %s %s", prev.desc, t.op, t.desc),
				op:    prev.op,
			})
			continue
		}
		merged = append(merged, t)
	}

	var total int64
	var details []string
	for _, t := range merged {
		if len(details) > 0 {
			details = append(details, fmt.Sprintf(" %s ", t.op))
		}
		details = append(details, t.desc)

		switch t.op {
		case "+":
			total += t.value
		case "-":
			total -= t.value
		}
	}

	return RollPayload{Formula: formula, Detail: strings.Join(details, ""), Total: total}, nil
}

// evalRollToken resolves one token: either a dice group like 2d6 (rolled
// now, each die shown) or a plain number.
func evalRollToken(token string) (int64, string, error) {
	if m := rollDiceRegex.FindStringSubmatch(token); m != nil {
		count := int64(1)
		if m[1] != "" {
			n, err := strconv.ParseInt(m[1], 10, 64)
			if err != nil {
				return 0, "", fmt.Errorf("invalid dice count")
			}
			count = n
		}
		sides, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil || sides < 2 {
			return 0, "", fmt.Errorf("invalid dice sides")
		}
		if count < 1 || count > 100 || sides > 1000 {
			return 0, "", fmt.Errorf("too big, max 100 dice with 1000 sides")
		}

		var sum int64
		rolls := make([]string, 0, count)
		for i := int64(0); i < count; i++ {
			r := rand.Int63n(sides) + 1
			sum += r
			rolls = append(rolls, strconv.FormatInt(r, 10))
		}
		return sum, fmt.Sprintf("`%s` [%s]", token, strings.Join(rolls, ", ")), nil
	}

	num, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("not a number or dice")
	}
	return num, fmt.Sprintf("`%d`", num), nil
}
