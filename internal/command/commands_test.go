package command

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/keshon/server-banker/internal/ledger"
	"github.com/keshon/server-banker/internal/store"
)

func newTestContext(t *testing.T, args string) *Context {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "cmd.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	return &Context{
		Ctx:    context.Background(),
		Args:   args,
		Scope:  Scope{ServerID: "srv", ChannelID: "chan", UserID: "u1"},
		Ledger: ledger.New(st),
	}
}

func TestStripMention(t *testing.T) {
	cases := map[string]string{
		"<@123>":   "123",
		"<@!123>":  "123",
		"123":      "123",
		" <@123> ": "123",
		"<@123":    "<@123",
	}
	for in, want := range cases {
		if got := stripMention(in); got != want {
			t.Errorf("stripMention(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEchoCommand(t *testing.T) {
	ctx := newTestContext(t, "hello  world ")
	payload, err := (&EchoCommand{}).Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if payload != "hello  world " {
		t.Fatalf("echo payload = %q, args must pass through untouched", payload)
	}
}

func TestBalanceCommand(t *testing.T) {
	ctx := newTestContext(t, "")
	if _, err := ctx.Ledger.AdjustBalance(ctx.Ctx, "srv", "u1", 42); err != nil {
		t.Fatal(err)
	}

	payload, err := (&BalanceCommand{}).Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	bp, ok := payload.(BalancePayload)
	if !ok {
		t.Fatalf("payload type %T", payload)
	}
	if bp.UserID != "u1" || bp.Balance != 42 {
		t.Fatalf("payload = %+v", bp)
	}

	// Peeking at another user's balance via mention.
	ctx.Args = "<@u2>"
	payload, err = (&BalanceCommand{}).Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if bp := payload.(BalancePayload); bp.UserID != "u2" || bp.Balance != 0 {
		t.Fatalf("payload = %+v", bp)
	}
}

func TestPayCommand(t *testing.T) {
	ctx := newTestContext(t, "<@u2> 30")
	if _, err := ctx.Ledger.AdjustBalance(ctx.Ctx, "srv", "u1", 100); err != nil {
		t.Fatal(err)
	}

	payload, err := (&PayCommand{}).Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	tp := payload.(TransferPayload)
	if tp.FromUserID != "u1" || tp.ToUserID != "u2" || tp.Amount != 30 {
		t.Fatalf("payload = %+v", tp)
	}

	bal, _ := ctx.Ledger.Balance(ctx.Ctx, "srv", "u2")
	if bal != 30 {
		t.Fatalf("recipient balance = %d", bal)
	}
}

func TestPayCommandUsage(t *testing.T) {
	for _, args := range []string{"", "u2", "u2 zero", "u2 -5", "u2 0", "u2 10 extra"} {
		ctx := newTestContext(t, args)
		_, err := (&PayCommand{}).Run(ctx)
		var usage *UsageError
		if !errors.As(err, &usage) {
			t.Errorf("pay %q error = %v, want UsageError", args, err)
		}
	}
}

func TestTipCommand(t *testing.T) {
	ctx := newTestContext(t, "<@u2>")
	if _, err := (&TipCommand{}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	tipperBal, _ := ctx.Ledger.Balance(ctx.Ctx, "srv", "u1")
	artistBal, _ := ctx.Ledger.Balance(ctx.Ctx, "srv", "u2")
	if tipperBal != 1 || artistBal != 2 {
		t.Fatalf("balances after tip = %d/%d, want 1/2", tipperBal, artistBal)
	}

	if _, err := (&UntipCommand{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	tipperBal, _ = ctx.Ledger.Balance(ctx.Ctx, "srv", "u1")
	if tipperBal != 0 {
		t.Fatalf("tipper balance after untip = %d", tipperBal)
	}
}

func TestBuyCommand(t *testing.T) {
	ctx := newTestContext(t, "sword")
	id, err := ctx.Ledger.CreateItem(ctx.Ctx, store.Item{Name: "sword", Emoji: "🗡️", Price: 30})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ctx.Ledger.AdjustBalance(ctx.Ctx, "srv", "u1", 100); err != nil {
		t.Fatal(err)
	}

	// Purchase by name.
	if _, err := (&BuyCommand{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	bal, _ := ctx.Ledger.Balance(ctx.Ctx, "srv", "u1")
	if bal != 70 {
		t.Fatalf("balance after purchase = %d, want 70", bal)
	}

	// Purchase by id works too.
	ctx.Args = "1"
	if _, err := (&BuyCommand{}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	inv, err := ctx.Ledger.Inventory(ctx.Ctx, "srv", "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(inv) != 1 || inv[0].ID != id {
		t.Fatalf("inventory = %+v", inv)
	}

	ctx.Args = "ghost"
	if _, err := (&BuyCommand{}).Run(ctx); !errors.Is(err, ledger.ErrUnknownItem) {
		t.Fatalf("buy ghost error = %v, want ErrUnknownItem", err)
	}
}

func TestGiveCommand(t *testing.T) {
	ctx := newTestContext(t, "<@u2> ring")
	id, err := ctx.Ledger.CreateItem(ctx.Ctx, store.Item{Name: "ring", Emoji: "💍", Price: 5})
	if err != nil {
		t.Fatal(err)
	}
	if err := ctx.Ledger.GrantItem(ctx.Ctx, "srv", "u1", id); err != nil {
		t.Fatal(err)
	}

	if _, err := (&GiveCommand{}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	inv, _ := ctx.Ledger.Inventory(ctx.Ctx, "srv", "u2")
	if len(inv) != 1 || inv[0].ID != id {
		t.Fatalf("recipient inventory = %+v", inv)
	}
}

func TestTopCommand(t *testing.T) {
	ctx := newTestContext(t, "")
	if _, err := ctx.Ledger.AdjustBalance(ctx.Ctx, "srv", "u1", 10); err != nil {
		t.Fatal(err)
	}
	if err := ctx.Ledger.LogChannelUser(ctx.Ctx, "srv", "chan", "u1"); err != nil {
		t.Fatal(err)
	}

	payload, err := (&TopCommand{}).Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	lp := payload.(LeaderboardPayload)
	if len(lp.Accounts) != 1 || lp.Accounts[0].UserID != "u1" {
		t.Fatalf("leaderboard = %+v", lp)
	}
	if !strings.Contains(lp.String(), "<@u1>") {
		t.Fatalf("rendering = %q", lp.String())
	}

	ctx.Scope.ChannelID = ""
	_, err = (&TopCommand{}).Run(ctx)
	var usage *UsageError
	if !errors.As(err, &usage) {
		t.Fatalf("top outside a channel error = %v, want UsageError", err)
	}
}

func TestWithUserLogRecordsPresence(t *testing.T) {
	ctx := newTestContext(t, "")
	cmd := ApplyMiddlewares(&BalanceCommand{}, WithUserLog())

	if _, err := cmd.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := ctx.Ledger.AdjustBalance(ctx.Ctx, "srv", "u1", 1); err != nil {
		t.Fatal(err)
	}

	accounts, err := ctx.Ledger.ChannelBalances(ctx.Ctx, "srv", "chan")
	if err != nil {
		t.Fatal(err)
	}
	if len(accounts) != 1 || accounts[0].UserID != "u1" {
		t.Fatalf("presence not recorded: %+v", accounts)
	}
}

func TestMiddlewarePreservesIdentity(t *testing.T) {
	cmd := ApplyMiddlewares(&PayCommand{}, WithUserLog(), WithCommandLog())
	if cmd.Name() != "pay" || cmd.Category() == "" {
		t.Fatalf("wrapped command lost its identity: %q", cmd.Name())
	}
}
