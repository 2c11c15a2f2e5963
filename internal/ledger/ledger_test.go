package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/keshon/server-banker/internal/store"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return New(st)
}

func TestTransferRoundTrip(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	if _, err := l.AdjustBalance(ctx, "srv", "alice", 100); err != nil {
		t.Fatal(err)
	}
	if err := l.Transfer(ctx, "srv", "alice", "bob", 40); err != nil {
		t.Fatal(err)
	}
	if err := l.Transfer(ctx, "srv", "bob", "alice", 40); err != nil {
		t.Fatal(err)
	}

	aliceBal, _ := l.Balance(ctx, "srv", "alice")
	bobBal, _ := l.Balance(ctx, "srv", "bob")
	if aliceBal != 100 || bobBal != 0 {
		t.Fatalf("round trip left %d/%d, want 100/0", aliceBal, bobBal)
	}
}

func TestTransferValidation(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	if err := l.Transfer(ctx, "srv", "alice", "alice", 5); !errors.Is(err, ErrSameAccount) {
		t.Fatalf("self transfer error = %v, want ErrSameAccount", err)
	}
	if err := l.Transfer(ctx, "srv", "alice", "bob", 0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero transfer error = %v, want ErrInvalidAmount", err)
	}
	if err := l.Transfer(ctx, "srv", "alice", "bob", -3); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("negative transfer error = %v, want ErrInvalidAmount", err)
	}
	if err := l.Transfer(ctx, "srv", "alice", "bob", 1); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("broke transfer error = %v, want ErrInsufficientFunds", err)
	}
}

func TestConcurrentAdjustsPreserveSum(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	const workers = 10
	const perWorker = 20

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				if _, err := l.AdjustBalance(ctx, "srv", "shared", 1); err != nil {
					t.Errorf("credit: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	bal, err := l.Balance(ctx, "srv", "shared")
	if err != nil {
		t.Fatal(err)
	}
	if bal != workers*perWorker {
		t.Fatalf("balance after concurrent credits = %d, want %d", bal, workers*perWorker)
	}
}

func TestConcurrentOppositeTransfers(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	if _, err := l.AdjustBalance(ctx, "srv", "alice", 100); err != nil {
		t.Fatal(err)
	}
	if _, err := l.AdjustBalance(ctx, "srv", "bob", 100); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := l.Transfer(ctx, "srv", "alice", "bob", 1); err != nil {
				t.Errorf("alice->bob: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if err := l.Transfer(ctx, "srv", "bob", "alice", 1); err != nil {
				t.Errorf("bob->alice: %v", err)
			}
		}()
	}
	wg.Wait()

	aliceBal, _ := l.Balance(ctx, "srv", "alice")
	bobBal, _ := l.Balance(ctx, "srv", "bob")
	if aliceBal+bobBal != 200 {
		t.Fatalf("total drifted to %d, want 200", aliceBal+bobBal)
	}
	if aliceBal != 100 || bobBal != 100 {
		t.Fatalf("symmetric transfers left %d/%d, want 100/100", aliceBal, bobBal)
	}
}

func TestTipAndUntip(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	if err := l.Tip(ctx, "srv", "tipper", "artist"); err != nil {
		t.Fatal(err)
	}
	tipperBal, _ := l.Balance(ctx, "srv", "tipper")
	artistBal, _ := l.Balance(ctx, "srv", "artist")
	if tipperBal != 1 || artistBal != 2 {
		t.Fatalf("balances after tip = %d/%d, want 1/2", tipperBal, artistBal)
	}

	if err := l.Untip(ctx, "srv", "tipper", "artist"); err != nil {
		t.Fatal(err)
	}
	tipperBal, _ = l.Balance(ctx, "srv", "tipper")
	artistBal, _ = l.Balance(ctx, "srv", "artist")
	if tipperBal != 0 || artistBal != 0 {
		t.Fatalf("balances after untip = %d/%d, want 0/0", tipperBal, artistBal)
	}

	if err := l.Untip(ctx, "srv", "tipper", "artist"); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("second untip error = %v, want ErrInsufficientFunds", err)
	}
	if err := l.Tip(ctx, "srv", "solo", "solo"); !errors.Is(err, ErrSameAccount) {
		t.Fatalf("self tip error = %v, want ErrSameAccount", err)
	}
}

func TestPurchaseScenario(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	id, err := l.CreateItem(ctx, store.Item{Name: "sword", Emoji: "🗡️", Price: 30})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.AdjustBalance(ctx, "srv", "u1", 100); err != nil {
		t.Fatal(err)
	}

	if err := l.PurchaseItem(ctx, "srv", "u1", id); err != nil {
		t.Fatal(err)
	}
	bal, _ := l.Balance(ctx, "srv", "u1")
	if bal != 70 {
		t.Fatalf("balance after purchase = %d, want 70", bal)
	}

	inv, err := l.Inventory(ctx, "srv", "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(inv) != 1 || inv[0].Name != "sword" {
		t.Fatalf("inventory = %+v, want the sword", inv)
	}
}

func TestTransferItemValidation(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	id, err := l.CreateItem(ctx, store.Item{Name: "ring", Price: 5})
	if err != nil {
		t.Fatal(err)
	}
	if err := l.GrantItem(ctx, "srv", "alice", id); err != nil {
		t.Fatal(err)
	}

	if err := l.TransferItem(ctx, "srv", "alice", "alice", id); !errors.Is(err, ErrSameAccount) {
		t.Fatalf("self item transfer error = %v, want ErrSameAccount", err)
	}
	if err := l.TransferItem(ctx, "srv", "bob", "alice", id); !errors.Is(err, ErrNotOwned) {
		t.Fatalf("unowned item transfer error = %v, want ErrNotOwned", err)
	}
	if err := l.TransferItem(ctx, "srv", "alice", "bob", id); err != nil {
		t.Fatal(err)
	}
}

func TestChannelBalancesViaLedger(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	if _, err := l.AdjustBalance(ctx, "srv", "alice", 7); err != nil {
		t.Fatal(err)
	}
	if err := l.LogChannelUser(ctx, "srv", "general", "alice"); err != nil {
		t.Fatal(err)
	}
	// Repeat presence records are harmless.
	if err := l.LogChannelUser(ctx, "srv", "general", "alice"); err != nil {
		t.Fatal(err)
	}

	accounts, err := l.ChannelBalances(ctx, "srv", "general")
	if err != nil {
		t.Fatal(err)
	}
	if len(accounts) != 1 || accounts[0].UserID != "alice" || accounts[0].Balance != 7 {
		t.Fatalf("channel balances = %+v", accounts)
	}
}
