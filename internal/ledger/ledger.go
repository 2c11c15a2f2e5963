// Package ledger owns every mutation of economy state: bank accounts,
// the item catalog, inventories, and channel-user records. All operations
// are scoped to a single server; nothing here ever reads or writes across
// two servers in one call.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/keshon/server-banker/internal/scopelock"
	"github.com/keshon/server-banker/internal/store"
	"github.com/keshon/server-banker/pkg/retrylimit"
)

// Domain errors. Store-level sentinels are re-exported so callers depend
// on the ledger alone.
var (
	ErrInsufficientFunds = store.ErrInsufficientFunds
	ErrUnknownItem       = store.ErrUnknownItem
	ErrNotOwned          = store.ErrNotOwned
	ErrSameAccount       = errors.New("same account")
	ErrInvalidAmount     = errors.New("amount must be positive")
)

// Tip amounts mirror the long-standing bot economy: the recipient gets
// two coins and the tipper one, so tipping is never a zero-sum drain.
const (
	tipTipperDelta    = 1
	tipRecipientDelta = 2
)

// Ledger executes atomic economy operations against the persistent store.
type Ledger struct {
	store    *store.Store
	accounts *scopelock.Locker
	limiter  *retrylimit.AdaptiveLimiter
	retry    retrylimit.RetryConfig
}

// New creates a Ledger over st.
func New(st *store.Store) *Ledger {
	cfg := retrylimit.DefaultRetryConfig()
	cfg.MaxAttempts = 3
	cfg.InitialDelay = 25 * time.Millisecond
	cfg.MaxDelay = 500 * time.Millisecond

	return &Ledger{
		store:    st,
		accounts: scopelock.New(),
		limiter:  retrylimit.NewAdaptiveLimiter(50, 1, 100, 1, 0.5),
		retry:    cfg,
	}
}

// Ping reports store health.
func (l *Ledger) Ping(ctx context.Context) error {
	return l.store.Ping(ctx)
}

// Balance returns the user's balance, 0 when no account exists yet.
func (l *Ledger) Balance(ctx context.Context, serverID, userID string) (int64, error) {
	var bal int64
	err := l.withRetry(ctx, func() error {
		var err error
		bal, err = l.store.Balance(ctx, serverID, userID)
		return err
	})
	return bal, err
}

// AdjustBalance applies delta to the user's account, creating it lazily.
// Fails with ErrInsufficientFunds when the result would be negative.
func (l *Ledger) AdjustBalance(ctx context.Context, serverID, userID string, delta int64) (int64, error) {
	var bal int64
	err := l.withRetry(ctx, func() error {
		var err error
		bal, err = l.store.AdjustBalance(ctx, serverID, userID, delta)
		return err
	})
	return bal, err
}

// Transfer moves amount coins between two users of the same server. The
// two account locks are taken in lexicographic order so opposite-direction
// transfers cannot deadlock.
func (l *Ledger) Transfer(ctx context.Context, serverID, fromUser, toUser string, amount int64) error {
	if fromUser == toUser {
		return ErrSameAccount
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}

	from, to := accountKey(serverID, fromUser), accountKey(serverID, toUser)
	l.accounts.LockPair(from, to)
	defer l.accounts.UnlockPair(from, to)

	return l.withRetry(ctx, func() error {
		return l.store.Transfer(ctx, serverID, fromUser, toUser, amount)
	})
}

// Tip rewards an exchange: the recipient is credited 2 coins and the
// tipper 1, in one transaction.
func (l *Ledger) Tip(ctx context.Context, serverID, fromUser, toUser string) error {
	return l.pairAdjust(ctx, serverID, fromUser, tipTipperDelta, toUser, tipRecipientDelta)
}

// Untip reverses a tip. Fails with ErrInsufficientFunds rather than
// driving either balance negative.
func (l *Ledger) Untip(ctx context.Context, serverID, fromUser, toUser string) error {
	return l.pairAdjust(ctx, serverID, fromUser, -tipTipperDelta, toUser, -tipRecipientDelta)
}

func (l *Ledger) pairAdjust(ctx context.Context, serverID, userA string, deltaA int64, userB string, deltaB int64) error {
	if userA == userB {
		return ErrSameAccount
	}

	a, b := accountKey(serverID, userA), accountKey(serverID, userB)
	l.accounts.LockPair(a, b)
	defer l.accounts.UnlockPair(a, b)

	return l.withRetry(ctx, func() error {
		return l.store.AdjustPair(ctx, serverID, userA, deltaA, userB, deltaB)
	})
}

// GrantItem records ownership of a catalog item. Idempotent.
func (l *Ledger) GrantItem(ctx context.Context, serverID, userID string, itemID int64) error {
	return l.withRetry(ctx, func() error {
		return l.store.GrantItem(ctx, serverID, userID, itemID)
	})
}

// PurchaseItem debits the item's price and grants the item atomically.
func (l *Ledger) PurchaseItem(ctx context.Context, serverID, userID string, itemID int64) error {
	return l.withRetry(ctx, func() error {
		return l.store.PurchaseItem(ctx, serverID, userID, itemID)
	})
}

// TransferItem gives an owned item to another user of the same server.
func (l *Ledger) TransferItem(ctx context.Context, serverID, fromUser, toUser string, itemID int64) error {
	if fromUser == toUser {
		return ErrSameAccount
	}

	from, to := accountKey(serverID, fromUser), accountKey(serverID, toUser)
	l.accounts.LockPair(from, to)
	defer l.accounts.UnlockPair(from, to)

	return l.withRetry(ctx, func() error {
		return l.store.TransferItem(ctx, serverID, fromUser, toUser, itemID)
	})
}

// Inventory lists the user's items ordered by item id.
func (l *Ledger) Inventory(ctx context.Context, serverID, userID string) ([]store.Item, error) {
	var items []store.Item
	err := l.withRetry(ctx, func() error {
		var err error
		items, err = l.store.UserInventory(ctx, serverID, userID)
		return err
	})
	return items, err
}

// Items lists the global catalog.
func (l *Ledger) Items(ctx context.Context) ([]store.Item, error) {
	var items []store.Item
	err := l.withRetry(ctx, func() error {
		var err error
		items, err = l.store.Items(ctx)
		return err
	})
	return items, err
}

// Item resolves a catalog entry by id.
func (l *Ledger) Item(ctx context.Context, itemID int64) (store.Item, error) {
	var it store.Item
	err := l.withRetry(ctx, func() error {
		var err error
		it, err = l.store.Item(ctx, itemID)
		return err
	})
	return it, err
}

// ItemByName resolves a catalog entry by case-insensitive name.
func (l *Ledger) ItemByName(ctx context.Context, name string) (store.Item, error) {
	var it store.Item
	err := l.withRetry(ctx, func() error {
		var err error
		it, err = l.store.ItemByName(ctx, name)
		return err
	})
	return it, err
}

// CreateItem inserts a catalog entry. Administrative, not on the command
// hot path.
func (l *Ledger) CreateItem(ctx context.Context, it store.Item) (int64, error) {
	var id int64
	err := l.withRetry(ctx, func() error {
		var err error
		id, err = l.store.CreateItem(ctx, it)
		return err
	})
	return id, err
}

// LogChannelUser records the user as known in a channel. Idempotent.
func (l *Ledger) LogChannelUser(ctx context.Context, serverID, channelID, userID string) error {
	return l.withRetry(ctx, func() error {
		return l.store.LogChannelUser(ctx, serverID, channelID, userID)
	})
}

// ChannelBalances lists accounts of users known in a channel, richest
// first.
func (l *Ledger) ChannelBalances(ctx context.Context, serverID, channelID string) ([]store.BankAccount, error) {
	var accounts []store.BankAccount
	err := l.withRetry(ctx, func() error {
		var err error
		accounts, err = l.store.ChannelBalances(ctx, serverID, channelID)
		return err
	})
	return accounts, err
}

// withRetry applies the ledger's bounded retry policy: transient
// unavailability is retried with backoff, a conflict is retried exactly
// once, and everything else (including domain errors) surfaces as is.
func (l *Ledger) withRetry(ctx context.Context, op func() error) error {
	conflicts := 0
	return retrylimit.WithRetryConfig(ctx, func() error {
		err := op()
		switch {
		case err == nil:
			return nil
		case errors.Is(err, store.ErrConflict):
			conflicts++
			if conflicts > 1 {
				return retrylimit.Fatal(err)
			}
			return err
		case errors.Is(err, store.ErrUnavailable):
			return err
		default:
			return retrylimit.Fatal(err)
		}
	}, l.limiter, l.retry)
}

func accountKey(serverID, userID string) string {
	return fmt.Sprintf("%s/%s", serverID, userID)
}
