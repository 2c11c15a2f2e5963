// Package store is the persistent backing for the economy ledger.
// It owns the SQLite database file and every query against it; nothing
// outside the ledger is supposed to touch these tables.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaFS embed.FS

// Sentinel errors surfaced by store operations. The ledger re-exports the
// domain ones so callers never import this package directly.
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrUnknownItem       = errors.New("unknown item")
	ErrNotOwned          = errors.New("item not owned")
	ErrUnavailable       = errors.New("store unavailable")
	ErrConflict          = errors.New("store conflict")
)

// Item is one entry of the global item catalog.
type Item struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Emoji       string `json:"emoji"`
	Price       int64  `json:"price"`
}

// BankAccount is the balance of one user within one server.
type BankAccount struct {
	ServerID string `json:"server_id"`
	UserID   string `json:"user_id"`
	Balance  int64  `json:"balance"`
}

// Store wraps the SQLite handle shared process-wide.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and bootstraps the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("database path is required")
	}

	dsn := path + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// SQLite allows a single writer; funneling everything through one
	// connection avoids SQLITE_BUSY churn under concurrent handlers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("read schema: %w", err)
	}
	if _, err := db.Exec(string(schema)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping reports whether the database answers.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return classify(err)
	}
	return nil
}

// Balance returns the current balance, or 0 when no row exists yet.
// Accounts are created lazily on first write, never on read.
func (s *Store) Balance(ctx context.Context, serverID, userID string) (int64, error) {
	var bal int64
	err := s.db.QueryRowContext(ctx,
		`SELECT balance FROM bank_accounts WHERE server_id = ? AND user_id = ?`,
		serverID, userID).Scan(&bal)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, classify(err)
	}
	return bal, nil
}

// AdjustBalance applies delta atomically and returns the new balance.
// A debit that would drive the balance negative fails with
// ErrInsufficientFunds and leaves the row untouched.
func (s *Store) AdjustBalance(ctx context.Context, serverID, userID string, delta int64) (int64, error) {
	var newBalance int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		bal, err := balanceTx(ctx, tx, serverID, userID)
		if err != nil {
			return err
		}
		if bal+delta < 0 {
			return ErrInsufficientFunds
		}
		if err := upsertBalance(ctx, tx, serverID, userID, delta); err != nil {
			return err
		}
		newBalance = bal + delta
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

// Transfer moves amount from one user to another within a server. Both
// legs commit or neither does.
func (s *Store) Transfer(ctx context.Context, serverID, fromUser, toUser string, amount int64) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		fromBal, err := balanceTx(ctx, tx, serverID, fromUser)
		if err != nil {
			return err
		}
		if fromBal < amount {
			return ErrInsufficientFunds
		}
		if err := upsertBalance(ctx, tx, serverID, fromUser, -amount); err != nil {
			return err
		}
		return upsertBalance(ctx, tx, serverID, toUser, amount)
	})
}

// AdjustPair applies two deltas to two accounts of the same server in one
// transaction, failing the whole pair if either balance would go negative.
func (s *Store) AdjustPair(ctx context.Context, serverID, userA string, deltaA int64, userB string, deltaB int64) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, leg := range []struct {
			user  string
			delta int64
		}{{userA, deltaA}, {userB, deltaB}} {
			bal, err := balanceTx(ctx, tx, serverID, leg.user)
			if err != nil {
				return err
			}
			if bal+leg.delta < 0 {
				return ErrInsufficientFunds
			}
			if err := upsertBalance(ctx, tx, serverID, leg.user, leg.delta); err != nil {
				return err
			}
		}
		return nil
	})
}

// GrantItem records ownership of an item. Granting an already-owned item
// is a no-op success, not an error.
func (s *Store) GrantItem(ctx context.Context, serverID, userID string, itemID int64) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := itemExistsTx(ctx, tx, itemID); err != nil {
			return err
		}
		return insertInventory(ctx, tx, serverID, userID, itemID)
	})
}

// PurchaseItem debits the item's price and grants the item in one
// transaction. No debited-but-ungranted state is ever observable.
func (s *Store) PurchaseItem(ctx context.Context, serverID, userID string, itemID int64) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var price int64
		err := tx.QueryRowContext(ctx, `SELECT price FROM items WHERE id = ?`, itemID).Scan(&price)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUnknownItem
		}
		if err != nil {
			return classify(err)
		}

		bal, err := balanceTx(ctx, tx, serverID, userID)
		if err != nil {
			return err
		}
		if bal < price {
			return ErrInsufficientFunds
		}
		if err := upsertBalance(ctx, tx, serverID, userID, -price); err != nil {
			return err
		}
		return insertInventory(ctx, tx, serverID, userID, itemID)
	})
}

// TransferItem moves an owned item from one user to another in one
// transaction. The giver must own the item.
func (s *Store) TransferItem(ctx context.Context, serverID, fromUser, toUser string, itemID int64) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := itemExistsTx(ctx, tx, itemID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`DELETE FROM inventory WHERE server_id = ? AND user_id = ? AND item_id = ?`,
			serverID, fromUser, itemID)
		if err != nil {
			return classify(err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return classify(err)
		}
		if n == 0 {
			return ErrNotOwned
		}
		return insertInventory(ctx, tx, serverID, toUser, itemID)
	})
}

// UserInventory lists the items a user owns, ordered by item id.
func (s *Store) UserInventory(ctx context.Context, serverID, userID string) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT i.id, i.name, i.description, i.emoji, i.price
		   FROM inventory v JOIN items i ON i.id = v.item_id
		  WHERE v.server_id = ? AND v.user_id = ?
		  ORDER BY i.id ASC`,
		serverID, userID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	return scanItems(rows)
}

// Items lists the full catalog ordered by id.
func (s *Store) Items(ctx context.Context) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, emoji, price FROM items ORDER BY id ASC`)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	return scanItems(rows)
}

// Item fetches a single catalog entry.
func (s *Store) Item(ctx context.Context, itemID int64) (Item, error) {
	var it Item
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, emoji, price FROM items WHERE id = ?`, itemID).
		Scan(&it.ID, &it.Name, &it.Description, &it.Emoji, &it.Price)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, ErrUnknownItem
	}
	if err != nil {
		return Item{}, classify(err)
	}
	return it, nil
}

// ItemByName fetches a catalog entry by case-insensitive name.
func (s *Store) ItemByName(ctx context.Context, name string) (Item, error) {
	var it Item
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, emoji, price FROM items WHERE name = ? COLLATE NOCASE`, name).
		Scan(&it.ID, &it.Name, &it.Description, &it.Emoji, &it.Price)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, ErrUnknownItem
	}
	if err != nil {
		return Item{}, classify(err)
	}
	return it, nil
}

// CreateItem inserts a catalog entry and returns its id. Catalog changes
// are administrative, outside the command hot path.
func (s *Store) CreateItem(ctx context.Context, it Item) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO items (name, description, emoji, price) VALUES (?, ?, ?, ?)`,
		it.Name, it.Description, it.Emoji, it.Price)
	if err != nil {
		return 0, classify(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, classify(err)
	}
	return id, nil
}

// LogChannelUser records that a user is known within a channel. Repeats
// are ignored.
func (s *Store) LogChannelUser(ctx context.Context, serverID, channelID, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO channel_users (server_id, channel_id, user_id) VALUES (?, ?, ?)`,
		serverID, channelID, userID)
	if err != nil {
		return classify(err)
	}
	return nil
}

// ChannelBalances returns the accounts of users known in a channel,
// richest first.
func (s *Store) ChannelBalances(ctx context.Context, serverID, channelID string) ([]BankAccount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT b.server_id, b.user_id, b.balance
		   FROM bank_accounts b
		  WHERE b.server_id = ?
		    AND b.user_id IN (
		        SELECT user_id FROM channel_users
		         WHERE server_id = ? AND channel_id = ?)
		  ORDER BY b.balance DESC, b.user_id ASC`,
		serverID, serverID, channelID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var accounts []BankAccount
	for rows.Next() {
		var a BankAccount
		if err := rows.Scan(&a.ServerID, &a.UserID, &a.Balance); err != nil {
			return nil, classify(err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return accounts, nil
}

// inTx runs fn inside a transaction, rolling back on error or context
// cancellation. Domain errors pass through untouched.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return classify(err)
	}
	return nil
}

func balanceTx(ctx context.Context, tx *sql.Tx, serverID, userID string) (int64, error) {
	var bal int64
	err := tx.QueryRowContext(ctx,
		`SELECT balance FROM bank_accounts WHERE server_id = ? AND user_id = ?`,
		serverID, userID).Scan(&bal)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, classify(err)
	}
	return bal, nil
}

func upsertBalance(ctx context.Context, tx *sql.Tx, serverID, userID string, delta int64) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO bank_accounts (server_id, user_id, balance) VALUES (?, ?, ?)
		 ON CONFLICT (server_id, user_id) DO UPDATE SET balance = balance + excluded.balance`,
		serverID, userID, delta)
	if err != nil {
		return classify(err)
	}
	return nil
}

func itemExistsTx(ctx context.Context, tx *sql.Tx, itemID int64) error {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM items WHERE id = ?`, itemID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUnknownItem
	}
	if err != nil {
		return classify(err)
	}
	return nil
}

func insertInventory(ctx context.Context, tx *sql.Tx, serverID, userID string, itemID int64) error {
	_, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO inventory (server_id, user_id, item_id) VALUES (?, ?, ?)`,
		serverID, userID, itemID)
	if err != nil {
		return classify(err)
	}
	return nil
}

func scanItems(rows *sql.Rows) ([]Item, error) {
	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Description, &it.Emoji, &it.Price); err != nil {
			return nil, classify(err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return items, nil
}

// classify maps driver-level failures onto the transient-error taxonomy so
// the ledger's retry policy can tell lock contention from real faults.
func classify(err error) error {
	if err == nil {
		return nil
	}
	// modernc renders SQLITE_BUSY as "database is locked (5) (SQLITE_BUSY)",
	// so the busy check must run before the locked one.
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "sqlite_busy"), strings.Contains(msg, "busy"), strings.Contains(msg, "unable to open"):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	case strings.Contains(msg, "database is locked"), strings.Contains(msg, "sqlite_locked"):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	default:
		return err
	}
}
