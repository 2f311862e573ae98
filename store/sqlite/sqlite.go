/*
Package sqlite provides an optional SQLite sink for the final account table.

PURPOSE:
  Writes one run's account snapshots into a database file so downstream
  tooling can query balances with SQL instead of re-parsing CSV. This is
  an output artifact, not state: the engine never reads it back, and all
  processing state stays in memory for the lifetime of one run.

SCHEMA:
  accounts:  One row per client. Replaced wholesale on every save so the
             table always reflects exactly one run.
  runs:      One row per save with ingestion counters, appended, so a
             scheduled job's history is inspectable.

AMOUNT STORAGE:
  Amounts are stored as 4-place decimal TEXT, never REAL. SQLite REAL is
  binary floating point and would reintroduce exactly the drift the
  decimal type exists to prevent.

USAGE:
  sink, err := sqlite.New("./report.db")
  if err != nil { ... }
  defer sink.Close()
  err = sink.SaveReport(ctx, router.Snapshots(), processor.Stats())

SEE ALSO:
  - ../../ledger/snapshot.go: The rows being written
  - ../../cmd/settle/main.go: Wires the sink behind the -db flag
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/settlement-engine/engine"
	"github.com/warp/settlement-engine/ledger"
)

// Sink writes account reports to SQLite.
type Sink struct {
	db *sql.DB
	mu sync.Mutex
}

// New opens (or creates) the report database at path. Use ":memory:" for
// an in-memory database in tests.
func New(path string) (*Sink, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open report database: %w", err)
	}

	s := &Sink{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate report database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Sink) Close() error {
	return s.db.Close()
}

func (s *Sink) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS accounts (
			client    INTEGER PRIMARY KEY,
			available TEXT NOT NULL,
			held      TEXT NOT NULL,
			total     TEXT NOT NULL,
			locked    INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS runs (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			saved_at  TEXT NOT NULL,
			records   INTEGER NOT NULL,
			applied   INTEGER NOT NULL,
			rejected  INTEGER NOT NULL,
			accounts  INTEGER NOT NULL
		);
	`)
	return err
}

// SaveReport replaces the accounts table with the given snapshots and
// appends a row of run counters. Atomic: either the whole report lands
// or none of it.
func (s *Sink) SaveReport(ctx context.Context, snapshots []ledger.Snapshot, stats engine.Stats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin report tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM accounts`); err != nil {
		return fmt.Errorf("clear accounts: %w", err)
	}

	insert, err := tx.PrepareContext(ctx, `
		INSERT INTO accounts (client, available, held, total, locked)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer insert.Close()

	for _, snap := range snapshots {
		_, err := insert.ExecContext(ctx,
			int64(snap.Client),
			snap.Available.StringFixed(ledger.AmountPrecision),
			snap.Held.StringFixed(ledger.AmountPrecision),
			snap.Total.StringFixed(ledger.AmountPrecision),
			boolToInt(snap.Locked),
		)
		if err != nil {
			return fmt.Errorf("insert account %d: %w", snap.Client, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (saved_at, records, applied, rejected, accounts)
		VALUES (?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339),
		stats.Read, stats.Applied, stats.RejectedTotal(), len(snapshots),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit report: %w", err)
	}
	return nil
}

// ListAccounts reads the saved report back, sorted by client id.
func (s *Sink) ListAccounts(ctx context.Context) ([]ledger.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT client, available, held, total, locked
		FROM accounts ORDER BY client`)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var snapshots []ledger.Snapshot
	for rows.Next() {
		var (
			client                 int64
			available, held, total string
			locked                 int
		)
		if err := rows.Scan(&client, &available, &held, &total, &locked); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		snap := ledger.Snapshot{
			Client: ledger.ClientID(client),
			Locked: locked != 0,
		}
		if snap.Available, err = decimal.NewFromString(available); err != nil {
			return nil, fmt.Errorf("parse available: %w", err)
		}
		if snap.Held, err = decimal.NewFromString(held); err != nil {
			return nil, fmt.Errorf("parse held: %w", err)
		}
		if snap.Total, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("parse total: %w", err)
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
