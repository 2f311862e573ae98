package ledger

import "github.com/shopspring/decimal"

// =============================================================================
// SNAPSHOT - Frozen account state for output
// =============================================================================

// Snapshot captures the externally visible state of one account. This is
// what adapters serialize: the CSV report, the HTTP API, and the SQLite
// sink all consume Snapshots, never live Accounts.
type Snapshot struct {
	Client    ClientID
	Available decimal.Decimal
	Held      decimal.Decimal
	Total     decimal.Decimal
	Locked    bool
}
