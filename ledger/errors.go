/*
errors.go - Centralized error types for the ledger core

PURPOSE:
  All fallible paths of the core live at its construction boundary:
  building a Transaction from raw input. Applying a well-formed
  transaction never returns an error - rejections are reported through
  Outcome (see outcome.go) and leave state untouched.

ERROR CATEGORIES:
  1. Construction errors - Raw input that cannot become a Transaction.
     These are fatal at the adapter boundary: the whole run aborts.
  2. Configuration errors - Caller mistakes like a zero-shard router.

SEE ALSO:
  - types.go: Constructors returning these errors
  - outcome.go: Non-error rejection reporting
*/
package ledger

import "errors"

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNonPositiveAmount is returned when a deposit or withdrawal carries
	// a zero or negative amount.
	ErrNonPositiveAmount = errors.New("amount must be strictly positive")

	// ErrMissingAmount is returned when a deposit or withdrawal record has
	// no amount field.
	ErrMissingAmount = errors.New("amount required for deposit and withdrawal")

	// ErrUnknownKind is returned when the record type is not one of the
	// five transaction kinds. Continuing past this would yield incorrect
	// final state, so adapters treat it as fatal.
	ErrUnknownKind = errors.New("unknown transaction kind")

	// ErrNoShards is returned when a router is configured with zero shards.
	ErrNoShards = errors.New("shard count must be at least 1")
)
