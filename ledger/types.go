/*
Package ledger implements the per-account transaction state machine.

PURPOSE:
  This package contains the domain core: a validated transaction value,
  the per-account state it mutates, and the registry that owns accounts.
  It knows nothing about CSV, HTTP, or shards - adapters hand it a
  Transaction and read back Snapshots.

KEY CONCEPTS IN THIS FILE (types.go):
  - ClientID / TxID: Type-safe identifiers for accounts and transactions
  - Kind: The five transaction kinds accepted by the engine
  - Transaction: One validated input record, discriminated by Kind

DESIGN PRINCIPLES:
  1. Closed values: A Transaction is built by a constructor and never
     mutated afterwards
  2. Precision: Uses decimal.Decimal for money - no binary floating point
  3. No-throw core: Invalid-but-well-formed transactions are absorbed as
     no-ops (see account.go); only constructors are fallible

SEE ALSO:
  - account.go: The state machine that applies transactions
  - registry.go: Lazy account ownership
  - ../shard/router.go: Partitioning across registries
*/
package ledger

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// ClientID identifies one account. The input format caps it at 16 bits.
type ClientID uint16

// TxID identifies a deposit or withdrawal transaction within the input
// stream. Deposit records are keyed per account, so reuse of an id across
// two clients is harmless; reuse within one client overwrites (see
// account.go).
type TxID uint32

// =============================================================================
// TRANSACTION KINDS
// =============================================================================

// Kind discriminates the five transaction variants.
type Kind string

const (
	KindDeposit    Kind = "deposit"
	KindWithdrawal Kind = "withdrawal"
	KindDispute    Kind = "dispute"
	KindResolve    Kind = "resolve"
	KindChargeback Kind = "chargeback"
)

// Monetary indicates whether this kind carries an amount.
// Disputes, resolves, and chargebacks reference a prior deposit instead.
func (k Kind) Monetary() bool {
	return k == KindDeposit || k == KindWithdrawal
}

// Valid reports whether k is one of the five known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindDeposit, KindWithdrawal, KindDispute, KindResolve, KindChargeback:
		return true
	}
	return false
}

// =============================================================================
// TRANSACTION - Validated input record
// =============================================================================

// AmountPrecision is the number of fractional digits carried by monetary
// amounts. Amounts are rounded to this precision once, at the ingestion
// boundary, and never re-rounded inside the engine.
const AmountPrecision = 4

// Transaction is a closed, validated representation of one input record.
// Amount is meaningful only when Kind.Monetary() is true; constructors
// guarantee it is then strictly positive and rounded to AmountPrecision.
type Transaction struct {
	Kind   Kind
	Client ClientID
	Tx     TxID
	Amount decimal.Decimal
}

// NewDeposit builds a deposit transaction. The amount must be strictly
// positive; it is rounded to AmountPrecision here so the state machine
// only ever sees boundary-rounded values.
func NewDeposit(client ClientID, tx TxID, amount decimal.Decimal) (Transaction, error) {
	return newMonetary(KindDeposit, client, tx, amount)
}

// NewWithdrawal builds a withdrawal transaction. Same amount rules as
// NewDeposit.
func NewWithdrawal(client ClientID, tx TxID, amount decimal.Decimal) (Transaction, error) {
	return newMonetary(KindWithdrawal, client, tx, amount)
}

// NewDispute builds a dispute referencing a prior deposit.
func NewDispute(client ClientID, tx TxID) Transaction {
	return Transaction{Kind: KindDispute, Client: client, Tx: tx}
}

// NewResolve builds a resolve referencing a disputed deposit.
func NewResolve(client ClientID, tx TxID) Transaction {
	return Transaction{Kind: KindResolve, Client: client, Tx: tx}
}

// NewChargeback builds a chargeback referencing a disputed deposit.
func NewChargeback(client ClientID, tx TxID) Transaction {
	return Transaction{Kind: KindChargeback, Client: client, Tx: tx}
}

func newMonetary(kind Kind, client ClientID, tx TxID, amount decimal.Decimal) (Transaction, error) {
	if amount.Sign() <= 0 {
		return Transaction{}, ErrNonPositiveAmount
	}
	return Transaction{
		Kind:   kind,
		Client: client,
		Tx:     tx,
		Amount: amount.RoundBank(AmountPrecision),
	}, nil
}
