/*
account.go - Per-account transaction state machine

PURPOSE:
  Account owns one client's balances and per-deposit history, and applies
  a single transaction to them. This is the only place where money moves.

CRITICAL INVARIANTS:
  1. available = total - held is computable after every transaction
  2. locked <=> at least one chargeback was ever applied; once locked,
     an account never unlocks
  3. Rejections leave state byte-for-byte unchanged

TRANSITION RULES (rejections are silent, see outcome.go):
  Deposit:    rejected while locked; otherwise total += amount and a fresh
              DepositRecord is keyed by tx (a duplicate tx id for the same
              client overwrites the earlier record - deliberately unguarded)
  Withdrawal: rejected while locked; succeeds only when amount is STRICTLY
              below available (withdrawing the full balance is rejected);
              no record is kept - withdrawals cannot be disputed
  Dispute:    ignores the lock flag; marks the record disputed and adds its
              amount to held, so available drops by that amount while total
              stays put
  Resolve:    ignores the lock flag; on a live dispute clears the flag,
              releases the amount from held and credits it back to total
  Chargeback: ignores the lock flag; fires only on a currently disputed
              record, marks it charged back, bumps the account counter and
              thereby locks the account permanently

HELD vs TOTAL:
  held > total is arithmetically reachable and deliberately not clamped;
  clamping would change observable output.

SEE ALSO:
  - types.go: Transaction construction and rounding
  - registry.go: Lazy account creation per client
*/
package ledger

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// DEPOSIT RECORD - Per-deposit bookkeeping
// =============================================================================

// DepositRecord tracks one deposit so it can later be disputed, resolved,
// or charged back. Created only by deposits and exclusively owned by the
// Account that created it.
type DepositRecord struct {
	Amount      decimal.Decimal
	Disputed    bool
	ChargedBack bool
}

func newDepositRecord(amount decimal.Decimal) *DepositRecord {
	return &DepositRecord{Amount: amount}
}

// =============================================================================
// ACCOUNT - State machine
// =============================================================================

// Account holds one client's ledger state. The zero value is not usable;
// construct with NewAccount.
type Account struct {
	held        decimal.Decimal
	total       decimal.Decimal
	chargebacks uint32
	deposits    map[TxID]*DepositRecord
}

// NewAccount returns an empty, unlocked account.
func NewAccount() *Account {
	return &Account{
		held:     decimal.Zero,
		total:    decimal.Zero,
		deposits: make(map[TxID]*DepositRecord),
	}
}

// Available returns total minus held: the funds the client could withdraw
// right now.
func (a *Account) Available() decimal.Decimal {
	return a.total.Sub(a.held)
}

// Held returns the funds earmarked by open disputes.
func (a *Account) Held() decimal.Decimal {
	return a.held
}

// Total returns held plus available funds.
func (a *Account) Total() decimal.Decimal {
	return a.total
}

// Locked reports whether the account has ever taken a chargeback.
// Locked accounts reject deposits and withdrawals but still accept
// disputes, resolves, and chargebacks on other deposits.
func (a *Account) Locked() bool {
	return a.chargebacks > 0
}

// Apply runs one transaction against the account. It never fails; invalid
// transitions are absorbed as no-ops and reported through the Outcome.
func (a *Account) Apply(tx Transaction) Outcome {
	switch tx.Kind {
	case KindDeposit:
		return a.deposit(tx)
	case KindWithdrawal:
		return a.withdraw(tx)
	case KindDispute:
		return a.dispute(tx)
	case KindResolve:
		return a.resolve(tx)
	case KindChargeback:
		return a.chargeback(tx)
	}
	// Constructors make this unreachable for adapter-built transactions.
	return rejected(ReasonUnknownDeposit)
}

func (a *Account) deposit(tx Transaction) Outcome {
	if a.Locked() {
		return rejected(ReasonLocked)
	}
	a.total = a.total.Add(tx.Amount)
	a.deposits[tx.Tx] = newDepositRecord(tx.Amount)
	return applied()
}

func (a *Account) withdraw(tx Transaction) Outcome {
	if a.Locked() {
		return rejected(ReasonLocked)
	}
	// Strictly greater: withdrawing the exact available balance is rejected.
	if a.Available().GreaterThan(tx.Amount) {
		a.total = a.total.Sub(tx.Amount)
		return applied()
	}
	return rejected(ReasonInsufficientFunds)
}

func (a *Account) dispute(tx Transaction) Outcome {
	record, ok := a.deposits[tx.Tx]
	if !ok {
		return rejected(ReasonUnknownDeposit)
	}
	record.Disputed = true
	a.held = a.held.Add(record.Amount)
	return applied()
}

func (a *Account) resolve(tx Transaction) Outcome {
	record, ok := a.deposits[tx.Tx]
	if !ok {
		return rejected(ReasonUnknownDeposit)
	}
	if !record.Disputed {
		return rejected(ReasonNotDisputed)
	}
	record.Disputed = false
	a.total = a.total.Add(record.Amount)
	a.held = a.held.Sub(record.Amount)
	return applied()
}

func (a *Account) chargeback(tx Transaction) Outcome {
	record, ok := a.deposits[tx.Tx]
	if !ok {
		return rejected(ReasonUnknownDeposit)
	}
	if !record.Disputed {
		return rejected(ReasonNotDisputed)
	}
	record.ChargedBack = true
	a.chargebacks++
	return applied()
}

// Snapshot freezes the externally visible account state.
func (a *Account) Snapshot(client ClientID) Snapshot {
	return Snapshot{
		Client:    client,
		Available: a.Available(),
		Held:      a.held,
		Total:     a.total,
		Locked:    a.Locked(),
	}
}
