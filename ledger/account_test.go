package ledger_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/settlement-engine/ledger"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dec(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}

func deposit(t *testing.T, client ledger.ClientID, tx ledger.TxID, amount int64) ledger.Transaction {
	t.Helper()
	txn, err := ledger.NewDeposit(client, tx, dec(amount))
	require.NoError(t, err)
	return txn
}

func withdrawal(t *testing.T, client ledger.ClientID, tx ledger.TxID, amount int64) ledger.Transaction {
	t.Helper()
	txn, err := ledger.NewWithdrawal(client, tx, dec(amount))
	require.NoError(t, err)
	return txn
}

// assertBalanced checks the core arithmetic invariant that must hold after
// every single transaction.
func assertBalanced(t *testing.T, a *ledger.Account) {
	t.Helper()
	assert.True(t, a.Available().Equal(a.Total().Sub(a.Held())),
		"available must equal total - held (available=%s total=%s held=%s)",
		a.Available(), a.Total(), a.Held())
}

// =============================================================================
// DEPOSIT / WITHDRAWAL
// =============================================================================

func TestAccount_DepositThenWithdraw(t *testing.T) {
	a := ledger.NewAccount()

	out := a.Apply(deposit(t, 0, 0, 100))
	assert.True(t, out.Applied())
	assert.True(t, a.Available().Equal(dec(100)))
	assertBalanced(t, a)

	out = a.Apply(withdrawal(t, 0, 1, 50))
	assert.True(t, out.Applied())
	assert.True(t, a.Available().Equal(dec(50)))
	assertBalanced(t, a)
}

func TestAccount_WithdrawRejectedWithoutFunds(t *testing.T) {
	a := ledger.NewAccount()
	a.Apply(deposit(t, 0, 0, 100))

	out := a.Apply(withdrawal(t, 0, 1, 150))

	assert.True(t, out.Rejected())
	assert.Equal(t, ledger.ReasonInsufficientFunds, out.Reason)
	assert.True(t, a.Available().Equal(dec(100)), "state must be unchanged")
	assertBalanced(t, a)
}

func TestAccount_WithdrawExactBalanceRejected(t *testing.T) {
	// GIVEN: Available balance of exactly 100
	// WHEN: Withdrawing exactly 100
	// THEN: Rejected - the rule is strictly amount < available

	a := ledger.NewAccount()
	a.Apply(deposit(t, 0, 0, 100))

	out := a.Apply(withdrawal(t, 0, 1, 100))

	assert.True(t, out.Rejected())
	assert.Equal(t, ledger.ReasonInsufficientFunds, out.Reason)
	assert.True(t, a.Available().Equal(dec(100)))
}

func TestAccount_RecoversAfterRejectedWithdrawal(t *testing.T) {
	// A rejected transaction must not poison subsequent valid ones.
	a := ledger.NewAccount()
	a.Apply(deposit(t, 0, 0, 100))

	assert.True(t, a.Apply(withdrawal(t, 0, 1, 150)).Rejected())
	assert.True(t, a.Apply(withdrawal(t, 0, 1, 50)).Applied())
	assert.True(t, a.Available().Equal(dec(50)))
	assertBalanced(t, a)
}

func TestAccount_DuplicateDepositTxOverwrites(t *testing.T) {
	// Reusing a tx id within one client overwrites the earlier deposit
	// record. Deliberately unguarded; a later dispute sees only the
	// second amount.
	a := ledger.NewAccount()
	a.Apply(deposit(t, 0, 7, 100))
	a.Apply(deposit(t, 0, 7, 25))

	a.Apply(ledger.NewDispute(0, 7))

	assert.True(t, a.Held().Equal(dec(25)))
	assert.True(t, a.Total().Equal(dec(125)))
	assertBalanced(t, a)
}

// =============================================================================
// DISPUTES
// =============================================================================

func TestAccount_DisputeHoldsFunds(t *testing.T) {
	a := ledger.NewAccount()
	a.Apply(deposit(t, 0, 0, 100))
	a.Apply(deposit(t, 0, 1, 100))

	out := a.Apply(ledger.NewDispute(0, 1))

	assert.True(t, out.Applied())
	assert.True(t, a.Available().Equal(dec(100)))
	assert.True(t, a.Held().Equal(dec(100)))
	assertBalanced(t, a)
}

func TestAccount_DisputeUnknownTxIgnored(t *testing.T) {
	a := ledger.NewAccount()
	a.Apply(deposit(t, 0, 0, 100))
	a.Apply(deposit(t, 0, 1, 100))

	out := a.Apply(ledger.NewDispute(0, 3))

	assert.True(t, out.Rejected())
	assert.Equal(t, ledger.ReasonUnknownDeposit, out.Reason)
	assert.True(t, a.Available().Equal(dec(200)))
}

func TestAccount_MultipleDisputesAccumulateHeld(t *testing.T) {
	// GIVEN: Three deposits of 100, 100, 200
	// WHEN: Disputing the first two
	// THEN: Only the third remains liquid

	a := ledger.NewAccount()
	a.Apply(deposit(t, 0, 0, 100))
	a.Apply(deposit(t, 0, 1, 100))
	a.Apply(deposit(t, 0, 2, 200))

	a.Apply(ledger.NewDispute(0, 0))
	a.Apply(ledger.NewDispute(0, 1))

	assert.True(t, a.Available().Equal(dec(200)))
	assert.True(t, a.Held().Equal(dec(200)))
	assertBalanced(t, a)
}

func TestAccount_ResolveReleasesHold(t *testing.T) {
	a := ledger.NewAccount()
	a.Apply(deposit(t, 0, 0, 100))
	a.Apply(ledger.NewDispute(0, 0))
	require.True(t, a.Held().Equal(dec(100)))

	out := a.Apply(ledger.NewResolve(0, 0))

	assert.True(t, out.Applied())
	assert.True(t, a.Held().Equal(dec(0)))
	assertBalanced(t, a)
}

func TestAccount_ResolveWithoutDisputeIgnored(t *testing.T) {
	a := ledger.NewAccount()
	a.Apply(deposit(t, 0, 0, 100))

	out := a.Apply(ledger.NewResolve(0, 0))

	assert.True(t, out.Rejected())
	assert.Equal(t, ledger.ReasonNotDisputed, out.Reason)
	assert.True(t, a.Available().Equal(dec(100)))
}

func TestAccount_ResolveUnknownTxIgnored(t *testing.T) {
	a := ledger.NewAccount()
	a.Apply(deposit(t, 0, 0, 100))

	out := a.Apply(ledger.NewResolve(0, 9))

	assert.True(t, out.Rejected())
	assert.Equal(t, ledger.ReasonUnknownDeposit, out.Reason)
}

// =============================================================================
// CHARGEBACKS AND LOCKING
// =============================================================================

func TestAccount_ChargebackWithoutDisputeDoesNotLock(t *testing.T) {
	a := ledger.NewAccount()
	a.Apply(deposit(t, 0, 0, 100))
	a.Apply(deposit(t, 0, 1, 100))

	out := a.Apply(ledger.NewChargeback(0, 1))

	assert.True(t, out.Rejected())
	assert.Equal(t, ledger.ReasonNotDisputed, out.Reason)
	assert.False(t, a.Locked())
}

func TestAccount_DisputedChargebackLocks(t *testing.T) {
	a := ledger.NewAccount()
	a.Apply(deposit(t, 0, 0, 100))
	a.Apply(deposit(t, 0, 1, 100))
	a.Apply(ledger.NewDispute(0, 1))

	out := a.Apply(ledger.NewChargeback(0, 1))

	assert.True(t, out.Applied())
	assert.True(t, a.Locked())
}

func TestAccount_LockedRejectsDepositsAndWithdrawals(t *testing.T) {
	// GIVEN: A locked account with 100 available
	// WHEN: Depositing and withdrawing after the lock
	// THEN: Both are rejected and balances are untouched

	a := ledger.NewAccount()
	a.Apply(deposit(t, 0, 0, 100))
	a.Apply(deposit(t, 0, 1, 100))
	a.Apply(ledger.NewDispute(0, 1))
	a.Apply(ledger.NewChargeback(0, 1))
	require.True(t, a.Locked())

	out := a.Apply(deposit(t, 0, 2, 100))
	assert.True(t, out.Rejected())
	assert.Equal(t, ledger.ReasonLocked, out.Reason)
	assert.True(t, a.Available().Equal(dec(100)))

	out = a.Apply(withdrawal(t, 0, 3, 100))
	assert.True(t, out.Rejected())
	assert.Equal(t, ledger.ReasonLocked, out.Reason)
	assert.True(t, a.Available().Equal(dec(100)))
}

func TestAccount_DisputesStillPossibleAfterLock(t *testing.T) {
	// Disputes, resolves, and chargebacks on OTHER deposits do not check
	// the lock flag at all.
	a := ledger.NewAccount()
	a.Apply(deposit(t, 0, 0, 100))
	a.Apply(deposit(t, 0, 1, 100))
	a.Apply(ledger.NewDispute(0, 1))
	a.Apply(ledger.NewChargeback(0, 1))
	require.True(t, a.Locked())

	out := a.Apply(ledger.NewDispute(0, 0))

	assert.True(t, out.Applied())
	assert.True(t, a.Available().Equal(dec(0)))
	assert.True(t, a.Locked(), "lock is permanent")
	assertBalanced(t, a)
}

func TestAccount_InvariantHoldsAcrossSequence(t *testing.T) {
	// available == total - held after every single transaction, applied
	// or rejected, across a mixed sequence.
	a := ledger.NewAccount()
	sequence := []ledger.Transaction{
		deposit(t, 0, 0, 100),
		deposit(t, 0, 1, 300),
		withdrawal(t, 0, 2, 50),
		ledger.NewDispute(0, 1),
		withdrawal(t, 0, 3, 500), // rejected
		ledger.NewResolve(0, 1),
		ledger.NewDispute(0, 0),
		ledger.NewChargeback(0, 0),
		deposit(t, 0, 4, 10), // rejected, locked
		ledger.NewDispute(0, 5),
	}

	for _, tx := range sequence {
		a.Apply(tx)
		assertBalanced(t, a)
	}
}

// =============================================================================
// TRANSACTION CONSTRUCTION
// =============================================================================

func TestNewDeposit_RejectsNonPositiveAmounts(t *testing.T) {
	_, err := ledger.NewDeposit(1, 1, dec(0))
	assert.ErrorIs(t, err, ledger.ErrNonPositiveAmount)

	_, err = ledger.NewWithdrawal(1, 1, dec(-5))
	assert.ErrorIs(t, err, ledger.ErrNonPositiveAmount)
}

func TestNewDeposit_RoundsToFourPlaces(t *testing.T) {
	txn, err := ledger.NewDeposit(1, 1, decimal.RequireFromString("1.23456"))
	require.NoError(t, err)
	assert.True(t, txn.Amount.Equal(decimal.RequireFromString("1.2346")))

	// Ties round to even (banker's rounding).
	txn, err = ledger.NewDeposit(1, 2, decimal.RequireFromString("2.00005"))
	require.NoError(t, err)
	assert.True(t, txn.Amount.Equal(decimal.RequireFromString("2")))
}
