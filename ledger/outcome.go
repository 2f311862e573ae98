package ledger

// =============================================================================
// OUTCOME - No-throw rejection reporting
// =============================================================================

// RejectReason explains why a well-formed transaction was absorbed as a
// no-op. The processing pipeline discards it (rejections are invisible by
// design); tests and the HTTP surface assert on it.
type RejectReason string

const (
	// ReasonNone marks an applied transaction.
	ReasonNone RejectReason = ""

	// ReasonLocked: deposit or withdrawal against a locked account.
	ReasonLocked RejectReason = "account_locked"

	// ReasonInsufficientFunds: withdrawal not strictly below available.
	ReasonInsufficientFunds RejectReason = "insufficient_funds"

	// ReasonUnknownDeposit: dispute/resolve/chargeback referencing a tx id
	// with no deposit record. A withdrawal id and a never-seen id are
	// indistinguishable here; both land on this reason.
	ReasonUnknownDeposit RejectReason = "unknown_deposit"

	// ReasonNotDisputed: resolve/chargeback against a deposit that is not
	// currently disputed.
	ReasonNotDisputed RejectReason = "not_disputed"

	// ReasonNoShard: the routing ring is empty, the transaction was dropped.
	ReasonNoShard RejectReason = "no_shard"
)

// Outcome is the result of applying one transaction. Failures are silent:
// the account is left unchanged and no error is surfaced, but the reason
// is preserved so callers that care can observe it.
type Outcome struct {
	Reason RejectReason
}

// Applied reports whether the transaction took effect.
func (o Outcome) Applied() bool {
	return o.Reason == ReasonNone
}

// Rejected reports whether the transaction was absorbed as a no-op.
func (o Outcome) Rejected() bool {
	return o.Reason != ReasonNone
}

func applied() Outcome {
	return Outcome{Reason: ReasonNone}
}

func rejected(reason RejectReason) Outcome {
	return Outcome{Reason: reason}
}
