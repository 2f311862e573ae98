package csvio

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/warp/settlement-engine/ledger"
)

// =============================================================================
// ENCODER - Account table output
// =============================================================================

// Encoder writes the final account table. Amounts are formatted with a
// fixed four fractional digits; that matches the precision amounts carry
// internally, so no value is ever re-rounded on the way out.
type Encoder struct {
	w *csv.Writer
}

// NewEncoder wraps w. Call WriteHeader before the first snapshot.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: csv.NewWriter(w)}
}

// WriteHeader emits the column header row.
func (e *Encoder) WriteHeader() error {
	return e.w.Write([]string{"client", "available", "held", "total", "locked"})
}

// WriteSnapshot emits one account row.
func (e *Encoder) WriteSnapshot(s ledger.Snapshot) error {
	return e.w.Write([]string{
		strconv.FormatUint(uint64(s.Client), 10),
		s.Available.StringFixed(ledger.AmountPrecision),
		s.Held.StringFixed(ledger.AmountPrecision),
		s.Total.StringFixed(ledger.AmountPrecision),
		strconv.FormatBool(s.Locked),
	})
}

// WriteShard emits one shard's snapshots and flushes, so buffers stay
// small on large account sets.
func (e *Encoder) WriteShard(snapshots []ledger.Snapshot) error {
	for _, s := range snapshots {
		if err := e.WriteSnapshot(s); err != nil {
			return err
		}
	}
	return e.Flush()
}

// Flush forces buffered rows out and reports any deferred write error.
func (e *Encoder) Flush() error {
	e.w.Flush()
	return e.w.Error()
}
