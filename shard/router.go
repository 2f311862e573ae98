/*
router.go - Client-to-shard routing and delegation

PURPOSE:
  Router owns N ledger registries plus the ring that assigns clients to
  them. All transactions enter the engine through Router.Apply.

ORDERING GUARANTEE:
  Client-scoped total ordering is the only ordering the problem requires:
  all transactions for one client apply in input order. Partitioning by
  client id preserves that - one client always lands on one shard - while
  leaving shards free to be processed independently later. Execution
  today stays fully sequential.

SEE ALSO:
  - ring.go: The deterministic partition function
  - ../ledger/registry.go: Per-shard account ownership
*/
package shard

import (
	"encoding/binary"

	"github.com/warp/settlement-engine/ledger"
)

// Router deterministically maps client ids onto a fixed set of shard
// registries. Same client id and same shard count route identically
// within a run and across runs.
type Router struct {
	ring   *Ring
	shards []*ledger.Registry
}

// NewRouter builds shards empty registries and the ring over them.
// A zero shard count is a caller configuration error; the router is still
// constructed but drops every transaction (see Apply). Use Validate to
// guard against it explicitly.
func NewRouter(shards int) *Router {
	registries := make([]*ledger.Registry, 0, max(shards, 0))
	for i := 0; i < shards; i++ {
		registries = append(registries, ledger.NewRegistry())
	}
	return &Router{ring: NewRing(shards), shards: registries}
}

// Validate reports the zero-shard misconfiguration as an error so callers
// can refuse to start instead of silently dropping the whole stream.
func (r *Router) Validate() error {
	if r.ring.Empty() {
		return ledger.ErrNoShards
	}
	return nil
}

// Route returns the shard index owning client. The second result is false
// only when the ring is empty.
func (r *Router) Route(client ledger.ClientID) (int, bool) {
	var key [2]byte
	binary.BigEndian.PutUint16(key[:], uint16(client))
	return r.ring.Get(key[:])
}

// Apply routes the transaction by its client id and delegates to the
// owning registry. With an empty ring the transaction is silently
// dropped; the Outcome carries the no-shard reason.
func (r *Router) Apply(tx ledger.Transaction) ledger.Outcome {
	shard, ok := r.Route(tx.Client)
	if !ok {
		return ledger.Outcome{Reason: ledger.ReasonNoShard}
	}
	return r.shards[shard].Apply(tx)
}

// ShardCount returns the number of shards the router owns.
func (r *Router) ShardCount() int {
	return len(r.shards)
}

// AccountCount returns the total number of accounts across all shards.
func (r *Router) AccountCount() int {
	n := 0
	for _, registry := range r.shards {
		n += registry.Len()
	}
	return n
}

// Snapshots enumerates every account exactly once: shard by shard in
// shard order, sorted by client id within a shard. Adapters needing a
// global order across shards must sort the result themselves.
func (r *Router) Snapshots() []ledger.Snapshot {
	var snapshots []ledger.Snapshot
	for _, registry := range r.shards {
		snapshots = append(snapshots, registry.Snapshots()...)
	}
	return snapshots
}

// ShardSnapshots returns each shard's snapshots separately, in shard
// order. The CSV report writer flushes between shards.
func (r *Router) ShardSnapshots() [][]ledger.Snapshot {
	out := make([][]ledger.Snapshot, len(r.shards))
	for i, registry := range r.shards {
		out[i] = registry.Snapshots()
	}
	return out
}
