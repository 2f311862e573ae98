/*
Package shard partitions the account space across independent registries.

PURPOSE:
  Routing is the second half of the core: a pure, repeatable function from
  client id to shard index. Each shard owns one ledger.Registry, so no
  mutable state ever crosses a shard boundary - the prerequisite for a
  future migration that processes shards on separate goroutines.

KEY CONCEPTS IN THIS FILE (ring.go):
  - Ring: A consistent-hash ring over shard indices with virtual nodes
  - FNV-1a hashing: Deterministic across runs and platforms, no seed

WHY A RING AND NOT client % shards?
  Modulo would satisfy today's contract. The ring keeps reassignment
  minimal if the shard count ever changes mid-fleet, and it is the shape
  this engine inherited, so repeated runs stay byte-compatible.

SEE ALSO:
  - router.go: The Router that owns registries and delegates by ring lookup
*/
package shard

import (
	"fmt"
	"hash/fnv"
	"sort"
)

// replicas is the number of virtual nodes placed on the ring per shard.
// More replicas smooth the key distribution across shards.
const replicas = 100

// Ring is a consistent-hash ring over shard indices 0..N. It is built
// once and never mutated, so lookups are safe from any goroutine.
type Ring struct {
	hashes []uint32
	owners map[uint32]int
}

// NewRing builds a ring seeded with shard indices 0..shards. A zero or
// negative shard count yields an empty ring; Get then reports no owner.
func NewRing(shards int) *Ring {
	r := &Ring{owners: make(map[uint32]int)}
	for shard := 0; shard < shards; shard++ {
		for replica := 0; replica < replicas; replica++ {
			h := hashBytes([]byte(fmt.Sprintf("shard-%d-replica-%d", shard, replica)))
			// On the rare vnode hash collision the lower shard index wins,
			// deterministically, because shards are added in ascending order.
			if _, taken := r.owners[h]; taken {
				continue
			}
			r.owners[h] = shard
			r.hashes = append(r.hashes, h)
		}
	}
	sort.Slice(r.hashes, func(i, j int) bool { return r.hashes[i] < r.hashes[j] })
	return r
}

// Get returns the shard owning key. The second result is false only for
// an empty ring.
func (r *Ring) Get(key []byte) (int, bool) {
	if len(r.hashes) == 0 {
		return 0, false
	}
	h := hashBytes(key)
	// First vnode clockwise from the key's position, wrapping at the top.
	i := sort.Search(len(r.hashes), func(i int) bool { return r.hashes[i] >= h })
	if i == len(r.hashes) {
		i = 0
	}
	return r.owners[r.hashes[i]], true
}

// Empty reports whether the ring has no shards.
func (r *Ring) Empty() bool {
	return len(r.hashes) == 0
}

func hashBytes(key []byte) uint32 {
	h := fnv.New32a()
	h.Write(key)
	return h.Sum32()
}
