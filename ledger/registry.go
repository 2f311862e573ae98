/*
registry.go - Account ownership per shard

PURPOSE:
  Registry maps client ids to Accounts and creates them lazily on first
  reference. Each shard owns exactly one Registry; no account is ever
  shared across registries.

ORDERING:
  Account creation order is irrelevant for correctness. Snapshots() sorts
  by client id so one run always enumerates a registry identically -
  adapters that need a fixed cross-shard order still sort themselves.

SEE ALSO:
  - account.go: The state machine each entry owns
  - ../shard/router.go: Partitioning clients across registries
*/
package ledger

import "sort"

// Registry is an owning map from client id to Account.
type Registry struct {
	accounts map[ClientID]*Account
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{accounts: make(map[ClientID]*Account)}
}

// GetOrCreate returns the account for client, creating an empty one on
// first reference. Accounts live for the process lifetime.
func (r *Registry) GetOrCreate(client ClientID) *Account {
	account, ok := r.accounts[client]
	if !ok {
		account = NewAccount()
		r.accounts[client] = account
	}
	return account
}

// Apply routes one transaction to its account, creating it if needed.
func (r *Registry) Apply(tx Transaction) Outcome {
	return r.GetOrCreate(tx.Client).Apply(tx)
}

// Len returns the number of accounts in the registry.
func (r *Registry) Len() int {
	return len(r.accounts)
}

// Snapshots enumerates every account exactly once, sorted by client id.
func (r *Registry) Snapshots() []Snapshot {
	clients := make([]ClientID, 0, len(r.accounts))
	for client := range r.accounts {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i] < clients[j] })

	snapshots := make([]Snapshot, 0, len(clients))
	for _, client := range clients {
		snapshots = append(snapshots, r.accounts[client].Snapshot(client))
	}
	return snapshots
}
