/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for the HTTP surface. They decouple the ledger domain
  types from the wire contract: amounts travel as 4-place decimal strings
  (never JSON numbers - clients must not be tempted into float math).

SEE ALSO:
  - handlers.go: Uses these types
  - ../ledger/snapshot.go: The domain value AccountDTO mirrors
*/
package api

import (
	"github.com/warp/settlement-engine/ledger"
)

// AccountDTO represents one account snapshot in API responses.
type AccountDTO struct {
	Client    uint16 `json:"client"`
	Available string `json:"available"`
	Held      string `json:"held"`
	Total     string `json:"total"`
	Locked    bool   `json:"locked"`
}

func accountDTO(s ledger.Snapshot) AccountDTO {
	return AccountDTO{
		Client:    uint16(s.Client),
		Available: s.Available.StringFixed(ledger.AmountPrecision),
		Held:      s.Held.StringFixed(ledger.AmountPrecision),
		Total:     s.Total.StringFixed(ledger.AmountPrecision),
		Locked:    s.Locked,
	}
}

// SubmitTransactionRequest is the request to apply one further
// transaction to a running engine.
type SubmitTransactionRequest struct {
	Type   string  `json:"type"`
	Client uint16  `json:"client"`
	Tx     uint32  `json:"tx"`
	Amount *string `json:"amount,omitempty"`
}

// SubmitTransactionResponse reports what the engine did with it.
type SubmitTransactionResponse struct {
	Applied bool   `json:"applied"`
	Reason  string `json:"reason,omitempty"`
}

// StatsDTO mirrors engine.Stats.
type StatsDTO struct {
	Read     int            `json:"read"`
	Applied  int            `json:"applied"`
	Rejected map[string]int `json:"rejected"`
	Accounts int            `json:"accounts"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}
