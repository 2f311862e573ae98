/*
handlers.go - HTTP handlers over a finished (or still running) engine

PURPOSE:
  Exposes the settlement engine via REST. Handlers parse the request,
  delegate to the processor, and serialize snapshots. State mutation goes
  through exactly one path - SubmitTransaction - which serializes access
  with a mutex so per-client ordering survives concurrent callers.

ENDPOINTS:
  GET  /api/health              Liveness
  GET  /api/accounts            All account snapshots, shard order
  GET  /api/accounts/{client}   One account snapshot
  GET  /api/stats               Ingestion counters
  POST /api/transactions        Apply one further transaction

ERROR HANDLING:
  - 400: Malformed transaction (the same class that is fatal on the CSV
         path - the HTTP caller gets told instead of killing the process)
  - 404: Unknown client id
  - 200 with applied=false: Well-formed transaction the ledger absorbed
         as a no-op; rejection is a normal outcome, not an HTTP error

SEE ALSO:
  - dto.go: Request/response shapes
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/warp/settlement-engine/engine"
	"github.com/warp/settlement-engine/ledger"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	mu        sync.Mutex
	processor *engine.Processor
	log       zerolog.Logger
}

// NewHandler wraps a processor. The handler takes over serialization:
// all reads and writes against the engine go through its mutex.
func NewHandler(processor *engine.Processor, log zerolog.Logger) *Handler {
	return &Handler{processor: processor, log: log}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListAccounts returns every account snapshot in shard order.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	snapshots := h.processor.Router().Snapshots()
	h.mu.Unlock()

	dtos := make([]AccountDTO, 0, len(snapshots))
	for _, s := range snapshots {
		dtos = append(dtos, accountDTO(s))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetAccount returns one client's snapshot.
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "client"), 10, 16)
	if err != nil {
		writeError(w, http.StatusBadRequest, "client must be an unsigned 16-bit integer")
		return
	}
	client := ledger.ClientID(id)

	h.mu.Lock()
	snapshots := h.processor.Router().Snapshots()
	h.mu.Unlock()

	for _, s := range snapshots {
		if s.Client == client {
			writeJSON(w, http.StatusOK, accountDTO(s))
			return
		}
	}
	writeError(w, http.StatusNotFound, "unknown client")
}

// GetStats returns ingestion counters.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	stats := h.processor.Stats()
	accounts := h.processor.Router().AccountCount()
	h.mu.Unlock()

	rejected := make(map[string]int, len(stats.Rejected))
	for reason, n := range stats.Rejected {
		rejected[string(reason)] = n
	}
	writeJSON(w, http.StatusOK, StatsDTO{
		Read:     stats.Read,
		Applied:  stats.Applied,
		Rejected: rejected,
		Accounts: accounts,
	})
}

// SubmitTransaction applies one further transaction to the engine.
func (h *Handler) SubmitTransaction(w http.ResponseWriter, r *http.Request) {
	var req SubmitTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	tx, err := buildTransaction(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.mu.Lock()
	out := h.processor.Apply(tx)
	h.mu.Unlock()

	h.log.Debug().
		Str("kind", req.Type).
		Uint16("client", req.Client).
		Bool("applied", out.Applied()).
		Msg("transaction submitted over http")

	writeJSON(w, http.StatusOK, SubmitTransactionResponse{
		Applied: out.Applied(),
		Reason:  string(out.Reason),
	})
}

func buildTransaction(req SubmitTransactionRequest) (ledger.Transaction, error) {
	kind := ledger.Kind(req.Type)
	if !kind.Valid() {
		return ledger.Transaction{}, ledger.ErrUnknownKind
	}
	client := ledger.ClientID(req.Client)
	tx := ledger.TxID(req.Tx)

	switch kind {
	case ledger.KindDeposit, ledger.KindWithdrawal:
		if req.Amount == nil || *req.Amount == "" {
			return ledger.Transaction{}, ledger.ErrMissingAmount
		}
		amount, err := decimal.NewFromString(*req.Amount)
		if err != nil {
			return ledger.Transaction{}, err
		}
		if kind == ledger.KindDeposit {
			return ledger.NewDeposit(client, tx, amount)
		}
		return ledger.NewWithdrawal(client, tx, amount)
	case ledger.KindDispute:
		return ledger.NewDispute(client, tx), nil
	case ledger.KindResolve:
		return ledger.NewResolve(client, tx), nil
	default:
		return ledger.NewChargeback(client, tx), nil
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
