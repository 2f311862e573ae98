/*
Package engine drives one ingestion pass end to end.

PURPOSE:
  Processor glues the decoder to the shard router: read a record, apply
  it, repeat until input exhaustion or the first malformed record. It is
  the single place where the run-level policy lives - fatal parse errors
  abort, everything else is counted and forgotten.

OBSERVABILITY:
  Rejected transactions are invisible in the output by design; the
  processor is where they leave a trace. Rejections are counted per
  reason and logged at debug so a malicious stream can be diagnosed
  without changing the account table.
*/
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/warp/settlement-engine/csvio"
	"github.com/warp/settlement-engine/ledger"
	"github.com/warp/settlement-engine/shard"
)

// Stats summarizes one ingestion pass.
type Stats struct {
	Read     int
	Applied  int
	Rejected map[ledger.RejectReason]int
}

// RejectedTotal returns the number of transactions absorbed as no-ops.
func (s Stats) RejectedTotal() int {
	n := 0
	for _, c := range s.Rejected {
		n += c
	}
	return n
}

// Processor applies a transaction stream to a router.
type Processor struct {
	router *shard.Router
	log    zerolog.Logger
	stats  Stats
}

// NewProcessor wires a processor to router. The logger only ever writes
// diagnostics; account output goes through WriteReport.
func NewProcessor(router *shard.Router, log zerolog.Logger) *Processor {
	return &Processor{
		router: router,
		log:    log,
		stats:  Stats{Rejected: make(map[ledger.RejectReason]int)},
	}
}

// Router exposes the underlying router for surfaces layered on top of a
// finished run (HTTP API, report sinks).
func (p *Processor) Router() *shard.Router {
	return p.router
}

// Stats returns counters for the records processed so far.
func (p *Processor) Stats() Stats {
	return p.stats
}

// Process consumes r to exhaustion. The first malformed record aborts
// with an error and nothing further is applied; well-formed-but-invalid
// transactions are silently absorbed. The context is checked between
// records so a serving process can abandon a stuck ingest.
func (p *Processor) Process(ctx context.Context, r io.Reader) error {
	decoder := csvio.NewDecoder(r)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		tx, err := decoder.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("ingest: %w", err)
		}

		p.Apply(tx)
	}

	p.log.Info().
		Int("read", p.stats.Read).
		Int("applied", p.stats.Applied).
		Int("rejected", p.stats.RejectedTotal()).
		Int("accounts", p.router.AccountCount()).
		Msg("ingestion complete")
	return nil
}

// Apply runs a single transaction through the router and records the
// outcome. Used by Process and by the HTTP surface.
func (p *Processor) Apply(tx ledger.Transaction) ledger.Outcome {
	p.stats.Read++
	out := p.router.Apply(tx)
	if out.Applied() {
		p.stats.Applied++
		return out
	}

	p.stats.Rejected[out.Reason]++
	logger := p.log.Debug()
	if out.Reason == ledger.ReasonNoShard {
		// A dropped transaction here means a zero-shard configuration;
		// that deserves more than a debug line.
		logger = p.log.Warn()
	}
	logger.
		Str("kind", string(tx.Kind)).
		Uint16("client", uint16(tx.Client)).
		Uint32("tx", uint32(tx.Tx)).
		Str("reason", string(out.Reason)).
		Msg("transaction rejected")
	return out
}

// WriteReport emits the final account table shard by shard, flushing
// between shards.
func (p *Processor) WriteReport(w io.Writer) error {
	encoder := csvio.NewEncoder(w)
	if err := encoder.WriteHeader(); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	for _, group := range p.router.ShardSnapshots() {
		if err := encoder.WriteShard(group); err != nil {
			return fmt.Errorf("report: %w", err)
		}
	}
	return nil
}
