/*
Package csvio adapts the engine to the external tabular format.

PURPOSE:
  The core never parses raw text. This package owns both directions of
  the boundary: decoding input rows into validated ledger.Transactions,
  and encoding account snapshots into the output table.

INPUT FORMAT:
  type,client,tx,amount
  deposit,1,1,100.0
  withdrawal,1,2,50.0
  dispute,1,1,
  Fields may carry padding whitespace. The amount column is required for
  deposit/withdrawal; on dispute/resolve/chargeback rows it is ignored
  whether present, empty, or missing entirely.

ERROR POLICY:
  Malformed records (unknown type, missing or unparseable amount, bad
  integers) are fatal: decoding stops and the error aborts the whole run.
  This is the only fatal class in the system - continuing past a corrupt
  record would yield a confidently wrong final state.

SEE ALSO:
  - writer.go: The account table encoder
  - ../engine/engine.go: The pipeline driving both
*/
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/warp/settlement-engine/ledger"
)

// Column names of the input header.
const (
	colType   = "type"
	colClient = "client"
	colTx     = "tx"
	colAmount = "amount"
)

// Decoder reads input records and yields validated transactions one at a
// time. It is header-driven: columns may appear in any order.
type Decoder struct {
	r       *csv.Reader
	columns map[string]int
	line    int
}

// NewDecoder wraps r. The header row is consumed lazily on the first
// Next call.
func NewDecoder(r io.Reader) *Decoder {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	// Rows for dispute/resolve/chargeback often omit the amount field
	// entirely, so records may have fewer fields than the header.
	cr.FieldsPerRecord = -1
	return &Decoder{r: cr}
}

// Next returns the next validated transaction. It returns io.EOF once the
// input is exhausted and a wrapped error on the first malformed record.
func (d *Decoder) Next() (ledger.Transaction, error) {
	if d.columns == nil {
		if err := d.readHeader(); err != nil {
			return ledger.Transaction{}, err
		}
	}

	record, err := d.r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return ledger.Transaction{}, io.EOF
		}
		return ledger.Transaction{}, fmt.Errorf("read record: %w", err)
	}
	d.line++

	tx, err := d.parse(record)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("record %d: %w", d.line, err)
	}
	return tx, nil
}

func (d *Decoder) readHeader() error {
	header, err := d.r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return io.EOF
		}
		return fmt.Errorf("read header: %w", err)
	}

	d.columns = make(map[string]int, len(header))
	for i, name := range header {
		d.columns[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range []string{colType, colClient, colTx} {
		if _, ok := d.columns[required]; !ok {
			return fmt.Errorf("header missing %q column", required)
		}
	}
	return nil
}

func (d *Decoder) parse(record []string) (ledger.Transaction, error) {
	kind := ledger.Kind(strings.TrimSpace(d.field(record, colType)))
	if !kind.Valid() {
		return ledger.Transaction{}, fmt.Errorf("%w: %q", ledger.ErrUnknownKind, kind)
	}

	client, err := strconv.ParseUint(strings.TrimSpace(d.field(record, colClient)), 10, 16)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("client: %w", err)
	}
	tx, err := strconv.ParseUint(strings.TrimSpace(d.field(record, colTx)), 10, 32)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("tx: %w", err)
	}

	clientID := ledger.ClientID(client)
	txID := ledger.TxID(tx)

	switch kind {
	case ledger.KindDeposit, ledger.KindWithdrawal:
		raw := strings.TrimSpace(d.field(record, colAmount))
		if raw == "" {
			return ledger.Transaction{}, ledger.ErrMissingAmount
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return ledger.Transaction{}, fmt.Errorf("amount: %w", err)
		}
		if kind == ledger.KindDeposit {
			return ledger.NewDeposit(clientID, txID, amount)
		}
		return ledger.NewWithdrawal(clientID, txID, amount)
	case ledger.KindDispute:
		return ledger.NewDispute(clientID, txID), nil
	case ledger.KindResolve:
		return ledger.NewResolve(clientID, txID), nil
	default:
		return ledger.NewChargeback(clientID, txID), nil
	}
}

// field returns the named column of record, or "" when the row is shorter
// than the header.
func (d *Decoder) field(record []string, name string) string {
	i, ok := d.columns[name]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}
