package csvio_test

import (
	"io"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/settlement-engine/csvio"
	"github.com/warp/settlement-engine/ledger"
)

func decodeAll(t *testing.T, input string) []ledger.Transaction {
	t.Helper()
	d := csvio.NewDecoder(strings.NewReader(input))
	var txs []ledger.Transaction
	for {
		tx, err := d.Next()
		if err == io.EOF {
			return txs
		}
		require.NoError(t, err)
		txs = append(txs, tx)
	}
}

func TestDecoder_AllKinds(t *testing.T) {
	input := "type,client,tx,amount\n" +
		"deposit,1,1,100.0\n" +
		"withdrawal,1,2,50.5\n" +
		"dispute,1,1,\n" +
		"resolve,1,1,\n" +
		"chargeback,1,1,\n"

	txs := decodeAll(t, input)

	require.Len(t, txs, 5)
	assert.Equal(t, ledger.KindDeposit, txs[0].Kind)
	assert.True(t, txs[0].Amount.Equal(decimal.RequireFromString("100")))
	assert.Equal(t, ledger.KindWithdrawal, txs[1].Kind)
	assert.True(t, txs[1].Amount.Equal(decimal.RequireFromString("50.5")))
	assert.Equal(t, ledger.KindDispute, txs[2].Kind)
	assert.Equal(t, ledger.KindResolve, txs[3].Kind)
	assert.Equal(t, ledger.KindChargeback, txs[4].Kind)
	for _, tx := range txs {
		assert.Equal(t, ledger.ClientID(1), tx.Client)
	}
}

func TestDecoder_PaddedFieldsAndShortRows(t *testing.T) {
	// Real-world inputs carry padding and drop the trailing amount field
	// on dispute-family rows entirely.
	input := "type, client, tx, amount\n" +
		"deposit, 2, 7, 3.0\n" +
		"dispute, 2, 7\n"

	txs := decodeAll(t, input)

	require.Len(t, txs, 2)
	assert.Equal(t, ledger.ClientID(2), txs[1].Client)
	assert.Equal(t, ledger.TxID(7), txs[1].Tx)
}

func TestDecoder_RoundsAmountOnIngestion(t *testing.T) {
	input := "type,client,tx,amount\ndeposit,1,1,1.23456\n"

	txs := decodeAll(t, input)

	require.Len(t, txs, 1)
	assert.True(t, txs[0].Amount.Equal(decimal.RequireFromString("1.2346")))
}

func TestDecoder_UnknownKindIsFatal(t *testing.T) {
	d := csvio.NewDecoder(strings.NewReader("type,client,tx,amount\ntransfer,1,1,5\n"))

	_, err := d.Next()

	assert.ErrorIs(t, err, ledger.ErrUnknownKind)
}

func TestDecoder_MissingAmountIsFatal(t *testing.T) {
	d := csvio.NewDecoder(strings.NewReader("type,client,tx,amount\ndeposit,1,1,\n"))

	_, err := d.Next()

	assert.ErrorIs(t, err, ledger.ErrMissingAmount)
}

func TestDecoder_BadIntegerIsFatal(t *testing.T) {
	d := csvio.NewDecoder(strings.NewReader("type,client,tx,amount\ndeposit,zzz,1,5\n"))

	_, err := d.Next()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "client")
}

func TestDecoder_ClientOutOfRangeIsFatal(t *testing.T) {
	// client is a 16-bit identifier; 70000 does not fit.
	d := csvio.NewDecoder(strings.NewReader("type,client,tx,amount\ndeposit,70000,1,5\n"))

	_, err := d.Next()

	assert.Error(t, err)
}

func TestDecoder_MissingHeaderColumnIsFatal(t *testing.T) {
	d := csvio.NewDecoder(strings.NewReader("client,tx,amount\n1,1,5\n"))

	_, err := d.Next()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "type")
}

func TestDecoder_EmptyInput(t *testing.T) {
	d := csvio.NewDecoder(strings.NewReader(""))

	_, err := d.Next()

	assert.ErrorIs(t, err, io.EOF)
}
