package csvfile_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/MrJamesThe3rd/tally/internal/importer/csvfile"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertEntry(t *testing.T, got transaction.CreateParams, title, amount string, dir transaction.Direction) {
	t.Helper()

	assert.Equal(t, title, got.Title)
	assert.True(t, dec(amount).Equal(got.Amount), "amount: want %s, got %s", amount, got.Amount)
	assert.Equal(t, dir, got.Direction)
	assert.Empty(t, got.SessionID)
}

func TestParser_Ledger(t *testing.T) {
	csv := "title,amount,type\nCoxinha,20,debit\nSalary,30.50,Credit\n"

	txs, err := csvfile.NewParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assertEntry(t, txs[0], "Coxinha", "20", transaction.DirectionDebit)
	assertEntry(t, txs[1], "Salary", "30.50", transaction.DirectionCredit)
}

func TestParser_SignedWithPreamble(t *testing.T) {
	csv := `Consultar saldos e movimentos à ordem - 31-01-2026
Nome cliente;JOHN DOE

Data mov.;Data-valor;Descrição;Montante;Saldo contabilístico após movimento
30-01-2026;30-01-2026;INSTITUTO GESTAO FINA;-588,74;48.825,46
09-01-2026;09-01-2026;TFI Wise;8.608,52;52.532,78
`

	txs, err := csvfile.NewParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assertEntry(t, txs[0], "INSTITUTO GESTAO FINA", "588.74", transaction.DirectionDebit)
	assertEntry(t, txs[1], "TFI Wise", "8608.52", transaction.DirectionCredit)
}

func TestParser_Split(t *testing.T) {
	csv := `Data;Descrição;Débito;Crédito
05-02-2026;CONTINENTE;45,30;
10-02-2026;REEMBOLSO;;12,00
`

	txs, err := csvfile.NewParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assertEntry(t, txs[0], "CONTINENTE", "45.30", transaction.DirectionDebit)
	assertEntry(t, txs[1], "REEMBOLSO", "12.00", transaction.DirectionCredit)
}

func TestParser_HeaderAliasesAreCaseInsensitive(t *testing.T) {
	csv := "DESCRIPTION;Valor;Tipo\nPão;1,20;DEBIT\n"

	txs, err := csvfile.NewParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, txs, 1)

	assertEntry(t, txs[0], "Pão", "1.20", transaction.DirectionDebit)
}

func TestParser_SkipsBlankAndUntitledRows(t *testing.T) {
	csv := "title,amount\nCoxinha,-20\n,,\n\n,99\nSalary,30\n"

	txs, err := csvfile.NewParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assertEntry(t, txs[0], "Coxinha", "20", transaction.DirectionDebit)
	assertEntry(t, txs[1], "Salary", "30", transaction.DirectionCredit)
}

func TestParser_Latin1(t *testing.T) {
	utf8CSV := "Descrição;Montante\nOperação;-3,00\n"

	encoded, err := charmap.Windows1252.NewEncoder().String(utf8CSV)
	require.NoError(t, err)

	txs, err := csvfile.NewParser().Parse(bytes.NewReader([]byte(encoded)))
	require.NoError(t, err)
	require.Len(t, txs, 1)

	assertEntry(t, txs[0], "Operação", "3.00", transaction.DirectionDebit)
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		name     string
		csv      string
		wantLine int
		wantErr  string
	}{
		{
			name:     "bad amount",
			csv:      "title,amount\nCoxinha,20\nPastel,abc\n",
			wantLine: 3,
			wantErr:  `invalid amount "abc"`,
		},
		{
			name:     "missing amount",
			csv:      "title;amount\nCoxinha;\n",
			wantLine: 2,
			wantErr:  "missing amount",
		},
		{
			name:     "bad type",
			csv:      "title,amount,type\nCoxinha,20,refund\n",
			wantLine: 2,
			wantErr:  "must be debit or credit",
		},
		{
			name:     "split with neither column",
			csv:      "title;debit;credit\nCoxinha;;\n",
			wantLine: 2,
			wantErr:  "missing amount",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := csvfile.NewParser().Parse(strings.NewReader(tt.csv))
			require.Error(t, err)

			var rowErr *csvfile.RowError
			require.ErrorAs(t, err, &rowErr)
			assert.Equal(t, tt.wantLine, rowErr.Line)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParser_NoHeader(t *testing.T) {
	_, err := csvfile.NewParser().Parse(strings.NewReader("foo,bar\n1,2\n"))
	assert.ErrorIs(t, err, csvfile.ErrNoHeader)
}

func TestParser_HeaderOnly(t *testing.T) {
	txs, err := csvfile.NewParser().Parse(strings.NewReader("title,amount,type\n"))
	require.NoError(t, err)
	assert.Empty(t, txs)
}
