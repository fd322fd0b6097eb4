// Package csvfile reads ledger entries from delimited text exports.
package csvfile

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	enc "github.com/MrJamesThe3rd/tally/internal/encoding"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

var ErrNoHeader = errors.New("no recognised header: expected title with amount+type, amount, or debit+credit columns")

// RowError reports a data row that could not be turned into an entry.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Parser reads CSV files whose header matches one of the known profiles.
// The header may be preceded by free-form preamble lines.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]transaction.CreateParams, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	br := bufio.NewReader(utf8r)

	reader := csv.NewReader(br)
	reader.Comma = sniffDelimiter(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var (
		profile Profile
		cols    colIndex
		found   bool
		params  []transaction.CreateParams
	)

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		line, _ := reader.FieldPos(0)

		if !found {
			cols = indexHeader(row)
			profile, found = matchProfile(cols)

			continue
		}

		if blank(row) {
			continue
		}

		title := cellValue(row, cols[colTitle])
		if title == "" {
			continue
		}

		amount, dir, err := parseRowAmount(profile, cols, row)
		if err != nil {
			return nil, &RowError{Line: line, Err: err}
		}

		params = append(params, transaction.CreateParams{
			Title:     title,
			Amount:    amount,
			Direction: dir,
		})
	}

	if !found {
		return nil, ErrNoHeader
	}

	return params, nil
}

// sniffDelimiter picks ';' or ',' by counting both in the first line that
// contains either.
func sniffDelimiter(br *bufio.Reader) rune {
	head, _ := br.Peek(br.Size())

	for line := range bytes.Lines(head) {
		semi := bytes.Count(line, []byte{';'})
		comma := bytes.Count(line, []byte{','})

		if semi == 0 && comma == 0 {
			continue
		}

		if semi >= comma {
			return ';'
		}

		return ','
	}

	return ','
}

func parseRowAmount(p Profile, cols colIndex, row []string) (decimal.Decimal, transaction.Direction, error) {
	switch p.AmountMode {
	case amountTyped:
		return parseTyped(row, cols[colAmount], cols[colType])
	case amountSplit:
		return parseSplit(row, cols[colDebit], cols[colCredit])
	default:
		return parseSigned(row, cols[colAmount])
	}
}

func parseTyped(row []string, amountIdx, typeIdx int) (decimal.Decimal, transaction.Direction, error) {
	amount, err := requireAmount(row, amountIdx)
	if err != nil {
		return decimal.Zero, "", err
	}

	dir := transaction.Direction(strings.ToLower(cellValue(row, typeIdx)))
	if !dir.Valid() {
		return decimal.Zero, "", fmt.Errorf("type %q must be debit or credit", cellValue(row, typeIdx))
	}

	return amount.Abs(), dir, nil
}

func parseSigned(row []string, idx int) (decimal.Decimal, transaction.Direction, error) {
	amount, err := requireAmount(row, idx)
	if err != nil {
		return decimal.Zero, "", err
	}

	return amount.Abs(), transaction.DirectionOf(amount), nil
}

// parseSplit prefers the debit column when both carry a value.
func parseSplit(row []string, debitIdx, creditIdx int) (decimal.Decimal, transaction.Direction, error) {
	if cellValue(row, debitIdx) != "" {
		amount, err := requireAmount(row, debitIdx)
		if err != nil {
			return decimal.Zero, "", err
		}

		return amount.Abs(), transaction.DirectionDebit, nil
	}

	if cellValue(row, creditIdx) != "" {
		amount, err := requireAmount(row, creditIdx)
		if err != nil {
			return decimal.Zero, "", err
		}

		return amount.Abs(), transaction.DirectionCredit, nil
	}

	return decimal.Zero, "", errors.New("missing amount")
}

func requireAmount(row []string, idx int) (decimal.Decimal, error) {
	s := cellValue(row, idx)
	if s == "" {
		return decimal.Zero, errors.New("missing amount")
	}

	amount, err := parseAmount(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}

	return amount, nil
}

// cellValue safely gets a trimmed cell value from a row.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}
