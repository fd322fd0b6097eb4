package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

var statementHeader = []string{"id", "created_at", "title", "type", "amount", "balance"}

// Line is one statement row: an entry and the session balance after it.
type Line struct {
	Transaction *transaction.Transaction
	Balance     decimal.Decimal
}

// Service renders a session's ledger as a downloadable statement.
type Service struct {
	transactions *transaction.Service
}

// NewService creates a new export Service.
func NewService(txService *transaction.Service) *Service {
	return &Service{transactions: txService}
}

// Statement lists the session's entries in ledger order with a running balance.
func (s *Service) Statement(ctx context.Context, sessionID string) ([]Line, error) {
	txs, err := s.transactions.ListForSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	lines := make([]Line, 0, len(txs))
	balance := decimal.Zero

	for _, tx := range txs {
		balance = balance.Add(tx.Amount)
		lines = append(lines, Line{Transaction: tx, Balance: balance})
	}

	return lines, nil
}

// WriteCSV writes lines as CSV. Amounts keep their sign; type is derived from it.
func (s *Service) WriteCSV(w io.Writer, lines []Line) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(statementHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, l := range lines {
		tx := l.Transaction

		record := []string{
			tx.ID.String(),
			tx.CreatedAt.UTC().Format(time.RFC3339),
			safeCell(tx.Title),
			string(transaction.DirectionOf(tx.Amount)),
			tx.Amount.StringFixed(2),
			l.Balance.StringFixed(2),
		}

		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing transaction %s: %w", tx.ID, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// safeCell keeps spreadsheets from evaluating user text as a formula.
func safeCell(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}

	return s
}

// Filename returns the attachment name for a statement generated at t.
func (s *Service) Filename(t time.Time) string {
	return fmt.Sprintf("statement-%s.csv", t.Format("20060102"))
}

// Summary renders lines as plain text, one entry per line, ending with the
// closing balance.
func (s *Service) Summary(lines []Line) string {
	var sb strings.Builder

	for _, l := range lines {
		tx := l.Transaction

		sign := "+"
		if tx.Amount.IsNegative() {
			sign = "-"
		}

		fmt.Fprintf(&sb, "* %s | %s | %s%s\n", tx.CreatedAt.Format("2006-01-02"), tx.Title, sign, tx.Amount.Abs().StringFixed(2))
	}

	closing := decimal.Zero
	if len(lines) > 0 {
		closing = lines[len(lines)-1].Balance
	}

	fmt.Fprintf(&sb, "Balance: %s\n", closing.StringFixed(2))

	return sb.String()
}
