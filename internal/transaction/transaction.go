package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction tells whether money came in or went out. It is only used to sign
// the amount on the way in and is never stored.
type Direction string

const (
	DirectionDebit  Direction = "debit"
	DirectionCredit Direction = "credit"
)

func (d Direction) Valid() bool {
	return d == DirectionDebit || d == DirectionCredit
}

// Sign applies the direction to an unsigned magnitude: credits are positive,
// debits negative.
func (d Direction) Sign(amount decimal.Decimal) decimal.Decimal {
	if d == DirectionCredit {
		return amount
	}

	return amount.Neg()
}

// DirectionOf reports the direction encoded by a stored amount. Zero amounts
// carry no direction and are reported as credits.
func DirectionOf(amount decimal.Decimal) Direction {
	if amount.IsNegative() {
		return DirectionDebit
	}

	return DirectionCredit
}

// Transaction is a single ledger entry.
type Transaction struct {
	ID        uuid.UUID
	Title     string
	Amount    decimal.Decimal // Signed: credit > 0, debit < 0
	SessionID *string         // nil only for rows written before session scoping
	CreatedAt time.Time
}

// Summary is the aggregate of a session's ledger.
type Summary struct {
	Amount decimal.Decimal
	Count  int64
}
