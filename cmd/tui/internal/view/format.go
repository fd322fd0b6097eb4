package view

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const dbTimeout = 5 * time.Second

// FormatAmount renders a signed amount with two decimal places.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// FormatTime formats a time.Time into YYYY-MM-DD HH:MM.
func FormatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}

// FormatSession shortens a session token for table display.
func FormatSession(id *string) string {
	if id == nil {
		return "-"
	}

	if len(*id) > 8 {
		return (*id)[:8]
	}

	return *id
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}
