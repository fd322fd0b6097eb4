package importer

import (
	"io"

	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

type Format string

const (
	FormatCSV Format = "csv"
)

// Importer turns an uploaded file into unsigned entries ready for
// transaction.Service.CreateBatch.
type Importer interface {
	Parse(r io.Reader) ([]transaction.CreateParams, error)
}
