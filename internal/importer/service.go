package importer

import (
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/tally/internal/importer/csvfile"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

type Service struct {
	importers map[Format]Importer
}

func NewService() *Service {
	return &Service{
		importers: map[Format]Importer{
			FormatCSV: csvfile.NewParser(),
		},
	}
}

// Import parses r with the importer registered for format. An empty format
// defaults to CSV.
func (s *Service) Import(format Format, r io.Reader) ([]transaction.CreateParams, error) {
	if format == "" {
		format = FormatCSV
	}

	importer, ok := s.importers[format]
	if !ok {
		return nil, fmt.Errorf("unknown format: %s", format)
	}

	params, err := importer.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", format, err)
	}

	return params, nil
}
