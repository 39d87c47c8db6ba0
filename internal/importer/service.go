package importer

import (
	"fmt"
	"io"
	"time"

	"github.com/MrJamesThe3rd/moneynote/internal/importer/csvfile"
	"github.com/MrJamesThe3rd/moneynote/internal/importer/jsonfile"
	"github.com/MrJamesThe3rd/moneynote/internal/transaction"
)

type Service struct {
	importers map[Format]Importer
}

// NewService parses dates without a zone in loc.
func NewService(loc *time.Location) *Service {
	return &Service{
		importers: map[Format]Importer{
			FormatCSV:  csvfile.NewParser(loc),
			FormatJSON: jsonfile.NewParser(loc),
		},
	}
}

func (s *Service) Import(format Format, r io.Reader) ([]transaction.CreateParams, error) {
	importer, ok := s.importers[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}

	return importer.Parse(r)
}
