package importer

import (
	"errors"
	"io"
	"strings"

	"github.com/MrJamesThe3rd/moneynote/internal/transaction"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

var ErrUnknownFormat = errors.New("unknown import format")

// ParseFormat accepts a format name or a file name with a known extension.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	switch {
	case s == string(FormatCSV), strings.HasSuffix(s, ".csv"):
		return FormatCSV, nil
	case s == string(FormatJSON), strings.HasSuffix(s, ".json"):
		return FormatJSON, nil
	}

	return "", ErrUnknownFormat
}

type Importer interface {
	Parse(r io.Reader) ([]transaction.CreateParams, error)
}
