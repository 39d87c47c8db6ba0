package csvfile

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	enc "github.com/MrJamesThe3rd/moneynote/internal/encoding"
	"github.com/MrJamesThe3rd/moneynote/internal/transaction"
)

var ErrNoProfile = errors.New("no matching CSV layout found")

var separators = []rune{';', ','}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-1-2",
	"2006/1/2",
	"2006.1.2",
	"2006. 1. 2.",
	"02-01-2006",
}

// Parser reads CSV exports and produces transaction params. It detects the
// separator and the column layout by matching the header against known
// profiles; rows before the header are ignored.
type Parser struct {
	loc *time.Location
}

func NewParser(loc *time.Location) *Parser {
	if loc == nil {
		loc = time.Local
	}

	return &Parser{loc: loc}
}

func (p *Parser) Parse(r io.Reader) ([]transaction.CreateParams, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	for _, sep := range separators {
		rows, err := readRows(data, sep)
		if err != nil {
			continue
		}

		profile, cols, headerIdx := detectProfile(rows)
		if profile == nil {
			continue
		}

		return p.parseRows(profile, cols, rows[headerIdx+1:]), nil
	}

	return nil, fmt.Errorf("%w: expected date, description and amount columns", ErrNoProfile)
}

func readRows(data []byte, sep rune) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sep
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	return reader.ReadAll()
}

// colIndex maps lower-cased column names to their index in the row.
type colIndex map[string]int

func (c colIndex) index(name string) int {
	if name == "" {
		return -1
	}

	if i, ok := c[strings.ToLower(name)]; ok {
		return i
	}

	return -1
}

// detectProfile scans rows for a header that matches a known profile.
// Returns the matched profile, column index map, and header row index.
func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.ToLower(strings.TrimSpace(cell))
			if name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if cols.index(name) < 0 {
			return false
		}
	}

	return true
}

// parseRows extracts params from data rows. Rows without a parseable date or
// a non-zero amount (footers, totals) are skipped.
func (p *Parser) parseRows(prof *Profile, cols colIndex, rows [][]string) []transaction.CreateParams {
	dateIdx := cols.index(prof.DateCol)
	descIdx := cols.index(prof.DescCol)
	catIdx := cols.index(prof.CategoryCol)

	var txs []transaction.CreateParams

	for _, row := range rows {
		date, ok := p.parseDate(cellValue(row, dateIdx))
		if !ok {
			continue
		}

		amount, txType, ok := parseRowAmount(prof, cols, row)
		if !ok {
			continue
		}

		desc := cellValue(row, descIdx)
		if desc == "" {
			desc = transaction.PlaceholderDescription
		}

		txs = append(txs, transaction.CreateParams{
			Amount:      amount,
			Type:        txType,
			Description: desc,
			Category:    cellValue(row, catIdx),
			Date:        date,
		})
	}

	return txs
}

func (p *Parser) parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, p.loc); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func parseRowAmount(p *Profile, cols colIndex, row []string) (int64, transaction.Type, bool) {
	switch p.AmountMode {
	case amountSingle:
		return parseSingleAmount(cellValue(row, cols.index(p.AmountCol)), cellValue(row, cols.index(p.TypeCol)))
	case amountSplit:
		return parseSplitAmount(cellValue(row, cols.index(p.IncomeCol)), cellValue(row, cols.index(p.ExpenseCol)))
	}

	return 0, "", false
}

// parseSingleAmount reads one amount column. A type cell decides the kind;
// without one a negative amount is an expense and a positive one income.
func parseSingleAmount(s, typ string) (int64, transaction.Type, bool) {
	if s == "" {
		return 0, "", false
	}

	amount, err := parseAmount(s)
	if err != nil || amount == 0 {
		return 0, "", false
	}

	if typ != "" {
		return abs(amount), parseType(typ), true
	}

	if amount < 0 {
		return -amount, transaction.TypeExpense, true
	}

	return amount, transaction.TypeIncome, true
}

func parseSplitAmount(income, expense string) (int64, transaction.Type, bool) {
	if expense != "" {
		amount, err := parseAmount(expense)
		if err == nil && amount != 0 {
			return abs(amount), transaction.TypeExpense, true
		}
	}

	if income != "" {
		amount, err := parseAmount(income)
		if err == nil && amount != 0 {
			return abs(amount), transaction.TypeIncome, true
		}
	}

	return 0, "", false
}

// parseType maps a type cell to a kind. Anything unrecognised is an expense.
func parseType(s string) transaction.Type {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "수입", "입금", "+":
		return transaction.TypeIncome
	}

	return transaction.TypeExpense
}

// cellValue safely gets a trimmed cell value from a row.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}

	return n
}
