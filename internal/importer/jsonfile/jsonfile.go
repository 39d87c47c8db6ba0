// Package jsonfile reads document-store exports: an array of records, or an
// object holding one under "transactions".
package jsonfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/moneynote/internal/transaction"
)

type Parser struct {
	loc *time.Location
}

func NewParser(loc *time.Location) *Parser {
	if loc == nil {
		loc = time.Local
	}

	return &Parser{loc: loc}
}

type record struct {
	Amount      amount    `json:"amount"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Date        timestamp `json:"date"`
	CreatedAt   timestamp `json:"createdAt"`
}

type envelope struct {
	Transactions []json.RawMessage `json:"transactions"`
}

// Parse defaults malformed fields the way stored records are read: an empty
// description becomes the placeholder, an unknown type an expense and a
// missing date the creation time. Records whose amount is not positive
// cannot be stored and are skipped.
func (p *Parser) Parse(r io.Reader) ([]transaction.CreateParams, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}

	raw, err := p.records(data)
	if err != nil {
		return nil, err
	}

	var txs []transaction.CreateParams

	for i, item := range raw {
		var rec record
		if err := json.Unmarshal(item, &rec); err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}

		tx := transaction.Transaction{
			Amount:      int64(rec.Amount),
			Type:        transaction.Type(strings.ToLower(strings.TrimSpace(rec.Type))),
			Description: strings.TrimSpace(rec.Description),
			Category:    strings.TrimSpace(rec.Category),
			Date:        rec.Date.in(p.loc),
			CreatedAt:   rec.CreatedAt.in(p.loc),
		}

		// Without any date the service clock decides, not Sanitize's.
		zeroDate := tx.Date.IsZero() && tx.CreatedAt.IsZero()
		transaction.Sanitize(&tx)

		if tx.Amount <= 0 {
			continue
		}

		params := transaction.CreateParams{
			Amount:      tx.Amount,
			Type:        tx.Type,
			Description: tx.Description,
			Category:    tx.Category,
			Date:        tx.Date,
		}

		if zeroDate {
			params.Date = time.Time{}
		}

		txs = append(txs, params)
	}

	return txs, nil
}

func (p *Parser) records(data []byte) ([]json.RawMessage, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	if data[0] == '{' {
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}

		return env.Transactions, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	return raw, nil
}

// amount accepts a JSON number or a numeric string. Anything else is 0.
type amount int64

func (a *amount) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	s = strings.ReplaceAll(s, ",", "")

	d, err := decimal.NewFromString(s)
	if err != nil {
		*a = 0
		return nil
	}

	*a = amount(d.Round(0).IntPart())

	return nil
}

// timestamp accepts RFC 3339 strings, plain dates and exported document
// timestamps of the form {"seconds": 1, "nanoseconds": 0}.
type timestamp struct {
	t     time.Time
	local bool // no zone in the source, interpret in the parser's location
}

func (ts *timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}

	if b[0] == '{' {
		var doc struct {
			Seconds      *int64 `json:"seconds"`
			Nanoseconds  int64  `json:"nanoseconds"`
			USeconds     *int64 `json:"_seconds"`
			UNanoseconds int64  `json:"_nanoseconds"`
		}
		if err := json.Unmarshal(b, &doc); err != nil {
			return nil
		}

		switch {
		case doc.Seconds != nil:
			ts.t = time.Unix(*doc.Seconds, doc.Nanoseconds)
		case doc.USeconds != nil:
			ts.t = time.Unix(*doc.USeconds, doc.UNanoseconds)
		}

		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return nil
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		ts.t = t
		return nil
	}

	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02 15:04", time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			ts.t = t
			ts.local = true

			return nil
		}
	}

	return nil
}

func (ts timestamp) in(loc *time.Location) time.Time {
	if ts.t.IsZero() {
		return time.Time{}
	}

	if ts.local {
		return time.Date(ts.t.Year(), ts.t.Month(), ts.t.Day(), ts.t.Hour(), ts.t.Minute(), ts.t.Second(), ts.t.Nanosecond(), loc)
	}

	return ts.t.In(loc)
}
