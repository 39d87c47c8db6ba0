package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/moneynote/internal/format"
	"github.com/MrJamesThe3rd/moneynote/internal/ledger"
	"github.com/MrJamesThe3rd/moneynote/internal/transaction"
)

// Lister reads an owner's full record set. transaction.Service is one.
type Lister interface {
	List(ctx context.Context, owner string) ([]*transaction.Transaction, error)
}

// Service renders month statements and summaries.
type Service struct {
	transactions Lister
	locale       format.Locale
	loc          *time.Location
	now          func() time.Time
}

type Option func(*Service)

func WithLocale(l format.Locale) Option {
	return func(s *Service) { s.locale = l }
}

func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(transactions Lister, opts ...Option) *Service {
	s := &Service{
		transactions: transactions,
		locale:       format.English,
		loc:          time.Local,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

var statementHeader = []string{"date", "time", "type", "description", "category", "amount", "balance_after"}

// Book loads the owner's records into a ledger book configured like the
// service.
func (s *Service) Book(ctx context.Context, owner string) (*ledger.Book, error) {
	records, err := s.transactions.List(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	return ledger.New(records,
		ledger.WithClock(s.now),
		ledger.WithLocation(s.loc),
		ledger.WithDayLabeler(s.locale.DayLabel),
	), nil
}

// Statement writes the owner's records of month as CSV, oldest first, with
// the running balance of the whole history after each one.
func (s *Service) Statement(ctx context.Context, owner string, month ledger.Month, w io.Writer) error {
	book, err := s.Book(ctx, owner)
	if err != nil {
		return err
	}

	return WriteStatement(book, month, w)
}

func WriteStatement(book *ledger.Book, month ledger.Month, w io.Writer) error {
	entries := book.FilterByMonth(month)
	loc := book.Location()

	cw := csv.NewWriter(w)

	if err := cw.Write(statementHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		d := e.Date.In(loc)

		row := []string{
			d.Format(time.DateOnly),
			d.Format("15:04"),
			string(e.Type),
			e.Description,
			e.Category,
			strconv.FormatInt(e.Amount, 10),
			strconv.FormatInt(e.BalanceAfter, 10),
		}

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// Summary creates a plain-text digest of month: the monthly expense, the
// total balance and one line per record grouped by day.
func (s *Service) Summary(book *ledger.Book, month ledger.Month) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s\n", s.locale.MonthLabel(month.Year, month.Month))
	fmt.Fprintf(&sb, "Monthly expense: %s\n", s.locale.Currency(book.MonthlyExpenseTotal(month)))
	fmt.Fprintf(&sb, "Total balance: %s\n", s.locale.Currency(book.TotalBalance()))

	for _, g := range book.GroupByDay(book.FilterByMonth(month)) {
		fmt.Fprintf(&sb, "\n%s\n", g.Label)

		for _, e := range g.Entries {
			fmt.Fprintf(&sb, "* %s | %s | %s | %s\n",
				s.locale.Time(e.Date.In(book.Location())),
				e.Description,
				s.locale.Signed(e.Amount, e.Type == transaction.TypeIncome),
				e.Category,
			)
		}
	}

	return sb.String()
}
