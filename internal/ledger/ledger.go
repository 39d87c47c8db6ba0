// Package ledger derives the balance-annotated views of a record set: the
// running balance, month filters, day groups and the calendar. Everything
// here is pure and recomputed from scratch for every snapshot.
package ledger

import (
	"slices"

	"github.com/MrJamesThe3rd/moneynote/internal/transaction"
)

// Entry is a record annotated with the running balance after it, in the
// ascending chronological order of the set it was accumulated from.
type Entry struct {
	transaction.Transaction
	BalanceAfter int64
}

// Signed is the entry's contribution to the balance.
func (e Entry) Signed() int64 {
	return e.Type.Signed(e.Amount)
}

// Accumulate sorts a copy of records ascending by Date and annotates each one
// with the balance after it. Records sharing a timestamp keep their input
// order. The input slice is left untouched.
func Accumulate(records []*transaction.Transaction) []Entry {
	entries := make([]Entry, 0, len(records))
	for _, r := range records {
		if r == nil {
			continue
		}

		entries = append(entries, Entry{Transaction: *r})
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		return a.Date.Compare(b.Date)
	})

	var balance int64
	for i := range entries {
		balance += entries[i].Signed()
		entries[i].BalanceAfter = balance
	}

	return entries
}
