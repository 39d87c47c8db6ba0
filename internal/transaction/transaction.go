package transaction

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Type represents the type of transaction (income or expense).
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

func (t Type) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Signed returns the contribution of amount to a balance.
func (t Type) Signed(amount int64) int64 {
	if t == TypeIncome {
		return amount
	}

	return -amount
}

const (
	// PlaceholderDescription replaces a missing description on read.
	PlaceholderDescription = "No description"

	DefaultIncomeCategory  = "Salary"
	DefaultExpenseCategory = "General"
)

var (
	ErrNotFound         = errors.New("transaction not found")
	ErrUnauthenticated  = errors.New("sign-in required")
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrEmptyDescription = errors.New("description cannot be empty")
	ErrInvalidType      = errors.New("type must be income or expense")
)

// Transaction is one financial event owned by a single user.
type Transaction struct {
	ID          uuid.UUID
	OwnerID     string
	Amount      int64 // Positive, in the smallest currency unit
	Type        Type
	Description string
	Category    string
	Date        time.Time
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
}

// DefaultCategory is the category used when a new record does not name one.
func DefaultCategory(t Type) string {
	if t == TypeIncome {
		return DefaultIncomeCategory
	}

	return DefaultExpenseCategory
}

// Sanitize defaults fields of a record read from a backend so that one bad
// record cannot break the derived views. It never drops the record.
func Sanitize(tx *Transaction) {
	if strings.TrimSpace(tx.Description) == "" {
		tx.Description = PlaceholderDescription
	}

	if tx.Amount < 0 {
		tx.Amount = 0
	}

	if !tx.Type.Valid() {
		tx.Type = TypeExpense
	}

	if tx.Date.IsZero() {
		if tx.CreatedAt.IsZero() {
			tx.Date = time.Now()
		} else {
			tx.Date = tx.CreatedAt
		}
	}
}

func validate(amount int64, description string, typ Type) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	if strings.TrimSpace(description) == "" {
		return ErrEmptyDescription
	}

	if !typ.Valid() {
		return ErrInvalidType
	}

	return nil
}
