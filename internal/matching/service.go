package matching

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MrJamesThe3rd/moneynote/internal/transaction"
)

var ErrEmptyMapping = errors.New("pattern and category are required")

type Repository interface {
	// FindCategory returns the category of the longest pattern contained in
	// description, ignoring case, or "" when none matches.
	FindCategory(ctx context.Context, ownerID, description string) (string, error)
	CreateMapping(ctx context.Context, ownerID, pattern, category string) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest proposes a category for a new record. Without a learned match it
// falls back to the default category of typ.
func (s *Service) Suggest(ctx context.Context, ownerID, description string, typ transaction.Type) (string, error) {
	if ownerID == "" {
		return "", transaction.ErrUnauthenticated
	}

	description = strings.TrimSpace(description)
	if description != "" {
		category, err := s.repo.FindCategory(ctx, ownerID, description)
		if err != nil {
			return "", fmt.Errorf("suggesting category: %w", err)
		}

		if category != "" {
			return category, nil
		}
	}

	return transaction.DefaultCategory(typ), nil
}

// Learn remembers that descriptions containing pattern belong to category.
func (s *Service) Learn(ctx context.Context, ownerID, pattern, category string) error {
	if ownerID == "" {
		return transaction.ErrUnauthenticated
	}

	pattern = strings.TrimSpace(pattern)
	category = strings.TrimSpace(category)

	if pattern == "" || category == "" {
		return ErrEmptyMapping
	}

	return s.repo.CreateMapping(ctx, ownerID, pattern, category)
}

// FillCategories suggests a category for every param that has none. Params
// whose lookup fails keep an empty category and their errors are returned
// together.
func (s *Service) FillCategories(ctx context.Context, ownerID string, params []transaction.CreateParams) error {
	var errs []error

	for i, p := range params {
		if strings.TrimSpace(p.Category) != "" {
			continue
		}

		category, err := s.Suggest(ctx, ownerID, p.Description, p.Type)
		if err != nil {
			errs = append(errs, fmt.Errorf("row %d: %w", i+1, err))
			continue
		}

		params[i].Category = category
	}

	return errors.Join(errs...)
}
