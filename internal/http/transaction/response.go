package transaction

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/moneynote/internal/ledger"
	"github.com/MrJamesThe3rd/moneynote/internal/transaction"
)

type TransactionResponse struct {
	ID          uuid.UUID        `json:"id"`
	Amount      int64            `json:"amount"`
	Type        transaction.Type `json:"type"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Date        time.Time        `json:"date"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   *time.Time       `json:"updated_at,omitempty"`
}

// EntryResponse is a record annotated with the balance right after it.
type EntryResponse struct {
	TransactionResponse
	BalanceAfter int64 `json:"balance_after"`
}

func ToResponse(tx *transaction.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          tx.ID,
		Amount:      tx.Amount,
		Type:        tx.Type,
		Description: tx.Description,
		Category:    tx.Category,
		Date:        tx.Date,
		CreatedAt:   tx.CreatedAt,
		UpdatedAt:   tx.UpdatedAt,
	}
}

func ToResponseList(txs []*transaction.Transaction) []TransactionResponse {
	resp := make([]TransactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = ToResponse(tx)
	}

	return resp
}

func ToEntryResponse(e ledger.Entry) EntryResponse {
	return EntryResponse{
		TransactionResponse: ToResponse(&e.Transaction),
		BalanceAfter:        e.BalanceAfter,
	}
}

func ToEntryResponseList(entries []ledger.Entry) []EntryResponse {
	resp := make([]EntryResponse, len(entries))
	for i, e := range entries {
		resp[i] = ToEntryResponse(e)
	}

	return resp
}
