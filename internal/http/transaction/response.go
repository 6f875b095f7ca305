package transaction

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/transaction"
)

type transactionResponse struct {
	ID          string           `json:"id"`
	BusinessID  string           `json:"business_id"`
	UserID      string           `json:"user_id"`
	Type        transaction.Type `json:"type"`
	Amount      decimal.Decimal  `json:"amount"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Date        time.Time        `json:"date"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	Active      bool             `json:"active"`
}

func toResponse(tx *transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		BusinessID:  tx.BusinessID,
		UserID:      tx.UserID,
		Type:        tx.Type,
		Amount:      tx.Amount,
		Description: tx.Description,
		Category:    tx.Category,
		Date:        tx.Date,
		CreatedAt:   tx.CreatedAt,
		UpdatedAt:   tx.UpdatedAt,
		Active:      tx.Active,
	}
}

func toResponseList(txs []*transaction.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}
