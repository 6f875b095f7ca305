package transaction

import (
	"time"

	"github.com/shopspring/decimal"
)

// Type represents the type of transaction (income or expense).
type Type string

const (
	TypeIncome  Type = "INCOME"
	TypeExpense Type = "EXPENSE"
)

func (t Type) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Transaction is a money movement recorded against a business. Inactive
// transactions are soft deleted.
type Transaction struct {
	ID          string
	BusinessID  string
	UserID      string
	Type        Type
	Amount      decimal.Decimal
	Description string
	Category    string
	Date        time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Active      bool
}

// New returns a transaction holding the record defaults.
func New() *Transaction {
	now := time.Now()

	return &Transaction{
		Type:      TypeIncome,
		Amount:    decimal.Zero,
		Date:      now,
		CreatedAt: now,
		UpdatedAt: now,
		Active:    true,
	}
}

// Balance sums active incomes minus active expenses.
func Balance(txs []*Transaction) decimal.Decimal {
	balance := decimal.Zero

	for _, tx := range txs {
		if !tx.Active {
			continue
		}

		switch tx.Type {
		case TypeIncome:
			balance = balance.Add(tx.Amount)
		case TypeExpense:
			balance = balance.Sub(tx.Amount)
		}
	}

	return balance
}
