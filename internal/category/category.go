// Package category serves the categories a transaction can be filed under:
// a fixed table of defaults plus each user's own.
package category

import (
	"slices"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/transaction"
)

type Category struct {
	ID      string
	Name    string
	Type    transaction.Type
	Default bool
	// UserID is empty for defaults.
	UserID string
}

var (
	defaultIncome = []Category{
		{ID: "income_sales", Name: "Ventas", Type: transaction.TypeIncome, Default: true},
		{ID: "income_services", Name: "Servicios", Type: transaction.TypeIncome, Default: true},
		{ID: "income_other", Name: "Otros ingresos", Type: transaction.TypeIncome, Default: true},
	}

	defaultExpense = []Category{
		{ID: "expense_operational", Name: "Gastos operativos", Type: transaction.TypeExpense, Default: true},
		{ID: "expense_supplies", Name: "Materiales y suministros", Type: transaction.TypeExpense, Default: true},
		{ID: "expense_marketing", Name: "Marketing y publicidad", Type: transaction.TypeExpense, Default: true},
		{ID: "expense_utilities", Name: "Servicios públicos", Type: transaction.TypeExpense, Default: true},
		{ID: "expense_rent", Name: "Alquiler", Type: transaction.TypeExpense, Default: true},
		{ID: "expense_other", Name: "Otros gastos", Type: transaction.TypeExpense, Default: true},
	}
)

// Defaults returns a copy of the built-in categories for t.
func Defaults(t transaction.Type) []Category {
	switch t {
	case transaction.TypeIncome:
		return slices.Clone(defaultIncome)
	case transaction.TypeExpense:
		return slices.Clone(defaultExpense)
	}

	return []Category{}
}
