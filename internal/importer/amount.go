package importer

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/transaction"
)

var errAmountFormat = errors.New("unrecognized amount format")

var currencyMarks = strings.NewReplacer("S/.", "", "S/", "", "PEN", "", "USD", "", "$", "", "€", "", " ", "", "\u00a0", "")

// parseAmount reads amounts as spreadsheets write them: "1.234,56",
// "1,234.56", "-588,74", "(12.50)" or "S/ 25". When both separators appear
// the last one is the decimal mark. A lone comma is a decimal mark unless it
// is followed by exactly three digits.
func parseAmount(s string) (decimal.Decimal, error) {
	clean := currencyMarks.Replace(strings.TrimSpace(s))

	negative := false
	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		negative = true
		clean = clean[1 : len(clean)-1]
	}

	if clean == "" {
		return decimal.Zero, errAmountFormat
	}

	lastDot := strings.LastIndex(clean, ".")
	lastComma := strings.LastIndex(clean, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			clean = strings.ReplaceAll(clean, ".", "")
			clean = strings.Replace(clean, ",", ".", 1)
		} else {
			clean = strings.ReplaceAll(clean, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(clean, ",") == 1 && len(clean)-lastComma-1 != 3 {
			clean = strings.Replace(clean, ",", ".", 1)
		} else {
			clean = strings.ReplaceAll(clean, ",", "")
		}
	case strings.Count(clean, ".") > 1:
		clean = strings.ReplaceAll(clean, ".", "")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, errAmountFormat
	}

	if negative {
		d = d.Neg()
	}

	return d, nil
}

// parseType resolves the type column. An empty cell takes the type from the
// amount's sign.
func parseType(s string, amount decimal.Decimal) (transaction.Type, bool) {
	switch fold(s) {
	case "":
		if amount.IsNegative() {
			return transaction.TypeExpense, true
		}

		return transaction.TypeIncome, true
	case "income", "ingreso", "ingresos":
		return transaction.TypeIncome, true
	case "expense", "gasto", "gastos", "egreso", "egresos":
		return transaction.TypeExpense, true
	}

	return "", false
}
