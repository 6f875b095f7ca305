package view

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/transaction"
)

const dbTimeout = 5 * time.Second

var dateLayouts = []string{"2006-01-02", "02/01/2006"}

// FormatAmount renders a sol amount with thousands separators, e.g.
// "S/ 1,250.50".
func FormatAmount(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	whole, frac, _ := strings.Cut(d.StringFixed(2), ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}

		b.WriteRune(r)
	}

	return sign + "S/ " + b.String() + "." + frac
}

func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// ParseDate accepts AAAA-MM-DD or DD/MM/AAAA in the local time zone.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func TypeLabel(t transaction.Type) string {
	if t == transaction.TypeExpense {
		return "Gasto"
	}

	return "Ingreso"
}

// DbCtx returns a context with the standard timeout for store operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}
