// Package importer loads transactions from CSV files exported by
// spreadsheets or other bookkeeping tools.
package importer

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/transaction"
)

// Draft is a data row that passed validation and is ready to be stored.
type Draft struct {
	Line        int
	Type        transaction.Type
	Amount      decimal.Decimal
	Description string
	Category    string
	Date        time.Time
}

// Rejection explains why a row was not imported. Line is 1-based and
// counts every line of the file, header included.
type Rejection struct {
	Line    int    `json:"line"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Batch is the parsed content of one file.
type Batch struct {
	Charset   string
	Separator rune
	Drafts    []Draft
	Rejected  []Rejection
}

// Report is the outcome of an import.
type Report struct {
	Charset  string      `json:"charset"`
	Imported []string    `json:"imported"`
	Rejected []Rejection `json:"rejected"`
}
