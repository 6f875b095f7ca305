package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/category"
	enc "github.com/FinanceTrackerAP/FinanceTracker/internal/encoding"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/transaction"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/validation"
)

// ErrNoHeader is returned when no row of the file names the date, amount
// and description columns.
var ErrNoHeader = errors.New("no header row with date, amount and description columns")

var separators = []rune{';', ',', '\t'}

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"2006/01/02",
	time.RFC3339,
}

// Parser turns a CSV file into validated drafts. The header may follow a
// preamble of free text lines; its column names are matched in English or
// Spanish, with or without accents.
type Parser struct {
	loc *time.Location
}

func NewParser(loc *time.Location) *Parser {
	if loc == nil {
		loc = time.Local
	}

	return &Parser{loc: loc}
}

func (p *Parser) Parse(r io.Reader) (*Batch, error) {
	utf8r, charset, err := enc.Detect(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	for _, sep := range separators {
		batch, err := p.parseWith(data, sep)
		if errors.Is(err, ErrNoHeader) {
			continue
		}

		if err != nil {
			return nil, err
		}

		batch.Charset = charset

		return batch, nil
	}

	return nil, ErrNoHeader
}

func (p *Parser) parseWith(data []byte, sep rune) (*Batch, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sep
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var (
		cols  layout
		batch = &Batch{Separator: sep}
	)

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			if cols == nil {
				return nil, ErrNoHeader
			}

			return nil, fmt.Errorf("read csv: %w", err)
		}

		line, _ := reader.FieldPos(0)

		if cols == nil {
			if l, ok := matchHeader(row); ok {
				cols = l
			}

			continue
		}

		if p.footer(cols, row) {
			continue
		}

		draft, rejected := p.parseRow(cols, row, line)
		if len(rejected) > 0 {
			batch.Rejected = append(batch.Rejected, rejected...)
			continue
		}

		batch.Drafts = append(batch.Drafts, draft)
	}

	if cols == nil {
		return nil, ErrNoHeader
	}

	return batch, nil
}

// parseRow validates every cell of a data row and reports all failing
// fields at once.
func (p *Parser) parseRow(cols layout, row []string, line int) (Draft, []Rejection) {
	var rejected []Rejection

	reject := func(col column, msg string) {
		rejected = append(rejected, Rejection{Line: line, Field: col.String(), Message: msg})
	}

	draft := Draft{Line: line}

	date, msg := p.parseDate(cols.cell(row, colDate))
	if msg != "" {
		reject(colDate, msg)
	}

	draft.Date = date

	rawAmount := cols.cell(row, colAmount)
	amount, err := parseAmount(rawAmount)

	switch {
	case rawAmount == "":
		reject(colAmount, validation.Amount(rawAmount).Message)
	case err != nil:
		reject(colAmount, "Ingresa un monto válido")
	default:
		typ, ok := parseType(cols.cell(row, colType), amount)
		if !ok {
			reject(colType, "Tipo inválido, usa ingreso o gasto")
		}

		amount = amount.Abs()
		if r := validation.Amount(amount.String()); !r.Valid {
			reject(colAmount, r.Message)
		}

		draft.Type = typ
		draft.Amount = amount
	}

	draft.Description = cols.cell(row, colDescription)
	if r := validation.Description(draft.Description); !r.Valid {
		reject(colDescription, r.Message)
	}

	draft.Category = cols.cell(row, colCategory)
	if draft.Category == "" && draft.Type.Valid() {
		draft.Category = fallbackCategory(draft.Type)
	} else if r := validation.CategoryName(draft.Category); !r.Valid {
		reject(colCategory, r.Message)
	}

	return draft, rejected
}

// footer reports rows with neither a date nor an amount, such as totals or
// notes below the data.
func (p *Parser) footer(cols layout, row []string) bool {
	if cols.cell(row, colAmount) != "" {
		return false
	}

	_, msg := p.parseDate(cols.cell(row, colDate))

	return msg != ""
}

// parseDate returns the date in s, or the message to show when there is
// none.
func (p *Parser) parseDate(s string) (time.Time, string) {
	if s == "" {
		return time.Time{}, "La fecha es requerida"
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, p.loc); err == nil {
			return t, ""
		}
	}

	return time.Time{}, "Fecha inválida, usa AAAA-MM-DD o DD/MM/AAAA"
}

// fallbackCategory is the catch-all default of t, the last entry of its
// default table.
func fallbackCategory(t transaction.Type) string {
	defaults := category.Defaults(t)
	if len(defaults) == 0 {
		return ""
	}

	return defaults[len(defaults)-1].Name
}
