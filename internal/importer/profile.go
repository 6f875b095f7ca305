package importer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type column int

const (
	colDate column = iota
	colType
	colAmount
	colDescription
	colCategory
)

func (c column) String() string {
	return [...]string{"date", "type", "amount", "description", "category"}[c]
}

// aliases lists the accepted header names per column, already folded.
var aliases = map[column][]string{
	colDate:        {"date", "fecha"},
	colType:        {"type", "tipo"},
	colAmount:      {"amount", "monto", "importe"},
	colDescription: {"description", "descripcion", "concepto", "detalle"},
	colCategory:    {"category", "categoria"},
}

// required columns must be present for a row to count as the header. Type
// falls back to the amount's sign and category to the catch-all defaults.
var required = []column{colDate, colAmount, colDescription}

// layout maps each recognized column to its index in the row.
type layout map[column]int

// matchHeader reports the column layout of row, or false when row is not a
// header.
func matchHeader(row []string) (layout, bool) {
	l := make(layout)

	for i, cell := range row {
		name := fold(cell)

		for col, names := range aliases {
			if _, seen := l[col]; seen {
				continue
			}

			for _, alias := range names {
				if name == alias {
					l[col] = i
				}
			}
		}
	}

	for _, col := range required {
		if _, ok := l[col]; !ok {
			return nil, false
		}
	}

	return l, true
}

func (l layout) cell(row []string, col column) string {
	idx, ok := l[col]
	if !ok || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

var stripMarks = runes.Remove(runes.In(unicode.Mn))

// fold lowercases s and removes accents, so "Descripción" matches
// "descripcion".
func fold(s string) string {
	t := transform.Chain(norm.NFD, stripMarks, norm.NFC)

	out, _, err := transform.String(t, strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(s))
	}

	return out
}
