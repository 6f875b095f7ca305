package importer_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/importer"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/transaction"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func parse(t *testing.T, csv string) *importer.Batch {
	t.Helper()

	batch, err := importer.NewParser(time.UTC).Parse(strings.NewReader(csv))
	require.NoError(t, err)

	return batch
}

func TestParser_SpanishSemicolon(t *testing.T) {
	csv := `Reporte de caja - Bodega Ana
Periodo;Enero 2024

Fecha;Tipo;Monto;Descripción;Categoría
15/01/2024;ingreso;1.250,50;Venta del día;Ventas
16/01/2024;gasto;-80,00;Compra de bolsas;Materiales y suministros
`

	batch := parse(t, csv)
	assert.Equal(t, ';', batch.Separator)
	assert.Empty(t, batch.Rejected)
	require.Len(t, batch.Drafts, 2)

	first := batch.Drafts[0]
	assert.Equal(t, 5, first.Line)
	assert.Equal(t, date(2024, 1, 15), first.Date)
	assert.Equal(t, transaction.TypeIncome, first.Type)
	assert.True(t, amount("1250.50").Equal(first.Amount))
	assert.Equal(t, "Venta del día", first.Description)
	assert.Equal(t, "Ventas", first.Category)

	second := batch.Drafts[1]
	assert.Equal(t, transaction.TypeExpense, second.Type)
	assert.True(t, amount("80").Equal(second.Amount), "stored amounts are positive")
}

func TestParser_EnglishComma(t *testing.T) {
	csv := `date,type,amount,description,category
2024-02-01,INCOME,"1,200.00",Consulting invoice,Servicios
2024-02-03,EXPENSE,45.90,Office supplies,
`

	batch := parse(t, csv)
	assert.Equal(t, ',', batch.Separator)
	assert.Empty(t, batch.Rejected)
	require.Len(t, batch.Drafts, 2)

	assert.True(t, amount("1200").Equal(batch.Drafts[0].Amount))
	assert.Equal(t, "Otros gastos", batch.Drafts[1].Category, "blank category falls back to the catch-all")
}

func TestParser_TypeFromSign(t *testing.T) {
	csv := `Fecha;Monto;Descripción
01-03-2024;-12,50;Pasaje de taxi
02-03-2024;300;Cobro de cliente
`

	batch := parse(t, csv)
	require.Len(t, batch.Drafts, 2)

	assert.Equal(t, transaction.TypeExpense, batch.Drafts[0].Type)
	assert.Equal(t, "Otros gastos", batch.Drafts[0].Category)
	assert.Equal(t, transaction.TypeIncome, batch.Drafts[1].Type)
	assert.Equal(t, "Otros ingresos", batch.Drafts[1].Category)
}

func TestParser_DifferentColumnOrder(t *testing.T) {
	csv := `Monto;Ignorado;Descripcion;FECHA
20,00;x;Pago de luz;2024-04-10
`

	batch := parse(t, csv)
	require.Len(t, batch.Drafts, 1)
	assert.Equal(t, "Pago de luz", batch.Drafts[0].Description)
	assert.Equal(t, date(2024, 4, 10), batch.Drafts[0].Date)
}

func TestParser_RejectsInvalidRows(t *testing.T) {
	csv := `fecha;tipo;monto;descripcion;categoria
2024-01-01;ingreso;10;Venta válida;Ventas
2024-13-01;ingreso;10;Fecha mala;Ventas
2024-01-02;ingreso;abc;Monto malo;Ventas
2024-01-03;ingreso;0;Monto cero;Ventas
2024-01-04;regalo;10;Tipo malo;Ventas
2024-01-05;ingreso;10;ab;V
2024-01-06;gasto;1000000000;Monto enorme;Alquiler
`

	batch := parse(t, csv)
	require.Len(t, batch.Drafts, 1)
	assert.Equal(t, "Venta válida", batch.Drafts[0].Description)

	assert.Equal(t, []importer.Rejection{
		{Line: 3, Field: "date", Message: "Fecha inválida, usa AAAA-MM-DD o DD/MM/AAAA"},
		{Line: 4, Field: "amount", Message: "Ingresa un monto válido"},
		{Line: 5, Field: "amount", Message: "El monto debe ser mayor a 0"},
		{Line: 6, Field: "type", Message: "Tipo inválido, usa ingreso o gasto"},
		{Line: 7, Field: "description", Message: "La descripción debe tener al menos 3 caracteres"},
		{Line: 7, Field: "category", Message: "La categoría debe tener al menos 2 caracteres"},
		{Line: 8, Field: "amount", Message: "El monto es demasiado grande"},
	}, batch.Rejected)
}

func TestParser_SkipsFooterRows(t *testing.T) {
	csv := `Fecha;Monto;Descripción
2024-01-01;10,00;Venta mostrador

Totales;;
`

	batch := parse(t, csv)
	assert.Len(t, batch.Drafts, 1)
	assert.Empty(t, batch.Rejected)
}

func TestParser_Latin1Encoding(t *testing.T) {
	utf8CSV := "Fecha;Monto;Descripción;Categoría\n2024-01-01;-10,00;Café para la tienda;Gastos operativos\n"

	latin1, err := charmap.Windows1252.NewEncoder().Bytes([]byte(utf8CSV))
	require.NoError(t, err)

	batch, err := importer.NewParser(time.UTC).Parse(bytes.NewReader(latin1))
	require.NoError(t, err)
	require.Len(t, batch.Drafts, 1)

	assert.Equal(t, "Café para la tienda", batch.Drafts[0].Description)
	assert.NotEqual(t, "UTF-8", batch.Charset)
}

func TestParser_NoHeader(t *testing.T) {
	for _, csv := range []string{"", "a;b;c\n1;2;3\n", "fecha;monto\n2024-01-01;10\n"} {
		_, err := importer.NewParser(time.UTC).Parse(strings.NewReader(csv))
		assert.ErrorIs(t, err, importer.ErrNoHeader)
	}
}

func TestParser_HeaderOnly(t *testing.T) {
	batch := parse(t, "date;amount;description")
	assert.Empty(t, batch.Drafts)
	assert.Empty(t, batch.Rejected)
}

func TestParser_AmountFormats(t *testing.T) {
	type testCase struct {
		raw  string
		want string
		typ  transaction.Type
	}

	tests := []testCase{
		{raw: "1.234,56", want: "1234.56", typ: transaction.TypeIncome},
		{raw: "1,234.56", want: "1234.56", typ: transaction.TypeIncome},
		{raw: "-588,74", want: "588.74", typ: transaction.TypeExpense},
		{raw: "(12.50)", want: "12.5", typ: transaction.TypeExpense},
		{raw: "S/ 25", want: "25", typ: transaction.TypeIncome},
		{raw: "1.234.567,89", want: "1234567.89", typ: transaction.TypeIncome},
		{raw: "1,500", want: "1500", typ: transaction.TypeIncome},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			batch := parse(t, "date\tamount\tdescription\n2024-01-01\t"+tt.raw+"\tVenta\n")
			require.Len(t, batch.Drafts, 1, batch.Rejected)

			assert.True(t, amount(tt.want).Equal(batch.Drafts[0].Amount), batch.Drafts[0].Amount.String())
			assert.Equal(t, tt.typ, batch.Drafts[0].Type)
		})
	}
}
