package view_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/FinanceTrackerAP/FinanceTracker/cmd/tui/internal/view"
)

func TestFormatAmount(t *testing.T) {
	type testCase struct {
		in   string
		want string
	}

	tests := []testCase{
		{in: "0", want: "S/ 0.00"},
		{in: "12.5", want: "S/ 12.50"},
		{in: "999", want: "S/ 999.00"},
		{in: "1250.5", want: "S/ 1,250.50"},
		{in: "1234567.891", want: "S/ 1,234,567.89"},
		{in: "-70", want: "-S/ 70.00"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, view.FormatAmount(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local)

	for _, in := range []string{"2024-03-15", "15/03/2024", " 2024-03-15 "} {
		got, ok := view.ParseDate(in)
		assert.True(t, ok, in)
		assert.True(t, want.Equal(got), in)
	}

	for _, in := range []string{"", "15-03-2024", "2024-13-01", "mañana"} {
		_, ok := view.ParseDate(in)
		assert.False(t, ok, in)
	}
}
