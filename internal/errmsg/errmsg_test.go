package errmsg_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/errmsg"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "Code", raw: "ERROR_WRONG_PASSWORD", want: "Contraseña incorrecta"},
		{name: "NetworkCode", raw: "ERROR_NETWORK_REQUEST_FAILED", want: "Error de conexión. Verifica tu internet"},
		{name: "LongFormMessage", raw: "The email address is badly formatted.", want: "El formato del email es inválido"},
		{name: "Unknown", raw: "boom", want: "Error: boom"},
		{name: "Empty", raw: "", want: "Error: "},
		{name: "NotFuzzy", raw: "ERROR_WRONG_PASSWORD ", want: "Error: ERROR_WRONG_PASSWORD "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errmsg.Translate(tt.raw))
		})
	}
}

func TestTranslate_TruncatesUnknown(t *testing.T) {
	raw := strings.Repeat("x", 150)

	got := errmsg.Translate(raw)
	assert.Equal(t, "Error: "+strings.Repeat("x", 100), got)
}
