package api

import (
	"net/http"
	"strings"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/identity"
)

type TokenVerifier interface {
	Verify(token string) (*identity.Session, error)
}

// Authenticate rejects requests without a valid bearer token and puts the
// token's session into the request context.
func Authenticate(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearer(r.Header.Get("Authorization"))
			if !ok {
				Error(w, r, identity.ErrNoSession)
				return
			}

			sess, err := v.Verify(token)
			if err != nil {
				Error(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(identity.WithSession(r.Context(), sess)))
		})
	}
}

func bearer(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)

	return token, token != ""
}
