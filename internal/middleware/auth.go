package middleware

import (
	"net/http"
	"strings"

	"github.com/rookgm/shopreport/internal/auth"
)

// Auth verifies the bearer token on report api requests
func Auth(token *auth.AuthToken) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenString == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			if _, err := token.VerifyToken(tokenString); err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
