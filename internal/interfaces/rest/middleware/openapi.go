package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/DanielPopoola/wallee-gateway/internal/application"
	"github.com/DanielPopoola/wallee-gateway/internal/interfaces/rest"
)

// RequestValidator checks a request against the API document.
type RequestValidator interface {
	Validate(r *http.Request) error
}

// OpenAPI rejects requests under prefix that do not match the API document.
func OpenAPI(v RequestValidator, prefix string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, prefix) {
				if err := v.Validate(r); err != nil {
					rest.WriteError(w, application.NewInvalidInputError(err), logger)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
