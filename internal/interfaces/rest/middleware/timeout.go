package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/DanielPopoola/wallee-gateway/internal/application"
	"github.com/DanielPopoola/wallee-gateway/internal/interfaces/rest"
)

// Timeout bounds each request. Handlers see the deadline on their context; a
// handler that overruns it is answered with a TIMEOUT envelope.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	_, body := rest.BuildErrorResponse(application.NewTimeoutError())
	msg, _ := json.Marshal(body)

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, string(msg))
	}
}
