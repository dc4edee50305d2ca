package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/DanielPopoola/wallee-gateway/internal/application"
	"github.com/go-playground/validator"
)

const maxBodyBytes = 1 << 20

var validate = validator.New()

// Envelope is the success body of every JSON endpoint.
type Envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Envelope{Success: true, Data: data})
}

// DecodeJSON reads the body into dst and runs its validate tags. An empty body
// is accepted when allowEmpty is set. The returned error is a ServiceError or
// a *FieldErrors.
func DecodeJSON(r *http.Request, dst any, allowEmpty bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if !(allowEmpty && errors.Is(err, io.EOF)) {
			return application.NewInvalidInputError(fmt.Errorf("decode body: %w", err))
		}
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return newFieldErrors(verrs)
		}
		return application.NewInvalidInputError(err)
	}
	return nil
}

// FieldErrors lists failed validate tags by field.
type FieldErrors struct {
	Fields map[string]string
}

func (e *FieldErrors) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, tag := range e.Fields {
		parts = append(parts, field+": "+tag)
	}
	return "invalid fields: " + strings.Join(parts, ", ")
}

func newFieldErrors(verrs validator.ValidationErrors) *FieldErrors {
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Namespace()] = "failed " + fe.Tag()
	}
	return &FieldErrors{Fields: fields}
}

// WriteRequestError writes a decode or validation failure.
func WriteRequestError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var fieldErrs *FieldErrors
	if errors.As(err, &fieldErrs) {
		WriteValidationError(w, fieldErrs.Fields)
		return
	}
	WriteError(w, err, logger)
}
