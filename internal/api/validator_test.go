package api_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DanielPopoola/wallee-gateway/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidator(t *testing.T) *api.RequestValidator {
	t.Helper()
	v, err := api.NewRequestValidator(context.Background())
	require.NoError(t, err)
	return v
}

func jsonRequest(method, path, body string) *http.Request {
	r := httptest.NewRequest(method, path, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func TestRequestValidator_AcceptsValidCheckout(t *testing.T) {
	v := newValidator(t)
	body := `{"items":[{"name":"Widget","quantity":2,"amount":"25.00"}],"currency":"CHF"}`
	r := jsonRequest(http.MethodPost, "/api/v1/checkout", body)

	require.NoError(t, v.Validate(r))

	restored, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	assert.JSONEq(t, body, string(restored))
}

func TestRequestValidator_RejectsInvalidBodies(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		name string
		path string
		body string
	}{
		{"checkout without items", "/api/v1/checkout", `{"currency":"CHF","items":[]}`},
		{"checkout bad currency", "/api/v1/checkout", `{"currency":"SWISS","items":[{"amount":1}]}`},
		{"payment link without invoice", "/api/v1/payment-links", `{"amount":"10","currency":"CHF"}`},
		{"terminal payment negative", "/api/v1/terminal-payments", `{"amount":-1,"currency":"CHF"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, v.Validate(jsonRequest(http.MethodPost, tt.path, tt.body)))
		})
	}
}

func TestRequestValidator_RejectsBadQueryParam(t *testing.T) {
	v := newValidator(t)

	err := v.Validate(httptest.NewRequest(http.MethodGet, "/api/v1/terminals?status=Broken", nil))

	assert.Error(t, err)
}

func TestRequestValidator_IgnoresUndescribedRoutes(t *testing.T) {
	v := newValidator(t)

	assert.NoError(t, v.Validate(jsonRequest(http.MethodPost, "/webhooks/wallee", `not json`)))
	assert.NoError(t, v.Validate(httptest.NewRequest(http.MethodDelete, "/api/v1/settings", nil)))
}

func TestRegisterDocsRoutes(t *testing.T) {
	mux := http.NewServeMux()
	api.RegisterDocsRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"/api/v1/checkout"`)
}
