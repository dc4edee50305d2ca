package e2e

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkout(t *testing.T, g *Gateway) CheckoutResponse {
	t.Helper()
	status, resp := Do[CheckoutResponse](t, g, http.MethodPost, "/api/v1/checkout", map[string]any{
		"currency": "CHF",
		"items": []map[string]any{
			{"name": "Widget", "quantity": 2, "amount": "25.00"},
		},
	})
	require.Equal(t, http.StatusCreated, status)
	return resp
}

func TestE2E_CheckoutWebhookRefund(t *testing.T) {
	g := StartGateway(t)

	created := checkout(t, g)
	assert.Equal(t, "Pending", created.Transaction.Status)
	assert.NotEmpty(t, created.PaymentURL)
	remoteID := created.Transaction.RemoteID
	require.NotZero(t, remoteID)

	g.Processor.SetState(remoteID, "FULFILL", map[string]any{
		"authorizationAmount": 50,
		"completedAmount":     50,
	})
	assert.Equal(t, http.StatusOK, SendWebhook(t, g, "Transaction", remoteID))

	status, tx := Do[Transaction](t, g, http.MethodGet, "/api/v1/transactions/"+created.Transaction.ID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Fulfill", tx.Status)

	status, refund := Do[RefundResponse](t, g, http.MethodPost, "/api/v1/transactions/"+tx.ID+"/refunds", map[string]any{
		"amount": "20",
		"reason": "damaged",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Successful", refund.Refund.State)
	assert.Equal(t, "Partially Refunded", refund.Transaction.Status)
}

func TestE2E_WebhookBadSignatureRejected(t *testing.T) {
	g := StartGateway(t)

	req, err := http.NewRequest(http.MethodPost, g.Server.URL+"/webhooks/wallee", strings.NewReader(`{"entityId":1}`))
	require.NoError(t, err)
	req.Header.Set("X-Signature", "deadbeef")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestE2E_SuccessPageRedirectsDeclined(t *testing.T) {
	g := StartGateway(t)
	created := checkout(t, g)
	g.Processor.SetState(created.Transaction.RemoteID, "DECLINE", map[string]any{
		"failureReason": map[string]any{"description": map[string]any{"en-US": "Card expired"}},
	})

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
	resp, err := client.Get(g.Server.URL + "/wallee/success?transaction_id=" + itoa(created.Transaction.RemoteID))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "merchant_reference="+created.Transaction.MerchantReference)
}

func TestE2E_RequestValidation(t *testing.T) {
	g := StartGateway(t)

	status, _ := Do[any](t, g, http.MethodPost, "/api/v1/checkout", map[string]any{"currency": "CHF", "items": []any{}})

	assert.Equal(t, http.StatusBadRequest, status)
}

func TestE2E_DocsServed(t *testing.T) {
	g := StartGateway(t)

	resp, err := http.Get(g.Server.URL + "/openapi.json")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
