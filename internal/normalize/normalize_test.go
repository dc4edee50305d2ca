package normalize_test

import (
	"testing"
	"time"

	"github.com/DanielPopoola/wallee-gateway/internal/domain"
	"github.com/DanielPopoola/wallee-gateway/internal/normalize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type state string

func (s state) Value() string { return string(s) }

type typedTransaction struct {
	ID     int64
	State  state
	Amount string
}

func (t typedTransaction) Attr(name string) (any, bool) {
	switch name {
	case "id":
		return t.ID, true
	case "state":
		return t.State, true
	case "authorizationAmount":
		return t.Amount, true
	}
	return nil, false
}

func TestMap_LookupVariants(t *testing.T) {
	m := normalize.Map{"entity_id": 1, "spaceId": 2}

	v, ok := m.Lookup("entityId")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = m.Lookup("space_id")
	require.True(t, ok)
	assert.Equal(t, 2, v)

	_, ok = m.Lookup("missing")
	assert.False(t, ok)
}

func TestGet_NestedPaths(t *testing.T) {
	src := normalize.FromJSON([]byte(`{"failureReason":{"description":{"de-CH":"Abgelehnt","en-US":"Declined"}},"transaction":{"id":77}}`))

	assert.Equal(t, int64(77), *normalize.Int64(src, "transaction.id"))
	assert.Nil(t, normalize.Get(src, "transaction.id.deeper"))
	assert.Nil(t, normalize.Get(src, "nothing.here"))
}

func TestEnum_UnwrapsOneLevel(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want string
	}{
		{"plain string", "authorized", "AUTHORIZED"},
		{"valuer", state("Completed"), "COMPLETED"},
		{"value map", map[string]any{"value": "voided"}, "VOIDED"},
		{"missing", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := normalize.Map{"state": tt.raw}
			assert.Equal(t, tt.want, normalize.Enum(src, "state"))
		})
	}
}

func TestTransaction_FromJSON(t *testing.T) {
	payload := []byte(`{
		"id": 4711,
		"state": "COMPLETED",
		"merchantReference": "abc",
		"currency": "CHF",
		"authorizationAmount": 50.00,
		"completedAmount": "50.00",
		"refundedAmount": 0,
		"totalAppliedFees": 1.45,
		"completedOn": "2026-03-14T09:30:00Z",
		"failureReason": null,
		"paymentConnectorConfiguration": {"paymentMethodConfiguration": {"name": "Visa"}},
		"lineItems": [
			{"name": "Widget", "quantity": 2, "amountIncludingTax": 50.00, "uniqueId": "w-1", "type": "PRODUCT"}
		]
	}`)

	snap := normalize.Transaction(normalize.FromJSON(payload))

	require.NotNil(t, snap.RemoteID)
	assert.Equal(t, int64(4711), *snap.RemoteID)
	assert.Equal(t, "COMPLETED", snap.State)
	assert.Equal(t, "50", snap.AuthorizedAmount.String())
	assert.Equal(t, "50", snap.CompletedAmount.String())
	assert.True(t, snap.RefundedAmount.IsZero())
	assert.Equal(t, "1.45", snap.AppliedFees.String())
	assert.Nil(t, snap.SettledAmount)
	assert.Equal(t, time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC), snap.CompletedOn.UTC())
	assert.Equal(t, "Visa", snap.PaymentMethod)
	assert.Empty(t, snap.FailureReason)

	require.True(t, snap.HasLineItems)
	require.Len(t, snap.LineItems, 1)
	assert.Equal(t, "Widget", snap.LineItems[0].Name)
	assert.Equal(t, "25", snap.LineItems[0].UnitPrice.String())
	assert.Equal(t, domain.LineItemProduct, snap.LineItems[0].Type)
	assert.JSONEq(t, string(payload), string(snap.Raw))
}

func TestTransaction_PartialPayloadNeverFails(t *testing.T) {
	for _, payload := range [][]byte{nil, []byte(`not json`), []byte(`{}`), []byte(`{"state": 12, "lineItems": "nope"}`)} {
		snap := normalize.Transaction(normalize.FromJSON(payload))
		assert.Nil(t, snap.RemoteID)
		assert.Nil(t, snap.AuthorizedAmount)
		assert.False(t, snap.HasLineItems)
	}
}

func TestTransaction_FromObject(t *testing.T) {
	snap := normalize.Transaction(normalize.From(typedTransaction{ID: 9, State: state("authorized"), Amount: "12.50"}))

	assert.Equal(t, int64(9), *snap.RemoteID)
	assert.Equal(t, "AUTHORIZED", snap.State)
	assert.Equal(t, "12.5", snap.AuthorizedAmount.String())
	assert.Nil(t, snap.CompletedAmount)
}

func TestFailureReason_Localized(t *testing.T) {
	src := normalize.FromJSON([]byte(`{"state":"FAILED","failureReason":{"description":{"de-CH":"Abgelehnt","en-US":"Declined"}}}`))
	assert.Equal(t, "Declined", normalize.Transaction(src).FailureReason)

	src = normalize.Map{"failureReason": "Insufficient funds"}
	assert.Equal(t, "Insufficient funds", normalize.Transaction(src).FailureReason)
}

func TestRefund(t *testing.T) {
	snap := normalize.Refund(normalize.FromJSON([]byte(`{"id":5,"state":"SUCCESSFUL","amount":"10.00","transaction":{"id":4711},"externalId":"ext-1"}`)))

	assert.Equal(t, int64(5), *snap.RemoteID)
	assert.Equal(t, int64(4711), *snap.TransactionID)
	assert.Equal(t, "SUCCESSFUL", snap.State)
	assert.Equal(t, "ext-1", snap.ExternalID)
}

func TestCompletion(t *testing.T) {
	snap := normalize.Completion(normalize.FromJSON([]byte(`{"id":8,"linkedTransaction":4711,"state":"SUCCESSFUL"}`)))

	assert.Equal(t, int64(4711), *snap.TransactionID)
}

func TestTerminal(t *testing.T) {
	snap := normalize.Terminal(normalize.FromJSON([]byte(`{
		"id": 3, "identifier": "T-3", "name": "Counter", "state": "ACTIVE",
		"type": {"name": "Yomani"}, "defaultCurrency": "CHF",
		"configurationVersion": {"id": 11}, "locationVersion": 12
	}`)))

	assert.Equal(t, int64(3), *snap.RemoteID)
	assert.Equal(t, "Yomani", snap.Type)
	assert.Equal(t, int64(11), *snap.ConfigurationVersion)
	assert.Equal(t, int64(12), *snap.LocationVersion)
}

func TestWebhook(t *testing.T) {
	ev := normalize.Webhook(normalize.FromJSON([]byte(`{"entityId":4711,"listenerEntityTechnicalName":"Transaction","state":"authorized","spaceId":1}`)))

	assert.Equal(t, domain.EntityTransaction, ev.EntityType)
	assert.Equal(t, int64(4711), *ev.EntityID)
	assert.Equal(t, "AUTHORIZED", ev.State)
	assert.Equal(t, int64(1), *ev.SpaceID)
}
