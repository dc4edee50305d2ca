package testhelpers

import (
	"testing"
	"time"

	"github.com/DanielPopoola/wallee-gateway/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// NewTransaction returns a Pending online transaction for 100.00 CHF with a
// remote id and two line items.
func NewTransaction(t *testing.T, remoteID int64) *domain.Transaction {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)

	tx, err := domain.NewTransaction(
		uuid.NewString(),
		"ref-"+uuid.NewString()[:8],
		domain.TypeOnline,
		decimal.RequireFromString("100.00"),
		"CHF",
		now,
	)
	require.NoError(t, err)

	tx.AssignRemoteID(remoteID)
	tx.LineItems = []domain.LineItem{
		{Name: "Widget", UniqueID: "w-1", Type: domain.LineItemProduct, Quantity: decimal.NewFromInt(2), UnitPrice: decimal.RequireFromString("45.00")},
		{Name: "Shipping", UniqueID: "s-1", Type: domain.LineItemShipping, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString("10.00")},
	}
	return tx
}

// NewActiveTerminal returns an active terminal snapshot for remoteID.
func NewActiveTerminal(t *testing.T, remoteID int64) *domain.Terminal {
	t.Helper()
	term, err := domain.NewTerminalFromSnapshot(uuid.NewString(), domain.TerminalSnapshot{
		RemoteID:   &remoteID,
		Identifier: "T-" + uuid.NewString()[:6],
		Name:       "Front desk",
		State:      "ACTIVE",
	}, time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, err)
	return term
}
