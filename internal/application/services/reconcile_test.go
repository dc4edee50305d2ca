package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DanielPopoola/wallee-gateway/internal/application/services"
	"github.com/DanielPopoola/wallee-gateway/internal/application/services/testhelpers"
	"github.com/DanielPopoola/wallee-gateway/internal/domain"
	"github.com/DanielPopoola/wallee-gateway/internal/infrastructure/processor"
	"github.com/DanielPopoola/wallee-gateway/internal/mocks"
	"github.com/DanielPopoola/wallee-gateway/internal/normalize"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func remoteTx(id int64, state string, fields map[string]any) normalize.Map {
	m := normalize.Map{"id": id, "state": state}
	for k, v := range fields {
		m[k] = v
	}
	return m
}

func TestReconcileService_ApplyPersistsAndIsIdempotent(t *testing.T) {
	tx := testhelpers.NewTransaction(t, 1001)
	repo := newFakeTransactionRepo(tx)
	db := &fakeTransactor{}
	svc := services.NewReconcileService(repo, db, mocks.NewMockProcessorClient(t), quietLogger())

	snap := normalize.Transaction(remoteTx(1001, "FULFILL", map[string]any{
		"authorizationAmount": "100.00",
		"completedAmount":     "100.00",
		"totalAppliedFees":    "2.90",
	}))

	first, err := svc.Apply(context.Background(), tx.ID, snap)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFulfill, first.Status)
	assert.True(t, decimal.RequireFromString("97.10").Equal(*first.NetAmount))

	second, err := svc.Apply(context.Background(), tx.ID, snap)
	require.NoError(t, err)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.CompletedAt, second.CompletedAt)
	assert.True(t, first.NetAmount.Equal(*second.NetAmount))

	assert.Equal(t, 2, db.calls)
	assert.Equal(t, domain.StatusFulfill, repo.get(tx.ID).Status)
}

func TestReconcileService_PartialThenFullRefund(t *testing.T) {
	tx := testhelpers.NewTransaction(t, 1001)
	tx.Status = domain.StatusCompleted
	repo := newFakeTransactionRepo(tx)
	svc := services.NewReconcileService(repo, &fakeTransactor{}, mocks.NewMockProcessorClient(t), quietLogger())
	ctx := context.Background()

	got, err := svc.Apply(ctx, tx.ID, normalize.Transaction(remoteTx(1001, "FULFILL", map[string]any{
		"authorizationAmount": 100,
		"refundedAmount":      40,
	})))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPartiallyRefunded, got.Status)
	assert.True(t, decimal.NewFromInt(40).Equal(got.RefundedAmount))

	got, err = svc.Apply(ctx, tx.ID, normalize.Transaction(remoteTx(1001, "FULFILL", map[string]any{
		"authorizationAmount": 100,
		"refundedAmount":      100,
	})))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRefunded, got.Status)
}

func TestReconcileService_SyncReadsRemote(t *testing.T) {
	tx := testhelpers.NewTransaction(t, 1001)
	repo := newFakeTransactionRepo(tx)
	client := mocks.NewMockProcessorClient(t)
	svc := services.NewReconcileService(repo, &fakeTransactor{}, client, quietLogger())

	client.EXPECT().ReadTransaction(mock.Anything, int64(1001)).
		Return(remoteTx(1001, "AUTHORIZED", map[string]any{"authorizationAmount": "100.00"}), nil).Once()

	got, err := svc.Sync(context.Background(), tx)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAuthorized, got.Status)
	assert.NotNil(t, got.AuthorizedAt)
}

func TestReconcileService_SyncWithoutRemoteID(t *testing.T) {
	tx := testhelpers.NewTransaction(t, 1)
	tx.RemoteID = nil
	svc := services.NewReconcileService(newFakeTransactionRepo(tx), &fakeTransactor{}, mocks.NewMockProcessorClient(t), quietLogger())

	_, err := svc.Sync(context.Background(), tx)
	assert.ErrorIs(t, err, domain.ErrMissingRequiredField)
}

func TestReconcileService_SyncPropagatesProcessorError(t *testing.T) {
	tx := testhelpers.NewTransaction(t, 1001)
	repo := newFakeTransactionRepo(tx)
	client := mocks.NewMockProcessorClient(t)
	svc := services.NewReconcileService(repo, &fakeTransactor{}, client, quietLogger())

	remoteErr := &processor.ProcessorError{Code: "SERVER_ERROR", Message: "down", StatusCode: 503}
	client.EXPECT().ReadTransaction(mock.Anything, int64(1001)).Return(nil, remoteErr).Once()

	_, err := svc.Sync(context.Background(), tx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, remoteErr))
	assert.Equal(t, 0, repo.updates)
}
