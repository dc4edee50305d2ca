package services_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"testing"

	"github.com/DanielPopoola/wallee-gateway/internal/application"
	"github.com/DanielPopoola/wallee-gateway/internal/application/services"
	"github.com/DanielPopoola/wallee-gateway/internal/application/services/testhelpers"
	"github.com/DanielPopoola/wallee-gateway/internal/domain"
	"github.com/DanielPopoola/wallee-gateway/internal/infrastructure/processor"
	"github.com/DanielPopoola/wallee-gateway/internal/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const webhookSecret = "whsec-test"

type WebhookServiceTestSuite struct {
	suite.Suite
	txRepo     *fakeTransactionRepo
	refundRepo *fakeRefundRepo
	logRepo    *fakeWebhookLogRepo
	settings   *fakeSettingsRepo
	client     *mocks.MockProcessorClient
	service    *services.WebhookService
	local      *domain.Transaction
}

func TestWebhookServiceSuite(t *testing.T) {
	suite.Run(t, new(WebhookServiceTestSuite))
}

func (suite *WebhookServiceTestSuite) SetupTest() {
	suite.local = testhelpers.NewTransaction(suite.T(), 1001)
	suite.txRepo = newFakeTransactionRepo(suite.local)
	suite.refundRepo = &fakeRefundRepo{}
	suite.logRepo = newFakeWebhookLogRepo()
	suite.settings = enabledSettings()
	suite.settings.settings.WebhookSecret = webhookSecret
	suite.client = mocks.NewMockProcessorClient(suite.T())

	logger := quietLogger()
	reconciler := services.NewReconcileService(suite.txRepo, &fakeTransactor{}, suite.client, logger)
	terminals := services.NewTerminalService(newFakeTerminalRepo(), &fakeResourceRepo{}, suite.client, logger)
	suite.service = services.NewWebhookService(
		suite.logRepo,
		suite.txRepo,
		suite.refundRepo,
		suite.settings,
		suite.client,
		reconciler,
		terminals,
		logger,
	)
}

func sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (suite *WebhookServiceTestSuite) deliver(body string) (*services.WebhookResult, error) {
	return suite.service.Handle(context.Background(), services.WebhookRequest{
		Headers:   map[string]string{"Content-Type": "application/json"},
		Signature: sign([]byte(body)),
		Body:      []byte(body),
	})
}

// ============================================================================
// AUTHENTICATION
// ============================================================================

func (suite *WebhookServiceTestSuite) Test_BadSignature_Rejected() {
	body := []byte(`{"entityId":1001,"listenerEntityTechnicalName":"Transaction"}`)

	result, err := suite.service.Handle(context.Background(), services.WebhookRequest{
		Signature: "deadbeef",
		Body:      body,
	})

	suite.Require().Error(err)
	svcErr, ok := application.IsServiceError(err)
	suite.Require().True(ok)
	suite.Equal(application.ErrCodeUnauthorized, svcErr.Code)
	suite.Equal(http.StatusUnauthorized, result.HTTPStatus)

	entry := suite.logRepo.only()
	suite.Require().NotNil(entry)
	suite.Equal(domain.WebhookFailed, entry.Status)
	suite.Equal(http.StatusUnauthorized, *entry.HTTPStatus)
	suite.Equal(string(body), string(entry.Payload))
	suite.client.AssertNotCalled(suite.T(), "ReadTransaction", mock.Anything, mock.Anything)
}

func (suite *WebhookServiceTestSuite) Test_MissingSignature_Rejected() {
	result, err := suite.service.Handle(context.Background(), services.WebhookRequest{
		Body: []byte(`{"entityId":1001,"listenerEntityTechnicalName":"Transaction"}`),
	})

	suite.Error(err)
	suite.Equal(http.StatusUnauthorized, result.HTTPStatus)
}

func (suite *WebhookServiceTestSuite) Test_NoSecretConfigured_SkipsCheck() {
	suite.settings.settings.WebhookSecret = ""

	result, err := suite.service.Handle(context.Background(), services.WebhookRequest{
		Body: []byte(`{"entityId":9,"listenerEntityTechnicalName":"Space"}`),
	})

	suite.NoError(err)
	suite.Equal(domain.WebhookIgnored, result.Status)
}

// ============================================================================
// DISPATCH
// ============================================================================

func (suite *WebhookServiceTestSuite) Test_Transaction_Reconciled() {
	suite.client.EXPECT().ReadTransaction(mock.Anything, int64(1001)).
		Return(remoteTx(1001, "AUTHORIZED", map[string]any{"authorizationAmount": "100.00"}), nil).Once()

	result, err := suite.deliver(`{"entityId":1001,"listenerEntityTechnicalName":"Transaction","state":"AUTHORIZED","spaceId":405}`)

	suite.Require().NoError(err)
	suite.Equal(domain.WebhookProcessed, result.Status)
	suite.Equal(http.StatusOK, result.HTTPStatus)
	suite.Equal(domain.StatusAuthorized, suite.txRepo.get(suite.local.ID).Status)

	entry := suite.logRepo.only()
	suite.Equal("Transaction", entry.EntityType)
	suite.Equal("AUTHORIZED", entry.EventType)
	suite.Equal(suite.local.ID, *entry.TransactionID)
	suite.Equal(int64(405), *entry.SpaceID)
}

func (suite *WebhookServiceTestSuite) Test_UnknownEntity_Ignored() {
	result, err := suite.deliver(`{"entityId":5,"listenerEntityTechnicalName":"DeliveryIndication"}`)

	suite.NoError(err)
	suite.Equal(domain.WebhookIgnored, result.Status)
	suite.Equal(http.StatusOK, result.HTTPStatus)
}

func (suite *WebhookServiceTestSuite) Test_NoLocalRecord_IsNoop() {
	result, err := suite.deliver(`{"entityId":777,"listenerEntityTechnicalName":"Transaction"}`)

	suite.NoError(err)
	suite.Equal(domain.WebhookIgnored, result.Status)
	suite.Equal("no local record", result.Message)
	suite.Equal(0, suite.txRepo.updates)
}

func (suite *WebhookServiceTestSuite) Test_Refund_ResolvesOwningTransaction() {
	local := suite.txRepo.get(suite.local.ID)
	local.Status = domain.StatusCompleted

	refundID := int64(88)
	amount := decimal.NewFromInt(40)
	suite.client.EXPECT().ReadRefund(mock.Anything, int64(88)).
		Return(&processor.Refund{
			ID:          &refundID,
			State:       "SUCCESSFUL",
			Amount:      &amount,
			Transaction: &processor.RefundTransaction{ID: 1001},
		}, nil).Once()
	suite.client.EXPECT().ReadTransaction(mock.Anything, int64(1001)).
		Return(remoteTx(1001, "FULFILL", map[string]any{
			"authorizationAmount": "100.00",
			"completedAmount":     "100.00",
			"refundedAmount":      "40.00",
		}), nil).Once()

	result, err := suite.deliver(`{"entityId":88,"listenerEntityTechnicalName":"Refund"}`)

	suite.Require().NoError(err)
	suite.Equal(domain.WebhookProcessed, result.Status)
	got := suite.txRepo.get(suite.local.ID)
	suite.Equal(domain.StatusPartiallyRefunded, got.Status)
	suite.True(decimal.NewFromInt(40).Equal(got.RefundedAmount))
}

func (suite *WebhookServiceTestSuite) Test_Refund_UpdatesLocalRefund() {
	remoteRefundID := int64(88)
	local := domain.NewRefund("r-local", suite.local.ID, "ext-1", decimal.NewFromInt(10), "damaged", suite.local.CreatedAt)
	local.RemoteID = &remoteRefundID
	suite.Require().NoError(suite.refundRepo.Create(context.Background(), nil, local))

	suite.client.EXPECT().ReadRefund(mock.Anything, int64(88)).
		Return(&processor.Refund{ID: &remoteRefundID, State: "FAILED", ExternalID: "ext-1"}, nil).Once()

	result, err := suite.deliver(`{"entityId":88,"listenerEntityTechnicalName":"Refund"}`)

	suite.NoError(err)
	suite.Equal(domain.WebhookProcessed, result.Status)
	suite.Equal(domain.WebhookProcessed, suite.logRepo.only().Status)
	refunds, _ := suite.refundRepo.ListByTransaction(context.Background(), suite.local.ID)
	suite.Require().Len(refunds, 1)
	suite.Equal(domain.RefundFailed, refunds[0].State)
}

func (suite *WebhookServiceTestSuite) Test_TransactionCompletion_ResolvesOwningTransaction() {
	suite.client.EXPECT().ReadTransactionCompletion(mock.Anything, int64(55)).
		Return(map[string]any{"id": 55, "state": "SUCCESSFUL", "linkedTransaction": 1001}, nil).Once()
	suite.client.EXPECT().ReadTransaction(mock.Anything, int64(1001)).
		Return(remoteTx(1001, "COMPLETED", map[string]any{"completedAmount": "100.00"}), nil).Once()

	result, err := suite.deliver(`{"entityId":55,"listenerEntityTechnicalName":"TransactionCompletion"}`)

	suite.NoError(err)
	suite.Equal(domain.WebhookProcessed, result.Status)
	suite.Equal(domain.StatusCompleted, suite.txRepo.get(suite.local.ID).Status)
}

// ============================================================================
// FAILURES
// ============================================================================

func (suite *WebhookServiceTestSuite) Test_InvalidJSON_Failed() {
	result, err := suite.deliver(`not json`)

	suite.Error(err)
	suite.Equal(http.StatusBadRequest, result.HTTPStatus)
	suite.Equal(domain.WebhookFailed, suite.logRepo.only().Status)
}

func (suite *WebhookServiceTestSuite) Test_ProcessorError_MarksFailed() {
	suite.client.EXPECT().ReadTransaction(mock.Anything, int64(1001)).
		Return(nil, &processor.ProcessorError{Code: "SERVER_ERROR", Message: "down", StatusCode: 503}).Once()

	result, err := suite.deliver(`{"entityId":1001,"listenerEntityTechnicalName":"Transaction"}`)

	suite.Error(err)
	suite.Equal(http.StatusInternalServerError, result.HTTPStatus)
	entry := suite.logRepo.only()
	suite.Equal(domain.WebhookFailed, entry.Status)
	suite.Contains(entry.ErrorMessage, "down")
}

func (suite *WebhookServiceTestSuite) Test_CancelledContext_StillFinishesLog() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	suite.client.EXPECT().ReadTransaction(mock.Anything, int64(1001)).
		Run(func(mock.Arguments) { cancel() }).
		Return(nil, context.DeadlineExceeded).Once()

	body := []byte(`{"entityId":1001,"listenerEntityTechnicalName":"Transaction"}`)
	result, err := suite.service.Handle(ctx, services.WebhookRequest{
		Signature: sign(body),
		Body:      body,
	})

	suite.Error(err)
	suite.Equal(http.StatusInternalServerError, result.HTTPStatus)
	entry := suite.logRepo.only()
	suite.Require().NotNil(entry)
	suite.Equal(domain.WebhookFailed, entry.Status)
	suite.Equal(http.StatusInternalServerError, *entry.HTTPStatus)
}

func (suite *WebhookServiceTestSuite) Test_Panic_MarksFailedAndRepanics() {
	suite.client.EXPECT().ReadTransaction(mock.Anything, int64(1001)).
		Run(func(mock.Arguments) { panic("boom") }).
		Return(nil, nil).Once()

	suite.Panics(func() {
		_, _ = suite.deliver(`{"entityId":1001,"listenerEntityTechnicalName":"Transaction"}`)
	})

	entry := suite.logRepo.only()
	suite.Require().NotNil(entry)
	suite.Equal(domain.WebhookFailed, entry.Status)
	suite.Equal(http.StatusInternalServerError, *entry.HTTPStatus)
}

func (suite *WebhookServiceTestSuite) Test_ValidSignature() {
	body := []byte(`{"a":1}`)
	suite.True(services.ValidSignature(webhookSecret, body, sign(body)))
	suite.False(services.ValidSignature(webhookSecret, body, sign([]byte(`{"a":2}`))))
	suite.False(services.ValidSignature(webhookSecret, body, ""))
}
