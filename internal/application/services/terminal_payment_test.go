package services_test

import (
	"context"
	"errors"
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

type TerminalPaymentServiceTestSuite struct {
	suite.Suite
	txRepo       *fakeTransactionRepo
	terminalRepo *fakeTerminalRepo
	settings     *fakeSettingsRepo
	queue        *fakeQueue
	client       *mocks.MockProcessorClient
	service      *services.TerminalPaymentService
	terminal     *domain.Terminal
}

func TestTerminalPaymentServiceSuite(t *testing.T) {
	suite.Run(t, new(TerminalPaymentServiceTestSuite))
}

func (suite *TerminalPaymentServiceTestSuite) SetupTest() {
	suite.terminal = testhelpers.NewActiveTerminal(suite.T(), 31)
	suite.terminal.IsDefault = true

	suite.txRepo = newFakeTransactionRepo()
	suite.terminalRepo = newFakeTerminalRepo(suite.terminal)
	suite.settings = enabledSettings()
	suite.queue = &fakeQueue{}
	suite.client = mocks.NewMockProcessorClient(suite.T())

	db := &fakeTransactor{}
	logger := quietLogger()
	reconciler := services.NewReconcileService(suite.txRepo, db, suite.client, logger)
	suite.service = services.NewTerminalPaymentService(
		suite.txRepo,
		suite.terminalRepo,
		suite.settings,
		db,
		suite.client,
		suite.queue,
		reconciler,
		logger,
	)
}

// seedTerminalPayment stores a Processing terminal transaction with remote id 2001.
func (suite *TerminalPaymentServiceTestSuite) seedTerminalPayment(status domain.TransactionStatus) *domain.Transaction {
	t := testhelpers.NewTransaction(suite.T(), 2001)
	t.Type = domain.TypeTerminal
	t.Status = status
	t.TerminalID = &suite.terminal.ID
	suite.Require().NoError(suite.txRepo.Create(context.Background(), nil, t))
	return t
}

// ============================================================================
// INITIATE
// ============================================================================

func (suite *TerminalPaymentServiceTestSuite) Test_Initiate_QueuesDeviceCall() {
	suite.client.EXPECT().CreateTransaction(mock.Anything, mock.MatchedBy(func(req processor.CreateTransactionRequest) bool {
		return !req.AutoConfirmationEnabled &&
			req.Currency == "CHF" &&
			req.MerchantReference == "POS-INV-7" &&
			len(req.LineItems) == 1 &&
			req.LineItems[0].Name == "POS Payment - POS-INV-7"
	})).Return(map[string]any{"id": 2001, "state": "PENDING"}, nil).Once()

	result, err := suite.service.Initiate(context.Background(), services.InitiateTerminalPaymentCommand{
		Amount:     decimal.RequireFromString("42.50"),
		Currency:   "chf",
		POSInvoice: "POS-INV-7",
	})

	suite.Require().NoError(err)
	suite.Equal(suite.terminal.ID, result.Terminal.ID)
	suite.Equal(domain.StatusProcessing, result.Transaction.Status)
	suite.Equal(domain.TypeTerminal, result.Transaction.Type)
	suite.Equal("POS Invoice", *result.Transaction.ReferenceType)

	suite.Require().Len(suite.queue.tasks, 1)
	suite.Equal(application.TerminalPaymentTask{
		TransactionID:       result.Transaction.ID,
		RemoteTransactionID: 2001,
		RemoteTerminalID:    31,
	}, suite.queue.tasks[0])

	stored := suite.txRepo.get(result.Transaction.ID)
	suite.Require().NotNil(stored)
	suite.Equal(suite.terminal.ID, *stored.TerminalID)
}

func (suite *TerminalPaymentServiceTestSuite) Test_Initiate_QueueRejected() {
	suite.queue.err = errors.New("broker unavailable")
	suite.client.EXPECT().CreateTransaction(mock.Anything, mock.Anything).
		Return(map[string]any{"id": 2001, "state": "PENDING"}, nil).Once()

	_, err := suite.service.Initiate(context.Background(), services.InitiateTerminalPaymentCommand{
		Amount:   decimal.NewFromInt(10),
		Currency: "CHF",
	})

	svcErr, ok := application.IsServiceError(err)
	suite.Require().True(ok)
	suite.Equal(application.ErrCodeQueueRejected, svcErr.Code)

	stored, findErr := suite.txRepo.FindByRemoteID(context.Background(), 2001)
	suite.Require().NoError(findErr)
	suite.Equal(domain.StatusFailed, stored.Status)
}

func (suite *TerminalPaymentServiceTestSuite) Test_Initiate_NoTerminal() {
	suite.terminalRepo = newFakeTerminalRepo()
	suite.service = services.NewTerminalPaymentService(
		suite.txRepo, suite.terminalRepo, suite.settings, &fakeTransactor{},
		suite.client, suite.queue, nil, quietLogger(),
	)

	_, err := suite.service.Initiate(context.Background(), services.InitiateTerminalPaymentCommand{
		Amount:   decimal.NewFromInt(10),
		Currency: "CHF",
	})

	suite.ErrorIs(err, domain.ErrTerminalUnavailable)
	suite.client.AssertNotCalled(suite.T(), "CreateTransaction", mock.Anything, mock.Anything)
}

func (suite *TerminalPaymentServiceTestSuite) Test_Initiate_POSDisabled() {
	suite.settings.settings.EnablePOSTerminal = false

	_, err := suite.service.Initiate(context.Background(), services.InitiateTerminalPaymentCommand{
		Amount:   decimal.NewFromInt(10),
		Currency: "CHF",
	})

	suite.ErrorIs(err, domain.ErrIntegrationDisabled)
}

// ============================================================================
// PERFORM
// ============================================================================

func (suite *TerminalPaymentServiceTestSuite) Test_Perform_ReconcilesDeviceResult() {
	local := suite.seedTerminalPayment(domain.StatusProcessing)
	suite.client.EXPECT().PerformTerminalTransaction(mock.Anything, int64(2001), int64(31)).
		Return(remoteTx(2001, "FULFILL", map[string]any{"completedAmount": "100.00"}), nil).Once()

	err := suite.service.Perform(context.Background(), application.TerminalPaymentTask{
		TransactionID:       local.ID,
		RemoteTransactionID: 2001,
		RemoteTerminalID:    31,
	})

	suite.NoError(err)
	suite.Equal(domain.StatusFulfill, suite.txRepo.get(local.ID).Status)
}

func (suite *TerminalPaymentServiceTestSuite) Test_Perform_DeviceErrorMarksFailed() {
	local := suite.seedTerminalPayment(domain.StatusProcessing)
	suite.client.EXPECT().PerformTerminalTransaction(mock.Anything, int64(2001), int64(31)).
		Return(nil, &processor.ProcessorError{Code: "TIMEOUT", Message: "till timeout"}).Once()

	err := suite.service.Perform(context.Background(), application.TerminalPaymentTask{
		TransactionID:       local.ID,
		RemoteTransactionID: 2001,
		RemoteTerminalID:    31,
	})

	suite.Error(err)
	got := suite.txRepo.get(local.ID)
	suite.Equal(domain.StatusFailed, got.Status)
	suite.Contains(got.FailureReason, "till timeout")
}

// ============================================================================
// STATUS
// ============================================================================

func (suite *TerminalPaymentServiceTestSuite) Test_CheckStatus_Completed() {
	local := suite.seedTerminalPayment(domain.StatusProcessing)
	suite.client.EXPECT().ReadTransaction(mock.Anything, int64(2001)).
		Return(remoteTx(2001, "COMPLETED", nil), nil).Once()

	status, err := suite.service.CheckStatus(context.Background(), local.ID)

	suite.Require().NoError(err)
	suite.True(status.Completed)
	suite.False(status.Failed)
	suite.Equal("COMPLETED", status.RemoteState)
}

func (suite *TerminalPaymentServiceTestSuite) Test_CheckStatus_Declined() {
	local := suite.seedTerminalPayment(domain.StatusProcessing)
	suite.client.EXPECT().ReadTransaction(mock.Anything, int64(2001)).
		Return(remoteTx(2001, "DECLINE", map[string]any{"userFailureMessage": "Card declined"}), nil).Once()

	status, err := suite.service.CheckStatus(context.Background(), local.ID)

	suite.Require().NoError(err)
	suite.False(status.Completed)
	suite.True(status.Failed)
}

// ============================================================================
// CANCEL
// ============================================================================

func (suite *TerminalPaymentServiceTestSuite) Test_Cancel_AuthorizedIsVoidedRemotely() {
	local := suite.seedTerminalPayment(domain.StatusAuthorized)
	suite.client.EXPECT().ReadTransaction(mock.Anything, int64(2001)).
		Return(remoteTx(2001, "AUTHORIZED", nil), nil).Once()
	suite.client.EXPECT().VoidOnline(mock.Anything, int64(2001)).
		Return(map[string]any{"state": "SUCCESSFUL"}, nil).Once()

	result, err := suite.service.Cancel(context.Background(), local.ID)

	suite.Require().NoError(err)
	suite.False(result.RequiresTerminalCancel)
	suite.Equal(domain.StatusVoided, result.Transaction.Status)
	suite.Empty(result.Transaction.Annotation)
}

func (suite *TerminalPaymentServiceTestSuite) Test_Cancel_LiveOnDeviceVoidsLocally() {
	local := suite.seedTerminalPayment(domain.StatusProcessing)
	suite.client.EXPECT().ReadTransaction(mock.Anything, int64(2001)).
		Return(remoteTx(2001, "PENDING", nil), nil).Once()

	result, err := suite.service.Cancel(context.Background(), local.ID)

	suite.Require().NoError(err)
	suite.True(result.RequiresTerminalCancel)
	got := suite.txRepo.get(local.ID)
	suite.Equal(domain.StatusVoided, got.Status)
	suite.NotEmpty(got.Annotation)
	suite.client.AssertNotCalled(suite.T(), "VoidOnline", mock.Anything, mock.Anything)
}

func (suite *TerminalPaymentServiceTestSuite) Test_Cancel_RemoteAlreadyFinished() {
	local := suite.seedTerminalPayment(domain.StatusProcessing)
	suite.client.EXPECT().ReadTransaction(mock.Anything, int64(2001)).
		Return(remoteTx(2001, "FULFILL", nil), nil).Once()

	_, err := suite.service.Cancel(context.Background(), local.ID)

	suite.ErrorIs(err, domain.ErrNotCancellable)
	suite.Equal(domain.StatusProcessing, suite.txRepo.get(local.ID).Status)
}

func (suite *TerminalPaymentServiceTestSuite) Test_Cancel_OnlineTransactionRejected() {
	t := testhelpers.NewTransaction(suite.T(), 3001)
	suite.Require().NoError(suite.txRepo.Create(context.Background(), nil, t))

	_, err := suite.service.Cancel(context.Background(), t.ID)

	suite.ErrorIs(err, domain.ErrNotCancellable)
	suite.client.AssertNotCalled(suite.T(), "ReadTransaction", mock.Anything, mock.Anything)
}
