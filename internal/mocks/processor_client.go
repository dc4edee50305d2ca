// Package mocks holds testify mocks for the application ports.
package mocks

import (
	"context"

	"github.com/DanielPopoola/wallee-gateway/internal/infrastructure/processor"
	"github.com/DanielPopoola/wallee-gateway/internal/normalize"
	"github.com/stretchr/testify/mock"
)

// MockProcessorClient is a mock of application.ProcessorClient.
type MockProcessorClient struct {
	mock.Mock
}

// NewMockProcessorClient registers expectation checks on t's cleanup.
func NewMockProcessorClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockProcessorClient {
	m := &MockProcessorClient{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

type MockProcessorClient_Expecter struct {
	mock *mock.Mock
}

func (m *MockProcessorClient) EXPECT() *MockProcessorClient_Expecter {
	return &MockProcessorClient_Expecter{mock: &m.Mock}
}

func mapResult(ret mock.Arguments) (normalize.Map, error) {
	var m normalize.Map
	if v := ret.Get(0); v != nil {
		switch x := v.(type) {
		case normalize.Map:
			m = x
		case map[string]any:
			m = normalize.Map(x)
		}
	}
	return m, ret.Error(1)
}

func (m *MockProcessorClient) CreateTransaction(ctx context.Context, req processor.CreateTransactionRequest) (normalize.Map, error) {
	return mapResult(m.Called(ctx, req))
}

func (e *MockProcessorClient_Expecter) CreateTransaction(ctx, req any) *mock.Call {
	return e.mock.On("CreateTransaction", ctx, req)
}

func (m *MockProcessorClient) ReadTransaction(ctx context.Context, id int64) (normalize.Map, error) {
	return mapResult(m.Called(ctx, id))
}

func (e *MockProcessorClient_Expecter) ReadTransaction(ctx, id any) *mock.Call {
	return e.mock.On("ReadTransaction", ctx, id)
}

func (m *MockProcessorClient) CompleteOnline(ctx context.Context, transactionID int64) (normalize.Map, error) {
	return mapResult(m.Called(ctx, transactionID))
}

func (e *MockProcessorClient_Expecter) CompleteOnline(ctx, transactionID any) *mock.Call {
	return e.mock.On("CompleteOnline", ctx, transactionID)
}

func (m *MockProcessorClient) VoidOnline(ctx context.Context, transactionID int64) (normalize.Map, error) {
	return mapResult(m.Called(ctx, transactionID))
}

func (e *MockProcessorClient_Expecter) VoidOnline(ctx, transactionID any) *mock.Call {
	return e.mock.On("VoidOnline", ctx, transactionID)
}

func (m *MockProcessorClient) PaymentPageURL(ctx context.Context, transactionID int64) (string, error) {
	ret := m.Called(ctx, transactionID)
	return ret.String(0), ret.Error(1)
}

func (e *MockProcessorClient_Expecter) PaymentPageURL(ctx, transactionID any) *mock.Call {
	return e.mock.On("PaymentPageURL", ctx, transactionID)
}

func (m *MockProcessorClient) ReadTransactionCompletion(ctx context.Context, id int64) (normalize.Map, error) {
	return mapResult(m.Called(ctx, id))
}

func (e *MockProcessorClient_Expecter) ReadTransactionCompletion(ctx, id any) *mock.Call {
	return e.mock.On("ReadTransactionCompletion", ctx, id)
}

func (m *MockProcessorClient) CreateRefund(ctx context.Context, req processor.RefundRequest) (*processor.Refund, error) {
	ret := m.Called(ctx, req)
	r, _ := ret.Get(0).(*processor.Refund)
	return r, ret.Error(1)
}

func (e *MockProcessorClient_Expecter) CreateRefund(ctx, req any) *mock.Call {
	return e.mock.On("CreateRefund", ctx, req)
}

func (m *MockProcessorClient) ReadRefund(ctx context.Context, id int64) (*processor.Refund, error) {
	ret := m.Called(ctx, id)
	r, _ := ret.Get(0).(*processor.Refund)
	return r, ret.Error(1)
}

func (e *MockProcessorClient_Expecter) ReadRefund(ctx, id any) *mock.Call {
	return e.mock.On("ReadRefund", ctx, id)
}

func (m *MockProcessorClient) ReadTerminal(ctx context.Context, id int64) (normalize.Map, error) {
	return mapResult(m.Called(ctx, id))
}

func (e *MockProcessorClient_Expecter) ReadTerminal(ctx, id any) *mock.Call {
	return e.mock.On("ReadTerminal", ctx, id)
}

func (m *MockProcessorClient) SearchTerminals(ctx context.Context) ([]normalize.Map, error) {
	ret := m.Called(ctx)
	list, _ := ret.Get(0).([]normalize.Map)
	return list, ret.Error(1)
}

func (e *MockProcessorClient_Expecter) SearchTerminals(ctx any) *mock.Call {
	return e.mock.On("SearchTerminals", ctx)
}

func (m *MockProcessorClient) PerformTerminalTransaction(ctx context.Context, transactionID, terminalID int64) (normalize.Map, error) {
	return mapResult(m.Called(ctx, transactionID, terminalID))
}

func (e *MockProcessorClient_Expecter) PerformTerminalTransaction(ctx, transactionID, terminalID any) *mock.Call {
	return e.mock.On("PerformTerminalTransaction", ctx, transactionID, terminalID)
}

func (m *MockProcessorClient) TriggerFinalBalance(ctx context.Context, terminalID int64) (normalize.Map, error) {
	return mapResult(m.Called(ctx, terminalID))
}

func (e *MockProcessorClient_Expecter) TriggerFinalBalance(ctx, terminalID any) *mock.Call {
	return e.mock.On("TriggerFinalBalance", ctx, terminalID)
}

func (m *MockProcessorClient) LinkTerminalDevice(ctx context.Context, terminalID int64, serialNumber string) error {
	return m.Called(ctx, terminalID, serialNumber).Error(0)
}

func (e *MockProcessorClient_Expecter) LinkTerminalDevice(ctx, terminalID, serialNumber any) *mock.Call {
	return e.mock.On("LinkTerminalDevice", ctx, terminalID, serialNumber)
}

func (m *MockProcessorClient) UnlinkTerminalDevice(ctx context.Context, terminalID int64) error {
	return m.Called(ctx, terminalID).Error(0)
}

func (e *MockProcessorClient_Expecter) UnlinkTerminalDevice(ctx, terminalID any) *mock.Call {
	return e.mock.On("UnlinkTerminalDevice", ctx, terminalID)
}

func (m *MockProcessorClient) CreatePaymentLink(ctx context.Context, req processor.PaymentLinkRequest) (*processor.PaymentLink, error) {
	ret := m.Called(ctx, req)
	link, _ := ret.Get(0).(*processor.PaymentLink)
	return link, ret.Error(1)
}

func (e *MockProcessorClient_Expecter) CreatePaymentLink(ctx, req any) *mock.Call {
	return e.mock.On("CreatePaymentLink", ctx, req)
}

func (m *MockProcessorClient) ReadPaymentLink(ctx context.Context, id int64) (*processor.PaymentLink, error) {
	ret := m.Called(ctx, id)
	link, _ := ret.Get(0).(*processor.PaymentLink)
	return link, ret.Error(1)
}

func (e *MockProcessorClient_Expecter) ReadPaymentLink(ctx, id any) *mock.Call {
	return e.mock.On("ReadPaymentLink", ctx, id)
}

func (m *MockProcessorClient) ReadSpace(ctx context.Context) (normalize.Map, error) {
	return mapResult(m.Called(ctx))
}

func (e *MockProcessorClient_Expecter) ReadSpace(ctx any) *mock.Call {
	return e.mock.On("ReadSpace", ctx)
}
