package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/DanielPopoola/wallee-gateway/internal/application"
	"github.com/DanielPopoola/wallee-gateway/internal/application/services"
	"github.com/DanielPopoola/wallee-gateway/internal/domain"
	"github.com/DanielPopoola/wallee-gateway/internal/interfaces/rest"
	"github.com/DanielPopoola/wallee-gateway/internal/normalize"
	"github.com/oapi-codegen/runtime"
)

type CheckoutService interface {
	CreateCheckout(ctx context.Context, cmd services.CheckoutCommand) (*services.CheckoutResult, error)
}

type TransactionService interface {
	Get(ctx context.Context, id string) (*domain.Transaction, error)
	Sync(ctx context.Context, id string) (*domain.Transaction, error)
	Capture(ctx context.Context, id string) (*domain.Transaction, error)
	Void(ctx context.Context, id string) (*domain.Transaction, error)
	Refund(ctx context.Context, cmd services.RefundCommand) (*services.RefundResult, error)
	ListRefunds(ctx context.Context, id string) ([]*domain.Refund, error)
	LinkInvoice(ctx context.Context, id, invoice string) (*domain.Transaction, error)
}

type TerminalPaymentService interface {
	Initiate(ctx context.Context, cmd services.InitiateTerminalPaymentCommand) (*services.TerminalPaymentResult, error)
	CheckStatus(ctx context.Context, id string) (*services.TerminalPaymentStatus, error)
	Cancel(ctx context.Context, id string) (*services.CancelResult, error)
}

type TerminalService interface {
	List(ctx context.Context, status domain.TerminalStatus) ([]*domain.Terminal, error)
	Sync(ctx context.Context, id string) (*domain.Terminal, error)
	SyncAll(ctx context.Context) (int, error)
	SetDefault(ctx context.Context, id string) (*domain.Terminal, error)
	TriggerBalance(ctx context.Context, id string) (normalize.Map, error)
	LinkDevice(ctx context.Context, id, serialNumber string) (*services.LinkResult, error)
	UnlinkDevice(ctx context.Context, id string) (*domain.Terminal, error)
	CreateResource(ctx context.Context, cmd services.CreateResourceCommand) (*domain.TerminalResource, error)
	SetDefaultResource(ctx context.Context, kind domain.ResourceKind, id string) error
	ListResources(ctx context.Context, kind domain.ResourceKind) ([]*domain.TerminalResource, error)
}

type PaymentLinkService interface {
	CreateForInvoice(ctx context.Context, cmd services.PaymentLinkCommand) (*services.PaymentLinkResult, error)
	Get(ctx context.Context, id string) (*services.PaymentLinkResult, error)
}

type SettingsService interface {
	Get(ctx context.Context) (*domain.Settings, error)
	Update(ctx context.Context, cmd services.UpdateSettingsCommand) (*domain.Settings, error)
	TestConnection(ctx context.Context) (*services.ConnectionResult, error)
}

type WebhookService interface {
	Handle(ctx context.Context, req services.WebhookRequest) (*services.WebhookResult, error)
}

type PageService interface {
	Success(ctx context.Context, remoteTransactionID string) (services.PageResult, error)
	Failed(ctx context.Context, merchantReference string) (services.PageResult, error)
}

// Services groups the use cases the HTTP surface dispatches to.
type Services struct {
	Checkout        CheckoutService
	Transactions    TransactionService
	TerminalPayment TerminalPaymentService
	Terminals       TerminalService
	PaymentLinks    PaymentLinkService
	Settings        SettingsService
	Webhooks        WebhookService
	Pages           PageService
}

type Handlers struct {
	svc    Services
	logger *slog.Logger
}

func NewHandlers(svc Services, logger *slog.Logger) *Handlers {
	return &Handlers{svc: svc, logger: logger}
}

// Register mounts every route on mux.
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Health)

	mux.HandleFunc("POST /webhooks/wallee", h.Webhook)

	mux.HandleFunc("GET /wallee/success", h.SuccessPage)
	mux.HandleFunc("GET /wallee/failed", h.FailedPage)

	mux.HandleFunc("POST /api/v1/checkout", h.CreateCheckout)

	mux.HandleFunc("GET /api/v1/transactions/{id}", h.GetTransaction)
	mux.HandleFunc("POST /api/v1/transactions/{id}/sync", h.SyncTransaction)
	mux.HandleFunc("POST /api/v1/transactions/{id}/capture", h.CaptureTransaction)
	mux.HandleFunc("POST /api/v1/transactions/{id}/void", h.VoidTransaction)
	mux.HandleFunc("GET /api/v1/transactions/{id}/refunds", h.ListRefunds)
	mux.HandleFunc("POST /api/v1/transactions/{id}/refunds", h.CreateRefund)
	mux.HandleFunc("POST /api/v1/transactions/{id}/invoice", h.LinkInvoice)

	mux.HandleFunc("POST /api/v1/terminal-payments", h.InitiateTerminalPayment)
	mux.HandleFunc("GET /api/v1/terminal-payments/{id}", h.CheckTerminalPayment)
	mux.HandleFunc("POST /api/v1/terminal-payments/{id}/cancel", h.CancelTerminalPayment)

	mux.HandleFunc("GET /api/v1/terminals", h.ListTerminals)
	mux.HandleFunc("POST /api/v1/terminals/sync", h.SyncTerminals)
	mux.HandleFunc("POST /api/v1/terminals/{id}/sync", h.SyncTerminal)
	mux.HandleFunc("POST /api/v1/terminals/{id}/default", h.SetDefaultTerminal)
	mux.HandleFunc("POST /api/v1/terminals/{id}/balance", h.TriggerBalance)
	mux.HandleFunc("POST /api/v1/terminals/{id}/link", h.LinkDevice)
	mux.HandleFunc("POST /api/v1/terminals/{id}/unlink", h.UnlinkDevice)

	mux.HandleFunc("GET /api/v1/terminal-resources/{kind}", h.ListResources)
	mux.HandleFunc("POST /api/v1/terminal-resources/{kind}", h.CreateResource)
	mux.HandleFunc("POST /api/v1/terminal-resources/{kind}/{id}/default", h.SetDefaultResource)

	mux.HandleFunc("POST /api/v1/payment-links", h.CreatePaymentLink)
	mux.HandleFunc("GET /api/v1/payment-links/{id}", h.GetPaymentLink)

	mux.HandleFunc("GET /api/v1/settings", h.GetSettings)
	mux.HandleFunc("PUT /api/v1/settings", h.UpdateSettings)
	mux.HandleFunc("POST /api/v1/settings/test-connection", h.TestConnection)
}

func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	rest.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) fail(w http.ResponseWriter, err error) {
	rest.WriteError(w, err, h.logger)
}

// pathParam binds a required simple-style path segment.
func pathParam(r *http.Request, name string) (string, error) {
	var value string
	if err := runtime.BindStyledParameterWithLocation("simple", false, name, runtime.ParamLocationPath, r.PathValue(name), &value); err != nil {
		return "", application.NewInvalidInputError(fmt.Errorf("invalid path parameter %s: %w", name, err))
	}
	if value == "" {
		return "", application.NewInvalidInputError(fmt.Errorf("missing path parameter %s", name))
	}
	return value, nil
}

// queryParam binds an optional form-style query parameter.
func queryParam(r *http.Request, name string) (string, error) {
	var value string
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &value); err != nil {
		return "", application.NewInvalidInputError(fmt.Errorf("invalid query parameter %s: %w", name, err))
	}
	return value, nil
}
