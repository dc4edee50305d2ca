package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/DanielPopoola/wallee-gateway/internal/application"
	"github.com/DanielPopoola/wallee-gateway/internal/domain"
	"github.com/DanielPopoola/wallee-gateway/internal/infrastructure/persistence/postgres"
	"github.com/DanielPopoola/wallee-gateway/internal/normalize"
	"github.com/google/uuid"
)

const messageNoLocalRecord = "no local record"

// WebhookRequest is one inbound notification as received on the wire.
type WebhookRequest struct {
	Headers   map[string]string
	Signature string
	Body      []byte
}

// WebhookResult is the terminal state recorded for the notification.
type WebhookResult struct {
	LogID      string
	Status     domain.WebhookStatus
	HTTPStatus int
	Message    string
}

type WebhookService struct {
	logRepo    application.WebhookLogRepository
	txRepo     application.TransactionRepository
	refundRepo application.RefundRepository
	settings   application.SettingsRepository
	client     application.ProcessorClient
	reconciler *ReconcileService
	terminals  *TerminalService
	logger     *slog.Logger
	now        func() time.Time
}

func NewWebhookService(
	logRepo application.WebhookLogRepository,
	txRepo application.TransactionRepository,
	refundRepo application.RefundRepository,
	settings application.SettingsRepository,
	client application.ProcessorClient,
	reconciler *ReconcileService,
	terminals *TerminalService,
	logger *slog.Logger,
) *WebhookService {
	return &WebhookService{
		logRepo:    logRepo,
		txRepo:     txRepo,
		refundRepo: refundRepo,
		settings:   settings,
		client:     client,
		reconciler: reconciler,
		terminals:  terminals,
		logger:     logger,
		now:        time.Now,
	}
}

// Handle audits, authenticates and dispatches one notification. The log entry
// is created before anything else and always reaches a terminal status, even
// when dispatch panics or ctx is cancelled mid-flight.
func (s *WebhookService) Handle(ctx context.Context, req WebhookRequest) (*WebhookResult, error) {
	entry := domain.NewWebhookLog(uuid.NewString(), req.Headers, req.Body, s.now())
	if err := s.logRepo.Create(ctx, entry); err != nil {
		return nil, application.NewInternalError(fmt.Errorf("create webhook log: %w", err))
	}

	finishCtx := context.WithoutCancel(ctx)

	defer func() {
		if r := recover(); r != nil {
			s.finish(finishCtx, entry, domain.WebhookFailed, http.StatusInternalServerError, fmt.Sprintf("panic: %v", r))
			panic(r)
		}
	}()

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return s.fail(finishCtx, entry, http.StatusInternalServerError, application.NewInternalError(err))
	}

	if settings.WebhookSecret != "" && !ValidSignature(settings.WebhookSecret, req.Body, req.Signature) {
		return s.fail(finishCtx, entry, http.StatusUnauthorized, application.NewUnauthorizedError("invalid webhook signature"))
	}

	payload, err := normalize.DecodeMap(req.Body)
	if err != nil {
		return s.fail(finishCtx, entry, http.StatusBadRequest, application.NewInvalidInputError(fmt.Errorf("webhook body is not a JSON object: %w", err)))
	}

	event := normalize.Webhook(payload)
	entry.Describe(event)

	if event.EntityType == domain.EntityUnknown {
		return s.finish(finishCtx, entry, domain.WebhookIgnored, http.StatusOK, fmt.Sprintf("unhandled entity type %q", event.EntityName)), nil
	}
	if event.EntityID == nil {
		return s.fail(finishCtx, entry, http.StatusBadRequest, application.NewInvalidInputError(domain.NewMissingRequiredFieldError("entityId")))
	}

	handled, err := s.dispatch(ctx, entry, event)
	if err != nil {
		s.logger.Error("webhook processing failed",
			"log_id", entry.ID,
			"entity", event.EntityName,
			"entity_id", *event.EntityID,
			"error", err,
			"category", application.CategorizeError(err),
		)
		return s.fail(finishCtx, entry, http.StatusInternalServerError, application.NewInternalError(err))
	}
	if !handled {
		return s.finish(finishCtx, entry, domain.WebhookIgnored, http.StatusOK, messageNoLocalRecord), nil
	}

	return s.finish(finishCtx, entry, domain.WebhookProcessed, http.StatusOK, ""), nil
}

// dispatch reports false when no local record matches the notification.
func (s *WebhookService) dispatch(ctx context.Context, entry *domain.WebhookLog, event domain.WebhookEvent) (bool, error) {
	id := *event.EntityID

	switch event.EntityType {
	case domain.EntityTransaction:
		return s.syncTransaction(ctx, entry, id)

	case domain.EntityRefund:
		remote, err := s.client.ReadRefund(ctx, id)
		if err != nil {
			return false, fmt.Errorf("read refund %d: %w", id, err)
		}
		snap := normalize.Refund(normalize.From(remote))
		updated, err := s.reconcileRefund(ctx, id, snap)
		if err != nil {
			return false, err
		}
		if snap.TransactionID == nil {
			return updated, nil
		}
		synced, err := s.syncTransaction(ctx, entry, *snap.TransactionID)
		return updated || synced, err

	case domain.EntityTransactionCompletion:
		remote, err := s.client.ReadTransactionCompletion(ctx, id)
		if err != nil {
			return false, fmt.Errorf("read transaction completion %d: %w", id, err)
		}
		snap := normalize.Completion(remote)
		if snap.TransactionID == nil {
			return false, nil
		}
		return s.syncTransaction(ctx, entry, *snap.TransactionID)

	case domain.EntityPaymentTerminal:
		_, err := s.terminals.SyncRemote(ctx, id)
		if errors.Is(err, postgres.ErrTerminalNotFound) {
			return false, nil
		}
		return err == nil, err
	}

	return false, nil
}

func (s *WebhookService) syncTransaction(ctx context.Context, entry *domain.WebhookLog, remoteID int64) (bool, error) {
	t, err := s.txRepo.FindByRemoteID(ctx, remoteID)
	if errors.Is(err, postgres.ErrTransactionNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	entry.TransactionID = &t.ID
	if _, err := s.reconciler.Sync(ctx, t); err != nil {
		return false, err
	}
	return true, nil
}

// reconcileRefund reports whether a local refund row was updated.
func (s *WebhookService) reconcileRefund(ctx context.Context, remoteID int64, snap domain.RefundSnapshot) (bool, error) {
	r, err := s.refundRepo.FindByRemoteID(ctx, remoteID)
	if errors.Is(err, postgres.ErrRefundNotFound) && snap.ExternalID != "" {
		r, err = s.refundRepo.FindByExternalID(ctx, snap.ExternalID)
	}
	if errors.Is(err, postgres.ErrRefundNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	r.Reconcile(snap, s.now())
	if err := s.refundRepo.Update(ctx, nil, r); err != nil {
		return false, err
	}
	return true, nil
}

func (s *WebhookService) fail(ctx context.Context, entry *domain.WebhookLog, httpStatus int, err *application.ServiceError) (*WebhookResult, error) {
	return s.finish(ctx, entry, domain.WebhookFailed, httpStatus, err.Error()), err
}

func (s *WebhookService) finish(ctx context.Context, entry *domain.WebhookLog, status domain.WebhookStatus, httpStatus int, message string) *WebhookResult {
	if err := entry.Finish(status, httpStatus, message, s.now()); err != nil {
		s.logger.Warn("webhook log already finished", "log_id", entry.ID, "status", entry.Status)
	} else if err := s.logRepo.Finish(ctx, entry); err != nil {
		s.logger.Error("failed to finish webhook log", "log_id", entry.ID, "error", err)
	}

	return &WebhookResult{
		LogID:      entry.ID,
		Status:     entry.Status,
		HTTPStatus: httpStatus,
		Message:    message,
	}
}

// ValidSignature compares the hex HMAC-SHA256 of body with signature in
// constant time.
func ValidSignature(secret string, body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(signature))))
}
