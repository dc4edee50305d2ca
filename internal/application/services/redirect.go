package services

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/DanielPopoola/wallee-gateway/internal/application"
	"github.com/DanielPopoola/wallee-gateway/internal/config"
	"github.com/DanielPopoola/wallee-gateway/internal/domain"
	"github.com/DanielPopoola/wallee-gateway/internal/infrastructure/persistence/postgres"
)

const defaultFailureReason = "Payment was declined or cancelled"

// PageResult is what a landing page controller hands back to the HTTP layer:
// either a redirect or a page to render.
type PageResult interface {
	pageResult()
}

type RedirectTo struct {
	URL string
}

type Render struct {
	Page Page
}

func (RedirectTo) pageResult() {}
func (Render) pageResult()     {}

// Page is the view model of a landing page.
type Page struct {
	Title         string
	Transaction   *domain.Transaction
	Message       string
	FailureReason string
}

type RedirectService struct {
	txRepo     application.TransactionRepository
	reconciler *ReconcileService
	cfg        config.RedirectConfig
	logger     *slog.Logger
}

func NewRedirectService(
	txRepo application.TransactionRepository,
	reconciler *ReconcileService,
	cfg config.RedirectConfig,
	logger *slog.Logger,
) *RedirectService {
	return &RedirectService{
		txRepo:     txRepo,
		reconciler: reconciler,
		cfg:        cfg,
		logger:     logger,
	}
}

// Success handles the customer returning from the payment page. The processor
// may not have settled the transaction yet, so its status is polled a bounded
// number of times before the page is shown with whatever is current.
func (s *RedirectService) Success(ctx context.Context, remoteTransactionID string) (PageResult, error) {
	remoteID, err := strconv.ParseInt(strings.TrimSpace(remoteTransactionID), 10, 64)
	if err != nil {
		return Render{Page: Page{Title: "Payment", Message: "Missing or invalid transaction reference"}}, nil
	}

	t, err := s.txRepo.FindByRemoteID(ctx, remoteID)
	if errors.Is(err, postgres.ErrTransactionNotFound) {
		return Render{Page: Page{Title: "Payment", Message: "Transaction not found"}}, nil
	}
	if err != nil {
		return nil, err
	}

	current := t
	synced, err := poll(ctx, s.cfg.PollAttempts, s.cfg.PollDelay, func(ctx context.Context) (*domain.Transaction, bool, error) {
		updated, err := s.reconciler.Sync(ctx, t)
		if err != nil {
			return nil, false, err
		}
		return updated, updated.IsSettled(), nil
	})
	if synced != nil {
		current = synced
	}
	if err != nil {
		s.logger.Warn("status poll ended with error", "transaction_id", t.ID, "error", err)
		if ctx.Err() != nil {
			return nil, err
		}
	}

	if current.IsUnsuccessful() {
		return RedirectTo{URL: "/wallee/failed?merchant_reference=" + url.QueryEscape(current.MerchantReference)}, nil
	}

	page := Page{Title: "Payment successful", Transaction: current}
	if !current.IsSettled() {
		page.Title = "Payment processing"
		page.Message = "Your payment is still being processed. You will be notified once it is confirmed."
	}
	return Render{Page: page}, nil
}

// Failed handles the customer returning from a failed or cancelled payment.
func (s *RedirectService) Failed(ctx context.Context, merchantReference string) (PageResult, error) {
	page := Page{Title: "Payment failed"}

	merchantReference = strings.TrimSpace(merchantReference)
	if merchantReference == "" {
		page.FailureReason = "Missing payment reference"
		return Render{Page: page}, nil
	}

	t, err := s.txRepo.FindByMerchantReference(ctx, merchantReference)
	switch {
	case errors.Is(err, postgres.ErrTransactionNotFound):
	case err != nil:
		return nil, err
	default:
		page.Transaction = t
		if synced, err := s.reconciler.Sync(ctx, t); err != nil {
			s.logger.Warn("failed page sync error", "transaction_id", t.ID, "error", err)
		} else {
			page.Transaction = synced
		}
		page.FailureReason = page.Transaction.FailureReason
	}

	if page.FailureReason == "" {
		page.FailureReason = defaultFailureReason
	}
	return Render{Page: page}, nil
}
