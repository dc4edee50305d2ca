package services_test

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/DanielPopoola/wallee-gateway/internal/application"
	"github.com/DanielPopoola/wallee-gateway/internal/domain"
	"github.com/DanielPopoola/wallee-gateway/internal/infrastructure/persistence/postgres"
	"github.com/jackc/pgx/v5"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeTransactor runs fn without a database transaction.
type fakeTransactor struct {
	calls int
}

func (f *fakeTransactor) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	f.calls++
	return fn(nil)
}

func cloneTx(t *domain.Transaction) *domain.Transaction {
	c := *t
	c.LineItems = slices.Clone(t.LineItems)
	return &c
}

type fakeTransactionRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.Transaction
	updates int
}

func newFakeTransactionRepo(seed ...*domain.Transaction) *fakeTransactionRepo {
	r := &fakeTransactionRepo{byID: map[string]*domain.Transaction{}}
	for _, t := range seed {
		r.byID[t.ID] = cloneTx(t)
	}
	return r
}

func (r *fakeTransactionRepo) Create(_ context.Context, _ pgx.Tx, t *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[t.ID] = cloneTx(t)
	return nil
}

func (r *fakeTransactionRepo) Update(_ context.Context, _ pgx.Tx, t *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[t.ID]; !ok {
		return postgres.ErrTransactionNotFound
	}
	t.UpdatedAt = time.Now()
	r.byID[t.ID] = cloneTx(t)
	r.updates++
	return nil
}

func (r *fakeTransactionRepo) FindByID(_ context.Context, id string) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.byID[id]; ok {
		return cloneTx(t), nil
	}
	return nil, postgres.ErrTransactionNotFound
}

func (r *fakeTransactionRepo) FindByIDForUpdate(ctx context.Context, _ pgx.Tx, id string) (*domain.Transaction, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeTransactionRepo) FindByRemoteID(_ context.Context, remoteID int64) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.byID {
		if t.RemoteID != nil && *t.RemoteID == remoteID {
			return cloneTx(t), nil
		}
	}
	return nil, postgres.ErrTransactionNotFound
}

func (r *fakeTransactionRepo) FindByRemoteIDForUpdate(ctx context.Context, _ pgx.Tx, remoteID int64) (*domain.Transaction, error) {
	return r.FindByRemoteID(ctx, remoteID)
}

func (r *fakeTransactionRepo) FindByMerchantReference(_ context.Context, ref string) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.byID {
		if t.MerchantReference == ref {
			return cloneTx(t), nil
		}
	}
	return nil, postgres.ErrTransactionNotFound
}

func (r *fakeTransactionRepo) FindByStatuses(_ context.Context, statuses []domain.TransactionStatus, limit int) ([]*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Transaction
	for _, t := range r.byID {
		if slices.Contains(statuses, t.Status) && !t.Archived && t.RemoteID != nil {
			out = append(out, cloneTx(t))
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeTransactionRepo) ArchiveOlderThan(_ context.Context, statuses []domain.TransactionStatus, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, t := range r.byID {
		if slices.Contains(statuses, t.Status) && !t.Archived && t.CreatedAt.Before(cutoff) {
			t.Archived = true
			n++
		}
	}
	return n, nil
}

func (r *fakeTransactionRepo) get(id string) *domain.Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byID[id]
}

type fakeRefundRepo struct {
	mu      sync.Mutex
	refunds []*domain.Refund
}

func (r *fakeRefundRepo) Create(_ context.Context, _ pgx.Tx, refund *domain.Refund) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *refund
	r.refunds = append(r.refunds, &c)
	return nil
}

func (r *fakeRefundRepo) Update(_ context.Context, _ pgx.Tx, refund *domain.Refund) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.refunds {
		if existing.ID == refund.ID {
			c := *refund
			r.refunds[i] = &c
			return nil
		}
	}
	return postgres.ErrRefundNotFound
}

func (r *fakeRefundRepo) FindByRemoteID(_ context.Context, remoteID int64) (*domain.Refund, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.refunds {
		if existing.RemoteID != nil && *existing.RemoteID == remoteID {
			c := *existing
			return &c, nil
		}
	}
	return nil, postgres.ErrRefundNotFound
}

func (r *fakeRefundRepo) FindByExternalID(_ context.Context, externalID string) (*domain.Refund, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.refunds {
		if existing.ExternalID == externalID {
			c := *existing
			return &c, nil
		}
	}
	return nil, postgres.ErrRefundNotFound
}

func (r *fakeRefundRepo) ListByTransaction(_ context.Context, transactionID string) ([]*domain.Refund, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Refund
	for _, existing := range r.refunds {
		if existing.TransactionID == transactionID {
			c := *existing
			out = append(out, &c)
		}
	}
	return out, nil
}

type fakeTerminalRepo struct {
	mu        sync.Mutex
	terminals map[string]*domain.Terminal
}

func newFakeTerminalRepo(seed ...*domain.Terminal) *fakeTerminalRepo {
	r := &fakeTerminalRepo{terminals: map[string]*domain.Terminal{}}
	for _, t := range seed {
		c := *t
		r.terminals[t.ID] = &c
	}
	return r
}

func (r *fakeTerminalRepo) Upsert(_ context.Context, _ pgx.Tx, t *domain.Terminal) (*domain.Terminal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.terminals {
		if existing.RemoteID == t.RemoteID && existing.ID != t.ID {
			c := *t
			c.ID = existing.ID
			c.IsDefault = existing.IsDefault
			r.terminals[existing.ID] = &c
			out := c
			return &out, nil
		}
	}
	c := *t
	if existing, ok := r.terminals[t.ID]; ok {
		c.IsDefault = existing.IsDefault
	}
	r.terminals[t.ID] = &c
	out := c
	return &out, nil
}

func (r *fakeTerminalRepo) FindByID(_ context.Context, id string) (*domain.Terminal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.terminals[id]; ok {
		c := *t
		return &c, nil
	}
	return nil, postgres.ErrTerminalNotFound
}

func (r *fakeTerminalRepo) FindByRemoteID(_ context.Context, remoteID int64) (*domain.Terminal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.terminals {
		if t.RemoteID == remoteID {
			c := *t
			return &c, nil
		}
	}
	return nil, postgres.ErrTerminalNotFound
}

func (r *fakeTerminalRepo) FindDefault(_ context.Context) (*domain.Terminal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.terminals {
		if t.IsDefault && t.IsActive() {
			c := *t
			return &c, nil
		}
	}
	return nil, postgres.ErrTerminalNotFound
}

func (r *fakeTerminalRepo) List(_ context.Context, status domain.TerminalStatus) ([]*domain.Terminal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Terminal
	for _, t := range r.terminals {
		if status == "" || t.Status == status {
			c := *t
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *fakeTerminalRepo) SetDefault(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.terminals[id]; !ok {
		return postgres.ErrTerminalNotFound
	}
	for key, t := range r.terminals {
		t.IsDefault = key == id
	}
	return nil
}

type fakeResourceRepo struct {
	mu        sync.Mutex
	resources []*domain.TerminalResource
}

func (r *fakeResourceRepo) Create(_ context.Context, res *domain.TerminalResource) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res.IsDefault {
		for _, existing := range r.resources {
			if existing.Kind == res.Kind {
				existing.IsDefault = false
			}
		}
	}
	c := *res
	r.resources = append(r.resources, &c)
	return nil
}

func (r *fakeResourceRepo) SetDefault(_ context.Context, kind domain.ResourceKind, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	found := false
	for _, existing := range r.resources {
		if existing.Kind == kind && existing.ID == id {
			found = true
		}
	}
	if !found {
		return postgres.ErrResourceNotFound
	}
	for _, existing := range r.resources {
		if existing.Kind == kind {
			existing.IsDefault = existing.ID == id
		}
	}
	return nil
}

func (r *fakeResourceRepo) FindDefault(_ context.Context, kind domain.ResourceKind) (*domain.TerminalResource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.resources {
		if existing.Kind == kind && existing.IsDefault {
			c := *existing
			return &c, nil
		}
	}
	return nil, postgres.ErrResourceNotFound
}

func (r *fakeResourceRepo) List(_ context.Context, kind domain.ResourceKind) ([]*domain.TerminalResource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.TerminalResource
	for _, existing := range r.resources {
		if existing.Kind == kind {
			c := *existing
			out = append(out, &c)
		}
	}
	return out, nil
}

type fakeWebhookLogRepo struct {
	mu   sync.Mutex
	logs map[string]*domain.WebhookLog
}

func newFakeWebhookLogRepo() *fakeWebhookLogRepo {
	return &fakeWebhookLogRepo{logs: map[string]*domain.WebhookLog{}}
}

func (r *fakeWebhookLogRepo) Create(_ context.Context, l *domain.WebhookLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *l
	r.logs[l.ID] = &c
	return nil
}

// Finish rejects cancelled contexts the way a pgx query does.
func (r *fakeWebhookLogRepo) Finish(ctx context.Context, l *domain.WebhookLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.logs[l.ID]
	if !ok {
		return postgres.ErrWebhookLogNotFound
	}
	if existing.Status != domain.WebhookReceived {
		return domain.ErrLogFinalized
	}
	c := *l
	r.logs[l.ID] = &c
	return nil
}

func (r *fakeWebhookLogRepo) FindByID(_ context.Context, id string) (*domain.WebhookLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.logs[id]; ok {
		c := *l
		return &c, nil
	}
	return nil, postgres.ErrWebhookLogNotFound
}

func (r *fakeWebhookLogRepo) PurgeOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, l := range r.logs {
		if l.ReceivedAt.Before(cutoff) {
			delete(r.logs, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeWebhookLogRepo) only() *domain.WebhookLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.logs) != 1 {
		return nil
	}
	for _, l := range r.logs {
		return l
	}
	return nil
}

type fakeSettingsRepo struct {
	settings domain.Settings
	saves    int
}

func (r *fakeSettingsRepo) Get(context.Context) (*domain.Settings, error) {
	c := r.settings
	return &c, nil
}

func (r *fakeSettingsRepo) Save(_ context.Context, s *domain.Settings) error {
	r.settings = *s
	r.saves++
	return nil
}

func (r *fakeSettingsRepo) Seed(_ context.Context, s *domain.Settings) error {
	if r.settings.UserID != 0 || r.settings.Enabled {
		return nil
	}
	r.settings = *s
	return nil
}

func enabledSettings() *fakeSettingsRepo {
	return &fakeSettingsRepo{settings: domain.Settings{
		Enabled:           true,
		EnableWebshop:     true,
		EnablePOSTerminal: true,
		UserID:            512,
		AuthenticationKey: "a2V5",
		SpaceID:           405,
	}}
}

type fakeQueue struct {
	tasks []application.TerminalPaymentTask
	err   error
}

func (q *fakeQueue) EnqueueTerminalPayment(_ context.Context, task application.TerminalPaymentTask) error {
	if q.err != nil {
		return q.err
	}
	q.tasks = append(q.tasks, task)
	return nil
}

type fakeInvalidator struct {
	calls int
}

func (f *fakeInvalidator) Invalidate() { f.calls++ }

type fakeNotifier struct {
	calls int
	err   error
}

func (f *fakeNotifier) PublishSettingsChanged(context.Context) error {
	f.calls++
	return f.err
}
