package processor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/DanielPopoola/wallee-gateway/internal/config"
	"github.com/DanielPopoola/wallee-gateway/internal/domain"
	"github.com/DanielPopoola/wallee-gateway/internal/normalize"
)

// SettingsSource supplies the settings a client is built from.
type SettingsSource interface {
	Get(ctx context.Context) (*domain.Settings, error)
}

// Provider owns the client handle. The client is built on first use from
// the stored settings and kept until Invalidate is called.
type Provider struct {
	settings SettingsSource
	cfg      config.ProcessorConfig
	logger   *slog.Logger

	mu     sync.Mutex
	client *Client
}

func NewProvider(settings SettingsSource, cfg config.ProcessorConfig, logger *slog.Logger) *Provider {
	return &Provider{settings: settings, cfg: cfg, logger: logger}
}

// Client returns the current client, building it if needed.
func (p *Provider) Client(ctx context.Context) (*Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}

	s, err := p.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	client, err := NewClient(*s, p.cfg, p.logger)
	if err != nil {
		return nil, err
	}
	p.client = client
	p.logger.Info("processor client initialised", "space_id", s.SpaceID)
	return client, nil
}

// Invalidate drops the cached client. The next call rebuilds it.
func (p *Provider) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		p.logger.Info("processor client invalidated")
	}
	p.client = nil
}

func with[T any](ctx context.Context, p *Provider, fn func(*Client) (T, error)) (T, error) {
	c, err := p.Client(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	return fn(c)
}

func (p *Provider) CreateTransaction(ctx context.Context, req CreateTransactionRequest) (normalize.Map, error) {
	return with(ctx, p, func(c *Client) (normalize.Map, error) { return c.CreateTransaction(ctx, req) })
}

func (p *Provider) ReadTransaction(ctx context.Context, id int64) (normalize.Map, error) {
	return with(ctx, p, func(c *Client) (normalize.Map, error) { return c.ReadTransaction(ctx, id) })
}

func (p *Provider) CompleteOnline(ctx context.Context, transactionID int64) (normalize.Map, error) {
	return with(ctx, p, func(c *Client) (normalize.Map, error) { return c.CompleteOnline(ctx, transactionID) })
}

func (p *Provider) VoidOnline(ctx context.Context, transactionID int64) (normalize.Map, error) {
	return with(ctx, p, func(c *Client) (normalize.Map, error) { return c.VoidOnline(ctx, transactionID) })
}

func (p *Provider) PaymentPageURL(ctx context.Context, transactionID int64) (string, error) {
	return with(ctx, p, func(c *Client) (string, error) { return c.PaymentPageURL(ctx, transactionID) })
}

func (p *Provider) ReadTransactionCompletion(ctx context.Context, id int64) (normalize.Map, error) {
	return with(ctx, p, func(c *Client) (normalize.Map, error) { return c.ReadTransactionCompletion(ctx, id) })
}

func (p *Provider) CreateRefund(ctx context.Context, req RefundRequest) (*Refund, error) {
	return with(ctx, p, func(c *Client) (*Refund, error) { return c.CreateRefund(ctx, req) })
}

func (p *Provider) ReadRefund(ctx context.Context, id int64) (*Refund, error) {
	return with(ctx, p, func(c *Client) (*Refund, error) { return c.ReadRefund(ctx, id) })
}

func (p *Provider) ReadTerminal(ctx context.Context, id int64) (normalize.Map, error) {
	return with(ctx, p, func(c *Client) (normalize.Map, error) { return c.ReadTerminal(ctx, id) })
}

func (p *Provider) SearchTerminals(ctx context.Context) ([]normalize.Map, error) {
	return with(ctx, p, func(c *Client) ([]normalize.Map, error) { return c.SearchTerminals(ctx) })
}

func (p *Provider) PerformTerminalTransaction(ctx context.Context, transactionID, terminalID int64) (normalize.Map, error) {
	return with(ctx, p, func(c *Client) (normalize.Map, error) {
		return c.PerformTerminalTransaction(ctx, transactionID, terminalID)
	})
}

func (p *Provider) TriggerFinalBalance(ctx context.Context, terminalID int64) (normalize.Map, error) {
	return with(ctx, p, func(c *Client) (normalize.Map, error) { return c.TriggerFinalBalance(ctx, terminalID) })
}

func (p *Provider) LinkTerminalDevice(ctx context.Context, terminalID int64, serialNumber string) error {
	_, err := with(ctx, p, func(c *Client) (struct{}, error) {
		return struct{}{}, c.LinkTerminalDevice(ctx, terminalID, serialNumber)
	})
	return err
}

func (p *Provider) UnlinkTerminalDevice(ctx context.Context, terminalID int64) error {
	_, err := with(ctx, p, func(c *Client) (struct{}, error) {
		return struct{}{}, c.UnlinkTerminalDevice(ctx, terminalID)
	})
	return err
}

func (p *Provider) CreatePaymentLink(ctx context.Context, req PaymentLinkRequest) (*PaymentLink, error) {
	return with(ctx, p, func(c *Client) (*PaymentLink, error) { return c.CreatePaymentLink(ctx, req) })
}

func (p *Provider) ReadPaymentLink(ctx context.Context, id int64) (*PaymentLink, error) {
	return with(ctx, p, func(c *Client) (*PaymentLink, error) { return c.ReadPaymentLink(ctx, id) })
}

func (p *Provider) ReadSpace(ctx context.Context) (normalize.Map, error) {
	return with(ctx, p, func(c *Client) (normalize.Map, error) { return c.ReadSpace(ctx) })
}
