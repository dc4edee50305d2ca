package e2e

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/DanielPopoola/wallee-gateway/internal/app"
	"github.com/DanielPopoola/wallee-gateway/internal/application/services/testhelpers"
	"github.com/DanielPopoola/wallee-gateway/internal/config"
	"github.com/stretchr/testify/require"
)

const webhookSecret = "e2e-secret"

// FakeProcessor serves the subset of the processor API the gateway calls
// during a web checkout and a refund.
type FakeProcessor struct {
	Server *httptest.Server

	mu           sync.Mutex
	nextID       int64
	transactions map[int64]map[string]any
}

func NewFakeProcessor(t *testing.T) *FakeProcessor {
	t.Helper()
	p := &FakeProcessor{nextID: 5000, transactions: map[int64]map[string]any{}}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /transaction/create", p.createTransaction)
	mux.HandleFunc("GET /transaction/read", p.readTransaction)
	mux.HandleFunc("GET /transaction-payment-page/payment-page-url", p.paymentPageURL)
	mux.HandleFunc("POST /refund/refund", p.refund)
	mux.HandleFunc("GET /space/read", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"id": 1, "name": "E2E space", "state": "ACTIVE"})
	})

	p.Server = httptest.NewServer(mux)
	t.Cleanup(p.Server.Close)
	return p
}

// SetState changes what the next read of the transaction returns.
func (p *FakeProcessor) SetState(id int64, state string, fields map[string]any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	tx := p.transactions[id]
	tx["state"] = state
	for k, v := range fields {
		tx[k] = v
	}
}

func (p *FakeProcessor) createTransaction(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p.mu.Lock()
	p.nextID++
	id := p.nextID
	tx := map[string]any{
		"id":                id,
		"state":             "PENDING",
		"merchantReference": body["merchantReference"],
		"currency":          body["currency"],
		"lineItems":         body["lineItems"],
	}
	p.transactions[id] = tx
	p.mu.Unlock()

	writeJSON(w, tx)
}

func (p *FakeProcessor) readTransaction(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)

	p.mu.Lock()
	tx, ok := p.transactions[id]
	p.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		writeJSON(w, map[string]any{"type": "NOT_FOUND", "message": "unknown transaction"})
		return
	}
	writeJSON(w, tx)
}

func (p *FakeProcessor) paymentPageURL(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, p.Server.URL+"/pay/"+r.URL.Query().Get("id"))
}

func (p *FakeProcessor) refund(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]any{
		"id":          7001,
		"externalId":  body["externalId"],
		"state":       "SUCCESSFUL",
		"amount":      body["amount"],
		"transaction": map[string]any{"id": body["transaction"]},
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// Gateway is a running gateway backed by a throwaway Postgres.
type Gateway struct {
	Server    *httptest.Server
	Processor *FakeProcessor
	App       *app.App
}

func StartGateway(t *testing.T) *Gateway {
	t.Helper()
	ctx := context.Background()

	testDB := testhelpers.SetupTestDatabase(t)
	t.Cleanup(func() { testDB.Cleanup(t) })

	processor := NewFakeProcessor(t)

	cfg := &config.Config{
		Primary:  config.Primary{Env: "test"},
		Server:   config.ServerConfig{Port: "0", ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, IdleTimeout: time.Minute},
		Database: *testDB.Config,
		Processor: config.ProcessorConfig{
			BaseURL:       processor.Server.URL,
			Timeout:       5 * time.Second,
			TillTimeout:   5 * time.Second,
			PublicBaseURL: "https://shop.example.com",
		},
		Settings: config.SettingsSeed{
			Enabled:           true,
			EnableWebshop:     true,
			EnablePOSTerminal: true,
			UserID:            10,
			AuthenticationKey: "c2VjcmV0LWtleQ==",
			SpaceID:           1,
			WebhookSecret:     webhookSecret,
		},
		Redis:    config.RedisConfig{Channel: "wallee:settings"},
		Kafka:    config.KafkaConfig{Topic: "terminal-payments", GroupID: "e2e"},
		Logger:   config.LoggerConfig{Level: "error", Format: "text"},
		Worker:   config.WorkerConfig{SyncInterval: time.Hour, BatchSize: 10, CleanupInterval: time.Hour, WebhookLogRetentionDays: 30, ArchiveAfterDays: 90},
		Redirect: config.RedirectConfig{PollAttempts: 2, PollDelay: 10 * time.Millisecond},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a, err := app.New(ctx, cfg, logger)
	require.NoError(t, err)
	t.Cleanup(a.Close)

	handler, err := a.Handler(ctx)
	require.NoError(t, err)

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &Gateway{Server: server, Processor: processor, App: a}
}

// Envelope is the success body of the JSON API.
type Envelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

type Transaction struct {
	ID                string `json:"id"`
	RemoteID          int64  `json:"remote_id"`
	MerchantReference string `json:"merchant_reference"`
	Status            string `json:"status"`
	Amount            string `json:"amount"`
	RefundedAmount    string `json:"refunded_amount"`
	PaymentURL        string `json:"payment_url"`
}

type CheckoutResponse struct {
	Transaction Transaction `json:"transaction"`
	PaymentURL  string      `json:"payment_url"`
}

type RefundResponse struct {
	Refund struct {
		State  string `json:"state"`
		Amount string `json:"amount"`
	} `json:"refund"`
	Transaction Transaction `json:"transaction"`
}

// Do sends a JSON request and decodes a successful envelope into out.
func Do[T any](t *testing.T, g *Gateway, method, path string, body any) (int, T) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, g.Server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env Envelope[T]
	if resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	}
	return resp.StatusCode, env.Data
}

// SendWebhook posts a signed notification.
func SendWebhook(t *testing.T, g *Gateway, entity string, entityID int64) int {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"eventId":                     entityID * 10,
		"entityId":                    entityID,
		"listenerEntityTechnicalName": entity,
		"spaceId":                     1,
	})
	require.NoError(t, err)

	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write(body)

	req, err := http.NewRequest(http.MethodPost, g.Server.URL+"/webhooks/wallee", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Signature", hex.EncodeToString(mac.Sum(nil)))

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
