package processor

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/DanielPopoola/wallee-gateway/internal/config"
	"github.com/DanielPopoola/wallee-gateway/internal/domain"
	"github.com/DanielPopoola/wallee-gateway/internal/normalize"
)

const macVersion = "1"

// Client talks to the processor REST API for one space. It never retries;
// callers decide what a failure means.
type Client struct {
	baseURL    string
	spaceID    int64
	userID     int64
	key        []byte
	httpClient *http.Client
	tillClient *http.Client
	logCalls   bool
	logger     *slog.Logger
	now        func() time.Time
}

// NewClient builds a client from the current settings. It fails with a
// domain error when the integration is disabled or credentials are missing.
func NewClient(settings domain.Settings, cfg config.ProcessorConfig, logger *slog.Logger) (*Client, error) {
	if err := settings.ClientReady(); err != nil {
		return nil, err
	}

	base := cfg.BaseURL
	if settings.APIHost != "" {
		base = settings.APIHost
	}

	key, err := base64.StdEncoding.DecodeString(settings.AuthenticationKey)
	if err != nil {
		key = []byte(settings.AuthenticationKey)
	}

	return &Client{
		baseURL:    strings.TrimRight(base, "/"),
		spaceID:    settings.SpaceID,
		userID:     settings.UserID,
		key:        key,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		tillClient: &http.Client{Timeout: cfg.TillTimeout},
		logCalls:   settings.LogAPICalls,
		logger:     logger,
		now:        time.Now,
	}, nil
}

func (c *Client) SpaceID() int64 {
	return c.spaceID
}

func (c *Client) CreateTransaction(ctx context.Context, req CreateTransactionRequest) (normalize.Map, error) {
	return deref(sendRequest[CreateTransactionRequest, normalize.Map](c, ctx, c.httpClient, http.MethodPost, "/transaction/create", c.query(), &req))
}

func (c *Client) ReadTransaction(ctx context.Context, id int64) (normalize.Map, error) {
	return deref(sendRequest[any, normalize.Map](c, ctx, c.httpClient, http.MethodGet, "/transaction/read", c.query("id", id), nil))
}

// CompleteOnline captures an authorized transaction.
func (c *Client) CompleteOnline(ctx context.Context, transactionID int64) (normalize.Map, error) {
	return deref(sendRequest[any, normalize.Map](c, ctx, c.httpClient, http.MethodPost, "/transaction-completion/completeOnline", c.query("id", transactionID), nil))
}

func (c *Client) VoidOnline(ctx context.Context, transactionID int64) (normalize.Map, error) {
	return deref(sendRequest[any, normalize.Map](c, ctx, c.httpClient, http.MethodPost, "/transaction-void/voidOnline", c.query("id", transactionID), nil))
}

func (c *Client) PaymentPageURL(ctx context.Context, transactionID int64) (string, error) {
	return deref(sendRequest[any, string](c, ctx, c.httpClient, http.MethodGet, "/transaction-payment-page/payment-page-url", c.query("id", transactionID), nil))
}

func (c *Client) ReadTransactionCompletion(ctx context.Context, id int64) (normalize.Map, error) {
	return deref(sendRequest[any, normalize.Map](c, ctx, c.httpClient, http.MethodGet, "/transaction-completion/read", c.query("id", id), nil))
}

func (c *Client) CreateRefund(ctx context.Context, req RefundRequest) (*Refund, error) {
	if req.Type == "" {
		req.Type = RefundTypeMerchantInitiatedOnline
	}
	return sendRequest[RefundRequest, Refund](c, ctx, c.httpClient, http.MethodPost, "/refund/refund", c.query(), &req)
}

func (c *Client) ReadRefund(ctx context.Context, id int64) (*Refund, error) {
	return sendRequest[any, Refund](c, ctx, c.httpClient, http.MethodGet, "/refund/read", c.query("id", id), nil)
}

func (c *Client) ReadTerminal(ctx context.Context, id int64) (normalize.Map, error) {
	return deref(sendRequest[any, normalize.Map](c, ctx, c.httpClient, http.MethodGet, "/payment-terminal/read", c.query("id", id), nil))
}

func (c *Client) SearchTerminals(ctx context.Context) ([]normalize.Map, error) {
	return deref(sendRequest[searchQuery, []normalize.Map](c, ctx, c.httpClient, http.MethodPost, "/payment-terminal/search", c.query(), &searchQuery{NumberOfEntities: 100}))
}

// PerformTerminalTransaction blocks until the device finishes or the till
// timeout elapses.
func (c *Client) PerformTerminalTransaction(ctx context.Context, transactionID, terminalID int64) (normalize.Map, error) {
	return deref(sendRequest[any, normalize.Map](c, ctx, c.tillClient, http.MethodGet, "/payment-terminal-till/perform-transaction",
		c.query("transactionId", transactionID, "terminalId", terminalID), nil))
}

func (c *Client) TriggerFinalBalance(ctx context.Context, terminalID int64) (normalize.Map, error) {
	return deref(sendRequest[any, normalize.Map](c, ctx, c.tillClient, http.MethodGet, "/payment-terminal-till/trigger-final-balance",
		c.query("terminalId", terminalID), nil))
}

func (c *Client) LinkTerminalDevice(ctx context.Context, terminalID int64, serialNumber string) error {
	_, err := sendRequest[any, json.RawMessage](c, ctx, c.httpClient, http.MethodPost, "/payment-terminal/link",
		c.query("terminalId", terminalID, "serialNumber", serialNumber), nil)
	return err
}

func (c *Client) UnlinkTerminalDevice(ctx context.Context, terminalID int64) error {
	_, err := sendRequest[any, json.RawMessage](c, ctx, c.httpClient, http.MethodPost, "/payment-terminal/unlink",
		c.query("terminalId", terminalID), nil)
	return err
}

func (c *Client) CreatePaymentLink(ctx context.Context, req PaymentLinkRequest) (*PaymentLink, error) {
	return sendRequest[PaymentLinkRequest, PaymentLink](c, ctx, c.httpClient, http.MethodPost, "/payment-link/create", c.query(), &req)
}

func (c *Client) ReadPaymentLink(ctx context.Context, id int64) (*PaymentLink, error) {
	return sendRequest[any, PaymentLink](c, ctx, c.httpClient, http.MethodGet, "/payment-link/read", c.query("id", id), nil)
}

func (c *Client) ReadSpace(ctx context.Context) (normalize.Map, error) {
	q := url.Values{}
	q.Set("id", strconv.FormatInt(c.spaceID, 10))
	return deref(sendRequest[any, normalize.Map](c, ctx, c.httpClient, http.MethodGet, "/space/read", q, nil))
}

// query starts every space-scoped request with spaceId followed by the
// given key/value pairs.
func (c *Client) query(kv ...any) url.Values {
	q := url.Values{}
	q.Set("spaceId", strconv.FormatInt(c.spaceID, 10))
	for i := 0; i+1 < len(kv); i += 2 {
		q.Set(fmt.Sprint(kv[i]), fmt.Sprint(kv[i+1]))
	}
	return q
}

// sign adds the MAC authentication headers. The signed resource is the
// request path with its query string.
func (c *Client) sign(req *http.Request) {
	timestamp := strconv.FormatInt(c.now().Unix(), 10)
	userID := strconv.FormatInt(c.userID, 10)

	message := strings.Join([]string{macVersion, userID, timestamp, req.Method, req.URL.RequestURI()}, "|")
	mac := hmac.New(sha512.New, c.key)
	mac.Write([]byte(message))

	req.Header.Set("x-mac-version", macVersion)
	req.Header.Set("x-mac-userid", userID)
	req.Header.Set("x-mac-timestamp", timestamp)
	req.Header.Set("x-mac-value", base64.StdEncoding.EncodeToString(mac.Sum(nil)))
}

func (c *Client) logCall(method, path string, request any, response []byte, err error) {
	if !c.logCalls {
		return
	}
	attrs := []any{
		"method", method,
		"endpoint", path,
		"request", request,
		"response", string(response),
	}
	if err != nil {
		c.logger.Warn("processor api call failed", append(attrs, "error", err)...)
		return
	}
	c.logger.Info("processor api call", attrs...)
}

func sendRequest[Req any, Resp any](c *Client, ctx context.Context, hc *http.Client, method, path string, query url.Values, reqBody *Req) (resp *Resp, err error) {
	var (
		bodyReader io.Reader
		respBody   []byte
	)
	defer func() {
		c.logCall(method, path, reqBody, respBody, err)
	}()

	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("error marshalling json: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if reqBody != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	c.sign(httpReq)

	httpResp, err := hc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err = io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		var errResp errorResponse
		if jsonErr := json.Unmarshal(respBody, &errResp); jsonErr != nil || errResp.Message == "" {
			return nil, &ProcessorError{
				Code:       "UNEXPECTED_RESPONSE",
				Message:    strings.TrimSpace(string(respBody)),
				StatusCode: httpResp.StatusCode,
			}
		}
		return nil, &ProcessorError{
			Code:       errResp.Type,
			Message:    errResp.Message,
			StatusCode: httpResp.StatusCode,
		}
	}

	var out Resp
	if len(bytes.TrimSpace(respBody)) == 0 {
		return &out, nil
	}
	dec := json.NewDecoder(bytes.NewReader(respBody))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("error decoding json response: %w", err)
	}
	return &out, nil
}

func deref[T any](v *T, err error) (T, error) {
	if err != nil || v == nil {
		var zero T
		return zero, err
	}
	return *v, nil
}
