package razorpay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/shopease/shopease-backend/pkg/config"
	pkgerrors "github.com/shopease/shopease-backend/pkg/errors"
	"github.com/shopease/shopease-backend/pkg/logger"
)

const ordersPath = "/v1/orders"

var (
	errKeyIDRequired     = errors.New("razorpay key id is required")
	errKeySecretRequired = errors.New("razorpay key secret is required")
	errLoggerRequired    = errors.New("razorpay logger is required")
)

// Client wraps the Razorpay Orders REST API with centralized auth, retries,
// and signature verification.
type Client struct {
	httpClient *http.Client
	baseURL    string
	keyID      string
	keySecret  string
	attempts   int
	backoff    time.Duration
	logger     *logger.Logger
}

// OrderRequest is the payload for creating a gateway order. Amount is in
// paise; capture is always enabled so payments settle without a second call.
type OrderRequest struct {
	AmountPaise int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Receipt     string            `json:"receipt,omitempty"`
	Notes       map[string]string `json:"notes,omitempty"`
}

// Order is the gateway's view of a created order.
type Order struct {
	ID          string `json:"id"`
	AmountPaise int64  `json:"amount"`
	Currency    string `json:"currency"`
	Receipt     string `json:"receipt"`
	Status      string `json:"status"`
}

type orderCreateBody struct {
	Amount         int64             `json:"amount"`
	Currency       string            `json:"currency"`
	Receipt        string            `json:"receipt,omitempty"`
	PaymentCapture int               `json:"payment_capture"`
	Notes          map[string]string `json:"notes,omitempty"`
}

type gatewayErrorBody struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// NewClient initializes the Razorpay wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.RazorpayConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	keyID := strings.TrimSpace(cfg.KeyID)
	if keyID == "" {
		return nil, errKeyIDRequired
	}
	keySecret := strings.TrimSpace(cfg.KeySecret)
	if keySecret == "" {
		return nil, errKeySecretRequired
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	c := &Client{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		baseURL:    baseURL,
		keyID:      keyID,
		keySecret:  keySecret,
		attempts:   attempts,
		backoff:    cfg.RetryBackoff,
		logger:     logg,
	}

	logg.Info(ctx, "razorpay client initialized")
	return c, nil
}

// CreateOrder registers an order with the gateway so the client can collect
// payment against it. Transient gateway failures are retried with backoff.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	if req.AmountPaise <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order amount must be positive")
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "INR"
	}

	body := orderCreateBody{
		Amount:         req.AmountPaise,
		Currency:       currency,
		Receipt:        req.Receipt,
		PaymentCapture: 1,
		Notes:          req.Notes,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding order request: %w", err)
	}

	var order *Order
	backoff := retry.WithMaxRetries(uint64(c.attempts-1), retry.NewConstant(c.backoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		created, attemptErr := c.postOrder(ctx, payload)
		if attemptErr != nil {
			return attemptErr
		}
		order = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (c *Client) postOrder(ctx context.Context, payload []byte) (*Order, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ordersPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building order request: %w", err)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, retry.RetryableError(pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment gateway unreachable"))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, retry.RetryableError(pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading gateway response"))
	}

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, retry.RetryableError(pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("gateway returned %d", resp.StatusCode)))
	case resp.StatusCode >= http.StatusBadRequest:
		var gwErr gatewayErrorBody
		_ = json.Unmarshal(raw, &gwErr)
		msg := gwErr.Error.Description
		if msg == "" {
			msg = fmt.Sprintf("gateway rejected order (%d)", resp.StatusCode)
		}
		return nil, pkgerrors.New(pkgerrors.CodeDependency, msg)
	}

	var order Order
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding gateway order")
	}
	if order.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "gateway order missing id")
	}
	return &order, nil
}

// VerifySignature checks the HMAC-SHA256 callback signature computed over
// "<orderID>|<paymentID>" with the key secret. Comparison is constant time.
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	if orderID == "" || paymentID == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(c.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(signature))) == 1
}

// KeyID returns the configured public key identifier for client-side checkout.
func (c *Client) KeyID() string {
	if c == nil {
		return ""
	}
	return c.keyID
}
