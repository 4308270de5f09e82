package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shopease/shopease-backend/pkg/config"
	pkgerrors "github.com/shopease/shopease-backend/pkg/errors"
	"github.com/shopease/shopease-backend/pkg/logger"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	cfg := config.RazorpayConfig{
		KeyID:          "rzp_test_key",
		KeySecret:      "secret",
		BaseURL:        baseURL,
		RequestTimeout: 2 * time.Second,
		MaxAttempts:    3,
		RetryBackoff:   time.Millisecond,
	}
	client, err := NewClient(context.Background(), cfg, logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)
	return client
}

func TestCreateOrderSendsPaiseAndCaptures(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "rzp_test_key", user)
		require.Equal(t, "secret", pass)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]any{
			"id":       "order_abc123",
			"amount":   69997,
			"currency": "INR",
			"status":   "created",
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	order, err := client.CreateOrder(context.Background(), OrderRequest{AmountPaise: 69997, Currency: "inr"})
	require.NoError(t, err)
	require.Equal(t, "order_abc123", order.ID)
	require.EqualValues(t, 69997, captured["amount"])
	require.Equal(t, "INR", captured["currency"])
	require.EqualValues(t, 1, captured["payment_capture"])
}

func TestCreateOrderRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"id": "order_retry", "amount": 100, "currency": "INR"})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	order, err := client.CreateOrder(context.Background(), OrderRequest{AmountPaise: 100})
	require.NoError(t, err)
	require.Equal(t, "order_retry", order.ID)
	require.EqualValues(t, 3, calls.Load())
}

func TestCreateOrderDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": "BAD_REQUEST_ERROR", "description": "amount too small"},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.CreateOrder(context.Background(), OrderRequest{AmountPaise: 1})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeDependency, typed.Code())
	require.Contains(t, typed.Message(), "amount too small")
	require.EqualValues(t, 1, calls.Load())
}

func TestCreateOrderRejectsNonPositiveAmount(t *testing.T) {
	client := newTestClient(t, "http://localhost:0")
	_, err := client.CreateOrder(context.Background(), OrderRequest{AmountPaise: 0})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestVerifySignature(t *testing.T) {
	client := newTestClient(t, "http://localhost:0")

	mac := hmac.New(sha256.New, []byte("secret"))
	mac.Write([]byte("order_abc123|pay_xyz789"))
	valid := hex.EncodeToString(mac.Sum(nil))

	require.True(t, client.VerifySignature("order_abc123", "pay_xyz789", valid))
	require.False(t, client.VerifySignature("order_abc123", "pay_xyz789", "deadbeef"))
	require.False(t, client.VerifySignature("order_other", "pay_xyz789", valid))
	require.False(t, client.VerifySignature("", "pay_xyz789", valid))
	require.False(t, client.VerifySignature("order_abc123", "pay_xyz789", ""))
}
