package phonepe

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestSigner(t *testing.T) *Signer {
	t.Helper()
	signer, err := NewSigner("test-salt", "1")
	require.NoError(t, err)
	return signer
}

func TestClient_CheckStatus(t *testing.T) {
	signer := newTestSigner(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/pg/v1/status/MID/TXN123", r.URL.Path)
		require.Equal(t, signer.Checksum("/pg/v1/status/MID/TXN123"), r.Header.Get("X-VERIFY"))
		require.Equal(t, "MID", r.Header.Get("X-MERCHANT-ID"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"code":    "PAYMENT_SUCCESS",
			"data": map[string]interface{}{
				"merchantId":            "MID",
				"merchantTransactionId": "TXN123",
				"transactionId":         "T1",
				"amount":                50000,
				"state":                 "COMPLETED",
				"responseCode":          "SUCCESS",
				"paymentInstrument":     map[string]string{"type": "UPI"},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "MID", signer, 2*time.Second, zap.NewNop())

	txn, err := client.CheckStatus(context.Background(), "TXN123")
	require.NoError(t, err)
	require.Equal(t, "TXN123", txn.MerchantTransactionID)
	require.Equal(t, StateCompleted, txn.State)
	require.Equal(t, "UPI", txn.PaymentInstrument.Descriptor())
}

func TestClient_CheckStatus_GatewayDown(t *testing.T) {
	signer := newTestSigner(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "MID", signer, 2*time.Second, zap.NewNop())

	_, err := client.CheckStatus(context.Background(), "TXN123")
	require.ErrorIs(t, err, ErrGatewayUnavailable)
}

func TestClient_CheckStatus_Timeout(t *testing.T) {
	signer := newTestSigner(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "MID", signer, 50*time.Millisecond, zap.NewNop())

	_, err := client.CheckStatus(context.Background(), "TXN123")
	require.ErrorIs(t, err, ErrGatewayUnavailable)
}

func TestClient_InitiatePay(t *testing.T) {
	signer := newTestSigner(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/pg/v1/pay", r.URL.Path)

		var envelope struct {
			Request string `json:"request"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&envelope))
		require.NotEmpty(t, envelope.Request)
		require.Equal(t, signer.Checksum(envelope.Request+"/pg/v1/pay"), r.Header.Get("X-VERIFY"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"instrumentResponse": map[string]interface{}{
					"redirectInfo": map[string]string{"url": "https://pay.example.com/session/abc"},
				},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "MID", signer, 2*time.Second, zap.NewNop())

	url, err := client.InitiatePay(context.Background(), "TXN123", "user-1", 50000, "https://cb.example.com", "https://app.example.com/done")
	require.NoError(t, err)
	require.Equal(t, "https://pay.example.com/session/abc", url)
}

func TestClient_InitiatePay_Rejected(t *testing.T) {
	signer := newTestSigner(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"code":    "BAD_REQUEST",
			"message": "amount invalid",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "MID", signer, 2*time.Second, zap.NewNop())

	_, err := client.InitiatePay(context.Background(), "TXN123", "user-1", -1, "", "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "amount invalid")
}
