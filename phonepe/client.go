package phonepe

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ErrGatewayUnavailable covers network errors, timeouts and non-2xx responses
// from PhonePe. Callers treat it as "status unknown", never as payment failure.
var ErrGatewayUnavailable = errors.New("phonepe: gateway unavailable")

const (
	statusPathPrefix = "/pg/v1/status"
	payPath          = "/pg/v1/pay"
)

// Client talks to the PhonePe payment gateway: outbound status queries and
// pay-page initiation, both signed with the same checksum scheme as webhooks.
type Client struct {
	baseURL    string
	merchantID string
	signer     *Signer
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL, merchantID string, signer *Signer, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		merchantID: merchantID,
		signer:     signer,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type statusResponse struct {
	Success bool               `json:"success"`
	Code    string             `json:"code"`
	Message string             `json:"message"`
	Data    GatewayTransaction `json:"data"`
}

// CheckStatus queries the gateway for the current state of a transaction.
func (c *Client) CheckStatus(ctx context.Context, merchantTxnID string) (*GatewayTransaction, error) {
	path := fmt.Sprintf("%s/%s/%s", statusPathPrefix, c.merchantID, merchantTxnID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create status request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-VERIFY", c.signer.Checksum(path))
	req.Header.Set("X-MERCHANT-ID", c.merchantID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Warn("PhonePe status query returned non-2xx",
			zap.String("merchant_txn_id", merchantTxnID),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
		)
		return nil, fmt.Errorf("%w: status %d", ErrGatewayUnavailable, resp.StatusCode)
	}

	var out statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: invalid status response: %v", ErrBadPayload, err)
	}

	return &out.Data, nil
}

// PayRequest is the outbound pay-page initiation payload.
type PayRequest struct {
	MerchantID            string            `json:"merchantId"`
	MerchantTransactionID string            `json:"merchantTransactionId"`
	MerchantUserID        string            `json:"merchantUserId"`
	Amount                int64             `json:"amount"`
	RedirectURL           string            `json:"redirectUrl,omitempty"`
	CallbackURL           string            `json:"callbackUrl,omitempty"`
	PaymentInstrument     map[string]string `json:"paymentInstrument"`
}

type payResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		InstrumentResponse struct {
			RedirectInfo struct {
				URL string `json:"url"`
			} `json:"redirectInfo"`
		} `json:"instrumentResponse"`
	} `json:"data"`
}

// InitiatePay creates a hosted pay-page session for the transaction and
// returns the redirect URL the client should open.
func (c *Client) InitiatePay(ctx context.Context, merchantTxnID, merchantUserID string, amount int64, callbackURL, redirectURL string) (string, error) {
	payReq := PayRequest{
		MerchantID:            c.merchantID,
		MerchantTransactionID: merchantTxnID,
		MerchantUserID:        merchantUserID,
		Amount:                amount,
		RedirectURL:           redirectURL,
		CallbackURL:           callbackURL,
		PaymentInstrument:     map[string]string{"type": "PAY_PAGE"},
	}

	raw, err := json.Marshal(payReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal pay request: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(raw)

	body, err := json.Marshal(map[string]string{"request": encoded})
	if err != nil {
		return "", fmt.Errorf("failed to marshal pay envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+payPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create pay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-VERIFY", c.signer.Checksum(encoded+payPath))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: pay returned %s: %s", ErrGatewayUnavailable, resp.Status, string(respBody))
	}

	var out payResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: invalid pay response: %v", ErrBadPayload, err)
	}
	if !out.Success || out.Data.InstrumentResponse.RedirectInfo.URL == "" {
		return "", fmt.Errorf("pay request rejected: %s (%s)", out.Message, out.Code)
	}

	return out.Data.InstrumentResponse.RedirectInfo.URL, nil
}
