package phonepe

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrBadPayload covers base64 and JSON decode failures on a webhook body that
// already passed checksum verification. It indicates a gateway-side format
// change, not a forged request, so callers must report it separately.
var ErrBadPayload = errors.New("phonepe: bad payload")

// Gateway transaction states.
const (
	StateCompleted = "COMPLETED"
	StateFailed    = "FAILED"
	StatePending   = "PENDING"
)

type PaymentInstrument struct {
	Type     string `json:"type"`
	CardType string `json:"cardType,omitempty"`
	UPIID    string `json:"upiTransactionId,omitempty"`
}

// Descriptor returns a short masked description of the instrument, suitable
// for storing against the payment row. Never includes a full PAN or VPA.
func (pi *PaymentInstrument) Descriptor() string {
	if pi == nil {
		return ""
	}
	switch pi.Type {
	case "CARD":
		if pi.CardType != "" {
			return pi.CardType + " card"
		}
		return "card"
	case "UPI":
		return "UPI"
	default:
		return pi.Type
	}
}

// GatewayTransaction is the decoded webhook / status-query payload. It is
// ephemeral: used to drive reconciliation and then discarded.
type GatewayTransaction struct {
	MerchantID            string             `json:"merchantId"`
	MerchantTransactionID string             `json:"merchantTransactionId"`
	TransactionID         string             `json:"transactionId"`
	Amount                int64              `json:"amount"`
	State                 string             `json:"state"`
	ResponseCode          string             `json:"responseCode"`
	PaymentInstrument     *PaymentInstrument `json:"paymentInstrument,omitempty"`
}

// DecodeTransaction decodes the verified base64 webhook body into a
// GatewayTransaction. The merchant transaction id is the join key back to the
// payment row, so a payload without one is unusable.
func DecodeTransaction(encoded string) (*GatewayTransaction, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64: %v", ErrBadPayload, err)
	}

	var txn GatewayTransaction
	if err := json.Unmarshal(raw, &txn); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrBadPayload, err)
	}

	if txn.MerchantTransactionID == "" {
		return nil, fmt.Errorf("%w: missing merchantTransactionId", ErrBadPayload)
	}

	return &txn, nil
}
