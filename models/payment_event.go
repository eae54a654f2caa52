package models

import "time"

// PaymentEvent is the push-notification payload published to SNS when a
// payment reaches succeeded.
type PaymentEvent struct {
	Type          string    `json:"type"` // "payment_succeeded"
	PaymentID     string    `json:"payment_id"`
	InvoiceID     string    `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	UserID        string    `json:"user_id"`
	VendorName    string    `json:"vendor_name"`
	Amount        int       `json:"amount"` // minor units
	Timestamp     time.Time `json:"timestamp"`
}
