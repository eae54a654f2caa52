package models

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentInitiated PaymentStatus = "initiated"
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentFailed    PaymentStatus = "failed"
)

// Terminal reports whether no further status transition is permitted.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentSucceeded || s == PaymentFailed
}

type PaymentMethod string

const (
	MethodCard PaymentMethod = "card"
	MethodUPI  PaymentMethod = "upi"
)

type Payment struct {
	ID               uuid.UUID     `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	InvoiceID        uuid.UUID     `gorm:"type:uuid;not null;index" json:"invoice_id"`
	ExternalTxnID    string        `gorm:"uniqueIndex;not null" json:"external_txn_id"`
	Method           PaymentMethod `gorm:"type:varchar(10);not null" json:"method"`
	MaskedInstrument *string       `gorm:"type:varchar(64)" json:"masked_instrument,omitempty"`
	Status           PaymentStatus `gorm:"type:varchar(20);not null;default:'initiated'" json:"status"`
	SucceededAt      *time.Time    `json:"succeeded_at,omitempty"`
	FailedAt         *time.Time    `json:"failed_at,omitempty"`
	CreatedAt        time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
	Invoice          Invoice       `gorm:"foreignKey:InvoiceID" json:"invoice"`
}
