package models

import (
	"time"

	"github.com/google/uuid"
)

type InvoiceStatus string

const (
	InvoicePending InvoiceStatus = "pending"
	InvoicePaid    InvoiceStatus = "paid"
	InvoiceFailed  InvoiceStatus = "failed"
)

type Invoice struct {
	ID            uuid.UUID     `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID        uuid.UUID     `gorm:"type:uuid;not null;index" json:"user_id"`
	VendorID      uuid.UUID     `gorm:"type:uuid;not null;index" json:"vendor_id"`
	Number        string        `gorm:"uniqueIndex;not null" json:"number"`
	Amount        int           `gorm:"not null" json:"amount"` // minor units
	Status        InvoiceStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CustomerName  string        `gorm:"type:varchar(120)" json:"customer_name"`
	CustomerPhone string        `gorm:"type:varchar(20)" json:"customer_phone"`
	CreatedAt     time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
	Vendor        Vendor        `gorm:"foreignKey:VendorID" json:"vendor"`
}

type Vendor struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Name      string    `gorm:"type:varchar(120);not null" json:"name"`
	Phone     string    `gorm:"type:varchar(20)" json:"phone"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
