package repository

import (
	"context"
	"errors"
	"time"

	"payments-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is returned when no matching row exists.
var ErrNotFound = errors.New("repository: record not found")

// PaymentRepository is the only mutable-state boundary of the service. Status
// writes go through MarkPaymentTerminal, which transitions a payment only from
// the non-terminal "initiated" state; concurrent reconcilers for the same
// transaction therefore race on the row condition instead of overwriting each
// other.
type PaymentRepository interface {
	CreatePayment(ctx context.Context, payment *models.Payment) error
	FindByExternalTxnID(ctx context.Context, externalTxnID string) (*models.Payment, error)
	FindByIDWithInvoice(ctx context.Context, paymentID uuid.UUID) (*models.Payment, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]models.Payment, error)
	FindInvoiceForUser(ctx context.Context, invoiceID, userID uuid.UUID) (*models.Invoice, error)

	// MarkPaymentTerminal moves a payment from "initiated" to the given
	// terminal status and reports whether this call performed the transition.
	// A false return with nil error means another writer got there first (or
	// the payment was already terminal).
	MarkPaymentTerminal(ctx context.Context, paymentID uuid.UUID, status models.PaymentStatus, maskedInstrument *string) (bool, error)

	// UpdateInvoiceStatus sets the invoice status and reports whether the row
	// actually changed. A false return with nil error means the invoice was
	// already in the given status.
	UpdateInvoiceStatus(ctx context.Context, invoiceID uuid.UUID, status models.InvoiceStatus) (bool, error)
}

type gormPaymentRepo struct {
	db *gorm.DB
}

func NewGormPaymentRepo(db *gorm.DB) PaymentRepository {
	return &gormPaymentRepo{db: db}
}

func (r *gormPaymentRepo) CreatePayment(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *gormPaymentRepo) FindByExternalTxnID(ctx context.Context, externalTxnID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Preload("Invoice").
		Preload("Invoice.Vendor").
		Where("external_txn_id = ?", externalTxnID).
		First(&payment).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &payment, nil
}

func (r *gormPaymentRepo) FindByIDWithInvoice(ctx context.Context, paymentID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Preload("Invoice").
		Preload("Invoice.Vendor").
		Where("id = ?", paymentID).
		First(&payment).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &payment, nil
}

func (r *gormPaymentRepo) FindByUserID(ctx context.Context, userID uuid.UUID) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Joins("JOIN invoices ON invoices.id = payments.invoice_id").
		Where("invoices.user_id = ?", userID).
		Preload("Invoice").
		Preload("Invoice.Vendor").
		Order("payments.created_at DESC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *gormPaymentRepo) FindInvoiceForUser(ctx context.Context, invoiceID, userID uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).
		Preload("Vendor").
		Where("id = ? AND user_id = ?", invoiceID, userID).
		First(&invoice).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &invoice, nil
}

func (r *gormPaymentRepo) MarkPaymentTerminal(ctx context.Context, paymentID uuid.UUID, status models.PaymentStatus, maskedInstrument *string) (bool, error) {
	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": now,
	}
	switch status {
	case models.PaymentSucceeded:
		updates["succeeded_at"] = &now
	case models.PaymentFailed:
		updates["failed_at"] = &now
	}
	if maskedInstrument != nil {
		updates["masked_instrument"] = maskedInstrument
	}

	res := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ? AND status = ?", paymentID, models.PaymentInitiated).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *gormPaymentRepo) UpdateInvoiceStatus(ctx context.Context, invoiceID uuid.UUID, status models.InvoiceStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("id = ? AND status <> ?", invoiceID, status).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
