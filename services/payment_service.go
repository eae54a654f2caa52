package services

import (
	"context"
	"errors"
	"fmt"

	"payments-service/models"
	"payments-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PayInitiator is the outbound pay-page side of the PhonePe client.
type PayInitiator interface {
	InitiatePay(ctx context.Context, merchantTxnID, merchantUserID string, amount int64, callbackURL, redirectURL string) (string, error)
}

// PaymentService creates payment attempts for invoices. Each attempt gets a
// fresh external transaction id; webhooks and polls correlate back through it.
type PaymentService struct {
	repo        repository.PaymentRepository
	gateway     PayInitiator
	callbackURL string
	redirectURL string
	logger      *zap.Logger
}

func NewPaymentService(repo repository.PaymentRepository, gateway PayInitiator, callbackURL, redirectURL string, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		repo:        repo,
		gateway:     gateway,
		callbackURL: callbackURL,
		redirectURL: redirectURL,
		logger:      logger,
	}
}

type InitiateResult struct {
	Payment     *models.Payment
	RedirectURL string
}

// InitiatePayment creates an initiated payment row for the user's invoice and
// opens a PhonePe pay-page session. A fresh attempt on a previously failed
// invoice moves the invoice back to pending.
func (s *PaymentService) InitiatePayment(ctx context.Context, userID, invoiceID uuid.UUID, method models.PaymentMethod) (*InitiateResult, error) {
	invoice, err := s.repo.FindInvoiceForUser(ctx, invoiceID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to load invoice %s: %w", invoiceID, err)
	}

	payment := &models.Payment{
		ID:            uuid.New(),
		InvoiceID:     invoice.ID,
		ExternalTxnID: uuid.New().String(),
		Method:        method,
		Status:        models.PaymentInitiated,
	}

	if err := s.repo.CreatePayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	if invoice.Status == models.InvoiceFailed {
		if _, err := s.repo.UpdateInvoiceStatus(ctx, invoice.ID, models.InvoicePending); err != nil {
			s.logger.Warn("failed to reset invoice to pending on new attempt",
				zap.String("invoice_id", invoice.ID.String()),
				zap.Error(err),
			)
		}
	}

	redirectURL, err := s.gateway.InitiatePay(ctx, payment.ExternalTxnID, userID.String(), int64(invoice.Amount), s.callbackURL, s.redirectURL)
	if err != nil {
		s.logger.Error("pay-page initiation failed",
			zap.String("external_txn_id", payment.ExternalTxnID),
			zap.Error(err),
		)
		if _, markErr := s.repo.MarkPaymentTerminal(ctx, payment.ID, models.PaymentFailed, nil); markErr != nil {
			s.logger.Warn("failed to mark payment as failed", zap.Error(markErr))
		}
		return nil, fmt.Errorf("failed to initiate payment with gateway: %w", err)
	}

	s.logger.Info("payment initiated",
		zap.String("payment_id", payment.ID.String()),
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("external_txn_id", payment.ExternalTxnID),
	)

	payment.Invoice = *invoice
	return &InitiateResult{Payment: payment, RedirectURL: redirectURL}, nil
}
