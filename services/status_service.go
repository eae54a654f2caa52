package services

import (
	"context"
	"errors"
	"fmt"

	"payments-service/models"
	"payments-service/phonepe"
	"payments-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GatewayStatusChecker is the outbound status-query side of the PhonePe client.
type GatewayStatusChecker interface {
	CheckStatus(ctx context.Context, merchantTxnID string) (*phonepe.GatewayTransaction, error)
}

// StatusService answers client status queries. For payments still in
// "initiated" it re-queries the gateway and drives reconciliation inline, so a
// lost webhook does not leave the client staring at a stale status forever.
type StatusService struct {
	repo       repository.PaymentRepository
	gateway    GatewayStatusChecker
	reconciler *Reconciler
	logger     *zap.Logger
}

func NewStatusService(repo repository.PaymentRepository, gateway GatewayStatusChecker, reconciler *Reconciler, logger *zap.Logger) *StatusService {
	return &StatusService{
		repo:       repo,
		gateway:    gateway,
		reconciler: reconciler,
		logger:     logger,
	}
}

// GetPayment returns the payment with its invoice, refreshed from the gateway
// when the stored status is non-terminal. Gateway outages degrade to the last
// stored status; only missing rows and ownership violations are errors.
func (s *StatusService) GetPayment(ctx context.Context, paymentID, userID uuid.UUID) (*models.Payment, error) {
	payment, err := s.repo.FindByIDWithInvoice(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to load payment %s: %w", paymentID, err)
	}

	if payment.Invoice.UserID != userID {
		return nil, ErrForbidden
	}

	if payment.Status != models.PaymentInitiated {
		return payment, nil
	}

	txn, err := s.gateway.CheckStatus(ctx, payment.ExternalTxnID)
	if err != nil {
		// Staleness beats unavailability: answer with what we have.
		s.logger.Warn("gateway status query failed, returning stored status",
			zap.String("external_txn_id", payment.ExternalTxnID),
			zap.Error(err),
		)
		return payment, nil
	}

	if !MapGatewayState(txn.State).Payment.Terminal() {
		return payment, nil
	}

	if _, err := s.reconciler.Reconcile(ctx, payment.ExternalTxnID, txn); err != nil {
		s.logger.Error("poll-triggered reconciliation failed",
			zap.String("external_txn_id", payment.ExternalTxnID),
			zap.Error(err),
		)
		return payment, nil
	}

	fresh, err := s.repo.FindByIDWithInvoice(ctx, paymentID)
	if err != nil {
		s.logger.Warn("failed to re-read payment after poll reconciliation",
			zap.String("payment_id", paymentID.String()),
			zap.Error(err),
		)
		return payment, nil
	}
	return fresh, nil
}

// ListPayments returns all payments whose invoices belong to the user, newest
// first. No lazy refresh here; the per-payment endpoint handles that.
func (s *StatusService) ListPayments(ctx context.Context, userID uuid.UUID) ([]models.Payment, error) {
	payments, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments for user %s: %w", userID, err)
	}
	return payments, nil
}
