package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"payments-service/models"
	"payments-service/phonepe"
	"payments-service/repository"

	"go.uber.org/zap"
)

// Notifier receives the payment (with invoice and vendor preloaded) after its
// first transition to succeeded. Implementations are best-effort and must
// never return control-flow-relevant errors.
type Notifier interface {
	PaymentSucceeded(ctx context.Context, payment *models.Payment)
}

// ReconciliationResult describes the stored state after a reconciliation call.
type ReconciliationResult struct {
	PaymentStatus models.PaymentStatus
	InvoiceStatus models.InvoiceStatus
	// Transitioned is true when this call performed the terminal transition
	// (as opposed to a replay, a still-pending report, or losing the race to
	// a concurrent reconciler).
	Transitioned bool
}

// Reconciler merges gateway state reports — webhook-delivered or poll-fetched —
// into payment and invoice rows under the state machine and idempotence rules.
type Reconciler struct {
	repo          repository.PaymentRepository
	notifier      Notifier
	logger        *zap.Logger
	notifyTimeout time.Duration
}

func NewReconciler(repo repository.PaymentRepository, notifier Notifier, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		repo:          repo,
		notifier:      notifier,
		logger:        logger,
		notifyTimeout: 10 * time.Second,
	}
}

// Reconcile looks up the payment by external transaction id, applies the state
// machine and persists the target statuses. Re-delivery of an already-terminal
// state is a successful no-op. The notifier fires at most once per payment,
// on the call that actually performs the succeeded transition.
func (r *Reconciler) Reconcile(ctx context.Context, externalTxnID string, txn *phonepe.GatewayTransaction) (*ReconciliationResult, error) {
	payment, err := r.repo.FindByExternalTxnID(ctx, externalTxnID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			r.logger.Warn("webhook referenced unknown transaction",
				zap.String("external_txn_id", externalTxnID),
			)
			return nil, fmt.Errorf("%w: %s", ErrUnknownTransaction, externalTxnID)
		}
		return nil, fmt.Errorf("failed to load payment %s: %w", externalTxnID, err)
	}

	target := MapGatewayState(txn.State)

	// Already terminal: duplicate or out-of-order delivery. Usually a no-op,
	// but if a previous call updated the payment and then failed on the
	// invoice, this redelivery is the retry that repairs it.
	if payment.Status.Terminal() {
		return r.reconcileTerminal(ctx, externalTxnID, payment)
	}

	// PENDING (or unrecognized) target: nothing to persist yet.
	if !target.Payment.Terminal() {
		return &ReconciliationResult{
			PaymentStatus: payment.Status,
			InvoiceStatus: payment.Invoice.Status,
		}, nil
	}

	var masked *string
	if d := txn.PaymentInstrument.Descriptor(); d != "" {
		masked = &d
	}

	transitioned, err := r.repo.MarkPaymentTerminal(ctx, payment.ID, target.Payment, masked)
	if err != nil {
		return nil, fmt.Errorf("failed to update payment %s: %w", externalTxnID, err)
	}

	if !transitioned {
		// A concurrent reconciliation (webhook racing a poll) won the
		// conditional update. Re-read and report whatever it wrote.
		fresh, err := r.repo.FindByExternalTxnID(ctx, externalTxnID)
		if err != nil {
			return nil, fmt.Errorf("failed to re-read payment %s: %w", externalTxnID, err)
		}
		return &ReconciliationResult{
			PaymentStatus: fresh.Status,
			InvoiceStatus: fresh.Invoice.Status,
		}, nil
	}

	if _, err := r.repo.UpdateInvoiceStatus(ctx, payment.InvoiceID, target.Invoice); err != nil {
		// Payment row moved but invoice did not. Financial state: surface it
		// loudly and let the gateway retry the webhook.
		r.logger.Error("invoice update failed after payment update",
			zap.String("external_txn_id", externalTxnID),
			zap.String("invoice_id", payment.InvoiceID.String()),
			zap.String("payment_status", string(target.Payment)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: invoice %s: %v", ErrInconsistentState, payment.InvoiceID, err)
	}

	r.logger.Info("payment reconciled",
		zap.String("external_txn_id", externalTxnID),
		zap.String("payment_status", string(target.Payment)),
		zap.String("invoice_status", string(target.Invoice)),
	)

	if target.Payment == models.PaymentSucceeded {
		r.dispatchSuccessNotification(payment)
	}

	return &ReconciliationResult{
		PaymentStatus: target.Payment,
		InvoiceStatus: target.Invoice,
		Transitioned:  true,
	}, nil
}

// reconcileTerminal answers redeliveries for payments that already reached a
// terminal status. When the stored invoice status disagrees with the one the
// payment status implies, a previous call died between the two writes; finish
// the invoice update here. The conditional update decides which retry performs
// the repair, so the success notification still fires exactly once.
func (r *Reconciler) reconcileTerminal(ctx context.Context, externalTxnID string, payment *models.Payment) (*ReconciliationResult, error) {
	expected := InvoiceStatusFor(payment.Status)

	if payment.Invoice.Status == expected {
		r.logger.Info("skipping reconciliation for terminal payment",
			zap.String("external_txn_id", externalTxnID),
			zap.String("status", string(payment.Status)),
		)
		return &ReconciliationResult{
			PaymentStatus: payment.Status,
			InvoiceStatus: payment.Invoice.Status,
		}, nil
	}

	repaired, err := r.repo.UpdateInvoiceStatus(ctx, payment.InvoiceID, expected)
	if err != nil {
		return nil, fmt.Errorf("%w: invoice %s: %v", ErrInconsistentState, payment.InvoiceID, err)
	}

	r.logger.Warn("repaired invoice left behind by earlier partial reconciliation",
		zap.String("external_txn_id", externalTxnID),
		zap.String("invoice_id", payment.InvoiceID.String()),
		zap.String("invoice_status", string(expected)),
		zap.Bool("repaired_here", repaired),
	)

	if repaired && payment.Status == models.PaymentSucceeded {
		r.dispatchSuccessNotification(payment)
	}

	return &ReconciliationResult{
		PaymentStatus: payment.Status,
		InvoiceStatus: expected,
	}, nil
}

// dispatchSuccessNotification hands the payment to the notifier on a detached
// context so delivery failures cannot reach the reconciliation response.
func (r *Reconciler) dispatchSuccessNotification(payment *models.Payment) {
	if r.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.notifyTimeout)
		defer cancel()
		r.notifier.PaymentSucceeded(ctx, payment)
	}()
}
