package services

import (
	"context"
	"testing"

	"payments-service/models"
	"payments-service/phonepe"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newStatusService(repo *mockRepo, gateway *mockGateway) *StatusService {
	rec := NewReconciler(repo, newMockNotifier(), zap.NewNop())
	return NewStatusService(repo, gateway, rec, zap.NewNop())
}

func TestGetPayment_NotFound(t *testing.T) {
	repo := newTestFixture(models.PaymentInitiated, models.InvoicePending)
	svc := newStatusService(repo, &mockGateway{})

	_, err := svc.GetPayment(context.Background(), uuid.New(), repo.invoice.UserID)
	require.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestGetPayment_OtherUsersPayment(t *testing.T) {
	repo := newTestFixture(models.PaymentInitiated, models.InvoicePending)
	gateway := &mockGateway{}
	svc := newStatusService(repo, gateway)

	_, err := svc.GetPayment(context.Background(), repo.payment.ID, uuid.New())
	require.ErrorIs(t, err, ErrForbidden)
	require.Zero(t, gateway.calls, "ownership check must come before any gateway traffic")
}

func TestGetPayment_TerminalSkipsGateway(t *testing.T) {
	repo := newTestFixture(models.PaymentSucceeded, models.InvoicePaid)
	gateway := &mockGateway{}
	svc := newStatusService(repo, gateway)

	payment, err := svc.GetPayment(context.Background(), repo.payment.ID, repo.invoice.UserID)
	require.NoError(t, err)
	require.Equal(t, models.PaymentSucceeded, payment.Status)
	require.Zero(t, gateway.calls)
}

func TestGetPayment_RefreshesStaleInitiated(t *testing.T) {
	repo := newTestFixture(models.PaymentInitiated, models.InvoicePending)
	gateway := &mockGateway{txn: &phonepe.GatewayTransaction{
		MerchantTransactionID: "TXN123",
		State:                 phonepe.StateFailed,
	}}
	svc := newStatusService(repo, gateway)

	payment, err := svc.GetPayment(context.Background(), repo.payment.ID, repo.invoice.UserID)
	require.NoError(t, err)
	require.Equal(t, models.PaymentFailed, payment.Status)
	require.Equal(t, models.InvoiceFailed, payment.Invoice.Status)
	require.Equal(t, models.PaymentFailed, repo.payment.Status, "refresh must persist, not just report")
}

func TestGetPayment_GatewayDownReturnsStored(t *testing.T) {
	repo := newTestFixture(models.PaymentInitiated, models.InvoicePending)
	gateway := &mockGateway{err: phonepe.ErrGatewayUnavailable}
	svc := newStatusService(repo, gateway)

	payment, err := svc.GetPayment(context.Background(), repo.payment.ID, repo.invoice.UserID)
	require.NoError(t, err)
	require.Equal(t, models.PaymentInitiated, payment.Status)
}

func TestGetPayment_StillPendingAtGateway(t *testing.T) {
	repo := newTestFixture(models.PaymentInitiated, models.InvoicePending)
	gateway := &mockGateway{txn: &phonepe.GatewayTransaction{
		MerchantTransactionID: "TXN123",
		State:                 phonepe.StatePending,
	}}
	svc := newStatusService(repo, gateway)

	payment, err := svc.GetPayment(context.Background(), repo.payment.ID, repo.invoice.UserID)
	require.NoError(t, err)
	require.Equal(t, models.PaymentInitiated, payment.Status)
	require.Zero(t, repo.markCalls, "pending report must not touch the payment row")
}

func TestListPayments(t *testing.T) {
	repo := newTestFixture(models.PaymentSucceeded, models.InvoicePaid)
	svc := newStatusService(repo, &mockGateway{})

	payments, err := svc.ListPayments(context.Background(), repo.invoice.UserID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	require.Equal(t, repo.payment.ID, payments[0].ID)

	other, err := svc.ListPayments(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Empty(t, other)
}
