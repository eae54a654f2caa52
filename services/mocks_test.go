package services

import (
	"context"
	"sync"

	"payments-service/models"
	"payments-service/phonepe"
	"payments-service/repository"

	"github.com/google/uuid"
)

// mockRepo is a stateful in-memory PaymentRepository holding a single payment
// and its invoice, enough to exercise the reconciliation and polling paths.
type mockRepo struct {
	mu      sync.Mutex
	payment *models.Payment
	invoice *models.Invoice

	markErr        error
	invoiceErr     error
	findErr        error
	markCalls      int
	invoiceUpdates []models.InvoiceStatus

	// forceLostRace makes MarkPaymentTerminal report that another writer won.
	forceLostRace bool
}

func (m *mockRepo) snapshot() *models.Payment {
	p := *m.payment
	p.Invoice = *m.invoice
	return &p
}

func (m *mockRepo) CreatePayment(ctx context.Context, payment *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payment = payment
	return nil
}

func (m *mockRepo) FindByExternalTxnID(ctx context.Context, externalTxnID string) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	if m.payment == nil || m.payment.ExternalTxnID != externalTxnID {
		return nil, repository.ErrNotFound
	}
	return m.snapshot(), nil
}

func (m *mockRepo) FindByIDWithInvoice(ctx context.Context, paymentID uuid.UUID) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	if m.payment == nil || m.payment.ID != paymentID {
		return nil, repository.ErrNotFound
	}
	return m.snapshot(), nil
}

func (m *mockRepo) FindByUserID(ctx context.Context, userID uuid.UUID) ([]models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.payment == nil || m.invoice.UserID != userID {
		return nil, nil
	}
	return []models.Payment{*m.snapshot()}, nil
}

func (m *mockRepo) FindInvoiceForUser(ctx context.Context, invoiceID, userID uuid.UUID) (*models.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.invoice == nil || m.invoice.ID != invoiceID || m.invoice.UserID != userID {
		return nil, repository.ErrNotFound
	}
	inv := *m.invoice
	return &inv, nil
}

func (m *mockRepo) MarkPaymentTerminal(ctx context.Context, paymentID uuid.UUID, status models.PaymentStatus, maskedInstrument *string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markCalls++
	if m.markErr != nil {
		return false, m.markErr
	}
	if m.forceLostRace {
		// Another reconciler slipped in between our read and this update.
		m.payment.Status = models.PaymentSucceeded
		m.invoice.Status = models.InvoicePaid
		return false, nil
	}
	if m.payment == nil || m.payment.Status != models.PaymentInitiated {
		return false, nil
	}
	m.payment.Status = status
	if maskedInstrument != nil {
		m.payment.MaskedInstrument = maskedInstrument
	}
	return true, nil
}

func (m *mockRepo) UpdateInvoiceStatus(ctx context.Context, invoiceID uuid.UUID, status models.InvoiceStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.invoiceErr != nil {
		return false, m.invoiceErr
	}
	if m.invoice.Status == status {
		return false, nil
	}
	m.invoice.Status = status
	m.invoiceUpdates = append(m.invoiceUpdates, status)
	return true, nil
}

// mockNotifier counts PaymentSucceeded calls and signals a channel so tests
// can wait for the detached dispatch goroutine.
type mockNotifier struct {
	mu    sync.Mutex
	calls int
	ch    chan *models.Payment
}

func newMockNotifier() *mockNotifier {
	return &mockNotifier{ch: make(chan *models.Payment, 8)}
}

func (m *mockNotifier) PaymentSucceeded(ctx context.Context, payment *models.Payment) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	m.ch <- payment
}

func (m *mockNotifier) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockGateway is a canned GatewayStatusChecker.
type mockGateway struct {
	txn   *phonepe.GatewayTransaction
	err   error
	calls int
}

func (m *mockGateway) CheckStatus(ctx context.Context, merchantTxnID string) (*phonepe.GatewayTransaction, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.txn, nil
}

// mockPayInitiator is a canned PayInitiator.
type mockPayInitiator struct {
	url   string
	err   error
	calls int
}

func (m *mockPayInitiator) InitiatePay(ctx context.Context, merchantTxnID, merchantUserID string, amount int64, callbackURL, redirectURL string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.url, nil
}

func newTestFixture(status models.PaymentStatus, invoiceStatus models.InvoiceStatus) *mockRepo {
	userID := uuid.New()
	invoice := &models.Invoice{
		ID:            uuid.New(),
		UserID:        userID,
		VendorID:      uuid.New(),
		Number:        "INV-0042",
		Amount:        50000,
		Status:        invoiceStatus,
		CustomerPhone: "+919876543210",
		Vendor:        models.Vendor{ID: uuid.New(), UserID: userID, Name: "Acme Traders"},
	}
	payment := &models.Payment{
		ID:            uuid.New(),
		InvoiceID:     invoice.ID,
		ExternalTxnID: "TXN123",
		Method:        models.MethodUPI,
		Status:        status,
	}
	return &mockRepo{payment: payment, invoice: invoice}
}
