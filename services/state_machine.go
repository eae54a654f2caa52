package services

import (
	"payments-service/models"
	"payments-service/phonepe"
)

// StatusPair is the target (payment status, invoice status) for one gateway
// state report. The two always move together.
type StatusPair struct {
	Payment models.PaymentStatus
	Invoice models.InvoiceStatus
}

// MapGatewayState maps a PhonePe transaction state to internal statuses. The
// mapping is total: anything that is not an explicit terminal state — PENDING,
// empty, or a state this service has never seen — is treated as still in
// flight, never as failure.
func MapGatewayState(state string) StatusPair {
	switch state {
	case phonepe.StateCompleted:
		return StatusPair{Payment: models.PaymentSucceeded, Invoice: models.InvoicePaid}
	case phonepe.StateFailed:
		return StatusPair{Payment: models.PaymentFailed, Invoice: models.InvoiceFailed}
	default:
		return StatusPair{Payment: models.PaymentInitiated, Invoice: models.InvoicePending}
	}
}

// InvoiceStatusFor returns the invoice status implied by a stored payment
// status. A payment and its invoice always move in these pairs; any other
// combination is a partial write that needs repair.
func InvoiceStatusFor(status models.PaymentStatus) models.InvoiceStatus {
	switch status {
	case models.PaymentSucceeded:
		return models.InvoicePaid
	case models.PaymentFailed:
		return models.InvoiceFailed
	default:
		return models.InvoicePending
	}
}
