package services

import "errors"

var (
	// ErrUnknownTransaction means the gateway referenced a transaction this
	// service never initiated. Logged for investigation (environment mismatch
	// or gateway defect), answered with 404.
	ErrUnknownTransaction = errors.New("unknown external transaction")

	// ErrInconsistentState means the payment row was updated but the invoice
	// row was not. Surfaced as 500 so the gateway redelivers the webhook;
	// reconciliation is idempotent on retry.
	ErrInconsistentState = errors.New("payment and invoice state out of step")

	// ErrPaymentNotFound is the not-found answer on the client-facing path.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrInvoiceNotFound is returned when initiation targets an invoice the
	// user does not own or that does not exist.
	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrForbidden means the requesting user does not own the payment's
	// invoice.
	ErrForbidden = errors.New("payment does not belong to requesting user")
)
