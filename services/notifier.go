package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"payments-service/awsutil"
	"payments-service/models"
	"payments-service/sender"

	"go.uber.org/zap"
)

// PaymentNotifier announces successful payments: a push event on SNS and an
// SMS receipt to the invoice's customer. Both channels are independent and
// best-effort; every failure is logged and swallowed, because the committed
// payment/invoice transition is the source of truth regardless of delivery.
type PaymentNotifier struct {
	sns      awsutil.SNSPublisher
	topicArn string
	sms      sender.SMSSender
	logger   *zap.Logger
}

func NewPaymentNotifier(sns awsutil.SNSPublisher, topicArn string, sms sender.SMSSender, logger *zap.Logger) *PaymentNotifier {
	return &PaymentNotifier{
		sns:      sns,
		topicArn: topicArn,
		sms:      sms,
		logger:   logger,
	}
}

func (n *PaymentNotifier) PaymentSucceeded(ctx context.Context, payment *models.Payment) {
	n.publishEvent(ctx, payment)
	n.sendReceiptSMS(ctx, payment)
}

func (n *PaymentNotifier) publishEvent(ctx context.Context, payment *models.Payment) {
	if n.sns == nil || n.topicArn == "" {
		return
	}

	event := models.PaymentEvent{
		Type:          "payment_succeeded",
		PaymentID:     payment.ID.String(),
		InvoiceID:     payment.InvoiceID.String(),
		InvoiceNumber: payment.Invoice.Number,
		UserID:        payment.Invoice.UserID.String(),
		VendorName:    payment.Invoice.Vendor.Name,
		Amount:        payment.Invoice.Amount,
		Timestamp:     time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		n.logger.Warn("failed to marshal payment event", zap.Error(err))
		return
	}

	if err := n.sns.Publish(ctx, n.topicArn, payload); err != nil {
		n.logger.Warn("failed to publish payment event to SNS",
			zap.String("payment_id", payment.ID.String()),
			zap.Error(err),
		)
		return
	}

	n.logger.Info("payment event published",
		zap.String("payment_id", payment.ID.String()),
		zap.String("invoice_id", payment.InvoiceID.String()),
	)
}

func (n *PaymentNotifier) sendReceiptSMS(ctx context.Context, payment *models.Payment) {
	if n.sms == nil || payment.Invoice.CustomerPhone == "" {
		return
	}

	msg := fmt.Sprintf("Payment of ₹%.2f received for invoice %s from %s. Thank you!",
		float64(payment.Invoice.Amount)/100,
		payment.Invoice.Number,
		payment.Invoice.Vendor.Name,
	)

	if _, err := n.sms.SendSMS(ctx, payment.Invoice.CustomerPhone, msg); err != nil {
		n.logger.Warn("failed to send receipt SMS",
			zap.String("payment_id", payment.ID.String()),
			zap.Error(err),
		)
		return
	}

	n.logger.Info("receipt SMS sent", zap.String("payment_id", payment.ID.String()))
}
