package controllers

import (
	"errors"
	"net/http"

	"payments-service/phonepe"
	"payments-service/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WebhookController receives PhonePe server-to-server callbacks. There is no
// user auth on this route; trust comes solely from the X-VERIFY checksum, and
// verification happens before anything touches the database.
type WebhookController struct {
	Signer     *phonepe.Signer
	Reconciler *services.Reconciler
	Logger     *zap.Logger
}

type webhookRequest struct {
	Response string `json:"response" binding:"required"`
	Checksum string `json:"checksum"`
}

func (wc *WebhookController) HandleWebhook(c *gin.Context) {
	var req webhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid webhook body"})
		return
	}

	xVerify := c.GetHeader("X-VERIFY")
	if xVerify == "" {
		xVerify = req.Checksum
	}

	if !wc.Signer.Verify(req.Response, xVerify) {
		wc.Logger.Warn("webhook checksum verification failed",
			zap.String("ip", c.ClientIP()),
		)
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "checksum verification failed"})
		return
	}

	txn, err := phonepe.DecodeTransaction(req.Response)
	if err != nil {
		wc.Logger.Warn("webhook payload decode failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "malformed payload"})
		return
	}

	result, err := wc.Reconciler.Reconcile(c.Request.Context(), txn.MerchantTransactionID, txn)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownTransaction):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "unknown transaction"})
		case errors.Is(err, services.ErrInconsistentState):
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "reconciliation incomplete"})
		default:
			wc.Logger.Error("webhook reconciliation failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "reconciliation failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"message":        "webhook processed",
		"payment_status": result.PaymentStatus,
		"invoice_status": result.InvoiceStatus,
	})
}
