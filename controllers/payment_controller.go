package controllers

import (
	"errors"
	"net/http"

	"payments-service/middleware"
	"payments-service/models"
	"payments-service/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PaymentController struct {
	Payments *services.PaymentService
	Logger   *zap.Logger
}

type initiateRequest struct {
	InvoiceID string `json:"invoice_id" binding:"required"`
	Method    string `json:"method" binding:"required,oneof=card upi"`
}

// InitiatePayment creates a payment attempt for one of the user's invoices and
// returns the gateway redirect URL.
func (pc *PaymentController) InitiatePayment(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
		return
	}

	var req initiateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request", "details": err.Error()})
		return
	}

	invoiceID, err := uuid.Parse(req.InvoiceID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid invoice id"})
		return
	}

	result, err := pc.Payments.InitiatePayment(c.Request.Context(), userID, invoiceID, models.PaymentMethod(req.Method))
	if err != nil {
		if errors.Is(err, services.ErrInvoiceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "invoice not found"})
			return
		}
		pc.Logger.Error("payment initiation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to initiate payment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "payment initiated",
		"payment":      result.Payment,
		"redirect_url": result.RedirectURL,
	})
}
