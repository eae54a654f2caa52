package controllers

import (
	"errors"
	"net/http"

	"payments-service/middleware"
	"payments-service/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type StatusController struct {
	Status *services.StatusService
	Logger *zap.Logger
}

// GetPayment returns one payment (with invoice and vendor) for the
// authenticated user, lazily refreshed from the gateway when still initiated.
func (sc *StatusController) GetPayment(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid payment id"})
		return
	}

	payment, err := sc.Status.GetPayment(c.Request.Context(), paymentID, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPaymentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "payment not found"})
		case errors.Is(err, services.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "access denied"})
		default:
			sc.Logger.Error("failed to fetch payment", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to fetch payment"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "payment fetched", "payment": payment})
}

// ListPayments returns all payments for the authenticated user, newest first.
func (sc *StatusController) ListPayments(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
		return
	}

	payments, err := sc.Status.ListPayments(c.Request.Context(), userID)
	if err != nil {
		sc.Logger.Error("failed to list payments", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to fetch payments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "payments fetched", "payments": payments})
}
