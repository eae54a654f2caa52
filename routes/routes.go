package routes

import (
	"payments-service/controllers"
	"payments-service/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterPaymentRoutes(
	r *gin.Engine,
	jwtSecret []byte,
	pc *controllers.PaymentController,
	sc *controllers.StatusController,
	wc *controllers.WebhookController,
) {
	payments := r.Group("/payments")
	payments.Use(middleware.AuthMiddleware(jwtSecret))
	payments.POST("/initiate", pc.InitiatePayment)
	payments.GET("", sc.ListPayments)
	payments.GET("/:id", sc.GetPayment)

	// Gateway callback (no user auth; X-VERIFY checksum is the trust boundary)
	r.POST("/payments/webhook", wc.HandleWebhook)
}
