package main

import (
	"context"
	"log"
	"os"

	"payments-service/awsutil"
	"payments-service/config"
	"payments-service/controllers"
	"payments-service/database"
	"payments-service/logger"
	"payments-service/models"
	"payments-service/phonepe"
	"payments-service/repository"
	"payments-service/routes"
	"payments-service/sender"
	"payments-service/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("[PaymentsService] failed to load config: ", err)
	}

	zapLogger, err := logger.New(os.Getenv("APP_ENV"))
	if err != nil {
		log.Fatal("[PaymentsService] failed to initialize logger: ", err)
	}
	defer zapLogger.Sync()

	db, err := database.Connect(cfg, zapLogger,
		&models.Vendor{}, &models.Invoice{}, &models.Payment{})
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}

	signer, err := phonepe.NewSigner(cfg.PhonePeSaltKey, cfg.PhonePeSaltIndex)
	if err != nil {
		zapLogger.Fatal("gateway credentials misconfigured", zap.Error(err))
	}
	gateway := phonepe.NewClient(cfg.PhonePeBaseURL, cfg.PhonePeMerchantID, signer, cfg.PhonePeTimeout, zapLogger)

	var snsPublisher awsutil.SNSPublisher
	if cfg.PaymentSNSTopicARN != "" {
		awsCfg, err := awsutil.LoadAWSConfig(context.Background())
		if err != nil {
			zapLogger.Warn("AWS config load failed, push notifications disabled", zap.Error(err))
		} else {
			snsPublisher = awsutil.NewSNSClient(awsCfg)
		}
	}

	var smsSender sender.SMSSender
	if cfg.TwilioAccountSID != "" {
		twilio, err := sender.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
		if err != nil {
			zapLogger.Warn("Twilio setup failed, SMS notifications disabled", zap.Error(err))
		} else {
			smsSender = twilio
		}
	}

	repo := repository.NewGormPaymentRepo(db)
	notifier := services.NewPaymentNotifier(snsPublisher, cfg.PaymentSNSTopicARN, smsSender, zapLogger)
	reconciler := services.NewReconciler(repo, notifier, zapLogger)
	statusService := services.NewStatusService(repo, gateway, reconciler, zapLogger)
	paymentService := services.NewPaymentService(repo, gateway, cfg.CallbackURL, cfg.RedirectURL, zapLogger)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger(zapLogger))

	pc := &controllers.PaymentController{Payments: paymentService, Logger: zapLogger}
	sc := &controllers.StatusController{Status: statusService, Logger: zapLogger}
	wc := &controllers.WebhookController{Signer: signer, Reconciler: reconciler, Logger: zapLogger}
	hc := &controllers.HealthController{DB: db}

	routes.RegisterPaymentRoutes(r, []byte(cfg.JWTSecret), pc, sc, wc)
	r.GET("/health", hc.Health)

	zapLogger.Info("payments-service running", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		zapLogger.Fatal("server failed", zap.Error(err))
	}
}
