package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	Port             string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string
	PostgresSSLMode  string
	PostgresTimeZone string

	JWTSecret string

	PhonePeBaseURL    string
	PhonePeMerchantID string
	PhonePeSaltKey    string
	PhonePeSaltIndex  string
	PhonePeTimeout    time.Duration
	CallbackURL       string
	RedirectURL       string

	PaymentSNSTopicARN string
	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioFromNumber   string
}

// LoadConfig reads configuration from the environment. Missing PhonePe salt
// key or salt index is a deployment misconfiguration and fails startup
// outright — a service without them would silently reject all gateway traffic.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:             getEnv("PORT", "8087"),
		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTimeZone: getEnv("POSTGRES_TIMEZONE", "Asia/Kolkata"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		PhonePeBaseURL:    getEnv("PHONEPE_BASE_URL", "https://api-preprod.phonepe.com/apis/pg-sandbox"),
		PhonePeMerchantID: os.Getenv("PHONEPE_MERCHANT_ID"),
		PhonePeSaltKey:    os.Getenv("PHONEPE_SALT_KEY"),
		PhonePeSaltIndex:  os.Getenv("PHONEPE_SALT_INDEX"),
		PhonePeTimeout:    getEnvSeconds("PHONEPE_TIMEOUT_SECONDS", 10),
		CallbackURL:       os.Getenv("PHONEPE_CALLBACK_URL"),
		RedirectURL:       os.Getenv("PHONEPE_REDIRECT_URL"),

		PaymentSNSTopicARN: os.Getenv("PAYMENT_SNS_TOPIC_ARN"),
		TwilioAccountSID:   os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:    os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber:   os.Getenv("TWILIO_FROM_NUMBER"),
	}

	if cfg.PostgresUser == "" || cfg.PostgresPassword == "" || cfg.PostgresDB == "" || cfg.PostgresHost == "" {
		return nil, fmt.Errorf("database config incomplete")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.PhonePeMerchantID == "" {
		return nil, fmt.Errorf("PHONEPE_MERCHANT_ID is required")
	}
	if cfg.PhonePeSaltKey == "" || cfg.PhonePeSaltIndex == "" {
		return nil, fmt.Errorf("PHONEPE_SALT_KEY and PHONEPE_SALT_INDEX are required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvSeconds(key string, fallback int) time.Duration {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return time.Duration(fallback) * time.Second
}
