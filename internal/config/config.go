package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"checkout-service/internal/pkg/jwt"
)

type AppConfig struct {
	// Server
	HTTPAddr  string
	RedisAddr string
	RedisPass string

	// JWT
	JWT jwt.Config

	// PIX gateway
	GatewayBaseURL string
	GatewayAPIKey  string
	GatewayTimeout time.Duration

	// Attribution service
	AttributionURL   string
	AttributionToken string

	// SMTP platform fallback (sellers may override per account)
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPass     string
	SMTPFromName string
	SMTPSecure   bool

	// Kafka
	KafkaBrokers []string
	KafkaTopic   string

	// Scheduled sweepers
	CronSecret           string
	PendingLookback      time.Duration
	PendingMinAge        time.Duration
	PixReminderDelay     time.Duration
	AbandonedCartDelay   time.Duration
	OutboxDispatchPeriod time.Duration

	// Platform commission fallback when the settings row is missing
	CommissionPercent float64
}

// Load loads environment variables into AppConfig.
func Load() AppConfig {
	return AppConfig{
		HTTPAddr:  getEnv("HTTP_ADDR", ":8000"),
		RedisAddr: getEnv("REDIS_ADDR", "redis-checkout:6379"),
		RedisPass: getEnv("REDIS_PASS", ""),

		JWT: jwt.Config{
			PrivPath: getEnv("JWT_PRIVATE_KEY_PATH", "/app/secrets/jwt_private.pem"),
			PubPath:  getEnv("JWT_PUBLIC_KEY_PATH", "/app/secrets/jwt_public.pem"),
			Issuer:   "checkout-panel",
			Audience: "checkout-admins",
			TTL:      72 * time.Hour,
			KID:      "checkout-key",
		},

		GatewayBaseURL: getEnv("GATEWAY_BASE_URL", "https://api.gateway.example"),
		GatewayAPIKey:  getEnv("GATEWAY_API_KEY", ""),
		GatewayTimeout: getEnvDuration("GATEWAY_TIMEOUT", 15*time.Second),

		AttributionURL:   getEnv("ATTRIBUTION_URL", ""),
		AttributionToken: getEnv("ATTRIBUTION_TOKEN", ""),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "465"),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPass:     getEnv("SMTP_PASS", ""),
		SMTPFromName: getEnv("SMTP_FROM_NAME", "Checkout"),
		SMTPSecure:   strings.ToLower(getEnv("SMTP_SECURE", "true")) == "true",

		KafkaBrokers: getEnvSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaTopic:   getEnv("KAFKA_TOPIC_SALES", "sales.events"),

		CronSecret:           getEnv("CRON_SECRET", ""),
		PendingLookback:      getEnvDuration("PENDING_LOOKBACK", 24*time.Hour),
		PendingMinAge:        getEnvDuration("PENDING_MIN_AGE", 5*time.Minute),
		PixReminderDelay:     getEnvDuration("PIX_REMINDER_DELAY", 15*time.Minute),
		AbandonedCartDelay:   getEnvDuration("ABANDONED_CART_DELAY", 2*time.Hour),
		OutboxDispatchPeriod: getEnvDuration("OUTBOX_DISPATCH_PERIOD", 10*time.Second),

		CommissionPercent: getEnvFloat("COMMISSION_PERCENT", 7.9),
	}
}

// --- Helper functions ---

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
