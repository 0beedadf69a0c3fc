package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds the non-database application settings.
type Config struct {
	Port string

	// Auth
	JWTSecret  string
	SessionTTL time.Duration

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Kafka (optional; empty broker disables billing events)
	KafkaBroker string

	// AWS S3 receipt archive (optional; empty bucket disables archiving)
	AWSRegion string
	S3Bucket  string

	// Billing scheduler
	SchedulerEnabled bool
	BillingCronSpec  string

	DashboardCacheTTL time.Duration
}

// Load reads .env (when present) and builds the application configuration.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, using environment variables")
	}

	return &Config{
		Port:              getEnv("PORT", "8080"),
		JWTSecret:         getEnv("JWT_SECRET", "dev-secret-change-me"),
		SessionTTL:        getEnvDuration("SESSION_TTL", 24*time.Hour),
		RedisAddr:         getEnv("REDIS_HOST", "localhost") + ":" + getEnv("REDIS_PORT", "6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		KafkaBroker:       getEnv("KAFKA_BROKER", ""),
		AWSRegion:         getEnv("AWS_REGION", "eu-west-3"),
		S3Bucket:          getEnv("RECEIPT_S3_BUCKET", ""),
		SchedulerEnabled:  getEnvBool("BILLING_SCHEDULER_ENABLED", true),
		BillingCronSpec:   getEnv("BILLING_CRON_SPEC", "0 12 28-31 * *"),
		DashboardCacheTTL: getEnvDuration("DASHBOARD_CACHE_TTL", time.Minute),
	}
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
