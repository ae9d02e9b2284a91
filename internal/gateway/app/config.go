package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port                int           // HTTP server port (default: 8080)
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)

	DatabaseFile string // Path to SQLite database file (default: ./gateway.db)
	PublicURL    string // Base URL banks redirect browsers back to (default: http://localhost:PORT)
	CatalogFile  string // Optional: YAML catalog imported at startup

	CorrelationTTL       time.Duration // Lifetime of a redirect correlation (default: 10m)
	SessionTTL           time.Duration // Lifetime of a login session (default: 12h)
	HousekeepingInterval time.Duration // Sweep interval (default: 1m)
	BankTimeout          time.Duration // Per-request bank timeout (default: 30s)
	StatusConcurrency    int           // Parallel bank status queries per list (default: 4)

	DefaultCurrency        string   // Currency when a payment names none (default: EUR)
	PaymentProduct         string   // Payment product path segment (default: sepa-credit-transfers)
	AllowedRedirectOrigins []string // Origins allowed in absolute ok/nok URLs

	SigningKeyFile string // Optional: sealed EdDSA key file, ephemeral when unset
	MasterKeyPath  string // Optional: master key file, falls back to GATEWAY_MASTER_KEY
	PepperFile     string // Path to password pepper file (default: ./pepper)
	Issuer         string // Token issuer (default: bankgate)

	BootstrapUser     string // Optional: user created on first start
	BootstrapPassword string

	Sandbox           bool   // Mount the sandbox bank under /sandbox/
	SandboxTOTPSecret string // Optional: fixed TAN secret for the sandbox
}

// MasterKeyEnv holds the master key material when no key file is configured.
const MasterKeyEnv = "GATEWAY_MASTER_KEY"

func LoadConfig() Config {
	port := getEnvIntOrDefault("PORT", 8080)

	cfg := Config{
		Port:                port,
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),

		DatabaseFile: getEnvOrDefault("GATEWAY_DATABASE_FILE", "gateway.db"),
		PublicURL:    getEnvOrDefault("GATEWAY_PUBLIC_URL", "http://localhost:"+strconv.Itoa(port)),
		CatalogFile:  os.Getenv("GATEWAY_CATALOG_FILE"),

		CorrelationTTL:       getEnvDurationOrDefault("GATEWAY_CORRELATION_TTL", 10*time.Minute),
		SessionTTL:           getEnvDurationOrDefault("GATEWAY_SESSION_TTL", 12*time.Hour),
		HousekeepingInterval: getEnvDurationOrDefault("GATEWAY_HOUSEKEEPING_INTERVAL", time.Minute),
		BankTimeout:          getEnvDurationOrDefault("GATEWAY_BANK_TIMEOUT", 30*time.Second),
		StatusConcurrency:    getEnvIntOrDefault("GATEWAY_STATUS_CONCURRENCY", 4),

		DefaultCurrency:        getEnvOrDefault("GATEWAY_DEFAULT_CURRENCY", "EUR"),
		PaymentProduct:         getEnvOrDefault("GATEWAY_PAYMENT_PRODUCT", "sepa-credit-transfers"),
		AllowedRedirectOrigins: getEnvListOrDefault("GATEWAY_ALLOWED_REDIRECT_ORIGINS", nil),

		SigningKeyFile: os.Getenv("GATEWAY_SIGNING_KEY_FILE"),
		MasterKeyPath:  os.Getenv("GATEWAY_MASTER_KEY_PATH"),
		PepperFile:     getEnvOrDefault("GATEWAY_PEPPER_FILE", "pepper"),
		Issuer:         getEnvOrDefault("GATEWAY_ISSUER", "bankgate"),

		BootstrapUser:     os.Getenv("GATEWAY_BOOTSTRAP_USER"),
		BootstrapPassword: os.Getenv("GATEWAY_BOOTSTRAP_PASSWORD"),

		Sandbox:           getEnvBoolOrDefault("GATEWAY_SANDBOX", false),
		SandboxTOTPSecret: os.Getenv("GATEWAY_SANDBOX_TOTP_SECRET"),
	}

	cfg.PublicURL = strings.TrimSuffix(cfg.PublicURL, "/")
	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

// getEnvListOrDefault splits a comma separated value, dropping blanks.
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
