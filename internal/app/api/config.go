package api

import (
	"os"
	"strings"

	"go.temporal.io/sdk/client"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port                  string
	PostgresDSN           string
	TemporalAddress       string
	TemporalNamespace     string
	TemporalDisabled      bool
	OrderTotalsValidation bool
	BlockchainBaseURL     string
	NOWPaymentsIPNURL     string
}

// LoadConfig reads environment variables and applies defaults.
func LoadConfig() Config {
	return Config{
		Port:                  envDefault("PORT", "8080"),
		PostgresDSN:           strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		TemporalAddress:       envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace:     envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:      isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		OrderTotalsValidation: isTruthy(os.Getenv("ORDER_TOTALS_VALIDATION")),
		BlockchainBaseURL:     strings.TrimSpace(os.Getenv("BLOCKCHAIN_BASE_URL")),
		NOWPaymentsIPNURL:     strings.TrimSpace(os.Getenv("NOWPAYMENTS_IPN_URL")),
	}
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
