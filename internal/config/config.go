package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings for the sentinel process.
type Config struct {
	Port int

	// FinnhubAPIKey is the shared token for the generic quote provider.
	// Without it, quote-only portfolios get no price data.
	FinnhubAPIKey string

	// RiskAPIKey authenticates risk-recalculation signals. When empty the
	// entire risk-signal capability is disabled; the stop-loss sweep keeps
	// running.
	RiskAPIKey string
	RiskAPIURL string

	AllowedOrigins []string

	LogLevel      string
	MaxLogSizeMB  int64
	MaxLogBackups int

	StopSweepInterval       time.Duration
	RiskSweepInterval       time.Duration
	VolatilitySweepInterval time.Duration

	Version string
}

// DefaultRiskAPIURL is the risk-recalculation endpoint used unless
// RISK_API_URL overrides it.
const DefaultRiskAPIURL = "https://riskwise-app.base44.com/api/recalculate-risk"

// Load initializes the configuration.
// It tries to read a .env file and falls back to the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found, using system environment variables")
	}

	cfg := &Config{
		Port:           getEnvAsInt("PORT", 3000),
		FinnhubAPIKey:  getEnv("FINNHUB_API_KEY", ""),
		RiskAPIKey:     getEnv("RISK_API_KEY", ""),
		RiskAPIURL:     getEnv("RISK_API_URL", DefaultRiskAPIURL),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "")),
		LogLevel:       getEnv("SENTINEL_LOG_LEVEL", "info"),
		MaxLogSizeMB:   int64(getEnvAsInt("MAX_LOG_SIZE_MB", 10)),
		MaxLogBackups:  getEnvAsInt("MAX_LOG_BACKUPS", 3),

		StopSweepInterval:       time.Duration(getEnvAsInt("STOP_SWEEP_SECONDS", 60)) * time.Second,
		RiskSweepInterval:       time.Duration(getEnvAsInt("RISK_SWEEP_MINUTES", 30)) * time.Minute,
		VolatilitySweepInterval: time.Duration(getEnvAsInt("VOLATILITY_SWEEP_MINUTES", 15)) * time.Minute,
	}

	if cfg.FinnhubAPIKey == "" {
		log.Println("Warning: FINNHUB_API_KEY not set; portfolios without brokerage credentials will not be priced")
	}
	if cfg.RiskAPIKey == "" {
		log.Println("Warning: RISK_API_KEY not set; risk-recalculation signals are disabled")
	}

	return cfg
}

// RiskSignalsEnabled reports whether the risk sweeps should run at all.
func (c *Config) RiskSignalsEnabled() bool {
	return c.RiskAPIKey != ""
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
