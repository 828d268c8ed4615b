package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EngineConfig holds the environment-driven settings of the signal engine.
type EngineConfig struct {
	Environment string
	LogLevel    string
	LogFile     string

	Exchange struct {
		APIKey    string
		APISecret string
		Testnet   bool
		Category  string
		Interval  string
	}

	Indicators struct {
		CacheSize int
	}

	Monitoring struct {
		PrometheusPort int
	}

	Scan struct {
		Interval      time.Duration
		MinConfidence float64
	}
}

// LoadEnv reads an optional .env file before loading the engine config
// from the environment. A missing file is not an error.
func LoadEnv(path string) *EngineConfig {
	if path != "" {
		_ = godotenv.Load(path)
	} else {
		_ = godotenv.Load()
	}
	return Load()
}

// Load builds the engine config from environment variables with defaults.
func Load() *EngineConfig {
	cfg := &EngineConfig{
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFile:     getEnv("LOG_FILE", ""),
	}

	cfg.Exchange.APIKey = getEnv("BYBIT_API_KEY", "")
	cfg.Exchange.APISecret = getEnv("BYBIT_API_SECRET", "")
	cfg.Exchange.Testnet = getEnvBool("BYBIT_TESTNET", true)
	cfg.Exchange.Category = getEnv("BYBIT_CATEGORY", "spot")
	cfg.Exchange.Interval = getEnv("BYBIT_INTERVAL", "60")

	cfg.Indicators.CacheSize = getEnvInt("INDICATOR_CACHE_SIZE", 512)
	cfg.Monitoring.PrometheusPort = getEnvInt("PROMETHEUS_PORT", 8080)

	cfg.Scan.Interval = getEnvDuration("SCAN_INTERVAL", time.Hour)
	cfg.Scan.MinConfidence = getEnvFloat("SCAN_MIN_CONFIDENCE", 0)

	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}
