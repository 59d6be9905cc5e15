// Package config loads serve-mode settings from the environment
package config

import (
	"os"
	"strconv"
)

// Config carries the settings of the serve command
type Config struct {
	Port           string
	DBPath         string
	RecomputeEvery int
	MinCaptureArea float64
	UnitScale      float64
}

// Load reads the configuration from environment variables, falling back to
// defaults
func Load() *Config {
	return &Config{
		Port:           getEnv("MESHSCAN_PORT", "3000"),
		DBPath:         getEnv("MESHSCAN_DB", "data/meshscan.db"),
		RecomputeEvery: getEnvAsInt("MESHSCAN_RECOMPUTE_EVERY", 4),
		MinCaptureArea: getEnvAsFloat("MESHSCAN_MIN_CAPTURE_AREA", 0.1),
		UnitScale:      getEnvAsFloat("MESHSCAN_UNIT_SCALE", 1.0),
	}
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultVal
}
