package config

import (
	"log"
	"os"
	"strconv"
)

// Helper to get a string env with default.
func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// Helper to get an int env with default.
func getEnvAsInt(key string, fallback int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	val, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid int for config %s=%q, using default %d", key, valueStr, fallback)
		return fallback
	}
	return val
}
