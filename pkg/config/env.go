package config

import (
	"os"
	"strings"
)

// Environment constants
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// GetEnv returns the value of an environment variable or a default value if not set.
func GetEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

// GetEnvironment returns the normalized SALESDASH_SERVER_ENVIRONMENT, defaulting to development.
func GetEnvironment() string {
	return strings.ToLower(GetEnv("SALESDASH_SERVER_ENVIRONMENT", EnvDevelopment))
}

// IsProduction reports whether the process runs in production.
func IsProduction() bool {
	return GetEnvironment() == EnvProduction
}

// IsProductionLike returns true for staging and production.
// Seed tooling uses it to refuse writing mock data into real databases.
func IsProductionLike() bool {
	env := GetEnvironment()
	return env == EnvStaging || env == EnvProduction
}
