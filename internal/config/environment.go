package config

import (
	"os"
	"strings"
)

// Environment represents the current environment
type Environment string

const (
	Development Environment = "development"
	Testing     Environment = "testing"
	Production  Environment = "production"
)

// GetEnvironment reads SHIFTPAY_ENV, defaulting to production for unknown values
func GetEnvironment() Environment {
	switch Environment(strings.ToLower(strings.TrimSpace(os.Getenv(EnvPrefix + "_ENV")))) {
	case Development:
		return Development
	case Testing:
		return Testing
	default:
		return Production
	}
}
