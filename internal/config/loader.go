// Package config loads environment driven configuration for the housing
// service.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for housingd.
type Config struct {
	HTTPPort         int
	SQLiteDSN        string
	SessionTTL       time.Duration
	LogLevel         string
	LogFormat        string
	EnforceTimeSlots bool
	WarningTTL       time.Duration
}

// Load parses configuration values from the current process environment.
//
// Optional fields fall back to sensible defaults; invalid values are
// collected and reported together.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:   8080,
		SQLiteDSN:  "file:housing.db?_pragma=foreign_keys(1)",
		SessionTTL: 24 * time.Hour,
		LogLevel:   "info",
		LogFormat:  "json",
		WarningTTL: 15 * time.Minute,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("HOUSING_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "HOUSING_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("HOUSING_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if ttlValue := strings.TrimSpace(os.Getenv("HOUSING_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "HOUSING_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if level := strings.TrimSpace(os.Getenv("HOUSING_LOG_LEVEL")); level != "" {
		switch strings.ToLower(level) {
		case "debug", "info", "warn", "error":
			cfg.LogLevel = strings.ToLower(level)
		default:
			invalid = append(invalid, "HOUSING_LOG_LEVEL")
		}
	}

	if format := strings.TrimSpace(os.Getenv("HOUSING_LOG_FORMAT")); format != "" {
		switch strings.ToLower(format) {
		case "json", "text":
			cfg.LogFormat = strings.ToLower(format)
		default:
			invalid = append(invalid, "HOUSING_LOG_FORMAT")
		}
	}

	if gate := strings.TrimSpace(os.Getenv("HOUSING_ENFORCE_TIME_SLOTS")); gate != "" {
		enabled, err := strconv.ParseBool(gate)
		if err != nil {
			invalid = append(invalid, "HOUSING_ENFORCE_TIME_SLOTS")
		} else {
			cfg.EnforceTimeSlots = enabled
		}
	}

	if ttlValue := strings.TrimSpace(os.Getenv("HOUSING_WARNING_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "HOUSING_WARNING_TTL")
		} else {
			cfg.WarningTTL = ttl
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
