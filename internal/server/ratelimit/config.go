package ratelimit

import (
	"strings"
	"time"

	"github.com/jonathan/writing-optimizer/internal/config"
)

const envPrefix = "WRITING_OPTIMIZER_RATE_LIMIT_"

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path; a trailing "/" matches as a prefix
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window; 0 means unlimited
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	IdleTimeout     time.Duration
	Allowlist       map[string]bool
	Blocklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// LoadConfig loads rate limiting configuration from WRITING_OPTIMIZER_RATE_LIMIT_*
// environment variables.
func LoadConfig() *Config {
	if !config.EnvBool(envPrefix+"ENABLED", true) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    config.EnvInt(envPrefix+"DEFAULT_LIMIT", 600),
		DefaultWindow:   config.EnvDuration(envPrefix+"DEFAULT_WINDOW", time.Minute),
		CleanupInterval: config.EnvDuration(envPrefix+"CLEANUP_INTERVAL", 5*time.Minute),
		IdleTimeout:     config.EnvDuration(envPrefix+"IDLE_TIMEOUT", time.Hour),
		Allowlist:       parseIPList(config.EnvString(envPrefix+"ALLOWLIST", "")),
		Blocklist:       parseIPList(config.EnvString(envPrefix+"BLOCKLIST", "")),
		EndpointConfigs: DefaultEndpointConfigs(config.EnvInt(envPrefix+"ANALYZE_PER_HOUR", 60)),
	}
}

// DefaultEndpointConfigs returns the endpoint limits. Analysis endpoints each
// cost one language-model call and share analyzePerHour.
func DefaultEndpointConfigs(analyzePerHour int) []EndpointConfig {
	return []EndpointConfig{
		{Path: "/analyze", Method: "POST", Limit: analyzePerHour, Window: time.Hour, Burst: 5},
		{Path: "/analyze/stream", Method: "POST", Limit: analyzePerHour, Window: time.Hour, Burst: 5},

		{Path: "/documents/", Method: "PUT", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/documents/", Method: "GET", Limit: 120, Window: time.Minute, Burst: 20},

		{Path: "/highlight", Method: "POST", Limit: 300, Window: time.Minute, Burst: 30},
	}
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
