package ratelimit

import (
	"strings"
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Path pattern; "*" matches exactly one segment
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Tier 1: calls that fan out to the ML service (strictest limits)
		{Path: "/users/*/resume", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/users/*/training-score", Method: "GET", Limit: 60, Window: time.Hour, Burst: 5},
		{Path: "/attendance/upload", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/opportunities/match", Method: "POST", Limit: 60, Window: time.Hour, Burst: 5},
		{Path: "/insights", Method: "GET", Limit: 10, Window: time.Hour, Burst: 2},

		// Tier 2: write operations (moderate limits)
		{Path: "/users", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/users/*", Method: "PUT", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/users/*/*", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/trainings", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/opportunities", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},

		// Tier 3: read operations - handled by default limit
		// Tier 4: health check (unlimited) - handled by special case in matcher
	}
}

// NewSet builds a lookup set from a list of client IDs.
func NewSet(list []string) map[string]bool {
	result := make(map[string]bool, len(list))
	for _, id := range list {
		id = strings.TrimSpace(id)
		if id != "" {
			result[id] = true
		}
	}
	return result
}
