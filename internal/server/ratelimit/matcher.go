package ratelimit

import (
	"strings"
)

// MatchEndpoint matches a request path and method to an endpoint configuration.
// Returns the matching EndpointConfig or nil if no match is found.
// Literal patterns win over wildcard patterns; among wildcard patterns the
// first one in configs wins.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	// Special case: health check endpoint is unlimited
	if path == "/health" && method == "GET" {
		return &EndpointConfig{Path: "/health", Method: method}
	}

	path = strings.TrimSuffix(path, "/")

	for i := range configs {
		config := &configs[i]
		if config.Method == method && config.Path == path {
			return config
		}
	}

	segments := splitPath(path)
	for i := range configs {
		config := &configs[i]
		if config.Method == method && matchSegments(splitPath(config.Path), segments) {
			return config
		}
	}

	return nil
}

func splitPath(path string) []string {
	return strings.Split(strings.Trim(path, "/"), "/")
}

func matchSegments(pattern, segments []string) bool {
	if len(pattern) != len(segments) {
		return false
	}
	for i, p := range pattern {
		if p != "*" && p != segments[i] {
			return false
		}
	}
	return true
}
