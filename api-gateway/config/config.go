package config

import (
	"os"
	"strings"
	"time"
)

// ServiceConfig holds configuration for a backend service
type ServiceConfig struct {
	Name        string
	BaseURL     string
	Instances   []string
	Timeout     time.Duration
	HealthCheck string
}

// GatewayConfig holds the main gateway configuration
type GatewayConfig struct {
	Port     string
	Services map[string]ServiceConfig
}

// LoadConfig loads the gateway configuration
func LoadConfig() *GatewayConfig {
	engineURL := getEnv("ENGINE_SERVICE_URL", "http://localhost:8080")

	return &GatewayConfig{
		Port: getEnv("GATEWAY_PORT", "8000"),
		Services: map[string]ServiceConfig{
			"engine": {
				Name:        "pos-engine",
				BaseURL:     engineURL,
				Instances:   instances("ENGINE_SERVICE_INSTANCES", engineURL),
				Timeout:     30 * time.Second,
				HealthCheck: "/health",
			},
		},
	}
}

// instances reads a comma-separated instance list, falling back to the single
// base URL.
func instances(key, fallback string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return []string{fallback}
	}

	var servers []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			servers = append(servers, s)
		}
	}
	if len(servers) == 0 {
		return []string{fallback}
	}
	return servers
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
