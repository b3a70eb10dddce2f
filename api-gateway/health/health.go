package health

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/quintaldo/pos-engine/api-gateway/config"
	"github.com/quintaldo/pos-engine/pkg/logger"
)

// InstanceHealth is the probe result for one engine instance.
type InstanceHealth struct {
	URL       string        `json:"url"`
	Status    string        `json:"status"`
	Latency   time.Duration `json:"latency_ms"`
	Error     string        `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// ServiceHealth aggregates the instance probes of one backend service.
type ServiceHealth struct {
	Name      string           `json:"name"`
	Status    string           `json:"status"`
	Instances []InstanceHealth `json:"instances"`
}

// GatewayHealth is the readiness view the gateway exposes.
type GatewayHealth struct {
	Gateway  string                   `json:"gateway"`
	Status   string                   `json:"status"`
	Services map[string]ServiceHealth `json:"services"`
	Uptime   time.Duration            `json:"uptime_seconds"`
}

// HealthChecker probes every engine instance on its /health endpoint. A
// service is healthy while at least one instance answers; it degrades, not
// fails, when part of the pool is down, because the proxy skips dead
// instances on reads.
type HealthChecker struct {
	config    *config.GatewayConfig
	client    *http.Client
	startTime time.Time
}

// NewHealthChecker creates a checker over the configured services.
func NewHealthChecker(cfg *config.GatewayConfig) *HealthChecker {
	return &HealthChecker{
		config:    cfg,
		client:    &http.Client{Timeout: 5 * time.Second},
		startTime: time.Now(),
	}
}

// probeInstance hits one instance's health endpoint and records the result.
func (h *HealthChecker) probeInstance(ctx context.Context, baseURL, healthPath string) InstanceHealth {
	start := time.Now()
	result := InstanceHealth{URL: baseURL, Timestamp: start}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+healthPath, nil)
	if err != nil {
		result.Status = "unhealthy"
		result.Error = err.Error()
		result.Latency = time.Since(start)
		return result
	}

	resp, err := h.client.Do(req)
	if err != nil {
		result.Status = "unhealthy"
		result.Error = err.Error()
		result.Latency = time.Since(start)
		return result
	}
	defer resp.Body.Close()

	result.Latency = time.Since(start)
	if resp.StatusCode == http.StatusOK {
		result.Status = "healthy"
	} else {
		result.Status = "unhealthy"
		result.Error = fmt.Sprintf("status %d", resp.StatusCode)
	}
	return result
}

// CheckService probes all instances of one service concurrently.
func (h *HealthChecker) CheckService(ctx context.Context, name string, svc config.ServiceConfig) ServiceHealth {
	instances := svc.Instances
	if len(instances) == 0 {
		instances = []string{svc.BaseURL}
	}

	results := make([]InstanceHealth, len(instances))
	var wg sync.WaitGroup
	for i, url := range instances {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			results[i] = h.probeInstance(ctx, url, svc.HealthCheck)
		}(i, url)
	}
	wg.Wait()

	healthy := 0
	for _, r := range results {
		if r.Status == "healthy" {
			healthy++
		} else {
			logger.Logger.Warn().
				Str("service", name).
				Str("instance", r.URL).
				Str("error", r.Error).
				Msg("Engine instance failed health probe")
		}
	}

	status := "unhealthy"
	switch {
	case healthy == len(results):
		status = "healthy"
	case healthy > 0:
		status = "degraded"
	}

	return ServiceHealth{Name: name, Status: status, Instances: results}
}

// CheckAllServices probes every backend and folds the results into the
// gateway's readiness status.
func (h *HealthChecker) CheckAllServices(ctx context.Context) GatewayHealth {
	services := make(map[string]ServiceHealth, len(h.config.Services))
	var wg sync.WaitGroup
	var mu sync.Mutex

	for name, svc := range h.config.Services {
		wg.Add(1)
		go func(n string, s config.ServiceConfig) {
			defer wg.Done()
			result := h.CheckService(ctx, n, s)
			mu.Lock()
			services[n] = result
			mu.Unlock()
		}(name, svc)
	}
	wg.Wait()

	status := "healthy"
	for _, svc := range services {
		switch svc.Status {
		case "unhealthy":
			status = "unhealthy"
		case "degraded":
			if status == "healthy" {
				status = "degraded"
			}
		}
	}

	return GatewayHealth{
		Gateway:  "pos-gateway",
		Status:   status,
		Services: services,
		Uptime:   time.Since(h.startTime),
	}
}

// QuickCheck reports the gateway's own liveness without probing the engine.
func (h *HealthChecker) QuickCheck() map[string]interface{} {
	return map[string]interface{}{
		"status":    "healthy",
		"gateway":   "pos-gateway",
		"uptime":    time.Since(h.startTime).Seconds(),
		"timestamp": time.Now(),
	}
}
