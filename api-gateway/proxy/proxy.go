package proxy

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/quintaldo/pos-engine/api-gateway/config"
	"github.com/quintaldo/pos-engine/api-gateway/loadbalancer"
	"github.com/quintaldo/pos-engine/pkg/logger"
)

const (
	maxAttempts  = 3
	retryBackoff = 150 * time.Millisecond
)

// hop-by-hop headers must not be forwarded to the engine or back.
var hopHeaders = map[string]bool{
	"connection":        true,
	"keep-alive":        true,
	"transfer-encoding": true,
	"upgrade":           true,
	"content-length":    true,
}

// ReverseProxy forwards gateway requests to the sale/stock engine,
// rotating across instances and retrying idempotent reads on connect
// failure.
type ReverseProxy struct {
	pools  map[string]*loadbalancer.RoundRobin
	client *http.Client
}

// NewReverseProxy builds one instance pool per configured backend service.
// The shared client's timeout is the longest any backend asks for.
func NewReverseProxy(cfg *config.GatewayConfig) *ReverseProxy {
	pools := make(map[string]*loadbalancer.RoundRobin, len(cfg.Services))
	timeout := 30 * time.Second
	for name, svc := range cfg.Services {
		pools[name] = loadbalancer.NewRoundRobin(svc.Instances)
		if svc.Timeout > timeout {
			timeout = svc.Timeout
		}
	}

	return &ReverseProxy{
		pools:  pools,
		client: &http.Client{Timeout: timeout},
	}
}

// ProxyRequest forwards the request to an instance of the named service.
// GET requests that fail to reach an instance are retried against the next
// one with a short backoff; mutations are never retried, the engine's sale
// and stock writes must not be replayed.
func (p *ReverseProxy) ProxyRequest(c *fiber.Ctx, serviceName string) error {
	pool, ok := p.pools[serviceName]
	if !ok {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Unknown backend service: " + serviceName,
		})
	}

	attempts := 1
	if c.Method() == fiber.MethodGet || c.Method() == fiber.MethodHead {
		attempts = maxAttempts
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			time.Sleep(retryBackoff << uint(attempt-1))
		}

		instance := pool.Next()
		if instance == "" {
			break
		}

		resp, err := p.forward(c, instance)
		if err != nil {
			lastErr = err
			logger.Logger.Warn().
				Err(err).
				Str("service", serviceName).
				Str("instance", instance).
				Int("attempt", attempt+1).
				Msg("Engine instance unreachable")
			continue
		}

		return p.writeResponse(c, resp)
	}

	status := fiber.StatusBadGateway
	body := fiber.Map{"error": "Engine unavailable", "service": serviceName}
	if lastErr != nil {
		body["details"] = lastErr.Error()
	}
	return c.Status(status).JSON(body)
}

// forward sends one request to one engine instance.
func (p *ReverseProxy) forward(c *fiber.Ctx, instance string) (*http.Response, error) {
	target := instance + string(c.Request().URI().Path())
	if qs := string(c.Request().URI().QueryString()); qs != "" {
		target += "?" + qs
	}

	req, err := http.NewRequestWithContext(c.UserContext(), c.Method(), target, bytes.NewReader(c.Body()))
	if err != nil {
		return nil, err
	}

	c.Request().Header.VisitAll(func(key, value []byte) {
		k := string(key)
		lower := strings.ToLower(k)
		if lower == "host" || hopHeaders[lower] {
			return
		}
		req.Header.Set(k, string(value))
	})

	// The engine trusts these for client identity behind the gateway.
	req.Header.Set("X-Forwarded-For", c.IP())
	req.Header.Set("X-Forwarded-Proto", c.Protocol())
	req.Header.Set("X-Forwarded-Host", c.Hostname())

	return p.client.Do(req)
}

// writeResponse copies the engine response back to the client.
func (p *ReverseProxy) writeResponse(c *fiber.Ctx, resp *http.Response) error {
	defer resp.Body.Close()

	for key, values := range resp.Header {
		if hopHeaders[strings.ToLower(key)] {
			continue
		}
		for _, value := range values {
			c.Set(key, value)
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Failed to read engine response",
		})
	}

	return c.Status(resp.StatusCode).Send(body)
}
