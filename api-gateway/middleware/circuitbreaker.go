package middleware

import (
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/quintaldo/pos-engine/pkg/logger"
)

// CircuitState is the lifecycle state of a breaker.
type CircuitState string

const (
	StateClosed   CircuitState = "closed"
	StateOpen     CircuitState = "open"
	StateHalfOpen CircuitState = "half-open"
)

const (
	failureThreshold = 5
	openCooldown     = 30 * time.Second
	halfOpenSuccess  = 3
)

// CircuitBreaker trips a gateway surface after consecutive engine failures,
// so a struggling engine recovers instead of drowning in retries. Each
// surface (sales, stock) gets its own breaker: a failing replay report must
// not block checkout.
type CircuitBreaker struct {
	surface   string
	state     CircuitState
	failures  int
	successes int
	changedAt time.Time
	mu        sync.Mutex
}

// NewCircuitBreaker creates a closed breaker for one surface.
func NewCircuitBreaker(surface string) *CircuitBreaker {
	return &CircuitBreaker{
		surface:   surface,
		state:     StateClosed,
		changedAt: time.Now(),
	}
}

// Allow reports whether a request may pass, moving an open breaker to
// half-open once the cooldown elapsed.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen && time.Since(cb.changedAt) > openCooldown {
		cb.state = StateHalfOpen
		cb.successes = 0
		cb.changedAt = time.Now()
		logger.Logger.Info().Str("surface", cb.surface).Msg("Circuit half-open, probing engine")
	}

	return cb.state != StateOpen
}

// Record feeds a request outcome into the breaker.
func (cb *CircuitBreaker) Record(failed bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if failed {
		cb.failures++
		switch {
		case cb.state == StateHalfOpen:
			cb.trip("probe failed")
		case cb.failures >= failureThreshold:
			cb.trip(fmt.Sprintf("%d consecutive failures", cb.failures))
		}
		return
	}

	switch cb.state {
	case StateHalfOpen:
		cb.successes++
		if cb.successes >= halfOpenSuccess {
			cb.state = StateClosed
			cb.failures = 0
			cb.changedAt = time.Now()
			logger.Logger.Info().Str("surface", cb.surface).Msg("Circuit closed, engine recovered")
		}
	case StateClosed:
		cb.failures = 0
	}
}

func (cb *CircuitBreaker) trip(reason string) {
	cb.state = StateOpen
	cb.changedAt = time.Now()
	logger.Logger.Error().
		Str("surface", cb.surface).
		Str("reason", reason).
		Dur("cooldown", openCooldown).
		Msg("Circuit opened")
}

// State returns the current state.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// CircuitBreakerManager holds one breaker per gateway surface.
type CircuitBreakerManager struct {
	breakers map[string]*CircuitBreaker
	mu       sync.Mutex
}

// NewCircuitBreakerManager creates an empty manager; breakers are created
// lazily per surface.
func NewCircuitBreakerManager() *CircuitBreakerManager {
	return &CircuitBreakerManager{breakers: make(map[string]*CircuitBreaker)}
}

// GetOrCreate returns the breaker for a surface.
func (m *CircuitBreakerManager) GetOrCreate(surface string) *CircuitBreaker {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cb, ok := m.breakers[surface]; ok {
		return cb
	}
	cb := NewCircuitBreaker(surface)
	m.breakers[surface] = cb
	return cb
}

// CircuitBreakerMiddleware short-circuits requests to a surface whose
// breaker is open and feeds every response's outcome back into it.
func CircuitBreakerMiddleware(manager *CircuitBreakerManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		surface := routeClass(c.Path())
		if surface != "sales" && surface != "stock" {
			return c.Next()
		}

		cb := manager.GetOrCreate(surface)
		if !cb.Allow() {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error":       "Engine temporarily unavailable",
				"surface":     surface,
				"retry_after": int(openCooldown.Seconds()),
			})
		}

		err := c.Next()
		cb.Record(err != nil || c.Response().StatusCode() >= 500)
		return err
	}
}
