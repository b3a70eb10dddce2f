package routes

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/quintaldo/pos-engine/api-gateway/config"
	"github.com/quintaldo/pos-engine/api-gateway/health"
	"github.com/quintaldo/pos-engine/api-gateway/middleware"
	"github.com/quintaldo/pos-engine/api-gateway/proxy"
)

// RouteDefinition defines a route mapping
type RouteDefinition struct {
	Prefix         string
	ServiceName    string
	Description    string
	RequireAuth    bool // Requires authentication
	RequireManager bool // Requires a privileged role
}

// Routes holds all route definitions
var Routes = []RouteDefinition{
	// Sale aggregate routes (items, payments, cancellation)
	{
		Prefix:      "/api/sales",
		ServiceName: "engine",
		Description: "Sale transactions (items, payments, cancellation)",
		RequireAuth: true,
	},

	// Stock ledger routes (movements need manager role downstream)
	{
		Prefix:      "/api/stock",
		ServiceName: "engine",
		Description: "Stock ledger (movements, low stock, replay)",
		RequireAuth: true,
	},
}

// SetupRoutes configures all routes in the gateway
func SetupRoutes(app *fiber.App, cfg *config.GatewayConfig) {
	// Create reverse proxy
	reverseProxy := proxy.NewReverseProxy(cfg)

	// Create health checker
	healthChecker := health.NewHealthChecker(cfg)

	// Gateway quick health check (no downstream checks)
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(healthChecker.QuickCheck())
	})

	// Liveness probe (for Kubernetes)
	app.Get("/health/live", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "alive",
		})
	})

	// Readiness probe (checks downstream services)
	app.Get("/health/ready", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		healthStatus := healthChecker.CheckAllServices(ctx)
		
		statusCode := fiber.StatusOK
		if healthStatus.Status == "unhealthy" {
			statusCode = fiber.StatusServiceUnavailable
		}

		return c.Status(statusCode).JSON(healthStatus)
	})

	// Detailed service health checks
	app.Get("/health/services", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
		defer cancel()

		healthStatus := healthChecker.CheckAllServices(ctx)
		return c.JSON(healthStatus)
	})

	// API routes overview
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "POS Gateway",
			"version": "1.0.0",
			"routes":  Routes,
		})
	})

	// Register all service routes
	for _, route := range Routes {
		registerServiceRoutes(app, route, reverseProxy)
	}
}

// registerServiceRoutes registers all HTTP methods for a service prefix
func registerServiceRoutes(app *fiber.App, route RouteDefinition, proxyHandler *proxy.ReverseProxy) {
	// Create handler function
	handler := func(c *fiber.Ctx) error {
		return proxyHandler.ProxyRequest(c, route.ServiceName)
	}

	// Apply middleware based on route requirements
	var middlewares []fiber.Handler
	
	if route.RequireManager {
		// Manager routes need both auth and role check
		middlewares = append(middlewares, middleware.AuthMiddleware(), middleware.ManagerMiddleware())
	} else if route.RequireAuth {
		// Auth required routes
		middlewares = append(middlewares, middleware.AuthMiddleware())
	}
	// Public routes have no middleware

	// Create a route group for this service
	group := app.Group(route.Prefix, middlewares...)

	// Handle all HTTP methods with wildcard path
	group.All("/*", handler)

	// Also handle the exact prefix path (without /*)
	if len(middlewares) > 0 {
		app.All(route.Prefix, append(middlewares, handler)...)
	} else {
		app.All(route.Prefix, handler)
	}
}

