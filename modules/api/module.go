// Package api is the driving adapter exposing the task service over HTTP.
package api

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/task-service/middleware/ratelimit"
	taskmod "github.com/example/task-service/modules/task"
)

// Config holds API module configuration.
type Config struct {
	// Port is the HTTP listen port.
	Port int

	// APIKey is the static secret every non-health request must present.
	APIKey string

	// RateLimit is the per-client request budget per RateWindow.
	RateLimit int

	// RateWindow is the sliding window for rate limiting.
	RateWindow time.Duration
}

// Module is the HTTP driving adapter.
type Module struct {
	config Config
	apiKey string
	app    *fiber.App
	tasks  taskmod.TaskPort
}

var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates the API module.
func NewModule(config Config) *Module {
	return &Module{
		config: config,
		apiKey: config.APIKey,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "api"
}

// SetTaskService wires the core domain port.
func (m *Module) SetTaskService(port taskmod.TaskPort) {
	m.tasks = port
}

// Start initializes the Fiber HTTP server.
func (m *Module) Start(_ context.Context) error {
	if m.tasks == nil {
		return fmt.Errorf("task service dependency not set")
	}

	m.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler,
	})
	m.app.Use(recover.New())

	m.setupRoutes(ratelimit.New(
		ratelimit.WithLimit(m.config.RateLimit, m.config.RateWindow),
		ratelimit.WithKeyHeader(APIKeyHeader),
	))

	go func() {
		if err := m.app.Listen(fmt.Sprintf(":%d", m.config.Port)); err != nil {
			log.Printf("[api] HTTP server error: %v", err)
		}
	}()

	log.Printf("[api] HTTP server started on :%d", m.config.Port)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *Module) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[api] Shutting down HTTP server...")
	return m.app.Shutdown()
}

// Health returns the health status of the module.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port": m.config.Port,
		},
	}
}

// customErrorHandler converts unhandled Fiber errors into the shared error
// shape.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}
