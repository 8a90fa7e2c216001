package api

import (
	"context"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/loveroseeeeeeeeee/projetogym5/config"
	domain "github.com/loveroseeeeeeeeee/projetogym5/domain/user"
	"github.com/loveroseeeeeeeeee/projetogym5/modules/activity"
	"github.com/loveroseeeeeeeeee/projetogym5/modules/auth"
)

// APIModule is the HTTP API module.
type APIModule struct {
	cfg          config.Config
	app          *fiber.App
	authPort     auth.AuthPort
	activityPort activity.Port
	logger       types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*APIModule)(nil)
	_ mono.DependentModule       = (*APIModule)(nil)
	_ mono.HealthCheckableModule = (*APIModule)(nil)
)

// NewModule creates a new APIModule.
func NewModule(cfg config.Config, logger types.Logger) *APIModule {
	return &APIModule{
		cfg:    cfg,
		logger: logger,
	}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"auth", "activity"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "auth":
		m.authPort = auth.NewAuthAdapter(container)
	case "activity":
		m.activityPort = activity.NewAdapter(container)
	}
}

// Start initializes the Fiber HTTP server.
func (m *APIModule) Start(_ context.Context) error {
	if m.authPort == nil {
		return fmt.Errorf("auth dependency not set")
	}

	m.app = NewApp(m.cfg, m.logger, m.authPort, m.activityPort)

	go func() {
		if err := m.app.Listen(m.cfg.Server.Addr); err != nil {
			m.logger.Error("HTTP server error", "error", err)
		}
	}()

	m.logger.Info("HTTP server started", "addr", m.cfg.Server.Addr, "env", m.cfg.Env)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	m.logger.Info("Shutting down HTTP server")
	return m.app.Shutdown()
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"addr": m.cfg.Server.Addr,
		},
	}
}

// NewApp builds the Fiber application with every route wired to authPort.
// activityPort may be nil.
func NewApp(cfg config.Config, log types.Logger, authPort auth.AuthPort, activityPort activity.Port) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          NewErrorHandler(log, cfg.IsDevelopment()),
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	setupRoutes(app, NewHandlers(authPort, activityPort, cfg.Env), authPort)
	return app
}

// setupRoutes configures all API routes.
func setupRoutes(app *fiber.App, h *Handlers, gate auth.GatePort) {
	requireAuth := AuthMiddleware(gate)

	app.Get("/", OptionalAuth(gate), h.Index)

	api := app.Group("/api")
	api.Get("/health", h.Health)

	// Public auth routes
	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", h.Register)
	authRoutes.Post("/login", h.Login)

	// Protected auth routes
	authRoutes.Get("/profile", requireAuth, h.Profile)
	authRoutes.Put("/profile", requireAuth, h.UpdateProfile)
	authRoutes.Put("/change-password", requireAuth, h.ChangePassword)
	authRoutes.Post("/logout", requireAuth, h.Logout)

	api.Post("/workouts", requireAuth, h.RecordWorkout)

	admin := api.Group("/admin", requireAuth, Authorize(domain.RoleAdmin))
	admin.Get("/users", h.ListUsers)
	admin.Get("/activity", h.Activity)

	app.Use(h.NotFound)
}
