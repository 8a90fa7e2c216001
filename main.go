package main

import (
	"context"
	"log"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	"github.com/loveroseeeeeeeeee/projetogym5/config"
	"github.com/loveroseeeeeeeeee/projetogym5/modules/activity"
	"github.com/loveroseeeeeeeeee/projetogym5/modules/api"
	"github.com/loveroseeeeeeeeee/projetogym5/modules/auth"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== Nexon Fitness - Auth API ===")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}
	logger := app.Logger()

	// Order: independent modules first, then modules with dependencies
	// - activity: Event consumer (subscribes to auth events)
	// - auth: Credential store, hashing, tokens (emits events)
	// - api: Fiber HTTP server (depends on auth and activity)
	app.Register(activity.NewModule(activity.DefaultCapacity, logger.WithModule("activity")))
	app.Register(auth.NewModule(cfg, logger.WithModule("auth")))
	app.Register(api.NewModule(cfg, logger.WithModule("api")))

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(cfg)

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(cfg config.Config) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Printf("  - Environment: %s", cfg.Env)
	log.Printf("  - Database: %s", cfg.Database.Driver)
	if cfg.Cache.RedisAddr != "" {
		log.Printf("  - User cache: redis://%s", cfg.Cache.RedisAddr)
	}
	log.Println("")
	log.Printf("REST API Endpoints (%s):", cfg.Server.Addr)
	log.Println("  POST   /api/auth/register        - Create an account")
	log.Println("  POST   /api/auth/login           - Sign in")
	log.Println("  GET    /api/auth/profile         - Current profile (auth)")
	log.Println("  PUT    /api/auth/profile         - Update profile (auth)")
	log.Println("  PUT    /api/auth/change-password - Change password (auth)")
	log.Println("  POST   /api/auth/logout          - Sign out (auth)")
	log.Println("  POST   /api/workouts             - Record a workout (auth)")
	log.Println("  GET    /api/admin/users          - List users (admin)")
	log.Println("  GET    /api/admin/activity       - Recent account events (admin)")
	log.Println("  GET    /api/health               - Health check")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
