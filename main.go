package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"

	"github.com/example/task-service/modules/api"
	"github.com/example/task-service/modules/audit"
	"github.com/example/task-service/modules/store"
	taskmod "github.com/example/task-service/modules/task"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration from environment
	httpPort := getEnvInt("HTTP_PORT", 3000)
	apiKey := getEnv("API_KEY", "")
	storeBackend := getEnv("STORE_BACKEND", store.BackendRedis)
	redisAddr := getEnv("REDIS_ADDR", "localhost:6379")
	redisPassword := getEnv("REDIS_PASSWORD", "")
	redisDB := getEnvInt("REDIS_DB", 0)
	sqlitePath := getEnv("SQLITE_PATH", "./tasks.db")
	rateLimit := getEnvInt("RATE_LIMIT", 60)
	rateWindow := getEnvDuration("RATE_WINDOW", time.Minute)

	log.Println("=== Task Service ===")
	log.Printf("HTTP Port: %d", httpPort)
	log.Printf("Store Backend: %s", storeBackend)
	log.Printf("Rate Limit: %d per %s", rateLimit, rateWindow)
	if apiKey == "" {
		log.Println("Warning: API_KEY is not set, all authenticated requests will fail")
	}

	storeConfig := store.DefaultConfig()
	storeConfig.Backend = storeBackend
	storeConfig.RedisAddr = redisAddr
	storeConfig.RedisPassword = redisPassword
	storeConfig.RedisDB = redisDB
	storeConfig.SQLitePath = sqlitePath

	storeModule := store.NewModule(storeConfig)
	auditModule := audit.NewModule()
	taskModule := taskmod.NewModule()
	apiModule := api.NewModule(api.Config{
		Port:       httpPort,
		APIKey:     apiKey,
		RateLimit:  rateLimit,
		RateWindow: rateWindow,
	})

	taskModule.SetStoreProvider(storeModule.Store)
	apiModule.SetTaskService(taskModule)

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Order: the store must start before the task module resolves it.
	app.Register(storeModule)
	app.Register(auditModule)
	app.Register(taskModule)
	app.Register(apiModule)

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(httpPort)

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

func printStartupInfo(port int) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%d):", port)
	log.Println("  POST   /tasks              - Create a task")
	log.Println("  GET    /tasks              - List tasks (filters + pagination)")
	log.Println("  GET    /tasks/stats        - Aggregate statistics")
	log.Println("  GET    /tasks/:id          - Get a task")
	log.Println("  PUT    /tasks/:id          - Update a task")
	log.Println("  DELETE /tasks/:id          - Delete a task")
	log.Println("  POST   /tasks/:id/archive  - Archive a task")
	log.Println("  POST   /tasks/:id/restore  - Restore an archived task")
	log.Println("  POST   /tasks/batch-status - Batch status update")
	log.Println("  GET    /health             - Health check (no auth)")
	log.Println("")
	log.Println("All /tasks routes require the x-api-key header")
	log.Println("Press Ctrl+C to shutdown gracefully")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
