package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-monolith/mono"
	"github.com/redis/go-redis/v9"
)

// Backend names for Config.Backend.
const (
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config holds store module configuration.
type Config struct {
	// Backend selects the TaskStore implementation: redis, sqlite or memory.
	Backend string

	// RedisAddr is the Redis server address (e.g., "localhost:6379").
	RedisAddr string

	// RedisPassword is the Redis authentication password (optional).
	RedisPassword string

	// RedisDB is the Redis database number (default: 0).
	RedisDB int

	// KeyPrefix is the prefix for all Redis keys (default: "taskstore:").
	KeyPrefix string

	// SQLitePath is the database file used by the sqlite backend.
	SQLitePath string
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Backend:    BackendRedis,
		RedisAddr:  "localhost:6379",
		RedisDB:    0,
		KeyPrefix:  "taskstore:",
		SQLitePath: "./tasks.db",
	}
}

// Module owns the lifecycle of the selected storage backend and exposes the
// TaskStore port to the task module.
type Module struct {
	config Config
	client *redis.Client
	store  TaskStore
}

var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates the store module for the given configuration.
func NewModule(config Config) *Module {
	return &Module{config: config}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "store"
}

// Start connects the configured backend.
func (m *Module) Start(ctx context.Context) error {
	switch m.config.Backend {
	case BackendRedis:
		m.client = redis.NewClient(&redis.Options{
			Addr:         m.config.RedisAddr,
			Password:     m.config.RedisPassword,
			DB:           m.config.RedisDB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     10,
		})
		if err := m.client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to Redis at %s: %w", m.config.RedisAddr, err)
		}
		m.store = NewRedisStore(m.client, m.config.KeyPrefix)
		log.Printf("[store] Using Redis backend at %s", m.config.RedisAddr)

	case BackendSQLite:
		s, err := NewSQLiteStore(m.config.SQLitePath)
		if err != nil {
			return err
		}
		m.store = s
		log.Printf("[store] Using SQLite backend at %s", m.config.SQLitePath)

	case BackendMemory:
		m.store = NewMemoryStore()
		log.Println("[store] Using in-memory backend (data is not persisted)")

	default:
		return fmt.Errorf("unknown store backend: %q", m.config.Backend)
	}

	return nil
}

// Stop closes the Redis connection when one was opened.
func (m *Module) Stop(_ context.Context) error {
	if m.client != nil {
		if err := m.client.Close(); err != nil {
			return err
		}
	}
	log.Println("[store] Module stopped")
	return nil
}

// Health reports backend reachability.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if m.store == nil {
		return mono.HealthStatus{Healthy: false, Message: "not started"}
	}
	if m.client != nil {
		if err := m.client.Ping(ctx).Err(); err != nil {
			return mono.HealthStatus{Healthy: false, Message: err.Error()}
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{"backend": m.config.Backend},
	}
}

// Store returns the active TaskStore. Only valid after Start.
func (m *Module) Store() TaskStore {
	return m.store
}
