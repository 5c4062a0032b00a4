// Package config reads process settings from the environment and search
// settings from YAML files.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads a .env file into the environment when one exists.
func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}
}

// Get returns the value of key, or fallback when it is unset or empty.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Store backends for solution records.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Config holds the settings of the HTTP server.
type Config struct {
	Port             string
	DatabaseURL      string
	RedisURL         string
	InstanceDir      string
	SearchConfigPath string
	ORSAPIKey        string
	SolutionStore    string
	SolutionTTL      time.Duration
}

// FromEnv assembles a Config from the environment and checks that the
// selected backends have what they need.
func FromEnv() (Config, error) {
	cfg := Config{
		Port:             Get("PORT", "8080"),
		DatabaseURL:      Get("DATABASE_URL", ""),
		RedisURL:         Get("REDIS_URL", ""),
		InstanceDir:      Get("INSTANCE_DIR", "data/instances"),
		SearchConfigPath: Get("SEARCH_CONFIG", ""),
		ORSAPIKey:        Get("ORS_API_KEY", ""),
		SolutionStore:    Get("SOLUTION_STORE", StoreMemory),
	}

	ttl, err := time.ParseDuration(Get("SOLUTION_TTL", "24h"))
	if err != nil {
		return Config{}, fmt.Errorf("config: %w: SOLUTION_TTL: %v", ErrInvalidConfig, err)
	}
	cfg.SolutionTTL = ttl

	switch cfg.SolutionStore {
	case StoreMemory:
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("config: %w: DATABASE_URL is required for the postgres store", ErrInvalidConfig)
		}
	case StoreRedis:
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("config: %w: REDIS_URL is required for the redis store", ErrInvalidConfig)
		}
	default:
		return Config{}, fmt.Errorf("config: %w: unknown SOLUTION_STORE %q", ErrInvalidConfig, cfg.SolutionStore)
	}

	return cfg, nil
}
