package config

import (
	"os"
	"strconv"
	"strings"
)

// Storage backends
const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

type Config struct {
	Port            string
	Environment     string
	StorageBackend  string
	DatabaseURL     string
	DatabaseSchema  string // Postgres schema, isolates dev/test/prod data in one database
	SQLitePath      string
	AutoMigrate     bool
	SupabaseURL     string
	SupabaseJWKSURL string // Constructed from SupabaseURL + /auth/v1/.well-known/jwks.json
	SupabaseKey     string // Service role key, used by meshctl seed only
	DevUserID       string // Bypasses JWT auth in dev only
	CORSOrigins     string
	// Canvas
	StrictEdges bool // Reject syncs whose edges point at nodes missing from the payload
	// Logging
	LogDir      string
	LogMaxFiles int
	// Metrics
	MetricsNamespace string
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	databaseURL := getEnv("DATABASE_URL", "")
	supabaseURL := strings.TrimRight(getEnv("SUPABASE_URL", ""), "/")

	jwksURL := ""
	if supabaseURL != "" {
		jwksURL = supabaseURL + "/auth/v1/.well-known/jwks.json"
	}

	return &Config{
		Port:             getEnv("PORT", "8080"),
		Environment:      env,
		StorageBackend:   getStorageBackend(databaseURL),
		DatabaseURL:      databaseURL,
		DatabaseSchema:   getDatabaseSchema(env),
		SQLitePath:       getEnv("SQLITE_PATH", "meshwork.db"),
		AutoMigrate:      getBool("AUTO_MIGRATE", true),
		SupabaseURL:      supabaseURL,
		SupabaseJWKSURL:  jwksURL,
		SupabaseKey:      getEnv("SUPABASE_SERVICE_KEY", ""),
		DevUserID:        getEnv("DEV_USER_ID", ""),
		CORSOrigins:      getEnv("CORS_ORIGINS", "http://localhost:5173"),
		StrictEdges:      getBool("STRICT_EDGES", false),
		LogDir:           getEnv("LOG_DIR", ""),
		LogMaxFiles:      getInt("LOG_MAX_FILES", 10),
		MetricsNamespace: getEnv("METRICS_NAMESPACE", "meshwork"),
	}
}

// DevAuthEnabled reports whether requests may be authenticated as DevUserID
func (c *Config) DevAuthEnabled() bool {
	return c.Environment == "dev" && c.DevUserID != ""
}

// getStorageBackend picks the backend, falling back to memory when no database is configured
func getStorageBackend(databaseURL string) string {
	if backend := os.Getenv("STORAGE_BACKEND"); backend != "" {
		return strings.ToLower(backend)
	}
	if databaseURL != "" {
		return BackendPostgres
	}
	return BackendMemory
}

// getDatabaseSchema returns the Postgres schema based on environment
func getDatabaseSchema(env string) string {
	// Allow manual override via DATABASE_SCHEMA env var
	if schema := os.Getenv("DATABASE_SCHEMA"); schema != "" {
		return schema
	}

	switch env {
	case "prod":
		return "meshwork_prod"
	case "test":
		return "meshwork_test"
	default:
		return "meshwork_dev"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}
