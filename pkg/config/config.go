// Package config reads the service settings from the environment.
package config

import (
	"strings"
	"time"

	"julianmorley.ca/con-plar/storefront/pkg/ai"
	"julianmorley.ca/con-plar/storefront/pkg/auth"
	"julianmorley.ca/con-plar/storefront/pkg/chat"
	"julianmorley.ca/con-plar/storefront/pkg/checkout"
	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/query"
	"julianmorley.ca/con-plar/storefront/pkg/session"
)

const (
	StorageMemory = "memory"
	StorageFile   = "file"
	StorageRedis  = "redis"

	CatalogStatic = "static"
	CatalogMongo  = "mongo"
)

var defaultOrigins = []string{"http://localhost:3000", "http://localhost:5173"}

type Config struct {
	Env          string
	Port         string
	LogLevel     string
	AllowOrigins []string

	StorageBackend string
	StoragePath    string
	RedisAddress   string
	RedisPassword  string

	CatalogSource string
	MongoURI      string
	MongoDatabase string

	CheckoutDelay    time.Duration
	AuthDelay        time.Duration
	ChatDelay        time.Duration
	SuggestThreshold float64
	SessionIdleTTL   time.Duration

	AI ai.Config
}

// Load reads the environment. Unknown or malformed values fall back to defaults.
func Load() Config {
	cfg := Config{
		Env:          global.GetEnvOrDefault("ENV", "development"),
		Port:         global.GetEnvOrDefault("PORT", "8000"),
		LogLevel:     global.GetEnvOrDefault("LOG_LEVEL", "info"),
		AllowOrigins: global.GetEnvListOrDefault("ALLOW_ORIGINS", defaultOrigins),

		StorageBackend: oneOf(global.GetEnvOrDefault("STORAGE_BACKEND", StorageMemory), StorageMemory, StorageMemory, StorageFile, StorageRedis),
		StoragePath:    global.GetEnvOrDefault("STORAGE_PATH", ""),
		RedisAddress:   global.GetEnvOrDefault("REDIS_ADDRESS", "localhost:6379"),
		RedisPassword:  global.GetEnvOrDefault("REDIS_PASSWORD", ""),

		CatalogSource: oneOf(global.GetEnvOrDefault("CATALOG_SOURCE", CatalogStatic), CatalogStatic, CatalogStatic, CatalogMongo),
		MongoURI:      global.GetEnvOrDefault("MONGODB_URI", ""),
		MongoDatabase: global.GetEnvOrDefault("MONGODB_DATABASE", "storefront"),

		CheckoutDelay:    global.GetEnvDurationOrDefault("CHECKOUT_DELAY", checkout.DefaultProcessingDelay),
		AuthDelay:        global.GetEnvDurationOrDefault("AUTH_DELAY", auth.DefaultDelay),
		ChatDelay:        global.GetEnvDurationOrDefault("CHAT_DELAY", chat.DefaultDelay),
		SuggestThreshold: global.GetEnvFloatOrDefault("SUGGEST_THRESHOLD", query.DefaultSuggestThreshold),
		SessionIdleTTL:   global.GetEnvDurationOrDefault("SESSION_IDLE_TTL", session.DefaultIdleTTL),

		AI: ai.Config{
			Endpoint:   global.GetEnvOrDefault("AZURE_OPENAI_ENDPOINT", ""),
			APIKey:     global.GetEnvOrDefault("AZURE_OPENAI_API_KEY", ""),
			Deployment: global.GetEnvOrDefault("AZURE_OPENAI_DEPLOYMENT_NAME", ai.DefaultDeployment),
			MaxRetries: global.GetEnvIntOrDefault("AZURE_OPENAI_MAX_RETRIES", 2),
		},
	}

	if cfg.SessionIdleTTL == 0 {
		cfg.SessionIdleTTL = session.DefaultIdleTTL
	}
	if cfg.SuggestThreshold < 0 || cfg.SuggestThreshold > 1 {
		cfg.SuggestThreshold = query.DefaultSuggestThreshold
	}
	return cfg
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func oneOf(value, fallback string, allowed ...string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, a := range allowed {
		if value == a {
			return value
		}
	}
	return fallback
}
