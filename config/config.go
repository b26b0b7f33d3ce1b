package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config stores the application configuration.
type Config struct {
	// HTTP server
	ListenAddr string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// MinIO object storage
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioRegion    string
	MinioUseSSL    bool

	// Auth
	JWTSecret   string
	JWTLifetime time.Duration

	// Per-user quotas
	MaxTrackBytes    int64 // per-upload payload cap
	MaxTracksPerUser int   // per-owner track count cap

	// Playback URL resolution
	SignedURLTTL time.Duration

	// YouTube ingestion
	ResolverURL        string // base URL of the audio resolver service
	MaxIngestDuration  time.Duration
	IngestFetchTimeout time.Duration
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool gets an environment variable as bool or returns a default value.
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}

	return &Config{
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),

		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"), // no hardcoded default for secrets
		DBName:     getEnv("DB_NAME", "soundcrate"),

		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "127.0.0.1:9000"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getEnv("MINIO_BUCKET", "tracks"),
		MinioRegion:    getEnv("MINIO_REGION", "us-east-1"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),

		JWTSecret:   getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTLifetime: time.Duration(getEnvInt("JWT_LIFETIME_HOURS", 72)) * time.Hour,

		MaxTrackBytes:    int64(getEnvInt("MAX_TRACK_MB", 7)) << 20,
		MaxTracksPerUser: getEnvInt("MAX_TRACKS_PER_USER", 10),

		SignedURLTTL: time.Duration(getEnvInt("SIGNED_URL_TTL_SECONDS", 3600)) * time.Second,

		ResolverURL:        getEnv("RESOLVER_URL", "http://127.0.0.1:9090"),
		MaxIngestDuration:  time.Duration(getEnvInt("MAX_INGEST_SECONDS", 600)) * time.Second,
		IngestFetchTimeout: time.Duration(getEnvInt("INGEST_FETCH_TIMEOUT_SECONDS", 120)) * time.Second,
	}
}
