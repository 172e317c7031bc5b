package config

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port int

	// canonical store
	CanonicalStore  string // "mongo" | "memory"
	MongoURI        string
	MongoDB         string
	MongoCollection string
	StoreTimeout    time.Duration

	// relational mirror
	MirrorDriver           string // "sqlite" | "postgres"
	SQLitePath             string
	MirrorDBURL            string
	MirrorTimeout          time.Duration
	MirrorFailureThreshold int
	MirrorCooldown         time.Duration

	AllowedOrigins []string
	StaticDir      string

	OTelEndpoint    string
	OTelServiceName string
}

func Load() Config {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	return Config{
		Env:  getEnv("APP_ENV", "dev"),
		Port: getEnvInt("PORT", 3000),

		CanonicalStore:  getEnv("CANONICAL_STORE", "mongo"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://127.0.0.1:27017/alumni_platform"),
		MongoDB:         getEnv("MONGO_DB", "alumni_platform"),
		MongoCollection: getEnv("MONGO_COLLECTION", "users"),
		StoreTimeout:    getEnvDuration("STORE_TIMEOUT", 5*time.Second),

		MirrorDriver:           getEnv("MIRROR_DRIVER", "sqlite"),
		SQLitePath:             getEnv("SQLITE_PATH", "auth.sqlite"),
		MirrorDBURL:            getEnv("MIRROR_DB_URL", buildDBURL()),
		MirrorTimeout:          getEnvDuration("MIRROR_TIMEOUT", 3*time.Second),
		MirrorFailureThreshold: getEnvInt("MIRROR_FAILURE_THRESHOLD", 5),
		MirrorCooldown:         getEnvDuration("MIRROR_COOLDOWN", 15*time.Second),

		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),
		StaticDir:      os.Getenv("STATIC_DIR"),

		OTelEndpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTelServiceName: getEnv("OTEL_SERVICE_NAME", "alumni-portal"),
	}
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "alumni")
	pass := getEnv("DB_PASSWORD", "alumni")
	name := getEnv("DB_NAME", "alumni_platform")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid int env, using default", "key", key, "value", v, "default", fallback)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			slog.Warn("invalid duration env, using default", "key", key, "value", v, "default", fallback)
			return fallback
		}

		return d
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
