package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env            string
	Port           int
	DBURL          string
	UploadDir      string
	AllowedOrigins []string
	OTLPEndpoint   string
	MaxBodyBytes   int64
}

func Load() Config {
	// best effort .env load for local development
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}

	env := getEnv("APP_ENV", "dev")
	port := getEnvInt("PORT", 5000)
	dbURL := buildDBURL()
	uploadDir := getEnv("UPLOAD_DIR", "uploads")
	origins := splitCSV(getEnv("CORS_ALLOWED_ORIGINS", ""))
	otlp := getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	maxBody := int64(getEnvInt("MAX_BODY_BYTES", 10<<20))

	return Config{
		Env:            env,
		Port:           port,
		DBURL:          dbURL,
		UploadDir:      uploadDir,
		AllowedOrigins: origins,
		OTLPEndpoint:   otlp,
		MaxBodyBytes:   maxBody,
	}
}

func buildDBURL() string {
	// a full URL wins over the individual parts
	if url := getEnv("DATABASE_URL", ""); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "agromarket")
	pass := getEnv("DB_PASSWORD", "agromarket")
	name := getEnv("DB_NAME", "agromarket")
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
			fmt.Println(err)
			return fallback
		}

		return num
	}
	return fallback
}

func splitCSV(v string) []string {
	if v == "" {
		return nil
	}

	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}
