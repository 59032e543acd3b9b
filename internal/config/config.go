package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"

	BlobDisk  = "disk"
	BlobMinIO = "minio"
)

type Config struct {
	ServerPort string
	Store      string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBMaxConns int
	RedisURL   string
	JWTSecret  string
	JWTTTL     time.Duration

	LogLevel  string
	LogFormat string

	CORSAllowedOrigins []string

	LoginMaxAttempts int
	LoginWindow      time.Duration

	BlobBackend    string
	UploadDir      string
	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool
}

func Load() (*Config, error) {
	maxConns, err := getInt("DB_MAX_CONNS", 10)
	if err != nil {
		return nil, err
	}
	ttlHours, err := getInt("JWT_TTL_HOURS", 24*7)
	if err != nil {
		return nil, err
	}
	maxAttempts, err := getInt("LOGIN_MAX_ATTEMPTS", 10)
	if err != nil {
		return nil, err
	}
	windowMinutes, err := getInt("LOGIN_WINDOW_MINUTES", 15)
	if err != nil {
		return nil, err
	}
	useSSL, err := strconv.ParseBool(getEnv("MINIO_USE_SSL", "false"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid MINIO_USE_SSL")
	}

	cfg := &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		Store:      getEnv("STORE", StorePostgres),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "tweeter"),
		DBPassword: getEnv("DB_PASSWORD", "tweeter_dev_password"),
		DBName:     getEnv("DB_NAME", "tweeter"),
		DBMaxConns: maxConns,
		RedisURL:   getEnv("REDIS_URL", ""),
		JWTSecret:  getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTTTL:     time.Duration(ttlHours) * time.Hour,

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		CORSAllowedOrigins: parseCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),

		LoginMaxAttempts: maxAttempts,
		LoginWindow:      time.Duration(windowMinutes) * time.Minute,

		BlobBackend:    getEnv("BLOB_BACKEND", BlobDisk),
		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		MinIOEndpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinIOAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinIOBucket:    getEnv("MINIO_BUCKET", "tweeter"),
		MinIOUseSSL:    useSSL,
	}

	if cfg.Store != StorePostgres && cfg.Store != StoreMemory {
		return nil, errors.Errorf("invalid STORE %q", cfg.Store)
	}
	if cfg.BlobBackend != BlobDisk && cfg.BlobBackend != BlobMinIO {
		return nil, errors.Errorf("invalid BLOB_BACKEND %q", cfg.BlobBackend)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	val, exists := os.LookupEnv(key)

	if exists {
		return val
	}

	return fallback
}

func getInt(key string, fallback int) (int, error) {
	val, exists := os.LookupEnv(key)
	if !exists || val == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", key)
	}
	return n, nil
}

func parseCSV(value string) []string {
	var out []string
	for _, p := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
