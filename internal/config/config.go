package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"openplay-app/internal/cloudsync"

	"github.com/joho/godotenv"
)

type Config struct {
	App                   string
	Port                  int
	PostgresDSN           string
	PostgresMigrationsDir string
	DBPath                string
	DBMigrationsDir       string
	UndoExpiry            time.Duration
	SyncRetryInterval     time.Duration
	RandomSeed            int64
	OperatorPINHash       string
	CORSOrigins           []string
	Sync                  cloudsync.Config
}

// OnLambda reports whether the process runs inside AWS Lambda.
func OnLambda() bool {
	return os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}

// Load reads the environment, loading .env files first when running locally.
func Load() (*Config, error) {
	if !OnLambda() {
		_ = godotenv.Load(".env", ".env.local")
	}

	port, err := intEnv("PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("PORT must be between 1 and 65535, got %d", port)
	}
	undoExpiry, err := durationEnv("UNDO_EXPIRY", 10*time.Second)
	if err != nil {
		return nil, err
	}
	retryInterval, err := durationEnv("SYNC_RETRY_INTERVAL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	seed, err := intEnv("RANDOM_SEED", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App:                   strings.TrimSpace(os.Getenv("APP")),
		Port:                  port,
		PostgresDSN:           strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		PostgresMigrationsDir: os.Getenv("POSTGRES_MIGRATIONS_DIR"),
		DBPath:                strings.TrimSpace(os.Getenv("DB_PATH")),
		DBMigrationsDir:       os.Getenv("DB_MIGRATIONS_DIR"),
		UndoExpiry:            undoExpiry,
		SyncRetryInterval:     retryInterval,
		RandomSeed:            int64(seed),
		OperatorPINHash:       strings.TrimSpace(os.Getenv("OPERATOR_PIN_HASH")),
		CORSOrigins:           listEnv("CORS_ORIGINS"),
		Sync: cloudsync.Config{
			Bucket:          strings.TrimSpace(os.Getenv("SYNC_BUCKET")),
			Endpoint:        strings.TrimSpace(os.Getenv("SYNC_ENDPOINT")),
			Region:          strings.TrimSpace(os.Getenv("SYNC_REGION")),
			AccessKeyID:     os.Getenv("SYNC_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("SYNC_SECRET_ACCESS_KEY"),
			PublicBaseURL:   strings.TrimSpace(os.Getenv("SYNC_PUBLIC_BASE_URL")),
		},
	}
	return cfg, nil
}

// IsDev mirrors APP=dev, which switches logging to the development encoder.
func (c *Config) IsDev() bool {
	return strings.EqualFold(c.App, "dev")
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func intEnv(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, value)
	}
	return parsed, nil
}

func listEnv(key string) []string {
	values := []string{}
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}
