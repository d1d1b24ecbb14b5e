package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	modelsPathEnvVar    = "MTS_MODELS_PATH"
	localModelsDir      = "models"
	defaultModelsDir    = "/models"
	defaultQueuePerSlot = 4
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"MTS_LOG_LEVEL" default:"INFO"`
	LogFile     string `envconfig:"MTS_LOG_FILE" default:""`

	Host       string `envconfig:"MTS_HOST" default:"0.0.0.0"`
	Port       int    `envconfig:"MTS_PORT" default:"8989"`
	NumWorkers int    `envconfig:"MTS_NUM_WORKERS" default:"1"`
	QueueSize  int    `envconfig:"MTS_QUEUE_SIZE" default:"0"`

	ModelsPath      string `envconfig:"MTS_MODELS_PATH" default:""`
	MissingFiles    string `envconfig:"MTS_MISSING_FILES" default:"warn"`
	LoadConcurrency int    `envconfig:"MTS_LOAD_CONCURRENCY" default:"1"`

	EngineEndpoint        string        `envconfig:"MTS_ENGINE_ENDPOINT" default:"http://127.0.0.1:8845/v1"`
	EngineModel           string        `envconfig:"MTS_ENGINE_MODEL" default:"tencent/HY-MT1.5-7B"`
	EngineAPIKey          string        `envconfig:"MTS_ENGINE_API_KEY" default:""`
	EngineTimeout         time.Duration `envconfig:"MTS_ENGINE_TIMEOUT" default:"120s"`
	EngineBreakerFailures uint32        `envconfig:"MTS_ENGINE_BREAKER_FAILURES" default:"5"`
	EngineBreakerCooldown time.Duration `envconfig:"MTS_ENGINE_BREAKER_COOLDOWN" default:"30s"`

	APIToken     string `envconfig:"MTS_API_TOKEN" default:""`
	APITokenHash string `envconfig:"MTS_API_TOKEN_HASH" default:""`

	DatabaseURL string `envconfig:"MTS_DATABASE_URL" default:""`
	DBMinConns  int32  `envconfig:"MTS_DB_MIN_CONNS" default:"1"`
	DBMaxConns  int32  `envconfig:"MTS_DB_MAX_CONNS" default:"4"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch strings.ToUpper(strings.TrimSpace(c.LogLevel)) {
	case "DEBUG", "INFO", "WARNING", "WARN", "ERROR":
	default:
		return fmt.Errorf("unknown logging level: %s", c.LogLevel)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("MTS_PORT must be between 1 and 65535")
	}
	if c.NumWorkers < 0 {
		return fmt.Errorf("MTS_NUM_WORKERS must be >= 0")
	}
	if c.QueueSize < 0 {
		return fmt.Errorf("MTS_QUEUE_SIZE must be >= 0")
	}
	if c.LoadConcurrency < 1 {
		return fmt.Errorf("MTS_LOAD_CONCURRENCY must be >= 1")
	}
	switch strings.ToLower(strings.TrimSpace(c.MissingFiles)) {
	case "ignore", "warn", "reject":
	default:
		return fmt.Errorf("MTS_MISSING_FILES must be one of ignore, warn, reject")
	}
	if c.EngineTimeout <= 0 {
		return fmt.Errorf("MTS_ENGINE_TIMEOUT must be > 0")
	}
	if strings.TrimSpace(c.DatabaseURL) != "" {
		if c.DBMinConns < 0 {
			return fmt.Errorf("MTS_DB_MIN_CONNS must be >= 0")
		}
		if c.DBMaxConns < 1 {
			return fmt.Errorf("MTS_DB_MAX_CONNS must be >= 1")
		}
		if c.DBMinConns > c.DBMaxConns {
			return fmt.Errorf("MTS_DB_MIN_CONNS (%d) cannot exceed MTS_DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
		}
	}
	return nil
}

// HistoryEnabled reports whether translations are recorded to Postgres.
func (c *Config) HistoryEnabled() bool {
	return c != nil && strings.TrimSpace(c.DatabaseURL) != ""
}

// AuthEnabled reports whether /v1 requires a bearer token.
func (c *Config) AuthEnabled() bool {
	return c != nil && (strings.TrimSpace(c.APIToken) != "" || strings.TrimSpace(c.APITokenHash) != "")
}

// EffectiveQueueSize resolves the engine queue capacity for workers.
func (c *Config) EffectiveQueueSize(workers int) int {
	if c != nil && c.QueueSize > 0 {
		return c.QueueSize
	}
	return defaultQueuePerSlot * max(1, workers)
}

// ResolveModelsPath picks the models directory: MTS_MODELS_PATH when it
// exists, then ./models, then /models. Warnings describe skipped or missing
// locations.
func (c *Config) ResolveModelsPath() (string, []string) {
	var warnings []string

	if configured := strings.TrimSpace(c.ModelsPath); configured != "" {
		if exists(configured) {
			return configured, nil
		}
		warnings = append(warnings, fmt.Sprintf("Models path from %s (%s) does not exist", modelsPathEnvVar, configured))
	}

	if exists(localModelsDir) {
		if abs, err := filepath.Abs(localModelsDir); err == nil {
			return abs, warnings
		}
		return localModelsDir, warnings
	}

	if !exists(defaultModelsDir) {
		warnings = append(warnings, fmt.Sprintf("Default models path %s does not exist", defaultModelsDir))
	}
	return defaultModelsDir, warnings
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
