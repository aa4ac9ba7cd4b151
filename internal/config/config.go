package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	Env         string `mapstructure:"ENV"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32  `mapstructure:"DB_MIN_CONNS"`

	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	// External agent services.
	ExtractionServiceURL   string `mapstructure:"EXTRACTION_SERVICE_URL"`
	VerificationServiceURL string `mapstructure:"VERIFICATION_SERVICE_URL"`
	TaskModelURL           string `mapstructure:"TASK_MODEL_URL"`
	TaskModelKey           string `mapstructure:"TASK_MODEL_KEY"`
	AgentTimeoutSeconds    int    `mapstructure:"AGENT_TIMEOUT_SECONDS"`

	// Pipeline dispatch.
	PipelineWorkers   int `mapstructure:"PIPELINE_WORKERS"`
	PipelineQueueSize int `mapstructure:"PIPELINE_QUEUE_SIZE"`

	// Overview dashboard.
	DailyDischargeTarget int `mapstructure:"DAILY_DISCHARGE_TARGET"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("AGENT_TIMEOUT_SECONDS", 10)
	v.SetDefault("PIPELINE_WORKERS", 4)
	v.SetDefault("PIPELINE_QUEUE_SIZE", 64)
	v.SetDefault("DAILY_DISCHARGE_TARGET", 5)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("EXTRACTION_SERVICE_URL")
	v.BindEnv("VERIFICATION_SERVICE_URL")
	v.BindEnv("TASK_MODEL_URL")
	v.BindEnv("TASK_MODEL_KEY")
	v.BindEnv("AGENT_TIMEOUT_SECONDS")
	v.BindEnv("PIPELINE_WORKERS")
	v.BindEnv("PIPELINE_QUEUE_SIZE")
	v.BindEnv("DAILY_DISCHARGE_TARGET")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// AgentTimeout returns the bounded timeout applied to every external
// agent call (extraction, verification, task model).
func (c *Config) AgentTimeout() time.Duration {
	if c.AgentTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.AgentTimeoutSeconds) * time.Second
}

// Validate checks that the configuration is safe to run. The agent
// service URLs are required outside development; in development the
// pipeline falls back to deterministic output when they are unset.
func (c *Config) Validate() error {
	if !c.IsDev() {
		if c.ExtractionServiceURL == "" {
			return fmt.Errorf("EXTRACTION_SERVICE_URL is required when ENV is not development")
		}
		if c.TaskModelURL == "" {
			return fmt.Errorf("TASK_MODEL_URL is required when ENV is not development")
		}
	}
	if c.PipelineWorkers < 0 {
		return fmt.Errorf("PIPELINE_WORKERS must be positive, got %d", c.PipelineWorkers)
	}
	if c.PipelineQueueSize < 0 {
		return fmt.Errorf("PIPELINE_QUEUE_SIZE must be positive, got %d", c.PipelineQueueSize)
	}
	return nil
}
