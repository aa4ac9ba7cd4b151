package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Setenv("DATABASE_URL", "postgres://localhost/dischargeflow_test")
	defer os.Unsetenv("DATABASE_URL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.AgentTimeoutSeconds != 10 {
		t.Errorf("expected default agent timeout 10, got %d", cfg.AgentTimeoutSeconds)
	}
	if cfg.PipelineWorkers != 4 {
		t.Errorf("expected default 4 pipeline workers, got %d", cfg.PipelineWorkers)
	}
	if cfg.DailyDischargeTarget != 5 {
		t.Errorf("expected default daily discharge target 5, got %d", cfg.DailyDischargeTarget)
	}
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	os.Unsetenv("DATABASE_URL")

	if _, err := Load(); err == nil {
		t.Error("expected error when DATABASE_URL is unset")
	}
}

func TestAgentTimeout(t *testing.T) {
	cfg := &Config{AgentTimeoutSeconds: 3}
	if cfg.AgentTimeout() != 3*time.Second {
		t.Errorf("expected 3s, got %v", cfg.AgentTimeout())
	}

	cfg = &Config{AgentTimeoutSeconds: 0}
	if cfg.AgentTimeout() != 10*time.Second {
		t.Errorf("expected 10s fallback, got %v", cfg.AgentTimeout())
	}
}

func TestValidate_ProductionRequiresServiceURLs(t *testing.T) {
	cfg := &Config{Env: "production"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing EXTRACTION_SERVICE_URL in production")
	}

	cfg = &Config{
		Env:                  "production",
		ExtractionServiceURL: "http://automation:18000",
		TaskModelURL:         "http://model:9000",
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_Development(t *testing.T) {
	cfg := &Config{Env: "development"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("development config should validate without service URLs: %v", err)
	}
}
