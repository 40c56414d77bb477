package config

import (
	"fmt"
	"graph-diag/internal/storage"
	"time"

	"github.com/caarlos0/env/v11"
)

type ProbeConfig struct {
	ClassifyURL string        `env:"CLASSIFY_URL" envDefault:"http://localhost:5000/classify"`
	Timeout     time.Duration `env:"CLASSIFY_TIMEOUT" envDefault:"10s"`
	EdgesFile   string        `env:"EDGES_FILE"`
	LogLevel    string        `env:"LOG_LEVEL" envDefault:"warn"`
}

type InspectConfig struct {
	CheckpointPath string `env:"CHECKPOINT_PATH" envDefault:"graph_classifier_model.pth"`
	S3             storage.S3ClientConfig
	ShowProgress   bool   `env:"SHOW_PROGRESS" envDefault:"true"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"warn"`
}

func LoadProbeConfig() (ProbeConfig, error) {
	var cfg ProbeConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("error parsing probe config: %w", err)
	}
	if cfg.Timeout <= 0 {
		return cfg, fmt.Errorf("CLASSIFY_TIMEOUT must be positive, got %s", cfg.Timeout)
	}
	return cfg, nil
}

func LoadInspectConfig() (InspectConfig, error) {
	var cfg InspectConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("error parsing inspect config: %w", err)
	}
	if cfg.CheckpointPath == "" {
		return cfg, fmt.Errorf("CHECKPOINT_PATH must not be empty")
	}
	return cfg, nil
}
