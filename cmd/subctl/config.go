package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/subtitle-forge/backend/internal/translate"
)

// cliConfig holds the defaults a user keeps in a config file so repeated
// runs don't need the full flag set every time.
type cliConfig struct {
	Engine          string            `yaml:"engine"`
	Model           string            `yaml:"model"`
	TargetLanguages []string          `yaml:"target_languages"`
	StylePrompts    map[string]string `yaml:"style_prompts"`
	Convention      string            `yaml:"convention"`
	BatchLimit      int               `yaml:"batch_limit"`
	RetryBudget     int               `yaml:"retry_budget"`
	PacingDelayMS   int               `yaml:"pacing_delay_ms"`
	CorrectionTerms []string          `yaml:"correction_terms"`
	MaxDifference   float64           `yaml:"max_difference"`
}

func defaultCLIConfig() *cliConfig {
	return &cliConfig{
		Engine:        "openai",
		Convention:    "labeled",
		BatchLimit:    1024,
		RetryBudget:   3,
		PacingDelayMS: 1000,
		MaxDifference: 0.5,
	}
}

// loadCLIConfig reads the YAML config at path, falling back to
// ~/.config/subctl/config.yaml, falling back to defaults when no file
// exists. An explicitly named file must exist.
func loadCLIConfig(path string) (*cliConfig, error) {
	cfg := defaultCLIConfig()

	explicit := path != ""
	if !explicit {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(home, ".config", "subctl", "config.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *cliConfig) pacingDelay() time.Duration {
	return time.Duration(c.PacingDelayMS) * time.Millisecond
}

// buildEngine constructs the configured engine with its key from the
// environment; keys never live in the config file.
func (c *cliConfig) buildEngine() (translate.Engine, error) {
	switch c.Engine {
	case "openai":
		key := os.Getenv("OPENAI_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY not set")
		}
		return translate.NewOpenAIEngine(key, c.Model), nil
	case "anthropic":
		key := os.Getenv("ANTHROPIC_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
		return translate.NewAnthropicEngine(key, c.Model), nil
	default:
		return nil, fmt.Errorf("unknown engine %q (want openai or anthropic)", c.Engine)
	}
}
