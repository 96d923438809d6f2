package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type OracleConfig struct {
	Provider       string `toml:"provider"`
	Model          string `toml:"model"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxAttempts    int    `toml:"max_attempts"`
	BaseDelayMS    int    `toml:"base_delay_ms"`
}

func (c OracleConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c OracleConfig) BaseDelay() time.Duration {
	return time.Duration(c.BaseDelayMS) * time.Millisecond
}

type MemgraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type PipelineConfig struct {
	SimilarityThreshold float64 `toml:"similarity_threshold"`
	ConfidenceThreshold float64 `toml:"confidence_threshold"`
}

// Prompts are optional overrides for the built-in prompt templates. Each
// template is a fmt string; see the extraction and relationship packages for
// the verbs each one receives.
type Prompts struct {
	Characters    string `toml:"characters"`
	Locations     string `toml:"locations"`
	Events        string `toml:"events"`
	Objects       string `toml:"objects"`
	Adjudication  string `toml:"adjudication"`
	Relationships string `toml:"relationships"`
}

type Config struct {
	Oracle   OracleConfig   `toml:"oracle"`
	Memgraph MemgraphConfig `toml:"memgraph"`
	Pipeline PipelineConfig `toml:"pipeline"`
	Prompts  Prompts        `toml:"prompts"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Oracle: OracleConfig{
			Provider:       "openai",
			Model:          "gpt-4o-mini",
			TimeoutSeconds: 30,
			MaxAttempts:    3,
			BaseDelayMS:    1000,
		},
		Memgraph: MemgraphConfig{
			URI: "bolt://localhost:7687",
		},
		Pipeline: PipelineConfig{
			SimilarityThreshold: 0.7,
			ConfidenceThreshold: 0.7,
		},
	}
}

// Load reads a TOML config file, fills unset fields with defaults, and then
// applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	cfg.fillDefaults()
	cfg.ApplyEnv()
	return cfg, nil
}

// FromEnv builds a config from defaults plus environment variables, for
// deployments without a config file.
func FromEnv() *Config {
	cfg := Default()
	cfg.ApplyEnv()
	return cfg
}

func (c *Config) fillDefaults() {
	d := Default()
	if c.Oracle.Provider == "" {
		c.Oracle.Provider = d.Oracle.Provider
	}
	if c.Oracle.Model == "" {
		c.Oracle.Model = d.Oracle.Model
	}
	if c.Oracle.TimeoutSeconds <= 0 {
		c.Oracle.TimeoutSeconds = d.Oracle.TimeoutSeconds
	}
	if c.Oracle.MaxAttempts <= 0 {
		c.Oracle.MaxAttempts = d.Oracle.MaxAttempts
	}
	if c.Oracle.BaseDelayMS <= 0 {
		c.Oracle.BaseDelayMS = d.Oracle.BaseDelayMS
	}
	if c.Memgraph.URI == "" {
		c.Memgraph.URI = d.Memgraph.URI
	}
	if c.Pipeline.SimilarityThreshold <= 0 {
		c.Pipeline.SimilarityThreshold = d.Pipeline.SimilarityThreshold
	}
	if c.Pipeline.ConfidenceThreshold <= 0 {
		c.Pipeline.ConfidenceThreshold = d.Pipeline.ConfidenceThreshold
	}
}

// ApplyEnv overrides fields from the environment. Env always wins over file
// values so deployments can keep credentials out of the config file.
func (c *Config) ApplyEnv() {
	setString(&c.Oracle.Provider, "ORACLE_PROVIDER")
	setString(&c.Oracle.Model, "ORACLE_MODEL")
	setString(&c.Oracle.APIKey, "ORACLE_API_KEY")
	setString(&c.Oracle.BaseURL, "ORACLE_BASE_URL")
	setInt(&c.Oracle.TimeoutSeconds, "ORACLE_TIMEOUT_SECONDS")
	setInt(&c.Oracle.MaxAttempts, "ORACLE_MAX_ATTEMPTS")
	setString(&c.Memgraph.URI, "MEMGRAPH_URI")
	setString(&c.Memgraph.User, "MEMGRAPH_USER")
	setString(&c.Memgraph.Password, "MEMGRAPH_PASSWORD")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*dst = n
		}
	}
}
