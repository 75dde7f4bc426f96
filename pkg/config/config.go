// Package config loads service configuration from a TOML file with
// environment-variable overrides for secrets.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config holds everything the service needs at startup.
type Config struct {
	Figma  Figma  `toml:"figma"`
	LLM    LLM    `toml:"llm"`
	Server Server `toml:"server"`
}

type Figma struct {
	AccessToken string  `toml:"access_token"`
	BaseURL     string  `toml:"base_url"`
	MaxDepth    int     `toml:"max_depth"`
	RateLimit   float64 `toml:"rate_limit"`
}

type LLM struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
}

type Server struct {
	Addr      string `toml:"addr"`
	OutputDir string `toml:"output_dir"`
}

// Default returns the configuration used when no file is provided.
func Default() *Config {
	return &Config{
		Figma: Figma{
			MaxDepth:  512,
			RateLimit: 2,
		},
		Server: Server{
			Addr:      ":8000",
			OutputDir: "generated_pdfs",
		},
	}
}

// Load reads the TOML file at path on top of the defaults, then applies
// environment overrides. An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if cfg.Figma.MaxDepth <= 0 {
		return nil, fmt.Errorf("config: figma.max_depth must be positive, got %d", cfg.Figma.MaxDepth)
	}
	if cfg.Figma.RateLimit <= 0 {
		return nil, fmt.Errorf("config: figma.rate_limit must be positive, got %v", cfg.Figma.RateLimit)
	}

	return cfg, nil
}

// Secrets come from the environment so config files stay safe to commit.
func (c *Config) applyEnv() {
	if v := os.Getenv("FIGMA_TOKEN"); v != "" {
		c.Figma.AccessToken = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
}
