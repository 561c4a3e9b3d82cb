// Package config loads startup settings from a JSON or YAML file and the
// process environment.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultAPIKeyEnv names the variable holding the provider API key.
	DefaultAPIKeyEnv = "SEO_OPEN_AI_API_KEY"
	DefaultAddr      = ":8080"
	DefaultModel     = "gpt-3.5-turbo"
)

// Config holds server and provider settings.
type Config struct {
	LLM        LLMConfig `json:"llm" yaml:"llm"`
	ServerAddr string    `json:"server_addr,omitempty" yaml:"server_addr,omitempty"`
	// RequestTimeout bounds one enrichment request, e.g. "60s". Empty or
	// "0s" leaves the request unbounded.
	RequestTimeout string `json:"request_timeout,omitempty" yaml:"request_timeout,omitempty"`
	// LogPayloads logs incoming rows, prompts and raw model output.
	LogPayloads bool `json:"log_payloads,omitempty" yaml:"log_payloads,omitempty"`
}

// LLMConfig selects the completion provider. The key itself is never read
// from the file; APIKeyEnv names the environment variable that holds it.
type LLMConfig struct {
	Provider  string `json:"provider,omitempty" yaml:"provider,omitempty"`
	Model     string `json:"model,omitempty" yaml:"model,omitempty"`
	APIKeyEnv string `json:"api_key_env,omitempty" yaml:"api_key_env,omitempty"`
	BaseURL   string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	APIKey string `json:"-" yaml:"-"`
}

// Error reports an unusable setting.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		LLM: LLMConfig{
			Provider:  "openai",
			Model:     DefaultModel,
			APIKeyEnv: DefaultAPIKeyEnv,
		},
		ServerAddr: DefaultAddr,
	}
}

// Load reads path (optional), applies environment overrides and validates
// the result. A missing API key is an *Error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := decode(path, data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		return json.Unmarshal(data, cfg)
	}
}

func applyEnv(cfg *Config) {
	if cfg.LLM.APIKeyEnv == "" {
		cfg.LLM.APIKeyEnv = DefaultAPIKeyEnv
	}
	cfg.LLM.APIKey = strings.TrimSpace(os.Getenv(cfg.LLM.APIKeyEnv))
	if v := os.Getenv("SEO_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("SEO_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("SEO_SERVER_ADDR"); v != "" {
		cfg.ServerAddr = v
	}
}

// Validate checks the settings the server cannot start without.
func (c Config) Validate() error {
	if c.LLM.APIKey == "" {
		return &Error{Field: c.LLM.APIKeyEnv, Reason: "missing in environment variables"}
	}
	switch c.LLM.Provider {
	case "", "openai":
	case "deepseek":
		// DeepSeek 提供 OpenAI 兼容接口，需填写 base_url。
		if c.LLM.BaseURL == "" {
			return &Error{Field: "llm.base_url", Reason: "required for provider deepseek"}
		}
	default:
		return &Error{Field: "llm.provider", Reason: fmt.Sprintf("%q not supported", c.LLM.Provider)}
	}
	if _, err := c.Timeout(); err != nil {
		return &Error{Field: "request_timeout", Reason: err.Error()}
	}
	return nil
}

// Timeout parses RequestTimeout. Zero means no timeout.
func (c Config) Timeout() (time.Duration, error) {
	if c.RequestTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("must not be negative, got %s", d)
	}
	return d, nil
}
