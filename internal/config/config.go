// Load .env, then the YAML file, then environment overrides, then defaults.

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ProviderService = "service"
	ProviderOpenAI  = "openai"
)

type Config struct {
	Port        string `yaml:"port"`
	DatabaseURL string `yaml:"database_url"`
	RedisURL    string `yaml:"redis_url"`
	LogMode     string `yaml:"log_mode"`
	ChromePath  string `yaml:"chrome_path"`
	OtelEnabled bool   `yaml:"otel_enabled"`
	AI          AI     `yaml:"ai"`
}

type AI struct {
	Provider      string        `yaml:"provider"`
	ServiceURL    string        `yaml:"service_url"`
	Timeout       time.Duration `yaml:"timeout"`
	Language      string        `yaml:"language"`
	OpenAIKey     string        `yaml:"openai_api_key"`
	OpenAIModel   string        `yaml:"openai_model"`
	OpenAIBaseURL string        `yaml:"openai_base_url"`
}

// Load reads configuration from the environment (and .env / YAML when
// present) and fails fast on anything required that is missing.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = "configs/config.yaml"
	}
	if err := loadFile(path, cfg); err != nil {
		return nil, err
	}

	applyEnv(cfg)
	if err := applyDurationEnv(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Port, "PORT")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.RedisURL, "REDIS_URL")
	setString(&cfg.LogMode, "LOG_MODE")
	setString(&cfg.ChromePath, "CHROME_PATH")
	setString(&cfg.AI.Provider, "AI_PROVIDER")
	setString(&cfg.AI.ServiceURL, "AI_SERVICE_URL")
	setString(&cfg.AI.Language, "LANGUAGE")
	setString(&cfg.AI.OpenAIKey, "OPENAI_API_KEY")
	setString(&cfg.AI.OpenAIModel, "OPENAI_MODEL")
	setString(&cfg.AI.OpenAIBaseURL, "OPENAI_BASE_URL")

	switch strings.ToLower(strings.TrimSpace(os.Getenv("OTEL_ENABLED"))) {
	case "1", "true", "yes", "on":
		cfg.OtelEnabled = true
	case "0", "false", "no", "off":
		cfg.OtelEnabled = false
	}
}

func applyDurationEnv(cfg *Config) error {
	v := strings.TrimSpace(os.Getenv("AI_TIMEOUT"))
	if v == "" {
		return nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		cfg.AI.Timeout = time.Duration(secs) * time.Second
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid AI_TIMEOUT %q: %w", v, err)
	}
	cfg.AI.Timeout = d
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Port == "" {
		cfg.Port = "3000"
	}
	if cfg.LogMode == "" {
		cfg.LogMode = "dev"
	}
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = ProviderService
	}
	if cfg.AI.ServiceURL == "" {
		cfg.AI.ServiceURL = "http://ai-service:8000"
	}
	if cfg.AI.Timeout <= 0 {
		cfg.AI.Timeout = 60 * time.Second
	}
	if cfg.AI.Language == "" {
		cfg.AI.Language = "english"
	}
	if cfg.AI.OpenAIModel == "" {
		cfg.AI.OpenAIModel = "gpt-4o-mini"
	}
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	switch c.AI.Provider {
	case ProviderService:
	case ProviderOpenAI:
		if c.AI.OpenAIKey == "" {
			return errors.New("OPENAI_API_KEY is required when AI_PROVIDER=openai")
		}
	default:
		return fmt.Errorf("unknown AI_PROVIDER %q", c.AI.Provider)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}
