// Package config loads the application configuration from an optional YAML
// file, an optional .env file and the process environment, in that order of
// increasing precedence.
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

type Config struct {
	AppEnv             string        `yaml:"app_env"`
	LogLevel           string        `yaml:"log_level"`
	ServerAddr         string        `yaml:"server_addr"`
	RateLimitPerMinute int           `yaml:"rate_limit_per_minute"`
	LLM                LLMConfig     `yaml:"llm"`
	Storage            StorageConfig `yaml:"storage"`
	Notify             NotifyConfig  `yaml:"notify"`
}

// LLMConfig selects and configures the text generation provider.
type LLMConfig struct {
	Provider string        `yaml:"provider"` // openai, deepseek, gemini or mock
	Model    string        `yaml:"model"`
	APIKey   string        `yaml:"api_key"`
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
}

// StorageConfig selects where saved drafts go.
type StorageConfig struct {
	Driver      string `yaml:"driver"` // file or postgres
	Dir         string `yaml:"dir"`
	DatabaseURL string `yaml:"database_url"`
}

type NotifyConfig struct {
	Window         time.Duration `yaml:"window"`
	TelegramToken  string        `yaml:"telegram_token"`
	TelegramChatID int64         `yaml:"telegram_chat_id"`
}

// Load reads path (missing file is fine), applies environment overrides and
// defaults, and validates the result. Warnings about ignored inputs are
// returned alongside the config.
func Load(path string) (Config, []string, error) {
	_ = godotenv.Load()

	var cfg Config
	var warnings []string
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			warnings = append(warnings, fmt.Sprintf("config file %s not found, using environment and defaults", path))
		case err != nil:
			return Config{}, nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	w, err := applyEnv(&cfg)
	if err != nil {
		return Config{}, nil, err
	}
	warnings = append(warnings, w...)
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, nil, err
	}
	return cfg, warnings, nil
}

func applyEnv(cfg *Config) ([]string, error) {
	var warnings []string
	setString(&cfg.AppEnv, "NEXLETTER_ENV")
	setString(&cfg.LogLevel, "NEXLETTER_LOG_LEVEL")
	setString(&cfg.ServerAddr, "NEXLETTER_ADDR")
	setString(&cfg.LLM.Provider, "NEXLETTER_LLM_PROVIDER")
	setString(&cfg.LLM.Model, "NEXLETTER_LLM_MODEL")
	setString(&cfg.LLM.BaseURL, "NEXLETTER_LLM_BASE_URL")
	setString(&cfg.Storage.Driver, "NEXLETTER_STORAGE_DRIVER")
	setString(&cfg.Storage.Dir, "NEXLETTER_STORAGE_DIR")
	setString(&cfg.Storage.DatabaseURL, "DATABASE_URL")
	setString(&cfg.Notify.TelegramToken, "TELEGRAM_BOT_TOKEN")

	if cfg.LLM.APIKey == "" {
		switch strings.ToLower(cfg.LLM.Provider) {
		case "gemini":
			setString(&cfg.LLM.APIKey, "GEMINI_API_KEY")
		case "deepseek":
			setString(&cfg.LLM.APIKey, "DEEPSEEK_API_KEY")
		default:
			setString(&cfg.LLM.APIKey, "OPENAI_API_KEY")
		}
	}
	setString(&cfg.LLM.APIKey, "NEXLETTER_LLM_API_KEY")

	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.Notify.TelegramChatID = id
	}
	if v := os.Getenv("NEXLETTER_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitPerMinute = n
		} else {
			warnings = append(warnings, fmt.Sprintf("ignoring NEXLETTER_RATE_LIMIT_PER_MINUTE=%q: %v", v, err))
		}
	}
	if v := os.Getenv("NEXLETTER_LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.LLM.Timeout = d
		} else {
			warnings = append(warnings, fmt.Sprintf("ignoring NEXLETTER_LLM_TIMEOUT=%q: %v", v, err))
		}
	}
	return warnings, nil
}

func applyDefaults(cfg *Config) {
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}
	if cfg.ServerAddr == "" {
		cfg.ServerAddr = ":8080"
	}
	if cfg.RateLimitPerMinute == 0 {
		cfg.RateLimitPerMinute = 30
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "mock"
	}
	cfg.LLM.Provider = strings.ToLower(cfg.LLM.Provider)
	if cfg.LLM.Model == "" {
		switch cfg.LLM.Provider {
		case "openai":
			cfg.LLM.Model = "gpt-4o-mini"
		case "gemini":
			cfg.LLM.Model = "gemini-2.5-flash"
		case "deepseek":
			cfg.LLM.Model = "deepseek-chat"
		}
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 60 * time.Second
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "file"
	}
	if cfg.Storage.Dir == "" {
		cfg.Storage.Dir = "drafts"
	}
	if cfg.Notify.Window == 0 {
		cfg.Notify.Window = 3 * time.Second
	}
}

// Validate checks settings that would otherwise fail later at startup.
func (c Config) Validate() error {
	switch c.LLM.Provider {
	case "openai", "gemini":
	case "deepseek":
		// DeepSeek only offers an OpenAI compatible endpoint
		if c.LLM.BaseURL == "" {
			return errors.New("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
	case "mock":
		return c.validateStorage()
	default:
		return fmt.Errorf("llm provider %s not supported", c.LLM.Provider)
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("llm provider %s requires an api key", c.LLM.Provider)
	}
	return c.validateStorage()
}

func (c Config) validateStorage() error {
	switch c.Storage.Driver {
	case "file":
		return nil
	case "postgres":
		if c.Storage.DatabaseURL == "" {
			return errors.New("storage driver postgres requires database_url or DATABASE_URL")
		}
		return nil
	}
	return fmt.Errorf("storage driver %s not supported", c.Storage.Driver)
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
