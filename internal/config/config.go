// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration accepts human-readable YAML scalars like "30s" or "5m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token   string `yaml:"token"`
	Mode    string `yaml:"mode"`    // polling | webhook (future)
	Workers int    `yaml:"workers"` // concurrent update handlers
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AdminConfig struct {
	Port     int      `yaml:"port"`
	Secret   string   `yaml:"secret"`    // login secret; empty disables the admin API
	TokenTTL Duration `yaml:"token_ttl"` // session token lifetime
}

type RedisConfig struct {
	URL      string `yaml:"url"` // empty disables rate limiting
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AIConfig struct {
	GeminiKey       string `yaml:"gemini_key"`
	GeminiURL       string `yaml:"gemini_url"` // override for proxies; empty uses the public endpoint
	GeminiModel     string `yaml:"gemini_model"`
	OpenAIKey       string `yaml:"openai_key"`
	OpenAIURL       string `yaml:"openai_url"`
	OpenAIModel     string `yaml:"openai_model"`
	ConcurrentLimit int    `yaml:"concurrent_limit"` // max concurrent extraction calls
	MaxPromptTokens int    `yaml:"max_prompt_tokens"`
	MaxOutputTokens int    `yaml:"max_output_tokens"`
}

type SchedulerConfig struct {
	QueueSize     int      `yaml:"queue_size"` // delivery channel buffer
	Senders       int      `yaml:"senders"`    // concurrent delivery senders
	SendTimeout   Duration `yaml:"send_timeout"`
	StatsInterval Duration `yaml:"stats_interval"`
}

type Config struct {
	Bot       BotConfig       `yaml:"bot"`
	Log       LogConfig       `yaml:"log"`
	Admin     AdminConfig     `yaml:"admin"`
	Redis     RedisConfig     `yaml:"redis"`
	AI        AIConfig        `yaml:"ai"`
	Scheduler SchedulerConfig `yaml:"scheduler"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// environment overrides; secrets usually arrive this way in deployment
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Bot.Token = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.AI.GeminiKey = v
	} else if v := os.Getenv("GOOGLE_API_KEY"); v != "" {
		cfg.AI.GeminiKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.AI.OpenAIKey = v
	}
	if v := os.Getenv("ADMIN_API_SECRET"); v != "" {
		cfg.Admin.Secret = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}

	// defaults
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.AI.GeminiModel == "" {
		cfg.AI.GeminiModel = "gemini-2.0-flash"
	}
	if cfg.AI.OpenAIModel == "" {
		cfg.AI.OpenAIModel = "gpt-4o-mini"
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 8
	}
	if cfg.AI.MaxPromptTokens <= 0 {
		cfg.AI.MaxPromptTokens = 4096
	}
	if cfg.AI.MaxOutputTokens <= 0 {
		cfg.AI.MaxOutputTokens = 256
	}
	if cfg.Scheduler.QueueSize <= 0 {
		cfg.Scheduler.QueueSize = 64
	}
	if cfg.Scheduler.Senders <= 0 {
		cfg.Scheduler.Senders = 2
	}
	if cfg.Scheduler.SendTimeout <= 0 {
		cfg.Scheduler.SendTimeout = Duration(30 * time.Second)
	}
	if cfg.Scheduler.StatsInterval <= 0 {
		cfg.Scheduler.StatsInterval = Duration(time.Minute)
	}
	if cfg.Admin.TokenTTL <= 0 {
		cfg.Admin.TokenTTL = Duration(30 * time.Minute)
	}
	if cfg.Admin.Secret != "" && cfg.Admin.Port == 0 {
		cfg.Admin.Port = 8080
	}

	// Minimal validation
	if cfg.Bot.Token == "" {
		return nil, errors.New("bot.token is required (or set TELEGRAM_BOT_TOKEN)")
	}
	if cfg.AI.GeminiKey == "" && cfg.AI.OpenAIKey == "" {
		return nil, errors.New("an AI provider is required: set ai.gemini_key or ai.openai_key")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
