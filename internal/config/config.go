package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Addr            string        `env:"ADDR"             envDefault:":8080"`
	GinMode         string        `env:"GIN_MODE"         envDefault:"release"`
	StoryCount      int           `env:"STORY_COUNT"      envDefault:"10"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS"  envSeparator:","`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	HackerNews HackerNewsConfig `envPrefix:"HN_"`
	Article    ArticleConfig    `envPrefix:"ARTICLE_"`
	OpenAI     OpenAIConfig     `envPrefix:"OPENAI_"`
}

type HackerNewsConfig struct {
	BaseURL string        `env:"BASE_URL" envDefault:"https://hacker-news.firebaseio.com/v0"`
	Timeout time.Duration `env:"TIMEOUT"  envDefault:"10s"`
}

type ArticleConfig struct {
	Timeout   time.Duration `env:"TIMEOUT"    envDefault:"10s"`
	MaxBytes  int64         `env:"MAX_BYTES"  envDefault:"5242880"`
	UserAgent string        `env:"USER_AGENT"`
}

type OpenAIConfig struct {
	APIKey              string        `env:"API_KEY"`
	BaseURL             string        `env:"BASE_URL"              envDefault:"https://api.openai.com/v1"`
	ChatCompletionsPath string        `env:"CHAT_COMPLETIONS_PATH" envDefault:"chat-completions"`
	Model               string        `env:"MODEL"                 envDefault:"gpt-5-mini"`
	Timeout             time.Duration `env:"TIMEOUT"               envDefault:"60s"`
	MaxInputChars       int           `env:"MAX_INPUT_CHARS"       envDefault:"12000"`
	MaxOutputTokens     int64         `env:"MAX_OUTPUT_TOKENS"     envDefault:"1024"`
}

// Load reads the configuration from the environment and validates it.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err = cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate: %w", err)
	}

	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	if c.StoryCount <= 0 {
		errs = append(errs, fmt.Errorf("STORY_COUNT must be positive (got %d)", c.StoryCount))
	}
	for _, origin := range c.AllowedOrigins {
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			errs = append(errs, fmt.Errorf("ALLOWED_ORIGINS entry %q must start with http:// or https://", origin))
		}
	}
	if c.HackerNews.BaseURL == "" {
		errs = append(errs, errors.New("HN_BASE_URL is empty"))
	}
	if c.HackerNews.Timeout <= 0 {
		errs = append(errs, errors.New("HN_TIMEOUT must be positive"))
	}
	if c.Article.Timeout <= 0 {
		errs = append(errs, errors.New("ARTICLE_TIMEOUT must be positive"))
	}
	if c.Article.MaxBytes <= 0 {
		errs = append(errs, errors.New("ARTICLE_MAX_BYTES must be positive"))
	}
	if c.OpenAI.BaseURL == "" {
		errs = append(errs, errors.New("OPENAI_BASE_URL is empty"))
	}
	if c.OpenAI.Model == "" {
		errs = append(errs, errors.New("OPENAI_MODEL is empty"))
	}

	return errors.Join(errs...)
}
