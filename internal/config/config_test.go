package config_test

import (
	"hndigest/internal/config"
	"os"
	"strings"
	"testing"
	"time"
)

var configEnvVars = []string{
	"ADDR", "GIN_MODE", "STORY_COUNT", "ALLOWED_ORIGINS", "SHUTDOWN_TIMEOUT",
	"HN_BASE_URL", "HN_TIMEOUT",
	"ARTICLE_TIMEOUT", "ARTICLE_MAX_BYTES", "ARTICLE_USER_AGENT",
	"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_CHAT_COMPLETIONS_PATH", "OPENAI_MODEL",
	"OPENAI_TIMEOUT", "OPENAI_MAX_INPUT_CHARS", "OPENAI_MAX_OUTPUT_TOKENS",
}

// clearEnv unsets every config variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()

	for _, key := range configEnvVars {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unset %s: %v", key, err)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORY_COUNT", "99")
	t.Setenv("OPENAI_CHAT_COMPLETIONS_PATH", "v2/complete")
	clearEnv(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Addr != ":8080" {
		t.Errorf("unexpected addr: %q", cfg.Addr)
	}
	if cfg.StoryCount != 10 {
		t.Errorf("unexpected story count: %d", cfg.StoryCount)
	}
	if cfg.HackerNews.BaseURL != "https://hacker-news.firebaseio.com/v0" {
		t.Errorf("unexpected HN base URL: %q", cfg.HackerNews.BaseURL)
	}
	if cfg.OpenAI.ChatCompletionsPath != "chat-completions" {
		t.Errorf("unexpected chat completions path: %q", cfg.OpenAI.ChatCompletionsPath)
	}
	if cfg.Article.Timeout != 10*time.Second {
		t.Errorf("unexpected article timeout: %v", cfg.Article.Timeout)
	}
	if len(cfg.AllowedOrigins) != 0 {
		t.Errorf("expected no allowed origins, got %v", cfg.AllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORY_COUNT", "3")
	t.Setenv("ALLOWED_ORIGINS", "http://a.example,http://b.example")
	t.Setenv("HN_BASE_URL", "http://hn.local/v0")
	t.Setenv("ARTICLE_TIMEOUT", "250ms")
	t.Setenv("OPENAI_API_KEY", "secret")
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.StoryCount != 3 {
		t.Errorf("unexpected story count: %d", cfg.StoryCount)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://b.example" {
		t.Errorf("unexpected allowed origins: %v", cfg.AllowedOrigins)
	}
	if cfg.HackerNews.BaseURL != "http://hn.local/v0" {
		t.Errorf("unexpected HN base URL: %q", cfg.HackerNews.BaseURL)
	}
	if cfg.Article.Timeout != 250*time.Millisecond {
		t.Errorf("unexpected article timeout: %v", cfg.Article.Timeout)
	}
	if cfg.OpenAI.APIKey != "secret" || cfg.OpenAI.Model != "gpt-4o-mini" {
		t.Errorf("unexpected OpenAI config: %+v", cfg.OpenAI)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORY_COUNT", "0")
	t.Setenv("ARTICLE_MAX_BYTES", "-1")

	_, err := config.Load()
	if err == nil {
		t.Fatalf("expected validation error")
	}

	for _, want := range []string{"STORY_COUNT", "ARTICLE_MAX_BYTES"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected error to mention %s, got %v", want, err)
		}
	}
}

func TestLoadRejectsMalformedDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("HN_TIMEOUT", "soon")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoadRejectsBareOrigin(t *testing.T) {
	clearEnv(t)
	t.Setenv("ALLOWED_ORIGINS", "example.com")

	_, err := config.Load()
	if err == nil || !strings.Contains(err.Error(), "ALLOWED_ORIGINS") {
		t.Fatalf("expected ALLOWED_ORIGINS validation error, got %v", err)
	}
}
