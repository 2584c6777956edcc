package summarizer

import (
	"context"
	"errors"
	"fmt"
	"hndigest/internal/config"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	defaultChatCompletionsPath = "chat/completions"

	systemPrompt = `Summarize the article in a concise paragraph.

Rules:
- 2-3 sentences, at most 80 words.
- Keep the core idea and critical context (names, numbers, dates).
- Neutral tone, no lists, no opinions.
- Ignore navigation, cookie banners and other page boilerplate.
- Output plain text in the same language as the input.`
)

var (
	ErrEmptyInput        = errors.New("input is empty")
	ErrMalformedResponse = errors.New("malformed completion response")
)

// OpenAISummarizer calls an OpenAI-compatible chat-completion endpoint.
type OpenAISummarizer struct {
	client          openai.Client
	path            string
	model           string
	maxInputChars   int
	maxOutputTokens int64
}

// NewOpenAISummarizer builds a new summarizer instance. Requests are never
// retried.
func NewOpenAISummarizer(cfg config.OpenAIConfig) (*OpenAISummarizer, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("API key is empty")
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, errors.New("model is empty")
	}

	path := strings.Trim(strings.TrimSpace(cfg.ChatCompletionsPath), "/")
	if path == "" {
		path = defaultChatCompletionsPath
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(baseURL, "/")+"/"))
	}

	return &OpenAISummarizer{
		client:          openai.NewClient(opts...),
		path:            path,
		model:           model,
		maxInputChars:   cfg.MaxInputChars,
		maxOutputTokens: cfg.MaxOutputTokens,
	}, nil
}

// Summarize sends one chat-completion request and returns the first
// choice's content.
func (s *OpenAISummarizer) Summarize(
	ctx context.Context,
	input Input,
) (string, error) {
	text := truncate(strings.TrimSpace(input.Text), s.maxInputChars)
	if text == "" {
		return "", ErrEmptyInput
	}

	userPromptBuilder := strings.Builder{}
	if sourceURL := strings.TrimSpace(input.SourceURL); sourceURL != "" {
		userPromptBuilder.WriteString("Source:\n")
		userPromptBuilder.WriteString(sourceURL)
		userPromptBuilder.WriteString("\n")
	}
	userPromptBuilder.WriteString("Content:\n")
	userPromptBuilder.WriteString(text)

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPromptBuilder.String()),
		},
	}
	if s.maxOutputTokens > 0 {
		params.MaxCompletionTokens = openai.Int(s.maxOutputTokens)
	}

	var completion openai.ChatCompletion
	if err := s.client.Post(ctx, s.path, params, &completion); err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrMalformedResponse)
	}

	summary := strings.TrimSpace(completion.Choices[0].Message.Content)
	if summary == "" {
		return "", fmt.Errorf(
			"%w: content is missing (finishReason = %s)",
			ErrMalformedResponse,
			completion.Choices[0].FinishReason,
		)
	}

	return summary, nil
}

func truncate(text string, maxChars int) string {
	if maxChars <= 0 {
		return text
	}

	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}

	return strings.TrimSpace(string(runes[:maxChars]))
}
