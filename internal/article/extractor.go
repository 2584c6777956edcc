package article

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"hndigest/internal/config"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"

	boilerplateSelector = "script, style, noscript, template, iframe, svg, form, nav, aside, header, footer"
)

// Extraction failures. Transport timeouts wrap ErrTimeout.
var (
	ErrTimeout                = errors.New("request timed out")
	ErrUnexpectedStatus       = errors.New("unexpected status")
	ErrUnsupportedContentType = errors.New("unsupported content type")
	ErrNoText                 = errors.New("no extractable text")
)

// Extractor downloads a page and returns the text of its main content.
type Extractor struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	log        *slog.Logger
}

func NewExtractor(cfg config.ArticleConfig, log *slog.Logger) *Extractor {
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Extractor{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		userAgent:  userAgent,
		maxBytes:   cfg.MaxBytes,
		log:        log,
	}
}

// Extract returns the readable text of the page at rawURL. Visible text
// nodes are joined with a trailing space after each one.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (string, error) {
	pageURL, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("parse URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := e.httpClient.Do(req) //nolint:gosec // Story URL
	if err != nil {
		return "", fmt.Errorf("do request: %w", classify(err))
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			e.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"url", rawURL,
				"operation", "Extract")
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !isHTMLMediaType(contentType) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedContentType, contentType)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", classify(err))
	}

	if contentType == "" {
		if sniffed := http.DetectContentType(body); !isHTMLMediaType(sniffed) {
			return "", fmt.Errorf("%w: %s (sniffed)", ErrUnsupportedContentType, sniffed)
		}
	}

	text := extractText(body, pageURL)
	if text == "" {
		return "", ErrNoText
	}

	return text, nil
}

func classify(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}

	return err
}

func isHTMLMediaType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

// extractText prefers the block readability picks and falls back to the
// whole document when readability finds nothing.
func extractText(body []byte, pageURL *url.URL) string {
	if parsed, err := readability.FromReader(bytes.NewReader(body), pageURL); err == nil {
		if text := textFromHTML(parsed.Content); text != "" {
			return text
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	doc.Find(boilerplateSelector).Remove()

	for _, selector := range []string{"article", "main", "body"} {
		if text := visibleText(doc.Find(selector).First()); text != "" {
			return text
		}
	}

	return ""
}

func textFromHTML(content string) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return ""
	}

	doc.Find(boilerplateSelector).Remove()

	return visibleText(doc.Find("body"))
}

func visibleText(sel *goquery.Selection) string {
	var builder strings.Builder
	writeText(sel, &builder)

	return builder.String()
}

func writeText(sel *goquery.Selection, builder *strings.Builder) {
	sel.Contents().Each(func(_ int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "#text":
			text := strings.Join(strings.Fields(s.Text()), " ")
			if text != "" {
				builder.WriteString(text)
				builder.WriteString(" ")
			}
		case "#comment":
		default:
			writeText(s, builder)
		}
	})
}
