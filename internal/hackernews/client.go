package hackernews

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hndigest/internal/config"
	"hndigest/internal/domain"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"mvdan.cc/xurls/v2"
)

const (
	storyType         = "story"
	discussionURLBase = "https://news.ycombinator.com/item?id="
)

var errItemMissing = errors.New("item is missing")

// Item is the subset of the item endpoint payload the digest needs.
type Item struct {
	ID      int64  `json:"id"`
	Type    string `json:"type"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Score   int    `json:"score"`
	Dead    bool   `json:"dead"`
	Deleted bool   `json:"deleted"`
}

// Client talks to the Hacker News Firebase API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	storyURLRe *regexp.Regexp
	log        *slog.Logger
}

// NewClient builds a client for the API rooted at cfg.BaseURL.
func NewClient(cfg config.HackerNewsConfig, log *slog.Logger) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("base URL is empty")
	}

	storyURLRe, err := xurls.StrictMatchingScheme(`https?://`)
	if err != nil {
		return nil, fmt.Errorf("create regexp: %w", err)
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		storyURLRe: storyURLRe,
		log:        log,
	}, nil
}

// TopStories returns up to n stories in listing order. Items that fail to
// load or are not stories are skipped.
func (c *Client) TopStories(ctx context.Context, n int) ([]domain.Story, error) {
	if n <= 0 {
		return []domain.Story{}, nil
	}

	ids, err := c.TopStoryIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("get top story IDs: %w", err)
	}

	stories := make([]domain.Story, 0, n)

	for _, id := range ids {
		if len(stories) == n {
			break
		}
		if ctx.Err() != nil {
			return stories, ctx.Err()
		}

		item, getItemErr := c.Item(ctx, id)
		if getItemErr != nil {
			c.log.WarnContext(ctx, "Skipping item that failed to load",
				"error", getItemErr,
				"itemID", id)

			continue
		}

		story, ok := c.storyFromItem(ctx, item)
		if !ok {
			continue
		}

		stories = append(stories, story)
	}

	return stories, nil
}

// TopStoryIDs returns the ranked IDs from the listing endpoint.
func (c *Client) TopStoryIDs(ctx context.Context) ([]domain.StoryID, error) {
	var ids []domain.StoryID
	if err := c.getJSON(ctx, c.baseURL+"/topstories.json", &ids); err != nil {
		return nil, err
	}

	return ids, nil
}

// Item fetches one item. A null payload is reported as an error.
func (c *Client) Item(ctx context.Context, id domain.StoryID) (*Item, error) {
	itemURL := c.baseURL + "/item/" + strconv.FormatInt(int64(id), 10) + ".json"

	var item *Item
	if err := c.getJSON(ctx, itemURL, &item); err != nil {
		return nil, err
	}
	if item == nil {
		return nil, errItemMissing
	}
	if item.ID == 0 {
		item.ID = int64(id)
	}

	return item, nil
}

func (c *Client) storyFromItem(ctx context.Context, item *Item) (domain.Story, bool) {
	if item.Type != storyType || item.Dead || item.Deleted {
		return domain.Story{}, false
	}

	title := strings.TrimSpace(item.Title)
	if title == "" {
		c.log.WarnContext(ctx, "Skipping story with empty title",
			"itemID", item.ID)

		return domain.Story{}, false
	}

	storyURL, ok := c.storyURL(item.URL)
	if !ok {
		storyURL = DiscussionURL(item.ID)
		if raw := strings.TrimSpace(item.URL); raw != "" {
			c.log.WarnContext(ctx, "Invalid story URL",
				"itemID", item.ID,
				"url", raw,
				"fallbackURL", storyURL)
		}
	}

	return domain.Story{
		Title: title,
		URL:   storyURL,
		Score: item.Score,
	}, true
}

// storyURL returns raw unchanged when it is an absolute http(s) URL.
// Otherwise it tries to recover the first such URL embedded in raw.
func (c *Client) storyURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	if isHTTPURL(raw) {
		return raw, true
	}

	if found := c.storyURLRe.FindString(raw); found != "" && isHTTPURL(found) {
		return found, true
	}

	return "", false
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}

	return u.Scheme == "http" || u.Scheme == "https"
}

// DiscussionURL points at the item's comments page on news.ycombinator.com.
func DiscussionURL(id int64) string {
	return discussionURLBase + strconv.FormatInt(id, 10)
}

func (c *Client) getJSON(ctx context.Context, rawURL string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			c.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"url", rawURL)
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("do request: unexpected status: %d", resp.StatusCode)
	}

	if err = json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
