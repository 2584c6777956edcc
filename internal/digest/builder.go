package digest

import (
	"context"
	"hndigest/internal/domain"
	"hndigest/internal/summarizer"
	"log/slog"
	"time"
)

type StoryLister interface {
	TopStories(ctx context.Context, n int) ([]domain.Story, error)
}

type TextExtractor interface {
	Extract(ctx context.Context, url string) (string, error)
}

// Builder assembles the digest: list stories, then extract and summarize
// each one in turn. Failures degrade the affected field to an empty string.
type Builder struct {
	lister     StoryLister
	extractor  TextExtractor
	summarizer summarizer.Summarizer
	count      int
	log        *slog.Logger
}

// NewBuilder wires the pipeline. A nil summarizer leaves summaries empty.
func NewBuilder(
	lister StoryLister,
	extractor TextExtractor,
	s summarizer.Summarizer,
	count int,
	log *slog.Logger,
) *Builder {
	return &Builder{
		lister:     lister,
		extractor:  extractor,
		summarizer: s,
		count:      count,
		log:        log,
	}
}

// Build never fails: it returns a non-nil, possibly empty, list.
func (b *Builder) Build(ctx context.Context) []domain.Story {
	start := time.Now()

	stories, err := b.lister.TopStories(ctx, b.count)
	if err != nil {
		b.log.ErrorContext(ctx, "Failed to list top stories",
			"error", err,
			"count", b.count,
			"listedCount", len(stories))
	}
	if stories == nil {
		stories = []domain.Story{}
	}

	var extracted, summarized int

	for i := range stories {
		if ctx.Err() != nil {
			b.log.WarnContext(ctx, "Digest context is done",
				"error", ctx.Err(),
				"processedCount", i,
				"storyCount", len(stories))

			break
		}

		b.fillStory(ctx, &stories[i])

		if stories[i].Text != "" {
			extracted++
		}
		if stories[i].Summary != "" {
			summarized++
		}
	}

	b.log.InfoContext(ctx, "Digest is built",
		"storyCount", len(stories),
		"extractedCount", extracted,
		"summarizedCount", summarized,
		"durationSeconds", time.Since(start).Seconds())

	return stories
}

func (b *Builder) fillStory(ctx context.Context, story *domain.Story) {
	text, err := b.extractor.Extract(ctx, story.URL)
	if err != nil {
		b.log.WarnContext(ctx, "Failed to extract story text",
			"error", err,
			"url", story.URL,
			"title", story.Title)

		return
	}

	story.Text = text

	if b.summarizer == nil {
		return
	}

	summary, err := b.summarizer.Summarize(ctx, summarizer.Input{
		Text:      text,
		SourceURL: story.URL,
	})
	if err != nil {
		b.log.ErrorContext(ctx, "Failed to summarize story",
			"error", err,
			"url", story.URL,
			"textLen", len(text))

		return
	}

	story.Summary = summary
}
