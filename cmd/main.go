package main

import (
	"context"
	"errors"
	"hndigest/internal/api"
	"hndigest/internal/article"
	"hndigest/internal/config"
	"hndigest/internal/digest"
	"hndigest/internal/hackernews"
	"hndigest/internal/summarizer"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const readHeaderTimeout = 10 * time.Second

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	start := time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.WarnContext(ctx, "Failed to load .env file",
			"error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.ErrorContext(ctx, "Failed to load config",
			"error", err)

		return
	}

	gin.SetMode(cfg.GinMode)

	hn, err := hackernews.NewClient(cfg.HackerNews, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize Hacker News client",
			"error", err,
			"baseURL", cfg.HackerNews.BaseURL)

		return
	}

	extractor := article.NewExtractor(cfg.Article, log)
	s := initOpenAISummarizer(ctx, cfg.OpenAI, log)
	builder := digest.NewBuilder(hn, extractor, s, cfg.StoryCount, log)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.NewRouter(builder, cfg.AllowedOrigins, log),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErrCh := make(chan error, 1)
	go func() {
		if serveErr := server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			serveErrCh <- serveErr
		}
		close(serveErrCh)
	}()
	log.InfoContext(ctx, "Server is started",
		"addr", cfg.Addr,
		"storyCount", cfg.StoryCount,
		"allowedOriginsCount", len(cfg.AllowedOrigins))

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-c:
		log.InfoContext(ctx, "Shutdown signal is received",
			"signal", sig.String())
	case serveErr := <-serveErrCh:
		log.ErrorContext(ctx, "Server failed",
			"error", serveErr,
			"addr", cfg.Addr)
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err = server.Shutdown(shutdownCtx); err != nil {
		log.ErrorContext(shutdownCtx, "Failed to shut down server",
			"error", err,
			"shutdownTimeout", cfg.ShutdownTimeout)
	}

	log.InfoContext(shutdownCtx, "Server is stopped",
		"uptimeSeconds", time.Since(start).Seconds())
}

func initOpenAISummarizer(
	ctx context.Context,
	cfg config.OpenAIConfig,
	log *slog.Logger,
) summarizer.Summarizer {
	if cfg.APIKey == "" {
		log.WarnContext(ctx, "OPENAI_API_KEY is missing so summaries will be empty",
			"envVar", "OPENAI_API_KEY")

		return nil
	}

	s, err := summarizer.NewOpenAISummarizer(cfg)
	if err != nil {
		log.ErrorContext(ctx, "Failed to create OpenAI summarizer so summaries will be empty",
			"error", err,
			"envVar", "OPENAI_API_KEY")

		return nil
	}

	log.InfoContext(ctx, "OpenAI summarizer is initialized",
		"provider", "openai",
		"model", cfg.Model,
		"baseURL", cfg.BaseURL)

	return s
}
