package api

import (
	"context"
	"hndigest/internal/domain"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Digester interface {
	Build(ctx context.Context) []domain.Story
}

func NewRouter(d Digester, allowedOrigins []string, log *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))

	if len(allowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: allowedOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodOptions},
			AllowHeaders: []string{"Origin", "Content-Type"},
			MaxAge:       12 * time.Hour,
		}))
	}

	h := &handler{digest: d}
	r.GET("/", h.getStories)
	r.GET("/health", h.getHealth)

	return r
}

type handler struct {
	digest Digester
}

// getStories always answers 200; failed stages show up as empty fields.
func (h *handler) getStories(c *gin.Context) {
	c.JSON(http.StatusOK, h.digest.Build(c.Request.Context()))
}

func (h *handler) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		ctx := c.Request.Context()
		fields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"clientIP", c.ClientIP(),
			"durationSeconds", time.Since(start).Seconds(),
		}

		if len(c.Errors) > 0 {
			log.ErrorContext(ctx, "Request failed", append(fields, "error", c.Errors.String())...)

			return
		}

		log.InfoContext(ctx, "Request is served", fields...)
	}
}
