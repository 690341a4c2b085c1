// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging, panic recovery, metrics, compression,
// CORS, security headers, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-card-backend/internal/config"
	"github.com/tbourn/go-card-backend/internal/domain"
	"github.com/tbourn/go-card-backend/internal/http/handlers"
	"github.com/tbourn/go-card-backend/internal/http/middleware"
	"github.com/tbourn/go-card-backend/internal/media"
	"github.com/tbourn/go-card-backend/internal/repo"
	"github.com/tbourn/go-card-backend/internal/services"
)

// cardRepoShim adapts the repository free functions to the services.CardRepo
// interface expected by the CardService. This keeps services decoupled from
// the concrete repo package while reusing existing functions.
type cardRepoShim struct{}

// CreateCard proxies repo.CreateCard.
func (cardRepoShim) CreateCard(ctx context.Context, db *gorm.DB, card *domain.Card) (*domain.Card, error) {
	return repo.CreateCard(ctx, db, card)
}

// SlugExists proxies repo.SlugExists.
func (cardRepoShim) SlugExists(ctx context.Context, db *gorm.DB, slug string) (bool, error) {
	return repo.SlugExists(ctx, db, slug)
}

// GetCard proxies repo.GetCard.
func (cardRepoShim) GetCard(ctx context.Context, db *gorm.DB, id string) (*domain.Card, error) {
	return repo.GetCard(ctx, db, id)
}

// FindCardBySlug proxies repo.FindCardBySlug.
func (cardRepoShim) FindCardBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Card, error) {
	return repo.FindCardBySlug(ctx, db, slug)
}

// CountCards proxies repo.CountCards (pagination support).
func (cardRepoShim) CountCards(ctx context.Context, db *gorm.DB) (int64, error) {
	return repo.CountCards(ctx, db)
}

// ListCardsPage proxies repo.ListCardsPage (pagination support).
func (cardRepoShim) ListCardsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Card, error) {
	return repo.ListCardsPage(ctx, db, offset, limit)
}

// newIngestor builds the media ingest chain from configuration: a hosted
// target when MEDIA_UPLOAD_URL is set, otherwise the local disk fallback.
func newIngestor(cfg config.Config) *media.Ingestor {
	ing := &media.Ingestor{}
	if cfg.Media.UploadURL != "" {
		ing.Host = media.NewHostClient(cfg.Media.UploadURL, cfg.Media.UploadPreset, cfg.Media.Timeout)
		return ing
	}
	if cfg.UploadDir != "" {
		ing.Local = &media.DiskStore{Dir: cfg.UploadDir, PublicPath: cfg.UploadsPath}
	}
	return ing
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), compression, rate
// limiting, CORS and security headers, health and metrics endpoints, the
// versioned public API under /api/v*, and the visitor reveal page served for
// unmatched single-segment GET paths.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured request logs
//  4. Recovery: capture panics after logger
//  5. Body size limiter (bounded, but large enough for encoded media)
//  6. Gzip compression
//  7. Metrics
//  8. Rate limiter (per client IP)
//  9. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging
	r.Use(middleware.Logger())

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit; creation payloads may carry base64 media.
	r.Use(limitBody(cfg.MaxUploadBytes))

	// 6) Compression (metrics output stays uncompressed for scrapers)
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Token-bucket rate limiter per client IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByClientIP())
	r.Use(rl.Handler())

	// 9) CORS posture (safe defaults: allow all if none configured)
	corsHeaders := []string{"Origin", "Content-Type", "Accept", "X-Client-ID", "Idempotency-Key", "If-None-Match"}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     corsHeaders,
			ExposeHeaders:    []string{"X-Request-ID", "ETag", "Idempotency-Replayed", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     corsHeaders,
			ExposeHeaders:    []string{"X-Request-ID", "ETag", "Idempotency-Replayed", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// API docs (opt-in)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Locally stored media (only when the hosted path is disabled)
	if cfg.Media.UploadURL == "" && cfg.UploadDir != "" {
		r.Static(cfg.UploadsPath, cfg.UploadDir)
	}

	// Dependency injection: services ← repo/db/media
	cardSvc := services.NewCardService(db, cardRepoShim{}, newIngestor(cfg))
	h := handlers.New(cardSvc, db, cfg.ShareBaseURL, cfg.IdempotencyTTL)

	// Public API
	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		api.POST("/cards", h.CreateCard)
		api.GET("/cards", h.ListCards)
		api.GET("/cards/:id", h.GetCard)
		api.GET("/cards/:id/qr", h.CardQR)
		api.GET("/cards/slug/:slug", h.ResolveCard)
	}

	// Fallbacks. Unmatched single-segment GET paths are slug candidates and
	// render the reveal page (which itself never 404s); everything else gets
	// the JSON error envelope.
	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method == http.MethodGet && isSlugPath(c.Request.URL.Path) {
			h.CardPage(c)
			return
		}
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})
}

// isSlugPath reports whether path is a single non-empty segment ("/sam"),
// the only shape share links take.
func isSlugPath(path string) bool {
	p := strings.Trim(path, "/")
	return p != "" && !strings.Contains(p, "/")
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
