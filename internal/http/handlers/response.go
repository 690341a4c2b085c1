// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the standard response envelopes. Every creation and
// lookup response reports `ok` so clients can branch without inspecting
// status codes, mirroring the `{ok, entry}` contract of the card API; error
// responses additionally carry a stable machine-readable `code` and the
// request correlation ID.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-card-backend/internal/domain"
	"github.com/tbourn/go-card-backend/internal/http/middleware"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	// OK is always false for errors.
	OK bool `json:"ok" example:"false"`
	// RequestID correlates server logs and client errors.
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Code is a stable, machine-readable code (see errors.go constants).
	Code string `json:"code" example:"conflict"`
	// Message is a human-readable description, safe to show to users.
	Message string `json:"message" example:"name already in use"`
}

// CardResponse wraps a single card for creation and fetch endpoints.
type CardResponse struct {
	OK    bool         `json:"ok" example:"true"`
	Entry *domain.Card `json:"entry"`
	// ShareURL is the visitor-facing link for the card, present when the
	// card has a slug.
	ShareURL string `json:"share_url,omitempty" example:"https://cards.example.com/sam"`
}

// ResolveResponse wraps slug resolution. A miss is not an error: the
// endpoint answers 200 with found=false and no entry.
type ResolveResponse struct {
	OK    bool         `json:"ok" example:"true"`
	Found bool         `json:"found" example:"true"`
	Entry *domain.Card `json:"entry,omitempty"`
}

// fail aborts the request with a structured error and logs server-side errors.
func fail(c *gin.Context, status int, code, msg string) {
	resp := ErrorResponse{
		OK:        false,
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	}

	// Log 5xx (server-side) with request-scoped logger
	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		lg.Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail(), for use by router fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}
