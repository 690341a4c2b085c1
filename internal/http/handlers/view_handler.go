// Visitor-facing reveal page.
//
// GET /{slug} renders the greeting card behind an envelope the visitor taps
// through (closed → opening → open). An unresolved slug renders the same
// page in its empty state: visitors never see an error page for a missing
// card.
package handlers

import (
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-card-backend/internal/http/middleware"
)

//go:embed templates/card.html
var cardPageFS embed.FS

var cardPageTmpl = template.Must(template.ParseFS(cardPageFS, "templates/card.html"))

// cardPageData is the template payload for the reveal page.
type cardPageData struct {
	Found    bool
	Name     string
	Message  string
	ImageURL string
	AudioURL string
}

// CardPage resolves the request path as a slug and renders the reveal page.
// Resolution misses and lookup errors both fall back to the empty envelope;
// errors are logged but never surfaced to the visitor.
func (h *Handlers) CardPage(c *gin.Context) {
	candidate := strings.Trim(c.Request.URL.Path, "/")

	data := cardPageData{}
	card, err := h.cardSvc.Resolve(c.Request.Context(), candidate)
	if err != nil {
		middleware.LoggerFrom(c).Error().Err(err).Str("slug", candidate).Msg("card page lookup failed")
	} else if card != nil {
		data.Found = true
		if card.Name != nil {
			data.Name = *card.Name
		}
		if card.Message != nil {
			data.Message = *card.Message
		}
		if card.ImageURL != nil {
			data.ImageURL = *card.ImageURL
		}
		if card.AudioURL != nil {
			data.AudioURL = *card.AudioURL
		}
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := cardPageTmpl.Execute(c.Writer, data); err != nil {
		middleware.LoggerFrom(c).Error().Err(err).Msg("card page render failed")
	}
}
