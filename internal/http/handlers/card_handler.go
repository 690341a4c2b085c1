// Card HTTP handlers.
//
// This file exposes REST endpoints for card resources:
//   - POST   /cards               (create, idempotent via Idempotency-Key)
//   - GET    /cards               (list, paginated, ETag support)
//   - GET    /cards/{id}          (fetch by id)
//   - GET    /cards/{id}/qr       (share link as QR PNG)
//   - GET    /cards/slug/{slug}   (resolve, never 404s)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses (including conditional responses).
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
	"gorm.io/gorm"

	"github.com/tbourn/go-card-backend/internal/domain"
	"github.com/tbourn/go-card-backend/internal/repo"
	"github.com/tbourn/go-card-backend/internal/services"
	"github.com/tbourn/go-card-backend/internal/utils"
)

// CardService defines the card operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type CardService interface {
	// Create runs the full creation flow and returns the persisted card.
	Create(ctx context.Context, in services.CreateInput) (*domain.Card, error)
	// Resolve finds the card matching a slug candidate; a miss is (nil, nil).
	Resolve(ctx context.Context, candidate string) (*domain.Card, error)
	// Get fetches a card by ID.
	Get(ctx context.Context, id string) (*domain.Card, error)
	// ListPage returns a page of cards and the total count.
	ListPage(ctx context.Context, page, pageSize int) ([]domain.Card, int64, error)
}

// Handlers groups the HTTP endpoints for cards and the visitor reveal page.
type Handlers struct {
	cardSvc CardService

	// db backs the idempotency store and listing ETags; both degrade
	// gracefully when nil (tests exercise handlers without a DB).
	db *gorm.DB

	// shareBaseURL is the public origin share links are built on,
	// e.g. "https://cards.example.com".
	shareBaseURL string

	// idempotencyTTL bounds how long a creation replay is honored.
	idempotencyTTL time.Duration
}

// New constructs a Handlers instance bound to the given service.
func New(cardSvc CardService, db *gorm.DB, shareBaseURL string, idempotencyTTL time.Duration) *Handlers {
	return &Handlers{
		cardSvc:        cardSvc,
		db:             db,
		shareBaseURL:   strings.TrimRight(shareBaseURL, "/"),
		idempotencyTTL: idempotencyTTL,
	}
}

// clientID identifies the caller for idempotency scoping. There is no
// authentication in this system, so the "X-Client-ID" header (set by the
// creator UI) is used when present, falling back to the client IP.
func clientID(c *gin.Context) string {
	if h := strings.TrimSpace(c.GetHeader("X-Client-ID")); h != "" {
		return h
	}
	return c.ClientIP()
}

// shareURL builds the visitor-facing link for a card, or "" when the card
// has no slug (nameless cards are reachable by id only).
func (h *Handlers) shareURL(card *domain.Card) string {
	if card == nil || card.Slug == nil || *card.Slug == "" {
		return ""
	}
	return h.shareBaseURL + "/" + *card.Slug
}

//
// DTOs
//

// CreateCardRequest is the JSON payload for creating a card. Per asset,
// a hosted URL from a client-side direct upload takes precedence over an
// encoded payload.
type CreateCardRequest struct {
	// Name is the display name the share slug derives from.
	Name string `json:"name" example:"Sam"`
	// Message is the free-text greeting.
	Message string `json:"message" example:"Happy birthday!"`
	// ImageURL is a hosted image URL obtained via direct upload.
	ImageURL string `json:"image_url" example:"https://res.cloudinary.com/demo/image/upload/cards/images/abc.jpg"`
	// ImageData is an encoded image payload (data URL or plain base64).
	ImageData string `json:"image_data"`
	// AudioURL is a hosted audio URL obtained via direct upload.
	AudioURL string `json:"audio_url"`
	// AudioData is an encoded audio payload (data URL or plain base64).
	AudioData string `json:"audio_data"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListCardsResponse wraps a page of cards and pagination information.
type ListCardsResponse struct {
	Cards      []domain.Card `json:"cards"`
	Pagination Pagination    `json:"pagination"`
}

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

//
// Handlers
//

// CreateCard godoc
// @ID          createCard
// @Summary     Create a greeting card
// @Description Ingests any supplied media, persists the card, and returns it with a share link. Supports safe retries via the Idempotency-Key header (same key → same card).
// @Tags        Cards
// @Accept      json
// @Produce     json
//
// @Param       X-Client-ID      header  string  false "Client identity for idempotency scoping"
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries (UUID recommended)"
// @Param       body             body    handlers.CreateCardRequest  true  "Create card payload"
//
// @Success     201  {object}  handlers.CardResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse  "Name already in use"
// @Failure     502  {object}  handlers.ErrorResponse  "Media ingest failed"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /cards [post]
func (h *Handlers) CreateCard(c *gin.Context) {
	var req CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	ctx := c.Request.Context()

	// Idempotency (replay path).
	idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
	if idemKey != "" && h.db != nil {
		if rec, err := repo.GetIdempotency(ctx, h.db, clientID(c), idemKey, time.Now().UTC()); err == nil && rec != nil {
			if card, err := h.cardSvc.Get(ctx, rec.CardID); err == nil {
				c.Header("Idempotency-Replayed", "true")
				ok(c, rec.Status, CardResponse{OK: true, Entry: card, ShareURL: h.shareURL(card)})
				return
			}
		}
	}

	card, err := h.cardSvc.Create(ctx, services.CreateInput{
		Name:      req.Name,
		Message:   req.Message,
		ImageURL:  req.ImageURL,
		ImageData: req.ImageData,
		AudioURL:  req.AudioURL,
		AudioData: req.AudioData,
	})
	switch {
	case err == nil:
	case errors.Is(err, services.ErrSlugTaken):
		fail(c, http.StatusConflict, ErrCodeConflict, "name already in use")
		return
	case errors.Is(err, services.ErrMediaIngest):
		fail(c, http.StatusBadGateway, ErrCodeIngestFailed, err.Error())
		return
	default:
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}

	// Idempotency (store path) – best effort.
	if idemKey != "" && h.db != nil {
		_, _ = repo.CreateIdempotency(ctx, h.db, clientID(c), idemKey, card.ID, http.StatusCreated, h.idempotencyTTL)
	}

	ok(c, http.StatusCreated, CardResponse{OK: true, Entry: card, ShareURL: h.shareURL(card)})
}

// GetCard godoc
// @ID          getCard
// @Summary     Fetch a card by ID
// @Description Returns a single card. This is the only retrieval path for cards created without a name.
// @Tags        Cards
// @Produce     json
//
// @Param       id  path  string  true  "Card ID (UUID)"  format(uuid)
//
// @Success     200  {object}  handlers.CardResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Card not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /cards/{id} [get]
func (h *Handlers) GetCard(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "card id must be a UUID")
		return
	}

	card, err := h.cardSvc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrCardNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "card not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, CardResponse{OK: true, Entry: card, ShareURL: h.shareURL(card)})
}

// ResolveCard godoc
// @ID          resolveCard
// @Summary     Resolve a slug to a card
// @Description Looks up a card by its share slug. A miss is not an error: the response is 200 with found=false.
// @Tags        Cards
// @Produce     json
//
// @Param       slug  path  string  true  "Share slug"  example(sam)
//
// @Success     200  {object}  handlers.ResolveResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /cards/slug/{slug} [get]
func (h *Handlers) ResolveCard(c *gin.Context) {
	card, err := h.cardSvc.Resolve(c.Request.Context(), c.Param("slug"))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, ResolveResponse{OK: true, Found: card != nil, Entry: card})
}

// ListCards godoc
// @ID          listCards
// @Summary     List cards (paginated)
// @Description Returns a page of cards, newest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Cards
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Param       page           query   int     false "Page number"     minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListCardsResponse
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /cards [get]
func (h *Handlers) ListCards(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	if h.db != nil {
		count, maxTS, err := repo.CardsStats(ctx, h.db)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"cards:%d:%d"`, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, total, err := h.cardSvc.ListPage(ctx, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListCardsResponse{
		Cards: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// CardQR godoc
// @ID          cardQR
// @Summary     Share link as a QR code
// @Description Renders the card's share URL as a PNG QR code.
// @Tags        Cards
// @Produce     png
//
// @Param       id  path  string  true  "Card ID (UUID)"  format(uuid)
//
// @Success     200  {string} binary "PNG image"
// @Failure     400  {object} handlers.ErrorResponse "Card has no share link"
// @Failure     404  {object} handlers.ErrorResponse "Card not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /cards/{id}/qr [get]
func (h *Handlers) CardQR(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "card id must be a UUID")
		return
	}

	card, err := h.cardSvc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrCardNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "card not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	share := h.shareURL(card)
	if share == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "card has no shareable link")
		return
	}

	png, err := qrcode.Encode(share, qrcode.Medium, 256)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeQRFailed, err.Error())
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
