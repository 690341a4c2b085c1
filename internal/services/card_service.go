// Package services – CardService
//
// This file implements the CardService, which orchestrates the card creation
// flow (name normalization, slug uniqueness, media ingest, guarded insert)
// and slug/id resolution for rendering. Cards are create-only; there are no
// update or delete operations.
//
// Service-level errors (e.g., ErrSlugTaken) are returned for predictable
// cases so handlers can map them to HTTP results consistently.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/go-card-backend/internal/domain"
	"github.com/tbourn/go-card-backend/internal/media"
	"github.com/tbourn/go-card-backend/internal/repo"
	"github.com/tbourn/go-card-backend/internal/slug"
)

// CardRepo defines the repository contract required by CardService.
// Implementations are responsible for persistence of card records.
type CardRepo interface {
	// CreateCard inserts a card as a single guarded write; a slug collision
	// surfaces as repo.ErrDuplicate.
	CreateCard(ctx context.Context, db *gorm.DB, card *domain.Card) (*domain.Card, error)

	// SlugExists reports whether a slug is already taken (advisory pre-check).
	SlugExists(ctx context.Context, db *gorm.DB, slug string) (bool, error)

	// GetCard fetches a card by ID.
	GetCard(ctx context.Context, db *gorm.DB, id string) (*domain.Card, error)

	// FindCardBySlug fetches the card holding a slug.
	FindCardBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Card, error)

	// CountCards returns the total number of cards for pagination.
	CountCards(ctx context.Context, db *gorm.DB) (int64, error)

	// ListCardsPage returns a page of cards, newest first.
	ListCardsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Card, error)
}

// CardService provides card creation and resolution. It enforces the
// all-or-nothing media policy and maps slug collisions, whether caught by
// the advisory pre-check or by the store's unique index, to ErrSlugTaken.
type CardService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the card repository used by this service.
	Repo CardRepo
	// Ingest resolves media inputs to retrieval URLs.
	Ingest *media.Ingestor
}

// NewCardService constructs a CardService.
func NewCardService(db *gorm.DB, r CardRepo, ing *media.Ingestor) *CardService {
	return &CardService{DB: db, Repo: r, Ingest: ing}
}

// CreateInput carries the creator's submission. All fields are optional;
// per asset, a hosted URL (client-side direct upload) takes precedence over
// an encoded payload.
type CreateInput struct {
	Name      string
	Message   string
	ImageURL  string
	ImageData string
	AudioURL  string
	AudioData string
}

// Create runs the creation flow:
//
//  1. trim the name; empty-after-trim means "no name supplied"
//  2. derive the slug and reject a taken slug before any upload happens
//  3. ingest image and audio (all-or-nothing)
//  4. insert the record; the unique index closes the check/insert race, so
//     a concurrent creation with the same name still yields ErrSlugTaken
//
// Assets uploaded before a later failure are not rolled back.
func (s *CardService) Create(ctx context.Context, in CreateInput) (*domain.Card, error) {
	card := &domain.Card{}

	if name := strings.TrimSpace(in.Name); name != "" {
		card.Name = &name
		// Names with no ASCII representation slugify to ""; such cards are
		// stored without a slug and stay reachable by ID only.
		if sl := slug.Make(name); sl != "" {
			taken, err := s.Repo.SlugExists(ctx, s.DB, sl)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, ErrSlugTaken
			}
			card.Slug = &sl
		}
	}

	if msg := in.Message; msg != "" {
		card.Message = &msg
	}

	imageURL, err := s.Ingest.Ingest(ctx, media.KindImage, media.Input{URL: in.ImageURL, Data: in.ImageData})
	if err != nil {
		return nil, fmt.Errorf("%w: image: %v", ErrMediaIngest, err)
	}
	audioURL, err := s.Ingest.Ingest(ctx, media.KindAudio, media.Input{URL: in.AudioURL, Data: in.AudioData})
	if err != nil {
		return nil, fmt.Errorf("%w: audio: %v", ErrMediaIngest, err)
	}
	card.ImageURL = imageURL
	card.AudioURL = audioURL

	created, err := s.Repo.CreateCard(ctx, s.DB, card)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			// Lost the race after passing the pre-check.
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	return created, nil
}

// Resolve looks up the card whose slug matches the given path segment. The
// candidate is normalized first, so "/Sam" resolves like "/sam". A miss is
// not an error: Resolve returns (nil, nil) and the caller renders the empty
// placeholder state.
func (s *CardService) Resolve(ctx context.Context, candidate string) (*domain.Card, error) {
	sl := slug.Make(candidate)
	if sl == "" {
		return nil, nil
	}
	card, err := s.Repo.FindCardBySlug(ctx, s.DB, sl)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return card, nil
}

// Get fetches a card by ID, the only retrieval path for nameless cards.
func (s *CardService) Get(ctx context.Context, id string) (*domain.Card, error) {
	card, err := s.Repo.GetCard(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, err
	}
	return card, nil
}

// ListPage returns a page of cards, newest first, with the total count.
// It applies defaults for invalid page/pageSize.
func (s *CardService) ListPage(ctx context.Context, page, pageSize int) ([]domain.Card, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := s.Repo.CountCards(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Card{}, 0, nil
	}

	items, err := s.Repo.ListCardsPage(ctx, s.DB, offset, pageSize)
	return items, total, err
}
