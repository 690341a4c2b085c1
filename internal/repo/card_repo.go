// Package repo implements the data persistence layer for greeting cards,
// backed by GORM. This file provides repository functions for the Card model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a card is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - CreateCard returns ErrDuplicate when the slug unique index rejects the
//     insert. The insert itself is the uniqueness check: there is no
//     separate read-then-write window for concurrent creations to slip
//     through.
//   - On other DB errors the raw gorm error is propagated.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-card-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrDuplicate indicates an insert was rejected by a unique index
// (slug already taken, or idempotency key already recorded).
var ErrDuplicate = errors.New("duplicate")

// isUniqueViolation reports whether err is a unique-constraint failure.
// glebarez/sqlite often returns plain-text errors for UNIQUE violations,
// so the message is inspected in addition to gorm's sentinel.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique")
}

// CreateCard inserts a new Card row as a single guarded write. The card ID
// is a randomly generated UUID, and CreatedAt is set to UTC. When card.Slug
// is non-nil and another row already holds the same slug, the unique index
// rejects the insert and ErrDuplicate is returned.
//
// On success, it returns the persisted Card with ID and CreatedAt assigned.
func CreateCard(ctx context.Context, db *gorm.DB, card *domain.Card) (*domain.Card, error) {
	card.ID = uuid.NewString()
	card.CreatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Create(card).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return card, nil
}

// SlugExists reports whether any card already holds the given slug. Slugs
// are stored lowercased, so the comparison is case-insensitive as long as
// the caller normalizes the candidate first.
//
// This is an advisory pre-check used to reject conflicts before any media
// upload happens; the unique index in CreateCard remains the authority.
func SlugExists(ctx context.Context, db *gorm.DB, slug string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Card{}).
		Where("slug = ?", slug).
		Count(&n).Error
	return n > 0, err
}

// GetCard fetches a single card by its ID. If the record does not exist, it
// returns ErrNotFound. On other DB errors, the raw error is returned.
func GetCard(ctx context.Context, db *gorm.DB, id string) (*domain.Card, error) {
	var c domain.Card
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindCardBySlug fetches the card holding the given slug, or ErrNotFound.
// Cards without a name have a NULL slug and can never match.
func FindCardBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Card, error) {
	var c domain.Card
	err := db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCards returns all cards ordered by creation time ascending (insertion
// order). It returns an empty slice when no cards exist.
func ListCards(ctx context.Context, db *gorm.DB) ([]domain.Card, error) {
	var out []domain.Card
	err := db.WithContext(ctx).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}

// CountCards returns the total number of cards.
func CountCards(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Card{}).
		Count(&total).Error
	return total, err
}

// ListCardsPage returns a paginated slice of cards ordered by creation time
// descending (most recent first). Use CountCards to obtain the total for
// pagination metadata.
//
// The caller is responsible for computing offset and limit (e.g., (page-1)*pageSize).
func ListCardsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Card, error) {
	var out []domain.Card
	err := db.WithContext(ctx).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CardsStats returns aggregate metadata for the cards table: the total
// number of rows and the maximum CreatedAt among them. Used for weak ETag
// generation on the listing endpoint. When no cards exist, the returned
// count is 0 and maxCreatedAt is nil.
func CardsStats(ctx context.Context, db *gorm.DB) (count int64, maxCreatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Card{})

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest created_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		CreatedAt time.Time
	}
	if err = q.Select("created_at").Order("created_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.CreatedAt, nil
}
