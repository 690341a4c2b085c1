// Package domain defines the persistence models for greeting cards. These
// types are mapped with GORM and form the core data layer of the application.
package domain

import "time"

// Card represents one created greeting card. Cards are create-only: once
// written they are never updated or deleted, and the ID is immutable.
//
// Fields:
//   - ID: stable UUID primary key (char(36)), assigned at creation.
//   - Name: the display name the creator typed, if any.
//   - Slug: URL-safe form of Name; unique across all cards when present.
//     Slugs are stored lowercased, so the unique index is effectively
//     case-insensitive. Cards without a name have no slug and can only be
//     fetched by ID.
//   - Message: free-text greeting, unbounded.
//   - ImageURL / AudioURL: retrieval URLs produced by media ingest (hosted
//     asset URL or locally served /uploads path).
//   - CreatedAt: set at write time, never mutated.
type Card struct {
	ID        string    `json:"id"                  gorm:"type:char(36);primaryKey"`
	Name      *string   `json:"name,omitempty"      gorm:"type:varchar(255)"`
	Slug      *string   `json:"slug,omitempty"      gorm:"type:varchar(255);uniqueIndex:ux_cards_slug"`
	Message   *string   `json:"message,omitempty"   gorm:"type:text"`
	ImageURL  *string   `json:"image_url,omitempty" gorm:"type:text"`
	AudioURL  *string   `json:"audio_url,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Card.
func (Card) TableName() string { return "cards" }

// Idempotency records the outcome of a previously processed card creation,
// keyed by (client_id, key). It lets a client safely retry POST /cards with
// the same Idempotency-Key and receive the originally created card instead
// of a slug conflict.
type Idempotency struct {
	ID        string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	ClientID  string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_client_key,priority:1"`
	Key       string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_client_key,priority:2"`
	CardID    string    `gorm:"type:TEXT NOT NULL"`
	Status    int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
