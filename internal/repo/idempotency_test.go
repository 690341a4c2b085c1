package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-card-backend/internal/domain"
)

func TestIdempotency_GetMissing(t *testing.T) {
	db := newCardRepoDB(t, &domain.Idempotency{})

	_, err := GetIdempotency(context.Background(), db, "client1", "key1", time.Now().UTC())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestIdempotency_CreateThenGet(t *testing.T) {
	db := newCardRepoDB(t, &domain.Idempotency{})

	rec, err := CreateIdempotency(context.Background(), db, "client1", "key1", "card-42", 201, time.Hour)
	if err != nil {
		t.Fatalf("CreateIdempotency: %v", err)
	}
	if rec.CardID != "card-42" || rec.Status != 201 {
		t.Fatalf("unexpected record: %+v", rec)
	}

	got, err := GetIdempotency(context.Background(), db, "client1", "key1", time.Now().UTC())
	if err != nil {
		t.Fatalf("GetIdempotency: %v", err)
	}
	if got.CardID != "card-42" {
		t.Fatalf("CardID = %q, want card-42", got.CardID)
	}
}

func TestIdempotency_DuplicateKey(t *testing.T) {
	db := newCardRepoDB(t, &domain.Idempotency{})

	if _, err := CreateIdempotency(context.Background(), db, "c", "k", "card-1", 201, time.Hour); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := CreateIdempotency(context.Background(), db, "c", "k", "card-2", 201, time.Hour)
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestIdempotency_ExpiredRecordNotReturned(t *testing.T) {
	db := newCardRepoDB(t, &domain.Idempotency{})

	if _, err := CreateIdempotency(context.Background(), db, "c", "k", "card-1", 201, time.Millisecond); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := GetIdempotency(context.Background(), db, "c", "k", time.Now().UTC().Add(time.Minute))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for expired record, got %v", err)
	}
}

func TestIdempotency_ScopedToClient(t *testing.T) {
	db := newCardRepoDB(t, &domain.Idempotency{})

	if _, err := CreateIdempotency(context.Background(), db, "clientA", "k", "card-1", 201, time.Hour); err != nil {
		t.Fatalf("create: %v", err)
	}
	// Same key, different client: no clash, no visibility.
	if _, err := CreateIdempotency(context.Background(), db, "clientB", "k", "card-2", 201, time.Hour); err != nil {
		t.Fatalf("second client create: %v", err)
	}
	got, err := GetIdempotency(context.Background(), db, "clientB", "k", time.Now().UTC())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CardID != "card-2" {
		t.Fatalf("CardID = %q, want card-2", got.CardID)
	}
}
