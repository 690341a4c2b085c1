// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// These symbolic constants give clients a stable, machine-readable error
// taxonomy alongside human-readable messages. Generic codes mirror common
// HTTP status semantics; domain-specific codes cover business failures that
// a status alone cannot convey (e.g. a media ingest failure behind a 502).
package handlers

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeCreateFailed     = "create_failed"
	ErrCodeListFailed       = "list_failed"
	ErrCodeIngestFailed     = "ingest_failed"
	ErrCodeQRFailed         = "qr_failed"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
