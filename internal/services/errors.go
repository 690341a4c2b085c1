// Package services defines the business logic for greeting cards. This file
// centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing messages or HTTP status codes is performed at the
// handler layer.
package services

import "errors"

var (
	// ErrSlugTaken is returned when the slug derived from the requested name
	// already identifies another card. Creation is aborted before any media
	// upload or store write.
	ErrSlugTaken = errors.New("name already in use")

	// ErrCardNotFound indicates that the requested card does not exist.
	ErrCardNotFound = errors.New("card not found")

	// ErrMediaIngest is returned when a present image or audio payload could
	// not be turned into a retrieval URL. Creation is all-or-nothing: a
	// failed asset fails the whole request rather than being dropped.
	ErrMediaIngest = errors.New("media ingest failed")
)
