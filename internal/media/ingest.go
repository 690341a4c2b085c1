package media

import (
	"context"
	"errors"
)

// ErrNoStorage indicates neither an asset host nor a local upload directory
// is configured, so an encoded payload has nowhere to go.
var ErrNoStorage = errors.New("media: no upload target configured")

// Uploader sends a decoded payload to an external asset host.
type Uploader interface {
	Upload(ctx context.Context, kind Kind, p Payload) (string, error)
}

// Storer persists a decoded payload locally and returns a served path.
type Storer interface {
	Save(p Payload) (string, error)
}

// Input is one asset as submitted by the creator: either a URL the client
// already obtained via direct upload, or an encoded payload, or neither.
type Input struct {
	URL  string // hosted URL from a client-side direct upload
	Data string // data URL or plain base64
}

// Ingestor resolves asset inputs to retrieval URLs using the strategy chain
// documented on the package. A nil Host means "no asset host configured"
// and enables the local fallback; a configured Host that fails is fatal.
type Ingestor struct {
	Host  Uploader
	Local Storer
}

// Ingest resolves a single asset. It returns (nil, nil) when the input
// carries neither a URL nor a payload. A payload that cannot be decoded or
// stored is an error; it is never silently dropped.
func (ing *Ingestor) Ingest(ctx context.Context, kind Kind, in Input) (*string, error) {
	if in.URL != "" {
		u := in.URL
		return &u, nil
	}
	if in.Data == "" {
		return nil, nil
	}

	p, err := DecodePayload(in.Data, kind.FallbackMIME())
	if err != nil {
		return nil, err
	}

	if ing.Host != nil {
		u, err := ing.Host.Upload(ctx, kind, p)
		if err != nil {
			return nil, err
		}
		return &u, nil
	}
	if ing.Local != nil {
		u, err := ing.Local.Save(p)
		if err != nil {
			return nil, err
		}
		return &u, nil
	}
	return nil, ErrNoStorage
}
