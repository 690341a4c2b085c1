// Package media turns creator-supplied image and audio payloads into
// durable, retrievable URLs.
//
// Ingest runs an ordered chain of strategies per asset:
//  1. a hosted URL supplied by the client (direct upload) is accepted as-is;
//  2. an encoded payload is decoded and uploaded server-side to the
//     configured asset host;
//  3. when no asset host is configured at all, decoded bytes are written to
//     local disk and served from the application itself.
//
// Each asset gets a single upload attempt; there are no retries.
package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrBadPayload indicates the supplied payload could not be decoded.
var ErrBadPayload = errors.New("media: payload is not decodable")

// dataURLRE matches "data:<mediatype>;base64,<data>".
var dataURLRE = regexp.MustCompile(`^data:(.+);base64,(.+)$`)

// Payload holds a decoded asset ready for upload or storage.
type Payload struct {
	MIME  string
	Bytes []byte
}

// DecodePayload decodes raw, which is either a data URL or plain base64.
// Plain base64 payloads take fallbackMIME as their media type, matching
// client behavior where images default to JPEG and audio to MP3.
func DecodePayload(raw, fallbackMIME string) (Payload, error) {
	mediaType := fallbackMIME
	b64 := raw
	if m := dataURLRE.FindStringSubmatch(raw); m != nil {
		mediaType = m[1]
		b64 = m[2]
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(b64))
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if len(data) == 0 {
		return Payload{}, fmt.Errorf("%w: empty payload", ErrBadPayload)
	}
	return Payload{MIME: mediaType, Bytes: data}, nil
}

// extByMIME maps the media types the creator UI produces to file extensions.
var extByMIME = map[string]string{
	"image/jpeg":  "jpg",
	"image/png":   "png",
	"image/webp":  "webp",
	"audio/mpeg":  "mp3",
	"audio/wav":   "wav",
	"audio/x-wav": "wav",
	"audio/ogg":   "ogg",
	"audio/webm":  "webm",
}

// Extension returns the storage file extension for a media type, falling
// back to the subtype, then to "bin".
func Extension(mediaType string) string {
	if ext, ok := extByMIME[mediaType]; ok {
		return ext
	}
	if i := strings.LastIndex(mediaType, "/"); i >= 0 && i+1 < len(mediaType) {
		return mediaType[i+1:]
	}
	return "bin"
}
