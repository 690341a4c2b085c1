package media

// Kind distinguishes the two asset types a card can carry. The hosted
// upload API files audio under its "video" resource type, so the mapping
// lives here rather than at call sites.
type Kind string

const (
	KindImage Kind = "image"
	KindAudio Kind = "audio"
)

// ResourceType returns the asset host resource type for the kind.
func (k Kind) ResourceType() string {
	if k == KindAudio {
		return "video"
	}
	return "image"
}

// Folder returns the asset host folder hint for the kind.
func (k Kind) Folder() string {
	if k == KindAudio {
		return "cards/audio"
	}
	return "cards/images"
}

// FallbackMIME returns the media type assumed for plain-base64 payloads.
func (k Kind) FallbackMIME() string {
	if k == KindAudio {
		return "audio/mpeg"
	}
	return "image/jpeg"
}
