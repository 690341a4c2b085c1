package media

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// DiskStore persists decoded payloads on local disk and returns a path the
// application serves itself. It is the last ingest strategy, used only when
// no asset host is configured.
type DiskStore struct {
	// Dir is the filesystem directory uploads are written to.
	Dir string
	// PublicPath is the URL path prefix the directory is served under,
	// e.g. "/uploads".
	PublicPath string
}

// Save writes the payload to a uniquely named file and returns the served
// URL path (PublicPath + "/" + filename).
func (s *DiskStore) Save(p Payload) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("media: create upload dir: %w", err)
	}
	name := fmt.Sprintf("%d-%s.%s", time.Now().UnixMilli(), uuid.NewString()[:8], Extension(p.MIME))
	if err := os.WriteFile(filepath.Join(s.Dir, name), p.Bytes, 0o644); err != nil {
		return "", fmt.Errorf("media: write upload: %w", err)
	}
	return path.Join(s.PublicPath, name), nil
}
