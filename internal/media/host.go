package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// ErrHostUpload indicates the configured asset host rejected an upload or
// was unreachable. There is no local fallback for this case: a configured
// but failing host aborts the creation.
var ErrHostUpload = errors.New("media: asset host upload failed")

// HostClient uploads assets to a Cloudinary-style unsigned upload endpoint:
// POST {BaseURL}/{resourceType}/upload with multipart fields "file",
// "upload_preset", and "folder". The response carries the retrieval URL in
// "secure_url".
type HostClient struct {
	// BaseURL is the account endpoint, e.g.
	// "https://api.cloudinary.com/v1_1/<cloud-name>".
	BaseURL string
	// UploadPreset names the unsigned preset configured on the host.
	UploadPreset string
	// HTTPClient is used for uploads; a default with a 30s timeout is used
	// when nil.
	HTTPClient *http.Client
}

// NewHostClient builds a HostClient with a default timeout.
func NewHostClient(baseURL, preset string, timeout time.Duration) *HostClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HostClient{
		BaseURL:      strings.TrimRight(baseURL, "/"),
		UploadPreset: preset,
		HTTPClient:   &http.Client{Timeout: timeout},
	}
}

// hostResponse is the subset of the upload response we consume.
type hostResponse struct {
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
}

// Upload sends one payload to the host and returns its retrieval URL.
// A non-2xx response or transport error maps to ErrHostUpload.
func (c *HostClient) Upload(ctx context.Context, kind Kind, p Payload) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", "upload."+Extension(p.MIME))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHostUpload, err)
	}
	if _, err := fw.Write(p.Bytes); err != nil {
		return "", fmt.Errorf("%w: %v", ErrHostUpload, err)
	}
	if err := mw.WriteField("upload_preset", c.UploadPreset); err != nil {
		return "", fmt.Errorf("%w: %v", ErrHostUpload, err)
	}
	if err := mw.WriteField("folder", kind.Folder()); err != nil {
		return "", fmt.Errorf("%w: %v", ErrHostUpload, err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrHostUpload, err)
	}

	url := c.BaseURL + "/" + kind.ResourceType() + "/upload"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHostUpload, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	httpc := c.HTTPClient
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHostUpload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: status %d: %s", ErrHostUpload, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out hostResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrHostUpload, err)
	}
	if out.SecureURL != "" {
		return out.SecureURL, nil
	}
	if out.URL != "" {
		return out.URL, nil
	}
	return "", fmt.Errorf("%w: response carried no URL", ErrHostUpload)
}
