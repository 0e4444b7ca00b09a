package capture

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Uploader posts captured payloads to the relay server. A failed upload
// is logged and forgotten, the next capture cycle brings fresher data
// anyway.
type Uploader struct {
	baseURL string
	client  *http.Client
}

func NewUploader(baseURL string) *Uploader {
	return &Uploader{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func (u *Uploader) Upload(ctx context.Context, path string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	resp, err := u.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("relay rejected upload: %s", resp.Status)
	}
	return nil
}

// Relay consumes payloads from a receiver and uploads each one to path
// until the context is cancelled or the channel closes.
func (u *Uploader) Relay(ctx context.Context, payloads <-chan []byte, path string) {
	for {
		select {
		case <-ctx.Done():
			return
		case payload, ok := <-payloads:
			if !ok {
				return
			}
			if err := u.Upload(ctx, path, payload); err != nil {
				log.Warnf("upload to %s failed: %v", path, err)
				continue
			}
			log.Debugf("uploaded %d bytes to %s", len(payload), path)
		}
	}
}
