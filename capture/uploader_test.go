package capture

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestUploadPostsRawBody(t *testing.T) {
	var gotPath string
	var gotBody []byte
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte("OK"))
	}))
	defer ts.Close()

	uploader := NewUploader(ts.URL)
	if err := uploader.Upload(context.Background(), "/upload", []byte("frame bytes")); err != nil {
		t.Fatal("Upload failed:", err)
	}
	if gotPath != "/upload" {
		t.Errorf("Expected /upload, got %s", gotPath)
	}
	if !bytes.Equal(gotBody, []byte("frame bytes")) {
		t.Errorf("Expected raw payload, got %q", gotBody)
	}
}

func TestUploadRejectedByRelay(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "No data", http.StatusBadRequest)
	}))
	defer ts.Close()

	uploader := NewUploader(ts.URL)
	if err := uploader.Upload(context.Background(), "/upload-audio", []byte("chunk")); err == nil {
		t.Error("Expected an error for a rejected upload")
	}
}

func TestRelayUploadsUntilCancelled(t *testing.T) {
	uploads := make(chan []byte, 4)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		uploads <- body
		w.Write([]byte("OK"))
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	payloads := make(chan []byte, 2)
	uploader := NewUploader(ts.URL)
	go uploader.Relay(ctx, payloads, "/upload")

	payloads <- []byte("first")
	payloads <- []byte("second")

	for _, want := range []string{"first", "second"} {
		select {
		case got := <-uploads:
			if !bytes.Equal(got, []byte(want)) {
				t.Errorf("Expected %s, got %q", want, got)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("Timed out waiting for upload of %s", want)
		}
	}

	cancel()
	close(payloads)
}
