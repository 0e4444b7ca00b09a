package server

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"strzcam.com/camrelay/relay"
)

// serveStream serves the video channel as an MJPEG multipart stream so a
// plain <img> tag can display it. Frame bytes are passed through
// untouched, the relay never reinterprets the encoded image.
func (s *Server) serveStream(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "close")

	mw := multipart.NewWriter(w)
	mw.SetBoundary("frame")

	id, frames, err := s.relay.Subscribe(relay.Video)
	if err != nil {
		http.Error(w, "Unknown channel", http.StatusNotFound)
		return
	}
	defer s.relay.Unsubscribe(relay.Video, id)

	flusher, _ := w.(http.Flusher)
	if frame, ok := s.relay.Current(relay.Video); ok {
		if err := writeJPEGPart(mw, frame.Payload); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-frames:
			if !ok {
				return
			}
			if err := writeJPEGPart(mw, frame.Payload); err != nil {
				log.Debugf("video: dropping stream viewer %s: %v", id, err)
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

func writeJPEGPart(mw *multipart.Writer, payload []byte) error {
	header := textproto.MIMEHeader{}
	header.Set("Content-Type", "image/jpeg")
	header.Set("Content-Length", fmt.Sprintf("%d", len(payload)))

	part, err := mw.CreatePart(header)
	if err != nil {
		return err
	}
	_, err = part.Write(payload)
	return err
}
