package servebuffer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Bodies smaller than this are flushed right away instead of waiting for
// the server's output buffer to fill.
const smallBodySize = 1024

// respondEmpty ends the response with status and no body. The headers
// protect against the empty body being sniffed as something else.
func (s *serving) respondEmpty(status int, body []byte) error {
	header := s.w.Header()
	header.Set("Content-Security-Policy", "default-src 'none'")
	header.Set("X-Content-Type-Options", "nosniff")
	s.beforeSend(body)
	s.w.WriteHeader(status)
	s.log.Trace().Int("status", status).Msg("Sent empty response")
	return s.flush()
}

// respondBody writes the status and the window of body selected by d.
func (s *serving) respondBody(d Decision, body []byte) error {
	s.beforeSend(body)
	s.w.WriteHeader(d.StatusCode)
	window := io.NewSectionReader(bytes.NewReader(body), d.Start, d.Length)
	written, err := io.Copy(s.w, window)
	if err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	s.log.Trace().Int("status", d.StatusCode).Msgf("Wrote body (%d bytes)", written)
	if len(body) < smallBodySize {
		return s.flush()
	}
	return nil
}

func (s *serving) beforeSend(body []byte) {
	if s.opts.BeforeSend != nil {
		s.opts.BeforeSend(s.w, s.r, body)
	}
}

// flush pushes everything written so far to the client.
// Writers that cannot flush are left alone.
func (s *serving) flush() error {
	err := http.NewResponseController(s.w).Flush()
	if err != nil && !errors.Is(err, http.ErrNotSupported) {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}
