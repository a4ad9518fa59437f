// Package servebuffer serves a byte buffer held in memory over HTTP.
//
// Serve answers a request for the buffer with conditional request handling
// (ETag, Last-Modified and their If-* counterparts), single byte ranges and
// content-coding negotiation with optional gzip and br variants. The HTTP
// semantics live in package rfc9110; this package sequences them.
package servebuffer

import (
	"context"
	"net/http"
	"strconv"

	"github.com/always-cache/serve-buffer/rfc9110"
	"github.com/always-cache/serve-buffer/rfc9111"

	"github.com/rs/zerolog"
)

// Decision is the outcome of evaluating a request against the selected
// representation: the status to send and the window of the body to send.
type Decision struct {
	// One of 200, 206, 304, 412 or 416.
	StatusCode int
	// First byte of the window.
	Start int64
	// Number of bytes in the window.
	Length int64
	// Size of the selected representation.
	Total int64
	// False for 304, 412 and 416.
	SendBody bool
}

// Decide evaluates the preconditions and the Range header of r against a
// representation of size bytes with validators v. Preconditions come first;
// the Range header is only looked at if they pass.
func Decide(r *http.Request, v rfc9110.Validators, size int64) Decision {
	d := Decision{Total: size}
	switch p := rfc9110.EvaluatePreconditions(r, v); p {
	case rfc9110.PreconditionFailed, rfc9110.PreconditionNotModified:
		d.StatusCode = p.StatusCode()
		return d
	}

	d.SendBody = true
	d.StatusCode = http.StatusOK
	d.Length = size
	switch rr := rfc9110.EvaluateRange(r, size, v); rr.Kind {
	case rfc9110.RangeUnsatisfiable:
		d.StatusCode = http.StatusRequestedRangeNotSatisfiable
		d.SendBody = false
		d.Length = 0
	case rfc9110.RangeSingle:
		d.StatusCode = http.StatusPartialContent
		d.Start = rr.Range.Start
		d.Length = rr.Range.Length()
	}
	return d
}

// ContentRange returns the Content-Range field value for the decision,
// or an empty string if none is to be sent.
func (d Decision) ContentRange() string {
	switch d.StatusCode {
	case http.StatusPartialContent:
		return rfc9110.ContentRange(rfc9110.ByteRange{Start: d.Start, End: d.Start + d.Length - 1}, d.Total)
	case http.StatusRequestedRangeNotSatisfiable:
		return rfc9110.UnsatisfiedContentRange(d.Total)
	}
	return ""
}

// serving holds the state of one call to Serve.
type serving struct {
	w    http.ResponseWriter
	r    *http.Request
	buf  []byte
	opts Options
	log  zerolog.Logger
}

// Serve writes the response to r for buf. It returns once the response is
// complete.
//
// An error wrapping ErrInvalidOptions or ErrEncoder is returned before
// anything is written, so the caller may still send an error response.
// Any other error comes from writing the body to w.
//
// HEAD requests get a 204 (No Content) carrying the headers of the GET
// response, including the Content-Length the body would have had.
func Serve(w http.ResponseWriter, r *http.Request, buf []byte, opts Options) error {
	if err := opts.validate(); err != nil {
		return err
	}
	s := &serving{
		w:    w,
		r:    r,
		buf:  buf,
		opts: opts.withDefaults(buf),
	}
	s.log = s.logger()
	return s.serve(r.Context())
}

func (s *serving) logger() zerolog.Logger {
	logger := zerolog.Ctx(s.r.Context())
	if s.opts.Logger != nil {
		logger = s.opts.Logger
	}
	return logger.With().
		Str("method", s.r.Method).
		Str("url", s.r.URL.String()).
		Logger()
}

func (s *serving) serve(ctx context.Context) error {
	// no header is set until every encoder has run
	variant, coding, err := s.negotiate(ctx)
	if err != nil {
		s.log.Debug().Err(err).Msg("Could not encode buffer")
		return err
	}

	header := s.w.Header()
	header.Set("Content-Type", s.opts.ContentType)
	header.Set("Accept-Ranges", "bytes")
	header.Set("Last-Modified", rfc9110.FormatHttpDate(s.opts.TimeModified))
	if s.opts.ETag != "" {
		header.Set("ETag", s.opts.ETag)
	}
	if !s.opts.NoCacheControl {
		header.Set("Cache-Control", rfc9111.ResponseDirectives{
			Public:    true,
			MaxAge:    s.opts.MaxAge,
			Immutable: s.opts.Immutable,
		}.String())
	}
	if len(s.opts.encoders()) > 0 {
		header.Set("Vary", "Accept-Encoding")
	}

	body, etag := s.buf, s.opts.ETag
	if coding != "" {
		body, etag = variant.Buffer, variant.ETag
		header.Set("Content-Encoding", coding)
		if etag != "" {
			header.Set("ETag", etag)
		} else {
			header.Del("ETag")
		}
	}

	// only the tag of the representation actually selected is compared
	validators := rfc9110.Validators{ETag: etag, LastModified: s.opts.TimeModified}
	d := Decide(s.r, validators, int64(len(body)))
	s.log.Trace().
		Int("status", d.StatusCode).
		Int64("start", d.Start).
		Int64("length", d.Length).
		Int64("total", d.Total).
		Msg("Decided response")

	if cr := d.ContentRange(); cr != "" {
		header.Set("Content-Range", cr)
	}
	if !d.SendBody {
		return s.respondEmpty(d.StatusCode, body)
	}

	header.Set("Content-Length", strconv.FormatInt(d.Length, 10))
	if s.r.Method == http.MethodHead {
		return s.respondEmpty(http.StatusNoContent, body)
	}
	return s.respondBody(d, body)
}
