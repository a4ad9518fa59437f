package servebuffer

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/always-cache/serve-buffer/rfc9110"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"
)

const (
	DefaultContentType   = "application/octet-stream"
	DefaultGzipMaxSize   = 10 * 1024 * 1024
	DefaultBrotliMaxSize = 1024 * 1024
)

// BeforeSendFunc is called right before the status line is written.
// Headers may still be modified. body is the representation being sent,
// i.e. the compressed variant if a content-coding was applied.
type BeforeSendFunc func(w http.ResponseWriter, r *http.Request, body []byte)

// Options describe the buffer being served and how to serve it.
// The zero value is usable.
type Options struct {
	// Media type of the buffer. Defaults to application/octet-stream.
	ContentType string
	// Last modification time of the buffer. Defaults to the current time.
	TimeModified time.Time
	// Entity-tag of the buffer, including the quotes (and W/ prefix if weak).
	// Empty means no ETag is sent, unless GenerateETag is set.
	ETag string
	// Compute a strong entity-tag from the buffer contents if ETag is empty.
	GenerateETag bool

	// Offer gzip using the built-in encoder, limited to GzipMaxSize bytes
	// of input (default DefaultGzipMaxSize).
	Gzip        bool
	GzipMaxSize int
	// Custom gzip encoder. Setting it enables gzip; GzipMaxSize is ignored.
	GzipEncoder Encoder

	// Offer br using the built-in encoder, limited to BrotliMaxSize bytes
	// of input (default DefaultBrotliMaxSize).
	Brotli        bool
	BrotliMaxSize int
	// Custom br encoder. Setting it enables br; BrotliMaxSize is ignored.
	BrotliEncoder Encoder

	// The caller guarantees a buffer is never modified in place once served:
	// a changed representation always comes in a new buffer. This enables
	// caching of compressed variants keyed by buffer identity.
	UnmutatedBuffers bool
	// Cache for compressed variants. Only used with UnmutatedBuffers.
	// Defaults to a cache shared by all callers.
	VariantCache *VariantCache

	// Do not send a Cache-Control header.
	NoCacheControl bool
	// Freshness lifetime sent as max-age, truncated to seconds.
	MaxAge time.Duration
	// Add the immutable directive to Cache-Control.
	Immutable bool

	// Optional hook called before the status line is written.
	BeforeSend BeforeSendFunc

	// Logger to use. The request context logger (zerolog.Ctx) is used if nil.
	Logger *zerolog.Logger
}

// validate checks the options for values that cannot be served.
// All problems are reported, not just the first one.
func (o Options) validate() error {
	var err error
	if strings.ContainsAny(o.ContentType, "\r\n\x00") {
		err = multierr.Append(err, fmt.Errorf("ContentType %q contains control characters", o.ContentType))
	}
	if o.ETag != "" && !rfc9110.ValidEntityTag(o.ETag) {
		err = multierr.Append(err, fmt.Errorf("ETag %q is not a valid entity-tag", o.ETag))
	}
	if o.GzipMaxSize < 0 {
		err = multierr.Append(err, fmt.Errorf("GzipMaxSize %d is negative", o.GzipMaxSize))
	}
	if o.BrotliMaxSize < 0 {
		err = multierr.Append(err, fmt.Errorf("BrotliMaxSize %d is negative", o.BrotliMaxSize))
	}
	if o.MaxAge < 0 {
		err = multierr.Append(err, fmt.Errorf("MaxAge %v is negative", o.MaxAge))
	}
	if o.VariantCache != nil && !o.UnmutatedBuffers {
		err = multierr.Append(err, fmt.Errorf("VariantCache is set but UnmutatedBuffers is not"))
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	return nil
}

// withDefaults returns the options with defaults applied for buf.
func (o Options) withDefaults(buf []byte) Options {
	if o.ContentType == "" {
		o.ContentType = DefaultContentType
	}
	if o.TimeModified.IsZero() {
		o.TimeModified = time.Now()
	}
	if o.ETag == "" && o.GenerateETag {
		o.ETag = ETag(buf)
	}
	if o.UnmutatedBuffers && o.VariantCache == nil {
		o.VariantCache = defaultVariantCache
	}
	return o
}

// encoders returns the enabled content-codings in the order they are offered.
func (o Options) encoders() []codingEncoder {
	var encoders []codingEncoder
	if o.GzipEncoder != nil {
		encoders = append(encoders, codingEncoder{"gzip", o.GzipEncoder})
	} else if o.Gzip {
		encoders = append(encoders, codingEncoder{"gzip", GzipEncoder(o.GzipMaxSize)})
	}
	if o.BrotliEncoder != nil {
		encoders = append(encoders, codingEncoder{"br", o.BrotliEncoder})
	} else if o.Brotli {
		encoders = append(encoders, codingEncoder{"br", BrotliEncoder(o.BrotliMaxSize)})
	}
	return encoders
}
