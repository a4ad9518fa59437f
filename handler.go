package servebuffer

import (
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	recorder "github.com/always-cache/serve-buffer/pkg/response-recorder"

	"github.com/rs/zerolog"
)

// Resource is a buffer along with the metadata it is served with.
// A Resource handed to a Handler must not be modified afterwards;
// use Update with a new Resource instead.
type Resource struct {
	Buffer       []byte
	ContentType  string
	TimeModified time.Time
	ETag         string
}

type HandlerConfig struct {
	// Initial resource.
	Resource Resource
	// Serving options. ContentType, TimeModified and ETag are taken from
	// the resource when set there.
	Options Options
	// Logger to use. Nothing is logged if nil.
	Logger *zerolog.Logger
	// Optional function called with errors from Serve.
	// They are logged if not set.
	OnError func(r *http.Request, err error)
}

// Handler is an http.Handler serving a single resource, which can be
// replaced at any time without disturbing requests in flight.
type Handler struct {
	resource atomic.Pointer[Resource]
	opts     Options
	log      zerolog.Logger
	onError  func(*http.Request, error)
}

// NewHandler creates a handler from config.
func NewHandler(config HandlerConfig) *Handler {
	var logger zerolog.Logger
	if config.Logger == nil {
		logger = zerolog.Nop()
	} else {
		logger = *config.Logger
	}

	h := &Handler{
		opts:    config.Options,
		log:     logger.With().Str("handler", "serve-buffer").Logger(),
		onError: config.OnError,
	}
	if h.opts.Logger == nil {
		h.opts.Logger = &h.log
	}
	h.Update(config.Resource)
	return h
}

// Update replaces the resource being served. A missing modification time
// is set to the current time, and a missing ETag is generated if the
// options ask for it.
func (h *Handler) Update(res Resource) {
	if res.TimeModified.IsZero() {
		res.TimeModified = time.Now()
	}
	if res.ETag == "" && h.opts.GenerateETag {
		res.ETag = ETag(res.Buffer)
	}
	h.resource.Store(&res)
	h.log.Trace().Int("size", len(res.Buffer)).Str("etag", res.ETag).Msg("Updated resource")
}

// Resource returns the resource currently being served.
func (h *Handler) Resource() Resource {
	return *h.resource.Load()
}

// ServeHTTP implements the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	res := h.resource.Load()
	opts := h.opts
	if res.ContentType != "" {
		opts.ContentType = res.ContentType
	}
	opts.TimeModified = res.TimeModified
	if res.ETag != "" {
		opts.ETag = res.ETag
	}

	rec := recorder.NewResponseRecorder(w)
	err := Serve(rec, r, res.Buffer, opts)
	if err != nil && (errors.Is(err, ErrInvalidOptions) || errors.Is(err, ErrEncoder)) {
		http.Error(rec, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
	if err != nil {
		if h.onError != nil {
			h.onError(r, err)
		} else {
			h.log.Error().Err(err).Str("url", r.URL.String()).Msg("Could not serve buffer")
		}
	}
	h.logRequest(r, rec)
}

func (h *Handler) logRequest(r *http.Request, rec *recorder.ResponseRecorder) {
	h.log.Debug().
		Str("method", r.Method).
		Str("url", r.URL.String()).
		Str("sourceIp", getRequestSourceIp(r)).
		Int("status", rec.StatusCode()).
		Int64("bytes", rec.Written()).
		Dur("duration", rec.Duration()).
		Msg("Sent response to client")
}

func getRequestSourceIp(r *http.Request) string {
	// RemoteAddr is in the format:
	// 1.2.3.4:10000 for ipv4
	// [1:2:3]:10000 for ipv6
	ipAndPort := r.RemoteAddr
	portSepIdx := strings.LastIndex(ipAndPort, ":")
	// if not found, return
	if portSepIdx < 0 {
		return ipAndPort
	}
	return ipAndPort[:portSepIdx]
}
