package main

import (
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	servebuffer "github.com/always-cache/serve-buffer"
	headerrules "github.com/always-cache/serve-buffer/pkg/header-rules"
	resourcekey "github.com/always-cache/serve-buffer/pkg/resource-key"
	"github.com/always-cache/serve-buffer/rfc9110"
	"github.com/always-cache/serve-buffer/rfc9111"
	"github.com/always-cache/serve-buffer/store"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// Largest resource accepted by PUT.
const maxResourceSize = 64 * 1024 * 1024

type ServerConfig struct {
	Store     store.Provider
	Namespace string
	// Serving options for all resources. Per-resource metadata from the
	// store takes precedence.
	Options servebuffer.Options
	Rules   headerrules.Rules
	Logger  zerolog.Logger
	// Registry for the metrics. A new one is created if nil.
	Registry *prometheus.Registry
}

// server serves the resources of one namespace of a store.
// Every resource is held in memory as its own buffer: an update stores a new
// buffer and never touches the old one, which requests in flight may still
// be sending.
type server struct {
	store   store.Provider
	keyer   resourcekey.Keyer
	opts    servebuffer.Options
	rules   headerrules.Rules
	log     zerolog.Logger
	metrics *metrics
	handler http.Handler

	mutex     sync.RWMutex
	resources map[string]store.Entry
}

func newServer(config ServerConfig) (*server, error) {
	s := &server{
		store:     config.Store,
		keyer:     resourcekey.NewKeyer(config.Namespace),
		opts:      config.Options,
		rules:     config.Rules,
		log:       config.Logger,
		resources: make(map[string]store.Entry),
	}
	if s.opts.UnmutatedBuffers && s.opts.VariantCache == nil {
		s.opts.VariantCache = servebuffer.NewVariantCache()
	}

	entries, err := s.store.All(s.keyer.Prefix)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		s.resources[entry.Key] = entry
	}
	s.log.Info().Msgf("Loaded %d resources from store", len(entries))

	registry := config.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	s.metrics = newMetrics(registry, s)
	countSent := s.metrics.beforeSend()
	s.opts.BeforeSend = func(w http.ResponseWriter, r *http.Request, body []byte) {
		s.rules.Apply(w.Header(), r)
		countSent(w, r, body)
	}
	s.handler = s.routes(registry)
	return s, nil
}

func (s *server) routes(registry *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(hlog.NewHandler(s.log))
	r.Use(hlog.RequestIDHandler("requestId", "Request-Id"))
	r.Use(hlog.AccessHandler(s.logAccess))

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	r.Get("/*", s.get)
	r.Head("/*", s.get)
	r.Put("/*", s.put)
	r.Delete("/*", s.delete)
	return r
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *server) logAccess(r *http.Request, status, size int, duration time.Duration) {
	s.metrics.observeResponse(r.Method, status)
	hlog.FromRequest(r).Debug().
		Str("method", r.Method).
		Str("url", r.URL.String()).
		Int("status", status).
		Int("bytes", size).
		Dur("duration", duration).
		Msg("Sent response to client")
}

// seed stores the given resources unless they are stored already,
// so that updates made over HTTP survive a restart.
func (s *server) seed(resources []ConfigResource) error {
	for _, res := range resources {
		key := s.keyer.KeyForPath(res.Path)
		if s.store.Has(key) {
			s.log.Debug().Str("key", key).Msg("Resource already stored, not seeding")
			continue
		}
		buf, err := res.bytes()
		if err != nil {
			return err
		}
		entry := store.Entry{
			Key:         key,
			ContentType: res.ContentType,
			ModifiedAt:  time.Now(),
			ETag:        servebuffer.ETag(buf),
			MaxAge:      res.MaxAge,
			Immutable:   res.Immutable,
			Bytes:       buf,
		}
		if err := s.save(entry); err != nil {
			return err
		}
		s.log.Info().Str("key", key).Msgf("Seeded resource (%d bytes)", len(buf))
	}
	return nil
}

func (s *server) resource(key string) (store.Entry, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	entry, ok := s.resources[key]
	return entry, ok
}

func (s *server) resourceCount() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.resources)
}

// save persists the entry and then makes it visible to requests.
func (s *server) save(entry store.Entry) error {
	if err := s.store.Put(entry); err != nil {
		return err
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.resources[entry.Key] = entry
	return nil
}

func (s *server) remove(key string) error {
	if err := s.store.Purge(key); err != nil {
		return err
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.resources, key)
	return nil
}

func (s *server) get(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.resource(s.keyer.Key(r))
	if !ok {
		http.NotFound(w, r)
		return
	}

	opts := s.opts
	opts.ContentType = entry.ContentType
	opts.TimeModified = entry.ModifiedAt
	opts.ETag = entry.ETag
	if entry.MaxAge > 0 {
		opts.MaxAge = entry.MaxAge
	}
	if entry.Immutable {
		opts.Immutable = true
	}
	opts.Logger = hlog.FromRequest(r)

	err := servebuffer.Serve(w, r, entry.Bytes, opts)
	if errors.Is(err, servebuffer.ErrInvalidOptions) || errors.Is(err, servebuffer.ErrEncoder) {
		hlog.FromRequest(r).Error().Err(err).Msg("Could not serve resource")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	} else if err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("Could not send resource")
	}
}

// put replaces the resource with the request body. The request may be
// conditional: If-Match to avoid lost updates, If-None-Match: * to only
// create. Cache-Control max-age and immutable in the request are served
// with the resource.
func (s *server) put(w http.ResponseWriter, r *http.Request) {
	logger := hlog.FromRequest(r)
	key := s.keyer.Key(r)

	current, exists := s.resource(key)
	if !s.updatePermitted(r, current, exists) {
		w.WriteHeader(http.StatusPreconditionFailed)
		return
	}

	buf, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxResourceSize))
	if err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
		} else {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		}
		logger.Debug().Err(err).Msg("Could not read request body")
		return
	}

	cc := rfc9111.ParseCacheControl(r.Header.Values("Cache-Control"))
	maxAge, _ := cc.MaxAge()
	entry := store.Entry{
		Key:         key,
		ContentType: r.Header.Get("Content-Type"),
		ModifiedAt:  time.Now(),
		ETag:        servebuffer.ETag(buf),
		MaxAge:      maxAge,
		Immutable:   cc.Immutable(),
		Bytes:       buf,
	}
	if err := s.save(entry); err != nil {
		logger.Error().Err(err).Str("key", key).Msg("Could not store resource")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	s.metrics.updates.WithLabelValues("put").Inc()
	logger.Info().Str("key", key).Str("etag", entry.ETag).Msgf("Updated resource (%d bytes)", len(buf))

	w.Header().Set("ETag", entry.ETag)
	if exists {
		w.WriteHeader(http.StatusNoContent)
	} else {
		w.WriteHeader(http.StatusCreated)
	}
}

func (s *server) delete(w http.ResponseWriter, r *http.Request) {
	key := s.keyer.Key(r)
	current, exists := s.resource(key)
	if !exists {
		http.NotFound(w, r)
		return
	}
	if !s.updatePermitted(r, current, exists) {
		w.WriteHeader(http.StatusPreconditionFailed)
		return
	}
	if err := s.remove(key); err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("key", key).Msg("Could not purge resource")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	s.metrics.updates.WithLabelValues("delete").Inc()
	hlog.FromRequest(r).Info().Str("key", key).Msg("Deleted resource")
	w.WriteHeader(http.StatusNoContent)
}

// updatePermitted evaluates the preconditions of a state-changing request.
func (s *server) updatePermitted(r *http.Request, current store.Entry, exists bool) bool {
	if !exists {
		// no representation: If-Match fails, If-None-Match passes
		return r.Header.Get("If-Match") == ""
	}
	v := rfc9110.Validators{ETag: current.ETag, LastModified: current.ModifiedAt}
	return rfc9110.EvaluatePreconditions(r, v) == rfc9110.PreconditionPass
}
