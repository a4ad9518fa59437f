package main

import (
	"net/http"
	"strconv"

	servebuffer "github.com/always-cache/serve-buffer"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	responses *prometheus.CounterVec
	bytesSent *prometheus.CounterVec
	updates   *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer, s *server) *metrics {
	factory := promauto.With(reg)
	m := &metrics{
		responses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "serve_buffer",
				Subsystem: "http",
				Name:      "responses_total",
				Help:      "Total number of responses by method and status code",
			},
			[]string{"method", "status"},
		),
		bytesSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "serve_buffer",
				Subsystem: "http",
				Name:      "body_bytes_total",
				Help:      "Total number of body bytes sent by content-coding",
			},
			[]string{"coding"},
		),
		updates: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "serve_buffer",
				Subsystem: "store",
				Name:      "updates_total",
				Help:      "Total number of resource updates by operation",
			},
			[]string{"op"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: "serve_buffer",
			Subsystem: "store",
			Name:      "resources",
			Help:      "Number of resources being served",
		},
		func() float64 { return float64(s.resourceCount()) },
	)

	if cache := s.opts.VariantCache; cache != nil {
		factory.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: "serve_buffer",
				Subsystem: "variant_cache",
				Name:      "entries",
				Help:      "Number of cached content-coded variants",
			},
			func() float64 { return float64(cache.Len()) },
		)
		factory.NewCounterFunc(
			prometheus.CounterOpts{
				Namespace: "serve_buffer",
				Subsystem: "variant_cache",
				Name:      "hits_total",
				Help:      "Total number of variant cache hits",
			},
			func() float64 { return float64(cache.Stats().Hits) },
		)
		factory.NewCounterFunc(
			prometheus.CounterOpts{
				Namespace: "serve_buffer",
				Subsystem: "variant_cache",
				Name:      "misses_total",
				Help:      "Total number of variant cache misses (encoder runs)",
			},
			func() float64 { return float64(cache.Stats().Misses) },
		)
	}
	return m
}

func (m *metrics) observeResponse(method string, status int) {
	m.responses.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

// beforeSend counts the body bytes about to be sent. Responses without a
// body carry no Content-Length, except for HEAD.
func (m *metrics) beforeSend() servebuffer.BeforeSendFunc {
	return func(w http.ResponseWriter, r *http.Request, body []byte) {
		if r.Method == http.MethodHead {
			return
		}
		length, err := strconv.ParseInt(w.Header().Get("Content-Length"), 10, 64)
		if err != nil {
			return
		}
		coding := w.Header().Get("Content-Encoding")
		if coding == "" {
			coding = "identity"
		}
		m.bytesSent.WithLabelValues(coding).Add(float64(length))
	}
}
