package servebuffer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestHandlerServesResource(t *testing.T) {
	h := NewHandler(HandlerConfig{
		Resource: Resource{Buffer: testBuf, ContentType: "text/plain", TimeModified: t0},
		Options:  Options{GenerateETag: true, MaxAge: time.Minute},
	})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, testBuf, w.Body.Bytes())
	require.Equal(t, "text/plain", w.Header().Get("Content-Type"))
	require.Equal(t, ETag(testBuf), w.Header().Get("ETag"))
	require.Equal(t, "public, max-age=60", w.Header().Get("Cache-Control"))
	require.Equal(t, "Thu, 01 Jan 1970 03:25:45 GMT", w.Header().Get("Last-Modified"))
}

func TestHandlerUpdate(t *testing.T) {
	h := NewHandler(HandlerConfig{
		Resource: Resource{Buffer: testBuf, ETag: `"v1"`, TimeModified: t0},
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("If-None-Match", `"v1"`)
	h.ServeHTTP(w, r)
	require.Equal(t, http.StatusNotModified, w.Code)

	before := time.Now().Truncate(time.Second)
	h.Update(Resource{Buffer: []byte("second"), ETag: `"v2"`})
	require.False(t, h.Resource().TimeModified.Before(before))

	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "second", w.Body.String())
	require.Equal(t, `"v2"`, w.Header().Get("ETag"))
	require.Equal(t, DefaultContentType, w.Header().Get("Content-Type"))
}

func TestHandlerGeneratesETagOnUpdate(t *testing.T) {
	h := NewHandler(HandlerConfig{Options: Options{GenerateETag: true}})
	require.Equal(t, ETag(nil), h.Resource().ETag)
	h.Update(Resource{Buffer: testBuf})
	require.Equal(t, ETag(testBuf), h.Resource().ETag)
}

func TestHandlerEncoderFailure(t *testing.T) {
	var mu sync.Mutex
	var errs []error
	h := NewHandler(HandlerConfig{
		Resource: Resource{Buffer: testBuf},
		Options: Options{GzipEncoder: func(ctx context.Context, buf []byte) (Variant, error) {
			return Variant{}, errors.New("broken")
		}},
		OnError: func(r *http.Request, err error) {
			mu.Lock()
			defer mu.Unlock()
			errs = append(errs, err)
		},
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Accept-Encoding", "gzip")
	h.ServeHTTP(w, r)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Empty(t, w.Header().Values("ETag"))
	require.Len(t, errs, 1)
	require.ErrorIs(t, errs[0], ErrEncoder)
}

func TestHandlerInvalidOptions(t *testing.T) {
	var logs bytes.Buffer
	logger := zerolog.New(&logs)
	h := NewHandler(HandlerConfig{
		Resource: Resource{Buffer: testBuf},
		Options:  Options{MaxAge: -time.Second},
		Logger:   &logger,
	})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, logs.String(), "Could not serve buffer")
	require.Contains(t, logs.String(), `"handler":"serve-buffer"`)
}

func TestHandlerLogsRequests(t *testing.T) {
	var logs bytes.Buffer
	logger := zerolog.New(&logs).Level(zerolog.DebugLevel)
	h := NewHandler(HandlerConfig{
		Resource: Resource{Buffer: testBuf},
		Logger:   &logger,
	})

	r := httptest.NewRequest("GET", "/file", nil)
	r.RemoteAddr = "[::1]:10000"
	h.ServeHTTP(httptest.NewRecorder(), r)
	require.Contains(t, logs.String(), "Sent response to client")
	require.Contains(t, logs.String(), `"sourceIp":"[::1]"`)
	require.Contains(t, logs.String(), `"status":200`)
	require.Contains(t, logs.String(), `"bytes":8`)
}

func TestGetRequestSourceIp(t *testing.T) {
	tests := map[string]string{
		"1.2.3.4:10000": "1.2.3.4",
		"[1:2:3]:10000": "[1:2:3]",
		"no-port":       "no-port",
		"":              "",
	}
	for remoteAddr, expected := range tests {
		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = remoteAddr
		require.Equal(t, expected, getRequestSourceIp(r))
	}
}

// Over a real connection, the compressed variant must survive the trip and
// a swapped buffer must be picked up by the next request.
func TestHandlerOverTheWire(t *testing.T) {
	h := NewHandler(HandlerConfig{
		Resource: Resource{Buffer: compressible, TimeModified: t0},
		Options:  Options{GenerateETag: true, Brotli: true, UnmutatedBuffers: true, VariantCache: NewVariantCache()},
	})
	server := httptest.NewServer(h)
	defer server.Close()

	get := func(header map[string]string) (*http.Response, []byte) {
		req, err := http.NewRequest("GET", server.URL, nil)
		require.NoError(t, err)
		for name, value := range header {
			req.Header.Set(name, value)
		}
		res, err := server.Client().Do(req)
		require.NoError(t, err)
		defer res.Body.Close()
		body, err := io.ReadAll(res.Body)
		require.NoError(t, err)
		return res, body
	}

	res, body := get(map[string]string{"Accept-Encoding": "br"})
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "br", res.Header.Get("Content-Encoding"))
	require.Equal(t, compressible, unbrotli(t, body))
	tag := res.Header.Get("ETag")

	res, _ = get(map[string]string{"Accept-Encoding": "br", "If-None-Match": tag})
	require.Equal(t, http.StatusNotModified, res.StatusCode)

	h.Update(Resource{Buffer: []byte("replaced")})
	res, body = get(map[string]string{"Accept-Encoding": "br", "If-None-Match": tag})
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "replaced", string(unbrotli(t, body)))

	res, body = get(map[string]string{"Accept-Encoding": "identity", "Range": "bytes=2-4"})
	require.Equal(t, http.StatusPartialContent, res.StatusCode)
	require.Equal(t, "pla", string(body))
}
