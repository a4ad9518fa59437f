package servebuffer

import (
	"bytes"
	"context"
	"fmt"

	"github.com/always-cache/serve-buffer/rfc9110"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
)

// Variant is a content-coded representation of a buffer.
type Variant struct {
	// Encoded bytes. Nil means the coding is not available for this buffer,
	// e.g. because the buffer is too large to be worth compressing.
	Buffer []byte
	// Entity-tag of the encoded representation. If empty, the response
	// carries no ETag at all, since the tag of the unencoded buffer
	// does not identify the encoded one.
	ETag string
}

// Encoder produces the variant of buf for one content-coding.
// It must not modify buf.
type Encoder func(ctx context.Context, buf []byte) (Variant, error)

type codingEncoder struct {
	coding string
	encode Encoder
}

// GzipEncoder returns the built-in gzip encoder. Buffers larger than maxSize
// bytes are not compressed; zero means DefaultGzipMaxSize.
func GzipEncoder(maxSize int) Encoder {
	if maxSize <= 0 {
		maxSize = DefaultGzipMaxSize
	}
	return func(ctx context.Context, buf []byte) (Variant, error) {
		if len(buf) > maxSize {
			return Variant{}, nil
		}
		var b bytes.Buffer
		zw, err := gzip.NewWriterLevel(&b, gzip.BestCompression)
		if err != nil {
			return Variant{}, fmt.Errorf("gzip new writer level: %w", err)
		}
		if _, err := zw.Write(buf); err != nil {
			return Variant{}, fmt.Errorf("gzip writer write: %w", err)
		}
		if err := zw.Close(); err != nil {
			return Variant{}, fmt.Errorf("gzip writer close: %w", err)
		}
		return Variant{Buffer: b.Bytes(), ETag: ETag(b.Bytes())}, nil
	}
}

// BrotliEncoder returns the built-in br encoder. Buffers larger than maxSize
// bytes are not compressed; zero means DefaultBrotliMaxSize.
func BrotliEncoder(maxSize int) Encoder {
	if maxSize <= 0 {
		maxSize = DefaultBrotliMaxSize
	}
	return func(ctx context.Context, buf []byte) (Variant, error) {
		if len(buf) > maxSize {
			return Variant{}, nil
		}
		var b bytes.Buffer
		bw := brotli.NewWriterLevel(&b, brotli.BestCompression)
		if _, err := bw.Write(buf); err != nil {
			return Variant{}, fmt.Errorf("brotli writer write: %w", err)
		}
		if err := bw.Close(); err != nil {
			return Variant{}, fmt.Errorf("brotli writer close: %w", err)
		}
		return Variant{Buffer: b.Bytes(), ETag: ETag(b.Bytes())}, nil
	}
}

// negotiate picks the content-coding for the response. Codings are tried in
// the client's order of preference; a coding whose encoder returns no buffer
// is skipped. An empty coding means the buffer is sent as is.
func (s *serving) negotiate(ctx context.Context) (Variant, string, error) {
	encoders := s.opts.encoders()
	if len(encoders) == 0 {
		return Variant{}, "", nil
	}
	available := make([]string, len(encoders))
	byCoding := make(map[string]Encoder, len(encoders))
	for i, e := range encoders {
		available[i] = e.coding
		byCoding[e.coding] = e.encode
	}

	for _, coding := range rfc9110.NegotiateEncoding(s.r.Header, available) {
		variant, err := s.encode(ctx, coding, byCoding[coding])
		if err != nil {
			return Variant{}, "", err
		}
		if variant.Buffer == nil {
			s.log.Trace().Str("coding", coding).Msg("Coding not available for buffer")
			continue
		}
		s.log.Trace().Str("coding", coding).Msgf("Using content-coding (%d -> %d bytes)", len(s.buf), len(variant.Buffer))
		return variant, coding, nil
	}
	return Variant{}, "", nil
}

// encode runs the encoder for coding, through the variant cache if buffers
// are known to be unmutated, and checks the result.
func (s *serving) encode(ctx context.Context, coding string, encode Encoder) (Variant, error) {
	var variant Variant
	var err error
	if s.opts.UnmutatedBuffers {
		variant, err = s.opts.VariantCache.Get(ctx, s.buf, coding, encode)
	} else {
		variant, err = encode(ctx, s.buf)
	}
	if err != nil {
		return Variant{}, fmt.Errorf("%w: %s: %w", ErrEncoder, coding, err)
	}
	if variant.ETag != "" && !rfc9110.ValidEntityTag(variant.ETag) {
		return Variant{}, fmt.Errorf("%w: %s: invalid entity-tag %q", ErrEncoder, coding, variant.ETag)
	}
	return variant, nil
}
