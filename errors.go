package servebuffer

import "errors"

var (
	// ErrInvalidOptions is wrapped by the error Serve returns when the
	// options cannot be used. Nothing has been written in that case.
	ErrInvalidOptions = errors.New("invalid options")
	// ErrEncoder is wrapped by the error Serve returns when a content-coding
	// encoder fails or returns an unusable variant. Nothing has been written
	// in that case.
	ErrEncoder = errors.New("encoder failed")
)
