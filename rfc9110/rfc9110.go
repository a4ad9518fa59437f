// Package rfc9110 implements the parts of HTTP Semantics (RFC 9110) needed to
// serve a representation held in memory: conditional requests (section 13),
// range requests (section 14) and content-coding negotiation (section 12.5.3).
//
// Files are named after the section they implement.
package rfc9110

import (
	"net/http"
	"strings"
	"time"
)

// Validators are the validator fields of the selected representation.
// ETag is empty when the representation has no entity-tag.
type Validators struct {
	ETag         string
	LastModified time.Time
}

// Precondition is the outcome of evaluating the request preconditions.
type Precondition int

const (
	// PreconditionPass means the request method should be applied.
	PreconditionPass Precondition = iota
	// PreconditionFailed means the server responds 412 (Precondition Failed).
	PreconditionFailed
	// PreconditionNotModified means the client's stored response is fresh,
	// the server responds 304 (Not Modified).
	PreconditionNotModified
)

func (p Precondition) String() string {
	switch p {
	case PreconditionFailed:
		return "failed"
	case PreconditionNotModified:
		return "not-modified"
	default:
		return "pass"
	}
}

// StatusCode returns the status code to respond with, or 0 for PreconditionPass.
func (p Precondition) StatusCode() int {
	switch p {
	case PreconditionFailed:
		return http.StatusPreconditionFailed
	case PreconditionNotModified:
		return http.StatusNotModified
	}
	return 0
}

// RangeKind classifies the result of range evaluation.
type RangeKind int

const (
	// RangeNone means no byte range was requested.
	RangeNone RangeKind = iota
	// RangeIgnored means a Range header was present but is not honored:
	// it was malformed, named several ranges or failed the If-Range condition.
	RangeIgnored
	// RangeUnsatisfiable means none of the requested ranges overlap the representation.
	RangeUnsatisfiable
	// RangeSingle means exactly one satisfiable range is to be sent.
	RangeSingle
)

func (k RangeKind) String() string {
	switch k {
	case RangeIgnored:
		return "ignored"
	case RangeUnsatisfiable:
		return "unsatisfiable"
	case RangeSingle:
		return "single"
	default:
		return "none"
	}
}

// RangeResult is the outcome of EvaluateRange.
// Range is only meaningful if Kind is RangeSingle.
type RangeResult struct {
	Kind  RangeKind
	Range ByteRange
}

// IsConditional reports whether the request carries any of the precondition
// header fields evaluated by EvaluatePreconditions.
func IsConditional(header http.Header) bool {
	return header.Get("If-Match") != "" ||
		header.Get("If-Unmodified-Since") != "" ||
		header.Get("If-None-Match") != "" ||
		header.Get("If-Modified-Since") != ""
}

// listField returns the combined field value of a list-based field,
// joining multiple field lines as described in section 5.3.
func listField(header http.Header, name string) string {
	values := header.Values(name)
	switch len(values) {
	case 0:
		return ""
	case 1:
		return values[0]
	}
	return strings.Join(values, ", ")
}
