package rfc9110

import (
	"net/http"

	"github.com/always-cache/serve-buffer/rfc9111"
)

// EvaluatePreconditions evaluates the conditional header fields of the request
// against the validators of the selected representation, in the order mandated
// by section 13.2.2. Requests that are not conditional always pass.
//
// §  13.2.2.  Precedence of Preconditions
// §
// §     When more than one conditional request header field is present in a
// §     request, the order in which the fields are evaluated becomes
// §     important.  In practice, the fields defined in this document are
// §     consistently implemented in a single, logical order, since "lost
// §     update" preconditions have more strict requirements than cache
// §     validation, a validated cache is more efficient than a partial
// §     response, and entity tags are presumed to be more accurate than date
// §     validators.
// §
// §     A recipient cache or origin server MUST evaluate the request
// §     preconditions defined by this specification in the following order:
// §
// §     1.  When recipient is the origin server and If-Match is present,
// §         evaluate the If-Match precondition:
// §
// §         *  if true, continue to step 3
// §
// §         *  if false, respond 412 (Precondition Failed) unless it can be
// §            determined that the state-changing request has already
// §            succeeded (see Section 13.1.1)
// §
// §     2.  When recipient is the origin server, If-Match is not present, and
// §         If-Unmodified-Since is present, evaluate the If-Unmodified-Since
// §         precondition:
// §
// §         *  if true, continue to step 3
// §
// §         *  if false, respond 412 (Precondition Failed) unless it can be
// §            determined that the state-changing request has already
// §            succeeded (see Section 13.1.4)
// §
// §     3.  When If-None-Match is present, evaluate the If-None-Match
// §         precondition:
// §
// §         *  if true, continue to step 5
// §
// §         *  if false for GET/HEAD, respond 304 (Not Modified)
// §
// §         *  if false for other methods, respond 412 (Precondition Failed)
// §
// §     4.  When the method is GET or HEAD, If-None-Match is not present, and
// §         If-Modified-Since is present, evaluate the If-Modified-Since
// §         precondition:
// §
// §         *  if true, continue to step 5
// §
// §         *  if false, respond 304 (Not Modified)
// §
// §     5.  When the method is GET and both Range and If-Range are present,
// §         evaluate the If-Range precondition:
// §
// §         *  if true and the Range is applicable to the selected
// §            representation, respond 206 (Partial Content)
// §
// §         *  otherwise, ignore the Range header field and respond 200 (OK)
// §
// §     6.  Otherwise,
// §
// §         *  perform the requested method and respond according to its
// §            success or failure.
//
// Step 5 is left to EvaluateRange.
func EvaluatePreconditions(r *http.Request, v Validators) Precondition {
	if !IsConditional(r.Header) {
		return PreconditionPass
	}

	// steps 1 and 2
	if fails, present := ifMatchFails(r.Header, v.ETag); present {
		if fails {
			return PreconditionFailed
		}
	} else if fails, _ := ifUnmodifiedSinceFails(r.Header, v.LastModified); fails {
		return PreconditionFailed
	}

	// steps 3 and 4
	if isClientFresh(r, v) {
		if safeMethod(r.Method) {
			return PreconditionNotModified
		}
		return PreconditionFailed
	}
	return PreconditionPass
}

// isClientFresh reports whether the client's stored response, as described by
// If-None-Match or (in its absence) If-Modified-Since, is still current.
func isClientFresh(r *http.Request, v Validators) bool {
	// an end-to-end reload never gets a 304
	if safeMethod(r.Method) && clientWantsReload(r.Header) {
		return false
	}
	if fails, present := ifNoneMatchFails(r.Header, v.ETag); present {
		return fails
	}
	if !safeMethod(r.Method) {
		return false
	}
	fails, _ := ifModifiedSinceFails(r.Header, v.LastModified)
	return fails
}

// clientWantsReload reports whether the request carries the no-cache request
// directive (RFC 9111, section 5.2.1.4).
func clientWantsReload(header http.Header) bool {
	cc := header.Values("Cache-Control")
	if len(cc) == 0 {
		return false
	}
	return rfc9111.ParseCacheControl(cc).NoCache()
}

func safeMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == ""
}
