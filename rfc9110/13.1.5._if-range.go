package rfc9110

import (
	"net/http"
	"strings"
)

// IsClientRangeFresh reports whether the Range header field is to be honored
// with respect to If-Range. It is true when either field is absent.
//
// §  13.1.5.  If-Range
// §
// §     The "If-Range" header field provides a special conditional request
// §     mechanism that is similar to the If-Match and If-Unmodified-Since
// §     header fields but that instructs the recipient to ignore the Range
// §     header field if the validator doesn't match, resulting in transfer
// §     of the new selected representation instead of a 412 (Precondition
// §     Failed) response.
// §
// §       If-Range = entity-tag / HTTP-date
// §
// §     A server MUST ignore an If-Range header field received in a request
// §     that does not contain a Range header field.
func IsClientRangeFresh(header http.Header, v Validators) bool {
	if header.Get("Range") == "" {
		return true
	}
	ifRange := header.Get("If-Range")
	if ifRange == "" {
		return true
	}

	// §     A valid entity-tag can be distinguished from a valid HTTP-date by
	// §     examining the first three characters for a DQUOTE.
	// §
	// §     To evaluate a received If-Range header field containing an entity-tag:
	// §
	// §     1.  If the entity-tag validator provided exactly matches the
	// §         ETag field value for the selected representation using the
	// §         strong comparison function (Section 8.8.3.2), the condition is
	// §         true.
	// §
	// §     2.  Otherwise, the condition is false.
	if ifRange[0] == '"' {
		return v.ETag != "" && strings.Contains(ifRange, v.ETag)
	}
	if strings.HasPrefix(ifRange, weakPrefix+`"`) {
		// a weak validator never passes the strong comparison
		return false
	}

	// §     To evaluate a received If-Range header field containing an HTTP-date:
	// §
	// §     1.  If the HTTP-date validator provided is not a strong validator
	// §         in the sense defined by Section 8.8.2.2, the condition is false.
	// §
	// §     2.  If the HTTP-date validator provided exactly matches the
	// §         Last-Modified field value for the selected representation, the
	// §         condition is true.
	// §
	// §     3.  Otherwise, the condition is false.
	//
	// This is an exact match, unlike the "earlier than or equal to"
	// comparison used for If-Unmodified-Since.
	date, err := HttpDate(ifRange)
	if err != nil || v.LastModified.IsZero() {
		return false
	}
	return date.Equal(truncateToHttpDate(v.LastModified))
}
