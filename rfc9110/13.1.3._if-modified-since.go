package rfc9110

import (
	"net/http"
	"time"
)

// ifModifiedSinceFails reports whether an If-Modified-Since precondition is
// present and evaluates to false, i.e. the representation was not modified.
//
// §  13.1.3.  If-Modified-Since
// §
// §     The "If-Modified-Since" header field makes a GET or HEAD request
// §     method conditional on the selected representation's modification
// §     date being more recent than the date provided in the field value.
// §
// §       If-Modified-Since = HTTP-date
// §
// §     A recipient MUST ignore If-Modified-Since if the request contains an
// §     If-None-Match header field; the condition in If-None-Match is
// §     considered to be a more accurate replacement for the condition in
// §     If-Modified-Since, and the two are only combined for the sake of
// §     interoperating with older intermediaries that might not implement
// §     If-None-Match.
// §
// §     A recipient MUST ignore the If-Modified-Since header field if the
// §     received field value is not a valid HTTP-date, the field value has
// §     more than one member, or if the request method is neither GET nor
// §     HEAD.
// §
// §     To evaluate a received If-Modified-Since header field:
// §
// §     1.  If the selected representation's last modification date is
// §         earlier or equal to the date provided in the field value, the
// §         condition is false.
// §
// §     2.  Otherwise, the condition is true.
func ifModifiedSinceFails(header http.Header, lastModified time.Time) (fails bool, present bool) {
	value := header.Get("If-Modified-Since")
	if value == "" || lastModified.IsZero() {
		return false, false
	}
	since, err := HttpDate(value)
	if err != nil {
		return false, false
	}
	return !truncateToHttpDate(lastModified).After(since), true
}
