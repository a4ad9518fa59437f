package rfc9110

import (
	"net/http"
	"time"
)

// ifUnmodifiedSinceFails reports whether an If-Unmodified-Since precondition is
// present (with a valid date) and evaluates to false.
//
// §  13.1.4.  If-Unmodified-Since
// §
// §     The "If-Unmodified-Since" header field makes the request method
// §     conditional on the selected representation's last modification date
// §     being earlier than or equal to the date provided in the field value.
// §
// §       If-Unmodified-Since = HTTP-date
// §
// §     A recipient MUST ignore the If-Unmodified-Since header field if the
// §     received field value is not a valid HTTP-date (including when the
// §     field value appears to be a list of dates).
// §
// §     To evaluate a received If-Unmodified-Since header field:
// §
// §     1.  If the selected representation's last modification date is
// §         earlier than or equal to the date provided in the field value,
// §         the condition is true.
// §
// §     2.  Otherwise, the condition is false.
func ifUnmodifiedSinceFails(header http.Header, lastModified time.Time) (fails bool, present bool) {
	value := header.Get("If-Unmodified-Since")
	if value == "" {
		return false, false
	}
	since, err := HttpDate(value)
	if err != nil {
		return false, false
	}
	return truncateToHttpDate(lastModified).After(since), true
}
