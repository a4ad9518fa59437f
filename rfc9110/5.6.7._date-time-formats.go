package rfc9110

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// §  5.6.7.  Date/Time Formats
// §
// §     Prior to 1995, there were three different formats commonly used by
// §     servers to communicate timestamps.  For compatibility with old
// §     implementations, all three are defined here.  The preferred format is
// §     a fixed-length and single-zone subset of the date and time
// §     specification used by the Internet Message Format [RFC5322].
// §
// §       HTTP-date    = IMF-fixdate / obs-date
// §
// §     An example of the preferred format is
// §
// §       Sun, 06 Nov 1994 08:49:37 GMT    ; IMF-fixdate
// §
// §     Examples of the two obsolete formats are
// §
// §       Sunday, 06-Nov-94 08:49:37 GMT   ; obsolete RFC 850 format
// §       Sun Nov  6 08:49:37 1994         ; ANSI C's asctime() format
// §
// §     A recipient that parses a timestamp value in an HTTP field MUST
// §     accept all three HTTP-date formats.  When a sender generates a field
// §     that contains one or more timestamps defined as HTTP-date, the sender
// §     MUST generate those timestamps in the IMF-fixdate format.
func HttpDate(dateStr string) (time.Time, error) {
	if date, err := imfDate(dateStr); err == nil {
		return date, err
	} else {
		// try to parse as obsolete date
		if date, err := obsDate(dateStr); err == nil {
			return date, err
		}
		// return original error if unsuccessful
		return date, err
	}
}

// FormatHttpDate formats t as IMF-fixdate, always in GMT.
func FormatHttpDate(t time.Time) string {
	return t.UTC().Format(http.TimeFormat)
}

// §     Preferred format:
// §
// §       IMF-fixdate  = day-name "," SP date1 SP time-of-day SP GMT
// §       ; fixed length/zone/capitalization subset of the format
// §       ; see Section 3.3 of [RFC5322]
const imfDateLayout = "Mon, 02 Jan 2006 15:04:05 MST"

func imfDate(dateStr string) (time.Time, error) {
	date, err := time.Parse(imfDateLayout, normalizeDateStr(dateStr))
	if err != nil {
		return date, err
	}
	if zone, offset := date.Zone(); offset != 0 || (zone != "GMT" && zone != "UTC") {
		return date, fmt.Errorf("Date %s is not in GMT time, but %s", date, zone)
	}
	return date.UTC(), err
}

// §     Obsolete formats:
// §
// §       obs-date     = rfc850-date / asctime-date
// §
// §       rfc850-date  = day-name-l "," SP date2 SP time-of-day SP GMT
// §       asctime-date = day-name SP date3 SP time-of-day SP year
func obsDate(dateStr string) (time.Time, error) {
	str := normalizeDateStr(dateStr)
	if date, err := time.Parse(time.RFC850, str); err == nil {
		return date.UTC(), err
	}
	date, err := time.Parse(time.ANSIC, str)
	return date.UTC(), err
}

// normalizeDateStr upper-cases the zone abbreviation only, so that
// a lower-case "gmt" is still accepted.
//
// §     HTTP-date is case sensitive.  Note that Section 4.2 of [CACHING]
// §     relaxes this for cache recipients.
func normalizeDateStr(dateStr string) string {
	str := strings.TrimSpace(dateStr)
	if i := strings.LastIndexByte(str, ' '); i >= 0 && strings.EqualFold(str[i+1:], "gmt") {
		return str[:i+1] + "GMT"
	}
	return str
}

// §     Recipients of timestamp values are encouraged to be robust in parsing
// §     timestamps unless otherwise restricted by the field definition.
//
// HTTP-dates have a resolution of one second, so comparisons against a
// locally known time have to drop the sub-second part first.
func truncateToHttpDate(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
