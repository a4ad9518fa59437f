package rfc9111

import (
	"strconv"
	"time"
)

// §  1.2.  Syntax Notation
// §
// §     This specification uses the Augmented Backus-Naur Form (ABNF)
// §     notation of [RFC5234], extended with the notation for case-
// §     sensitivity in strings defined in [RFC7405].
// §
// §     It also uses a list extension, defined in Section 5.6.1 of [HTTP],
// §     that allows for compact definition of comma-separated lists using a
// §     "#" operator (similar to how the "*" operator indicates repetition).
//
// HTTP-date lives in package rfc9110.

// §  1.2.2. Delta Seconds
// §
// §  The delta-seconds rule specifies a non-negative integer, representing time
// §  in seconds.
// §
// §      delta-seconds  = 1*DIGIT
// §
// §  A recipient parsing a delta-seconds value and converting it to binary form
// §  ought to use an arithmetic type of at least 31 bits of non-negative integer
// §  range. If a cache receives a delta-seconds value greater than the greatest
// §  integer it can represent, or if any of its subsequent calculations overflows,
// §  the cache MUST consider the value to be 2147483648 (231) or the greatest
// §  positive integer it can conveniently represent.
func deltaSeconds(secondsStr string) time.Duration {
	seconds, err := strconv.ParseUint(secondsStr, 10, 64)
	if err != nil {
		if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
			return maxDeltaSeconds
		}
		return 0
	}
	if seconds > uint64(maxDeltaSeconds/time.Second) {
		return maxDeltaSeconds
	}
	return time.Second * time.Duration(seconds)
}

const maxDeltaSeconds = 2147483648 * time.Second

// toDeltaSeconds formats a duration as delta-seconds, dropping any fraction
// of a second. Negative durations become zero.
func toDeltaSeconds(duration time.Duration) string {
	if duration < 0 {
		return "0"
	}
	return strconv.FormatInt(int64(duration/time.Second), 10)
}
