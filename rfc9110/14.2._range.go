package rfc9110

import (
	"errors"
	"net/http"
	"regexp"
)

var bytesRangePattern = regexp.MustCompile(`(?i)^ *bytes=`)

// EvaluateRange decides how the Range header field of a request applies to a
// representation of the given size. It is to be called only once the
// preconditions evaluated to PreconditionPass.
//
// Only a single range is ever honored: a request for several ranges is
// answered with the full representation instead of a multipart response.
//
// §  14.2.  Range
// §
// §     The "Range" header field on a GET request modifies the method
// §     semantics to request transfer of only one or more subranges of the
// §     selected representation data (Section 8.1), rather than the entire
// §     selected representation.
// §
// §       Range = ranges-specifier
// §
// §     A server MAY ignore the Range header field.  However, origin servers
// §     and intermediate caches ought to support byte ranges when possible,
// §     since they support efficient recovery from partially failed
// §     transfers and partial retrieval of large representations.
// §
// §     A server MUST ignore a Range header field received with a request
// §     method that is unrecognized or for which range handling is not
// §     defined.  For this specification, GET is the only method for which
// §     range handling is defined.
// §
// §     A server that receives a Range header field it does not understand
// §     or that is syntactically invalid ... MAY ignore the Range header field.
// §
// §     If all of the preconditions are true, the server supports the Range
// §     header field for the target resource, the received Range field-value
// §     contains a range-unit supported for that target resource, and that
// §     range-set is satisfiable with respect to the selected representation,
// §     the server SHOULD send a 206 (Partial Content) response with content
// §     containing one or more partial representations that correspond to the
// §     satisfiable range-spec(s) requested.
// §
// §     If all of the preconditions are true, the server supports the Range
// §     header field for the target resource, the received Range field-value
// §     contains a range-unit supported for that target resource, and that
// §     range-set is unsatisfiable, the server SHOULD send a 416 (Range Not
// §     Satisfiable) response.
func EvaluateRange(r *http.Request, size int64, v Validators) RangeResult {
	value := r.Header.Get("Range")
	if !bytesRangePattern.MatchString(value) {
		return RangeResult{Kind: RangeNone}
	}

	ranges, err := ParseRange(size, value)
	if errors.Is(err, ErrUnsatisfiableRange) {
		// If-Range is not consulted: an unsatisfiable range-set gets a 416
		// whatever the client's validator says.
		return RangeResult{Kind: RangeUnsatisfiable}
	}
	if err != nil || len(ranges) != 1 || !IsClientRangeFresh(r.Header, v) {
		return RangeResult{Kind: RangeIgnored}
	}
	return RangeResult{Kind: RangeSingle, Range: ranges[0]}
}
