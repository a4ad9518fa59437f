package rfc9110

import "strconv"

// §  14.4.  Content-Range
// §
// §     The "Content-Range" header field is sent in a single part 206
// §     (Partial Content) response to indicate the partial range of the
// §     selected representation enclosed as the message content, sent in
// §     each part of a multipart 206 response to indicate the range enclosed
// §     within each body part (Section 14.6), and sent in 416 (Range Not
// §     Satisfiable) responses to provide information about the selected
// §     representation.
// §
// §       Content-Range       = range-unit SP
// §                             ( range-resp / unsatisfied-range )
// §
// §       range-resp          = incl-range "/" ( complete-length / "*" )
// §       incl-range          = first-pos "-" last-pos
// §       unsatisfied-range   = "*/" complete-length
// §
// §       complete-length     = 1*DIGIT
//
// ContentRange returns the range-resp form for a satisfied range.
func ContentRange(r ByteRange, size int64) string {
	return "bytes " + strconv.FormatInt(r.Start, 10) + "-" + strconv.FormatInt(r.End, 10) +
		"/" + strconv.FormatInt(size, 10)
}

// UnsatisfiedContentRange returns the unsatisfied-range form sent with a 416.
//
// §     For byte ranges, a sender SHOULD indicate the complete length of
// §     the representation from which the range has been extracted, unless
// §     the complete length is unknown or difficult to determine.
func UnsatisfiedContentRange(size int64) string {
	return "bytes */" + strconv.FormatInt(size, 10)
}
