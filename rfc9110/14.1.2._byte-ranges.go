package rfc9110

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrMalformedRange is returned for a Range field value that does not
	// follow the ranges-specifier grammar. Such a field is ignored.
	ErrMalformedRange = errors.New("malformed range")
	// ErrUnsatisfiableRange is returned when no range in a valid
	// ranges-specifier overlaps the selected representation.
	ErrUnsatisfiableRange = errors.New("range not satisfiable")
)

// ByteRange is a satisfiable range with both positions inclusive.
type ByteRange struct {
	Start int64
	End   int64
}

// Length returns the number of bytes in the range.
func (r ByteRange) Length() int64 {
	return r.End - r.Start + 1
}

// §  14.1.2.  Byte Ranges
// §
// §     The "first-pos" value in a int-range gives the offset of the first
// §     byte in a range.  The "last-pos" value gives the offset of the last
// §     byte in the range; that is, the byte positions specified are
// §     inclusive.  Byte offsets start at zero.
// §
// §       ranges-specifier = range-unit "=" range-set
// §       range-set        = 1#range-spec
// §       range-spec       = int-range
// §                        / suffix-range
// §                        / other-range
// §
// §       int-range     = first-pos "-" [ last-pos ]
// §       first-pos     = 1*DIGIT
// §       last-pos      = 1*DIGIT
// §
// §       suffix-range  = "-" suffix-length
// §       suffix-length = 1*DIGIT
// §
// §     An int-range is invalid if the last-pos value is present and less
// §     than the first-pos.
type rangeSpec struct {
	first, last int64 // -1 if absent
	suffix      int64 // -1 if not a suffix-range
}

// ParseRange parses a "bytes" ranges-specifier for a representation of the
// given size and returns the satisfiable ranges, with overlapping and adjacent
// ranges combined. The ranges are returned in the order in which they were
// first requested.
//
// It returns ErrMalformedRange if the value is syntactically invalid, and
// ErrUnsatisfiableRange if it is valid but no range is satisfiable.
func ParseRange(size int64, value string) ([]ByteRange, error) {
	unit, set, found := strings.Cut(strings.TrimLeft(value, " "), "=")
	if !found || !strings.EqualFold(strings.TrimSpace(unit), "bytes") {
		return nil, ErrMalformedRange
	}

	specs := make([]rangeSpec, 0, 1)
	for _, member := range ParseTokenList(set) {
		if member == "" {
			continue
		}
		spec, ok := parseRangeSpec(member)
		if !ok {
			return nil, ErrMalformedRange
		}
		specs = append(specs, spec)
	}
	if len(specs) == 0 {
		return nil, ErrMalformedRange
	}

	ranges := make([]ByteRange, 0, len(specs))
	for _, spec := range specs {
		if r, ok := satisfy(spec, size); ok {
			ranges = append(ranges, r)
		}
	}
	if len(ranges) == 0 {
		return nil, ErrUnsatisfiableRange
	}
	return combineRanges(ranges), nil
}

func parseRangeSpec(spec string) (rangeSpec, bool) {
	firstStr, lastStr, found := strings.Cut(spec, "-")
	if !found {
		return rangeSpec{}, false
	}
	firstStr = strings.TrimSpace(firstStr)
	lastStr = strings.TrimSpace(lastStr)
	if firstStr == "" {
		suffix, ok := parsePos(lastStr)
		if !ok {
			return rangeSpec{}, false
		}
		return rangeSpec{first: -1, last: -1, suffix: suffix}, true
	}
	first, ok := parsePos(firstStr)
	if !ok {
		return rangeSpec{}, false
	}
	if lastStr == "" {
		return rangeSpec{first: first, last: -1, suffix: -1}, true
	}
	last, ok := parsePos(lastStr)
	if !ok || last < first {
		return rangeSpec{}, false
	}
	return rangeSpec{first: first, last: last, suffix: -1}, true
}

// parsePos parses 1*DIGIT. Values too large to represent saturate,
// which keeps them unsatisfiable rather than malformed.
func parsePos(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return math.MaxInt64, true
	}
	return n, true
}

// §  14.1.1.  Range Units
// §
// §     A range-set is satisfiable if at least one of its ranges is
// §     satisfiable.
// §
// §     For byte ranges, "satisfiable" means that the int-range has a
// §     first-pos less than the current length of the selected
// §     representation, or that a suffix-range has a non-zero
// §     suffix-length.
// §
// §     If the last-pos value is absent, or if the value is greater than or
// §     equal to the current length of the representation data, the byte
// §     range is interpreted as the remainder of the representation.
// §
// §     If the selected representation is shorter than the specified
// §     suffix-length, the entire representation is used.
func satisfy(spec rangeSpec, size int64) (ByteRange, bool) {
	if size <= 0 {
		return ByteRange{}, false
	}
	if spec.suffix >= 0 {
		if spec.suffix == 0 {
			return ByteRange{}, false
		}
		start := size - spec.suffix
		if start < 0 {
			start = 0
		}
		return ByteRange{Start: start, End: size - 1}, true
	}
	if spec.first >= size {
		return ByteRange{}, false
	}
	end := spec.last
	if end < 0 || end > size-1 {
		end = size - 1
	}
	return ByteRange{Start: spec.first, End: end}, true
}

// combineRanges merges overlapping and adjacent ranges. Each merged range
// keeps the position of the earliest range it absorbed.
func combineRanges(ranges []ByteRange) []ByteRange {
	if len(ranges) < 2 {
		return ranges
	}
	type indexed struct {
		ByteRange
		index int
	}
	ordered := make([]indexed, len(ranges))
	for i, r := range ranges {
		ordered[i] = indexed{r, i}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start < ordered[j].Start
	})

	j := 0
	for i := 1; i < len(ordered); i++ {
		current := &ordered[j]
		next := ordered[i]
		if next.Start > current.End+1 {
			j++
			ordered[j] = next
		} else if next.End > current.End {
			current.End = next.End
			if next.index < current.index {
				current.index = next.index
			}
		}
	}
	ordered = ordered[:j+1]

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].index < ordered[j].index
	})
	combined := make([]ByteRange, len(ordered))
	for i, r := range ordered {
		combined[i] = r.ByteRange
	}
	return combined
}
