package rfc9110

import "testing"

func TestEvaluateRange(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]string
		want   RangeResult
	}{
		{"none", nil, RangeResult{Kind: RangeNone}},
		{"other unit", map[string]string{"Range": "items=0-1"}, RangeResult{Kind: RangeNone}},
		{"single", map[string]string{"Range": "bytes=2-4"}, RangeResult{RangeSingle, ByteRange{2, 4}}},
		{"leading spaces", map[string]string{"Range": "  Bytes=2-4"}, RangeResult{RangeSingle, ByteRange{2, 4}}},
		{"suffix", map[string]string{"Range": "bytes=-3"}, RangeResult{RangeSingle, ByteRange{5, 7}}},
		{"open", map[string]string{"Range": "bytes=3-"}, RangeResult{RangeSingle, ByteRange{3, 7}}},
		{"combined", map[string]string{"Range": "bytes=0-2,3-4"}, RangeResult{RangeSingle, ByteRange{0, 4}}},
		{"unsatisfiable", map[string]string{"Range": "bytes=8-10"}, RangeResult{Kind: RangeUnsatisfiable}},
		{"malformed", map[string]string{"Range": "bytes=4-2"}, RangeResult{Kind: RangeIgnored}},
		{"multiple", map[string]string{"Range": "bytes=1-3,5-7"}, RangeResult{Kind: RangeIgnored}},
		{"multiple open", map[string]string{"Range": "bytes=1-3,5-"}, RangeResult{Kind: RangeIgnored}},
		{"multiple suffix", map[string]string{"Range": "bytes=1-3,-2"}, RangeResult{Kind: RangeIgnored}},
		{"if-range match", map[string]string{"Range": "bytes=2-4", "If-Range": testTag}, RangeResult{RangeSingle, ByteRange{2, 4}}},
		{"if-range mismatch", map[string]string{"Range": "bytes=2-4", "If-Range": `"x"`}, RangeResult{Kind: RangeIgnored}},
		{"if-range mismatch unsatisfiable", map[string]string{"Range": "bytes=8-10", "If-Range": `"x"`}, RangeResult{Kind: RangeUnsatisfiable}},
	}
	for _, test := range tests {
		r := newRequest("GET", test.header)
		if got := EvaluateRange(r, 8, testV); got != test.want {
			t.Fatalf("%s: got %+v (%v), expected %+v", test.name, got, got.Kind, test.want)
		}
	}
}
