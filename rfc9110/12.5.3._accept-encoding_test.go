package rfc9110

import (
	"net/http"
	"reflect"
	"testing"
)

func TestNegotiateEncoding(t *testing.T) {
	available := []string{"gzip", "br"}
	tests := []struct {
		accept []string
		want   []string
	}{
		{nil, []string{}},
		{[]string{""}, []string{}},
		{[]string{"identity"}, []string{}},
		{[]string{"gzip"}, []string{"gzip"}},
		{[]string{"br, gzip"}, []string{"br", "gzip"}},
		{[]string{"gzip, br"}, []string{"gzip", "br"}},
		{[]string{"gzip, deflate, br"}, []string{"gzip", "br"}},
		{[]string{"gzip;q=0.5, br"}, []string{"br", "gzip"}},
		{[]string{"gzip;q=0, br"}, []string{"br"}},
		{[]string{"GZIP"}, []string{"gzip"}},
		{[]string{"*"}, []string{"gzip", "br"}},
		{[]string{"*, br;q=0.1"}, []string{"gzip", "br"}},
		{[]string{"br;q=0.8, *;q=0.9"}, []string{"gzip", "br"}},
		{[]string{"*;q=0"}, []string{}},
		{[]string{"gzip;q=abc, br"}, []string{"br"}},
		{[]string{"gzip", "br"}, []string{"gzip", "br"}},
	}
	for _, test := range tests {
		header := http.Header{}
		for _, value := range test.accept {
			header.Add("Accept-Encoding", value)
		}
		if got := NegotiateEncoding(header, available); !reflect.DeepEqual(got, test.want) {
			t.Fatalf("Accept-Encoding %q negotiated %q, expected %q", test.accept, got, test.want)
		}
	}
}

func TestNegotiateEncodingProvidedOrder(t *testing.T) {
	header := http.Header{"Accept-Encoding": []string{"*"}}
	got := NegotiateEncoding(header, []string{"br", "gzip"})
	if !reflect.DeepEqual(got, []string{"br", "gzip"}) {
		t.Fatalf("negotiated %q", got)
	}
}
