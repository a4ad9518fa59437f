package servebuffer

import (
	"strings"
	"testing"

	"github.com/always-cache/serve-buffer/rfc9110"
)

func TestETag(t *testing.T) {
	tag := ETag(testBuf)
	if !rfc9110.ValidEntityTag(tag) || rfc9110.IsWeak(tag) {
		t.Fatalf("ETag %s is not a strong entity-tag", tag)
	}
	if !strings.HasPrefix(tag, `"8-`) {
		t.Fatalf("ETag %s does not start with the length", tag)
	}
	if ETag(testBuf) != tag {
		t.Fatal("ETag is not stable")
	}
	if ETag(testBuf[:7]) == tag || ETag([]byte{0xfe, 0xdc, 0xba, 0x09, 0x87, 0x65, 0x43, 0x22}) == tag {
		t.Fatal("Different buffers have the same ETag")
	}
	if empty := ETag(nil); empty != ETag([]byte{}) || !strings.HasPrefix(empty, `"0-`) {
		t.Fatalf("ETag of empty buffer is %s", empty)
	}
}
