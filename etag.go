package servebuffer

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// ETag returns a strong entity-tag for buf, made of its length and the
// xxHash64 digest of its contents, both in hex.
func ETag(buf []byte) string {
	return `"` + strconv.FormatInt(int64(len(buf)), 16) + "-" +
		strconv.FormatUint(xxhash.Sum64(buf), 16) + `"`
}
