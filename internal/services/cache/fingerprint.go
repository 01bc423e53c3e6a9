package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// Fingerprint derives the deterministic cache key for a generation
// request. The three inputs are length-prefixed and NUL-terminated
// before hashing so that no two distinct (model, system, user) triples
// produce the same byte stream. Returns a 64-character hex digest.
func Fingerprint(model, system, user string) string {
	h := sha256.New()
	for _, part := range []string{model, system, user} {
		fmt.Fprintf(h, "%d:", len(part))
		io.WriteString(h, part)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
