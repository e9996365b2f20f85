package normalize

import (
	"encoding/hex"

	"github.com/go-crypt/x/blake2b"
)

// Fingerprint generates a deterministic one-way hash of normalized text
// using BLAKE2b-256. It is a pure function: the same input always yields
// the same output. The hash is the sole cache-validity signal for stored
// embeddings; no timestamp-based expiry is derived from it.
func Fingerprint(normalized string) string {
	h, _ := blake2b.New(32, nil) // 32 bytes = 256 bits
	h.Write([]byte(normalized))
	return hex.EncodeToString(h.Sum(nil))
}
