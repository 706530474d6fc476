package cas

import (
	"crypto/sha256"
	"encoding/hex"
)

// ComputeCID returns the content identifier for a byte sequence: the SHA-256
// digest hex-encoded. Byte-identical input yields byte-identical output, which
// is what makes cross-tool verification possible.
func ComputeCID(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
