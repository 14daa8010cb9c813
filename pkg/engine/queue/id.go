package queue

import (
	"crypto/rand"
	"encoding/hex"
)

// generateID produces a stable opaque identifier for submissions that
// arrive without a caller-assigned id.
func generateID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand.Read only fails if the OS source is broken; rather
		// than panic in a hot path, the id is built from whatever the
		// buffer holds with its first byte flipped, which is not
		// guaranteed to be unique.
		buf[0] ^= 0xA5
	}
	return "sub_" + hex.EncodeToString(buf)
}
