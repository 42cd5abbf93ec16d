package storage

import (
	"crypto/sha256"
	"encoding/hex"
)

// Checksum identifies one version of a post file: the hex SHA-256 of its bytes.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Changed reports whether data differs from the version identified by sum.
// An empty sum means the post has not been seen before.
func Changed(sum string, data []byte) bool {
	return sum == "" || sum != Checksum(data)
}
