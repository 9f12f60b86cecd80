package hash

import (
	"crypto/sha256"
	"encoding/hex"
)

const sha256Prefix = "sha256:"

// SHA256 fingerprints canonical entry payloads. Digests carry an algorithm
// prefix so stored hashes stay comparable if the algorithm ever changes.
type SHA256 struct{}

func (SHA256) SumHex(data []byte) string {
	sum := sha256.Sum256(data)
	return sha256Prefix + hex.EncodeToString(sum[:])
}
