package domain

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// Digest is the one-way transform of a fingerprint secret. Only digests are
// stored; claimed fingerprints are digested at check time and compared.
type Digest [32]byte

// NewDigest hashes secret with SHA3-256.
func NewDigest(secret string) Digest {
	return Digest(sha3.Sum256([]byte(secret)))
}

// Matches reports whether claimed digests to d.
func (d Digest) Matches(claimed string) bool {
	return d == NewDigest(claimed)
}

// String returns a short hex prefix, enough to correlate log lines.
func (d Digest) String() string {
	return hex.EncodeToString(d[:4])
}
