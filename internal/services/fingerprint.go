package services

import (
	"encoding/hex"
	"encoding/json"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint hashes the stored form of an assessment. It changes whenever
// any field does, including updatedAt, and is used as the HTTP ETag.
func Fingerprint(a *Assessment) (string, error) {
	b, err := json.Marshal(a)
	if err != nil {
		return "", err
	}
	sum := blake2b.Sum256(b)
	return hex.EncodeToString(sum[:16]), nil
}
