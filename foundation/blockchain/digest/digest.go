// Package digest provides the hashing primitives used by the ledger. Every
// digest is a lowercase hexadecimal SHA-256 with no prefix.
package digest

import (
	"bytes"
	"encoding/hex"
	"encoding/json"

	"github.com/minio/sha256-simd"
)

// String returns the digest of the specified string.
func String(s string) string {
	return Bytes([]byte(s))
}

// Bytes returns the digest of the specified data.
func Bytes(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Canonical returns the digest of the canonical JSON form of the value.
func Canonical(value any) (string, error) {
	data, err := CanonicalJSON(value)
	if err != nil {
		return "", err
	}

	return Bytes(data), nil
}

// CanonicalJSON marshals the value so that the keys of every object, at any
// depth, are sorted by name. Two values holding the same field values always
// produce the same bytes no matter how they were built.
func CanonicalJSON(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	// Decoding into an empty interface turns every object into a map, and
	// the encoder always writes map keys in sorted order. UseNumber keeps
	// the exact text of every number.
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}

	return json.Marshal(generic)
}
