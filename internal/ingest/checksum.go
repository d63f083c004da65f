// Package ingest turns a tree of markdown documentation into embedded page
// sections, re-indexing only documents whose content changed.
package ingest

import (
	"crypto/sha256"
	"encoding/base64"
)

// Checksum returns the base64-encoded SHA-256 of b. It is used purely for
// change detection: identical bytes always produce the same checksum and
// any byte change produces a different one.
func Checksum(b []byte) string {
	sum := sha256.Sum256(b)
	return base64.StdEncoding.EncodeToString(sum[:])
}
