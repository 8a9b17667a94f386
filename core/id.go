package core

import (
	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

// PointIDFromPath derives a stable UUID for a file path using BLAKE2b hashing.
// The same path always yields the same ID, so re-indexing a file overwrites its point.
func PointIDFromPath(path string) string {
	h, _ := blake2b.New(16, nil) // 16 bytes = 128 bits
	h.Write([]byte(path))
	sum := h.Sum(nil)

	// Stamp version 4 and RFC 4122 variant bits so the ID is a well-formed UUID.
	sum[6] = (sum[6] & 0x0f) | 0x40
	sum[8] = (sum[8] & 0x3f) | 0x80

	id, err := uuid.FromBytes(sum)
	if err != nil {
		// FromBytes only fails on length mismatch
		panic(err)
	}
	return id.String()
}
