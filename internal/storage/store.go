// Package storage handles uploaded image objects: validation, re-encoding and
// persistence under user-scoped keys.
package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// ObjectStore persists processed image objects and resolves their public URLs.
type ObjectStore interface {
	// Put writes data under key and returns the public URL it is served from.
	Put(ctx context.Context, key string, data []byte) (string, error)
	// Remove deletes the object under key. Missing objects are not an error.
	Remove(ctx context.Context, key string) error
	// URL returns the public URL for an existing key without writing anything.
	URL(key string) string
}

// CoverKey builds the storage key for a recipe cover image:
// "{userID}/{unix-timestamp}.{ext}".
func CoverKey(userID uint, ext string) string {
	return fmt.Sprintf("%d/%d.%s", userID, time.Now().Unix(), ext)
}

// StepKey builds the storage key for a step image:
// "{userID}/steps/{unix-timestamp}-{random}.{ext}". The random component keeps
// concurrent uploads within the same second from colliding.
func StepKey(userID uint, ext string) string {
	return fmt.Sprintf("%d/steps/%d-%s.%s", userID, time.Now().Unix(), randomSuffix(), ext)
}

func randomSuffix() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		// Fall back to the clock; worst case two uploads in the same
		// nanosecond collide, which the caller surfaces as a write error.
		return fmt.Sprintf("%x", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
