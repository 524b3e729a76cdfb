package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"regexp"
)

// ErrEmptySubject is returned when the verifier yields an empty subject.
var ErrEmptySubject = errors.New("subject cannot be empty")

var userKeyPattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// DeriveUserKey derives a stable user key from a credential subject using
// SHA256 hashing.
//
// The key is computed as SHA256(subject) and returned hex-encoded. This
// gives a one-way, deterministic mapping from subject to storage key:
//   - Consistent: the same subject always produces the same key
//   - Irreversible: the raw subject never reaches the store or the logs
//
// The key is the partition key for all task lookups; records of different
// subjects can never collide into one collection.
//
// Returns ErrEmptySubject if subject is empty.
func DeriveUserKey(subject string) (string, error) {
	if subject == "" {
		return "", ErrEmptySubject
	}

	hash := sha256.Sum256([]byte(subject))
	return hex.EncodeToString(hash[:]), nil
}

// ValidUserKey reports whether s has the 64-character lowercase hex shape
// produced by DeriveUserKey.
func ValidUserKey(s string) bool {
	return userKeyPattern.MatchString(s)
}
