// Package auth decodes the caller identity from the bearer credential
// attached to a fulfillment request.
//
// Verification of the credential signature and expiry is delegated to a
// Verifier, an external trusted collaborator. This package only checks
// structural well-formedness, asks the verifier for the subject, and
// derives the stable storage key used to partition task records.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnauthenticated is returned when no credential is present.
	ErrUnauthenticated = errors.New("no credential present")

	// ErrInvalidCredential is returned when the credential is malformed,
	// expired, or rejected by the verifier.
	ErrInvalidCredential = errors.New("invalid credential")
)

// Decoder extracts a verified user identity from a raw bearer credential.
type Decoder struct {
	verifier Verifier
}

// NewDecoder creates a Decoder backed by the given verifier.
func NewDecoder(verifier Verifier) (*Decoder, error) {
	if verifier == nil {
		return nil, errors.New("verifier is required")
	}
	return &Decoder{verifier: verifier}, nil
}

// Decode validates the credential and returns the derived user key.
//
// The credential is the value of the request's authorization header, with
// or without the "Bearer " prefix. Decode has no side effects: every
// failure path returns before any downstream collaborator is touched.
//
// Errors:
//   - ErrUnauthenticated when the credential is empty
//   - ErrInvalidCredential (possibly wrapped) for malformed or rejected tokens
func (d *Decoder) Decode(ctx context.Context, credential string) (string, error) {
	token := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(credential), "Bearer "))
	if token == "" {
		return "", ErrUnauthenticated
	}

	if err := checkStructure(token); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}

	subject, err := d.verifier.Verify(ctx, token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}

	userKey, err := DeriveUserKey(subject)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}

	return userKey, nil
}

// checkStructure verifies the credential has the three-segment compact
// JWT shape before it is handed to the verifier.
func checkStructure(token string) error {
	segments := strings.Split(token, ".")
	if len(segments) != 3 {
		return fmt.Errorf("expected 3 token segments, got %d", len(segments))
	}
	for i, seg := range segments {
		if seg == "" {
			return fmt.Errorf("token segment %d is empty", i)
		}
	}
	return nil
}
