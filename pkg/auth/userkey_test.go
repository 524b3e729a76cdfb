package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveUserKey(t *testing.T) {
	key, err := DeriveUserKey("alice")
	require.NoError(t, err)

	// SHA256("alice"), hex-encoded.
	assert.Equal(t, "2bd806c97f0e00af1a1fc3328fa763a9269723c8db8fac4f93af71db186d6e90", key)
	assert.True(t, ValidUserKey(key))
}

func TestDeriveUserKey_Deterministic(t *testing.T) {
	a, err := DeriveUserKey("google-oauth2|1234567890")
	require.NoError(t, err)
	b, err := DeriveUserKey("google-oauth2|1234567890")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDeriveUserKey_DistinctSubjects(t *testing.T) {
	a, err := DeriveUserKey("user-1")
	require.NoError(t, err)
	b, err := DeriveUserKey("user-2")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDeriveUserKey_EmptySubject(t *testing.T) {
	_, err := DeriveUserKey("")
	assert.ErrorIs(t, err, ErrEmptySubject)
}

func TestValidUserKey(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{in: "2bd806c97f0e00af1a1fc3328fa763a9269723c8db8fac4f93af71db186d6e90", want: true},
		{in: "2BD806C97F0E00AF1A1FC3328FA763A9269723C8DB8FAC4F93AF71DB186D6E90", want: false},
		{in: "short", want: false},
		{in: "", want: false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidUserKey(tt.in), "input %q", tt.in)
	}
}
