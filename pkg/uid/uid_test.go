package uid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewIsValidAndUnique(t *testing.T) {
	a, b := New(), New()
	require.True(t, IsValid(a))
	require.NotEqual(t, a, b)
}

func TestIsValidRejectsOtherSpellings(t *testing.T) {
	id := "6ba7b810-9dad-11d1-80b4-00c04fd430c8"
	require.True(t, IsValid(id))
	for _, bad := range []string{
		"",
		"not-a-uuid",
		"urn:uuid:" + id,
		"{" + id + "}",
		"6BA7B810-9DAD-11D1-80B4-00C04FD430C8",
		"6ba7b8109dad11d180b400c04fd430c8",
	} {
		require.False(t, IsValid(bad), bad)
	}
}
