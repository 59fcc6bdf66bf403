package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)
	require.Len(t, salt, 32)

	digest := HashPassword("secret123", salt)
	require.Len(t, digest, 64)
	require.True(t, VerifyPassword("secret123", digest, salt))
	require.False(t, VerifyPassword("secret124", digest, salt))
	require.False(t, VerifyPassword("secret123", digest, salt+"x"))
}

func TestHashPasswordIsDeterministicPerSalt(t *testing.T) {
	require.Equal(t, HashPassword("pw", "salt-a"), HashPassword("pw", "salt-a"))
	require.NotEqual(t, HashPassword("pw", "salt-a"), HashPassword("pw", "salt-b"))
}

func TestHashPasswordEmptyPassword(t *testing.T) {
	digest := HashPassword("", "NaCl")
	_, err := hex.DecodeString(digest)
	require.NoError(t, err)
	require.True(t, VerifyPassword("", digest, "NaCl"))
}

func TestVerifyLegacyPassword(t *testing.T) {
	sum := sha256.Sum256([]byte("hunter2"))
	digest := hex.EncodeToString(sum[:])

	require.Equal(t, SchemeLegacySHA256, SchemeFor(""))
	require.True(t, VerifyPassword("hunter2", digest, ""))
	require.False(t, VerifyPassword("hunter3", digest, ""))
	require.False(t, VerifyPassword("", digest, ""))
}

func TestLegacyDigestKnownValue(t *testing.T) {
	require.Equal(t, "30c952fab122c3f9759f02a6d95c3758b246b4fee239957b2d4fee46e26170c4", LegacyDigest("pw"))
	require.True(t, VerifyPassword("pw", LegacyDigest("pw"), ""))
	require.NotEqual(t, HashPassword("pw", ""), LegacyDigest("pw"))
}

func TestLegacyDigestDoesNotVerifyAsSalted(t *testing.T) {
	sum := sha256.Sum256([]byte("hunter2"))
	digest := hex.EncodeToString(sum[:])

	require.False(t, VerifyPassword("hunter2", digest, "some-salt"))
}

func TestNewSaltIsRandom(t *testing.T) {
	a, err := NewSalt()
	require.NoError(t, err)
	b, err := NewSalt()
	require.NoError(t, err)
	require.NotEqual(t, a, b)
	require.Equal(t, SchemeSaltedPBKDF2, SchemeFor(a))
}
