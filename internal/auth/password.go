package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// PBKDF2Iterations is the work factor for salted digests.
	PBKDF2Iterations = 200_000
	pbkdf2KeyLen     = sha256.Size
	saltBytes        = 16
)

// Scheme identifies how a stored digest was produced.
type Scheme int

const (
	// SchemeSaltedPBKDF2 is used for every account created by this service.
	SchemeSaltedPBKDF2 Scheme = iota
	// SchemeLegacySHA256 is a single unsalted SHA-256, accepted for verification only.
	SchemeLegacySHA256
)

// SchemeFor selects the scheme from the stored salt; an empty salt means legacy.
func SchemeFor(salt string) Scheme {
	if salt == "" {
		return SchemeLegacySHA256
	}
	return SchemeSaltedPBKDF2
}

func (s Scheme) String() string {
	switch s {
	case SchemeSaltedPBKDF2:
		return "pbkdf2-sha256"
	case SchemeLegacySHA256:
		return "legacy-sha256"
	default:
		return "unknown"
	}
}

// HashPassword derives the lowercase-hex PBKDF2-HMAC-SHA256 digest of password.
func HashPassword(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), PBKDF2Iterations, pbkdf2KeyLen, sha256.New)
	return hex.EncodeToString(key)
}

// LegacyDigest is the unsalted SHA-256 hex digest stored by accounts that predate salting.
func LegacyDigest(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// VerifyPassword checks password against a stored digest using the scheme implied by salt.
func VerifyPassword(password, digest, salt string) bool {
	var computed string
	switch SchemeFor(salt) {
	case SchemeLegacySHA256:
		computed = LegacyDigest(password)
	default:
		computed = HashPassword(password, salt)
	}
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1
}

// NewSalt returns a random hex salt for a new account.
func NewSalt() (string, error) {
	buf := make([]byte, saltBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
