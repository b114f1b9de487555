package hash

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

// Parameters of the retired PBKDF2 scheme. Kept only so pre-migration
// credentials can still be verified once and upgraded.
const (
	legacyIterations = 140000
	legacyKeyLen     = sha256.Size
)

// bcrypt reads at most 72 bytes of input. Longer passwords are cut to
// that length on both hashing and verification, matching how hashes for
// such passwords were produced historically.
const maxBcryptBytes = 72

func bcryptInput(password string) []byte {
	b := []byte(password)
	if len(b) > maxBcryptBytes {
		b = b[:maxBcryptBytes]
	}
	return b
}

func HashPassword(password string) (string, error) {
	hashBytes, err := bcrypt.GenerateFromPassword(bcryptInput(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashBytes), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
// A malformed stored hash counts as a mismatch.
func CheckPassword(storedHash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), bcryptInput(password)) == nil
}

// CheckLegacyPassword reproduces the old PBKDF2-HMAC-SHA256 derivation and
// compares against the stored hex digest in constant time.
func CheckLegacyPassword(password, salt, storedHash string) bool {
	digest := pbkdf2.Key([]byte(password), []byte(salt), legacyIterations, legacyKeyLen, sha256.New)
	return subtle.ConstantTimeCompare([]byte(hex.EncodeToString(digest)), []byte(storedHash)) == 1
}
