// Package crypto provides credential digest utilities for Sentinel Portal.
package crypto

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// DigestLength is the length of a hex-encoded SHA-256 digest.
const DigestLength = 64

// PasswordDigest computes the hex SHA-256 digest of a UTF-8 plaintext
// password. The digest is deterministic and unsalted: the same plaintext
// always yields the same digest. Known weakness for offline attacks; kept
// for parity with the stored credential format.
func PasswordDigest(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// VerifyPassword compares a plaintext password against a stored digest in
// constant time.
func VerifyPassword(plaintext, storedDigest string) bool {
	computed := PasswordDigest(plaintext)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedDigest)) == 1
}

// ValidDigest reports whether s looks like a hex SHA-256 digest.
func ValidDigest(s string) bool {
	if len(s) != DigestLength {
		return false
	}
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
