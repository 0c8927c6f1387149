package service

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"

	"golang.org/x/crypto/pbkdf2"
)

// KDF parameters for password hashing. Fixed: changing any of them
// invalidates every stored credential.
const (
	hashIterations = 256
	hashKeyLength  = 64
	saltBytes      = 64
)

// HashPassword derives a base64-encoded PBKDF2-SHA512 hash from a plaintext
// password and a per-user salt. Deterministic: the same (password, salt) pair
// always yields the same hash, which login relies on.
func HashPassword(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), hashIterations, hashKeyLength, sha512.New)
	return base64.StdEncoding.EncodeToString(key)
}

// NewSalt generates a fresh hex-encoded random salt, one per user at signup
// or password change.
func NewSalt() (string, error) {
	bytes := make([]byte, saltBytes)
	_, err := rand.Read(bytes)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// VerifyPassword recomputes the hash with the stored salt and compares it in
// constant time against the stored hash.
func VerifyPassword(password, salt, storedHash string) bool {
	computed := HashPassword(password, salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
}
