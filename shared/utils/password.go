package utils

import (
	"crypto/rand"
	"crypto/sha512"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

const bcryptCost = 10

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext password matches the hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateResetToken returns a random password-reset token and the digest
// stored in its place. Only the digest ever touches the database.
func GenerateResetToken() (token string, digest string, err error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	token = hex.EncodeToString(raw)
	return token, HashResetToken(token), nil
}

// HashResetToken derives the stored digest for a password-reset token.
func HashResetToken(token string) string {
	return hex.EncodeToString(pbkdf2.Key([]byte(token), []byte("salt"), 100000, 64, sha512.New))
}
