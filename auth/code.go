package auth

import (
	"math/rand"

	"golang.org/x/crypto/bcrypt"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// CodeLength is the length of emailed security codes.
const CodeLength = 6

// NewSecurityCode returns a 6-character uppercase alphanumeric code. Codes
// are emailed for registration/login confirmation and are not checked for
// collisions at issuance.
func NewSecurityCode() string {
	b := make([]byte, CodeLength)
	for i := range b {
		b[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return string(b)
}

// HashPassword hashes a plaintext password for storage in the sheet.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
