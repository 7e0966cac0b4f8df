package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/storefront-service/internal/domain"
)

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword checks a candidate password against the user's stored hash.
// It reports false, never an error, when the user has no local password
// (federated-only account) or the comparison fails. bcrypt's comparison runs
// in constant time relative to the hash length.
func VerifyPassword(user *domain.User, candidate string) bool {
	if user == nil || user.PasswordHash == nil || *user.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(candidate)) == nil
}
