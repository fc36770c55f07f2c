package store

import "golang.org/x/crypto/bcrypt"

// HashSecret derives the stored password hash from a submitted secret.
// The plaintext never reaches a backend.
func HashSecret(secret string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// VerifySecret reports whether secret matches the stored hash. bcrypt's
// comparison is constant-time with respect to the hash contents.
func VerifySecret(hash, secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}
