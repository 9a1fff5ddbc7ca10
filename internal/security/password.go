package security

import "golang.org/x/crypto/bcrypt"

// bcrypt work factor for newly hashed passwords.
const passwordCost = 10

// HashPassword hashes a plain text password with a salted bcrypt digest.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), passwordCost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// CheckPassword compares a bcrypt hash with a plaintext password.
func CheckPassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
