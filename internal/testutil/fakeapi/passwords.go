package fakeapi

import (
	"golang.org/x/crypto/bcrypt"
)

// Accounts keep bcrypt hashes like the real backend, at the lowest cost to keep tests fast
func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return string(hash), err
}

func checkPassword(hash string, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
