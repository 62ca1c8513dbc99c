package utils

import (
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// BCRYPT_COST overrides the default cost; tests lower it to bcrypt.MinCost.
func bcryptCost() int {
	if n, err := strconv.Atoi(os.Getenv("BCRYPT_COST")); err == nil && n >= bcrypt.MinCost && n <= bcrypt.MaxCost {
		return n
	}
	return bcrypt.DefaultCost
}

func HashPassword(s string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(s), bcryptCost())
}

func ComparePassword(hashed string, normal string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(normal))
}
