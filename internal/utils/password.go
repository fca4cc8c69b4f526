package utils

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns bcrypt hash using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares bcrypt hash and plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// PasswordPolicy describes the password rule shown to users.
const PasswordPolicy = "password must be at least 8 characters and contain an uppercase letter, a digit and a special character"

// StrongPassword reports whether p has at least 8 characters, one upper-case
// letter, one digit and one character that is neither a letter nor a digit.
func StrongPassword(p string) bool {
	if len([]rune(p)) < 8 || strings.ContainsAny(p, " \t\n") {
		return false
	}
	var upper, digit, special bool
	for _, r := range p {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case !unicode.IsLetter(r):
			special = true
		}
	}
	return upper && digit && special
}
