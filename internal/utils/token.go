package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// Lifetimes of the one-shot credentials sent to users.
const (
	VerificationTTL = time.Hour
	ResetTTL        = 30 * time.Minute
	OtpTTL          = 5 * time.Minute
)

// LinkToken is a random token mailed in a verification or reset link.
type LinkToken struct {
	Raw       string
	Hash      string
	ExpiresAt time.Time
}

// NewLinkToken creates a 64 hex character token valid for ttl.
func NewLinkToken(ttl time.Duration) (LinkToken, error) {
	raw, err := RandomHex(32)
	if err != nil {
		return LinkToken{}, err
	}
	return LinkToken{Raw: raw, Hash: HashToken(raw), ExpiresAt: time.Now().UTC().Add(ttl)}, nil
}

// NewOtpCode returns a uniformly random six digit code.
func NewOtpCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
