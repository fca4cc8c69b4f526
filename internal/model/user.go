package model

import "time"

// Roles recognised by the JWT role claim.
const (
	RoleCustomer = "CUSTOMER"
	RoleAdmin    = "ADMIN"
)

// User mirrors a row of the `users` table.  Token hashes are kept on the
// row itself; the raw tokens only ever travel in e-mails.
type User struct {
	ID                    uint64     // users.id
	Name                  string     // users.name
	Email                 string     // users.email (lower-cased)
	Phone                 string     // users.phone (10 local digits)
	PasswordHash          string     // users.password_hash (bcrypt)
	Role                  string     // CUSTOMER | ADMIN
	EmailVerified         bool       // users.email_verified
	VerificationTokenHash *string    // sha256 of the e-mail verification token
	VerificationExpiresAt *time.Time // 1 hour after issue
	ResetTokenHash        *string    // sha256 of the password reset token
	ResetExpiresAt        *time.Time // 30 minutes after issue
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// RefreshToken models an entry in the `refresh_tokens` table.  The plain
// token is not stored; only its SHA-256 hash.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

// Otp is a one-time code issued to a user; it expires five minutes after creation.
type Otp struct {
	ID        uint64
	UserID    uint64
	Code      string
	ExpiresAt time.Time
	CreatedAt time.Time
}
