package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/venue-booking/internal/model"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `id, name, email, phone, password_hash, role, email_verified,
	verification_token_hash, verification_expires_at, reset_token_hash, reset_expires_at,
	created_at, updated_at`

// NewUser carries the fields of a signup; PasswordHash is already bcrypted.
type NewUser struct {
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	Role         string
}

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var (
		u                        model.User
		verHash, resetHash       sql.NullString
		verExpires, resetExpires sql.NullTime
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.Role, &u.EmailVerified,
		&verHash, &verExpires, &resetHash, &resetExpires, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	if verHash.Valid {
		u.VerificationTokenHash = &verHash.String
	}
	if verExpires.Valid {
		u.VerificationExpiresAt = &verExpires.Time
	}
	if resetHash.Valid {
		u.ResetTokenHash = &resetHash.String
	}
	if resetExpires.Valid {
		u.ResetExpiresAt = &resetExpires.Time
	}
	return &u, nil
}

func dupUserErr(err error) error {
	switch {
	case isDuplicate(err, "uq_users_email"):
		return ErrEmailExists
	case isDuplicate(err, "uq_users_phone"):
		return ErrPhoneExists
	}
	return err
}

// Create inserts a user and returns its ID.  Unique violations map to
// ErrEmailExists / ErrPhoneExists.
func (r *UserRepo) Create(ctx context.Context, nu NewUser) (uint64, error) {
	role := nu.Role
	if role == "" {
		role = model.RoleCustomer
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, phone, password_hash, role) VALUES (?,?,?,?,?)",
		strings.TrimSpace(nu.Name), normEmail(nu.Email), strings.TrimSpace(nu.Phone), nu.PasswordHash, role)
	if err != nil {
		return 0, dupUserErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", normEmail(email)))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// FindByEmailAndPhone is used by the OTP flow, which identifies users by both.
func (r *UserRepo) FindByEmailAndPhone(ctx context.Context, email, phone string) (*model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? AND phone=? LIMIT 1", normEmail(email), strings.TrimSpace(phone)))
}

// TakenBy reports which of email/phone already belong to a user other than exceptID.
func (r *UserRepo) TakenBy(ctx context.Context, email, phone string, exceptID uint64) (emailTaken, phoneTaken bool, err error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT email, phone FROM users WHERE (email=? OR phone=?) AND id<>?",
		normEmail(email), strings.TrimSpace(phone), exceptID)
	if err != nil {
		return false, false, err
	}
	defer rows.Close()
	for rows.Next() {
		var e, p string
		if err := rows.Scan(&e, &p); err != nil {
			return false, false, err
		}
		emailTaken = emailTaken || e == normEmail(email)
		phoneTaken = phoneTaken || p == strings.TrimSpace(phone)
	}
	return emailTaken, phoneTaken, rows.Err()
}

// UpdateProfile changes name/email/phone.  When the e-mail changes the
// account drops back to unverified and gets a fresh verification token.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, name, email, phone string, newVerification *TokenGrant) error {
	var (
		res sql.Result
		err error
	)
	if newVerification != nil {
		res, err = r.DB.ExecContext(ctx,
			`UPDATE users SET name=?, email=?, phone=?, email_verified=0,
			 verification_token_hash=?, verification_expires_at=? WHERE id=?`,
			strings.TrimSpace(name), normEmail(email), strings.TrimSpace(phone),
			newVerification.Hash, newVerification.ExpiresAt, id)
	} else {
		res, err = r.DB.ExecContext(ctx,
			"UPDATE users SET name=?, email=?, phone=? WHERE id=?",
			strings.TrimSpace(name), normEmail(email), strings.TrimSpace(phone), id)
	}
	if err != nil {
		return dupUserErr(err)
	}
	return requireAffected(res)
}

// TokenGrant is a hashed single-use token and its expiry.
type TokenGrant struct {
	Hash      string
	ExpiresAt time.Time
}

// SetVerificationToken stores a new e-mail verification token hash.
func (r *UserRepo) SetVerificationToken(ctx context.Context, id uint64, g TokenGrant) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET verification_token_hash=?, verification_expires_at=? WHERE id=?",
		g.Hash, g.ExpiresAt, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// MarkVerified flips email_verified when the token hash matches and has not
// expired.  It returns sql.ErrNoRows when no row qualifies.
func (r *UserRepo) MarkVerified(ctx context.Context, email, tokenHash string, now time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET email_verified=1, verification_token_hash=NULL, verification_expires_at=NULL
		 WHERE email=? AND verification_token_hash=? AND verification_expires_at > ?`,
		normEmail(email), tokenHash, now)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// SetResetToken stores a password reset token hash.
func (r *UserRepo) SetResetToken(ctx context.Context, id uint64, g TokenGrant) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET reset_token_hash=?, reset_expires_at=? WHERE id=?", g.Hash, g.ExpiresAt, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// ResetPassword replaces the password when the reset token is valid and
// clears the token so it cannot be reused.
func (r *UserRepo) ResetPassword(ctx context.Context, email, tokenHash, passwordHash string, now time.Time) (uint64, error) {
	u, err := r.GetByEmail(ctx, email)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET password_hash=?, reset_token_hash=NULL, reset_expires_at=NULL
		 WHERE id=? AND reset_token_hash=? AND reset_expires_at > ?`,
		passwordHash, u.ID, tokenHash, now)
	if err != nil {
		return 0, err
	}
	if err := requireAffected(res); err != nil {
		return 0, err
	}
	return u.ID, nil
}

// UpdatePassword sets a new bcrypt hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, passwordHash string) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE users SET password_hash=? WHERE id=?", passwordHash, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// Delete removes a user; OTPs, refresh tokens and bookings cascade.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	return requireAffected(res)
}

func normEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }

// requireAffected turns a no-op UPDATE/DELETE into sql.ErrNoRows.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
