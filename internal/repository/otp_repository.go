package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/venue-booking/internal/model"
)

// OtpRepo stores one-time codes.
type OtpRepo struct{ DB *sql.DB }

func NewOtpRepo(db *sql.DB) *OtpRepo { return &OtpRepo{DB: db} }

// Create stores a code for userID.
func (r *OtpRepo) Create(ctx context.Context, userID uint64, code string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO otps (user_id, otp_code, expires_at) VALUES (?,?,?)", userID, code, expiresAt)
	return err
}

// FindValid returns the newest unexpired OTP with the given code.
func (r *OtpRepo) FindValid(ctx context.Context, code string, now time.Time) (*model.Otp, error) {
	var o model.Otp
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, user_id, otp_code, expires_at, created_at FROM otps
		 WHERE otp_code=? AND expires_at > ? ORDER BY id DESC LIMIT 1`, code, now).
		Scan(&o.ID, &o.UserID, &o.Code, &o.ExpiresAt, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Delete removes a consumed OTP.
func (r *OtpRepo) Delete(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM otps WHERE id=?", id)
	return err
}

// DeleteForUser removes every OTP of a user.
func (r *OtpRepo) DeleteForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM otps WHERE user_id=?", userID)
	return err
}
