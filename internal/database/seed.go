package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// DefaultShifts and DefaultEvents are inserted by Seed when missing.
var (
	DefaultShifts = []struct{ Name, Description string }{
		{"Morning", "7:00 AM - 11:00 AM"},
		{"Afternoon", "12:00 PM - 4:00 PM"},
		{"Evening", "5:00 PM - 10:00 PM"},
	}
	DefaultEvents = []string{"Wedding", "Birthday", "Reception", "Corporate", "Engagement"}
)

// AdminSeed describes the first administrator account.  An empty Email skips it.
type AdminSeed struct {
	Name         string
	Email        string
	Phone        string
	PasswordHash string
}

// Seed inserts reference data and the admin user.  INSERT IGNORE keeps it
// safe to run repeatedly thanks to the unique keys on names and e-mail.
func Seed(ctx context.Context, db *sql.DB, admin AdminSeed) error {
	for _, s := range DefaultShifts {
		if _, err := db.ExecContext(ctx,
			"INSERT IGNORE INTO shifts (name, description) VALUES (?, ?)", s.Name, s.Description); err != nil {
			return fmt.Errorf("seed shift %s: %w", s.Name, err)
		}
	}
	for _, name := range DefaultEvents {
		if _, err := db.ExecContext(ctx, "INSERT IGNORE INTO events (name) VALUES (?)", name); err != nil {
			return fmt.Errorf("seed event %s: %w", name, err)
		}
	}
	if strings.TrimSpace(admin.Email) == "" {
		return nil
	}
	_, err := db.ExecContext(ctx,
		`INSERT IGNORE INTO users (name, email, phone, password_hash, role, email_verified)
		 VALUES (?, ?, ?, ?, 'ADMIN', 1)`,
		admin.Name, strings.ToLower(strings.TrimSpace(admin.Email)), admin.Phone, admin.PasswordHash)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	return nil
}
