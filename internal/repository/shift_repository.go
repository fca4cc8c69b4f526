package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/venue-booking/internal/model"
)

// ShiftRepo provides CRUD for shifts.
type ShiftRepo struct{ db *sql.DB }

func NewShiftRepo(db *sql.DB) *ShiftRepo { return &ShiftRepo{db: db} }

const shiftColumns = "id, name, description, created_at, updated_at"

func scanShift(row interface{ Scan(...any) error }) (*model.Shift, error) {
	var (
		s    model.Shift
		desc sql.NullString
	)
	if err := row.Scan(&s.ID, &s.Name, &desc, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	if desc.Valid {
		s.Description = &desc.String
	}
	return &s, nil
}

func (r *ShiftRepo) List(ctx context.Context) ([]model.Shift, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+shiftColumns+" FROM shifts ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Shift{}
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r *ShiftRepo) GetShift(ctx context.Context, id uint64) (*model.Shift, error) {
	return scanShift(r.db.QueryRowContext(ctx, "SELECT "+shiftColumns+" FROM shifts WHERE id=?", id))
}

func nullable(s *string) any {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return strings.TrimSpace(*s)
}

func (r *ShiftRepo) Create(ctx context.Context, name string, description *string) (*model.Shift, error) {
	res, err := r.db.ExecContext(ctx, "INSERT INTO shifts (name, description) VALUES (?, ?)",
		strings.TrimSpace(name), nullable(description))
	if err != nil {
		if isDuplicate(err, "") {
			return nil, ErrConflict
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetShift(ctx, uint64(id))
}

func (r *ShiftRepo) Update(ctx context.Context, id uint64, name string, description *string) (*model.Shift, error) {
	res, err := r.db.ExecContext(ctx, "UPDATE shifts SET name=?, description=? WHERE id=?",
		strings.TrimSpace(name), nullable(description), id)
	if err != nil {
		if isDuplicate(err, "") {
			return nil, ErrConflict
		}
		return nil, err
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}
	return r.GetShift(ctx, id)
}

func (r *ShiftRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM shifts WHERE id=?", id)
	if err != nil {
		if isReferenced(err) {
			return ErrConflict
		}
		return err
	}
	return requireAffected(res)
}
