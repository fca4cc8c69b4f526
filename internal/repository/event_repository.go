package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/venue-booking/internal/model"
)

// EventRepo provides CRUD for event types.
type EventRepo struct{ db *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

func (r *EventRepo) List(ctx context.Context) ([]model.Event, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, created_at, updated_at FROM events ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Event{}
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *EventRepo) GetEvent(ctx context.Context, id uint64) (*model.Event, error) {
	var e model.Event
	err := r.db.QueryRowContext(ctx, "SELECT id, name, created_at, updated_at FROM events WHERE id=?", id).
		Scan(&e.ID, &e.Name, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EventRepo) Create(ctx context.Context, name string) (*model.Event, error) {
	res, err := r.db.ExecContext(ctx, "INSERT INTO events (name) VALUES (?)", strings.TrimSpace(name))
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
	return r.GetEvent(ctx, uint64(id))
}

func (r *EventRepo) Update(ctx context.Context, id uint64, name string) (*model.Event, error) {
	res, err := r.db.ExecContext(ctx, "UPDATE events SET name=? WHERE id=?", strings.TrimSpace(name), id)
	if err != nil {
		if isDuplicate(err, "") {
			return nil, ErrConflict
		}
		return nil, err
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}
	return r.GetEvent(ctx, id)
}

// Delete fails with ErrConflict while bookings reference the event.
func (r *EventRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM events WHERE id=?", id)
	if err != nil {
		if isReferenced(err) {
			return ErrConflict
		}
		return err
	}
	return requireAffected(res)
}
