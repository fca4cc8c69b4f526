package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/venue-booking/internal/model"
)

// VenueRepo provides CRUD and paging for venues.
type VenueRepo struct{ db *sql.DB }

func NewVenueRepo(db *sql.DB) *VenueRepo { return &VenueRepo{db: db} }

const venueColumns = "id, name, image, capacity, created_at, updated_at"

func scanVenue(row interface{ Scan(...any) error }) (*model.Venue, error) {
	var (
		v   model.Venue
		img sql.NullString
	)
	if err := row.Scan(&v.ID, &v.Name, &img, &v.Capacity, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	if img.Valid && img.String != "" {
		v.Image = &img.String
	}
	return &v, nil
}

// List returns one page of venues ordered by id together with the total count.
func (r *VenueRepo) List(ctx context.Context, page, limit int) ([]model.Venue, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM venues").Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+venueColumns+" FROM venues ORDER BY id LIMIT ? OFFSET ?", limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := []model.Venue{}
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *v)
	}
	return out, total, rows.Err()
}

// All returns every venue; the booking flow shows them on its first step.
func (r *VenueRepo) All(ctx context.Context) ([]model.Venue, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+venueColumns+" FROM venues ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Venue{}
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

func (r *VenueRepo) GetVenue(ctx context.Context, id uint64) (*model.Venue, error) {
	return scanVenue(r.db.QueryRowContext(ctx, "SELECT "+venueColumns+" FROM venues WHERE id=?", id))
}

// Create stores a venue; image is the path relative to the upload root.
func (r *VenueRepo) Create(ctx context.Context, name string, capacity int, image *string) (*model.Venue, error) {
	res, err := r.db.ExecContext(ctx, "INSERT INTO venues (name, capacity, image) VALUES (?,?,?)",
		strings.TrimSpace(name), capacity, nullable(image))
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetVenue(ctx, uint64(id))
}

// Update replaces name and capacity; image is only touched when non-nil.
func (r *VenueRepo) Update(ctx context.Context, id uint64, name string, capacity int, image *string) (*model.Venue, error) {
	var (
		res sql.Result
		err error
	)
	if image != nil {
		res, err = r.db.ExecContext(ctx, "UPDATE venues SET name=?, capacity=?, image=? WHERE id=?",
			strings.TrimSpace(name), capacity, nullable(image), id)
	} else {
		res, err = r.db.ExecContext(ctx, "UPDATE venues SET name=?, capacity=? WHERE id=?",
			strings.TrimSpace(name), capacity, id)
	}
	if err != nil {
		return nil, err
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}
	return r.GetVenue(ctx, id)
}

// Delete removes a venue.  Venues with bookings cannot be removed.
func (r *VenueRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM venues WHERE id=?", id)
	if err != nil {
		if isReferenced(err) {
			return ErrConflict
		}
		return err
	}
	return requireAffected(res)
}
