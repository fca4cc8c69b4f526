package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/iliyamo/venue-booking/internal/model"
)

// PackageRepo provides CRUD for packages.
type PackageRepo struct{ db *sql.DB }

func NewPackageRepo(db *sql.DB) *PackageRepo { return &PackageRepo{db: db} }

const packageColumns = "id, name, base_price, created_at, updated_at"

func scanPackage(row interface{ Scan(...any) error }) (*model.Package, error) {
	var p model.Package
	if err := row.Scan(&p.ID, &p.Name, &p.BasePrice, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PackageRepo) List(ctx context.Context) ([]model.Package, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+packageColumns+" FROM packages ORDER BY base_price, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Package{}
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *PackageRepo) GetPackage(ctx context.Context, id uint64) (*model.Package, error) {
	return scanPackage(r.db.QueryRowContext(ctx, "SELECT "+packageColumns+" FROM packages WHERE id=?", id))
}

func (r *PackageRepo) Create(ctx context.Context, name string, basePrice float64) (*model.Package, error) {
	res, err := r.db.ExecContext(ctx, "INSERT INTO packages (name, base_price) VALUES (?, ?)",
		strings.TrimSpace(name), basePrice)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetPackage(ctx, uint64(id))
}

func (r *PackageRepo) Update(ctx context.Context, id uint64, name string, basePrice float64) (*model.Package, error) {
	res, err := r.db.ExecContext(ctx, "UPDATE packages SET name=?, base_price=? WHERE id=?",
		strings.TrimSpace(name), basePrice, id)
	if err != nil {
		return nil, err
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}
	return r.GetPackage(ctx, id)
}

// Delete removes a package and, by cascade, its menus.
func (r *PackageRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM packages WHERE id=?", id)
	if err != nil {
		if isReferenced(err) {
			return ErrConflict
		}
		return err
	}
	return requireAffected(res)
}

// MenuRepo provides CRUD for menus; items are stored as a JSON array.
type MenuRepo struct{ db *sql.DB }

func NewMenuRepo(db *sql.DB) *MenuRepo { return &MenuRepo{db: db} }

const menuColumns = "id, package_id, name, items, free_limit, created_at, updated_at"

func scanMenu(row interface{ Scan(...any) error }) (*model.Menu, error) {
	var (
		m     model.Menu
		items []byte
	)
	if err := row.Scan(&m.ID, &m.PackageID, &m.Name, &items, &m.FreeLimit, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &m.Items); err != nil {
			return nil, fmt.Errorf("menu %d items: %w", m.ID, err)
		}
	}
	if m.Items == nil {
		m.Items = []model.MenuItem{}
	}
	return &m, nil
}

func (r *MenuRepo) ListByPackage(ctx context.Context, packageID uint64) ([]model.Menu, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+menuColumns+" FROM menus WHERE package_id=? ORDER BY id", packageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Menu{}
	for rows.Next() {
		m, err := scanMenu(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (r *MenuRepo) GetMenu(ctx context.Context, id uint64) (*model.Menu, error) {
	return scanMenu(r.db.QueryRowContext(ctx, "SELECT "+menuColumns+" FROM menus WHERE id=?", id))
}

// MenuInput is the writable part of a menu.
type MenuInput struct {
	PackageID uint64
	Name      string
	Items     []model.MenuItem
	FreeLimit int
}

// Create stores a menu.  A missing package is reported as sql.ErrNoRows.
func (r *MenuRepo) Create(ctx context.Context, in MenuInput) (*model.Menu, error) {
	items, err := json.Marshal(in.Items)
	if err != nil {
		return nil, err
	}
	res, err := r.db.ExecContext(ctx, "INSERT INTO menus (package_id, name, items, free_limit) VALUES (?,?,?,?)",
		in.PackageID, strings.TrimSpace(in.Name), items, in.FreeLimit)
	if err != nil {
		if isReferenced(err) {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetMenu(ctx, uint64(id))
}

func (r *MenuRepo) Update(ctx context.Context, id uint64, in MenuInput) (*model.Menu, error) {
	items, err := json.Marshal(in.Items)
	if err != nil {
		return nil, err
	}
	res, err := r.db.ExecContext(ctx, "UPDATE menus SET package_id=?, name=?, items=?, free_limit=? WHERE id=?",
		in.PackageID, strings.TrimSpace(in.Name), items, in.FreeLimit, id)
	if err != nil {
		if isReferenced(err) {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}
	return r.GetMenu(ctx, id)
}

func (r *MenuRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM menus WHERE id=?", id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
