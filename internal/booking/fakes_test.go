package booking

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/venue-booking/internal/model"
)

type fakeCatalog struct {
	venues   map[uint64]*model.Venue
	packages map[uint64]*model.Package
	menus    map[uint64]*model.Menu
	taken    map[string]bool
	err      error
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		venues:   map[uint64]*model.Venue{},
		packages: map[uint64]*model.Package{},
		menus:    map[uint64]*model.Menu{},
		taken:    map[string]bool{},
	}
}

func slotKey(venueID uint64, date string, shiftID uint64) string {
	return fmt.Sprintf("%d|%s|%d", venueID, date, shiftID)
}

func (f *fakeCatalog) GetVenue(_ context.Context, id uint64) (*model.Venue, error) {
	if v, ok := f.venues[id]; ok {
		return v, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeCatalog) GetPackage(_ context.Context, id uint64) (*model.Package, error) {
	if p, ok := f.packages[id]; ok {
		return p, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeCatalog) GetMenu(_ context.Context, id uint64) (*model.Menu, error) {
	if f.err != nil {
		return nil, f.err
	}
	if m, ok := f.menus[id]; ok {
		return m, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeCatalog) SlotTaken(_ context.Context, venueID uint64, date string, shiftID uint64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.taken[slotKey(venueID, date, shiftID)], nil
}

func price(v float64) *float64 { return &v }
