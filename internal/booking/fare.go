package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/iliyamo/venue-booking/internal/apperr"
	"github.com/iliyamo/venue-booking/internal/model"
)

// DefaultFallbackItemPrice is charged for a billable item that has no price
// or whose index does not exist in the menu.
const DefaultFallbackItemPrice = 10

// DefaultMinGuests is the smallest party the fare calculator accepts.
const DefaultMinGuests = 10

type PackageReader interface {
	GetPackage(ctx context.Context, id uint64) (*model.Package, error)
}

type MenuReader interface {
	GetMenu(ctx context.Context, id uint64) (*model.Menu, error)
}

// Fare is a priced selection.  TotalFare is always BaseFare + ExtraCharges.
type Fare struct {
	BaseFare     float64 `json:"base_fare"`
	ExtraCharges float64 `json:"extra_charges"`
	TotalFare    float64 `json:"total_fare"`
}

// FareCalculator prices a package and menu selection for a party size.
type FareCalculator struct {
	Packages      PackageReader
	Menus         MenuReader
	MinGuests     int
	FallbackPrice float64
}

func NewFareCalculator(packages PackageReader, menus MenuReader, minGuests int, fallback float64) *FareCalculator {
	if packages == nil || menus == nil {
		panic("nil reader passed to NewFareCalculator")
	}
	if minGuests <= 0 {
		minGuests = DefaultMinGuests
	}
	if fallback < 0 {
		fallback = DefaultFallbackItemPrice
	}
	return &FareCalculator{Packages: packages, Menus: menus, MinGuests: minGuests, FallbackPrice: fallback}
}

// Calculate returns base = base_price*guests plus, for every menu, the price
// of each selected item beyond the menu's free limit times guests.  Menus
// that no longer exist are skipped.
func (f *FareCalculator) Calculate(ctx context.Context, packageID uint64, guests int, selections model.MenuSelections) (Fare, error) {
	if guests < f.MinGuests {
		return Fare{}, apperr.Validation("guest_count_too_low",
			fmt.Sprintf("guest count must be at least %d", f.MinGuests))
	}
	pkg, err := f.Packages.GetPackage(ctx, packageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Fare{}, apperr.NotFound("package")
		}
		return Fare{}, fmt.Errorf("load package %d: %w", packageID, err)
	}

	g := float64(guests)
	base := round2(pkg.BasePrice * g)
	extra := 0.0

	// sorted so a storage error surfaces deterministically
	menuIDs := make([]uint64, 0, len(selections))
	for id := range selections {
		menuIDs = append(menuIDs, id)
	}
	sort.Slice(menuIDs, func(i, j int) bool { return menuIDs[i] < menuIDs[j] })

	for _, id := range menuIDs {
		menu, err := f.Menus.GetMenu(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return Fare{}, fmt.Errorf("load menu %d: %w", id, err)
		}
		extra += f.menuExtra(menu, selections[id], g)
	}
	extra = round2(extra)
	return Fare{BaseFare: base, ExtraCharges: extra, TotalFare: round2(base + extra)}, nil
}

func (f *FareCalculator) menuExtra(menu *model.Menu, picked []int, guests float64) float64 {
	free := menu.FreeLimit
	if free < 0 {
		free = 0
	}
	if len(picked) <= free {
		return 0
	}
	sum := 0.0
	for _, idx := range picked[free:] {
		price := f.FallbackPrice
		if idx >= 0 && idx < len(menu.Items) {
			price = menu.Items[idx].PriceOr(f.FallbackPrice)
		}
		sum += price * guests
	}
	return sum
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// SameAmount reports whether two money amounts agree to the cent.
func SameAmount(a, b float64) bool {
	return math.Abs(round2(a)-round2(b)) < 0.005
}
