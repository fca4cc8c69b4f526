package model

import (
	"encoding/json"
	"time"
)

// Event is a kind of occasion (wedding, birthday, ...).
type Event struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Venue is a bookable hall.  Image is the path relative to the upload root
// (e.g. "venues/3f9c.png"); handlers turn it into an absolute URL.
type Venue struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Image     *string   `json:"image"`
	Capacity  int       `json:"capacity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Shift is a named time-of-day slot.
type Shift struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Package is a catering package priced per guest.
type Package struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	BasePrice float64   `json:"base_price"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Menu belongs to a package.  The first FreeLimit selected items are
// included in the package price.
type Menu struct {
	ID        uint64     `json:"id"`
	PackageID uint64     `json:"package_id"`
	Name      string     `json:"name"`
	Items     []MenuItem `json:"items"`
	FreeLimit int        `json:"free_limit"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// MenuItem is one dish.  Price is nil when the stored item had none; the fare
// calculator then charges the configured fallback price.
type MenuItem struct {
	Name  string   `json:"name"`
	Price *float64 `json:"price,omitempty"`
}

// UnmarshalJSON accepts both {"name":..,"price":..} objects and bare strings,
// which older rows stored for items without a price.
func (m *MenuItem) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err == nil {
		*m = MenuItem{Name: name}
		return nil
	}
	type plain MenuItem
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*m = MenuItem(p)
	return nil
}

// PriceOr returns the item price, or fallback when the item has none.
func (m MenuItem) PriceOr(fallback float64) float64 {
	if m.Price == nil {
		return fallback
	}
	return *m.Price
}
