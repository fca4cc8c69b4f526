package handler

import (
	"context"
	"database/sql"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/venue-booking/internal/apperr"
	"github.com/iliyamo/venue-booking/internal/model"
	"github.com/iliyamo/venue-booking/internal/repository"
)

type EventCatalog interface {
	List(ctx context.Context) ([]model.Event, error)
	GetEvent(ctx context.Context, id uint64) (*model.Event, error)
	Create(ctx context.Context, name string) (*model.Event, error)
	Update(ctx context.Context, id uint64, name string) (*model.Event, error)
	Delete(ctx context.Context, id uint64) error
}

type ShiftCatalog interface {
	List(ctx context.Context) ([]model.Shift, error)
	GetShift(ctx context.Context, id uint64) (*model.Shift, error)
	Create(ctx context.Context, name string, description *string) (*model.Shift, error)
	Update(ctx context.Context, id uint64, name string, description *string) (*model.Shift, error)
	Delete(ctx context.Context, id uint64) error
}

type VenueCatalog interface {
	List(ctx context.Context, page, limit int) ([]model.Venue, int, error)
	GetVenue(ctx context.Context, id uint64) (*model.Venue, error)
	Create(ctx context.Context, name string, capacity int, image *string) (*model.Venue, error)
	Update(ctx context.Context, id uint64, name string, capacity int, image *string) (*model.Venue, error)
	Delete(ctx context.Context, id uint64) error
}

type PackageCatalog interface {
	List(ctx context.Context) ([]model.Package, error)
	GetPackage(ctx context.Context, id uint64) (*model.Package, error)
	Create(ctx context.Context, name string, basePrice float64) (*model.Package, error)
	Update(ctx context.Context, id uint64, name string, basePrice float64) (*model.Package, error)
	Delete(ctx context.Context, id uint64) error
}

type MenuCatalog interface {
	ListByPackage(ctx context.Context, packageID uint64) ([]model.Menu, error)
	GetMenu(ctx context.Context, id uint64) (*model.Menu, error)
	Create(ctx context.Context, in repository.MenuInput) (*model.Menu, error)
	Update(ctx context.Context, id uint64, in repository.MenuInput) (*model.Menu, error)
	Delete(ctx context.Context, id uint64) error
}

// ImageStore persists venue pictures.
type ImageStore interface {
	SaveVenueImage(fh *multipart.FileHeader) (string, error)
	Remove(rel string) error
	URL(rel *string) string
}

// CatalogHandler serves events, venues, shifts, packages and menus: public
// reads and ADMIN writes.
type CatalogHandler struct {
	Events   EventCatalog
	Venues   VenueCatalog
	Shifts   ShiftCatalog
	Packages PackageCatalog
	Menus    MenuCatalog
	Images   ImageStore
	Log      *zap.Logger
}

func NewCatalogHandler(ev EventCatalog, ve VenueCatalog, sh ShiftCatalog, pk PackageCatalog, mn MenuCatalog, img ImageStore, log *zap.Logger) *CatalogHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CatalogHandler{Events: ev, Venues: ve, Shifts: sh, Packages: pk, Menus: mn, Images: img, Log: log}
}

// venueView exposes the image as an absolute URL.
type venueView struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Capacity  int       `json:"capacity"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (h *CatalogHandler) venueView(v model.Venue) venueView {
	return venueView{ID: v.ID, Name: v.Name, Capacity: v.Capacity, Image: h.Images.URL(v.Image), CreatedAt: v.CreatedAt, UpdatedAt: v.UpdatedAt}
}

type menuItemView struct {
	Index int      `json:"index"`
	Name  string   `json:"name"`
	Price *float64 `json:"price"`
}

type menuView struct {
	ID        uint64         `json:"id"`
	PackageID uint64         `json:"package_id"`
	Name      string         `json:"name"`
	FreeLimit int            `json:"free_limit"`
	Items     []menuItemView `json:"items"`
}

func toMenuView(m model.Menu) menuView {
	items := make([]menuItemView, len(m.Items))
	for i, it := range m.Items {
		items[i] = menuItemView{Index: i, Name: it.Name, Price: it.Price}
	}
	return menuView{ID: m.ID, PackageID: m.PackageID, Name: m.Name, FreeLimit: m.FreeLimit, Items: items}
}

func lookupErr(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound(what)
	}
	return err
}

// queryInt reads a positive integer query parameter, falling back to def.
func queryInt(c echo.Context, name string, def int) int {
	n, err := strconv.Atoi(c.QueryParam(name))
	if err != nil || n < 1 {
		return def
	}
	return n
}

func (h *CatalogHandler) ListEvents(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()
	events, err := h.Events.List(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"events": events})
}

// ListVenues pages through venues; page defaults to 1 and limit to 10 (max 100).
func (h *CatalogHandler) ListVenues(c echo.Context) error {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)
	if limit > 100 {
		limit = 100
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	venues, total, err := h.Venues.List(ctx, page, limit)
	if err != nil {
		return err
	}
	views := make([]venueView, len(venues))
	for i, v := range venues {
		views[i] = h.venueView(v)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"venues":     views,
		"total":      total,
		"page":       page,
		"limit":      limit,
		"totalPages": (total + limit - 1) / limit,
	})
}

func (h *CatalogHandler) GetVenue(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	v, err := h.Venues.GetVenue(ctx, id)
	if err != nil {
		return lookupErr(err, "venue")
	}
	return c.JSON(http.StatusOK, echo.Map{"venue": h.venueView(*v)})
}

func (h *CatalogHandler) ListShifts(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()
	shifts, err := h.Shifts.List(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"shifts": shifts})
}

func (h *CatalogHandler) GetShift(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	s, err := h.Shifts.GetShift(ctx, id)
	if err != nil {
		return lookupErr(err, "shift")
	}
	return c.JSON(http.StatusOK, echo.Map{"shift": s})
}

func (h *CatalogHandler) ListPackages(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()
	pkgs, err := h.Packages.List(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"packages": pkgs})
}

func (h *CatalogHandler) GetPackage(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	p, err := h.Packages.GetPackage(ctx, id)
	if err != nil {
		return lookupErr(err, "package")
	}
	return c.JSON(http.StatusOK, echo.Map{"package": p})
}

// ListMenus returns the menus of a package; items carry their zero-based
// index, which is what selected_menus refers to.
func (h *CatalogHandler) ListMenus(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	if _, err := h.Packages.GetPackage(ctx, id); err != nil {
		return lookupErr(err, "package")
	}
	menus, err := h.Menus.ListByPackage(ctx, id)
	if err != nil {
		return err
	}
	views := make([]menuView, len(menus))
	for i, m := range menus {
		views[i] = toMenuView(m)
	}
	return c.JSON(http.StatusOK, echo.Map{"package_id": id, "menus": views})
}
