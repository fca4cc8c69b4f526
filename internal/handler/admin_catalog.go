package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/venue-booking/internal/apperr"
	"github.com/iliyamo/venue-booking/internal/model"
	"github.com/iliyamo/venue-booking/internal/repository"
)

type nameReq struct {
	Name string `json:"name"`
}

type shiftReq struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type packageReq struct {
	Name      string  `json:"name"`
	BasePrice float64 `json:"base_price"`
}

type menuReq struct {
	PackageID uint64           `json:"package_id"`
	Name      string           `json:"name"`
	Items     []model.MenuItem `json:"items"`
	FreeLimit int              `json:"free_limit"`
}

// writeErr classifies repository errors of admin writes.
func writeErr(err error, what string) error {
	if errors.Is(err, repository.ErrConflict) {
		return apperr.Conflict("conflict", what+" is in use or already exists").Wrap(err)
	}
	return lookupErr(err, what)
}

func requireName(name string) error {
	if strings.TrimSpace(name) == "" {
		return apperr.InvalidFields("invalid input", []apperr.FieldError{{Field: "name", Message: "required"}})
	}
	return nil
}

// ---- events ----

func (h *CatalogHandler) CreateEvent(c echo.Context) error {
	var req nameReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := requireName(req.Name); err != nil {
		return err
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	ev, err := h.Events.Create(ctx, req.Name)
	if err != nil {
		return writeErr(err, "event")
	}
	return c.JSON(http.StatusCreated, echo.Map{"event": ev})
}

func (h *CatalogHandler) UpdateEvent(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req nameReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := requireName(req.Name); err != nil {
		return err
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	ev, err := h.Events.Update(ctx, id, req.Name)
	if err != nil {
		return writeErr(err, "event")
	}
	return c.JSON(http.StatusOK, echo.Map{"event": ev})
}

func (h *CatalogHandler) DeleteEvent(c echo.Context) error {
	return h.deleteByID(c, "event", h.Events.Delete)
}

// ---- shifts ----

func (h *CatalogHandler) CreateShift(c echo.Context) error {
	var req shiftReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := requireName(req.Name); err != nil {
		return err
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	s, err := h.Shifts.Create(ctx, req.Name, req.Description)
	if err != nil {
		return writeErr(err, "shift")
	}
	return c.JSON(http.StatusCreated, echo.Map{"shift": s})
}

func (h *CatalogHandler) UpdateShift(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req shiftReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := requireName(req.Name); err != nil {
		return err
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	s, err := h.Shifts.Update(ctx, id, req.Name, req.Description)
	if err != nil {
		return writeErr(err, "shift")
	}
	return c.JSON(http.StatusOK, echo.Map{"shift": s})
}

func (h *CatalogHandler) DeleteShift(c echo.Context) error {
	return h.deleteByID(c, "shift", h.Shifts.Delete)
}

// ---- packages ----

func (r packageReq) validate() error {
	var fields []apperr.FieldError
	if strings.TrimSpace(r.Name) == "" {
		fields = append(fields, apperr.FieldError{Field: "name", Message: "required"})
	}
	if r.BasePrice < 0 {
		fields = append(fields, apperr.FieldError{Field: "base_price", Message: "must not be negative"})
	}
	if len(fields) > 0 {
		return apperr.InvalidFields("invalid package", fields)
	}
	return nil
}

func (h *CatalogHandler) CreatePackage(c echo.Context) error {
	var req packageReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := req.validate(); err != nil {
		return err
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	p, err := h.Packages.Create(ctx, req.Name, req.BasePrice)
	if err != nil {
		return writeErr(err, "package")
	}
	return c.JSON(http.StatusCreated, echo.Map{"package": p})
}

func (h *CatalogHandler) UpdatePackage(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req packageReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := req.validate(); err != nil {
		return err
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	p, err := h.Packages.Update(ctx, id, req.Name, req.BasePrice)
	if err != nil {
		return writeErr(err, "package")
	}
	return c.JSON(http.StatusOK, echo.Map{"package": p})
}

func (h *CatalogHandler) DeletePackage(c echo.Context) error {
	return h.deleteByID(c, "package", h.Packages.Delete)
}

// ---- menus ----

func (r menuReq) input() (repository.MenuInput, error) {
	var fields []apperr.FieldError
	if r.PackageID == 0 {
		fields = append(fields, apperr.FieldError{Field: "package_id", Message: "required"})
	}
	if strings.TrimSpace(r.Name) == "" {
		fields = append(fields, apperr.FieldError{Field: "name", Message: "required"})
	}
	if r.FreeLimit < 0 {
		fields = append(fields, apperr.FieldError{Field: "free_limit", Message: "must not be negative"})
	}
	for i, it := range r.Items {
		if strings.TrimSpace(it.Name) == "" {
			fields = append(fields, apperr.FieldError{Field: "items[" + strconv.Itoa(i) + "].name", Message: "required"})
		}
		if it.Price != nil && *it.Price < 0 {
			fields = append(fields, apperr.FieldError{Field: "items[" + strconv.Itoa(i) + "].price", Message: "must not be negative"})
		}
	}
	if len(fields) > 0 {
		return repository.MenuInput{}, apperr.InvalidFields("invalid menu", fields)
	}
	items := r.Items
	if items == nil {
		items = []model.MenuItem{}
	}
	return repository.MenuInput{PackageID: r.PackageID, Name: strings.TrimSpace(r.Name), Items: items, FreeLimit: r.FreeLimit}, nil
}

func (h *CatalogHandler) CreateMenu(c echo.Context) error {
	var req menuReq
	if err := bind(c, &req); err != nil {
		return err
	}
	in, err := req.input()
	if err != nil {
		return err
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	m, err := h.Menus.Create(ctx, in)
	if err != nil {
		return writeErr(err, "package")
	}
	return c.JSON(http.StatusCreated, echo.Map{"menu": toMenuView(*m)})
}

func (h *CatalogHandler) UpdateMenu(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req menuReq
	if err := bind(c, &req); err != nil {
		return err
	}
	in, err := req.input()
	if err != nil {
		return err
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	m, err := h.Menus.Update(ctx, id, in)
	if err != nil {
		return writeErr(err, "menu")
	}
	return c.JSON(http.StatusOK, echo.Map{"menu": toMenuView(*m)})
}

func (h *CatalogHandler) DeleteMenu(c echo.Context) error {
	return h.deleteByID(c, "menu", h.Menus.Delete)
}

// ---- venues (multipart: name, capacity, image) ----

func venueForm(c echo.Context) (string, int, error) {
	name := strings.TrimSpace(c.FormValue("name"))
	capacity, err := strconv.Atoi(strings.TrimSpace(c.FormValue("capacity")))
	var fields []apperr.FieldError
	if name == "" {
		fields = append(fields, apperr.FieldError{Field: "name", Message: "required"})
	}
	if err != nil || capacity < 1 {
		fields = append(fields, apperr.FieldError{Field: "capacity", Message: "must be a positive integer"})
	}
	if len(fields) > 0 {
		return "", 0, apperr.InvalidFields("invalid venue", fields)
	}
	return name, capacity, nil
}

// saveImage stores the optional "image" part and returns its path, or nil
// when the request carries no image.
func (h *CatalogHandler) saveImage(c echo.Context) (*string, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, apperr.Validation("invalid_image", "could not read image upload")
	}
	rel, err := h.Images.SaveVenueImage(fh)
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

func (h *CatalogHandler) dropImage(rel *string) {
	if rel == nil {
		return
	}
	if err := h.Images.Remove(*rel); err != nil {
		h.Log.Warn("remove venue image", zap.String("image", *rel), zap.Error(err))
	}
}

func (h *CatalogHandler) CreateVenue(c echo.Context) error {
	name, capacity, err := venueForm(c)
	if err != nil {
		return err
	}
	img, err := h.saveImage(c)
	if err != nil {
		return err
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	v, err := h.Venues.Create(ctx, name, capacity, img)
	if err != nil {
		h.dropImage(img)
		return writeErr(err, "venue")
	}
	return c.JSON(http.StatusCreated, echo.Map{"venue": h.venueView(*v)})
}

// UpdateVenue replaces name and capacity; a new image replaces and deletes
// the previous file.
func (h *CatalogHandler) UpdateVenue(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	name, capacity, err := venueForm(c)
	if err != nil {
		return err
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	old, err := h.Venues.GetVenue(ctx, id)
	if err != nil {
		return lookupErr(err, "venue")
	}
	img, err := h.saveImage(c)
	if err != nil {
		return err
	}
	v, err := h.Venues.Update(ctx, id, name, capacity, img)
	if err != nil {
		h.dropImage(img)
		return writeErr(err, "venue")
	}
	if img != nil {
		h.dropImage(old.Image)
	}
	return c.JSON(http.StatusOK, echo.Map{"venue": h.venueView(*v)})
}

func (h *CatalogHandler) DeleteVenue(c echo.Context) error {
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
	if err := h.Venues.Delete(ctx, id); err != nil {
		return writeErr(err, "venue")
	}
	h.dropImage(v.Image)
	return message(c, http.StatusOK, "venue deleted")
}

func (h *CatalogHandler) deleteByID(c echo.Context, what string, del func(ctx context.Context, id uint64) error) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	if err := del(ctx, id); err != nil {
		return writeErr(err, what)
	}
	h.Log.Info("catalog entry deleted", zap.String("kind", what), zap.Uint64("id", id))
	return message(c, http.StatusOK, what+" deleted")
}
