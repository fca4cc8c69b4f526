// Package upload stores venue images on the local filesystem under the
// directory served at /public.
package upload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/venue-booking/internal/apperr"
	"github.com/iliyamo/venue-booking/internal/config"
)

// venueDir is the sub-directory of the upload root holding venue images.
const venueDir = "venues"

var allowedExt = map[string]bool{".jpeg": true, ".jpg": true, ".png": true, ".gif": true}

var allowedMIME = map[string]bool{"image/jpeg": true, "image/png": true, "image/gif": true}

// Store writes and removes images below Dir.
type Store struct {
	cfg config.UploadConfig
}

func NewStore(cfg config.UploadConfig) *Store {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 10 << 20
	}
	return &Store{cfg: cfg}
}

// SaveVenueImage validates fh and writes it as venues/<uuid><ext>.  The
// returned path is relative to the upload root and uses forward slashes.
func (s *Store) SaveVenueImage(fh *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExt[ext] {
		return "", apperr.Validation("invalid_image", "only jpeg, jpg, png and gif images are allowed")
	}
	if fh.Size > s.cfg.MaxBytes {
		return "", apperr.Validation("image_too_large", fmt.Sprintf("image must be at most %d MB", s.cfg.MaxBytes>>20))
	}
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if !allowedMIME[http.DetectContentType(head[:n])] {
		return "", apperr.Validation("invalid_image", "file content is not a supported image")
	}

	rel := path.Join(venueDir, uuid.NewString()+ext)
	dst := filepath.Join(s.cfg.Dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create image: %w", err)
	}
	written, err := io.Copy(out, io.MultiReader(bytes.NewReader(head[:n]), io.LimitReader(src, s.cfg.MaxBytes-int64(n)+1)))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err == nil && written > s.cfg.MaxBytes {
		err = apperr.Validation("image_too_large", fmt.Sprintf("image must be at most %d MB", s.cfg.MaxBytes>>20))
	}
	if err != nil {
		_ = os.Remove(dst)
		return "", err
	}
	return rel, nil
}

// Remove deletes a stored image.  Paths outside the venue directory and
// missing files are ignored.
func (s *Store) Remove(rel string) error {
	clean := path.Clean("/" + rel)[1:]
	if !strings.HasPrefix(clean, venueDir+"/") {
		return nil
	}
	err := os.Remove(filepath.Join(s.cfg.Dir, filepath.FromSlash(clean)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// URL turns a stored path into an absolute URL; venues without an image
// get the default picture.
func (s *Store) URL(rel *string) string {
	p := s.cfg.DefaultImage
	if rel != nil && *rel != "" {
		p = *rel
	}
	return s.cfg.PublicBaseURL + "/public/" + strings.TrimLeft(p, "/")
}
