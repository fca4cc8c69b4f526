package upload

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/venue-booking/internal/apperr"
	"github.com/iliyamo/venue-booking/internal/config"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13, 'I', 'H', 'D', 'R'}

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("image", name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["image"][0]
}

func newStore(t *testing.T, max int64) (*Store, string) {
	dir := t.TempDir()
	return NewStore(config.UploadConfig{Dir: dir, MaxBytes: max, PublicBaseURL: "http://cdn", DefaultImage: "default_venue.jpg"}), dir
}

func TestSaveAndRemoveVenueImage(t *testing.T) {
	s, dir := newStore(t, 1024)
	rel, err := s.SaveVenueImage(fileHeader(t, "Hall.PNG", pngHeader))
	require.NoError(t, err)
	assert.Regexp(t, `^venues/[0-9a-f-]{36}\.png$`, rel)

	_, err = os.Stat(filepath.Join(dir, rel))
	require.NoError(t, err)

	require.NoError(t, s.Remove(rel))
	_, err = os.Stat(filepath.Join(dir, rel))
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, s.Remove(rel))
	assert.NoError(t, s.Remove("../../etc/passwd"))
}

func TestSaveVenueImageRejects(t *testing.T) {
	s, _ := newStore(t, 32)

	_, err := s.SaveVenueImage(fileHeader(t, "notes.txt", pngHeader))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = s.SaveVenueImage(fileHeader(t, "fake.png", []byte("just some text pretending")))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = s.SaveVenueImage(fileHeader(t, "big.png", append(pngHeader, make([]byte, 64)...)))
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "image_too_large", e.Code)
}

func TestURL(t *testing.T) {
	s, _ := newStore(t, 0)
	img := "venues/a.png"
	assert.Equal(t, "http://cdn/public/venues/a.png", s.URL(&img))
	assert.Equal(t, "http://cdn/public/default_venue.jpg", s.URL(nil))
}
