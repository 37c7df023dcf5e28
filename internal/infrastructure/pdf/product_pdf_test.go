package pdf_test

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"abcstore/internal/domain/entity"
	"abcstore/internal/domain/service"
	"abcstore/internal/infrastructure/pdf"
)

type stubResolver struct {
	files map[string]string
}

func (r *stubResolver) FilePath(url string) (string, bool) {
	path, ok := r.files[url]
	return path, ok
}

func writeJPEG(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 320, 240))
	for x := 0; x < 320; x++ {
		for y := 0; y < 240; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: uint8(x % 256), B: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestProductCatalog(t *testing.T) {
	dir := t.TempDir()
	imgPath := writeJPEG(t, dir, "mouse.jpg")

	resolver := &stubResolver{files: map[string]string{
		"/uploads/products/mouse.jpg": imgPath,
		"/uploads/products/gone.jpg":  filepath.Join(dir, "gone.jpg"),
	}}
	g := pdf.NewGenerator(resolver)

	products := []service.ExportProduct{
		{
			ID:            "1",
			Name:          "Wireless Mouse",
			Description:   "Ergonomic 2.4GHz mouse",
			Price:         29.99,
			Category:      "electronics",
			UploaderName:  "Jo",
			UploaderEmail: "jo@example.com",
			Images: []entity.ProductImage{
				{URL: "/uploads/products/mouse.jpg"},
				{URL: "/uploads/products/gone.jpg"},
				{URL: "https://elsewhere.example.com/x.jpg"},
			},
		},
		{
			ID:       "2",
			Name:     "Plain Product",
			Price:    5,
			Category: "books",
		},
	}

	data, err := g.ProductCatalog(products)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.Greater(t, len(data), 1000)
}

func TestProductCatalogWithoutImages(t *testing.T) {
	g := pdf.NewGenerator(&stubResolver{files: map[string]string{}})

	data, err := g.ProductCatalog([]service.ExportProduct{
		{ID: "1", Name: "Bare", Price: 1, Category: "books"},
	})

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}
