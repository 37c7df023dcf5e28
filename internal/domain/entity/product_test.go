package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"abcstore/internal/domain/entity"
)

func primaryCount(images []entity.ProductImage) int {
	n := 0
	for _, img := range images {
		if img.IsPrimary {
			n++
		}
	}
	return n
}

func TestNormalizePrimary(t *testing.T) {
	t.Run("no image marked promotes the first", func(t *testing.T) {
		p := entity.Product{Images: []entity.ProductImage{
			{URL: "/uploads/products/a.jpg"},
			{URL: "/uploads/products/b.jpg"},
		}}

		p.NormalizePrimary()

		require.Equal(t, 1, primaryCount(p.Images))
		assert.True(t, p.Images[0].IsPrimary)
	})

	t.Run("multiple marked keeps only the first", func(t *testing.T) {
		p := entity.Product{Images: []entity.ProductImage{
			{URL: "/uploads/products/a.jpg"},
			{URL: "/uploads/products/b.jpg", IsPrimary: true},
			{URL: "/uploads/products/c.jpg", IsPrimary: true},
			{URL: "/uploads/products/d.jpg", IsPrimary: true},
		}}

		p.NormalizePrimary()

		require.Equal(t, 1, primaryCount(p.Images))
		assert.False(t, p.Images[0].IsPrimary)
		assert.True(t, p.Images[1].IsPrimary)
		assert.False(t, p.Images[2].IsPrimary)
		assert.False(t, p.Images[3].IsPrimary)
	})

	t.Run("single marked image is untouched", func(t *testing.T) {
		p := entity.Product{Images: []entity.ProductImage{
			{URL: "/uploads/products/a.jpg"},
			{URL: "/uploads/products/b.jpg", IsPrimary: true},
		}}

		p.NormalizePrimary()

		require.Equal(t, 1, primaryCount(p.Images))
		assert.True(t, p.Images[1].IsPrimary)
	})

	t.Run("no images is a no-op", func(t *testing.T) {
		p := entity.Product{}
		p.NormalizePrimary()
		assert.Empty(t, p.Images)
	})
}

func TestPrimaryImage(t *testing.T) {
	p := entity.Product{Images: []entity.ProductImage{
		{URL: "/uploads/products/a.jpg"},
		{URL: "/uploads/products/b.jpg", IsPrimary: true},
	}}
	require.NotNil(t, p.PrimaryImage())
	assert.Equal(t, "/uploads/products/b.jpg", p.PrimaryImage().URL)

	// unmarked set falls back to the first image
	p.Images[1].IsPrimary = false
	require.NotNil(t, p.PrimaryImage())
	assert.Equal(t, "/uploads/products/a.jpg", p.PrimaryImage().URL)

	empty := entity.Product{}
	assert.Nil(t, empty.PrimaryImage())
}
