package service

import "abcstore/internal/domain/entity"

// ExportProduct is the projection handed to catalog exporters.
type ExportProduct struct {
	ID            string
	Name          string
	Description   string
	Price         float64
	Category      string
	Images        []entity.ProductImage
	UploaderName  string
	UploaderEmail string
}

// CatalogExporter renders a set of products into a downloadable document.
type CatalogExporter interface {
	ProductCatalog(products []ExportProduct) ([]byte, error)
}
