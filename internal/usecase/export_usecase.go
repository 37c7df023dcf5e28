package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"abcstore/internal/domain/entity"
	"abcstore/internal/domain/repository"
	"abcstore/internal/domain/service"
	"abcstore/pkg/errors"
)

// ExportPDF renders a catalog for an explicit id selection. Non-admins are
// scoped to their own products; asking for someone else's product yields
// nothing to export.
func (uc *ProductUseCase) ExportPDF(ctx context.Context, userID, role string, productIDs []string) ([]byte, error) {
	if len(productIDs) == 0 {
		return nil, errors.BadRequest("Product IDs are required", nil)
	}

	ids := make([]primitive.ObjectID, 0, len(productIDs))
	for _, id := range productIDs {
		objectID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		ids = append(ids, objectID)
	}
	if len(ids) == 0 {
		return nil, errors.BadRequest("No valid product IDs provided", nil)
	}

	filter := repository.ProductFilter{IDs: ids}
	if err := uc.scopeToCaller(&filter, userID, role); err != nil {
		return nil, err
	}

	return uc.exportPDF(ctx, filter)
}

// ExportAllPDF renders a catalog for everything matching a filter.
func (uc *ProductUseCase) ExportAllPDF(ctx context.Context, userID, role string, filters BulkFilters) ([]byte, error) {
	filter := repository.ProductFilter{
		Search:    filters.Search,
		Category:  filters.Category,
		Status:    filters.Status,
		SearchSKU: true,
	}
	if err := uc.scopeToCaller(&filter, userID, role); err != nil {
		return nil, err
	}

	return uc.exportPDF(ctx, filter)
}

func (uc *ProductUseCase) exportPDF(ctx context.Context, filter repository.ProductFilter) ([]byte, error) {
	products, err := uc.productRepo.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, errors.New("NOT_FOUND", "No products found", 404, nil)
	}

	creators := uc.loadCreators(ctx, products)
	exports := make([]service.ExportProduct, 0, len(products))
	for _, product := range products {
		export := service.ExportProduct{
			ID:          product.ID.Hex(),
			Name:        product.Name,
			Description: product.Description,
			Price:       product.Price,
			Category:    product.Category,
			Images:      product.Images,
		}
		if creator := creators[product.CreatedBy]; creator != nil {
			export.UploaderName = creator.Name
			export.UploaderEmail = creator.Email
		}
		exports = append(exports, export)
	}

	data, err := uc.exporter.ProductCatalog(exports)
	if err != nil {
		return nil, errors.Internal("Failed to generate PDF", err)
	}
	return data, nil
}

// ExportCSV streams the list-view columns for everything matching a
// filter.
func (uc *ProductUseCase) ExportCSV(ctx context.Context, userID, role string, filters BulkFilters) ([]byte, error) {
	filter := repository.ProductFilter{
		Search:    filters.Search,
		Category:  filters.Category,
		Status:    filters.Status,
		SearchSKU: true,
	}
	if err := uc.scopeToCaller(&filter, userID, role); err != nil {
		return nil, err
	}

	products, err := uc.productRepo.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, errors.New("NOT_FOUND", "No products found", 404, nil)
	}

	creators := uc.loadCreators(ctx, products)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{
		"id", "name", "description", "price", "originalPrice", "category",
		"status", "stock", "sku", "supplier", "tags", "rating",
		"reviewCount", "createdBy", "createdAt",
	}
	if err := w.Write(header); err != nil {
		return nil, errors.Internal("Failed to generate CSV", err)
	}

	for _, product := range products {
		creatorName := ""
		if creator := creators[product.CreatedBy]; creator != nil {
			creatorName = creator.Name
		}
		record := []string{
			product.ID.Hex(),
			product.Name,
			product.Description,
			fmt.Sprintf("%.2f", product.Price),
			fmt.Sprintf("%.2f", product.OriginalPrice),
			product.Category,
			product.Status,
			fmt.Sprintf("%d", product.Stock),
			product.SKU,
			product.Supplier,
			strings.Join(product.Tags, ";"),
			fmt.Sprintf("%.1f", product.Rating),
			fmt.Sprintf("%d", product.ReviewCount),
			creatorName,
			product.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := w.Write(record); err != nil {
			return nil, errors.Internal("Failed to generate CSV", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.Internal("Failed to generate CSV", err)
	}
	return buf.Bytes(), nil
}

func (uc *ProductUseCase) scopeToCaller(filter *repository.ProductFilter, userID, role string) error {
	if role == entity.RoleAdmin {
		return nil
	}
	scope, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return errors.Unauthorized("Invalid user identity", err)
	}
	filter.CreatedBy = scope
	return nil
}
