package usecase

import (
	"fmt"

	"abcstore/internal/domain/entity"
	"abcstore/internal/domain/service"
	"abcstore/pkg/errors"
)

type Action string

const (
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// CheckPermission decides whether a caller may mutate a product. Admins
// always may; everyone else must own the product and it must still be a
// draft. The two refusals carry distinct messages.
func CheckPermission(product *entity.Product, userID, role string, action Action) error {
	if role == entity.RoleAdmin {
		return nil
	}

	if product.CreatedBy.Hex() != userID {
		return errors.Forbidden("Access denied - not your product", nil)
	}

	if product.Status != entity.StatusDraft {
		return errors.Forbidden(fmt.Sprintf("Access denied - can only %s draft products", action), nil)
	}

	return nil
}

// applyRolePolicy maps a validated input onto what the caller's role may
// actually submit. Non-admin patches cannot carry status, rating or review
// counts, and their status is always draft.
func applyRolePolicy(input ProductInput, role string) ProductInput {
	if role == entity.RoleAdmin {
		return input
	}

	draft := entity.StatusDraft
	input.Status = &draft
	input.Rating = nil
	input.ReviewCount = nil
	return input
}

// checkPriceRelation enforces originalPrice >= price on the effective
// post-patch values. originalPrice == 0 means "no discount" and is exempt.
func checkPriceRelation(price, originalPrice *float64, currentPrice, currentOriginalPrice float64) error {
	effectivePrice := currentPrice
	if price != nil {
		effectivePrice = *price
	}
	effectiveOriginal := currentOriginalPrice
	if originalPrice != nil {
		effectiveOriginal = *originalPrice
	}

	if effectiveOriginal > 0 && effectiveOriginal < effectivePrice {
		return errors.ValidationField("originalPrice",
			"Original price must be greater than or equal to current price")
	}
	return nil
}

// validateProductInput checks field bounds. With required set (create),
// missing core fields are reported; otherwise absent fields are skipped.
func validateProductInput(input ProductInput, required bool) []errors.FieldError {
	var details []errors.FieldError
	fail := func(field, message string) {
		details = append(details, errors.FieldError{Field: field, Message: message})
	}

	if input.Name == nil {
		if required {
			fail("name", "Product name is required")
		}
	} else if len(*input.Name) < 1 {
		fail("name", "Product name must be at least 1 characters")
	} else if len(*input.Name) > 200 {
		fail("name", "Product name must be less than 200 characters")
	}

	if input.Description == nil {
		if required {
			fail("description", "Product description is required")
		}
	} else if len(*input.Description) < 1 {
		fail("description", "Product description must be at least 1 characters")
	} else if len(*input.Description) > 2000 {
		fail("description", "Product description must be less than 2000 characters")
	}

	if input.Price == nil {
		if required {
			fail("price", "Product price is required")
		}
	} else if *input.Price <= 0 {
		fail("price", "Price must be greater than 0")
	} else if *input.Price > maxPrice {
		fail("price", "Price must be less than $999,999.99")
	}

	if input.OriginalPrice != nil {
		if *input.OriginalPrice < 0 {
			fail("originalPrice", "Original price must be positive")
		} else if *input.OriginalPrice > maxPrice {
			fail("originalPrice", "Original price must be less than $999,999.99")
		}
	}

	if input.Category == nil {
		if required {
			fail("category", "Product category is required")
		}
	} else if !entity.ValidCategory(*input.Category) {
		fail("category", "Category is not valid")
	}

	if input.SKU != nil && len(*input.SKU) > 50 {
		fail("sku", "SKU must be less than 50 characters")
	}

	if input.Supplier != nil && len(*input.Supplier) > 200 {
		fail("supplier", "Supplier name cannot be more than 200 characters")
	}

	if input.Stock != nil {
		if *input.Stock < 0 {
			fail("stock", "Stock quantity cannot be negative")
		} else if *input.Stock > maxStock {
			fail("stock", "Stock quantity must be less than 999,999")
		}
	}

	if input.Status != nil && !entity.ValidStatus(*input.Status) {
		fail("status", "Status is not valid")
	}

	if len(input.Tags) > entity.MaxTags {
		fail("tags", "Maximum 10 tags allowed")
	}

	if input.Rating != nil {
		if *input.Rating < 0 {
			fail("rating", "Rating cannot be negative")
		} else if *input.Rating > 5 {
			fail("rating", "Rating cannot exceed 5")
		}
	}

	if input.ReviewCount != nil && *input.ReviewCount < 0 {
		fail("reviewCount", "Review count cannot be negative")
	}

	return details
}

// validateImageInputs bounds the batch and, for in-memory uploads only,
// the per-file size and MIME type. Already stored URLs are trusted.
func (uc *ProductUseCase) validateImageInputs(inputs []service.ImageInput) []errors.FieldError {
	var details []errors.FieldError

	if len(inputs) > entity.MaxImages {
		details = append(details, errors.FieldError{
			Field:   "images",
			Message: "Maximum 10 images allowed",
		})
		return details
	}

	for _, input := range inputs {
		if input.Kind != service.ImageFromFile {
			continue
		}
		if int64(len(input.Data)) > uc.maxUploadSize {
			details = append(details, errors.FieldError{
				Field:   "images",
				Message: fmt.Sprintf("Each image size must be less than %dMB", uc.maxUploadSize/(1024*1024)),
			})
			return details
		}
		if !allowedImageTypes[input.ContentType] {
			details = append(details, errors.FieldError{
				Field:   "images",
				Message: "Only image files are allowed",
			})
			return details
		}
	}

	return details
}
