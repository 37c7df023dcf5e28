package usecase

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"abcstore/internal/domain/entity"
	"abcstore/internal/domain/repository"
	"abcstore/internal/domain/service"
	"abcstore/internal/infrastructure/cache"
	"abcstore/pkg/errors"
	"abcstore/pkg/logger"
)

const (
	maxPrice = 999999.99
	maxStock = 999999
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/bmp":  true,
	"image/webp": true,
}

type ProductUseCase struct {
	productRepo   repository.ProductRepository
	userRepo      repository.UserRepository
	images        service.ImageService
	exporter      service.CatalogExporter
	listCache     *cache.Cache
	maxUploadSize int64
}

func NewProductUseCase(
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	images service.ImageService,
	exporter service.CatalogExporter,
	listCache *cache.Cache,
	maxUploadSize int64,
) *ProductUseCase {
	return &ProductUseCase{
		productRepo:   productRepo,
		userRepo:      userRepo,
		images:        images,
		exporter:      exporter,
		listCache:     listCache,
		maxUploadSize: maxUploadSize,
	}
}

// ProductInput is a validated create/update payload. Nil pointers mean the
// field was absent from the request.
type ProductInput struct {
	Name          *string
	Description   *string
	Price         *float64
	OriginalPrice *float64
	Category      *string
	SKU           *string
	Supplier      *string
	Stock         *int
	Status        *string
	Tags          []string
	Rating        *float64
	ReviewCount   *int
}

type Creator struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ProductDetail is the single-product projection with the full image list.
type ProductDetail struct {
	ID            string                `json:"id"`
	Name          string                `json:"name"`
	Description   string                `json:"description"`
	Price         float64               `json:"price"`
	OriginalPrice float64               `json:"originalPrice"`
	Rating        float64               `json:"rating"`
	ReviewCount   int                   `json:"reviewCount"`
	Images        []entity.ProductImage `json:"images"`
	Category      string                `json:"category"`
	Status        string                `json:"status"`
	Stock         int                   `json:"stock"`
	SKU           string                `json:"sku,omitempty"`
	Supplier      string                `json:"supplier,omitempty"`
	Tags          []string              `json:"tags"`
	CreatedAt     time.Time             `json:"createdAt"`
	UpdatedAt     time.Time             `json:"updatedAt"`
	CreatedBy     *Creator              `json:"createdBy"`
}

// ProductListItem carries only the primary thumbnail to keep list payloads
// small.
type ProductListItem struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	OriginalPrice float64   `json:"originalPrice"`
	Rating        float64   `json:"rating"`
	ReviewCount   int       `json:"reviewCount"`
	Image         *string   `json:"image"`
	Category      string    `json:"category"`
	Status        string    `json:"status"`
	Stock         int       `json:"stock"`
	SKU           string    `json:"sku,omitempty"`
	Supplier      string    `json:"supplier,omitempty"`
	Tags          []string  `json:"tags"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	CreatedBy     *Creator  `json:"createdBy"`
}

type ListOptions struct {
	Search    string
	Category  string
	Status    string
	CreatedBy string
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

type BulkFilters struct {
	Search   string `json:"search"`
	Category string `json:"category"`
	Status   string `json:"status"`
}

type Uploader struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (uc *ProductUseCase) CreateProduct(ctx context.Context, userID, role string, input ProductInput, imageInputs []service.ImageInput) (*ProductDetail, error) {
	creatorID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, errors.Unauthorized("Invalid user identity", err)
	}

	details := validateProductInput(input, true)
	details = append(details, uc.validateImageInputs(imageInputs)...)
	if len(details) > 0 {
		return nil, errors.Validation(details...)
	}

	input = applyRolePolicy(input, role)
	if err := checkPriceRelation(input.Price, input.OriginalPrice, 0, 0); err != nil {
		return nil, err
	}

	product := &entity.Product{
		Name:        *input.Name,
		Description: *input.Description,
		Price:       *input.Price,
		Category:    *input.Category,
		Status:      entity.StatusDraft,
		Tags:        []string{},
		Images:      uc.images.Ingest(ctx, imageInputs),
	}
	if input.OriginalPrice != nil {
		product.OriginalPrice = *input.OriginalPrice
	}
	if input.SKU != nil {
		product.SKU = *input.SKU
	}
	if input.Supplier != nil {
		product.Supplier = *input.Supplier
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.Status != nil {
		product.Status = *input.Status
	}
	if input.Tags != nil {
		product.Tags = input.Tags
	}
	if input.Rating != nil {
		product.Rating = *input.Rating
	}
	if input.ReviewCount != nil {
		product.ReviewCount = *input.ReviewCount
	}
	product.CreatedBy = creatorID

	if err := uc.productRepo.Create(ctx, product); err != nil {
		// the product document failed; don't leak the freshly stored files
		uc.images.EnqueueCleanup(product.Images, nil)
		return nil, err
	}

	return uc.toDetail(ctx, product), nil
}

func (uc *ProductUseCase) GetProduct(ctx context.Context, id, userID, role string) (*ProductDetail, error) {
	productID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.BadRequest("Invalid product ID", err)
	}

	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	// existence check happens before the ownership check; non-owners see
	// a 403 for products that exist
	if role != entity.RoleAdmin && product.CreatedBy.Hex() != userID {
		return nil, errors.Forbidden("Access denied", nil)
	}

	return uc.toDetail(ctx, product), nil
}

type cachedList struct {
	Items []ProductListItem `json:"items"`
	Total int64             `json:"total"`
}

func (uc *ProductUseCase) ListProducts(ctx context.Context, userID, role string, opts ListOptions) ([]ProductListItem, int64, error) {
	filter := repository.ProductFilter{
		Search:   opts.Search,
		Category: opts.Category,
		Status:   opts.Status,
	}

	// non-admins are always scoped to their own products
	if role != entity.RoleAdmin {
		scope, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			return nil, 0, errors.Unauthorized("Invalid user identity", err)
		}
		filter.CreatedBy = scope
	} else if opts.CreatedBy != "" {
		scope, err := primitive.ObjectIDFromHex(opts.CreatedBy)
		if err != nil {
			return nil, 0, errors.BadRequest("Invalid createdBy filter", err)
		}
		filter.CreatedBy = scope
	}

	key := fmt.Sprintf("products:%s|%s|%s|%s|%s|%s|%d|%d",
		filter.CreatedBy.Hex(), opts.Search, opts.Category, opts.Status,
		opts.SortBy, opts.SortOrder, opts.Page, opts.Limit)

	if uc.listCache != nil {
		var cached cachedList
		if hit, err := uc.listCache.Get(key, &cached); err == nil && hit {
			return cached.Items, cached.Total, nil
		}
	}

	offset := (opts.Page - 1) * opts.Limit
	products, total, err := uc.productRepo.List(ctx, filter, opts.SortBy, opts.SortOrder, opts.Limit, offset)
	if err != nil {
		return nil, 0, err
	}

	creators := uc.loadCreators(ctx, products)
	items := make([]ProductListItem, 0, len(products))
	for _, p := range products {
		items = append(items, toListItem(p, creators[p.CreatedBy]))
	}

	if uc.listCache != nil {
		if err := uc.listCache.Set(key, cachedList{Items: items, Total: total}); err != nil {
			logger.Warn("Failed to cache product list: %v", err)
		}
	}

	return items, total, nil
}

func (uc *ProductUseCase) UpdateProduct(ctx context.Context, id, userID, role string, input ProductInput, imageInputs []service.ImageInput) (*ProductDetail, error) {
	productID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.BadRequest("Invalid product ID", err)
	}

	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if err := CheckPermission(product, userID, role, ActionUpdate); err != nil {
		return nil, err
	}

	details := validateProductInput(input, false)
	details = append(details, uc.validateImageInputs(imageInputs)...)
	if len(details) > 0 {
		return nil, errors.Validation(details...)
	}

	input = applyRolePolicy(input, role)
	if err := checkPriceRelation(input.Price, input.OriginalPrice, product.Price, product.OriginalPrice); err != nil {
		return nil, err
	}

	// updates always carry the full intended image set: retained URLs plus
	// new uploads; whatever is no longer referenced is deleted inline
	newImages := uc.images.Ingest(ctx, imageInputs)
	uc.images.Reconcile(product.Images, newImages)
	product.Images = newImages

	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.OriginalPrice != nil {
		product.OriginalPrice = *input.OriginalPrice
	}
	if input.Category != nil {
		product.Category = *input.Category
	}
	if input.SKU != nil {
		product.SKU = *input.SKU
	}
	if input.Supplier != nil {
		product.Supplier = *input.Supplier
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.Status != nil {
		product.Status = *input.Status
	}
	if input.Tags != nil {
		product.Tags = input.Tags
	}
	if input.Rating != nil {
		product.Rating = *input.Rating
	}
	if input.ReviewCount != nil {
		product.ReviewCount = *input.ReviewCount
	}

	if err := uc.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	return uc.toDetail(ctx, product), nil
}

func (uc *ProductUseCase) DeleteProduct(ctx context.Context, id, userID, role string) error {
	productID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return errors.BadRequest("Invalid product ID", err)
	}

	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return err
	}

	if err := CheckPermission(product, userID, role, ActionDelete); err != nil {
		return err
	}

	// document first; file cleanup is queued and must not delay or fail
	// the response
	if err := uc.productRepo.Delete(ctx, productID); err != nil {
		return err
	}
	uc.images.EnqueueCleanup(product.Images, nil)

	return nil
}

func (uc *ProductUseCase) BulkDelete(ctx context.Context, userID, role string, ids []string, filters *BulkFilters) (int64, error) {
	var filter repository.ProductFilter

	switch {
	case len(ids) > 0:
		objectIDs := make([]primitive.ObjectID, 0, len(ids))
		for _, id := range ids {
			objectID, err := primitive.ObjectIDFromHex(id)
			if err != nil {
				return 0, errors.BadRequest("Some product IDs are invalid", err)
			}
			objectIDs = append(objectIDs, objectID)
		}
		filter.IDs = objectIDs

	case filters != nil:
		filter.Search = filters.Search
		filter.Category = filters.Category
		filter.Status = filters.Status
		filter.SearchSKU = true

	default:
		return 0, errors.BadRequest("Either ids array or filters object is required", nil)
	}

	// non-admins can only ever bulk delete their own drafts
	if role != entity.RoleAdmin {
		scope, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			return 0, errors.Unauthorized("Invalid user identity", err)
		}
		filter.CreatedBy = scope
		filter.Status = entity.StatusDraft
	}

	products, err := uc.productRepo.Find(ctx, filter)
	if err != nil {
		return 0, err
	}
	for _, product := range products {
		if len(product.Images) > 0 {
			uc.images.EnqueueCleanup(product.Images, nil)
		}
	}

	return uc.productRepo.DeleteMany(ctx, filter)
}

func (uc *ProductUseCase) ListUploaders(ctx context.Context) ([]Uploader, error) {
	ids, err := uc.productRepo.DistinctCreators(ctx)
	if err != nil {
		return nil, err
	}

	users, err := uc.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	uploaders := make([]Uploader, 0, len(users))
	for _, user := range users {
		uploaders = append(uploaders, Uploader{
			ID:    user.ID.Hex(),
			Name:  user.Name,
			Email: user.Email,
		})
	}
	return uploaders, nil
}

func (uc *ProductUseCase) toDetail(ctx context.Context, product *entity.Product) *ProductDetail {
	detail := &ProductDetail{
		ID:            product.ID.Hex(),
		Name:          product.Name,
		Description:   product.Description,
		Price:         product.Price,
		OriginalPrice: product.OriginalPrice,
		Rating:        product.Rating,
		ReviewCount:   product.ReviewCount,
		Images:        product.Images,
		Category:      product.Category,
		Status:        product.Status,
		Stock:         product.Stock,
		SKU:           product.SKU,
		Supplier:      product.Supplier,
		Tags:          product.Tags,
		CreatedAt:     product.CreatedAt,
		UpdatedAt:     product.UpdatedAt,
	}
	if detail.Images == nil {
		detail.Images = []entity.ProductImage{}
	}
	if detail.Tags == nil {
		detail.Tags = []string{}
	}

	if creator, err := uc.userRepo.GetByID(ctx, product.CreatedBy); err == nil {
		detail.CreatedBy = &Creator{
			ID:    creator.ID.Hex(),
			Name:  creator.Name,
			Email: creator.Email,
		}
	}
	return detail
}

func (uc *ProductUseCase) loadCreators(ctx context.Context, products []*entity.Product) map[primitive.ObjectID]*Creator {
	seen := make(map[primitive.ObjectID]struct{})
	var ids []primitive.ObjectID
	for _, p := range products {
		if _, ok := seen[p.CreatedBy]; ok {
			continue
		}
		seen[p.CreatedBy] = struct{}{}
		ids = append(ids, p.CreatedBy)
	}

	creators := make(map[primitive.ObjectID]*Creator)
	users, err := uc.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		logger.Warn("Failed to load product creators: %v", err)
		return creators
	}
	for _, user := range users {
		creators[user.ID] = &Creator{
			ID:    user.ID.Hex(),
			Name:  user.Name,
			Email: user.Email,
		}
	}
	return creators
}

func toListItem(product *entity.Product, creator *Creator) ProductListItem {
	item := ProductListItem{
		ID:            product.ID.Hex(),
		Name:          product.Name,
		Description:   product.Description,
		Price:         product.Price,
		OriginalPrice: product.OriginalPrice,
		Rating:        product.Rating,
		ReviewCount:   product.ReviewCount,
		Category:      product.Category,
		Status:        product.Status,
		Stock:         product.Stock,
		SKU:           product.SKU,
		Supplier:      product.Supplier,
		Tags:          product.Tags,
		CreatedAt:     product.CreatedAt,
		UpdatedAt:     product.UpdatedAt,
		CreatedBy:     creator,
	}
	if item.Tags == nil {
		item.Tags = []string{}
	}

	if primary := product.PrimaryImage(); primary != nil {
		url := primary.Thumbnail
		if url == "" {
			url = primary.URL
		}
		item.Image = &url
	}
	return item
}
