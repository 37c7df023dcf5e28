package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"abcstore/internal/domain/entity"
	"abcstore/internal/domain/repository"
	"abcstore/internal/domain/service"
	"abcstore/internal/usecase"
	apperrors "abcstore/pkg/errors"
)

// MockProductRepository is a mock implementation of repository.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *entity.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, product *entity.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) List(ctx context.Context, filter repository.ProductFilter, sortBy, sortOrder string, limit, offset int) ([]*entity.Product, int64, error) {
	args := m.Called(ctx, filter, sortBy, sortOrder, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entity.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) Find(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Product), args.Error(1)
}

func (m *MockProductRepository) DeleteMany(ctx context.Context, filter repository.ProductFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) DistinctCreators(ctx context.Context) ([]primitive.ObjectID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]primitive.ObjectID), args.Error(1)
}

// MockUserRepository is a mock implementation of repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*entity.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.User), args.Error(1)
}

func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// MockImageService is a mock implementation of service.ImageService
type MockImageService struct {
	mock.Mock
}

func (m *MockImageService) Ingest(ctx context.Context, inputs []service.ImageInput) []entity.ProductImage {
	args := m.Called(ctx, inputs)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]entity.ProductImage)
}

func (m *MockImageService) Reconcile(oldImages, newImages []entity.ProductImage) {
	m.Called(oldImages, newImages)
}

func (m *MockImageService) EnqueueCleanup(oldImages, newImages []entity.ProductImage) {
	m.Called(oldImages, newImages)
}

// MockCatalogExporter is a mock implementation of service.CatalogExporter
type MockCatalogExporter struct {
	mock.Mock
}

func (m *MockCatalogExporter) ProductCatalog(products []service.ExportProduct) ([]byte, error) {
	args := m.Called(products)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type productFixture struct {
	productRepo *MockProductRepository
	userRepo    *MockUserRepository
	images      *MockImageService
	exporter    *MockCatalogExporter
	uc          *usecase.ProductUseCase
}

func newProductFixture() *productFixture {
	f := &productFixture{
		productRepo: new(MockProductRepository),
		userRepo:    new(MockUserRepository),
		images:      new(MockImageService),
		exporter:    new(MockCatalogExporter),
	}
	f.uc = usecase.NewProductUseCase(f.productRepo, f.userRepo, f.images, f.exporter, nil, 5*1024*1024)
	return f
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

func validCreateInput() usecase.ProductInput {
	return usecase.ProductInput{
		Name:        strPtr("Wireless Mouse"),
		Description: strPtr("Ergonomic 2.4GHz mouse"),
		Price:       floatPtr(29.99),
		Category:    strPtr("electronics"),
	}
}

func appErr(t *testing.T, err error) *apperrors.AppError {
	t.Helper()
	appError, ok := err.(*apperrors.AppError)
	assert.True(t, ok, "expected *AppError, got %T", err)
	return appError
}

func TestCheckPermission(t *testing.T) {
	owner := primitive.NewObjectID()
	other := primitive.NewObjectID()

	draft := &entity.Product{CreatedBy: owner, Status: entity.StatusDraft}
	active := &entity.Product{CreatedBy: owner, Status: entity.StatusActive}

	assert.NoError(t, usecase.CheckPermission(active, other.Hex(), entity.RoleAdmin, usecase.ActionUpdate))
	assert.NoError(t, usecase.CheckPermission(draft, owner.Hex(), entity.RoleUser, usecase.ActionUpdate))

	err := usecase.CheckPermission(draft, other.Hex(), entity.RoleUser, usecase.ActionUpdate)
	assert.Equal(t, "Access denied - not your product", appErr(t, err).Message)

	err = usecase.CheckPermission(active, owner.Hex(), entity.RoleUser, usecase.ActionUpdate)
	assert.Equal(t, "Access denied - can only update draft products", appErr(t, err).Message)

	err = usecase.CheckPermission(active, owner.Hex(), entity.RoleUser, usecase.ActionDelete)
	assert.Equal(t, "Access denied - can only delete draft products", appErr(t, err).Message)
}

func TestCreateProduct_NonAdminForcedToDraft(t *testing.T) {
	f := newProductFixture()
	userID := primitive.NewObjectID()

	input := validCreateInput()
	input.Status = strPtr(entity.StatusActive)
	input.Rating = floatPtr(4.5)

	f.images.On("Ingest", mock.Anything, mock.Anything).Return([]entity.ProductImage{})

	var created *entity.Product
	f.productRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Product")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*entity.Product)
		}).Return(nil)
	f.userRepo.On("GetByID", mock.Anything, userID).
		Return(&entity.User{ID: userID, Name: "Jo", Email: "jo@example.com"}, nil)

	detail, err := f.uc.CreateProduct(context.Background(), userID.Hex(), entity.RoleUser, input, nil)

	assert.NoError(t, err)
	assert.Equal(t, entity.StatusDraft, created.Status)
	assert.Zero(t, created.Rating)
	assert.Equal(t, userID, created.CreatedBy)
	assert.Equal(t, entity.StatusDraft, detail.Status)
	f.productRepo.AssertExpectations(t)
}

func TestCreateProduct_AdminKeepsStatusAndRating(t *testing.T) {
	f := newProductFixture()
	userID := primitive.NewObjectID()

	input := validCreateInput()
	input.Status = strPtr(entity.StatusActive)
	input.Rating = floatPtr(4.5)
	input.ReviewCount = intPtr(12)

	f.images.On("Ingest", mock.Anything, mock.Anything).Return([]entity.ProductImage{})

	var created *entity.Product
	f.productRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Product")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*entity.Product)
		}).Return(nil)
	f.userRepo.On("GetByID", mock.Anything, userID).
		Return(&entity.User{ID: userID, Name: "Admin", Email: "admin@example.com"}, nil)

	_, err := f.uc.CreateProduct(context.Background(), userID.Hex(), entity.RoleAdmin, input, nil)

	assert.NoError(t, err)
	assert.Equal(t, entity.StatusActive, created.Status)
	assert.Equal(t, 4.5, created.Rating)
	assert.Equal(t, 12, created.ReviewCount)
}

func TestCreateProduct_ValidationFailures(t *testing.T) {
	f := newProductFixture()
	userID := primitive.NewObjectID().Hex()

	tests := []struct {
		name    string
		mutate  func(*usecase.ProductInput)
		field   string
		message string
	}{
		{
			name:    "missing name",
			mutate:  func(in *usecase.ProductInput) { in.Name = nil },
			field:   "name",
			message: "Product name is required",
		},
		{
			name:    "zero price",
			mutate:  func(in *usecase.ProductInput) { in.Price = floatPtr(0) },
			field:   "price",
			message: "Price must be greater than 0",
		},
		{
			name:    "price over ceiling",
			mutate:  func(in *usecase.ProductInput) { in.Price = floatPtr(1000000) },
			field:   "price",
			message: "Price must be less than $999,999.99",
		},
		{
			name:    "unknown category",
			mutate:  func(in *usecase.ProductInput) { in.Category = strPtr("groceries") },
			field:   "category",
			message: "Category is not valid",
		},
		{
			name: "too many tags",
			mutate: func(in *usecase.ProductInput) {
				in.Tags = []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"}
			},
			field:   "tags",
			message: "Maximum 10 tags allowed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validCreateInput()
			tt.mutate(&input)

			_, err := f.uc.CreateProduct(context.Background(), userID, entity.RoleAdmin, input, nil)

			appError := appErr(t, err)
			assert.Equal(t, "VALIDATION_ERROR", appError.Code)
			found := false
			for _, d := range appError.Details {
				if d.Field == tt.field && d.Message == tt.message {
					found = true
				}
			}
			assert.True(t, found, "expected detail %q on %q, got %v", tt.message, tt.field, appError.Details)
		})
	}
}

func TestCreateProduct_OriginalPriceRelation(t *testing.T) {
	f := newProductFixture()
	userID := primitive.NewObjectID()

	input := validCreateInput()
	input.Price = floatPtr(10)
	input.OriginalPrice = floatPtr(5)

	_, err := f.uc.CreateProduct(context.Background(), userID.Hex(), entity.RoleAdmin, input, nil)

	appError := appErr(t, err)
	assert.Equal(t, "VALIDATION_ERROR", appError.Code)
	assert.Equal(t, "originalPrice", appError.Details[0].Field)

	// zero means no discount and is always accepted
	input.OriginalPrice = floatPtr(0)
	f.images.On("Ingest", mock.Anything, mock.Anything).Return([]entity.ProductImage{})
	f.productRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.userRepo.On("GetByID", mock.Anything, userID).
		Return(&entity.User{ID: userID, Name: "Jo", Email: "jo@example.com"}, nil)

	detail, err := f.uc.CreateProduct(context.Background(), userID.Hex(), entity.RoleAdmin, input, nil)
	assert.NoError(t, err)
	assert.Zero(t, detail.OriginalPrice)
}

func TestCreateProduct_CleansUpImagesWhenInsertFails(t *testing.T) {
	f := newProductFixture()
	userID := primitive.NewObjectID().Hex()

	stored := []entity.ProductImage{{URL: "/uploads/products/a.jpg", IsPrimary: true}}
	f.images.On("Ingest", mock.Anything, mock.Anything).Return(stored)
	f.productRepo.On("Create", mock.Anything, mock.Anything).
		Return(apperrors.Conflict("SKU already exists"))
	f.images.On("EnqueueCleanup", stored, []entity.ProductImage(nil)).Return()

	input := validCreateInput()
	input.SKU = strPtr("SKU-1")

	_, err := f.uc.CreateProduct(context.Background(), userID, entity.RoleAdmin, input, nil)

	assert.Equal(t, "CONFLICT", appErr(t, err).Code)
	f.images.AssertExpectations(t)
}

func TestGetProduct_OwnershipScope(t *testing.T) {
	f := newProductFixture()
	owner := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	productID := primitive.NewObjectID()

	product := &entity.Product{ID: productID, CreatedBy: owner, Status: entity.StatusActive}
	f.productRepo.On("GetByID", mock.Anything, productID).Return(product, nil)
	f.userRepo.On("GetByID", mock.Anything, owner).
		Return(&entity.User{ID: owner, Name: "Jo", Email: "jo@example.com"}, nil)

	_, err := f.uc.GetProduct(context.Background(), productID.Hex(), stranger.Hex(), entity.RoleUser)
	assert.Equal(t, 403, appErr(t, err).Status)

	detail, err := f.uc.GetProduct(context.Background(), productID.Hex(), owner.Hex(), entity.RoleUser)
	assert.NoError(t, err)
	assert.Equal(t, productID.Hex(), detail.ID)
	assert.Equal(t, "Jo", detail.CreatedBy.Name)
}

func TestUpdateProduct_OwnerCannotTouchNonDraft(t *testing.T) {
	f := newProductFixture()
	owner := primitive.NewObjectID()
	productID := primitive.NewObjectID()

	product := &entity.Product{ID: productID, CreatedBy: owner, Status: entity.StatusActive}
	f.productRepo.On("GetByID", mock.Anything, productID).Return(product, nil)

	_, err := f.uc.UpdateProduct(context.Background(), productID.Hex(), owner.Hex(), entity.RoleUser,
		usecase.ProductInput{Name: strPtr("Renamed")}, nil)

	assert.Equal(t, "Access denied - can only update draft products", appErr(t, err).Message)
	f.productRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateProduct_ReplacesImageSet(t *testing.T) {
	f := newProductFixture()
	owner := primitive.NewObjectID()
	productID := primitive.NewObjectID()

	oldImages := []entity.ProductImage{{URL: "/uploads/products/old.jpg", IsPrimary: true}}
	newImages := []entity.ProductImage{{URL: "/uploads/products/new.jpg", IsPrimary: true}}

	product := &entity.Product{
		ID: productID, CreatedBy: owner, Status: entity.StatusDraft,
		Name: "Mouse", Description: "d", Price: 10, Category: "electronics",
		Images: oldImages,
	}
	f.productRepo.On("GetByID", mock.Anything, productID).Return(product, nil)
	f.images.On("Ingest", mock.Anything, mock.Anything).Return(newImages)
	f.images.On("Reconcile", oldImages, newImages).Return()
	f.productRepo.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.userRepo.On("GetByID", mock.Anything, owner).
		Return(&entity.User{ID: owner, Name: "Jo", Email: "jo@example.com"}, nil)

	detail, err := f.uc.UpdateProduct(context.Background(), productID.Hex(), owner.Hex(), entity.RoleUser,
		usecase.ProductInput{Name: strPtr("Renamed")}, []service.ImageInput{{Kind: service.ImageFromURL, URI: "/uploads/products/new.jpg"}})

	assert.NoError(t, err)
	assert.Equal(t, "Renamed", detail.Name)
	assert.Equal(t, newImages, detail.Images)
	f.images.AssertExpectations(t)
}

func TestDeleteProduct_EnqueuesCleanupAfterDocumentDelete(t *testing.T) {
	f := newProductFixture()
	owner := primitive.NewObjectID()
	productID := primitive.NewObjectID()

	images := []entity.ProductImage{{URL: "/uploads/products/a.jpg"}}
	product := &entity.Product{ID: productID, CreatedBy: owner, Status: entity.StatusDraft, Images: images}

	f.productRepo.On("GetByID", mock.Anything, productID).Return(product, nil)
	f.productRepo.On("Delete", mock.Anything, productID).Return(nil)
	f.images.On("EnqueueCleanup", images, []entity.ProductImage(nil)).Return()

	err := f.uc.DeleteProduct(context.Background(), productID.Hex(), owner.Hex(), entity.RoleUser)

	assert.NoError(t, err)
	f.productRepo.AssertExpectations(t)
	f.images.AssertExpectations(t)
}

func TestBulkDelete_ArgumentValidation(t *testing.T) {
	f := newProductFixture()
	userID := primitive.NewObjectID().Hex()

	_, err := f.uc.BulkDelete(context.Background(), userID, entity.RoleAdmin, nil, nil)
	assert.Equal(t, "Either ids array or filters object is required", appErr(t, err).Message)

	_, err = f.uc.BulkDelete(context.Background(), userID, entity.RoleAdmin, []string{"not-an-id"}, nil)
	assert.Equal(t, "Some product IDs are invalid", appErr(t, err).Message)
}

func TestBulkDelete_NonAdminScopedToOwnDrafts(t *testing.T) {
	f := newProductFixture()
	userID := primitive.NewObjectID()

	var captured repository.ProductFilter
	f.productRepo.On("Find", mock.Anything, mock.AnythingOfType("repository.ProductFilter")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(repository.ProductFilter)
		}).Return([]*entity.Product{}, nil)
	f.productRepo.On("DeleteMany", mock.Anything, mock.AnythingOfType("repository.ProductFilter")).
		Return(int64(0), nil)

	_, err := f.uc.BulkDelete(context.Background(), userID.Hex(), entity.RoleUser, nil,
		&usecase.BulkFilters{Category: "books"})

	assert.NoError(t, err)
	assert.Equal(t, userID, captured.CreatedBy)
	assert.Equal(t, entity.StatusDraft, captured.Status)
	assert.Equal(t, "books", captured.Category)
	assert.True(t, captured.SearchSKU)
}

func TestListProducts_NonAdminScopedToCaller(t *testing.T) {
	f := newProductFixture()
	userID := primitive.NewObjectID()

	var captured repository.ProductFilter
	f.productRepo.On("List", mock.Anything, mock.AnythingOfType("repository.ProductFilter"),
		"", "", 10, 0).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(repository.ProductFilter)
		}).Return([]*entity.Product{}, int64(0), nil)
	f.userRepo.On("FindByIDs", mock.Anything, mock.Anything).Return([]*entity.User{}, nil)

	items, total, err := f.uc.ListProducts(context.Background(), userID.Hex(), entity.RoleUser,
		usecase.ListOptions{Page: 1, Limit: 10})

	assert.NoError(t, err)
	assert.Equal(t, userID, captured.CreatedBy)
	assert.Empty(t, items)
	assert.Zero(t, total)
}

func TestListUploaders(t *testing.T) {
	f := newProductFixture()
	id := primitive.NewObjectID()

	f.productRepo.On("DistinctCreators", mock.Anything).Return([]primitive.ObjectID{id}, nil)
	f.userRepo.On("FindByIDs", mock.Anything, []primitive.ObjectID{id}).
		Return([]*entity.User{{ID: id, Name: "Jo", Email: "jo@example.com"}}, nil)

	uploaders, err := f.uc.ListUploaders(context.Background())

	assert.NoError(t, err)
	assert.Len(t, uploaders, 1)
	assert.Equal(t, "Jo", uploaders[0].Name)
}
