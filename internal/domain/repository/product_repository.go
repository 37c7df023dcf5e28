package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"abcstore/internal/domain/entity"
)

// ProductFilter is the query intent for list, bulk and export operations.
// Zero fields are not applied. Search matches name, description and tags
// (and sku on bulk/export paths) case-insensitively.
type ProductFilter struct {
	Search    string
	Category  string
	Status    string
	CreatedBy primitive.ObjectID
	IDs       []primitive.ObjectID
	SearchSKU bool
}

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, filter ProductFilter, sortBy, sortOrder string, limit, offset int) ([]*entity.Product, int64, error)
	Find(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
	DeleteMany(ctx context.Context, filter ProductFilter) (int64, error)
	DistinctCreators(ctx context.Context) ([]primitive.ObjectID, error)
}
