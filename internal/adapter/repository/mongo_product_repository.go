package repository

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"abcstore/internal/domain/entity"
	"abcstore/internal/domain/repository"
	"abcstore/pkg/errors"
)

var productSortFields = map[string]bool{
	"createdAt": true,
	"updatedAt": true,
	"name":      true,
	"price":     true,
	"stock":     true,
	"rating":    true,
	"status":    true,
	"category":  true,
}

type mongoProductRepository struct {
	collection *mongo.Collection
}

func NewMongoProductRepository(db *mongo.Database) repository.ProductRepository {
	return &mongoProductRepository{
		collection: db.Collection("products"),
	}
}

// EnsureProductIndexes creates the sparse unique SKU index and the common
// filter/sort indexes. Called once at startup.
func EnsureProductIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("products").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sku", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "createdBy", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	return err
}

func (r *mongoProductRepository) Create(ctx context.Context, product *entity.Product) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	product.ID = primitive.NewObjectID()
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now
	product.NormalizePrimary()

	_, err := r.collection.InsertOne(ctx, product)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.Conflict("SKU already exists")
		}
		return errors.Internal("Failed to create product", err)
	}
	return nil
}

func (r *mongoProductRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var product entity.Product
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.NotFound("Product", err)
		}
		return nil, errors.Internal("Failed to get product", err)
	}
	return &product, nil
}

func (r *mongoProductRepository) Update(ctx context.Context, product *entity.Product) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	product.UpdatedAt = time.Now()
	product.NormalizePrimary()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": product.ID}, product)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.Conflict("SKU already exists")
		}
		return errors.Internal("Failed to update product", err)
	}
	if result.MatchedCount == 0 {
		return errors.NotFound("Product", nil)
	}
	return nil
}

func (r *mongoProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Internal("Failed to delete product", err)
	}
	if result.DeletedCount == 0 {
		return errors.NotFound("Product", nil)
	}
	return nil
}

func (r *mongoProductRepository) List(ctx context.Context, filter repository.ProductFilter, sortBy, sortOrder string, limit, offset int) ([]*entity.Product, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := buildProductFilter(filter)

	// count runs concurrently with the page query
	totalCh := make(chan int64, 1)
	errCh := make(chan error, 1)
	go func() {
		total, err := r.collection.CountDocuments(ctx, query)
		if err != nil {
			errCh <- err
			return
		}
		totalCh <- total
	}()

	if !productSortFields[sortBy] {
		sortBy = "createdAt"
	}
	order := -1
	if sortOrder == "asc" {
		order = 1
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: sortBy, Value: order}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, 0, errors.Internal("Failed to list products", err)
	}
	defer cursor.Close(ctx)

	var products []*entity.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, errors.Internal("Failed to decode products", err)
	}

	select {
	case total := <-totalCh:
		return products, total, nil
	case err := <-errCh:
		return nil, 0, errors.Internal("Failed to count products", err)
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	}
}

func (r *mongoProductRepository) Find(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, buildProductFilter(filter))
	if err != nil {
		return nil, errors.Internal("Failed to find products", err)
	}
	defer cursor.Close(ctx)

	var products []*entity.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, errors.Internal("Failed to decode products", err)
	}
	return products, nil
}

func (r *mongoProductRepository) DeleteMany(ctx context.Context, filter repository.ProductFilter) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, buildProductFilter(filter))
	if err != nil {
		return 0, errors.Internal("Failed to delete products", err)
	}
	return result.DeletedCount, nil
}

func (r *mongoProductRepository) DistinctCreators(ctx context.Context) ([]primitive.ObjectID, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	values, err := r.collection.Distinct(ctx, "createdBy", bson.M{})
	if err != nil {
		return nil, errors.Internal("Failed to list product uploaders", err)
	}

	ids := make([]primitive.ObjectID, 0, len(values))
	for _, v := range values {
		if id, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func buildProductFilter(f repository.ProductFilter) bson.M {
	query := bson.M{}

	if len(f.IDs) > 0 {
		query["_id"] = bson.M{"$in": f.IDs}
	}
	if !f.CreatedBy.IsZero() {
		query["createdBy"] = f.CreatedBy
	}
	if f.Category != "" {
		query["category"] = f.Category
	}
	if f.Status != "" {
		query["status"] = f.Status
	}
	if f.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		or := []bson.M{
			{"name": re},
			{"description": re},
		}
		// list queries search tags, bulk/export queries search sku
		if f.SearchSKU {
			or = append(or, bson.M{"sku": re})
		} else {
			or = append(or, bson.M{"tags": re})
		}
		query["$or"] = or
	}

	return query
}
