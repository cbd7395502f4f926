package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"catalog-service/catalog"
	"catalog-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	slugIndexName       = "slug_unique"
	variantSKUIndexName = "variants_sku_unique"
)

type ProductRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{
		collection: db.Collection("products"),
	}
}

// EnsureIndexes creates the uniqueness constraints the catalog relies on.
// A multikey unique index does not stop two variants of one product sharing a
// SKU; the service checks that case before writing.
func (r *ProductRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(slugIndexName),
		},
		{
			Keys: bson.D{{Key: "variants.sku", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName(variantSKUIndexName).
				SetPartialFilterExpression(bson.M{"variants.sku": bson.M{"$exists": true}}),
		},
		{
			Keys:    bson.D{{Key: "categoryId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("category_created"),
		},
	}
	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create product indexes: %w", err)
	}
	return nil
}

func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	if _, err := r.collection.InsertOne(ctx, product); err != nil {
		return classifyWriteError(err)
	}
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, product *models.Product) error {
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": product.ID}, product)
	if err != nil {
		return classifyWriteError(err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("product %s: %w", product.ID, ErrNotFound)
	}
	return nil
}

func (r *ProductRepository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := r.collection.FindOne(ctx, bson.M{"slug": slug}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("product %q: %w", slug, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find product %q: %w", slug, err)
	}
	return &product, nil
}

func (r *ProductRepository) FindMany(ctx context.Context, predicate catalog.Predicate, sort catalog.Sort, limit int) ([]models.Product, error) {
	findOptions := options.Find().SetSort(SortToBSON(sort))
	if limit > 0 {
		findOptions.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, PredicateToBSON(predicate), findOptions)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err = cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

// Delete removes the product document; variants go with it.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *ProductRepository) SlugsExist(ctx context.Context, slugs []string) ([]string, error) {
	if len(slugs) == 0 {
		return []string{}, nil
	}
	cursor, err := r.collection.Find(ctx,
		bson.M{"slug": bson.M{"$in": slugs}},
		options.Find().SetProjection(bson.M{"slug": 1}),
	)
	if err != nil {
		return nil, fmt.Errorf("find slugs: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		Slug string `bson:"slug"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode slugs: %w", err)
	}
	taken := make([]string, 0, len(docs))
	for _, d := range docs {
		taken = append(taken, d.Slug)
	}
	return taken, nil
}

// classifyWriteError maps a duplicate key error to the violated constraint by
// index name.
func classifyWriteError(err error) error {
	if !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("write product: %w", err)
	}
	if strings.Contains(err.Error(), variantSKUIndexName) {
		return fmt.Errorf("%w: %v", ErrDuplicateSKU, err)
	}
	return fmt.Errorf("%w: %v", ErrDuplicateSlug, err)
}
