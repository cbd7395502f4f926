package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"catalog-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CategoryRepository struct {
	collection *mongo.Collection
}

func NewCategoryRepository(db *mongo.Database) *CategoryRepository {
	return &CategoryRepository{
		collection: db.Collection("categories"),
	}
}

func (r *CategoryRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetUnique(true).SetName(slugIndexName),
	})
	if err != nil {
		return fmt.Errorf("create category indexes: %w", err)
	}
	return nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id string) (*models.Category, error) {
	return r.findOne(ctx, bson.M{"_id": id}, id)
}

func (r *CategoryRepository) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return r.findOne(ctx, bson.M{"slug": slug}, slug)
}

func (r *CategoryRepository) findOne(ctx context.Context, filter bson.M, ref string) (*models.Category, error) {
	var category models.Category
	err := r.collection.FindOne(ctx, filter).Decode(&category)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("category %q: %w", ref, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find category %q: %w", ref, err)
	}
	return &category, nil
}

func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer cursor.Close(ctx)

	categories := []models.Category{}
	if err = cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return categories, nil
}

func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	// $push on a null field fails, so both lists are stored as arrays.
	if category.AttributeFields == nil {
		category.AttributeFields = []models.FieldDef{}
	}
	if category.VariationAxes == nil {
		category.VariationAxes = []models.AxisDef{}
	}
	if _, err := r.collection.InsertOne(ctx, category); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %v", ErrDuplicateSlug, err)
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) AppendAttributeField(ctx context.Context, categoryID string, field models.FieldDef) error {
	return r.appendUnique(ctx, categoryID, "attributeFields", field.Slug, field)
}

func (r *CategoryRepository) AppendAxis(ctx context.Context, categoryID string, axis models.AxisDef) error {
	return r.appendUnique(ctx, categoryID, "variationAxes", axis.Slug, axis)
}

// appendUnique pushes def onto the named list unless an entry with the same
// slug is already there. The slug check and the push are one atomic update.
func (r *CategoryRepository) appendUnique(ctx context.Context, categoryID, list, slug string, def interface{}) error {
	filter := bson.M{
		"_id":           categoryID,
		list + ".slug": bson.M{"$ne": slug},
	}
	update := bson.M{
		"$push": bson.M{list: def},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("append to %s: %w", list, err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": categoryID})
	if err != nil {
		return fmt.Errorf("check category %s: %w", categoryID, err)
	}
	if count == 0 {
		return fmt.Errorf("category %s: %w", categoryID, ErrNotFound)
	}
	return fmt.Errorf("%s slug %q: %w", list, slug, ErrDuplicateFieldSlug)
}
