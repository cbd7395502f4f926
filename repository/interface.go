package repository

import (
	"context"
	"errors"

	"catalog-service/catalog"
	"catalog-service/models"
)

// Store errors shared by every adapter. Adapters wrap them with the underlying
// cause, so match with errors.Is.
var (
	ErrNotFound           = errors.New("record not found")
	ErrDuplicateSKU       = errors.New("duplicate variant sku")
	ErrDuplicateSlug      = errors.New("duplicate slug")
	ErrDuplicateFieldSlug = errors.New("duplicate field slug")
)

// ProductRepo defines the product store used by the catalog services.
// This interface uses plain Go types (no driver types) so adapters can be swapped.
type ProductRepo interface {
	Create(ctx context.Context, product *models.Product) error
	// Update replaces the stored product with the same ID.
	Update(ctx context.Context, product *models.Product) error
	FindBySlug(ctx context.Context, slug string) (*models.Product, error)
	FindMany(ctx context.Context, predicate catalog.Predicate, sort catalog.Sort, limit int) ([]models.Product, error)
	Delete(ctx context.Context, id string) error
	// SlugsExist returns the subset of slugs already taken.
	SlugsExist(ctx context.Context, slugs []string) ([]string, error)
	EnsureIndexes(ctx context.Context) error
}

// CategoryRepo defines the category store. Fields and axes can only be
// appended.
type CategoryRepo interface {
	FindByID(ctx context.Context, id string) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	AppendAttributeField(ctx context.Context, categoryID string, field models.FieldDef) error
	AppendAxis(ctx context.Context, categoryID string, axis models.AxisDef) error
	EnsureIndexes(ctx context.Context) error
}
