package controllers

import (
	"context"
	"io"
	"time"

	"catalog-service/models"
	"catalog-service/services"
)

// Default controller settings.
const (
	DefaultCacheTTL       = 10 * time.Minute
	DefaultContextTimeout = 30 * time.Second
)

// CategoryServiceAPI defines the category operations the handlers need.
type CategoryServiceAPI interface {
	CreateCategory(ctx context.Context, req services.CategoryCreateRequest) (*models.Category, error)
	GetCategory(ctx context.Context, slug string) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	AddAttributeField(ctx context.Context, categorySlug string, field models.FieldDef) (*models.Category, error)
	AddVariationAxis(ctx context.Context, categorySlug string, axis models.AxisDef) (*models.Category, error)
}

// CatalogServiceAPI covers the read paths driven by category definitions.
type CatalogServiceAPI interface {
	ListProducts(ctx context.Context, query map[string]string) ([]models.Product, error)
	Facets(ctx context.Context, categorySlug string) (models.FacetSet, error)
}

// ProductServiceAPI defines the product and variant operations.
type ProductServiceAPI interface {
	GetProduct(ctx context.Context, slug string) (*models.Product, error)
	CreateProduct(ctx context.Context, req services.ProductCreateRequest) (*models.Product, error)
	UpdateProduct(ctx context.Context, slug string, req services.ProductUpdateRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, slug string) error

	AddVariant(ctx context.Context, slug string, req services.VariantRequest) (*models.Product, error)
	UpdateVariant(ctx context.Context, slug, sku string, req services.VariantUpdateRequest) (*models.Product, error)
	DeleteVariant(ctx context.Context, slug, sku string) (*models.Product, error)
	GenerateVariants(ctx context.Context, slug string, req services.GenerateVariantsRequest) (*models.Product, error)

	ValidateBulkImport(ctx context.Context, file io.Reader) (*models.BulkImportValidation, error)
	ProcessBulkImport(ctx context.Context, file io.Reader) (*models.BulkImportResult, error)
	GeneratePresignedUpload(ctx context.Context, slug, filename, contentType string, expires time.Duration) (*services.PresignedUpload, error)
}

// BulkJobQueue runs bulk imports in the background.
type BulkJobQueue interface {
	Enqueue(ctx context.Context, file io.Reader) (*models.BulkImportJob, error)
	Status(ctx context.Context, jobID string) (*models.BulkImportJob, error)
}
