package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"catalog-service/catalog"
	apperrors "catalog-service/common/errors"
	"catalog-service/common/logger"
	"catalog-service/models"
	awspkg "catalog-service/pkg/aws"
	"catalog-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ImagePresigner issues upload URLs for product images. *aws.ImagePresigner
// satisfies it.
type ImagePresigner interface {
	ObjectKey(name string) string
	PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (string, error)
	PublicURL(key string) string
}

// ProductService owns product and variant writes.
type ProductService struct {
	productRepo repository.ProductRepo
	catalog     *CatalogService
	cfg         CatalogConfig
	events      *EventPublisher
	images      ImagePresigner
	metrics     MetricsRecorder
}

func NewProductService(
	pr repository.ProductRepo,
	cs *CatalogService,
	cfg CatalogConfig,
	events *EventPublisher,
	images ImagePresigner,
	metrics MetricsRecorder,
) *ProductService {
	return &ProductService{
		productRepo: pr,
		catalog:     cs,
		cfg:         cfg,
		events:      events,
		images:      images,
		metrics:     metrics,
	}
}

func (s *ProductService) GetProduct(ctx context.Context, slug string) (*models.Product, error) {
	product, err := s.productRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, storeError(err, apperrors.ErrProductNotFound)
	}
	return product, nil
}

func (s *ProductService) resolveCategory(ctx context.Context, id, slug string) (*models.Category, error) {
	switch {
	case strings.TrimSpace(id) != "":
		return s.catalog.categoryByID(ctx, strings.TrimSpace(id))
	case strings.TrimSpace(slug) != "":
		return s.catalog.categoryBySlug(ctx, strings.TrimSpace(slug))
	default:
		return nil, apperrors.Newf(apperrors.ErrValidation, "categoryId or categorySlug is required")
	}
}

// CreateProduct projects attributes through the category registry, validates
// commerce fields and assigns SKUs to any hand-authored variants.
func (s *ProductService) CreateProduct(ctx context.Context, req ProductCreateRequest) (*models.Product, error) {
	slug := catalog.Slugify(req.Slug)
	if slug == "" {
		slug = catalog.Slugify(req.Name)
	}
	if slug == "" {
		return nil, apperrors.Newf(apperrors.ErrValidation, "product name %q yields an empty slug", req.Name)
	}

	category, err := s.resolveCategory(ctx, req.CategoryID, req.CategorySlug)
	if err != nil {
		return nil, err
	}

	base, err := catalog.ParseCommerce(req.CommerceInput)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &models.Product{
		ID:              uuid.New().String(),
		Name:            strings.TrimSpace(req.Name),
		Slug:            slug,
		Description:     req.Description,
		CategoryID:      category.ID,
		Images:          req.Images,
		AttributeValues: s.catalog.project(ctx, category, req.AttributeValues),
		HasVariants:     req.HasVariants,
		VariantOptions:  req.VariantOptions,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	setBaseline(product, base)

	if req.HasVariants {
		for i, vr := range req.Variants {
			variant, err := s.buildVariant(category, product, vr)
			if err != nil {
				return nil, fmt.Errorf("variant %d: %w", i, err)
			}
			if product.VariantIndex(variant.SKU) >= 0 {
				return nil, apperrors.Newf(apperrors.ErrDuplicateSKU, "sku %q repeats within the product", variant.SKU)
			}
			product.Variants = append(product.Variants, variant)
		}
	}
	product.Normalize()

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, storeError(err, apperrors.ErrProductNotFound)
	}

	logger.Info(ctx, "Product created",
		zap.String("slug", product.Slug),
		zap.String("category", category.Slug),
		zap.Int("variants", len(product.Variants)),
	)
	recordCount(s.metrics, awspkg.MetricProductsCreated, map[string]string{"category": category.Slug})
	s.events.PublishProduct(ctx, models.EventProductCreated, product)
	return product, nil
}

// UpdateProduct applies a partial update. Attribute values are re-projected
// against the product's category and commerce fields re-validated.
func (s *ProductService) UpdateProduct(ctx context.Context, slug string, req ProductUpdateRequest) (*models.Product, error) {
	product, err := s.GetProduct(ctx, slug)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.Slug != nil {
		newSlug := catalog.Slugify(*req.Slug)
		if newSlug == "" {
			return nil, apperrors.Newf(apperrors.ErrValidation, "slug %q is empty after normalization", *req.Slug)
		}
		product.Slug = newSlug
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Images != nil {
		product.Images = *req.Images
	}
	if req.HasVariants != nil {
		product.HasVariants = *req.HasVariants
	}

	patch, err := catalog.ParseCommercePatch(req.CommerceInput)
	if err != nil {
		return nil, err
	}
	base := patch.Apply(baselineOf(product))
	if err := catalog.ValidateCommerce(base); err != nil {
		return nil, err
	}
	setBaseline(product, base)

	if req.AttributeValues != nil {
		category, err := s.catalog.categoryByID(ctx, product.CategoryID)
		if err != nil {
			return nil, err
		}
		product.AttributeValues = s.catalog.project(ctx, category, req.AttributeValues)
	}

	if err := s.save(ctx, product); err != nil {
		return nil, err
	}
	s.events.PublishProduct(ctx, models.EventProductUpdated, product)
	return product, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, slug string) error {
	product, err := s.GetProduct(ctx, slug)
	if err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, product.ID); err != nil {
		return storeError(err, apperrors.ErrProductNotFound)
	}

	logger.Info(ctx, "Product deleted", zap.String("slug", slug))
	recordCount(s.metrics, awspkg.MetricProductsDeleted, nil)
	s.events.PublishProduct(ctx, models.EventProductDeleted, product)
	return nil
}

// save normalizes and replaces the stored product.
func (s *ProductService) save(ctx context.Context, product *models.Product) error {
	product.UpdatedAt = time.Now().UTC()
	product.Normalize()
	if err := s.productRepo.Update(ctx, product); err != nil {
		return storeError(err, apperrors.ErrProductNotFound)
	}
	return nil
}

// GeneratePresignedUpload returns a presigned PUT for a new image of the
// product. The public URL is what callers store in images.
func (s *ProductService) GeneratePresignedUpload(ctx context.Context, slug, filename, contentType string, expires time.Duration) (*PresignedUpload, error) {
	if s.images == nil {
		return nil, apperrors.Newf(apperrors.ErrServiceUnavailable, "image uploads are not configured")
	}
	product, err := s.GetProduct(ctx, slug)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	key := s.images.ObjectKey(fmt.Sprintf("%s/%s%s", product.Slug, uuid.New().String(), ext))
	uploadURL, err := s.images.PresignPut(ctx, key, contentType, expires)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &PresignedUpload{
		UploadURL: uploadURL,
		Method:    "PUT",
		Key:       key,
		PublicURL: s.images.PublicURL(key),
		ExpiresIn: int64(expires.Seconds()),
	}, nil
}

func baselineOf(p *models.Product) catalog.Baseline {
	return catalog.Baseline{
		Price:           p.Price,
		MRP:             p.MRP,
		DiscountPercent: p.DiscountPercent,
		Stock:           p.Stock,
	}
}

func setBaseline(p *models.Product, b catalog.Baseline) {
	p.Price = b.Price
	p.MRP = b.MRP
	p.DiscountPercent = b.DiscountPercent
	p.Stock = b.Stock
}
