package services

import (
	"context"
	"errors"

	"catalog-service/catalog"
	apperrors "catalog-service/common/errors"
	"catalog-service/common/logger"
	"catalog-service/models"
	awspkg "catalog-service/pkg/aws"
	"catalog-service/repository"

	"go.uber.org/zap"
)

// CatalogService serves the read side of the catalog: attribute projection,
// filtered listing and facets.
type CatalogService struct {
	categories repository.CategoryRepo
	products   repository.ProductRepo
	filters    *catalog.FilterBuilder
	metrics    MetricsRecorder
}

func NewCatalogService(cr repository.CategoryRepo, pr repository.ProductRepo, cfg CatalogConfig, metrics MetricsRecorder) *CatalogService {
	s := &CatalogService{
		categories: cr,
		products:   pr,
		metrics:    metrics,
	}
	s.filters = catalog.NewFilterBuilder(catalog.CategoryResolverFunc(s.categoryBySlug), cfg.FilterMode)
	return s
}

func (s *CatalogService) categoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	category, err := s.categories.FindBySlug(ctx, slug)
	if err != nil {
		return nil, storeError(err, apperrors.ErrCategoryNotFound)
	}
	return category, nil
}

func (s *CatalogService) categoryByID(ctx context.Context, id string) (*models.Category, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, apperrors.ErrCategoryNotFound)
	}
	return category, nil
}

// ProjectAttributes restricts input to the attribute fields declared by the
// category. Undeclared keys are dropped silently.
func (s *CatalogService) ProjectAttributes(ctx context.Context, categoryID string, input map[string]models.FieldValue) (map[string]models.FieldValue, error) {
	category, err := s.categoryByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	return s.project(ctx, category, input), nil
}

func (s *CatalogService) project(ctx context.Context, category *models.Category, input map[string]models.FieldValue) map[string]models.FieldValue {
	if dropped := catalog.Undeclared(category.AttributeFields, input); len(dropped) > 0 {
		logger.Debug(ctx, "Dropping undeclared attribute keys",
			zap.String("category", category.Slug),
			zap.Strings("keys", dropped),
		)
		recordValue(s.metrics, awspkg.MetricAttributesDropped, float64(len(dropped)), map[string]string{"category": category.Slug})
	}
	return catalog.Project(category.AttributeFields, input)
}

// ListProducts builds a query from flat listing parameters and runs it
// against the product store.
func (s *CatalogService) ListProducts(ctx context.Context, query map[string]string) ([]models.Product, error) {
	q, err := s.filters.Build(ctx, query)
	if err != nil {
		return nil, err
	}

	products, err := s.products.FindMany(ctx, q.Predicate, q.Sort, q.Limit)
	if err != nil {
		return nil, storeError(err, apperrors.ErrProductNotFound)
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

// Facets summarizes the live values of a category's products. Store failures
// after the category is resolved degrade to an empty facet set.
func (s *CatalogService) Facets(ctx context.Context, categorySlug string) (models.FacetSet, error) {
	category, err := s.categoryBySlug(ctx, categorySlug)
	if err != nil {
		if errors.Is(err, apperrors.ErrCategoryNotFound) {
			return models.FacetSet{}, err
		}
		logger.Error(ctx, "Facet category lookup failed", err, zap.String("category", categorySlug))
		return catalog.ExtractFacets(nil, nil), nil
	}

	products, err := s.products.FindMany(ctx, catalog.Predicate{CategoryID: category.ID}, catalog.SortNewest, 0)
	if err != nil {
		logger.Error(ctx, "Facet product scan failed", err, zap.String("category", categorySlug))
		return catalog.ExtractFacets(nil, nil), nil
	}
	return catalog.ExtractFacets(category, products), nil
}
