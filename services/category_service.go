package services

import (
	"context"
	"time"

	"catalog-service/catalog"
	apperrors "catalog-service/common/errors"
	"catalog-service/common/logger"
	"catalog-service/models"
	"catalog-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CategoryService struct {
	repo repository.CategoryRepo
}

func NewCategoryService(repo repository.CategoryRepo) *CategoryService {
	return &CategoryService{repo: repo}
}

// CreateCategory validates the field registry and stores a new category. The
// slug is derived from the name when omitted.
func (s *CategoryService) CreateCategory(ctx context.Context, req CategoryCreateRequest) (*models.Category, error) {
	slug := catalog.Slugify(req.Slug)
	if slug == "" {
		slug = catalog.Slugify(req.Name)
	}
	if slug == "" {
		return nil, apperrors.Newf(apperrors.ErrValidation, "category name %q yields an empty slug", req.Name)
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	now := time.Now().UTC()
	category := &models.Category{
		ID:              uuid.New().String(),
		Name:            req.Name,
		Slug:            slug,
		Description:     req.Description,
		Image:           req.Image,
		IsActive:        isActive,
		AttributeFields: make([]models.FieldDef, 0, len(req.AttributeFields)),
		VariationAxes:   make([]models.AxisDef, 0, len(req.VariationAxes)),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for _, f := range req.AttributeFields {
		category.AttributeFields = append(category.AttributeFields, catalog.NormalizeFieldDef(f))
	}
	for _, a := range req.VariationAxes {
		category.VariationAxes = append(category.VariationAxes, catalog.NormalizeAxisDef(a))
	}

	if err := catalog.ValidateRegistry(category); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, category); err != nil {
		return nil, storeError(err, apperrors.ErrCategoryNotFound)
	}

	logger.Info(ctx, "Category created",
		zap.String("slug", category.Slug),
		zap.Int("attribute_fields", len(category.AttributeFields)),
		zap.Int("variation_axes", len(category.VariationAxes)),
	)
	return category, nil
}

func (s *CategoryService) GetCategory(ctx context.Context, slug string) (*models.Category, error) {
	category, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, storeError(err, apperrors.ErrCategoryNotFound)
	}
	return category, nil
}

func (s *CategoryService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, storeError(err, apperrors.ErrCategoryNotFound)
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}

// AddAttributeField appends a field to the category's attribute registry and
// returns the updated category.
func (s *CategoryService) AddAttributeField(ctx context.Context, categorySlug string, field models.FieldDef) (*models.Category, error) {
	category, err := s.GetCategory(ctx, categorySlug)
	if err != nil {
		return nil, err
	}

	field = catalog.NormalizeFieldDef(field)
	candidate := *category
	candidate.AttributeFields = append(append([]models.FieldDef{}, category.AttributeFields...), field)
	if err := catalog.ValidateRegistry(&candidate); err != nil {
		return nil, err
	}

	if err := s.repo.AppendAttributeField(ctx, category.ID, field); err != nil {
		return nil, storeError(err, apperrors.ErrCategoryNotFound)
	}

	logger.Info(ctx, "Attribute field appended",
		zap.String("category", category.Slug),
		zap.String("field", field.Slug),
	)
	return s.reload(ctx, category.ID)
}

// AddVariationAxis appends an axis to the category's variation registry and
// returns the updated category.
func (s *CategoryService) AddVariationAxis(ctx context.Context, categorySlug string, axis models.AxisDef) (*models.Category, error) {
	category, err := s.GetCategory(ctx, categorySlug)
	if err != nil {
		return nil, err
	}

	axis = catalog.NormalizeAxisDef(axis)
	candidate := *category
	candidate.VariationAxes = append(append([]models.AxisDef{}, category.VariationAxes...), axis)
	if err := catalog.ValidateRegistry(&candidate); err != nil {
		return nil, err
	}

	if err := s.repo.AppendAxis(ctx, category.ID, axis); err != nil {
		return nil, storeError(err, apperrors.ErrCategoryNotFound)
	}

	logger.Info(ctx, "Variation axis appended",
		zap.String("category", category.Slug),
		zap.String("axis", axis.Slug),
		zap.Int("order", axis.Order),
	)
	return s.reload(ctx, category.ID)
}

func (s *CategoryService) reload(ctx context.Context, id string) (*models.Category, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, apperrors.ErrCategoryNotFound)
	}
	return category, nil
}
