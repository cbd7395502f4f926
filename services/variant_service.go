package services

import (
	"context"
	"strings"

	"catalog-service/catalog"
	apperrors "catalog-service/common/errors"
	"catalog-service/common/logger"
	"catalog-service/models"
	awspkg "catalog-service/pkg/aws"

	"go.uber.org/zap"
)

// buildVariant turns a hand-authored variant into a stored one. Omitted
// commerce fields inherit the product's values.
func (s *ProductService) buildVariant(category *models.Category, product *models.Product, req VariantRequest) (models.Variant, error) {
	if s.cfg.StrictVariantAxes {
		if err := checkRequiredAxes(category, req.FieldValues); err != nil {
			return models.Variant{}, err
		}
	}

	patch, err := catalog.ParseCommercePatch(req.CommerceInput)
	if err != nil {
		return models.Variant{}, err
	}
	base := patch.Apply(baselineOf(product))
	if err := catalog.ValidateCommerce(base); err != nil {
		return models.Variant{}, err
	}

	images := req.Images
	if images == nil {
		images = []string{}
	}
	return models.Variant{
		FieldValues:     req.FieldValues.Clone(),
		Price:           base.Price,
		MRP:             base.MRP,
		DiscountPercent: base.DiscountPercent,
		Stock:           base.Stock,
		SKU:             catalog.GenerateSKU(product.Slug, req.FieldValues),
		Images:          images,
	}, nil
}

func checkRequiredAxes(category *models.Category, values models.FieldMap) error {
	var missing []string
	for _, axis := range category.VariationAxes {
		if !axis.Required {
			continue
		}
		v, ok := values.Get(axis.Slug)
		if !ok || v.IsNull() || strings.TrimSpace(v.String()) == "" {
			missing = append(missing, axis.Slug)
		}
	}
	if len(missing) > 0 {
		return apperrors.Newf(apperrors.ErrInvalidFieldValue, "missing required axes: %s", strings.Join(missing, ", "))
	}
	return nil
}

// AddVariant appends one hand-authored variant to the product.
func (s *ProductService) AddVariant(ctx context.Context, slug string, req VariantRequest) (*models.Product, error) {
	product, err := s.GetProduct(ctx, slug)
	if err != nil {
		return nil, err
	}

	var category *models.Category
	if s.cfg.StrictVariantAxes {
		if category, err = s.catalog.categoryByID(ctx, product.CategoryID); err != nil {
			return nil, err
		}
	}

	variant, err := s.buildVariant(category, product, req)
	if err != nil {
		return nil, err
	}
	if !product.HasVariants {
		product.HasVariants = true
		product.Variants = nil
	}
	if product.VariantIndex(variant.SKU) >= 0 {
		return nil, apperrors.Newf(apperrors.ErrDuplicateSKU, "sku %q already exists on %q", variant.SKU, product.Slug)
	}
	product.Variants = append(product.Variants, variant)

	if err := s.save(ctx, product); err != nil {
		return nil, err
	}
	logger.Info(ctx, "Variant added", zap.String("slug", product.Slug), zap.String("sku", variant.SKU))
	s.events.PublishProduct(ctx, models.EventProductUpdated, product)
	return product, nil
}

// UpdateVariant changes the commerce fields and images of the variant with
// the given SKU. Field values and the SKU itself are immutable.
func (s *ProductService) UpdateVariant(ctx context.Context, slug, sku string, req VariantUpdateRequest) (*models.Product, error) {
	product, err := s.GetProduct(ctx, slug)
	if err != nil {
		return nil, err
	}
	idx := product.VariantIndex(sku)
	if idx < 0 {
		return nil, apperrors.Newf(apperrors.ErrVariantNotFound, "sku %q on %q", sku, slug)
	}
	v := &product.Variants[idx]

	patch, err := catalog.ParseCommercePatch(req.CommerceInput)
	if err != nil {
		return nil, err
	}
	base := patch.Apply(catalog.Baseline{
		Price:           v.Price,
		MRP:             v.MRP,
		DiscountPercent: v.DiscountPercent,
		Stock:           v.Stock,
	})
	if err := catalog.ValidateCommerce(base); err != nil {
		return nil, err
	}
	v.Price = base.Price
	v.MRP = base.MRP
	v.DiscountPercent = base.DiscountPercent
	v.Stock = base.Stock
	if req.Images != nil {
		v.Images = *req.Images
	}

	if err := s.save(ctx, product); err != nil {
		return nil, err
	}
	s.events.PublishProduct(ctx, models.EventProductUpdated, product)
	return product, nil
}

// DeleteVariant removes the variant with the given SKU.
func (s *ProductService) DeleteVariant(ctx context.Context, slug, sku string) (*models.Product, error) {
	product, err := s.GetProduct(ctx, slug)
	if err != nil {
		return nil, err
	}
	idx := product.VariantIndex(sku)
	if idx < 0 {
		return nil, apperrors.Newf(apperrors.ErrVariantNotFound, "sku %q on %q", sku, slug)
	}
	product.Variants = append(product.Variants[:idx], product.Variants[idx+1:]...)

	if err := s.save(ctx, product); err != nil {
		return nil, err
	}
	logger.Info(ctx, "Variant deleted", zap.String("slug", slug), zap.String("sku", sku))
	s.events.PublishProduct(ctx, models.EventProductUpdated, product)
	return product, nil
}

// GenerateVariants replaces the product's variants with the cartesian product
// of the supplied axis options. Every generated variant shares one baseline.
func (s *ProductService) GenerateVariants(ctx context.Context, slug string, req GenerateVariantsRequest) (*models.Product, error) {
	product, err := s.GetProduct(ctx, slug)
	if err != nil {
		return nil, err
	}
	category, err := s.catalog.categoryByID(ctx, product.CategoryID)
	if err != nil {
		return nil, err
	}

	patch, err := catalog.ParseCommercePatch(req.CommerceInput)
	if err != nil {
		return nil, err
	}
	base := patch.Apply(baselineOf(product))
	if err := catalog.ValidateCommerce(base); err != nil {
		return nil, err
	}

	variants, err := catalog.GenerateCombinations(category.VariationAxes, req.OptionsBySlug, base, s.cfg.MaxCombinations)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(variants))
	for i := range variants {
		sku := catalog.GenerateSKU(product.Slug, variants[i].FieldValues)
		if seen[sku] {
			return nil, apperrors.Newf(apperrors.ErrDuplicateSKU, "generated sku %q collides within the batch", sku)
		}
		seen[sku] = true
		variants[i].SKU = sku
	}

	product.Variants = variants
	product.HasVariants = true
	product.VariantOptions = req.OptionsBySlug

	if err := s.save(ctx, product); err != nil {
		return nil, err
	}

	logger.Info(ctx, "Variants generated",
		zap.String("slug", product.Slug),
		zap.Int("count", len(variants)),
	)
	recordValue(s.metrics, awspkg.MetricVariantsGenerated, float64(len(variants)), map[string]string{"category": category.Slug})
	s.events.PublishProduct(ctx, models.EventProductVariantsGenerated, product)
	return product, nil
}
