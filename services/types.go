package services

import (
	"catalog-service/catalog"
	"catalog-service/models"
)

// CatalogConfig holds the catalog behaviour switches read from the environment.
type CatalogConfig struct {
	// FilterMode decides how distinct listing filter keys combine.
	FilterMode catalog.Mode
	// MaxCombinations caps bulk variant generation; 0 disables the cap.
	MaxCombinations int
	// StrictVariantAxes rejects single variants missing a required axis.
	StrictVariantAxes bool
}

// DefaultMaxCombinations is used when no ceiling is configured.
const DefaultMaxCombinations = 1000

// CategoryCreateRequest is the request payload for creating a category
type CategoryCreateRequest struct {
	Name            string            `json:"name" validate:"required,max=120"`
	Slug            string            `json:"slug" validate:"omitempty,max=120"`
	Description     string            `json:"description"`
	Image           string            `json:"image"`
	IsActive        *bool             `json:"isActive"`
	AttributeFields []models.FieldDef `json:"attributeFields" validate:"dive"`
	VariationAxes   []models.AxisDef  `json:"variationAxes" validate:"dive"`
}

// ProductCreateRequest is the request payload for creating a product. The
// category may be given by id or by slug.
type ProductCreateRequest struct {
	Name         string `json:"name" validate:"required,max=200"`
	Slug         string `json:"slug" validate:"omitempty,max=200"`
	Description  string `json:"description"`
	CategoryID   string `json:"categoryId"`
	CategorySlug string `json:"categorySlug"`
	catalog.CommerceInput
	Images          []string                     `json:"images"`
	AttributeValues map[string]models.FieldValue `json:"attributeValues"`
	HasVariants     bool                         `json:"hasVariants"`
	VariantOptions  map[string][]string          `json:"variantOptions"`
	Variants        []VariantRequest             `json:"variants" validate:"dive"`
}

// ProductUpdateRequest carries a partial product update. Nil fields are left
// unchanged.
type ProductUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Slug        *string `json:"slug" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description"`
	catalog.CommerceInput
	Images          *[]string                    `json:"images"`
	AttributeValues map[string]models.FieldValue `json:"attributeValues"`
	HasVariants     *bool                        `json:"hasVariants"`
}

// VariantRequest describes one hand-authored variant. Commerce fields that are
// omitted inherit the product's values.
type VariantRequest struct {
	FieldValues models.FieldMap `json:"fieldValues"`
	catalog.CommerceInput
	Images []string `json:"images"`
}

// VariantUpdateRequest changes a variant's commerce fields and images in place.
type VariantUpdateRequest struct {
	catalog.CommerceInput
	Images *[]string `json:"images"`
}

// GenerateVariantsRequest drives bulk variant generation. Omitted commerce
// fields fall back to the product's base values.
type GenerateVariantsRequest struct {
	OptionsBySlug map[string][]string `json:"optionsBySlug" validate:"required"`
	catalog.CommerceInput
}

// PresignedUpload is the result of an image upload presign.
type PresignedUpload struct {
	UploadURL string `json:"upload_url"`
	Method    string `json:"method"`
	Key       string `json:"key"`
	PublicURL string `json:"public_url"`
	ExpiresIn int64  `json:"expires_in"`
}
