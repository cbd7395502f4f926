// Package catalog holds the category-driven schema engine: attribute
// projection, variant generation, SKUs, listing predicates and facets. Nothing
// in here performs I/O.
package catalog

import (
	"strings"
	"unicode"

	apperrors "catalog-service/common/errors"
	"catalog-service/models"
)

// Slugify lower-cases s and collapses every run of non-alphanumerics into a
// single dash.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

func cleanOptions(options []string) []string {
	if len(options) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(options))
	out := make([]string, 0, len(options))
	for _, o := range options {
		o = strings.TrimSpace(o)
		if o == "" || seen[o] {
			continue
		}
		seen[o] = true
		out = append(out, o)
	}
	return out
}

// NormalizeFieldDef derives a missing slug from the name and tidies options.
func NormalizeFieldDef(f models.FieldDef) models.FieldDef {
	f.Name = strings.TrimSpace(f.Name)
	if f.Slug == "" {
		f.Slug = Slugify(f.Name)
	} else {
		f.Slug = Slugify(f.Slug)
	}
	f.Options = cleanOptions(f.Options)
	return f
}

func NormalizeAxisDef(a models.AxisDef) models.AxisDef {
	a.Name = strings.TrimSpace(a.Name)
	if a.Slug == "" {
		a.Slug = Slugify(a.Name)
	} else {
		a.Slug = Slugify(a.Slug)
	}
	a.Options = cleanOptions(a.Options)
	a.Unit = strings.TrimSpace(a.Unit)
	return a
}

var attributeTypes = map[models.FieldType]bool{
	models.FieldText:        true,
	models.FieldNumber:      true,
	models.FieldDropdown:    true,
	models.FieldMultiSelect: true,
	models.FieldBoolean:     true,
	models.FieldImage:       true,
	models.FieldRichText:    true,
}

var axisTypes = map[models.FieldType]bool{
	models.FieldText:        true,
	models.FieldNumber:      true,
	models.FieldDropdown:    true,
	models.FieldMultiSelect: true,
}

// ValidateRegistry checks a category's field registry: every field needs a
// slug and a known type, and slugs are unique within each list.
func ValidateRegistry(c *models.Category) error {
	seen := make(map[string]bool, len(c.AttributeFields))
	for _, f := range c.AttributeFields {
		if f.Slug == "" {
			return apperrors.Newf(apperrors.ErrValidation, "attribute field %q has no slug", f.Name)
		}
		if !attributeTypes[f.Type] {
			return apperrors.Newf(apperrors.ErrValidation, "attribute field %q has unsupported type %q", f.Slug, f.Type)
		}
		if seen[f.Slug] {
			return apperrors.Newf(apperrors.ErrDuplicateFieldSlug, "attribute field %q declared twice", f.Slug)
		}
		seen[f.Slug] = true
	}

	seen = make(map[string]bool, len(c.VariationAxes))
	for _, a := range c.VariationAxes {
		if a.Slug == "" {
			return apperrors.Newf(apperrors.ErrValidation, "variation axis %q has no slug", a.Name)
		}
		if !axisTypes[a.Type] {
			return apperrors.Newf(apperrors.ErrValidation, "variation axis %q has unsupported type %q", a.Slug, a.Type)
		}
		if seen[a.Slug] {
			return apperrors.Newf(apperrors.ErrDuplicateFieldSlug, "variation axis %q declared twice", a.Slug)
		}
		seen[a.Slug] = true
	}
	return nil
}
