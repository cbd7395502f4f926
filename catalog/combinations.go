package catalog

import (
	"sort"
	"strings"

	apperrors "catalog-service/common/errors"
	"catalog-service/models"
)

// Baseline holds the commerce fields copied onto every generated variant.
type Baseline struct {
	Price           float64
	MRP             *float64
	DiscountPercent *float64
	Stock           int
}

type axisOptions struct {
	slug   string
	values []string
}

// orderedOptions returns the axes sorted by Order with their trimmed candidate
// values. Axes without candidates are left out.
func orderedOptions(axes []models.AxisDef, optionsBySlug map[string][]string) []axisOptions {
	sorted := make([]models.AxisDef, len(axes))
	copy(sorted, axes)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	out := make([]axisOptions, 0, len(sorted))
	for _, a := range sorted {
		var values []string
		for _, v := range optionsBySlug[a.Slug] {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
		if len(values) > 0 {
			out = append(out, axisOptions{slug: a.Slug, values: values})
		}
	}
	return out
}

// CountCombinations returns the number of variants GenerateCombinations would
// produce. limit bounds the computation; it returns limit+1 as soon as the
// count exceeds a positive limit.
func CountCombinations(axes []models.AxisDef, optionsBySlug map[string][]string, limit int) int {
	total := 1
	for _, a := range orderedOptions(axes, optionsBySlug) {
		total *= len(a.values)
		if limit > 0 && total > limit {
			return limit + 1
		}
	}
	return total
}

// GenerateCombinations builds the cartesian product of the candidate values of
// each axis, ordered by axis Order with the last axis varying fastest. Every
// variant carries the same baseline and no SKU. A positive limit caps the
// number of variants.
func GenerateCombinations(axes []models.AxisDef, optionsBySlug map[string][]string, base Baseline, limit int) ([]models.Variant, error) {
	options := orderedOptions(axes, optionsBySlug)

	if n := CountCombinations(axes, optionsBySlug, limit); limit > 0 && n > limit {
		return nil, apperrors.Newf(apperrors.ErrTooManyCombinations, "combinations exceed the limit of %d", limit)
	}

	var variants []models.Variant
	var walk func(depth int, current models.FieldMap)
	walk = func(depth int, current models.FieldMap) {
		if depth == len(options) {
			variants = append(variants, models.Variant{
				FieldValues:     current.Clone(),
				Price:           base.Price,
				MRP:             copyFloat(base.MRP),
				DiscountPercent: copyFloat(base.DiscountPercent),
				Stock:           base.Stock,
				Images:          []string{},
			})
			return
		}
		axis := options[depth]
		for _, value := range axis.values {
			next := current.Clone()
			next.Set(axis.slug, models.Text(value))
			walk(depth+1, next)
		}
	}
	walk(0, models.FieldMap{})
	return variants, nil
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
