package catalog

import (
	"sort"
	"strings"

	"catalog-service/models"
)

// MaxImportantFilters caps the facets returned for a category.
const MaxImportantFilters = 4

// facetKeywords are matched against attribute field names and slugs, in
// priority order.
var facetKeywords = []string{"material", "style", "color"}

// DefaultPriceRange is reported when a category has no products.
var DefaultPriceRange = models.PriceRange{Min: 0, Max: 1000}

// ExtractFacets summarizes the live values of a category's products: the base
// price range plus up to MaxImportantFilters facets. Attribute fields whose
// name or slug mention material, style or color come first, in that priority
// and then declared order, followed by the variation axis with the lowest
// order.
func ExtractFacets(category *models.Category, products []models.Product) models.FacetSet {
	set := models.FacetSet{
		PriceRange:       priceRange(products),
		ImportantFilters: []models.Facet{},
	}
	if category == nil {
		return set
	}

	picked := make(map[string]bool)
	for _, keyword := range facetKeywords {
		for _, f := range category.AttributeFields {
			if picked[f.Slug] || !mentions(f, keyword) {
				continue
			}
			picked[f.Slug] = true
			set.ImportantFilters = append(set.ImportantFilters, models.Facet{
				Name:   f.Name,
				Slug:   f.Slug,
				Source: models.FacetAttribute,
				Values: attributeValues(products, f.Slug),
			})
		}
	}

	if axis, ok := lowestAxis(category.VariationAxes); ok {
		set.ImportantFilters = append(set.ImportantFilters, models.Facet{
			Name:   axis.Name,
			Slug:   axis.Slug,
			Source: models.FacetAxis,
			Unit:   axis.Unit,
			Values: variantValues(products, axis.Slug),
		})
	}

	if len(set.ImportantFilters) > MaxImportantFilters {
		set.ImportantFilters = set.ImportantFilters[:MaxImportantFilters]
	}
	return set
}

func mentions(f models.FieldDef, keyword string) bool {
	return strings.Contains(strings.ToLower(f.Name), keyword) ||
		strings.Contains(strings.ToLower(f.Slug), keyword)
}

func lowestAxis(axes []models.AxisDef) (models.AxisDef, bool) {
	if len(axes) == 0 {
		return models.AxisDef{}, false
	}
	best := axes[0]
	for _, a := range axes[1:] {
		if a.Order < best.Order {
			best = a
		}
	}
	return best, true
}

func priceRange(products []models.Product) models.PriceRange {
	if len(products) == 0 {
		return DefaultPriceRange
	}
	r := models.PriceRange{Min: products[0].Price, Max: products[0].Price}
	for _, p := range products[1:] {
		if p.Price < r.Min {
			r.Min = p.Price
		}
		if p.Price > r.Max {
			r.Max = p.Price
		}
	}
	return r
}

func attributeValues(products []models.Product, slug string) []string {
	seen := make(map[string]bool)
	for _, p := range products {
		if v, ok := p.AttributeValues[slug]; ok {
			collect(seen, v)
		}
	}
	return sortedKeys(seen)
}

func variantValues(products []models.Product, slug string) []string {
	seen := make(map[string]bool)
	for _, p := range products {
		for _, variant := range p.Variants {
			if v, ok := variant.FieldValues.Get(slug); ok {
				collect(seen, v)
			}
		}
	}
	return sortedKeys(seen)
}

func collect(seen map[string]bool, v models.FieldValue) {
	for _, s := range v.Scalars() {
		if str := s.String(); str != "" {
			seen[str] = true
		}
	}
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
