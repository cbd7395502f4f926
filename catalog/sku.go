package catalog

import (
	"strings"

	"catalog-service/models"
)

// GenerateSKU derives a variant code from the product slug and the variant's
// field values. Values contribute in insertion order, so the same values set
// in a different order give a different SKU.
func GenerateSKU(productSlug string, fieldValues models.FieldMap) string {
	parts := make([]string, 0, fieldValues.Len()+1)
	parts = append(parts, strings.ToUpper(prefix(productSlug, 3)))
	for _, e := range fieldValues.Entries() {
		parts = append(parts, strings.ToUpper(prefix(e.Value.String(), 2)))
	}
	return strings.Join(parts, "-")
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}
