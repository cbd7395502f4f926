package catalog

import (
	"sort"
	"strings"

	"catalog-service/models"
)

// LocationKind identifies where a filterable value is stored on a product.
type LocationKind int

const (
	// LocationAttribute is the product-level attribute map.
	LocationAttribute LocationKind = iota
	// LocationVariant is the field map of any of the product's variants.
	LocationVariant
)

// ValueLocation is one place a value for Key may live.
type ValueLocation struct {
	Kind LocationKind
	Key  string
}

// Path returns the document path of the location.
func (l ValueLocation) Path() string {
	if l.Kind == LocationVariant {
		return "variants.fieldValues." + l.Key
	}
	return "attributeValues." + l.Key
}

// ValueLocations yields every location a filter on key must search.
func ValueLocations(key string) []ValueLocation {
	return []ValueLocation{
		{Kind: LocationAttribute, Key: key},
		{Kind: LocationVariant, Key: key},
	}
}

// Condition holds when the value stored at Location equals one of Values.
type Condition struct {
	Location ValueLocation
	Values   []models.FieldValue
}

// Clause groups the conditions contributed by a single filter key.
type Clause struct {
	Key        string
	Conditions []Condition
}

// Mode decides how clauses of different keys combine.
type Mode string

const (
	// ModeAny puts every condition of every key in one disjunction.
	ModeAny Mode = "any"
	// ModeAll requires every key to match at one of its locations.
	ModeAll Mode = "all"
)

// ParseMode returns ModeAll for "all" and ModeAny otherwise.
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), string(ModeAll)) {
		return ModeAll
	}
	return ModeAny
}

// PriceFilter is an inclusive range on base price; either bound may be open.
type PriceFilter struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// Predicate is the structured form of a listing query.
type Predicate struct {
	CategoryID string
	Price      *PriceFilter
	Mode       Mode
	Clauses    []Clause
}

// Conditions flattens the conditions of all clauses in clause order.
func (p *Predicate) Conditions() []Condition {
	var out []Condition
	for _, c := range p.Clauses {
		out = append(out, c.Conditions...)
	}
	return out
}

// Match evaluates the predicate against a product in memory.
func (p *Predicate) Match(product *models.Product) bool {
	if p == nil {
		return true
	}
	if p.CategoryID != "" && product.CategoryID != p.CategoryID {
		return false
	}
	if p.Price != nil {
		if p.Price.Min != nil && product.Price < *p.Price.Min {
			return false
		}
		if p.Price.Max != nil && product.Price > *p.Price.Max {
			return false
		}
	}
	if len(p.Clauses) == 0 {
		return true
	}

	if p.Mode == ModeAll {
		for _, clause := range p.Clauses {
			if !anyCondition(clause.Conditions, product) {
				return false
			}
		}
		return true
	}
	return anyCondition(p.Conditions(), product)
}

func anyCondition(conds []Condition, product *models.Product) bool {
	for _, c := range conds {
		if c.matches(product) {
			return true
		}
	}
	return false
}

func (c Condition) matches(product *models.Product) bool {
	switch c.Location.Kind {
	case LocationAttribute:
		v, ok := product.AttributeValues[c.Location.Key]
		return ok && valueIn(v, c.Values)
	case LocationVariant:
		for _, variant := range product.Variants {
			if v, ok := variant.FieldValues.Get(c.Location.Key); ok && valueIn(v, c.Values) {
				return true
			}
		}
	}
	return false
}

// valueIn reports whether any scalar of stored equals any candidate. List
// values match on any element, as an array field does in the document store.
func valueIn(stored models.FieldValue, candidates []models.FieldValue) bool {
	for _, s := range stored.Scalars() {
		for _, c := range candidates {
			if s.Equal(c) {
				return true
			}
		}
	}
	return false
}

// Sort is the listing order.
type Sort string

const (
	SortPriceLow  Sort = "price-low"
	SortPriceHigh Sort = "price-high"
	SortNewest    Sort = "newest"
	SortOldest    Sort = "oldest"
	SortNameAsc   Sort = "name-asc"
	SortNameDesc  Sort = "name-desc"
)

// ParseSort maps a query value to a Sort. Unknown values sort newest first.
func ParseSort(s string) Sort {
	switch Sort(strings.TrimSpace(s)) {
	case SortPriceLow:
		return SortPriceLow
	case SortPriceHigh:
		return SortPriceHigh
	case SortOldest:
		return SortOldest
	case SortNameAsc:
		return SortNameAsc
	case SortNameDesc:
		return SortNameDesc
	default:
		return SortNewest
	}
}

// SortProducts orders products in place.
func SortProducts(products []models.Product, s Sort) {
	var less func(a, b *models.Product) bool
	switch s {
	case SortPriceLow:
		less = func(a, b *models.Product) bool { return a.Price < b.Price }
	case SortPriceHigh:
		less = func(a, b *models.Product) bool { return a.Price > b.Price }
	case SortOldest:
		less = func(a, b *models.Product) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case SortNameAsc:
		less = func(a, b *models.Product) bool { return a.Name < b.Name }
	case SortNameDesc:
		less = func(a, b *models.Product) bool { return a.Name > b.Name }
	default:
		less = func(a, b *models.Product) bool { return a.CreatedAt.After(b.CreatedAt) }
	}
	sort.SliceStable(products, func(i, j int) bool { return less(&products[i], &products[j]) })
}

// Query is a predicate plus the order and cap to apply. Limit 0 means no cap.
type Query struct {
	Predicate Predicate
	Sort      Sort
	Limit     int
}

// Apply filters, sorts and caps products in memory.
func (q *Query) Apply(products []models.Product) []models.Product {
	out := make([]models.Product, 0, len(products))
	for i := range products {
		if q.Predicate.Match(&products[i]) {
			out = append(out, products[i])
		}
	}
	SortProducts(out, q.Sort)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}
