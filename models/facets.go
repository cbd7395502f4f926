package models

type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// FacetSource tells where a facet's values were read from.
type FacetSource string

const (
	FacetAttribute FacetSource = "attribute"
	FacetAxis      FacetSource = "axis"
)

type Facet struct {
	Name   string      `json:"name"`
	Slug   string      `json:"slug"`
	Source FacetSource `json:"source"`
	Unit   string      `json:"unit,omitempty"`
	Values []string    `json:"values"`
}

// FacetSet is derived from live product data on every read and never stored.
type FacetSet struct {
	PriceRange       PriceRange `json:"priceRange"`
	ImportantFilters []Facet    `json:"importantFilters"`
}
