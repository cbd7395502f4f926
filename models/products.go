package models

import "time"

type Product struct {
	ID              string                `json:"id" bson:"_id"`
	Name            string                `json:"name" bson:"name"`
	Slug            string                `json:"slug" bson:"slug"`
	Description     string                `json:"description,omitempty" bson:"description,omitempty"`
	CategoryID      string                `json:"categoryId" bson:"categoryId"`
	Price           float64               `json:"price" bson:"price"`
	MRP             *float64              `json:"mrp,omitempty" bson:"mrp,omitempty"`
	DiscountPercent *float64              `json:"discountPercent,omitempty" bson:"discountPercent,omitempty"`
	Stock           int                   `json:"stock" bson:"stock"`
	Images          []string              `json:"images" bson:"images"`
	AttributeValues map[string]FieldValue `json:"attributeValues" bson:"attributeValues"`
	HasVariants     bool                  `json:"hasVariants" bson:"hasVariants"`
	VariantOptions  map[string][]string   `json:"variantOptions,omitempty" bson:"variantOptions,omitempty"`
	Variants        []Variant             `json:"variants" bson:"variants"`
	CreatedAt       time.Time             `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt" bson:"updatedAt"`
}

// Variant is one axis-value combination of a product. It has no identity of
// its own beyond its SKU.
type Variant struct {
	FieldValues     FieldMap `json:"fieldValues" bson:"fieldValues" dynamodbav:"fieldValues"`
	Price           float64  `json:"price" bson:"price" dynamodbav:"price"`
	MRP             *float64 `json:"mrp,omitempty" bson:"mrp,omitempty" dynamodbav:"mrp,omitempty"`
	DiscountPercent *float64 `json:"discountPercent,omitempty" bson:"discountPercent,omitempty" dynamodbav:"discountPercent,omitempty"`
	Stock           int      `json:"stock" bson:"stock" dynamodbav:"stock"`
	SKU             string   `json:"sku" bson:"sku,omitempty" dynamodbav:"sku"`
	Images          []string `json:"images,omitempty" bson:"images,omitempty" dynamodbav:"images,omitempty"`
}

// VariantIndex returns the position of the variant with the given SKU, or -1.
func (p *Product) VariantIndex(sku string) int {
	for i := range p.Variants {
		if p.Variants[i].SKU == sku {
			return i
		}
	}
	return -1
}

// Normalize enforces the write-time invariants: a product without variants
// carries an empty variant list, and nil collections are stored empty.
func (p *Product) Normalize() {
	if !p.HasVariants {
		p.Variants = []Variant{}
	}
	if p.Variants == nil {
		p.Variants = []Variant{}
	}
	if p.AttributeValues == nil {
		p.AttributeValues = map[string]FieldValue{}
	}
	if p.Images == nil {
		p.Images = []string{}
	}
}
