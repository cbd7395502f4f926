package models

import "time"

// FieldType is the declared type of an attribute field or variation axis.
type FieldType string

const (
	FieldText        FieldType = "text"
	FieldNumber      FieldType = "number"
	FieldDropdown    FieldType = "dropdown"
	FieldMultiSelect FieldType = "multi-select"
	FieldBoolean     FieldType = "boolean"
	FieldImage       FieldType = "image"
	FieldRichText    FieldType = "rich-text"
)

// FieldDef declares a product-level attribute for a category.
type FieldDef struct {
	Name             string    `json:"name" bson:"name" dynamodbav:"name" validate:"required,max=120"`
	Slug             string    `json:"slug" bson:"slug" dynamodbav:"slug" validate:"omitempty,max=120"`
	Type             FieldType `json:"type" bson:"type" dynamodbav:"type" validate:"required,oneof=text number dropdown multi-select boolean image rich-text"`
	Options          []string  `json:"options,omitempty" bson:"options,omitempty" dynamodbav:"options,omitempty"`
	Required         bool      `json:"required" bson:"required" dynamodbav:"required"`
	VisibleOnProduct bool      `json:"visibleOnProduct" bson:"visibleOnProduct" dynamodbav:"visibleOnProduct"`
}

// AxisDef declares a field that distinguishes the variants of a product.
type AxisDef struct {
	Name     string    `json:"name" bson:"name" dynamodbav:"name" validate:"required,max=120"`
	Slug     string    `json:"slug" bson:"slug" dynamodbav:"slug" validate:"omitempty,max=120"`
	Type     FieldType `json:"type" bson:"type" dynamodbav:"type" validate:"required,oneof=text number dropdown multi-select"`
	Options  []string  `json:"options,omitempty" bson:"options,omitempty" dynamodbav:"options,omitempty"`
	Unit     string    `json:"unit,omitempty" bson:"unit,omitempty" dynamodbav:"unit,omitempty"`
	Order    int       `json:"order" bson:"order" dynamodbav:"order"`
	Required bool      `json:"required" bson:"required" dynamodbav:"required"`
}

type Category struct {
	ID              string     `json:"id" bson:"_id"`
	Name            string     `json:"name" bson:"name"`
	Slug            string     `json:"slug" bson:"slug"`
	Description     string     `json:"description,omitempty" bson:"description,omitempty"`
	Image           string     `json:"image,omitempty" bson:"image,omitempty"`
	IsActive        bool       `json:"isActive" bson:"isActive"`
	AttributeFields []FieldDef `json:"attributeFields" bson:"attributeFields"`
	VariationAxes   []AxisDef  `json:"variationAxes" bson:"variationAxes"`
	CreatedAt       time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// AttributeField returns the declared attribute field with the given slug.
func (c *Category) AttributeField(slug string) (FieldDef, bool) {
	for _, f := range c.AttributeFields {
		if f.Slug == slug {
			return f, true
		}
	}
	return FieldDef{}, false
}
