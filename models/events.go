package models

import "time"

// Product event types published after catalog writes.
const (
	EventProductCreated           = "product.created"
	EventProductUpdated           = "product.updated"
	EventProductDeleted           = "product.deleted"
	EventProductVariantsGenerated = "product.variants_generated"
)

// ProductEvent is the SNS payload describing a product change.
type ProductEvent struct {
	EventType    string    `json:"event_type"`
	ProductID    string    `json:"product_id"`
	Slug         string    `json:"slug"`
	CategoryID   string    `json:"category_id"`
	VariantCount int       `json:"variant_count"`
	SKUs         []string  `json:"skus,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}
