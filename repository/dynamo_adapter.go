package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"catalog-service/catalog"
	"catalog-service/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAdapter is a DynamoDB-backed ProductRepo. Products live in a table
// keyed by `id`. DynamoDB has no secondary unique constraints, so slug and SKU
// uniqueness are checked by scanning before each write.
type DynamoAdapter struct {
	client DynamoAPI
	table  string
}

func NewDynamoAdapter(client DynamoAPI, table string) *DynamoAdapter {
	return &DynamoAdapter{client: client, table: table}
}

type ddbProduct struct {
	ID              string                       `dynamodbav:"id"`
	Name            string                       `dynamodbav:"name"`
	Slug            string                       `dynamodbav:"slug"`
	Description     string                       `dynamodbav:"description,omitempty"`
	CategoryID      string                       `dynamodbav:"category_id"`
	Price           float64                      `dynamodbav:"price"`
	MRP             *float64                     `dynamodbav:"mrp,omitempty"`
	DiscountPercent *float64                     `dynamodbav:"discount_percent,omitempty"`
	Stock           int                          `dynamodbav:"stock"`
	Images          []string                     `dynamodbav:"images,omitempty"`
	AttributeValues map[string]models.FieldValue `dynamodbav:"attribute_values,omitempty"`
	HasVariants     bool                         `dynamodbav:"has_variants"`
	VariantOptions  map[string][]string          `dynamodbav:"variant_options,omitempty"`
	Variants        []models.Variant             `dynamodbav:"variants,omitempty"`
	CreatedAt       string                       `dynamodbav:"created_at"`
	UpdatedAt       string                       `dynamodbav:"updated_at"`
}

func toDDBProduct(p *models.Product) ddbProduct {
	return ddbProduct{
		ID:              p.ID,
		Name:            p.Name,
		Slug:            p.Slug,
		Description:     p.Description,
		CategoryID:      p.CategoryID,
		Price:           p.Price,
		MRP:             p.MRP,
		DiscountPercent: p.DiscountPercent,
		Stock:           p.Stock,
		Images:          p.Images,
		AttributeValues: p.AttributeValues,
		HasVariants:     p.HasVariants,
		VariantOptions:  p.VariantOptions,
		Variants:        p.Variants,
		CreatedAt:       p.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:       p.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (dp *ddbProduct) toModel() models.Product {
	p := models.Product{
		ID:              dp.ID,
		Name:            dp.Name,
		Slug:            dp.Slug,
		Description:     dp.Description,
		CategoryID:      dp.CategoryID,
		Price:           dp.Price,
		MRP:             dp.MRP,
		DiscountPercent: dp.DiscountPercent,
		Stock:           dp.Stock,
		Images:          dp.Images,
		AttributeValues: dp.AttributeValues,
		HasVariants:     dp.HasVariants,
		VariantOptions:  dp.VariantOptions,
		Variants:        dp.Variants,
	}
	if t, err := time.Parse(time.RFC3339Nano, dp.CreatedAt); err == nil {
		p.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, dp.UpdatedAt); err == nil {
		p.UpdatedAt = t
	}
	p.Normalize()
	return p
}

func (d *DynamoAdapter) EnsureIndexes(ctx context.Context) error {
	// Dynamo table creation is handled by infrastructure init or IaC.
	return nil
}

func (d *DynamoAdapter) scanProducts(ctx context.Context) ([]models.Product, error) {
	items, err := scanAll(ctx, d.client, d.table)
	if err != nil {
		return nil, err
	}
	products := make([]models.Product, 0, len(items))
	for _, it := range items {
		var dp ddbProduct
		if err := attributevalue.UnmarshalMap(it, &dp); err != nil {
			return nil, fmt.Errorf("unmarshal item: %w", err)
		}
		products = append(products, dp.toModel())
	}
	return products, nil
}

// checkUnique rejects a slug or variant SKU already used by another product.
func (d *DynamoAdapter) checkUnique(ctx context.Context, product *models.Product) error {
	existing, err := d.scanProducts(ctx)
	if err != nil {
		return err
	}
	skus := make(map[string]bool, len(product.Variants))
	for _, v := range product.Variants {
		if v.SKU != "" {
			skus[v.SKU] = true
		}
	}
	for _, other := range existing {
		if other.ID == product.ID {
			continue
		}
		if other.Slug == product.Slug {
			return fmt.Errorf("product slug %q: %w", product.Slug, ErrDuplicateSlug)
		}
		for _, v := range other.Variants {
			if skus[v.SKU] {
				return fmt.Errorf("variant sku %q: %w", v.SKU, ErrDuplicateSKU)
			}
		}
	}
	return nil
}

func (d *DynamoAdapter) put(ctx context.Context, product *models.Product, condition string) error {
	item, err := attributevalue.MarshalMap(toDDBProduct(product))
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}
	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           &d.table,
		Item:                item,
		ConditionExpression: aws.String(condition),
	})
	return err
}

func (d *DynamoAdapter) Create(ctx context.Context, product *models.Product) error {
	if err := d.checkUnique(ctx, product); err != nil {
		return err
	}
	err := d.put(ctx, product, "attribute_not_exists(id)")
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("product id %s: %w", product.ID, ErrDuplicateSlug)
	}
	if err != nil {
		return fmt.Errorf("dynamodb PutItem failed: %w", err)
	}
	return nil
}

func (d *DynamoAdapter) Update(ctx context.Context, product *models.Product) error {
	if err := d.checkUnique(ctx, product); err != nil {
		return err
	}
	err := d.put(ctx, product, "attribute_exists(id)")
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("product %s: %w", product.ID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("dynamodb PutItem failed: %w", err)
	}
	return nil
}

func (d *DynamoAdapter) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	products, err := d.scanProducts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].Slug == slug {
			return &products[i], nil
		}
	}
	return nil, fmt.Errorf("product %q: %w", slug, ErrNotFound)
}

// FindMany scans the table and evaluates the predicate in memory.
func (d *DynamoAdapter) FindMany(ctx context.Context, predicate catalog.Predicate, sort catalog.Sort, limit int) ([]models.Product, error) {
	products, err := d.scanProducts(ctx)
	if err != nil {
		return nil, err
	}
	q := catalog.Query{Predicate: predicate, Sort: sort, Limit: limit}
	return q.Apply(products), nil
}

func (d *DynamoAdapter) Delete(ctx context.Context, id string) error {
	key, err := attributevalue.MarshalMap(map[string]string{"id": id})
	if err != nil {
		return fmt.Errorf("marshal key: %w", err)
	}
	_, err = d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           &d.table,
		Key:                 key,
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("delete item failed: %w", err)
	}
	return nil
}

func (d *DynamoAdapter) SlugsExist(ctx context.Context, slugs []string) ([]string, error) {
	if len(slugs) == 0 {
		return []string{}, nil
	}
	wanted := make(map[string]bool, len(slugs))
	for _, s := range slugs {
		wanted[s] = true
	}
	products, err := d.scanProducts(ctx)
	if err != nil {
		return nil, err
	}
	taken := []string{}
	for _, p := range products {
		if wanted[p.Slug] {
			taken = append(taken, p.Slug)
		}
	}
	return taken, nil
}
