package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"catalog-service/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoCategoryAdapter is a DynamoDB-backed CategoryRepo.
type DynamoCategoryAdapter struct {
	client DynamoAPI
	table  string
}

func NewDynamoCategoryAdapter(client DynamoAPI, table string) *DynamoCategoryAdapter {
	return &DynamoCategoryAdapter{client: client, table: table}
}

type ddbCategory struct {
	CategoryID      string            `dynamodbav:"id"`
	Name            string            `dynamodbav:"name"`
	Slug            string            `dynamodbav:"slug"`
	Description     string            `dynamodbav:"description,omitempty"`
	Image           string            `dynamodbav:"image,omitempty"`
	IsActive        bool              `dynamodbav:"is_active"`
	AttributeFields []models.FieldDef `dynamodbav:"attribute_fields"`
	VariationAxes   []models.AxisDef  `dynamodbav:"variation_axes"`
	CreatedAt       string            `dynamodbav:"created_at"`
	UpdatedAt       string            `dynamodbav:"updated_at"`
}

func (d *DynamoCategoryAdapter) toModel(dc *ddbCategory) *models.Category {
	cat := &models.Category{
		ID:              dc.CategoryID,
		Name:            dc.Name,
		Slug:            dc.Slug,
		Description:     dc.Description,
		Image:           dc.Image,
		IsActive:        dc.IsActive,
		AttributeFields: dc.AttributeFields,
		VariationAxes:   dc.VariationAxes,
	}
	if cat.AttributeFields == nil {
		cat.AttributeFields = []models.FieldDef{}
	}
	if cat.VariationAxes == nil {
		cat.VariationAxes = []models.AxisDef{}
	}
	if t, err := time.Parse(time.RFC3339Nano, dc.CreatedAt); err == nil {
		cat.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, dc.UpdatedAt); err == nil {
		cat.UpdatedAt = t
	}
	return cat
}

func (d *DynamoCategoryAdapter) toDDB(cat *models.Category) *ddbCategory {
	dc := &ddbCategory{
		CategoryID:      cat.ID,
		Name:            cat.Name,
		Slug:            cat.Slug,
		Description:     cat.Description,
		Image:           cat.Image,
		IsActive:        cat.IsActive,
		AttributeFields: cat.AttributeFields,
		VariationAxes:   cat.VariationAxes,
		CreatedAt:       cat.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:       cat.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if dc.AttributeFields == nil {
		dc.AttributeFields = []models.FieldDef{}
	}
	if dc.VariationAxes == nil {
		dc.VariationAxes = []models.AxisDef{}
	}
	return dc
}

func (d *DynamoCategoryAdapter) EnsureIndexes(ctx context.Context) error {
	return nil
}

func (d *DynamoCategoryAdapter) FindByID(ctx context.Context, id string) (*models.Category, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"id": id})
	if err != nil {
		return nil, fmt.Errorf("marshal key: %w", err)
	}
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{TableName: &d.table, Key: key})
	if err != nil {
		return nil, fmt.Errorf("dynamodb GetItem failed: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	var dc ddbCategory
	if err := attributevalue.UnmarshalMap(out.Item, &dc); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return d.toModel(&dc), nil
}

// FindBySlug scans the table (for production, use a GSI on slug).
func (d *DynamoCategoryAdapter) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	categories, err := d.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range categories {
		if categories[i].Slug == slug {
			return &categories[i], nil
		}
	}
	return nil, fmt.Errorf("category %q: %w", slug, ErrNotFound)
}

func (d *DynamoCategoryAdapter) List(ctx context.Context) ([]models.Category, error) {
	items, err := scanAll(ctx, d.client, d.table)
	if err != nil {
		return nil, err
	}
	categories := make([]models.Category, 0, len(items))
	for _, it := range items {
		var dc ddbCategory
		if err := attributevalue.UnmarshalMap(it, &dc); err != nil {
			return nil, fmt.Errorf("unmarshal item: %w", err)
		}
		categories = append(categories, *d.toModel(&dc))
	}
	sort.SliceStable(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

func (d *DynamoCategoryAdapter) Create(ctx context.Context, category *models.Category) error {
	if _, err := d.FindBySlug(ctx, category.Slug); err == nil {
		return fmt.Errorf("category slug %q: %w", category.Slug, ErrDuplicateSlug)
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	item, err := attributevalue.MarshalMap(d.toDDB(category))
	if err != nil {
		return fmt.Errorf("marshal category: %w", err)
	}
	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           &d.table,
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("category id %s: %w", category.ID, ErrDuplicateSlug)
	}
	if err != nil {
		return fmt.Errorf("dynamodb PutItem failed: %w", err)
	}
	return nil
}

func (d *DynamoCategoryAdapter) AppendAttributeField(ctx context.Context, categoryID string, field models.FieldDef) error {
	return d.modify(ctx, categoryID, func(c *models.Category) error {
		if _, ok := c.AttributeField(field.Slug); ok {
			return fmt.Errorf("attribute field %q: %w", field.Slug, ErrDuplicateFieldSlug)
		}
		c.AttributeFields = append(c.AttributeFields, field)
		return nil
	})
}

func (d *DynamoCategoryAdapter) AppendAxis(ctx context.Context, categoryID string, axis models.AxisDef) error {
	return d.modify(ctx, categoryID, func(c *models.Category) error {
		for _, a := range c.VariationAxes {
			if a.Slug == axis.Slug {
				return fmt.Errorf("variation axis %q: %w", axis.Slug, ErrDuplicateFieldSlug)
			}
		}
		c.VariationAxes = append(c.VariationAxes, axis)
		return nil
	})
}

// modify is a read-modify-write guarded by the previous updated_at, so a
// concurrent append makes the loser fail instead of overwriting.
func (d *DynamoCategoryAdapter) modify(ctx context.Context, categoryID string, change func(*models.Category) error) error {
	category, err := d.FindByID(ctx, categoryID)
	if err != nil {
		return err
	}
	prev := d.toDDB(category).UpdatedAt
	if err := change(category); err != nil {
		return err
	}
	category.UpdatedAt = time.Now().UTC()

	item, err := attributevalue.MarshalMap(d.toDDB(category))
	if err != nil {
		return fmt.Errorf("marshal category: %w", err)
	}
	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 &d.table,
		Item:                      item,
		ConditionExpression:       aws.String("updated_at = :prev"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":prev": &types.AttributeValueMemberS{Value: prev}},
	})
	if err != nil {
		return fmt.Errorf("update category %s: %w", categoryID, err)
	}
	return nil
}
