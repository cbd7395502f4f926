package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"catalog-service/catalog"
	"catalog-service/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- In-memory DynamoDB ---

type fakeDynamo struct {
	mu     sync.Mutex
	tables map[string]map[string]map[string]types.AttributeValue
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{tables: map[string]map[string]map[string]types.AttributeValue{}}
}

func (f *fakeDynamo) table(name string) map[string]map[string]types.AttributeValue {
	if f.tables[name] == nil {
		f.tables[name] = map[string]map[string]types.AttributeValue{}
	}
	return f.tables[name]
}

func itemID(item map[string]types.AttributeValue) string {
	if s, ok := item["id"].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func conditionFailed() error {
	return &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
}

func (f *fakeDynamo) check(existing map[string]types.AttributeValue, cond *string, values map[string]types.AttributeValue) error {
	if cond == nil {
		return nil
	}
	switch *cond {
	case "attribute_not_exists(id)":
		if existing != nil {
			return conditionFailed()
		}
	case "attribute_exists(id)":
		if existing == nil {
			return conditionFailed()
		}
	case "updated_at = :prev":
		cur, _ := existing["updated_at"].(*types.AttributeValueMemberS)
		prev, _ := values[":prev"].(*types.AttributeValueMemberS)
		if cur == nil || prev == nil || cur.Value != prev.Value {
			return conditionFailed()
		}
	}
	return nil
}

func (f *fakeDynamo) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := &dynamodb.ScanOutput{}
	for _, item := range f.table(*in.TableName) {
		out.Items = append(out.Items, item)
	}
	out.Count = int32(len(out.Items))
	return out, nil
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &dynamodb.GetItemOutput{Item: f.table(*in.TableName)[itemID(in.Key)]}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.table(*in.TableName)
	id := itemID(in.Item)
	if err := f.check(t[id], in.ConditionExpression, in.ExpressionAttributeValues); err != nil {
		return nil, err
	}
	t[id] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.table(*in.TableName)
	id := itemID(in.Key)
	if err := f.check(t[id], in.ConditionExpression, in.ExpressionAttributeValues); err != nil {
		return nil, err
	}
	delete(t, id)
	return &dynamodb.DeleteItemOutput{}, nil
}

// --- Helpers ---

func wardrobe(id, slug string, price float64, created time.Time) *models.Product {
	mrp := price + 100
	return &models.Product{
		ID:              id,
		Name:            slug,
		Slug:            slug,
		CategoryID:      "cat-wardrobes",
		Price:           price,
		MRP:             &mrp,
		Stock:           3,
		Images:          []string{"https://cdn.example.com/" + slug + ".jpg"},
		AttributeValues: map[string]models.FieldValue{"material": models.Text("Ply"), "shelves": models.Number(4)},
		HasVariants:     true,
		VariantOptions:  map[string][]string{"door-type": {"2-door", "3-door"}},
		Variants: []models.Variant{{
			FieldValues: models.NewFieldMap(
				models.FieldEntry{Key: "door-type", Value: models.Text("2-door")},
				models.FieldEntry{Key: "finish", Value: models.Text("matte")},
			),
			Price: price,
			Stock: 1,
			SKU:   "SKU-" + slug,
		}},
		CreatedAt: created,
		UpdatedAt: created,
	}
}

// --- Product adapter ---

func TestDynamoAdapter_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewDynamoAdapter(newFakeDynamo(), "products")
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, wardrobe("p1", "classic", 499, created)))

	got, err := repo.FindBySlug(ctx, "classic")
	require.NoError(t, err)
	assert.Equal(t, "cat-wardrobes", got.CategoryID)
	assert.Equal(t, 599.0, *got.MRP)
	assert.Equal(t, models.Number(4), got.AttributeValues["shelves"])
	assert.True(t, created.Equal(got.CreatedAt))
	require.Len(t, got.Variants, 1)
	assert.Equal(t, []string{"door-type", "finish"}, got.Variants[0].FieldValues.Keys())
	assert.Equal(t, "SKU-classic", got.Variants[0].SKU)

	_, err = repo.FindBySlug(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDynamoAdapter_Uniqueness(t *testing.T) {
	ctx := context.Background()
	repo := NewDynamoAdapter(newFakeDynamo(), "products")
	now := time.Now().UTC()

	require.NoError(t, repo.Create(ctx, wardrobe("p1", "classic", 499, now)))

	err := repo.Create(ctx, wardrobe("p2", "classic", 599, now))
	assert.True(t, errors.Is(err, ErrDuplicateSlug))

	clash := wardrobe("p3", "modern", 599, now)
	clash.Variants[0].SKU = "SKU-classic"
	err = repo.Create(ctx, clash)
	assert.True(t, errors.Is(err, ErrDuplicateSKU))

	// A product may be rewritten with its own slug and SKUs.
	again := wardrobe("p1", "classic", 450, now)
	require.NoError(t, repo.Update(ctx, again))

	err = repo.Update(ctx, wardrobe("ghost", "ghost", 1, now))
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDynamoAdapter_FindManyAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewDynamoAdapter(newFakeDynamo(), "products")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, wardrobe("p1", "alpha", 300, base)))
	require.NoError(t, repo.Create(ctx, wardrobe("p2", "bravo", 100, base.Add(time.Hour))))
	other := wardrobe("p3", "charlie", 200, base.Add(2*time.Hour))
	other.AttributeValues = map[string]models.FieldValue{"material": models.Text("MDF")}
	require.NoError(t, repo.Create(ctx, other))

	q, err := catalog.NewFilterBuilder(nil, catalog.ModeAny).Build(ctx, map[string]string{"material": `["Ply"]`})
	require.NoError(t, err)

	found, err := repo.FindMany(ctx, q.Predicate, catalog.SortPriceLow, 0)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "bravo", found[0].Slug)
	assert.Equal(t, "alpha", found[1].Slug)

	taken, err := repo.SlugsExist(ctx, []string{"alpha", "zulu"})
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha"}, taken)

	require.NoError(t, repo.Delete(ctx, "p1"))
	assert.True(t, errors.Is(repo.Delete(ctx, "p1"), ErrNotFound))
}

// --- Category adapter ---

func TestDynamoCategoryAdapter_Append(t *testing.T) {
	ctx := context.Background()
	repo := NewDynamoCategoryAdapter(newFakeDynamo(), "categories")
	now := time.Now().UTC()

	category := &models.Category{ID: "cat-wardrobes", Name: "Wardrobes", Slug: "wardrobes", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.Create(ctx, category))
	assert.True(t, errors.Is(repo.Create(ctx, &models.Category{ID: "other", Slug: "wardrobes"}), ErrDuplicateSlug))

	field := models.FieldDef{Name: "Material", Slug: "material", Type: models.FieldDropdown, Options: []string{"Ply", "MDF"}}
	require.NoError(t, repo.AppendAttributeField(ctx, "cat-wardrobes", field))
	assert.True(t, errors.Is(repo.AppendAttributeField(ctx, "cat-wardrobes", field), ErrDuplicateFieldSlug))

	axis := models.AxisDef{Name: "Door Type", Slug: "door-type", Type: models.FieldText, Order: 1}
	require.NoError(t, repo.AppendAxis(ctx, "cat-wardrobes", axis))
	assert.True(t, errors.Is(repo.AppendAxis(ctx, "missing", axis), ErrNotFound))

	got, err := repo.FindBySlug(ctx, "wardrobes")
	require.NoError(t, err)
	assert.Equal(t, []models.FieldDef{field}, got.AttributeFields)
	assert.Equal(t, []models.AxisDef{axis}, got.VariationAxes)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
