package repository

import (
	"context"
	"errors"
	"testing"

	"catalog-service/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func buildPredicate(t *testing.T, mode catalog.Mode, query map[string]string) catalog.Predicate {
	t.Helper()
	q, err := catalog.NewFilterBuilder(nil, mode).Build(context.Background(), query)
	require.NoError(t, err)
	return q.Predicate
}

func TestPredicateToBSON_AnyModeSingleDisjunction(t *testing.T) {
	p := buildPredicate(t, catalog.ModeAny, map[string]string{
		"categoryId": "cat-1",
		"material":   `["Oak"]`,
		"style":      `["Scandinavian","Modern"]`,
		"priceRange": `{"min":10,"max":99.5}`,
	})

	filter := PredicateToBSON(p)
	assert.Equal(t, "cat-1", filter["categoryId"])
	assert.Equal(t, bson.M{"$gte": 10.0, "$lte": 99.5}, filter["price"])
	assert.NotContains(t, filter, "$and")

	expected := bson.A{
		bson.M{"attributeValues.material": bson.M{"$in": bson.A{"Oak"}}},
		bson.M{"variants.fieldValues.material": bson.M{"$in": bson.A{"Oak"}}},
		bson.M{"attributeValues.style": bson.M{"$in": bson.A{"Scandinavian", "Modern"}}},
		bson.M{"variants.fieldValues.style": bson.M{"$in": bson.A{"Scandinavian", "Modern"}}},
	}
	assert.Equal(t, expected, filter["$or"])
}

func TestPredicateToBSON_AllModePerKeyConjunction(t *testing.T) {
	p := buildPredicate(t, catalog.ModeAll, map[string]string{
		"material": `["Oak"]`,
		"seats":    `[4]`,
	})

	filter := PredicateToBSON(p)
	assert.NotContains(t, filter, "$or")

	expected := bson.A{
		bson.M{"$or": bson.A{
			bson.M{"attributeValues.material": bson.M{"$in": bson.A{"Oak"}}},
			bson.M{"variants.fieldValues.material": bson.M{"$in": bson.A{"Oak"}}},
		}},
		bson.M{"$or": bson.A{
			bson.M{"attributeValues.seats": bson.M{"$in": bson.A{4.0}}},
			bson.M{"variants.fieldValues.seats": bson.M{"$in": bson.A{4.0}}},
		}},
	}
	assert.Equal(t, expected, filter["$and"])
}

func TestPredicateToBSON_Empty(t *testing.T) {
	assert.Equal(t, bson.M{}, PredicateToBSON(catalog.Predicate{}))
}

func TestSortToBSON(t *testing.T) {
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}, SortToBSON(catalog.ParseSort("bogus")))
	assert.Equal(t, bson.D{{Key: "price", Value: 1}, {Key: "_id", Value: 1}}, SortToBSON(catalog.SortPriceLow))
	assert.Equal(t, bson.D{{Key: "name", Value: -1}, {Key: "_id", Value: 1}}, SortToBSON(catalog.SortNameDesc))
}

func TestClassifyWriteError(t *testing.T) {
	dupSKU := mongo.WriteException{WriteErrors: []mongo.WriteError{{
		Code:    11000,
		Message: "E11000 duplicate key error collection: catalog.products index: variants_sku_unique dup key: { variants.sku: \"CLA-2-\" }",
	}}}
	dupSlug := mongo.WriteException{WriteErrors: []mongo.WriteError{{
		Code:    11000,
		Message: "E11000 duplicate key error collection: catalog.products index: slug_unique dup key: { slug: \"classic\" }",
	}}}

	assert.True(t, errors.Is(classifyWriteError(dupSKU), ErrDuplicateSKU))
	assert.True(t, errors.Is(classifyWriteError(dupSlug), ErrDuplicateSlug))

	other := classifyWriteError(errors.New("socket closed"))
	assert.False(t, errors.Is(other, ErrDuplicateSKU))
	assert.False(t, errors.Is(other, ErrDuplicateSlug))
}
