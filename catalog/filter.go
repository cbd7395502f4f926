package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	apperrors "catalog-service/common/errors"
	"catalog-service/common/logger"
	"catalog-service/models"

	"go.uber.org/zap"
)

// Structural query keys. Every other key is an attribute-or-axis filter.
const (
	KeyCategorySlug = "categorySlug"
	KeyCategoryID   = "categoryId"
	KeyPriceRange   = "priceRange"
	KeySort         = "sort"
	KeyLimit        = "limit"
)

var structuralKeys = map[string]bool{
	KeyCategorySlug: true,
	KeyCategoryID:   true,
	KeyPriceRange:   true,
	KeySort:         true,
	KeyLimit:        true,
}

// CategoryResolver looks a category up by slug. A missing category is reported
// as apperrors.ErrCategoryNotFound.
type CategoryResolver interface {
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
}

// CategoryResolverFunc adapts a function to CategoryResolver.
type CategoryResolverFunc func(ctx context.Context, slug string) (*models.Category, error)

func (f CategoryResolverFunc) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return f(ctx, slug)
}

// FilterBuilder turns flat listing query parameters into a Query.
type FilterBuilder struct {
	resolver CategoryResolver
	mode     Mode
}

func NewFilterBuilder(resolver CategoryResolver, mode Mode) *FilterBuilder {
	if mode != ModeAll {
		mode = ModeAny
	}
	return &FilterBuilder{resolver: resolver, mode: mode}
}

// Build parses query. Malformed filter values are logged and skipped; the only
// error is a category slug that does not resolve.
func (b *FilterBuilder) Build(ctx context.Context, query map[string]string) (*Query, error) {
	q := &Query{
		Predicate: Predicate{Mode: b.mode},
		Sort:      ParseSort(query[KeySort]),
		Limit:     parseLimit(query[KeyLimit]),
	}

	if id := strings.TrimSpace(query[KeyCategoryID]); id != "" {
		q.Predicate.CategoryID = id
	} else if slug := strings.TrimSpace(query[KeyCategorySlug]); slug != "" {
		if b.resolver == nil {
			return nil, apperrors.Newf(apperrors.ErrCategoryNotFound, "category %q", slug)
		}
		category, err := b.resolver.FindBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		q.Predicate.CategoryID = category.ID
	}

	if raw, ok := query[KeyPriceRange]; ok {
		price, err := parsePriceRange(raw)
		if err != nil {
			logger.Warn(ctx, "Dropping malformed price range", zap.String("value", raw), zap.Error(err))
		} else {
			q.Predicate.Price = price
		}
	}

	keys := make([]string, 0, len(query))
	for k := range query {
		if !structuralKeys[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		if key == "" || strings.Contains(key, ".") || strings.HasPrefix(key, "$") {
			logger.Warn(ctx, "Dropping filter with unusable key", zap.String("key", key))
			continue
		}
		values, err := parseCandidates(query[key])
		if err != nil {
			logger.Warn(ctx, "Dropping malformed filter value",
				zap.String("key", key),
				zap.String("value", query[key]),
				zap.Error(err),
			)
			continue
		}

		clause := Clause{Key: key}
		for _, loc := range ValueLocations(key) {
			clause.Conditions = append(clause.Conditions, Condition{Location: loc, Values: values})
		}
		q.Predicate.Clauses = append(q.Predicate.Clauses, clause)
	}

	return q, nil
}

func parseLimit(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

func parsePriceRange(raw string) (*PriceFilter, error) {
	var body map[string]interface{}
	if err := decodeJSON(raw, &body); err != nil {
		return nil, err
	}
	if body == nil {
		return nil, fmt.Errorf("price range must be an object")
	}
	lo, err := parseNumber("min", body["min"])
	if err != nil {
		return nil, err
	}
	hi, err := parseNumber("max", body["max"])
	if err != nil {
		return nil, err
	}
	if lo == nil && hi == nil {
		return nil, fmt.Errorf("price range has no bounds")
	}
	return &PriceFilter{Min: lo, Max: hi}, nil
}

// parseCandidates decodes a JSON array of scalar candidates. Nested arrays and
// objects inside it are ignored.
func parseCandidates(raw string) ([]models.FieldValue, error) {
	var items []interface{}
	if err := decodeJSON(raw, &items); err != nil {
		return nil, err
	}
	values := make([]models.FieldValue, 0, len(items))
	for _, item := range items {
		switch item.(type) {
		case nil, map[string]interface{}, []interface{}:
			continue
		}
		values = append(values, models.FieldValueOf(item))
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("no candidate values")
	}
	return values, nil
}

// decodeJSON decodes exactly one JSON value from raw, keeping numbers as
// json.Number. Anything after the value is an error.
func decodeJSON(raw string, v interface{}) error {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("unexpected data after JSON value")
	}
	return nil
}
