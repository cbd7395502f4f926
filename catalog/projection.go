package catalog

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"catalog-service/models"
)

// Project keeps the entries of input whose keys are declared attribute-field
// slugs. Undeclared keys are dropped without error. Number and boolean fields
// submitted as strings are converted when they parse; everything else is kept
// as given.
func Project(fields []models.FieldDef, input map[string]models.FieldValue) map[string]models.FieldValue {
	declared := make(map[string]models.FieldType, len(fields))
	for _, f := range fields {
		declared[f.Slug] = f.Type
	}

	out := make(map[string]models.FieldValue, len(input))
	for key, value := range input {
		fieldType, ok := declared[key]
		if !ok {
			continue
		}
		out[key] = coerce(fieldType, value)
	}
	return out
}

// Undeclared lists the input keys that Project would drop, sorted.
func Undeclared(fields []models.FieldDef, input map[string]models.FieldValue) []string {
	declared := make(map[string]bool, len(fields))
	for _, f := range fields {
		declared[f.Slug] = true
	}
	var dropped []string
	for key := range input {
		if !declared[key] {
			dropped = append(dropped, key)
		}
	}
	sort.Strings(dropped)
	return dropped
}

func coerce(t models.FieldType, v models.FieldValue) models.FieldValue {
	if v.Kind != models.KindText {
		return v
	}
	s := strings.TrimSpace(v.Text)
	switch t {
	case models.FieldNumber:
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return models.Number(f)
		}
	case models.FieldBoolean:
		if b, err := strconv.ParseBool(s); err == nil {
			return models.Bool(b)
		}
	}
	return v
}
