package repository

import (
	"catalog-service/catalog"

	"go.mongodb.org/mongo-driver/bson"
)

// PredicateToBSON translates a listing predicate into a products filter. In
// any-mode every key's conditions share one top-level $or; in all-mode each key
// gets its own $or and the keys are joined by $and.
func PredicateToBSON(p catalog.Predicate) bson.M {
	filter := bson.M{}
	if p.CategoryID != "" {
		filter["categoryId"] = p.CategoryID
	}
	if p.Price != nil {
		price := bson.M{}
		if p.Price.Min != nil {
			price["$gte"] = *p.Price.Min
		}
		if p.Price.Max != nil {
			price["$lte"] = *p.Price.Max
		}
		if len(price) > 0 {
			filter["price"] = price
		}
	}
	if len(p.Clauses) == 0 {
		return filter
	}

	if p.Mode == catalog.ModeAll {
		and := bson.A{}
		for _, clause := range p.Clauses {
			and = append(and, bson.M{"$or": conditionsToBSON(clause.Conditions)})
		}
		filter["$and"] = and
		return filter
	}
	filter["$or"] = conditionsToBSON(p.Conditions())
	return filter
}

func conditionsToBSON(conds []catalog.Condition) bson.A {
	out := bson.A{}
	for _, c := range conds {
		values := bson.A{}
		for _, v := range c.Values {
			values = append(values, v.Interface())
		}
		out = append(out, bson.M{c.Location.Path(): bson.M{"$in": values}})
	}
	return out
}

// SortToBSON maps a listing order onto product document fields.
func SortToBSON(s catalog.Sort) bson.D {
	switch s {
	case catalog.SortPriceLow:
		return bson.D{{Key: "price", Value: 1}, {Key: "_id", Value: 1}}
	case catalog.SortPriceHigh:
		return bson.D{{Key: "price", Value: -1}, {Key: "_id", Value: 1}}
	case catalog.SortOldest:
		return bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}
	case catalog.SortNameAsc:
		return bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}
	case catalog.SortNameDesc:
		return bson.D{{Key: "name", Value: -1}, {Key: "_id", Value: 1}}
	default:
		return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}
	}
}
