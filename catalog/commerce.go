package catalog

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	apperrors "catalog-service/common/errors"
)

// CommerceInput carries price fields as submitted. Each may be a JSON number or
// a numeric string.
type CommerceInput struct {
	Price           interface{} `json:"price"`
	MRP             interface{} `json:"mrp"`
	DiscountPercent interface{} `json:"discountPercent"`
	Stock           interface{} `json:"stock"`
}

// CommercePatch holds the fields that were present in a CommerceInput.
type CommercePatch struct {
	Price           *float64
	MRP             *float64
	DiscountPercent *float64
	Stock           *int
}

// ParseCommercePatch coerces whichever fields are present. A nil value or an
// empty string counts as absent.
func ParseCommercePatch(in CommerceInput) (CommercePatch, error) {
	var p CommercePatch
	var err error
	if p.Price, err = parseNumber("price", in.Price); err != nil {
		return p, err
	}
	if p.MRP, err = parseNumber("mrp", in.MRP); err != nil {
		return p, err
	}
	if p.DiscountPercent, err = parseNumber("discountPercent", in.DiscountPercent); err != nil {
		return p, err
	}
	stock, err := parseNumber("stock", in.Stock)
	if err != nil {
		return p, err
	}
	if stock != nil {
		if *stock != math.Trunc(*stock) {
			return p, apperrors.Newf(apperrors.ErrInvalidFieldValue, "stock must be a whole number")
		}
		if *stock > math.MaxInt32 || *stock < math.MinInt32 {
			return p, apperrors.Newf(apperrors.ErrInvalidFieldValue, "stock %.0f is out of range", *stock)
		}
		n := int(*stock)
		p.Stock = &n
	}
	return p, nil
}

// Apply overlays the present fields onto b.
func (p CommercePatch) Apply(b Baseline) Baseline {
	if p.Price != nil {
		b.Price = *p.Price
	}
	if p.MRP != nil {
		b.MRP = copyFloat(p.MRP)
	}
	if p.DiscountPercent != nil {
		b.DiscountPercent = copyFloat(p.DiscountPercent)
	}
	if p.Stock != nil {
		b.Stock = *p.Stock
	}
	return b
}

// ParseCommerce coerces and validates a complete set of commerce fields. Price
// is required.
func ParseCommerce(in CommerceInput) (Baseline, error) {
	p, err := ParseCommercePatch(in)
	if err != nil {
		return Baseline{}, err
	}
	if p.Price == nil {
		return Baseline{}, apperrors.Newf(apperrors.ErrInvalidFieldValue, "price is required")
	}
	b := p.Apply(Baseline{})
	if err := ValidateCommerce(b); err != nil {
		return Baseline{}, err
	}
	return b, nil
}

// ValidateCommerce enforces the price rules shared by products and variants.
func ValidateCommerce(b Baseline) error {
	if b.Price < 0 {
		return apperrors.Newf(apperrors.ErrInvalidFieldValue, "price must not be negative")
	}
	if b.Stock < 0 {
		return apperrors.Newf(apperrors.ErrInvalidFieldValue, "stock must not be negative")
	}
	if b.DiscountPercent != nil && (*b.DiscountPercent < 0 || *b.DiscountPercent > 100) {
		return apperrors.Newf(apperrors.ErrInvalidFieldValue, "discount must be between 0 and 100")
	}
	if b.MRP != nil && *b.MRP < b.Price {
		return apperrors.Newf(apperrors.ErrInvalidFieldValue, "mrp %.2f is below price %.2f", *b.MRP, b.Price)
	}
	return nil
}

func parseNumber(field string, raw interface{}) (*float64, error) {
	var f float64
	switch t := raw.(type) {
	case nil:
		return nil, nil
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		v, err := t.Float64()
		if err != nil {
			return nil, apperrors.Newf(apperrors.ErrInvalidFieldValue, "%s must be numeric", field)
		}
		f = v
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil, nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, apperrors.Newf(apperrors.ErrInvalidFieldValue, "%s must be numeric, got %q", field, t)
		}
		f = v
	default:
		return nil, apperrors.Newf(apperrors.ErrInvalidFieldValue, "%s must be numeric", field)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, apperrors.Newf(apperrors.ErrInvalidFieldValue, "%s must be a finite number", field)
	}
	return &f, nil
}
