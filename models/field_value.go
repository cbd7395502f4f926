package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// ValueKind tags the variant held by a FieldValue.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindText
	KindNumber
	KindBool
	KindList
)

// FieldValue is the value stored under a category-declared slug. Exactly one of
// the payload fields is meaningful, selected by Kind.
type FieldValue struct {
	Kind ValueKind
	Text string
	Num  float64
	Bool bool
	List []string
}

func Text(s string) FieldValue { return FieldValue{Kind: KindText, Text: s} }
func Number(f float64) FieldValue { return FieldValue{Kind: KindNumber, Num: f} }
func Bool(b bool) FieldValue { return FieldValue{Kind: KindBool, Bool: b} }
func List(v ...string) FieldValue { return FieldValue{Kind: KindList, List: append([]string{}, v...)} }
func (v FieldValue) IsNull() bool { return v.Kind == KindNull }

// String returns the value's string form: lists are comma joined and numbers use
// the shortest decimal representation.
func (v FieldValue) String() string {
	switch v.Kind {
	case KindText:
		return v.Text
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindList:
		return strings.Join(v.List, ",")
	default:
		return ""
	}
}

// Scalars returns the individual comparable values: the elements of a list, or
// the value itself.
func (v FieldValue) Scalars() []FieldValue {
	if v.Kind != KindList {
		return []FieldValue{v}
	}
	out := make([]FieldValue, 0, len(v.List))
	for _, s := range v.List {
		out = append(out, Text(s))
	}
	return out
}

// Equal reports scalar equality. Values of different kinds never match.
func (v FieldValue) Equal(o FieldValue) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindText:
		return v.Text == o.Text
	case KindNumber:
		return v.Num == o.Num
	case KindBool:
		return v.Bool == o.Bool
	case KindList:
		if len(v.List) != len(o.List) {
			return false
		}
		for i := range v.List {
			if v.List[i] != o.List[i] {
				return false
			}
		}
		return true
	}
	return true
}

// Interface returns the plain Go value, used when building store queries.
func (v FieldValue) Interface() interface{} {
	switch v.Kind {
	case KindText:
		return v.Text
	case KindNumber:
		return v.Num
	case KindBool:
		return v.Bool
	case KindList:
		return v.List
	default:
		return nil
	}
}

// FieldValueOf converts a decoded JSON/BSON value. Unsupported shapes are
// rendered to text so nothing submitted is lost.
func FieldValueOf(raw interface{}) FieldValue {
	switch t := raw.(type) {
	case nil:
		return FieldValue{}
	case FieldValue:
		return t
	case string:
		return Text(t)
	case bool:
		return Bool(t)
	case float64:
		return Number(t)
	case float32:
		return Number(float64(t))
	case int:
		return Number(float64(t))
	case int32:
		return Number(float64(t))
	case int64:
		return Number(float64(t))
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return Number(f)
		}
		return Text(t.String())
	case []string:
		return List(t...)
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, e := range t {
			out = append(out, FieldValueOf(e).String())
		}
		return List(out...)
	case bson.A:
		return FieldValueOf([]interface{}(t))
	default:
		return Text(fmt.Sprint(t))
	}
}

func (v FieldValue) MarshalJSON() ([]byte, error) {
	if v.Kind == KindList && v.List == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(v.Interface())
}

func (v *FieldValue) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	if _, ok := raw.(map[string]interface{}); ok {
		return fmt.Errorf("field value cannot be an object")
	}
	*v = FieldValueOf(raw)
	return nil
}

func (v FieldValue) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(v.Interface())
}

func (v *FieldValue) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	var raw interface{}
	if err := (bson.RawValue{Type: t, Value: data}).Unmarshal(&raw); err != nil {
		return err
	}
	*v = FieldValueOf(raw)
	return nil
}

func (v FieldValue) MarshalDynamoDBAttributeValue() (types.AttributeValue, error) {
	switch v.Kind {
	case KindText:
		return &types.AttributeValueMemberS{Value: v.Text}, nil
	case KindNumber:
		return &types.AttributeValueMemberN{Value: strconv.FormatFloat(v.Num, 'f', -1, 64)}, nil
	case KindBool:
		return &types.AttributeValueMemberBOOL{Value: v.Bool}, nil
	case KindList:
		items := make([]types.AttributeValue, 0, len(v.List))
		for _, s := range v.List {
			items = append(items, &types.AttributeValueMemberS{Value: s})
		}
		return &types.AttributeValueMemberL{Value: items}, nil
	default:
		return &types.AttributeValueMemberNULL{Value: true}, nil
	}
}

func (v *FieldValue) UnmarshalDynamoDBAttributeValue(av types.AttributeValue) error {
	switch t := av.(type) {
	case *types.AttributeValueMemberS:
		*v = Text(t.Value)
	case *types.AttributeValueMemberN:
		f, err := strconv.ParseFloat(t.Value, 64)
		if err != nil {
			return fmt.Errorf("parse number attribute: %w", err)
		}
		*v = Number(f)
	case *types.AttributeValueMemberBOOL:
		*v = Bool(t.Value)
	case *types.AttributeValueMemberSS:
		*v = List(t.Value...)
	case *types.AttributeValueMemberL:
		out := make([]string, 0, len(t.Value))
		for _, item := range t.Value {
			var e FieldValue
			if err := e.UnmarshalDynamoDBAttributeValue(item); err != nil {
				return err
			}
			out = append(out, e.String())
		}
		*v = List(out...)
	default:
		*v = FieldValue{}
	}
	return nil
}
