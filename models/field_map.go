package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.mongodb.org/mongo-driver/bson"
)

// FieldEntry is one slug/value assignment inside a FieldMap.
type FieldEntry struct {
	Key   string
	Value FieldValue
}

// FieldMap is a slug-keyed map that remembers insertion order. Variant SKUs are
// derived from this order, so it survives JSON, BSON and DynamoDB round trips.
type FieldMap struct {
	entries []FieldEntry
}

// NewFieldMap builds a map from alternating entries, keeping their order.
func NewFieldMap(entries ...FieldEntry) FieldMap {
	var m FieldMap
	for _, e := range entries {
		m.Set(e.Key, e.Value)
	}
	return m
}

func (m FieldMap) Len() int { return len(m.entries) }

// Entries returns the assignments in insertion order.
func (m FieldMap) Entries() []FieldEntry {
	out := make([]FieldEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

func (m FieldMap) Keys() []string {
	keys := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		keys = append(keys, e.Key)
	}
	return keys
}

func (m FieldMap) Get(key string) (FieldValue, bool) {
	for _, e := range m.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return FieldValue{}, false
}

// Set overwrites an existing key in place or appends a new one.
func (m *FieldMap) Set(key string, v FieldValue) {
	for i := range m.entries {
		if m.entries[i].Key == key {
			m.entries[i].Value = v
			return
		}
	}
	m.entries = append(m.entries, FieldEntry{Key: key, Value: v})
}

func (m FieldMap) Clone() FieldMap {
	return FieldMap{entries: m.Entries()}
}

func (m FieldMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON keeps the key order of the JSON object.
func (m *FieldMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*m = FieldMap{}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("field values must be a JSON object")
	}
	out := FieldMap{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected field key %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		var v FieldValue
		if err := v.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		out.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = out
	return nil
}

// MarshalBSON stores the map as an ordered document.
func (m FieldMap) MarshalBSON() ([]byte, error) {
	doc := make(bson.D, 0, len(m.entries))
	for _, e := range m.entries {
		doc = append(doc, bson.E{Key: e.Key, Value: e.Value})
	}
	return bson.Marshal(doc)
}

func (m *FieldMap) UnmarshalBSON(data []byte) error {
	raw := bson.Raw(data)
	elems, err := raw.Elements()
	if err != nil {
		return err
	}
	out := FieldMap{}
	for _, el := range elems {
		val := el.Value()
		var v FieldValue
		if err := v.UnmarshalBSONValue(val.Type, val.Value); err != nil {
			return fmt.Errorf("field %q: %w", el.Key(), err)
		}
		out.Set(el.Key(), v)
	}
	*m = out
	return nil
}

// MarshalDynamoDBAttributeValue writes a list of {k, v} pairs; a DynamoDB map
// would lose the order.
func (m FieldMap) MarshalDynamoDBAttributeValue() (types.AttributeValue, error) {
	items := make([]types.AttributeValue, 0, len(m.entries))
	for _, e := range m.entries {
		v, err := e.Value.MarshalDynamoDBAttributeValue()
		if err != nil {
			return nil, err
		}
		items = append(items, &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{
			"k": &types.AttributeValueMemberS{Value: e.Key},
			"v": v,
		}})
	}
	return &types.AttributeValueMemberL{Value: items}, nil
}

func (m *FieldMap) UnmarshalDynamoDBAttributeValue(av types.AttributeValue) error {
	list, ok := av.(*types.AttributeValueMemberL)
	if !ok {
		*m = FieldMap{}
		return nil
	}
	out := FieldMap{}
	for _, item := range list.Value {
		pair, ok := item.(*types.AttributeValueMemberM)
		if !ok {
			continue
		}
		key, ok := pair.Value["k"].(*types.AttributeValueMemberS)
		if !ok {
			continue
		}
		var v FieldValue
		if raw, ok := pair.Value["v"]; ok {
			if err := v.UnmarshalDynamoDBAttributeValue(raw); err != nil {
				return err
			}
		}
		out.Set(key.Value, v)
	}
	*m = out
	return nil
}
