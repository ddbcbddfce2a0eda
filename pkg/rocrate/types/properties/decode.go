package properties

import (
	"bytes"
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Decode turns a JSON-LD property value into its canonical in-memory form.
// Object key order is preserved, {"@id": x} becomes a Reference and arrays are
// normalized so that a single element array and a bare value decode equally.
func Decode(raw json.RawMessage) (Value, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}

	switch raw[0] {
	case 'n':
		return nil, nil
	case '{':
		return decodeObject(raw)
	case '[':
		elements := []json.RawMessage{}
		if err := json.Unmarshal(raw, &elements); err != nil {
			return nil, fmt.Errorf("failed to unmarshal array: %w", err)
		}

		list := make(List, 0, len(elements))
		for _, element := range elements {
			v, err := Decode(element)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}

		return Normalize(list), nil
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("failed to unmarshal string: %w", err)
		}
		return NewText(s), nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, fmt.Errorf("failed to unmarshal bool: %w", err)
		}
		return NewBool(b), nil
	default:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("failed to unmarshal number: %w", err)
		}
		return Scalar{v: n}, nil
	}
}

// DecodeMap decodes a JSON object into an ordered property map
func DecodeMap(raw json.RawMessage) (*Map, error) {
	om := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(raw, om); err != nil {
		return nil, fmt.Errorf("failed to unmarshal object: %w", err)
	}

	m := NewMap()

	for pair := om.Oldest(); pair != nil; pair = pair.Next() {
		v, err := Decode(pair.Value)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", pair.Key, err)
		}
		m.Set(pair.Key, v)
	}

	return m, nil
}

func decodeObject(raw json.RawMessage) (Value, error) {
	fields, err := DecodeMap(raw)
	if err != nil {
		return nil, err
	}

	if fields.Len() == 1 {
		if s, ok := fields.Get("@id").(Scalar); ok {
			if id, ok := s.Text(); ok {
				return Ref(id), nil
			}
		}
	}

	return Normalize(Object{Fields: fields}), nil
}
