package properties

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

const (
	About           string = "about"
	Affiliation     string = "affiliation"
	Author          string = "author"
	ConformsTo      string = "conformsTo"
	ContentLocation string = "contentLocation"
	ContentSize     string = "contentSize"
	ContentURL      string = "contentUrl"
	DatePublished   string = "datePublished"
	Description     string = "description"
	Email           string = "email"
	EncodingFormat  string = "encodingFormat"
	Geo             string = "geo"
	HasPart         string = "hasPart"
	Identifier      string = "identifier"
	License         string = "license"
	Name            string = "name"
	URL             string = "url"
)

// Value is one of Scalar, Reference, Object or List
type Value interface {
	json.Marshaler
	isValue()
}

// Scalar holds a string, a bool or a json.Number
type Scalar struct {
	v any
}

func (Scalar) isValue() {}

func NewText(value string) Scalar {
	return Scalar{v: value}
}

func NewNumber(value float64) Scalar {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Scalar{v: strconv.FormatFloat(value, 'g', -1, 64)}
	}
	return Scalar{v: json.Number(strconv.FormatFloat(value, 'f', -1, 64))}
}

func NewInteger(value int64) Scalar {
	return Scalar{v: json.Number(strconv.FormatInt(value, 10))}
}

func NewBool(value bool) Scalar {
	return Scalar{v: value}
}

// Value returns the underlying string, bool or json.Number
func (s Scalar) Value() any {
	return s.v
}

// String returns the textual form of the scalar, regardless of its kind
func (s Scalar) String() string {
	switch v := s.v.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// Text returns the value and true if the scalar holds a string
func (s Scalar) Text() (string, bool) {
	str, ok := s.v.(string)
	return str, ok
}

func (s Scalar) MarshalJSON() ([]byte, error) {
	if s.v == nil {
		return []byte("null"), nil
	}
	return encode(s.v)
}

// Reference points at another entity in the graph by id
type Reference struct {
	ID string
}

func (Reference) isValue() {}

func Ref(id string) Reference {
	return Reference{ID: id}
}

func (r Reference) MarshalJSON() ([]byte, error) {
	id, err := encode(r.ID)
	if err != nil {
		return nil, err
	}
	return []byte(`{"@id":` + string(id) + `}`), nil
}

// Object is an inline structure that is not a crate entity in its own right
type Object struct {
	Fields *Map
}

func (Object) isValue() {}

func NewObject(fields *Map) Object {
	if fields == nil {
		fields = NewMap()
	}
	return Object{Fields: fields}
}

func (o Object) MarshalJSON() ([]byte, error) {
	return o.Fields.MarshalJSON()
}

// List holds more than one value. Lists with a single element only exist
// transiently and are collapsed by Normalize.
type List []Value

func (List) isValue() {}

func NewList(values ...Value) List {
	return List(values)
}

func (l List) MarshalJSON() ([]byte, error) {
	nonEmpty := make([]Value, 0, len(l))
	for _, v := range l {
		if !IsEmpty(v) {
			nonEmpty = append(nonEmpty, v)
		}
	}

	if len(nonEmpty) == 1 {
		return nonEmpty[0].MarshalJSON()
	}

	buf := bytes.Buffer{}
	buf.WriteByte('[')
	for idx, v := range nonEmpty {
		b, err := v.MarshalJSON()
		if err != nil {
			return nil, err
		}
		if idx > 0 {
			buf.WriteByte(',')
		}
		buf.Write(b)
	}
	buf.WriteByte(']')

	return buf.Bytes(), nil
}

// IsEmpty reports whether a value would be omitted from the wire form
func IsEmpty(v Value) bool {
	switch typed := v.(type) {
	case nil:
		return true
	case Scalar:
		return typed.v == nil
	case Reference:
		return false
	case Object:
		if typed.Fields == nil {
			return true
		}
		empty := true
		typed.Fields.Each(func(_ string, field Value) {
			if !IsEmpty(field) {
				empty = false
			}
		})
		return empty
	case List:
		for _, element := range typed {
			if !IsEmpty(element) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Normalize returns the canonical in-memory form of v: empty values become nil
// and lists with a single element collapse to that element, at any depth.
func Normalize(v Value) Value {
	switch typed := v.(type) {
	case Object:
		if typed.Fields == nil {
			return nil
		}
		fields := NewMap()
		typed.Fields.Each(func(key string, field Value) {
			fields.Set(key, Normalize(field))
		})
		if fields.Len() == 0 {
			return nil
		}
		return Object{Fields: fields}
	case List:
		result := make(List, 0, len(typed))
		for _, element := range typed {
			if n := Normalize(element); n != nil {
				result = append(result, n)
			}
		}
		switch len(result) {
		case 0:
			return nil
		case 1:
			return result[0]
		default:
			return result
		}
	default:
		if IsEmpty(v) {
			return nil
		}
		return v
	}
}

// From converts plain Go values (as produced by encoding/json or written by
// hand) into a Value. Maps are converted with their keys in sorted order.
func From(value any) (Value, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case Value:
		return Normalize(v), nil
	case string:
		return NewText(v), nil
	case bool:
		return NewBool(v), nil
	case json.Number:
		return Scalar{v: v}, nil
	case float64:
		return NewNumber(v), nil
	case float32:
		return NewNumber(float64(v)), nil
	case int:
		return NewInteger(int64(v)), nil
	case int32:
		return NewInteger(int64(v)), nil
	case int64:
		return NewInteger(v), nil
	case []string:
		list := make(List, 0, len(v))
		for _, s := range v {
			list = append(list, NewText(s))
		}
		return Normalize(list), nil
	case []any:
		list := make(List, 0, len(v))
		for _, element := range v {
			converted, err := From(element)
			if err != nil {
				return nil, err
			}
			list = append(list, converted)
		}
		return Normalize(list), nil
	case map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return Decode(b)
	default:
		return nil, fmt.Errorf("support for type %T not implemented", value)
	}
}

func encode(v any) ([]byte, error) {
	buf := bytes.Buffer{}
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
