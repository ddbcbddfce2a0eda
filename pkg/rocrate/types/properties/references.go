package properties

import (
	"encoding/json"
	"slices"
)

// IDs walks v depth first and returns every referenced id in first seen order.
// Inline objects carrying an "@id" count as references to that id.
func IDs(v Value) []string {
	ids := []string{}
	collectIDs(v, &ids)
	return ids
}

func collectIDs(v Value, ids *[]string) {
	appendOnce := func(id string) {
		if !slices.Contains(*ids, id) {
			*ids = append(*ids, id)
		}
	}

	switch typed := v.(type) {
	case Reference:
		appendOnce(typed.ID)
	case Object:
		if s, ok := typed.Fields.Get("@id").(Scalar); ok {
			if id, ok := s.Text(); ok {
				appendOnce(id)
			}
		}
		typed.Fields.Each(func(_ string, field Value) {
			collectIDs(field, ids)
		})
	case List:
		for _, element := range typed {
			collectIDs(element, ids)
		}
	}
}

// ReferencedIDs returns the ids held directly by v, which must be a Reference
// or a List of them. Other shapes are ignored.
func ReferencedIDs(v Value) []string {
	switch typed := v.(type) {
	case Reference:
		return []string{typed.ID}
	case List:
		ids := make([]string, 0, len(typed))
		for _, element := range typed {
			if r, ok := element.(Reference); ok {
				ids = append(ids, r.ID)
			}
		}
		return ids
	default:
		return []string{}
	}
}

// WithoutReferences returns v with every reference removed, or nil when
// nothing else is left
func WithoutReferences(v Value) Value {
	switch typed := v.(type) {
	case Reference:
		return nil
	case List:
		rest := make(List, 0, len(typed))
		for _, element := range typed {
			if _, ok := element.(Reference); !ok {
				rest = append(rest, element)
			}
		}
		return Normalize(rest)
	default:
		return v
	}
}

// AddReference appends a reference to id onto existing. A single value is
// promoted to a list and an id that is already referenced is not added twice.
// Scalars are replaced by the reference.
func AddReference(existing Value, id string) Value {
	ref := Ref(id)

	switch typed := existing.(type) {
	case nil:
		return ref
	case Reference:
		if typed.ID == id {
			return typed
		}
		return List{typed, ref}
	case List:
		for _, element := range typed {
			if r, ok := element.(Reference); ok && r.ID == id {
				return typed
			}
		}
		kept := slices.DeleteFunc(slices.Clone(typed), func(element Value) bool {
			_, isScalar := element.(Scalar)
			return isScalar
		})
		return Normalize(append(kept, ref))
	case Scalar:
		return ref
	default:
		return List{existing, ref}
	}
}

// RemoveReferences strips every occurrence of id from v. References to id,
// strings equal to id and inline objects identified by id are dropped. Lists
// that shrink to one element collapse to it and values that become empty are
// returned as nil.
func RemoveReferences(v Value, id string) Value {
	switch typed := v.(type) {
	case Reference:
		if typed.ID == id {
			return nil
		}
		return typed
	case Scalar:
		if s, ok := typed.Text(); ok && s == id {
			return nil
		}
		return typed
	case Object:
		if s, ok := typed.Fields.Get("@id").(Scalar); ok {
			if objID, _ := s.Text(); objID == id {
				return nil
			}
		}
		fields := NewMap()
		typed.Fields.Each(func(key string, field Value) {
			fields.Set(key, RemoveReferences(field, id))
		})
		return Normalize(Object{Fields: fields})
	case List:
		result := make(List, 0, len(typed))
		for _, element := range typed {
			if remaining := RemoveReferences(element, id); remaining != nil {
				result = append(result, remaining)
			}
		}
		return Normalize(result)
	default:
		return v
	}
}

// Equal compares two values in their canonical form
func Equal(a, b Value) bool {
	a, b = Normalize(a), Normalize(b)

	switch ta := a.(type) {
	case nil:
		return b == nil
	case Scalar:
		tb, ok := b.(Scalar)
		if !ok {
			return false
		}
		na, aIsNumber := ta.v.(json.Number)
		nb, bIsNumber := tb.v.(json.Number)
		if aIsNumber && bIsNumber {
			fa, errA := na.Float64()
			fb, errB := nb.Float64()
			if errA == nil && errB == nil {
				return fa == fb
			}
			return na == nb
		}
		return ta.v == tb.v
	case Reference:
		tb, ok := b.(Reference)
		return ok && ta.ID == tb.ID
	case Object:
		tb, ok := b.(Object)
		return ok && ta.Fields.Equal(tb.Fields)
	case List:
		tb, ok := b.(List)
		if !ok || len(ta) != len(tb) {
			return false
		}
		for idx := range ta {
			if !Equal(ta[idx], tb[idx]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
