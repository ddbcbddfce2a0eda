package properties

import (
	"bytes"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Map is an insertion ordered property map. The zero value is ready to use.
type Map struct {
	om *orderedmap.OrderedMap[string, Value]
}

func NewMap() *Map {
	return &Map{om: orderedmap.New[string, Value]()}
}

// Set stores value under key, replacing any previous value while keeping the
// key's original position. Empty values are ignored.
func (m *Map) Set(key string, value Value) {
	value = Normalize(value)
	if value == nil {
		return
	}

	if m.om == nil {
		m.om = orderedmap.New[string, Value]()
	}

	m.om.Set(key, value)
}

func (m *Map) Get(key string) Value {
	if m == nil || m.om == nil {
		return nil
	}

	v, _ := m.om.Get(key)
	return v
}

func (m *Map) Has(key string) bool {
	if m == nil || m.om == nil {
		return false
	}

	_, ok := m.om.Get(key)
	return ok
}

func (m *Map) Delete(key string) bool {
	if m == nil || m.om == nil {
		return false
	}

	_, present := m.om.Delete(key)
	return present
}

func (m *Map) Len() int {
	if m == nil || m.om == nil {
		return 0
	}
	return m.om.Len()
}

func (m *Map) Keys() []string {
	keys := make([]string, 0, m.Len())
	m.Each(func(key string, _ Value) {
		keys = append(keys, key)
	})
	return keys
}

// Each calls fn for every entry in insertion order. fn must not modify m.
func (m *Map) Each(fn func(key string, value Value)) {
	if m == nil || m.om == nil {
		return
	}

	for pair := m.om.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// Clone returns a shallow copy. Values are immutable so sharing them is safe.
func (m *Map) Clone() *Map {
	clone := NewMap()
	m.Each(func(key string, value Value) {
		clone.om.Set(key, value)
	})
	return clone
}

func (m *Map) Equal(other *Map) bool {
	if m.Len() != other.Len() {
		return false
	}

	equal := true
	m.Each(func(key string, value Value) {
		if equal && !Equal(value, other.Get(key)) {
			equal = false
		}
	})

	return equal
}

// MarshalJSON writes the entries in insertion order and omits empty values
func (m *Map) MarshalJSON() ([]byte, error) {
	buf := bytes.Buffer{}
	buf.WriteByte('{')

	first := true
	var err error

	m.Each(func(key string, value Value) {
		if err != nil || IsEmpty(value) {
			return
		}

		var k, v []byte
		if k, err = encode(key); err != nil {
			return
		}
		if v, err = value.MarshalJSON(); err != nil {
			return
		}

		if !first {
			buf.WriteByte(',')
		}
		first = false

		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	})

	if err != nil {
		return nil, err
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
