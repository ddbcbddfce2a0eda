package properties

import (
	"encoding/json"
	"testing"

	"github.com/matryer/is"
)

func TestSingleElementArrayDecodesAsBareValue(t *testing.T) {
	is := is.New(t)

	single, err := Decode(json.RawMessage(`[{"@id":"#alice"}]`))
	is.NoErr(err)
	bare, err := Decode(json.RawMessage(`{"@id":"#alice"}`))
	is.NoErr(err)

	is.Equal(single, Ref("#alice"))
	is.True(Equal(single, bare))
}

func TestEmptyValuesDecodeAsNil(t *testing.T) {
	is := is.New(t)

	for _, raw := range []string{`null`, `[]`, `{}`, `[null, []]`, `{"a": null}`} {
		v, err := Decode(json.RawMessage(raw))
		is.NoErr(err)
		is.True(v == nil) // empty values must be dropped
	}
}

func TestNestedObjectKeepsOrderAndFlattens(t *testing.T) {
	is := is.New(t)

	v, err := Decode(json.RawMessage(`{"zeta": ["only"], "alpha": {"@id": "#x"}, "mid": [1, 2.5, true], "none": []}`))
	is.NoErr(err)

	obj, ok := v.(Object)
	is.True(ok)
	is.Equal(obj.Fields.Keys(), []string{"zeta", "alpha", "mid"})

	b, err := json.Marshal(v)
	is.NoErr(err)
	is.Equal(string(b), `{"zeta":"only","alpha":{"@id":"#x"},"mid":[1,2.5,true]}`)
}

func TestMapOmitsEmptyValuesWhenMarshalled(t *testing.T) {
	is := is.New(t)

	m := NewMap()
	m.Set("name", NewText("a <b> & c"))
	m.Set("empty", List{})
	m.Set("nested", NewObject(nil))
	m.Set("single", List{Ref("#one")})
	m.Set("deep", NewObject(mapOf("inner", List{NewInteger(42)})))

	b, err := m.MarshalJSON()
	is.NoErr(err)
	is.Equal(string(b), `{"name":"a <b> & c","single":{"@id":"#one"},"deep":{"inner":42}}`)
}

func TestAddReferencePromotesAndDeduplicates(t *testing.T) {
	is := is.New(t)

	var v Value
	v = AddReference(v, "a1")
	is.Equal(v, Ref("a1"))

	v = AddReference(v, "a1")
	is.Equal(v, Ref("a1")) // adding the same id twice is a no-op

	v = AddReference(v, "a2")
	is.Equal(v, List{Ref("a1"), Ref("a2")})

	v = AddReference(v, "a2")
	is.Equal(len(v.(List)), 2)

	v = AddReference(v, "a3")
	is.Equal(ReferencedIDs(v), []string{"a1", "a2", "a3"})
}

func TestAddReferenceReplacesScalars(t *testing.T) {
	is := is.New(t)

	v := AddReference(NewText("ACME"), "#org")
	is.Equal(v, Ref("#org"))

	b, err := v.MarshalJSON()
	is.NoErr(err)
	is.Equal(string(b), `{"@id":"#org"}`)

	v = AddReference(List{NewText("ACME"), Ref("#a"), NewText("Initech")}, "#org")
	is.Equal(v, List{Ref("#a"), Ref("#org")})
}

func TestWithoutReferencesKeepsOtherValues(t *testing.T) {
	is := is.New(t)

	is.Equal(WithoutReferences(Ref("a.csv")), nil)
	is.Equal(WithoutReferences(List{NewText("a.csv"), Ref("b.csv")}), NewText("a.csv"))
	is.Equal(WithoutReferences(List{Ref("a.csv"), Ref("b.csv")}), nil)
	is.Equal(WithoutReferences(NewText("a.csv")), NewText("a.csv"))
}

func TestRemoveReferencesCollapsesToScalar(t *testing.T) {
	is := is.New(t)

	v := RemoveReferences(List{Ref("#a"), Ref("#b")}, "#a")
	is.Equal(v, Ref("#b"))

	v = RemoveReferences(v, "#b")
	is.True(v == nil)
}

func TestRemoveReferencesScrubsNestedObjects(t *testing.T) {
	is := is.New(t)

	nested := NewObject(mapOf(
		"@type", NewText("PropertyValue"),
		"value", Ref("#gone"),
	))
	v := List{nested, NewText("#gone"), NewText("kept")}

	v2 := RemoveReferences(v, "#gone")

	b, err := json.Marshal(v2)
	is.NoErr(err)
	is.Equal(string(b), `[{"@type":"PropertyValue"},"kept"]`)
}

func TestIDsFindsReferencesAtAnyDepth(t *testing.T) {
	is := is.New(t)

	v, err := Decode(json.RawMessage(`[{"@id":"#a"},{"@type":"X","about":{"nested":{"@id":"#b"}}},{"@id":"#c","name":"inline"},{"@id":"#a"}]`))
	is.NoErr(err)

	is.Equal(IDs(v), []string{"#a", "#b", "#c"})
}

func TestNumbersRoundTripWithoutPrecisionLoss(t *testing.T) {
	is := is.New(t)

	v, err := Decode(json.RawMessage(`12345678901234567890`))
	is.NoErr(err)

	b, err := json.Marshal(v)
	is.NoErr(err)
	is.Equal(string(b), `12345678901234567890`)
	is.True(Equal(NewNumber(2), NewInteger(2)))
}

func TestFromConvertsPlainValues(t *testing.T) {
	is := is.New(t)

	v, err := From(map[string]any{"b": []any{"x"}, "a": 1})
	is.NoErr(err)

	b, err := json.Marshal(v)
	is.NoErr(err)
	is.Equal(string(b), `{"a":1,"b":"x"}`)

	_, err = From(struct{}{})
	is.True(err != nil) // unsupported types should fail
}

func mapOf(kv ...any) *Map {
	m := NewMap()
	for i := 0; i+1 < len(kv); i += 2 {
		m.Set(kv[i].(string), kv[i+1].(Value))
	}
	return m
}
