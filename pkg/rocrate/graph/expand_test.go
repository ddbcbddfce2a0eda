package graph

import (
	"encoding/json"
	"errors"
	"testing"

	rcerrors "github.com/diwise/ro-crate/pkg/rocrate/errors"
	"github.com/matryer/is"
)

func TestExpandInlinesReferencedNodes(t *testing.T) {
	is := is.New(t)

	nodes := parse(t, `[
		{"@id":"ro-crate-metadata.json","@type":"CreativeWork","about":{"@id":"./"}},
		{"@id":"./","@type":"Dataset","hasPart":[{"@id":"data.csv"}],"author":{"@id":"#alice"}},
		{"@id":"data.csv","@type":"File","author":{"@id":"#alice"}},
		{"@id":"#alice","@type":"Person","name":"Alice"}
	]`)

	expanded := Expand(nodes)

	is.Equal(len(expanded), 1)

	b, err := json.Marshal(expanded[0])
	is.NoErr(err)
	is.Equal(string(b), `{"@id":"ro-crate-metadata.json","@type":"CreativeWork","about":{"@id":"./","@type":"Dataset","author":{"@id":"#alice","@type":"Person","name":"Alice"},"hasPart":[{"@id":"data.csv","@type":"File","author":{"@id":"#alice","@type":"Person","name":"Alice"}}]}}`)
}

func TestExpandLeavesCyclesAsReferences(t *testing.T) {
	is := is.New(t)

	nodes := parse(t, `[
		{"@id":"#a","@type":"Thing","knows":{"@id":"#b"}},
		{"@id":"#b","@type":"Thing","knows":{"@id":"#a"}},
		{"@id":"#self","@type":"Thing","sameAs":{"@id":"#self"}}
	]`)

	expanded := Expand(nodes)

	b, err := json.Marshal(expanded)
	is.NoErr(err)
	is.Equal(string(b), `[{"@id":"#a","@type":"Thing","knows":{"@id":"#b","@type":"Thing","knows":{"@id":"#a"}}},{"@id":"#self","@type":"Thing","sameAs":{"@id":"#self"}}]`)
}

func TestExpandKeepsUnknownReferences(t *testing.T) {
	is := is.New(t)

	nodes := parse(t, `[{"@id":"./","@type":"Dataset","license":{"@id":"https://spdx.org/licenses/MIT"}}]`)

	b, err := json.Marshal(Expand(nodes))
	is.NoErr(err)
	is.Equal(string(b), `[{"@id":"./","@type":"Dataset","license":{"@id":"https://spdx.org/licenses/MIT"}}]`)
}

func TestExpandDoesNotModifyInput(t *testing.T) {
	is := is.New(t)

	const input = `[{"@id":"#a","@type":"Thing","knows":{"@id":"#b"}},{"@id":"#b","@type":"Thing"}]`
	nodes := parse(t, input)

	Expand(nodes)

	b, err := json.Marshal(nodes)
	is.NoErr(err)
	is.Equal(string(b), input)
}

func TestExpandDocument(t *testing.T) {
	is := is.New(t)

	out, err := ExpandDocument([]byte(`{"@context":"https://w3id.org/ro/crate/1.1/context","@graph":[
		{"@id":"./","@type":"Dataset","contentSize":12345678901234567890,"contentLocation":{"@id":"#p"}},
		{"@id":"#p","@type":"Place","name":"R&D"}
	]}`))
	is.NoErr(err)
	is.Equal(string(out), `{"@context":"https://w3id.org/ro/crate/1.1/context","@graph":[{"@id":"./","@type":"Dataset","contentLocation":{"@id":"#p","@type":"Place","name":"R&D"},"contentSize":12345678901234567890}]}`)

	_, err = ExpandDocument([]byte(`{"@context":"x"}`))
	is.True(errors.Is(err, rcerrors.ErrMalformedCrate))
}

func parse(t *testing.T, s string) []any {
	nodes := []any{}
	if err := json.Unmarshal([]byte(s), &nodes); err != nil {
		t.Fatal(err)
	}
	return nodes
}
