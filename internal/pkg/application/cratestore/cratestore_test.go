package cratestore

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	rcerrors "github.com/diwise/ro-crate/pkg/rocrate/errors"
	"github.com/diwise/ro-crate/pkg/rocrate/validation"
	"github.com/matryer/is"
)

func TestListCrates(t *testing.T) {
	is, ctx, store := setupStoreTest(t, validCrate)

	crates := store.ListCrates(ctx)
	is.Equal(len(crates), 1)
	is.Equal(crates[0].ID, "demo")
	is.True(!crates[0].Loaded) // crates are loaded on first use

	_, err := store.RetrieveMetadata(ctx, "demo")
	is.NoErr(err)

	is.True(store.ListCrates(ctx)[0].Loaded)
}

func TestRetrieveMetadata(t *testing.T) {
	is, ctx, store := setupStoreTest(t, validCrate)

	b, err := store.RetrieveMetadata(ctx, "demo")
	is.NoErr(err)

	doc := struct {
		Context any              `json:"@context"`
		Graph   []map[string]any `json:"@graph"`
	}{}
	is.NoErr(json.Unmarshal(b, &doc))

	is.Equal(doc.Context, "https://w3id.org/ro/crate/1.1/context")
	is.Equal(len(doc.Graph), 4)
	is.Equal(doc.Graph[0]["@id"], "ro-crate-metadata.json")
	is.Equal(doc.Graph[1]["@id"], "./")
}

func TestRetrieveUnknownCrate(t *testing.T) {
	is, ctx, store := setupStoreTest(t, validCrate)

	_, err := store.RetrieveMetadata(ctx, "nope")
	is.True(errors.Is(err, rcerrors.ErrNotFound))
}

func TestRetrieveEntity(t *testing.T) {
	is, ctx, store := setupStoreTest(t, validCrate)

	e, err := store.RetrieveEntity(ctx, "demo", "#alice")
	is.NoErr(err)
	is.Equal(e.Text("name"), "Alice")

	_, err = store.RetrieveEntity(ctx, "demo", "#bob")
	is.True(errors.Is(err, rcerrors.ErrNotFound))
}

func TestRetrieveExpandedGraph(t *testing.T) {
	is, ctx, store := setupStoreTest(t, validCrate)

	b, err := store.RetrieveExpandedGraph(ctx, "demo")
	is.NoErr(err)

	doc := struct {
		Graph []any `json:"@graph"`
	}{}
	is.NoErr(json.Unmarshal(b, &doc))

	data := findNode(doc.Graph, "data.csv")
	is.True(data != nil) // data.csv should be reachable from the descriptor

	author, ok := data["author"].(map[string]any)
	is.True(ok) // author should be inlined
	is.Equal(author["name"], "Alice")
}

func findNode(v any, id string) map[string]any {
	switch typed := v.(type) {
	case []any:
		for _, item := range typed {
			if found := findNode(item, id); found != nil {
				return found
			}
		}
	case map[string]any:
		if typed["@id"] == id {
			return typed
		}
		for _, value := range typed {
			if found := findNode(value, id); found != nil {
				return found
			}
		}
	}
	return nil
}

func TestValidateCrate(t *testing.T) {
	is, ctx, store := setupStoreTest(t, validCrate)

	report, err := store.ValidateCrate(ctx, "demo")
	is.NoErr(err)
	is.True(report.Valid)
	is.Equal(len(report.Violations), 0)
	is.Equal(len(report.UnknownTerms), 0)
}

func TestValidateCrateReportsViolations(t *testing.T) {
	is, ctx, store := setupStoreTest(t, validCrate, WithValidator(
		validation.Predicate(func([]byte) bool { return false }, "always wrong"),
	))

	report, err := store.ValidateCrate(ctx, "demo")
	is.NoErr(err)
	is.True(!report.Valid)
	is.Equal(report.Violations, []string{"always wrong"})
}

func TestMalformedCratesFailToLoad(t *testing.T) {
	is, ctx, store := setupStoreTest(t, `{"@context": "https://w3id.org/ro/crate/1.1/context"}`)

	_, err := store.RetrieveMetadata(ctx, "demo")
	is.True(errors.Is(err, rcerrors.ErrMalformedCrate))
	is.True(!store.ListCrates(ctx)[0].Loaded)
}

func TestDuplicateCrateIDsAreRejected(t *testing.T) {
	is := is.New(t)

	_, err := New(context.Background(), Config{Crates: []CrateSource{
		{ID: "a", Path: "/tmp/a"},
		{ID: "a", Path: "/tmp/b"},
	}})
	is.True(err != nil)
}

func setupStoreTest(t *testing.T, metadata string, options ...StoreOption) (*is.I, context.Context, CrateStore) {
	is := is.New(t)
	ctx := context.Background()

	dir := t.TempDir()
	is.NoErr(os.WriteFile(filepath.Join(dir, "ro-crate-metadata.json"), []byte(metadata), 0644))
	is.NoErr(os.WriteFile(filepath.Join(dir, "data.csv"), []byte("a,b\n1,2\n"), 0644))

	store, err := New(ctx, Config{
		Vocabulary: VocabularyConfig{Offline: true},
		Crates:     []CrateSource{{ID: "demo", Name: "Demo", Path: dir}},
	}, options...)
	is.NoErr(err)

	return is, ctx, store
}

const validCrate string = `{
	"@context": "https://w3id.org/ro/crate/1.1/context",
	"@graph": [
		{
			"@id": "ro-crate-metadata.json",
			"@type": "CreativeWork",
			"conformsTo": {"@id": "https://w3id.org/ro/crate/1.1"},
			"about": {"@id": "./"}
		},
		{
			"@id": "./",
			"@type": "Dataset",
			"name": "Demo",
			"description": "A crate used in tests",
			"datePublished": "2024-05-01",
			"license": "https://creativecommons.org/licenses/by/4.0/",
			"hasPart": [{"@id": "data.csv"}]
		},
		{
			"@id": "data.csv",
			"@type": "File",
			"name": "Data",
			"author": {"@id": "#alice"}
		},
		{
			"@id": "#alice",
			"@type": "Person",
			"name": "Alice"
		}
	]
}`
