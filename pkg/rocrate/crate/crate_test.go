package crate

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	rcerrors "github.com/diwise/ro-crate/pkg/rocrate/errors"
	"github.com/diwise/ro-crate/pkg/rocrate/types/entities"
	"github.com/diwise/ro-crate/pkg/rocrate/types/properties"
	"github.com/matryer/is"
)

func TestMinimalCrate(t *testing.T) {
	is := is.New(t)

	c := newTestCrate(t, entities.Name("minimal"), entities.Description("minimal RO_crate"))

	b, err := json.Marshal(c)
	is.NoErr(err)

	doc := struct {
		Context string           `json:"@context"`
		Graph   []map[string]any `json:"@graph"`
	}{}
	is.NoErr(json.Unmarshal(b, &doc))

	is.Equal(doc.Context, "https://w3id.org/ro/crate/1.1/context")
	is.Equal(len(doc.Graph), 2)
	is.Equal(doc.Graph[0]["@id"], "ro-crate-metadata.json")
	is.Equal(doc.Graph[1]["@id"], "./")

	_, hasPart := doc.Graph[1]["hasPart"]
	is.True(!hasPart)

	is.Equal(string(b), `{"@context":"https://w3id.org/ro/crate/1.1/context","@graph":[`+
		`{"@id":"ro-crate-metadata.json","@type":"CreativeWork","conformsTo":{"@id":"https://w3id.org/ro/crate/1.1"},"about":{"@id":"./"}},`+
		`{"@id":"./","@type":"Dataset","name":"minimal","description":"minimal RO_crate"}]}`)
}

func TestDataEntitiesAreListedInRootHasPart(t *testing.T) {
	is := is.New(t)
	c := newTestCrate(t)

	file, err := entities.NewFile("data1.txt", entities.Name("Data one"))
	is.NoErr(err)
	is.NoErr(c.AddDataEntity(file))

	folder, err := entities.NewDataset("results/")
	is.NoErr(err)
	is.NoErr(c.AddEntity(folder))

	is.Equal(c.Root().HasPart(), []string{"data1.txt", "results/"})

	person, err := entities.NewPerson("#alice")
	is.NoErr(err)
	is.True(c.AddDataEntity(person) != nil)
	is.NoErr(c.AddEntity(person))
	is.Equal(len(c.ContextualEntities()), 1)
}

func TestReservedIDsCannotBeRegistered(t *testing.T) {
	is := is.New(t)
	c := newTestCrate(t)

	fake, err := entities.NewCreativeWork("ro-crate-metadata.json")
	is.NoErr(err)

	err = c.AddContextualEntity(fake)
	is.True(errors.Is(err, rcerrors.ErrInvalidIdentifier))
}

func TestRemovingEntitiesScrubsRootAndPayload(t *testing.T) {
	is := is.New(t)
	c := newTestCrate(t, entities.Name("cascade"))

	alice, err := entities.NewPerson("#alice", entities.Name("Alice"))
	is.NoErr(err)
	place, err := entities.NewPlace("#uppsala", entities.Name("Uppsala"))
	is.NoErr(err)
	file, err := entities.NewFile("data1.txt",
		entities.Name("Data one"),
		entities.Author("#alice"),
		entities.ContentLocation("#uppsala"),
	)
	is.NoErr(err)

	is.NoErr(c.AddDataEntity(file))
	is.NoErr(c.AddContextualEntity(alice))
	is.NoErr(c.AddContextualEntity(place))
	is.NoErr(c.AddIDProperty("./", "author", "#alice"))

	c.RemoveEntityByID("#alice")
	c.RemoveEntityByID("#uppsala")

	b, err := json.Marshal(c.EntityByID("data1.txt"))
	is.NoErr(err)
	is.Equal(string(b), `{"@id":"data1.txt","@type":"File","name":"Data one"}`)
	is.True(c.Root().Property("author") == nil)

	c.RemoveEntityByID("data1.txt")
	is.Equal(len(c.Root().HasPart()), 0)

	c.RemoveEntityByID("./")
	is.True(c.EntityByID("./") != nil)
}

func TestRemovingEntitiesScrubsDescriptor(t *testing.T) {
	is := is.New(t)
	c := newTestCrate(t, entities.Name("descriptor"))

	alice, err := entities.NewPerson("#alice", entities.Name("Alice"))
	is.NoErr(err)
	is.NoErr(c.AddContextualEntity(alice))
	is.NoErr(c.AddIDProperty("ro-crate-metadata.json", "author", "#alice"))
	is.Equal(c.Descriptor().Property("author"), properties.Ref("#alice"))

	c.RemoveEntityByID("#alice")

	is.True(c.Descriptor().Property("author") == nil)
	is.Equal(c.Descriptor().Property("about"), properties.Ref("./"))
}

func TestCheckContext(t *testing.T) {
	is := is.New(t)
	c := newTestCrate(t, entities.Name("context"))

	ship, err := entities.New("#enterprise", entities.Type("Spaceship"))
	is.NoErr(err)
	is.NoErr(c.AddEntity(ship))

	is.Equal(c.CheckContext(), []string{"#enterprise"})

	c.Context().Add("Spaceship", "https://example.org/vocab#Spaceship")
	is.Equal(len(c.CheckContext()), 0)
}

func TestRoundTrip(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	c := newTestCrate(t,
		entities.Name("round trip"),
		entities.Description("a crate that survives serialization"),
		entities.DatePublished("2024-05-01"),
		entities.License("https://spdx.org/licenses/CC-BY-4.0"),
		entities.Author("#alice"),
	)

	alice, err := entities.NewPerson("#alice", entities.Name("Alice"), entities.Affiliation("https://ror.org/048a87296"))
	is.NoErr(err)
	uu, err := entities.NewOrganization("https://ror.org/048a87296", entities.Name("Uppsala University"))
	is.NoErr(err)
	place, err := entities.NewPlace("#uppsala", entities.Geo(59.8586, 17.6389))
	is.NoErr(err)
	file, err := entities.NewFile("data/measurements.csv",
		entities.EncodingFormat("text/csv"),
		entities.ContentSize(1024),
		entities.Author("#alice"),
		entities.ContentLocation("#uppsala"),
	)
	is.NoErr(err)
	file.AddProperty("keywords", properties.NewList(properties.NewText("water"), properties.NewText("lake")))

	is.NoErr(c.AddDataEntity(file))
	is.NoErr(c.AddContextualEntity(alice))
	is.NoErr(c.AddContextualEntity(uu))
	is.NoErr(c.AddContextualEntity(place))
	c.Context().Add("measuredBy", "https://example.org/measuredBy")

	first, err := json.Marshal(c)
	is.NoErr(err)

	read, err := NewReader().ReadJSON(ctx, first)
	is.NoErr(err)

	second, err := json.Marshal(read)
	is.NoErr(err)

	is.Equal(string(first), string(second))
	is.True(read.EntityByID("data/measurements.csv").IsDataEntity())
	is.True(!read.EntityByID("#alice").IsDataEntity())
	is.True(read.Root().Property("author") != nil)
	is.Equal(read.Context().Sources(), []string{"https://w3id.org/ro/crate/1.1/context"})
}

func newTestCrate(t *testing.T, decorators ...entities.EntityDecoratorFunc) *Crate {
	root, err := entities.NewRootDataset(decorators...)
	if err != nil {
		t.Fatal(err)
	}

	c, err := New(root)
	if err != nil {
		t.Fatal(err)
	}

	return c
}
