package payload

import (
	"encoding/json"
	"errors"
	"testing"

	rcerrors "github.com/diwise/ro-crate/pkg/rocrate/errors"
	"github.com/diwise/ro-crate/pkg/rocrate/types/entities"
	"github.com/diwise/ro-crate/pkg/rocrate/types/properties"
	"github.com/matryer/is"
)

func TestDeletingReferencedEntitiesScrubsReferrers(t *testing.T) {
	is, p := setupPayload(t)

	b, err := json.Marshal(p.EntityByID("data1.txt"))
	is.NoErr(err)
	is.Equal(string(b), `{"@id":"data1.txt","@type":"File","name":"Data one","author":{"@id":"#alice"},"contentLocation":{"@id":"#uppsala"}}`)

	p.RemoveEntityByID("#alice")
	p.RemoveEntityByID("#uppsala")

	b, err = json.Marshal(p.EntityByID("data1.txt"))
	is.NoErr(err)
	is.Equal(string(b), `{"@id":"data1.txt","@type":"File","name":"Data one"}`)
	is.True(p.EntityByID("#alice") == nil)
	is.Equal(p.Len(), 1)
}

func TestDeletingOneOfTwoReferencesCollapsesToScalar(t *testing.T) {
	is, p := setupPayload(t)

	is.NoErr(p.AddIDProperty("data1.txt", "author", "#bob"))
	is.Equal(p.ReferencedBy("#bob"), []string{"data1.txt"})

	p.RemoveEntityByID("#alice")

	is.Equal(p.EntityByID("data1.txt").Property("author"), properties.Ref("#bob"))
}

func TestDeleteIsIdempotent(t *testing.T) {
	is, p := setupPayload(t)

	p.RemoveEntityByID("#alice")
	once, err := json.Marshal(p.AllEntities())
	is.NoErr(err)

	p.RemoveEntityByID("#alice")
	p.RemoveEntityByID("#never-existed")
	twice, err := json.Marshal(p.AllEntities())
	is.NoErr(err)

	is.Equal(string(once), string(twice))
}

func TestNestedReferencesAreScrubbed(t *testing.T) {
	is := is.New(t)
	p := New()

	action, err := entities.NewFromJSON([]byte(`{"@id":"#run","@type":"CreateAction","instrument":{"@type":"PropertyValue","value":{"@id":"#tool"},"name":"tool"}}`))
	is.NoErr(err)
	tool, err := entities.New("#tool", entities.Type("SoftwareApplication"))
	is.NoErr(err)

	p.AddEntities(action, tool)
	is.Equal(p.ReferencedBy("#tool"), []string{"#run"})

	p.RemoveEntityByID("#tool")

	b, err := json.Marshal(p.EntityByID("#run"))
	is.NoErr(err)
	is.Equal(string(b), `{"@id":"#run","@type":"CreateAction","instrument":{"@type":"PropertyValue","name":"tool"}}`)
}

func TestDeletingInlineObjectUnindexesItsNestedReferences(t *testing.T) {
	is := is.New(t)
	p := New()

	doc, err := entities.NewFromJSON([]byte(`{"@id":"#doc","@type":"CreativeWork","about":{"@id":"#a","location":{"@id":"#place"}}}`))
	is.NoErr(err)
	place, err := entities.NewPlace("#place")
	is.NoErr(err)

	p.AddEntities(doc, place)
	is.Equal(p.ReferencedBy("#place"), []string{"#doc"})

	p.RemoveEntityByID("#a")

	b, err := json.Marshal(p.EntityByID("#doc"))
	is.NoErr(err)
	is.Equal(string(b), `{"@id":"#doc","@type":"CreativeWork"}`)
	is.Equal(len(p.EntityByID("#doc").LinkedTo()), 0)
	is.Equal(len(p.ReferencedBy("#place")), 0)
}

func TestMutationThroughPayloadUpdatesIndex(t *testing.T) {
	is, p := setupPayload(t)

	is.NoErr(p.RemoveProperty("data1.txt", "author"))
	is.Equal(len(p.ReferencedBy("#alice")), 0)

	is.NoErr(p.AddIDListProperties("data1.txt", "author", []string{"#alice"}))
	is.Equal(p.ReferencedBy("#alice"), []string{"data1.txt"})

	err := p.AddProperty("unknown", "name", properties.NewText("x"))
	is.True(errors.Is(err, rcerrors.ErrNotFound))
}

// Replacing an entity drops the index entries of the old version, so deleting
// something only the old version referenced leaves the new version untouched.
func TestReplaceEntityReindexes(t *testing.T) {
	is, p := setupPayload(t)

	replacement, err := entities.NewFile("data1.txt", entities.Name("Data one, v2"), entities.Author("#bob"))
	is.NoErr(err)
	p.AddEntity(replacement)

	is.Equal(len(p.ReferencedBy("#alice")), 0)
	is.Equal(len(p.ReferencedBy("#uppsala")), 0)
	is.Equal(p.ReferencedBy("#bob"), []string{"data1.txt"})
	is.Equal(len(p.DataEntities()), 1)
	is.Equal(p.EntityByID("data1.txt").Text("name"), "Data one, v2")

	p.RemoveEntityByID("#bob")
	is.True(p.EntityByID("data1.txt").Property("author") == nil)
}

func TestReplaceCanMoveEntityBetweenPartitions(t *testing.T) {
	is, p := setupPayload(t)

	asData, err := entities.NewData("#alice", entities.Type("Person"))
	is.NoErr(err)
	p.AddEntity(asData)

	is.True(p.ContextualEntityByID("#alice") == nil)
	is.True(p.DataEntityByID("#alice") != nil)
	is.Equal(p.ReferencedBy("#alice"), []string{"data1.txt"}) // referrers of the id itself survive
}

func TestEntitiesKeepRegistrationOrder(t *testing.T) {
	is, p := setupPayload(t)

	ids := []string{}
	for _, e := range p.ContextualEntities() {
		ids = append(ids, e.ID())
	}

	is.Equal(ids, []string{"#alice", "#bob", "#uppsala"})
}

func setupPayload(t *testing.T) (*is.I, *Payload) {
	is := is.New(t)
	p := New()

	alice, err := entities.NewPerson("#alice", entities.Name("Alice"))
	is.NoErr(err)
	bob, err := entities.NewPerson("#bob", entities.Name("Bob"))
	is.NoErr(err)
	place, err := entities.NewPlace("#uppsala", entities.Name("Uppsala"))
	is.NoErr(err)
	file, err := entities.NewFile("data1.txt",
		entities.Name("Data one"),
		entities.Author("#alice"),
		entities.ContentLocation("#uppsala"),
	)
	is.NoErr(err)

	p.AddEntities(file, alice, bob, place)

	return is, p
}
