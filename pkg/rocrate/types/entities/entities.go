package entities

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"github.com/diwise/ro-crate/pkg/rocrate/errors"
	"github.com/diwise/ro-crate/pkg/rocrate/types"
	"github.com/diwise/ro-crate/pkg/rocrate/types/properties"
	"github.com/google/uuid"
)

type Category int

const (
	Contextual Category = iota
	Data
)

func (c Category) String() string {
	if c == Data {
		return "data"
	}
	return "contextual"
}

type EntityDecoratorFunc func(e *Entity)

// Content is the physical artifact backing a data entity
type Content struct {
	FS   fs.FS
	Path string
}

func (c Content) IsDir() bool {
	info, err := fs.Stat(c.FS, c.Path)
	return err == nil && info.IsDir()
}

// Entity is a node in the crate graph. Once registered with a payload, its
// properties should only be changed through the payload so that the reverse
// index stays in sync.
type Entity struct {
	id         string
	types      []string
	properties *properties.Map
	category   Category
	content    *Content
	parts      []string

	err error
}

// New builds a contextual entity. An empty id is replaced by a generated one.
func New(entityID string, decorators ...EntityDecoratorFunc) (*Entity, error) {
	return build(entityID, Contextual, decorators...)
}

// NewData builds a data entity. Unless an id is given, entities with local
// content are identified by the name of that content.
func NewData(entityID string, decorators ...EntityDecoratorFunc) (*Entity, error) {
	return build(entityID, Data, decorators...)
}

func build(entityID string, category Category, decorators ...EntityDecoratorFunc) (*Entity, error) {
	if entityID != "" && strings.TrimSpace(entityID) == "" {
		return nil, errors.NewInvalidIdentifierError(entityID)
	}

	e := &Entity{
		id:         entityID,
		types:      []string{},
		properties: properties.NewMap(),
		category:   category,
	}

	for _, decorator := range decorators {
		decorator(e)
	}

	return e.finish()
}

func (e *Entity) finish() (*Entity, error) {
	if e.err != nil {
		return nil, e.err
	}

	if e.id == "" {
		if e.content != nil {
			e.id = contentID(*e.content)
		} else {
			e.id = "#" + uuid.NewString()
		}
	}

	if len(e.types) == 0 {
		return nil, fmt.Errorf("entity %s must have at least one type", e.id)
	}

	return e, nil
}

func contentID(c Content) string {
	name := c.Path
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	if c.IsDir() {
		name = name + "/"
	}
	return name
}

// NewFromJSON parses a single JSON-LD node into a contextual entity. The
// decorators are applied after parsing.
func NewFromJSON(body []byte, decorators ...EntityDecoratorFunc) (*Entity, error) {
	contents, err := properties.DecodeMap(body)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal entity: %w", err)
	}

	entityID := ""
	if s, ok := contents.Get(types.KeywordID).(properties.Scalar); ok {
		entityID, _ = s.Text()
	}

	if entityID == "" {
		return nil, fmt.Errorf("failed to parse entity: missing %s", types.KeywordID)
	}

	entityTypes := textValues(contents.Get(types.KeywordType))

	contents.Delete(types.KeywordID)
	contents.Delete(types.KeywordType)

	e := &Entity{
		id:         entityID,
		properties: contents,
		category:   Contextual,
	}
	e.AddType(entityTypes...)

	for _, decorator := range decorators {
		decorator(e)
	}

	return e.finish()
}

func textValues(v properties.Value) []string {
	values := []string{}

	switch typed := v.(type) {
	case properties.Scalar:
		values = append(values, typed.String())
	case properties.List:
		for _, element := range typed {
			if s, ok := element.(properties.Scalar); ok {
				values = append(values, s.String())
			}
		}
	}

	return values
}

func (e *Entity) ID() string {
	return e.id
}

func (e *Entity) Types() []string {
	return slices.Clone(e.types)
}

func (e *Entity) HasType(t string) bool {
	return slices.Contains(e.types, t)
}

func (e *Entity) Category() Category {
	return e.category
}

func (e *Entity) IsDataEntity() bool {
	return e.category == Data
}

// Content returns the bound physical content, or nil for contextual and
// remote data entities
func (e *Entity) Content() *Content {
	return e.content
}

func (e *Entity) Property(name string) properties.Value {
	return e.properties.Get(name)
}

// Text returns the textual form of a scalar property, or an empty string
func (e *Entity) Text(name string) string {
	if s, ok := e.properties.Get(name).(properties.Scalar); ok {
		return s.String()
	}
	return ""
}

// Properties returns a copy of the property map
func (e *Entity) Properties() *properties.Map {
	return e.properties.Clone()
}

func (e *Entity) PropertyNames() []string {
	names := e.properties.Keys()
	if len(e.parts) > 0 && !slices.Contains(names, types.PropertyHasPart) {
		names = append(names, types.PropertyHasPart)
	}
	return names
}

func (e *Entity) AddType(entityTypes ...string) {
	for _, t := range entityTypes {
		if t != "" && !slices.Contains(e.types, t) {
			e.types = append(e.types, t)
		}
	}
}

// AddProperty stores value under name, replacing any existing value. Empty
// values and the @id and @type keywords are ignored.
func (e *Entity) AddProperty(name string, value properties.Value) {
	if name == types.KeywordID || name == types.KeywordType {
		return
	}
	e.properties.Set(name, value)
}

// AddIDProperty adds a reference to id under name, promoting an existing
// single reference into a list. Ids that are already present are not added.
func (e *Entity) AddIDProperty(name, id string) {
	if id == "" {
		return
	}
	e.AddProperty(name, properties.AddReference(e.properties.Get(name), id))
}

func (e *Entity) AddIDListProperties(name string, ids []string) {
	v := e.properties.Get(name)
	for _, id := range ids {
		if id != "" {
			v = properties.AddReference(v, id)
		}
	}
	e.AddProperty(name, v)
}

func (e *Entity) RemoveProperty(name string) {
	e.properties.Delete(name)
}

func (e *Entity) RemoveProperties(names ...string) {
	for _, name := range names {
		e.properties.Delete(name)
	}
}

// HasPart returns the ids of the data entities aggregated by this entity
func (e *Entity) HasPart() []string {
	return slices.Clone(e.parts)
}

func (e *Entity) AddHasPart(ids ...string) {
	for _, id := range ids {
		if id != "" && !slices.Contains(e.parts, id) {
			e.parts = append(e.parts, id)
		}
	}
}

func (e *Entity) RemoveHasPart(id string) {
	e.parts = slices.DeleteFunc(e.parts, func(part string) bool { return part == id })
}

// LinkedTo returns every id referenced anywhere in the entity
func (e *Entity) LinkedTo() []string {
	linked := []string{}

	e.properties.Each(func(_ string, value properties.Value) {
		for _, id := range properties.IDs(value) {
			if !slices.Contains(linked, id) {
				linked = append(linked, id)
			}
		}
	})

	for _, id := range e.parts {
		if !slices.Contains(linked, id) {
			linked = append(linked, id)
		}
	}

	return linked
}

// RemoveReferencesTo scrubs every occurrence of id from the entity and
// reports whether anything was removed
func (e *Entity) RemoveReferencesTo(id string) bool {
	changed := false

	for _, name := range e.properties.Keys() {
		before := e.properties.Get(name)
		after := properties.RemoveReferences(before, id)

		if after == nil {
			e.properties.Delete(name)
			changed = true
		} else if !properties.Equal(before, after) {
			e.properties.Set(name, after)
			changed = true
		}
	}

	if slices.Contains(e.parts, id) {
		e.RemoveHasPart(id)
		changed = true
	}

	return changed
}

func (e *Entity) MarshalJSON() ([]byte, error) {
	contents := properties.NewMap()
	contents.Set(types.KeywordID, properties.NewText(e.id))

	typeList := properties.List{}
	for _, t := range e.types {
		typeList = append(typeList, properties.NewText(t))
	}
	contents.Set(types.KeywordType, typeList)

	e.properties.Each(func(name string, value properties.Value) {
		contents.Set(name, value)
	})

	if len(e.parts) > 0 {
		parts := properties.List{}
		for _, id := range e.parts {
			parts = append(parts, properties.Ref(id))
		}

		switch rest := e.properties.Get(types.PropertyHasPart).(type) {
		case nil:
		case properties.List:
			parts = append(parts, rest...)
		default:
			parts = append(parts, rest)
		}

		contents.Set(types.PropertyHasPart, parts)
	}

	return contents.MarshalJSON()
}

// String returns the JSON-LD form of the entity, mostly for logging
func (e *Entity) String() string {
	b, err := json.Marshal(e)
	if err != nil {
		return e.id
	}
	return string(b)
}
