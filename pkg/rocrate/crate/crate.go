package crate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"

	"github.com/diwise/ro-crate/pkg/rocrate/errors"
	"github.com/diwise/ro-crate/pkg/rocrate/jsonldcontext"
	"github.com/diwise/ro-crate/pkg/rocrate/payload"
	"github.com/diwise/ro-crate/pkg/rocrate/types"
	"github.com/diwise/ro-crate/pkg/rocrate/types/entities"
	"github.com/diwise/ro-crate/pkg/rocrate/types/properties"
	"github.com/diwise/ro-crate/pkg/rocrate/validation"
)

// Crate is a complete RO-Crate: the root data entity, the metadata
// descriptor, the vocabulary context, the entity graph and any files that are
// carried along without being described.
type Crate struct {
	root       *entities.Entity
	descriptor *entities.Entity
	context    *jsonldcontext.Context
	payload    *payload.Payload
	untracked  []entities.Content
}

type CrateOption func(*Crate)

func WithContext(c *jsonldcontext.Context) CrateOption {
	return func(cr *Crate) {
		if c != nil {
			cr.context = c
		}
	}
}

func WithDescriptor(descriptor *entities.Entity) CrateOption {
	return func(cr *Crate) {
		if descriptor != nil {
			cr.descriptor = descriptor
		}
	}
}

// New creates a crate around root. Unless given, the descriptor points at
// root and the context is the bundled RO-Crate vocabulary.
func New(root *entities.Entity, options ...CrateOption) (*Crate, error) {
	if root == nil || !root.IsDataEntity() {
		return nil, errors.NewMalformedCrateError("the root must be a data entity")
	}

	c := &Crate{
		root:      root,
		payload:   payload.New(),
		untracked: []entities.Content{},
	}

	for _, option := range options {
		option(c)
	}

	if c.descriptor == nil {
		var err error
		c.descriptor, err = entities.NewDescriptor(entities.P(properties.About, properties.Ref(root.ID())))
		if err != nil {
			return nil, err
		}
	}

	if c.context == nil {
		c.context = jsonldcontext.NewLoader(jsonldcontext.Offline(true)).Default()
	}

	return c, nil
}

func (c *Crate) Root() *entities.Entity {
	return c.root
}

func (c *Crate) Descriptor() *entities.Entity {
	return c.descriptor
}

func (c *Crate) Context() *jsonldcontext.Context {
	return c.context
}

func (c *Crate) SetContext(ctx *jsonldcontext.Context) {
	if ctx != nil {
		c.context = ctx
	}
}

// AddDataEntity registers e and lists it in the hasPart of the root
func (c *Crate) AddDataEntity(e *entities.Entity) error {
	if e == nil || !e.IsDataEntity() {
		return fmt.Errorf("not a data entity: %v", e)
	}
	if err := c.checkID(e.ID()); err != nil {
		return err
	}

	c.payload.AddEntity(e)
	c.root.AddHasPart(e.ID())

	return nil
}

func (c *Crate) AddContextualEntity(e *entities.Entity) error {
	if e == nil || e.IsDataEntity() {
		return fmt.Errorf("not a contextual entity: %v", e)
	}
	if err := c.checkID(e.ID()); err != nil {
		return err
	}

	c.payload.AddEntity(e)

	return nil
}

// AddEntity registers e as a data or contextual entity depending on its category
func (c *Crate) AddEntity(e *entities.Entity) error {
	if e != nil && e.IsDataEntity() {
		return c.AddDataEntity(e)
	}
	return c.AddContextualEntity(e)
}

func (c *Crate) checkID(id string) error {
	if id == c.root.ID() || id == c.descriptor.ID() {
		return errors.NewInvalidIdentifierError(id)
	}
	return nil
}

// RemoveEntityByID removes the entity and every reference to it, including
// references held by the root and the descriptor. The root and the
// descriptor cannot be removed.
func (c *Crate) RemoveEntityByID(id string) {
	if id == c.root.ID() || id == c.descriptor.ID() {
		return
	}

	c.payload.RemoveEntityByID(id)
	c.root.RemoveReferencesTo(id)
	c.descriptor.RemoveReferencesTo(id)
}

// EntityByID looks among the root, the descriptor and the payload
func (c *Crate) EntityByID(id string) *entities.Entity {
	switch id {
	case c.root.ID():
		return c.root
	case c.descriptor.ID():
		return c.descriptor
	}
	return c.payload.EntityByID(id)
}

func (c *Crate) DataEntities() []*entities.Entity {
	return c.payload.DataEntities()
}

func (c *Crate) ContextualEntities() []*entities.Entity {
	return c.payload.ContextualEntities()
}

// ReferencedBy returns the ids of the payload entities referencing id
func (c *Crate) ReferencedBy(id string) []string {
	return c.payload.ReferencedBy(id)
}

func (c *Crate) UntrackedFiles() []entities.Content {
	return append([]entities.Content{}, c.untracked...)
}

// AddUntrackedFile carries a file along without describing it. Reserved names
// are ignored.
func (c *Crate) AddUntrackedFile(fsys fs.FS, path string) {
	if types.IsReserved(path) {
		return
	}
	c.untracked = append(c.untracked, entities.Content{FS: fsys, Path: path})
}

// AddProperty changes the root, the descriptor or a payload entity
func (c *Crate) AddProperty(id, name string, value properties.Value) error {
	return c.edit(id,
		func(e *entities.Entity) { e.AddProperty(name, value) },
		func() error { return c.payload.AddProperty(id, name, value) },
	)
}

func (c *Crate) AddIDProperty(id, name, referencedID string) error {
	return c.edit(id,
		func(e *entities.Entity) { e.AddIDProperty(name, referencedID) },
		func() error { return c.payload.AddIDProperty(id, name, referencedID) },
	)
}

func (c *Crate) RemoveProperty(id, name string) error {
	return c.edit(id,
		func(e *entities.Entity) { e.RemoveProperty(name) },
		func() error { return c.payload.RemoveProperty(id, name) },
	)
}

func (c *Crate) edit(id string, fixed func(*entities.Entity), inPayload func() error) error {
	switch id {
	case c.root.ID():
		fixed(c.root)
		return nil
	case c.descriptor.ID():
		fixed(c.descriptor)
		return nil
	}
	return inPayload()
}

// CheckContext returns the ids of the entities using types or property names
// that the context does not define
func (c *Crate) CheckContext() []string {
	unknown := []string{}
	for _, e := range c.all() {
		if !c.context.CheckEntity(e) {
			unknown = append(unknown, e.ID())
		}
	}
	return unknown
}

// Validate runs v against the serialized crate
func (c *Crate) Validate(ctx context.Context, v validation.Validator) error {
	b, err := c.MarshalJSON()
	if err != nil {
		return err
	}
	return v.Validate(ctx, b)
}

func (c *Crate) all() []*entities.Entity {
	return append([]*entities.Entity{c.descriptor, c.root}, c.payload.AllEntities()...)
}

// Encode writes the metadata document. The graph lists the descriptor, the
// root, the data entities and the contextual entities, in that order.
func (c *Crate) Encode(w io.Writer, indent bool) error {
	doc := struct {
		Context json.RawMessage    `json:"@context"`
		Graph   []*entities.Entity `json:"@graph"`
	}{
		Context: c.context.JSON(),
		Graph:   c.all(),
	}

	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	if indent {
		encoder.SetIndent("", "  ")
	}

	return encoder.Encode(doc)
}

func (c *Crate) MarshalJSON() ([]byte, error) {
	buffer := &bytes.Buffer{}
	if err := c.Encode(buffer, false); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buffer.Bytes(), "\n"), nil
}
