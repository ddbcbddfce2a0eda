package payload

import (
	"slices"

	"github.com/diwise/ro-crate/pkg/rocrate/errors"
	"github.com/diwise/ro-crate/pkg/rocrate/types/entities"
	"github.com/diwise/ro-crate/pkg/rocrate/types/properties"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Payload is the entity graph of a crate. It keeps a reverse index from every
// referenced id to the ids of the entities holding such a reference, so that
// deleting an entity can remove all references to it without scanning the
// whole graph.
type Payload struct {
	dataEntities       *orderedmap.OrderedMap[string, *entities.Entity]
	contextualEntities *orderedmap.OrderedMap[string, *entities.Entity]
	associatedItems    map[string]map[string]struct{}
}

func New() *Payload {
	return &Payload{
		dataEntities:       orderedmap.New[string, *entities.Entity](),
		contextualEntities: orderedmap.New[string, *entities.Entity](),
		associatedItems:    map[string]map[string]struct{}{},
	}
}

// AddEntity registers e. An entity already registered under the same id is
// replaced and its outgoing references are dropped from the index.
func (p *Payload) AddEntity(e *entities.Entity) {
	if e == nil {
		return
	}

	if existing := p.EntityByID(e.ID()); existing != nil {
		p.unindex(existing)
	}

	if e.IsDataEntity() {
		p.contextualEntities.Delete(e.ID())
		p.dataEntities.Set(e.ID(), e)
	} else {
		p.dataEntities.Delete(e.ID())
		p.contextualEntities.Set(e.ID(), e)
	}

	p.index(e)
}

func (p *Payload) AddEntities(es ...*entities.Entity) {
	for _, e := range es {
		p.AddEntity(e)
	}
}

// RemoveEntityByID removes the entity and scrubs every reference to it from
// the entities that held one. Removing an unknown id is a no-op.
func (p *Payload) RemoveEntityByID(id string) {
	if removed := p.EntityByID(id); removed != nil {
		p.unindex(removed)
	}

	p.dataEntities.Delete(id)
	p.contextualEntities.Delete(id)

	for referrerID := range p.associatedItems[id] {
		if referrer := p.EntityByID(referrerID); referrer != nil {
			p.unindex(referrer)
			referrer.RemoveReferencesTo(id)
			p.index(referrer)
		}
	}

	delete(p.associatedItems, id)
}

// EntityByID returns nil if id is unknown. Contextual entities take priority.
func (p *Payload) EntityByID(id string) *entities.Entity {
	if e, ok := p.contextualEntities.Get(id); ok {
		return e
	}
	if e, ok := p.dataEntities.Get(id); ok {
		return e
	}
	return nil
}

func (p *Payload) DataEntityByID(id string) *entities.Entity {
	e, _ := p.dataEntities.Get(id)
	return e
}

func (p *Payload) ContextualEntityByID(id string) *entities.Entity {
	e, _ := p.contextualEntities.Get(id)
	return e
}

// DataEntities returns the data entities in registration order
func (p *Payload) DataEntities() []*entities.Entity {
	return values(p.dataEntities)
}

// ContextualEntities returns the contextual entities in registration order
func (p *Payload) ContextualEntities() []*entities.Entity {
	return values(p.contextualEntities)
}

func (p *Payload) AllEntities() []*entities.Entity {
	return append(p.DataEntities(), p.ContextualEntities()...)
}

func (p *Payload) Len() int {
	return p.dataEntities.Len() + p.contextualEntities.Len()
}

// ReferencedBy returns the ids of the entities that reference id
func (p *Payload) ReferencedBy(id string) []string {
	referrers := make([]string, 0, len(p.associatedItems[id]))
	for referrerID := range p.associatedItems[id] {
		if p.EntityByID(referrerID) != nil {
			referrers = append(referrers, referrerID)
		}
	}
	slices.Sort(referrers)
	return referrers
}

// AddProperty changes a registered entity and updates the index
func (p *Payload) AddProperty(id, name string, value properties.Value) error {
	return p.edit(id, func(e *entities.Entity) { e.AddProperty(name, value) })
}

func (p *Payload) AddIDProperty(id, name, referencedID string) error {
	return p.edit(id, func(e *entities.Entity) { e.AddIDProperty(name, referencedID) })
}

func (p *Payload) AddIDListProperties(id, name string, referencedIDs []string) error {
	return p.edit(id, func(e *entities.Entity) { e.AddIDListProperties(name, referencedIDs) })
}

func (p *Payload) RemoveProperty(id, name string) error {
	return p.edit(id, func(e *entities.Entity) { e.RemoveProperty(name) })
}

func (p *Payload) edit(id string, fn func(e *entities.Entity)) error {
	e := p.EntityByID(id)
	if e == nil {
		return errors.NewNotFoundError("no entity with id " + id)
	}

	p.unindex(e)
	fn(e)
	p.index(e)

	return nil
}

func (p *Payload) index(e *entities.Entity) {
	for _, target := range e.LinkedTo() {
		referrers, ok := p.associatedItems[target]
		if !ok {
			referrers = map[string]struct{}{}
			p.associatedItems[target] = referrers
		}
		referrers[e.ID()] = struct{}{}
	}
}

func (p *Payload) unindex(e *entities.Entity) {
	for _, target := range e.LinkedTo() {
		if referrers, ok := p.associatedItems[target]; ok {
			delete(referrers, e.ID())
			if len(referrers) == 0 {
				delete(p.associatedItems, target)
			}
		}
	}
}

func values(om *orderedmap.OrderedMap[string, *entities.Entity]) []*entities.Entity {
	result := make([]*entities.Entity, 0, om.Len())
	for pair := om.Oldest(); pair != nil; pair = pair.Next() {
		result = append(result, pair.Value)
	}
	return result
}
