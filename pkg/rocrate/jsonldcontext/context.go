package jsonldcontext

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/diwise/ro-crate/pkg/rocrate/types/entities"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Context is the merged vocabulary of a crate. It remembers where its terms
// came from so that it can be written back in the same shape, and it answers
// whether the types and property names of an entity are known terms.
type Context struct {
	loader *Loader

	sources     []string
	sourceTerms map[string]map[string]string
	unavailable map[string]error
	inline      *orderedmap.OrderedMap[string, json.RawMessage]

	merged map[string]string
}

func newContext(l *Loader) *Context {
	return &Context{
		loader:      l,
		sources:     []string{},
		sourceTerms: map[string]map[string]string{},
		unavailable: map[string]error{},
		inline:      orderedmap.New[string, json.RawMessage](),
	}
}

func (c *Context) appendSource(source string, terms map[string]string, err error) {
	c.sources = append(c.sources, source)
	if err != nil {
		c.unavailable[source] = err
	} else {
		c.sourceTerms[source] = terms
	}
	c.merged = nil
}

func (c *Context) mergeInline(raw []byte) error {
	pairs := orderedmap.New[string, json.RawMessage]()
	if err := pairs.UnmarshalJSON(raw); err != nil {
		return fmt.Errorf("inline context must be a json object: %w", err)
	}

	for pair := pairs.Oldest(); pair != nil; pair = pair.Next() {
		c.inline.Set(pair.Key, pair.Value)
	}
	c.merged = nil

	return nil
}

// AddURL appends a vocabulary source. A source that cannot be resolved is
// logged and kept in the wire form, but contributes no terms.
func (c *Context) AddURL(ctx context.Context, source string) {
	if source == "" || slices.Contains(c.sources, source) {
		return
	}

	terms, err := c.loader.resolve(ctx, source)
	if err != nil {
		logging.GetFromContext(ctx).Warn("skipping context source", "url", source, "err", err.Error())
	}

	c.appendSource(source, terms, err)
}

func (c *Context) RemoveURL(source string) {
	c.sources = slices.DeleteFunc(c.sources, func(s string) bool { return s == source })
	delete(c.sourceTerms, source)
	delete(c.unavailable, source)
	c.merged = nil
}

// Add stores an inline term definition, replacing any previous one
func (c *Context) Add(term, iri string) {
	b, _ := json.Marshal(iri)
	c.inline.Set(term, b)
	c.merged = nil
}

// Delete removes an inline term definition. Terms from url sources can only
// be removed together with their source.
func (c *Context) Delete(term string) {
	c.inline.Delete(term)
	c.merged = nil
}

func (c *Context) Sources() []string {
	return slices.Clone(c.sources)
}

// Unavailable returns the sources that could not be resolved, in order
func (c *Context) Unavailable() []string {
	result := []string{}
	for _, s := range c.sources {
		if _, ok := c.unavailable[s]; ok {
			result = append(result, s)
		}
	}
	return result
}

// Terms returns a copy of the merged term to IRI map
func (c *Context) Terms() map[string]string {
	return maps.Clone(c.terms())
}

func (c *Context) terms() map[string]string {
	if c.merged != nil {
		return c.merged
	}

	merged := map[string]string{}
	for _, source := range c.sources {
		maps.Copy(merged, c.sourceTerms[source])
	}
	for pair := c.inline.Oldest(); pair != nil; pair = pair.Next() {
		if iri, ok := termIRI(pair.Value); ok {
			merged[pair.Key] = iri
		}
	}

	c.merged = merged
	return merged
}

func (c *Context) HasTerm(term string) bool {
	_, ok := c.terms()[term]
	return ok
}

// CheckEntity reports whether every type and property name of e is a known
// term. It is advisory and never enforced when entities are changed.
func (c *Context) CheckEntity(e *entities.Entity) bool {
	return len(c.MissingTerms(e)) == 0
}

// MissingTerms returns the types and property names of e that the context does
// not define
func (c *Context) MissingTerms(e *entities.Entity) []string {
	missing := []string{}
	if e == nil {
		return missing
	}

	for _, term := range append(e.Types(), e.PropertyNames()...) {
		if !c.HasTerm(term) && !slices.Contains(missing, term) {
			missing = append(missing, term)
		}
	}

	return missing
}

// JSON returns the @context value: a single string for one source without
// inline terms, otherwise an array of the sources followed by one object
// holding the inline terms
func (c *Context) JSON() json.RawMessage {
	b, _ := c.MarshalJSON()
	return b
}

func (c *Context) MarshalJSON() ([]byte, error) {
	if len(c.sources) == 1 && c.inline.Len() == 0 {
		return json.Marshal(c.sources[0])
	}

	elements := make([]any, 0, len(c.sources)+1)
	for _, s := range c.sources {
		elements = append(elements, s)
	}
	if c.inline.Len() > 0 {
		elements = append(elements, c.inline)
	}

	return json.Marshal(elements)
}
