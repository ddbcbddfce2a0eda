package entities

import (
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/diwise/ro-crate/pkg/rocrate/errors"
	"github.com/diwise/ro-crate/pkg/rocrate/types"
	"github.com/diwise/ro-crate/pkg/rocrate/types/properties"
)

// ID sets the entity id, overriding the one given to the constructor
func ID(entityID string) EntityDecoratorFunc {
	return func(e *Entity) {
		if strings.TrimSpace(entityID) == "" {
			e.err = errors.NewInvalidIdentifierError(entityID)
			return
		}
		e.id = entityID
	}
}

func Type(entityTypes ...string) EntityDecoratorFunc {
	return func(e *Entity) { e.AddType(entityTypes...) }
}

func P(name string, value properties.Value) EntityDecoratorFunc {
	return func(e *Entity) { e.AddProperty(name, value) }
}

// Ref adds a reference to another entity under name
func Ref(name, id string) EntityDecoratorFunc {
	return func(e *Entity) { e.AddIDProperty(name, id) }
}

func Refs(name string, ids ...string) EntityDecoratorFunc {
	return func(e *Entity) { e.AddIDListProperties(name, ids) }
}

func Text(name, value string) EntityDecoratorFunc {
	return P(name, properties.NewText(value))
}

func Number(name string, value float64) EntityDecoratorFunc {
	return P(name, properties.NewNumber(value))
}

func Integer(name string, value int64) EntityDecoratorFunc {
	return P(name, properties.NewInteger(value))
}

func Bool(name string, value bool) EntityDecoratorFunc {
	return P(name, properties.NewBool(value))
}

func Name(name string) EntityDecoratorFunc {
	return Text(properties.Name, name)
}

func Description(description string) EntityDecoratorFunc {
	return Text(properties.Description, description)
}

func DatePublished(date string) EntityDecoratorFunc {
	return Text(properties.DatePublished, date)
}

func License(id string) EntityDecoratorFunc {
	return Ref(properties.License, id)
}

func Author(ids ...string) EntityDecoratorFunc {
	return Refs(properties.Author, ids...)
}

func ContentLocation(id string) EntityDecoratorFunc {
	return Ref(properties.ContentLocation, id)
}

func Affiliation(id string) EntityDecoratorFunc {
	return Ref(properties.Affiliation, id)
}

func EncodingFormat(format string) EntityDecoratorFunc {
	return Text(properties.EncodingFormat, format)
}

func ContentSize(size int64) EntityDecoratorFunc {
	return Integer(properties.ContentSize, size)
}

func Email(email string) EntityDecoratorFunc {
	return Text(properties.Email, email)
}

func URL(u string) EntityDecoratorFunc {
	return Text(properties.URL, u)
}

func Identifier(identifier string) EntityDecoratorFunc {
	return Text(properties.Identifier, identifier)
}

// Geo adds an inline GeoCoordinates object to a place
func Geo(latitude, longitude float64) EntityDecoratorFunc {
	coordinates := properties.NewMap()
	coordinates.Set(types.KeywordType, properties.NewText(types.GeoCoordinatesTypeName))
	coordinates.Set("latitude", properties.NewNumber(latitude))
	coordinates.Set("longitude", properties.NewNumber(longitude))

	return P(properties.Geo, properties.NewObject(coordinates))
}

func HasPart(ids ...string) EntityDecoratorFunc {
	return func(e *Entity) { e.AddHasPart(ids...) }
}

// DataEntity turns the entity into a data entity. References in the hasPart
// property of a dataset are moved into the structural part list, any other
// values stay behind as a plain property.
func DataEntity() EntityDecoratorFunc {
	return func(e *Entity) {
		e.category = Data

		if e.HasType(types.DatasetTypeName) {
			if parts := e.properties.Get(types.PropertyHasPart); parts != nil {
				e.AddHasPart(properties.ReferencedIDs(parts)...)

				if rest := properties.WithoutReferences(parts); rest != nil {
					e.properties.Set(types.PropertyHasPart, rest)
				} else {
					e.properties.Delete(types.PropertyHasPart)
				}
			}
		}
	}
}

// ContentFrom binds the entity to path inside fsys
func ContentFrom(fsys fs.FS, path string) EntityDecoratorFunc {
	return func(e *Entity) {
		e.category = Data
		e.content = &Content{FS: fsys, Path: path}
	}
}

// LocalContent binds the entity to a file or directory on the local disk
func LocalContent(path string) EntityDecoratorFunc {
	return func(e *Entity) {
		abs, err := filepath.Abs(path)
		if err != nil {
			e.err = err
			return
		}

		if _, err := os.Stat(abs); err != nil {
			e.err = err
			return
		}

		e.category = Data
		e.content = &Content{
			FS:   os.DirFS(filepath.Dir(abs)),
			Path: filepath.Base(abs),
		}
	}
}

// RemoteContent marks the entity as a web resource. The url becomes the id
// unless one was given.
func RemoteContent(u string) EntityDecoratorFunc {
	return func(e *Entity) {
		parsed, err := url.ParseRequestURI(u)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			e.err = errors.NewInvalidIdentifierError(u)
			return
		}

		e.category = Data
		if e.id == "" {
			e.id = u
		}
	}
}
