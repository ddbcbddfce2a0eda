package entities

import (
	"github.com/diwise/ro-crate/pkg/rocrate/types"
	"github.com/diwise/ro-crate/pkg/rocrate/types/properties"
)

func prepend(decorator EntityDecoratorFunc, decorators []EntityDecoratorFunc) []EntityDecoratorFunc {
	return append([]EntityDecoratorFunc{decorator}, decorators...)
}

// NewFile creates a data entity of type File
func NewFile(entityID string, decorators ...EntityDecoratorFunc) (*Entity, error) {
	return NewData(entityID, prepend(Type(types.FileTypeName), decorators)...)
}

// NewDataset creates a directory like data entity
func NewDataset(entityID string, decorators ...EntityDecoratorFunc) (*Entity, error) {
	return NewData(entityID, prepend(Type(types.DatasetTypeName), decorators)...)
}

// NewRootDataset creates the dataset that represents the crate as a whole
func NewRootDataset(decorators ...EntityDecoratorFunc) (*Entity, error) {
	return NewDataset(types.RootID, decorators...)
}

// NewWorkflow creates a data entity describing a computational workflow
func NewWorkflow(entityID string, decorators ...EntityDecoratorFunc) (*Entity, error) {
	return NewData(entityID, prepend(Type(
		types.FileTypeName,
		types.SoftwareSourceCodeTypeName,
		types.ComputationalWorkflowTypeName,
	), decorators)...)
}

func NewPerson(entityID string, decorators ...EntityDecoratorFunc) (*Entity, error) {
	return New(entityID, prepend(Type(types.PersonTypeName), decorators)...)
}

func NewOrganization(entityID string, decorators ...EntityDecoratorFunc) (*Entity, error) {
	return New(entityID, prepend(Type(types.OrganizationTypeName), decorators)...)
}

func NewPlace(entityID string, decorators ...EntityDecoratorFunc) (*Entity, error) {
	return New(entityID, prepend(Type(types.PlaceTypeName), decorators)...)
}

func NewContactPoint(entityID string, decorators ...EntityDecoratorFunc) (*Entity, error) {
	return New(entityID, prepend(Type(types.ContactPointTypeName), decorators)...)
}

func NewCreativeWork(entityID string, decorators ...EntityDecoratorFunc) (*Entity, error) {
	return New(entityID, prepend(Type(types.CreativeWorkTypeName), decorators)...)
}

// NewAction creates a CreateAction unless other types are decorated
func NewAction(entityID string, decorators ...EntityDecoratorFunc) (*Entity, error) {
	return New(entityID, append(decorators, func(e *Entity) {
		if len(e.types) == 0 {
			e.AddType(types.CreateActionTypeName)
		}
	})...)
}

// NewDescriptor creates the entity describing the metadata document itself
func NewDescriptor(decorators ...EntityDecoratorFunc) (*Entity, error) {
	decorators = append([]EntityDecoratorFunc{
		Type(types.CreativeWorkTypeName),
		Ref(properties.ConformsTo, types.ProfileURL),
		Ref(properties.About, types.RootID),
	}, decorators...)

	return New(types.DescriptorID, decorators...)
}

func IsDataset(e *Entity) bool {
	return e != nil && e.IsDataEntity() && e.HasType(types.DatasetTypeName)
}

func IsFile(e *Entity) bool {
	return e != nil && e.IsDataEntity() && e.HasType(types.FileTypeName)
}

func IsPerson(e *Entity) bool {
	return e != nil && !e.IsDataEntity() && e.HasType(types.PersonTypeName)
}

func IsRoot(e *Entity) bool {
	return IsDataset(e) && e.ID() == types.RootID
}

func IsDescriptor(e *Entity) bool {
	return e != nil && e.ID() == types.DescriptorID
}

// NewContextual is an alias for New that reads better next to NewData
func NewContextual(entityID string, decorators ...EntityDecoratorFunc) (*Entity, error) {
	return New(entityID, decorators...)
}
