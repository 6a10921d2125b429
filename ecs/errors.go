package ecs

import "github.com/rotisserie/eris"

// Errors returned by the World and its registries. They are wrapped with
// context (entity, type name) so callers should compare with errors.Is.
var (
	// ErrCapacityExceeded is returned when the entity pool is exhausted or when
	// more component types are registered than a Signature can hold.
	ErrCapacityExceeded = eris.New("capacity exceeded")

	// ErrInvalidEntity is returned for operations on an entity that is not live.
	ErrInvalidEntity = eris.New("invalid entity")

	// ErrUnregisteredType is returned when a component type is used before it
	// has been registered.
	ErrUnregisteredType = eris.New("component type not registered")

	// ErrUnregisteredSystem is returned when a requirement is set for a system
	// type that was never registered.
	ErrUnregisteredSystem = eris.New("system type not registered")

	// ErrDuplicateComponent is returned when adding a component the entity
	// already holds.
	ErrDuplicateComponent = eris.New("duplicate component")

	// ErrMissingComponent is returned when reading or removing a component the
	// entity does not hold.
	ErrMissingComponent = eris.New("missing component")
)
