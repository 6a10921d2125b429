package ecs

import (
	"reflect"

	"github.com/rotisserie/eris"
)

// ComponentRegistry assigns a ComponentID to each component type on first
// registration and owns the ComponentStore for that type. IDs are handed out
// in registration order and never reused.
type ComponentRegistry struct {
	ids    map[reflect.Type]ComponentID
	types  []reflect.Type
	stores []componentStorage
}

func newComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		ids:    make(map[reflect.Type]ComponentID),
		types:  make([]reflect.Type, 0, 16),
		stores: make([]componentStorage, 0, 16),
	}
}

// register returns the ID of t, allocating it and building a store with
// factory if t is new. The bool is true when t was newly registered.
func (r *ComponentRegistry) register(t reflect.Type, factory func() componentStorage) (ComponentID, bool, error) {
	if id, ok := r.ids[t]; ok {
		return id, false, nil
	}
	if len(r.types) >= MaxComponentTypes {
		return 0, false, eris.Wrapf(ErrCapacityExceeded, "cannot register %s: signature holds %d component types", t, MaxComponentTypes)
	}

	id := ComponentID(len(r.types))
	r.ids[t] = id
	r.types = append(r.types, t)
	r.stores = append(r.stores, factory())
	return id, true, nil
}

// Lookup returns the ID of a registered component type.
func (r *ComponentRegistry) Lookup(t reflect.Type) (ComponentID, error) {
	id, ok := r.ids[t]
	if !ok {
		return 0, eris.Wrapf(ErrUnregisteredType, "%s", t)
	}
	return id, nil
}

// Len returns the number of registered component types.
func (r *ComponentRegistry) Len() int {
	return len(r.types)
}

// Type returns the component type registered under id, or nil.
func (r *ComponentRegistry) Type(id ComponentID) reflect.Type {
	if int(id) >= len(r.types) {
		return nil
	}
	return r.types[id]
}

// Types returns the registered component types indexed by ComponentID.
func (r *ComponentRegistry) Types() []reflect.Type {
	return r.types
}

// Name returns a printable name for id.
func (r *ComponentRegistry) Name(id ComponentID) string {
	if t := r.Type(id); t != nil {
		return t.String()
	}
	return "<unregistered>"
}

func (r *ComponentRegistry) storage(id ComponentID) componentStorage {
	return r.stores[id]
}

func (r *ComponentRegistry) entityDestroyed(e Entity) {
	for _, s := range r.stores {
		s.EntityDestroyed(e)
	}
}

// store returns the typed store for T.
func store[T any](r *ComponentRegistry) (*ComponentStore[T], ComponentID, error) {
	t := reflect.TypeFor[T]()
	id, err := r.Lookup(t)
	if err != nil {
		return nil, 0, err
	}
	return r.stores[id].(*ComponentStore[T]), id, nil
}

func registerComponent[T any](r *ComponentRegistry) (ComponentID, bool, error) {
	return r.register(reflect.TypeFor[T](), func() componentStorage {
		return newComponentStore[T]()
	})
}
