package ecs

import (
	"iter"
	"reflect"

	"github.com/kamstrup/intmap"
	"github.com/rotisserie/eris"
)

// componentStorage is the type-erased view of a ComponentStore used by the
// registry for destruction fan-out and by tooling for inspection.
type componentStorage interface {
	Type() reflect.Type
	Has(e Entity) bool
	Len() int
	Entities() []Entity
	EntityDestroyed(e Entity)
	getAny(e Entity) (any, bool)
}

// ComponentStore holds every instance of one component type in a densely
// packed slice. Lookups go through an entity→slot index; removal swaps the
// last element into the freed slot so the slice never has holes.
//
// Pointers returned by Get are valid until the next insert or remove on the
// same store.
type ComponentStore[T any] struct {
	typ      reflect.Type
	values   []T
	entities []Entity // slot -> entity
	index    *intmap.Map[Entity, int]
}

func newComponentStore[T any]() *ComponentStore[T] {
	return &ComponentStore[T]{
		typ:      reflect.TypeFor[T](),
		values:   make([]T, 0, 64),
		entities: make([]Entity, 0, 64),
		index:    intmap.New[Entity, int](64),
	}
}

// Type returns the component type held by the store.
func (s *ComponentStore[T]) Type() reflect.Type {
	return s.typ
}

func (s *ComponentStore[T]) insert(e Entity, value T) (*T, error) {
	if _, ok := s.index.Get(e); ok {
		return nil, eris.Wrapf(ErrDuplicateComponent, "entity %d already has %s", e, s.typ)
	}
	slot := len(s.values)
	s.values = append(s.values, value)
	s.entities = append(s.entities, e)
	s.index.Put(e, slot)
	return &s.values[slot], nil
}

func (s *ComponentStore[T]) remove(e Entity) error {
	slot, ok := s.index.Get(e)
	if !ok {
		return eris.Wrapf(ErrMissingComponent, "entity %d has no %s", e, s.typ)
	}

	last := len(s.values) - 1
	if slot != last {
		moved := s.entities[last]
		s.values[slot] = s.values[last]
		s.entities[slot] = moved
		s.index.Put(moved, slot)
	}

	var zero T
	s.values[last] = zero
	s.values = s.values[:last]
	s.entities = s.entities[:last]
	s.index.Del(e)
	return nil
}

// Get returns a pointer to the component held by e.
func (s *ComponentStore[T]) Get(e Entity) (*T, error) {
	slot, ok := s.index.Get(e)
	if !ok {
		return nil, eris.Wrapf(ErrMissingComponent, "entity %d has no %s", e, s.typ)
	}
	return &s.values[slot], nil
}

// Has reports whether e holds a component in this store.
func (s *ComponentStore[T]) Has(e Entity) bool {
	_, ok := s.index.Get(e)
	return ok
}

// Len returns the number of stored components.
func (s *ComponentStore[T]) Len() int {
	return len(s.values)
}

// Entities returns the owners of the stored components in slot order.
// The slice is owned by the store and must not be modified.
func (s *ComponentStore[T]) Entities() []Entity {
	return s.entities
}

// All iterates the store in slot order, yielding each owner and a pointer to
// its component. The store must not be structurally changed during the walk.
func (s *ComponentStore[T]) All() iter.Seq2[Entity, *T] {
	return func(yield func(Entity, *T) bool) {
		for i := range s.values {
			if !yield(s.entities[i], &s.values[i]) {
				return
			}
		}
	}
}

// EntityDestroyed drops the component of e, if any.
func (s *ComponentStore[T]) EntityDestroyed(e Entity) {
	if s.Has(e) {
		_ = s.remove(e)
	}
}

func (s *ComponentStore[T]) getAny(e Entity) (any, bool) {
	slot, ok := s.index.Get(e)
	if !ok {
		return nil, false
	}
	return &s.values[slot], true
}
