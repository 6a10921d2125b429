package ecs

import (
	"iter"
	"reflect"

	"github.com/rotisserie/eris"
)

// World is the single entry point to the ECS. It owns the entity allocator,
// the component registry and the system registry, and is the only place where
// entity signatures change.
//
// A World is not safe for concurrent use. Construct one per game loop and pass
// it to every subsystem that needs it.
type World struct {
	log        Logger
	entities   *entityAllocator
	components *ComponentRegistry
	systems    *SystemRegistry
}

// NewWorld creates an empty World.
func NewWorld(cfg Config) *World {
	logger := cfg.Logger
	if logger == nil {
		logger = nopLogger{}
	}
	return &World{
		log:        logger,
		entities:   newEntityAllocator(cfg.MaxEntities),
		components: newComponentRegistry(),
		systems:    newSystemRegistry(),
	}
}

// NewEntity allocates a live entity with an empty signature.
func (w *World) NewEntity() (Entity, error) {
	e, err := w.entities.create()
	if err != nil {
		w.log.Warn("entity allocation failed", "live", w.entities.count(), "max", w.entities.max)
		return 0, err
	}
	// Systems declared with an empty requirement match every live entity.
	w.systems.signatureChanged(e, Signature{})
	return e, nil
}

// DestroyEntity releases e, drops all of its components and removes it from
// every system. The identifier may be handed out again by a later NewEntity.
func (w *World) DestroyEntity(e Entity) error {
	if err := w.entities.destroy(e); err != nil {
		return err
	}
	w.components.entityDestroyed(e)
	w.systems.entityDestroyed(e)
	return nil
}

// Alive reports whether e is live.
func (w *World) Alive(e Entity) bool {
	return w.entities.alive(e)
}

// Signature returns the component signature of e.
func (w *World) Signature(e Entity) (Signature, error) {
	return w.entities.signature(e)
}

// EntityCount returns the number of live entities.
func (w *World) EntityCount() int {
	return w.entities.count()
}

// MaxEntities returns the live-entity limit.
func (w *World) MaxEntities() int {
	return w.entities.max
}

// Entities iterates the live entities in ascending order.
// Entities must not be created or destroyed during the walk.
func (w *World) Entities() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		w.entities.each(func(e Entity, _ Signature) bool {
			return yield(e)
		})
	}
}

// Components returns the component registry for introspection.
func (w *World) Components() *ComponentRegistry {
	return w.components
}

// Systems returns the system registry for introspection.
func (w *World) Systems() *SystemRegistry {
	return w.systems
}

// Component returns a pointer to e's component of registered type t, for
// tooling that works without static types.
func (w *World) Component(e Entity, t reflect.Type) (any, error) {
	if !w.Alive(e) {
		return nil, eris.Wrapf(ErrInvalidEntity, "get %s of entity %d", t, e)
	}
	id, err := w.components.Lookup(t)
	if err != nil {
		return nil, err
	}
	c, ok := w.components.storage(id).getAny(e)
	if !ok {
		return nil, eris.Wrapf(ErrMissingComponent, "entity %d has no %s", e, t)
	}
	return c, nil
}

// updateSignature stores s for e and propagates it to every system.
func (w *World) updateSignature(e Entity, s Signature) {
	_ = w.entities.setSignature(e, s)
	w.systems.signatureChanged(e, s)
}

// RegisterComponent registers T and returns its ComponentID. Registering the
// same type again returns the existing ID.
func RegisterComponent[T any](w *World) (ComponentID, error) {
	id, created, err := registerComponent[T](w.components)
	if err != nil {
		return 0, err
	}
	if created {
		w.log.Debug("component registered", "type", reflect.TypeFor[T]().String(), "id", id)
	}
	return id, nil
}

// ComponentIDOf returns the ComponentID of a registered type.
func ComponentIDOf[T any](w *World) (ComponentID, error) {
	return w.components.Lookup(reflect.TypeFor[T]())
}

// StoreOf returns the store holding every T. Structural changes must go
// through AddComponent and RemoveComponent; values may be edited in place.
func StoreOf[T any](w *World) (*ComponentStore[T], error) {
	s, _, err := store[T](w.components)
	return s, err
}

// AddComponent attaches value to e, sets T's bit in e's signature and updates
// system membership. It returns a pointer to the stored value.
func AddComponent[T any](w *World, e Entity, value T) (*T, error) {
	if !w.Alive(e) {
		return nil, eris.Wrapf(ErrInvalidEntity, "add %s to entity %d", reflect.TypeFor[T](), e)
	}
	s, id, err := store[T](w.components)
	if err != nil {
		return nil, err
	}
	ptr, err := s.insert(e, value)
	if err != nil {
		return nil, err
	}

	sig := w.entities.signatures[e]
	sig.Set(id)
	w.updateSignature(e, sig)
	return ptr, nil
}

// RemoveComponent detaches T from e, clears its bit and updates system
// membership.
func RemoveComponent[T any](w *World, e Entity) error {
	if !w.Alive(e) {
		return eris.Wrapf(ErrInvalidEntity, "remove %s from entity %d", reflect.TypeFor[T](), e)
	}
	s, id, err := store[T](w.components)
	if err != nil {
		return err
	}
	if err := s.remove(e); err != nil {
		return err
	}

	sig := w.entities.signatures[e]
	sig.Clear(id)
	w.updateSignature(e, sig)
	return nil
}

// GetComponent returns a pointer to e's T, valid until the next structural
// change to T's store.
func GetComponent[T any](w *World, e Entity) (*T, error) {
	if !w.Alive(e) {
		return nil, eris.Wrapf(ErrInvalidEntity, "get %s of entity %d", reflect.TypeFor[T](), e)
	}
	s, _, err := store[T](w.components)
	if err != nil {
		return nil, err
	}
	return s.Get(e)
}

// MustGetComponent is GetComponent for code that has already established that
// e holds T, typically a system walking its own entity set. It panics on error.
func MustGetComponent[T any](w *World, e Entity) *T {
	c, err := GetComponent[T](w, e)
	if err != nil {
		panic(err)
	}
	return c
}

// HasComponent reports whether e is live and holds a T.
func HasComponent[T any](w *World, e Entity) bool {
	if !w.Alive(e) {
		return false
	}
	s, _, err := store[T](w.components)
	if err != nil {
		return false
	}
	return s.Has(e)
}

// RegisterSystem returns the World's instance of S, creating it on first use.
// A new instance starts with no requirement and an empty entity set; if it
// implements Initializer, Init runs before RegisterSystem returns.
func RegisterSystem[S any, P interface {
	*S
	System
}](w *World) (P, error) {
	t := reflect.TypeFor[S]()
	sys, created := w.systems.register(t, func() System {
		return P(new(S))
	})
	p := sys.(P)
	if !created {
		return p, nil
	}

	w.log.Debug("system registered", "system", systemName(t))
	if initializer, ok := any(p).(Initializer); ok {
		if err := initializer.Init(w); err != nil {
			w.systems.unregister(t)
			return nil, eris.Wrapf(err, "init system %s", systemName(t))
		}
	}
	return p, nil
}

// SetSystemSignature declares the components S requires and immediately
// recomputes S's entity set against every live entity.
func SetSystemSignature[S any](w *World, required Signature) error {
	t := reflect.TypeFor[S]()
	if err := w.systems.setRequirement(t, required, w.entities.each); err != nil {
		return err
	}
	entry, _ := w.systems.lookup(t)
	w.log.Debug("system requirement set",
		"system", systemName(t),
		"requirement", required.String(),
		"entities", entry.system.Entities().Len(),
	)
	return nil
}

// SystemSignature returns the requirement declared for S.
func SystemSignature[S any](w *World) (Signature, error) {
	entry, err := w.systems.lookup(reflect.TypeFor[S]())
	if err != nil {
		return Signature{}, err
	}
	return entry.requirement, nil
}

// Require sets T's bit in sig.
func Require[T any](w *World, sig *Signature) error {
	id, err := ComponentIDOf[T](w)
	if err != nil {
		return err
	}
	sig.Set(id)
	return nil
}

// SignatureOf builds a signature from registered component types.
func SignatureOf(w *World, types ...reflect.Type) (Signature, error) {
	var sig Signature
	for _, t := range types {
		id, err := w.components.Lookup(t)
		if err != nil {
			return Signature{}, err
		}
		sig.Set(id)
	}
	return sig, nil
}
