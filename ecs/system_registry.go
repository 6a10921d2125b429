package ecs

import (
	"reflect"

	"github.com/rotisserie/eris"
)

type systemEntry struct {
	typ         reflect.Type
	system      System
	requirement Signature
	bound       bool // requirement has been declared
}

// SystemInfo describes a registered system.
type SystemInfo struct {
	Name        string
	Type        reflect.Type
	Requirement Signature
	Bound       bool
	System      System
}

// SystemRegistry holds one instance per system type together with its
// requirement, and keeps each system's entity set in sync with entity
// signatures.
//
// A system whose requirement has not been declared yet matches nothing.
type SystemRegistry struct {
	byType  map[reflect.Type]*systemEntry
	entries []*systemEntry
}

func newSystemRegistry() *SystemRegistry {
	return &SystemRegistry{
		byType:  make(map[reflect.Type]*systemEntry),
		entries: make([]*systemEntry, 0, 8),
	}
}

// register returns the instance for t, building it with factory on first use.
// The bool is true when the instance was newly built.
func (r *SystemRegistry) register(t reflect.Type, factory func() System) (System, bool) {
	if entry, ok := r.byType[t]; ok {
		return entry.system, false
	}
	entry := &systemEntry{typ: t, system: factory()}
	r.byType[t] = entry
	r.entries = append(r.entries, entry)
	return entry.system, true
}

// unregister drops t. Used only to undo a registration whose Init failed.
func (r *SystemRegistry) unregister(t reflect.Type) {
	if _, ok := r.byType[t]; !ok {
		return
	}
	delete(r.byType, t)
	for i, entry := range r.entries {
		if entry.typ == t {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			break
		}
	}
}

func (r *SystemRegistry) lookup(t reflect.Type) (*systemEntry, error) {
	entry, ok := r.byType[t]
	if !ok {
		return nil, eris.Wrapf(ErrUnregisteredSystem, "%s", t)
	}
	return entry, nil
}

// setRequirement replaces the requirement of t and rebuilds its entity set
// from every live entity reported by each.
func (r *SystemRegistry) setRequirement(t reflect.Type, required Signature, each func(func(Entity, Signature) bool)) error {
	entry, err := r.lookup(t)
	if err != nil {
		return err
	}

	entry.requirement = required
	entry.bound = true

	set := entry.system.Entities()
	set.clear()
	each(func(e Entity, s Signature) bool {
		if s.Contains(required) {
			set.insert(e)
		}
		return true
	})
	return nil
}

// signatureChanged brings e's membership in every system in line with s.
// Calling it repeatedly with the same signature changes nothing.
func (r *SystemRegistry) signatureChanged(e Entity, s Signature) {
	for _, entry := range r.entries {
		set := entry.system.Entities()
		if entry.bound && s.Contains(entry.requirement) {
			set.insert(e)
		} else {
			set.remove(e)
		}
	}
}

func (r *SystemRegistry) entityDestroyed(e Entity) {
	for _, entry := range r.entries {
		entry.system.Entities().remove(e)
	}
}

// Len returns the number of registered systems.
func (r *SystemRegistry) Len() int {
	return len(r.entries)
}

// Systems describes the registered systems in registration order.
func (r *SystemRegistry) Systems() []SystemInfo {
	infos := make([]SystemInfo, len(r.entries))
	for i, entry := range r.entries {
		infos[i] = SystemInfo{
			Name:        systemName(entry.typ),
			Type:        entry.typ,
			Requirement: entry.requirement,
			Bound:       entry.bound,
			System:      entry.system,
		}
	}
	return infos
}

func systemName(t reflect.Type) string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
