package ecs

import (
	"iter"

	"github.com/kamstrup/intmap"
)

// EntitySet is the set of entities a system currently matches. The World owns
// insertion and removal; systems only read it.
//
// The zero value is an empty set.
type EntitySet struct {
	dense []Entity
	index *intmap.Map[Entity, membership]
	seq   uint64
}

// membership locates an entity in dense. seq orders insertions so a walk can
// tell members that joined after it started, even under a reused identifier.
type membership struct {
	slot int
	seq  uint64
}

// Contains reports whether e is in the set.
func (s *EntitySet) Contains(e Entity) bool {
	if s.index == nil {
		return false
	}
	_, ok := s.index.Get(e)
	return ok
}

// Len returns the number of entities in the set.
func (s *EntitySet) Len() int {
	return len(s.dense)
}

// Slice returns the live backing slice. It is reordered by every removal, so
// callers that change components while walking it should use All instead.
func (s *EntitySet) Slice() []Entity {
	return s.dense
}

// All iterates a snapshot of the set taken when iteration starts. Entities
// removed from the set during the walk (destroyed, or no longer matching) are
// skipped; entities added during the walk are not visited, including one that
// reuses the identifier of a member destroyed earlier in the walk.
func (s *EntitySet) All() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		if len(s.dense) == 0 {
			return
		}
		start := s.seq
		snapshot := make([]Entity, len(s.dense))
		copy(snapshot, s.dense)
		for _, e := range snapshot {
			m, ok := s.index.Get(e)
			if !ok || m.seq > start {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

// insert adds e and reports whether it was absent.
func (s *EntitySet) insert(e Entity) bool {
	if s.index == nil {
		s.index = intmap.New[Entity, membership](64)
	}
	if _, ok := s.index.Get(e); ok {
		return false
	}
	s.seq++
	s.index.Put(e, membership{slot: len(s.dense), seq: s.seq})
	s.dense = append(s.dense, e)
	return true
}

// remove drops e and reports whether it was present.
func (s *EntitySet) remove(e Entity) bool {
	if s.index == nil {
		return false
	}
	m, ok := s.index.Get(e)
	if !ok {
		return false
	}
	last := len(s.dense) - 1
	if m.slot != last {
		moved := s.dense[last]
		s.dense[m.slot] = moved
		mm, _ := s.index.Get(moved)
		mm.slot = m.slot
		s.index.Put(moved, mm)
	}
	s.dense = s.dense[:last]
	s.index.Del(e)
	return true
}

func (s *EntitySet) clear() {
	s.dense = s.dense[:0]
	if s.index != nil {
		s.index.Clear()
	}
}
