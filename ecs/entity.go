package ecs

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/rotisserie/eris"
)

// Entity is an opaque identifier. It carries no data of its own and is only a
// key into component stores and system entity sets.
type Entity uint32

// entityAllocator issues and recycles entity identifiers and tracks the
// signature of every live entity.
type entityAllocator struct {
	max        int
	n          int            // live entity count
	next       Entity         // lowest identifier never handed out
	free       []Entity       // stack of released identifiers
	live       *bitset.BitSet // bit e set while e is live
	signatures []Signature    // indexed by entity, grown as identifiers are issued
}

func newEntityAllocator(max int) *entityAllocator {
	if max < 0 {
		max = 0
	}
	return &entityAllocator{
		max:        max,
		free:       make([]Entity, 0, 64),
		live:       bitset.New(uint(max)),
		signatures: make([]Signature, 0, min(max, 1024)),
	}
}

// create returns an unused identifier with an empty signature.
// Released identifiers are reused before fresh ones are issued.
func (a *entityAllocator) create() (Entity, error) {
	if a.count() >= a.max {
		return 0, eris.Wrapf(ErrCapacityExceeded, "entity pool exhausted (max %d live entities)", a.max)
	}

	var e Entity
	if n := len(a.free); n > 0 {
		e = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		e = a.next
		a.next++
		a.signatures = append(a.signatures, Signature{})
	}

	a.signatures[e] = Signature{}
	a.live.Set(uint(e))
	a.n++
	return e, nil
}

// destroy clears the signature of e and returns it to the free pool.
func (a *entityAllocator) destroy(e Entity) error {
	if !a.alive(e) {
		return eris.Wrapf(ErrInvalidEntity, "destroy entity %d", e)
	}
	a.signatures[e] = Signature{}
	a.live.Clear(uint(e))
	a.free = append(a.free, e)
	a.n--
	return nil
}

func (a *entityAllocator) alive(e Entity) bool {
	return e < a.next && a.live.Test(uint(e))
}

func (a *entityAllocator) signature(e Entity) (Signature, error) {
	if !a.alive(e) {
		return Signature{}, eris.Wrapf(ErrInvalidEntity, "signature of entity %d", e)
	}
	return a.signatures[e], nil
}

func (a *entityAllocator) setSignature(e Entity, s Signature) error {
	if !a.alive(e) {
		return eris.Wrapf(ErrInvalidEntity, "set signature of entity %d", e)
	}
	a.signatures[e] = s
	return nil
}

func (a *entityAllocator) count() int {
	return a.n
}

// each walks the live entities in ascending identifier order until fn returns false.
func (a *entityAllocator) each(fn func(Entity, Signature) bool) {
	for i, ok := a.live.NextSet(0); ok; i, ok = a.live.NextSet(i + 1) {
		if !fn(Entity(i), a.signatures[i]) {
			return
		}
	}
}
