package ecs

import (
	"fmt"
	"math/bits"
	"strings"
)

const (
	bitsPerWord    = 64
	signatureWords = 2

	// MaxComponentTypes is the width of a Signature and therefore the maximum
	// number of distinct component types a World can register.
	MaxComponentTypes = signatureWords * bitsPerWord
)

// ComponentID is the stable index assigned to a component type on registration.
// It doubles as the bit index in a Signature.
type ComponentID uint8

// Signature is a fixed-width bitset with one bit per registered component type.
// Entities carry a signature describing the components they hold; systems carry
// one describing the components they require.
type Signature [signatureWords]uint64

// NewSignature returns a signature with the given component bits set.
func NewSignature(ids ...ComponentID) Signature {
	var s Signature
	for _, id := range ids {
		s.Set(id)
	}
	return s
}

// Set enables the bit for id.
// It panics if id does not fit in the signature.
func (s *Signature) Set(id ComponentID) {
	word, bit := split(id)
	s[word] |= 1 << bit
}

// Clear disables the bit for id.
func (s *Signature) Clear(id ComponentID) {
	word, bit := split(id)
	s[word] &^= 1 << bit
}

// Test reports whether the bit for id is set.
func (s Signature) Test(id ComponentID) bool {
	if int(id) >= MaxComponentTypes {
		return false
	}
	word, bit := split(id)
	return s[word]&(1<<bit) != 0
}

// Contains reports whether every bit of required is also set in s.
// An empty requirement is contained in every signature.
func (s Signature) Contains(required Signature) bool {
	for i := range s {
		if s[i]&required[i] != required[i] {
			return false
		}
	}
	return true
}

// Count returns the number of set bits.
func (s Signature) Count() int {
	n := 0
	for _, w := range s {
		n += bits.OnesCount64(w)
	}
	return n
}

// IsEmpty reports whether no bit is set.
func (s Signature) IsEmpty() bool {
	return s == Signature{}
}

// IDs returns the set component IDs in ascending order.
func (s Signature) IDs() []ComponentID {
	ids := make([]ComponentID, 0, s.Count())
	for i, w := range s {
		for w != 0 {
			bit := bits.TrailingZeros64(w)
			ids = append(ids, ComponentID(i*bitsPerWord+bit))
			w &= w - 1
		}
	}
	return ids
}

// String renders the set bits as {0, 3, 17}.
func (s Signature) String() string {
	ids := s.IDs()
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func split(id ComponentID) (int, uint) {
	if int(id) >= MaxComponentTypes {
		panic(fmt.Sprintf("component ID %d exceeds signature width (%d)", id, MaxComponentTypes))
	}
	return int(id) / bitsPerWord, uint(id) % bitsPerWord
}
