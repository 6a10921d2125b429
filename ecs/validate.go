package ecs

import "github.com/rotisserie/eris"

// Validate checks the World's bookkeeping and returns a description of the
// first inconsistency found, or nil:
//   - bit i of every live entity's signature is set exactly when store i holds it,
//   - no store holds a component of a dead entity,
//   - every bound system's entity set is exactly the live entities whose
//     signature contains the requirement, and unbound systems match nothing.
func (w *World) Validate() error {
	var err error

	w.entities.each(func(e Entity, sig Signature) bool {
		for id, s := range w.components.stores {
			if sig.Test(ComponentID(id)) != s.Has(e) {
				err = eris.Errorf("entity %d: signature bit %d is %v but %s store membership is %v",
					e, id, sig.Test(ComponentID(id)), s.Type(), s.Has(e))
				return false
			}
		}
		return true
	})
	if err != nil {
		return err
	}

	for _, s := range w.components.stores {
		for _, e := range s.Entities() {
			if !w.Alive(e) {
				return eris.Errorf("%s store holds dead entity %d", s.Type(), e)
			}
		}
	}

	for _, entry := range w.systems.entries {
		set := entry.system.Entities()
		name := systemName(entry.typ)
		if !entry.bound {
			if set.Len() != 0 {
				return eris.Errorf("system %s has no requirement but matches %d entities", name, set.Len())
			}
			continue
		}

		expected := 0
		w.entities.each(func(e Entity, sig Signature) bool {
			matches := sig.Contains(entry.requirement)
			if matches {
				expected++
			}
			if matches != set.Contains(e) {
				err = eris.Errorf("system %s: entity %d membership is %v, signature %s against requirement %s",
					name, e, set.Contains(e), sig, entry.requirement)
				return false
			}
			return true
		})
		if err != nil {
			return err
		}
		if set.Len() != expected {
			return eris.Errorf("system %s holds %d entities, expected %d", name, set.Len(), expected)
		}
	}
	return nil
}
