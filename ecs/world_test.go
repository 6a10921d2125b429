package ecs_test

import (
	"errors"
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/plus3/sigecs/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorld_MoveSystemMembership(t *testing.T) {
	w := newTestWorld(t, 100)

	posID, err := ecs.ComponentIDOf[Position](w)
	require.NoError(t, err)
	velID, err := ecs.ComponentIDOf[Velocity](w)
	require.NoError(t, err)
	assert.Equal(t, ecs.ComponentID(0), posID)
	assert.Equal(t, ecs.ComponentID(1), velID)

	move := registerMoveSystem(t, w)

	a, err := w.NewEntity()
	require.NoError(t, err)

	_, err = ecs.AddComponent(w, a, Position{X: 1, Y: 2})
	require.NoError(t, err)
	assert.False(t, move.Entities().Contains(a), "position alone must not match")
	require.NoError(t, w.Validate())

	_, err = ecs.AddComponent(w, a, Velocity{DX: 1, DY: 1})
	require.NoError(t, err)
	assert.True(t, move.Entities().Contains(a))
	require.NoError(t, w.Validate())

	require.NoError(t, ecs.RemoveComponent[Position](w, a))
	assert.False(t, move.Entities().Contains(a))
	require.NoError(t, w.Validate())

	require.NoError(t, w.DestroyEntity(a))
	assert.False(t, w.Alive(a))
	assert.False(t, ecs.HasComponent[Velocity](w, a))
	assert.False(t, ecs.HasComponent[Position](w, a))
	for _, s := range []interface{ Has(ecs.Entity) bool }{
		mustStore[Position](t, w),
		mustStore[Velocity](t, w),
		mustStore[Name](t, w),
		mustStore[Health](t, w),
	} {
		assert.False(t, s.Has(a))
	}
	require.NoError(t, w.Validate())
}

func mustStore[T any](t *testing.T, w *ecs.World) *ecs.ComponentStore[T] {
	t.Helper()
	s, err := ecs.StoreOf[T](w)
	require.NoError(t, err)
	return s
}

func TestWorld_MoveSystemUpdate(t *testing.T) {
	w := newTestWorld(t, 100)
	move := registerMoveSystem(t, w)

	mover, _ := w.NewEntity()
	_, _ = ecs.AddComponent(w, mover, Position{X: 0, Y: 0})
	_, _ = ecs.AddComponent(w, mover, Velocity{DX: 2, DY: -1})

	still, _ := w.NewEntity()
	_, _ = ecs.AddComponent(w, still, Position{X: 5, Y: 5})

	move.Update(w, 0.5)

	p, err := ecs.GetComponent[Position](w, mover)
	require.NoError(t, err)
	assert.Equal(t, Position{X: 1, Y: -0.5}, *p)

	p, err = ecs.GetComponent[Position](w, still)
	require.NoError(t, err)
	assert.Equal(t, Position{X: 5, Y: 5}, *p)
}

func TestWorld_Capacity(t *testing.T) {
	w := newTestWorld(t, 3)

	var entities []ecs.Entity
	for range 3 {
		e, err := w.NewEntity()
		require.NoError(t, err)
		entities = append(entities, e)
	}

	_, err := w.NewEntity()
	require.ErrorIs(t, err, ecs.ErrCapacityExceeded)
	assert.Equal(t, 3, w.EntityCount())

	require.NoError(t, w.DestroyEntity(entities[1]))

	e, err := w.NewEntity()
	require.NoError(t, err)
	assert.Equal(t, entities[1], e, "freed identifier is reused first")

	sig, err := w.Signature(e)
	require.NoError(t, err)
	assert.True(t, sig.IsEmpty())
}

func TestWorld_ComponentErrors(t *testing.T) {
	w := newTestWorld(t, 10)
	e, err := w.NewEntity()
	require.NoError(t, err)

	t.Run("missing component", func(t *testing.T) {
		_, err := ecs.GetComponent[Health](w, e)
		assert.ErrorIs(t, err, ecs.ErrMissingComponent)

		err = ecs.RemoveComponent[Health](w, e)
		assert.ErrorIs(t, err, ecs.ErrMissingComponent)
	})

	t.Run("duplicate component", func(t *testing.T) {
		_, err := ecs.AddComponent(w, e, Health{Current: 10, Max: 10})
		require.NoError(t, err)

		_, err = ecs.AddComponent(w, e, Health{Current: 1, Max: 1})
		assert.ErrorIs(t, err, ecs.ErrDuplicateComponent)

		h, err := ecs.GetComponent[Health](w, e)
		require.NoError(t, err)
		assert.Equal(t, 10, h.Current, "failed add must not overwrite")
	})

	t.Run("unregistered type", func(t *testing.T) {
		_, err := ecs.AddComponent(w, e, Score(3))
		assert.ErrorIs(t, err, ecs.ErrUnregisteredType)

		_, err = ecs.ComponentIDOf[Tag](w)
		assert.ErrorIs(t, err, ecs.ErrUnregisteredType)
		assert.False(t, ecs.HasComponent[Tag](w, e))
	})

	t.Run("dead entity", func(t *testing.T) {
		dead, err := w.NewEntity()
		require.NoError(t, err)
		require.NoError(t, w.DestroyEntity(dead))

		_, err = ecs.AddComponent(w, dead, Position{})
		assert.ErrorIs(t, err, ecs.ErrInvalidEntity)
		_, err = ecs.GetComponent[Position](w, dead)
		assert.ErrorIs(t, err, ecs.ErrInvalidEntity)
		assert.ErrorIs(t, ecs.RemoveComponent[Position](w, dead), ecs.ErrInvalidEntity)
		assert.ErrorIs(t, w.DestroyEntity(dead), ecs.ErrInvalidEntity)
		_, err = w.Signature(dead)
		assert.ErrorIs(t, err, ecs.ErrInvalidEntity)
	})

	t.Run("must get panics", func(t *testing.T) {
		assert.Panics(t, func() { ecs.MustGetComponent[Name](w, e) })
	})

	require.NoError(t, w.Validate())
}

func TestWorld_AddComponentReturnsStoredValue(t *testing.T) {
	w := newTestWorld(t, 10)
	e, _ := w.NewEntity()

	p, err := ecs.AddComponent(w, e, Position{X: 1})
	require.NoError(t, err)
	p.X = 42

	got, err := ecs.GetComponent[Position](w, e)
	require.NoError(t, err)
	assert.Equal(t, float32(42), got.X)
}

func TestWorld_DestroyReuseHasEmptySignature(t *testing.T) {
	w := newTestWorld(t, 10)
	move := registerMoveSystem(t, w)

	e, _ := w.NewEntity()
	_, _ = ecs.AddComponent(w, e, Position{})
	_, _ = ecs.AddComponent(w, e, Velocity{})
	_, _ = ecs.AddComponent(w, e, Name{Value: "old"})
	require.True(t, move.Entities().Contains(e))

	require.NoError(t, w.DestroyEntity(e))
	assert.False(t, move.Entities().Contains(e))

	reused, err := w.NewEntity()
	require.NoError(t, err)
	require.Equal(t, e, reused)

	sig, err := w.Signature(reused)
	require.NoError(t, err)
	assert.True(t, sig.IsEmpty())
	assert.False(t, ecs.HasComponent[Name](w, reused))
	assert.False(t, move.Entities().Contains(reused))
	require.NoError(t, w.Validate())
}

func TestWorld_SetSystemSignatureRecomputes(t *testing.T) {
	w := newTestWorld(t, 10)

	move, err := ecs.RegisterSystem[MoveSystem](w)
	require.NoError(t, err)

	a, _ := w.NewEntity()
	_, _ = ecs.AddComponent(w, a, Position{})
	b, _ := w.NewEntity()
	_, _ = ecs.AddComponent(w, b, Position{})
	_, _ = ecs.AddComponent(w, b, Velocity{})

	assert.Equal(t, 0, move.Entities().Len(), "no requirement declared yet")
	require.NoError(t, w.Validate())

	posOnly, err := ecs.SignatureOf(w, reflect.TypeFor[Position]())
	require.NoError(t, err)
	require.NoError(t, ecs.SetSystemSignature[MoveSystem](w, posOnly))
	assert.ElementsMatch(t, []ecs.Entity{a, b}, move.Entities().Slice())
	require.NoError(t, w.Validate())

	both, err := ecs.SignatureOf(w, reflect.TypeFor[Position](), reflect.TypeFor[Velocity]())
	require.NoError(t, err)
	require.NoError(t, ecs.SetSystemSignature[MoveSystem](w, both))
	assert.ElementsMatch(t, []ecs.Entity{b}, move.Entities().Slice())
	require.NoError(t, w.Validate())

	got, err := ecs.SystemSignature[MoveSystem](w)
	require.NoError(t, err)
	assert.Equal(t, both, got)

	require.NoError(t, ecs.SetSystemSignature[MoveSystem](w, ecs.Signature{}))
	assert.ElementsMatch(t, []ecs.Entity{a, b}, move.Entities().Slice(), "empty requirement matches every live entity")
	require.NoError(t, w.Validate())
}

func TestWorld_SystemErrors(t *testing.T) {
	w := newTestWorld(t, 10)

	err := ecs.SetSystemSignature[MoveSystem](w, ecs.Signature{})
	assert.ErrorIs(t, err, ecs.ErrUnregisteredSystem)

	_, err = ecs.SystemSignature[MoveSystem](w)
	assert.ErrorIs(t, err, ecs.ErrUnregisteredSystem)

	_, err = ecs.SignatureOf(w, reflect.TypeFor[Score]())
	assert.ErrorIs(t, err, ecs.ErrUnregisteredType)
}

func TestWorld_RegisterSystemIsIdempotent(t *testing.T) {
	w := newTestWorld(t, 10)

	first, err := ecs.RegisterSystem[HealthSystem](w)
	require.NoError(t, err)
	second, err := ecs.RegisterSystem[HealthSystem](w)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, w.Systems().Len())

	sig, err := ecs.SystemSignature[HealthSystem](w)
	require.NoError(t, err)
	assert.Equal(t, ecs.NewSignature(3), sig, "Init declares {Health}")
}

type failingSystem struct {
	ecs.SystemBase
}

var errInitFailed = errors.New("init failed")

func (s *failingSystem) Init(*ecs.World) error {
	return errInitFailed
}

func TestWorld_RegisterSystemInitFailure(t *testing.T) {
	w := newTestWorld(t, 10)

	sys, err := ecs.RegisterSystem[failingSystem](w)
	assert.ErrorIs(t, err, errInitFailed)
	assert.Nil(t, sys)
	assert.Equal(t, 0, w.Systems().Len())
}

func TestWorld_RegisterComponentIsIdempotent(t *testing.T) {
	w := newTestWorld(t, 10)

	id, err := ecs.RegisterComponent[Velocity](w)
	require.NoError(t, err)
	assert.Equal(t, ecs.ComponentID(1), id)
	assert.Equal(t, 4, w.Components().Len())
	assert.Equal(t, reflect.TypeFor[Velocity](), w.Components().Type(id))
}

func TestWorld_EntitiesAndComponentByType(t *testing.T) {
	w := newTestWorld(t, 10)

	a, _ := w.NewEntity()
	b, _ := w.NewEntity()
	c, _ := w.NewEntity()
	require.NoError(t, w.DestroyEntity(b))

	var live []ecs.Entity
	for e := range w.Entities() {
		live = append(live, e)
	}
	assert.Equal(t, []ecs.Entity{a, c}, live)

	_, _ = ecs.AddComponent(w, c, Name{Value: "c"})
	got, err := w.Component(c, reflect.TypeFor[Name]())
	require.NoError(t, err)
	assert.Equal(t, &Name{Value: "c"}, got)

	_, err = w.Component(a, reflect.TypeFor[Name]())
	assert.ErrorIs(t, err, ecs.ErrMissingComponent)
	_, err = w.Component(b, reflect.TypeFor[Name]())
	assert.ErrorIs(t, err, ecs.ErrInvalidEntity)
}

func TestWorld_DestroyDuringIteration(t *testing.T) {
	w := newTestWorld(t, 100)
	move := registerMoveSystem(t, w)

	for range 10 {
		e, _ := w.NewEntity()
		_, _ = ecs.AddComponent(w, e, Position{})
		_, _ = ecs.AddComponent(w, e, Velocity{})
	}

	visited := 0
	for e := range move.Entities().All() {
		visited++
		require.NoError(t, w.DestroyEntity(e))
		// Destroying the next entity in the snapshot must make the walk skip it.
		for _, other := range move.Entities().Slice() {
			require.NoError(t, w.DestroyEntity(other))
			break
		}
	}

	assert.Equal(t, 5, visited)
	assert.Equal(t, 0, move.Entities().Len())
	require.NoError(t, w.Validate())
}

func TestWorld_SpawnDuringIterationReusingID(t *testing.T) {
	w := newTestWorld(t, 100)
	move := registerMoveSystem(t, w)

	for range 3 {
		e, _ := w.NewEntity()
		_, _ = ecs.AddComponent(w, e, Position{})
		_, _ = ecs.AddComponent(w, e, Velocity{})
	}

	var visited []ecs.Entity
	var spawned ecs.Entity
	for e := range move.Entities().All() {
		visited = append(visited, e)
		if e != 0 {
			continue
		}
		require.NoError(t, w.DestroyEntity(2))
		var err error
		spawned, err = w.NewEntity()
		require.NoError(t, err)
		_, _ = ecs.AddComponent(w, spawned, Position{})
		_, _ = ecs.AddComponent(w, spawned, Velocity{})
	}

	require.Equal(t, ecs.Entity(2), spawned, "freed identifier is reused")
	assert.ElementsMatch(t, []ecs.Entity{0, 1}, visited)
	assert.True(t, move.Entities().Contains(spawned))
	require.NoError(t, w.Validate())
}

func TestWorld_EmptyRequirementMatchesNewEntities(t *testing.T) {
	w := newTestWorld(t, 10)
	move, err := ecs.RegisterSystem[MoveSystem](w)
	require.NoError(t, err)
	health, err := ecs.RegisterSystem[HealthSystem](w)
	require.NoError(t, err)

	require.NoError(t, ecs.SetSystemSignature[MoveSystem](w, ecs.Signature{}))

	e, err := w.NewEntity()
	require.NoError(t, err)
	assert.True(t, move.Entities().Contains(e))
	assert.False(t, health.Entities().Contains(e))
	require.NoError(t, w.Validate())

	_, err = ecs.AddComponent(w, e, Position{})
	require.NoError(t, err)
	require.NoError(t, w.DestroyEntity(e))
	assert.Equal(t, 0, move.Entities().Len())

	reused, err := w.NewEntity()
	require.NoError(t, err)
	assert.True(t, move.Entities().Contains(reused))
	require.NoError(t, w.Validate())
}

// TestWorld_RandomChurn drives random structural changes and validates every
// invariant after each one.
func TestWorld_RandomChurn(t *testing.T) {
	w := newTestWorld(t, 64)
	move := registerMoveSystem(t, w)
	health, err := ecs.RegisterSystem[HealthSystem](w)
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(1, 2))
	var live []ecs.Entity

	for step := range 2000 {
		switch op := rng.IntN(7); {
		case op == 0 || len(live) == 0:
			e, err := w.NewEntity()
			if err != nil {
				require.ErrorIs(t, err, ecs.ErrCapacityExceeded)
				break
			}
			live = append(live, e)
		case op == 1:
			i := rng.IntN(len(live))
			require.NoError(t, w.DestroyEntity(live[i]))
			live = append(live[:i], live[i+1:]...)
		default:
			e := live[rng.IntN(len(live))]
			toggle(t, w, e, rng.IntN(4))
		}
		require.NoError(t, w.Validate(), "step %d", step)
	}

	for e := range move.Entities().All() {
		assert.True(t, ecs.HasComponent[Position](w, e))
		assert.True(t, ecs.HasComponent[Velocity](w, e))
	}
	for e := range health.Entities().All() {
		assert.True(t, ecs.HasComponent[Health](w, e))
	}
}

func toggle(t *testing.T, w *ecs.World, e ecs.Entity, which int) {
	t.Helper()
	switch which {
	case 0:
		toggleComponent(t, w, e, Position{})
	case 1:
		toggleComponent(t, w, e, Velocity{})
	case 2:
		toggleComponent(t, w, e, Name{})
	case 3:
		toggleComponent(t, w, e, Health{Current: 1})
	}
}

func toggleComponent[T any](t *testing.T, w *ecs.World, e ecs.Entity, v T) {
	t.Helper()
	if ecs.HasComponent[T](w, e) {
		require.NoError(t, ecs.RemoveComponent[T](w, e))
		return
	}
	_, err := ecs.AddComponent(w, e, v)
	require.NoError(t, err)
}

func TestWorld_Logging(t *testing.T) {
	logger := &recordingLogger{}
	w := ecs.NewWorld(ecs.Config{MaxEntities: 1, Logger: logger})

	_, err := ecs.RegisterComponent[Position](w)
	require.NoError(t, err)
	_, err = w.NewEntity()
	require.NoError(t, err)
	_, err = w.NewEntity()
	require.ErrorIs(t, err, ecs.ErrCapacityExceeded)

	assert.Contains(t, logger.debug, "component registered")
	assert.Contains(t, logger.warn, "entity allocation failed")
}

type recordingLogger struct {
	debug, info, warn, errs []string
}

func (l *recordingLogger) Debug(msg string, _ ...any) { l.debug = append(l.debug, msg) }
func (l *recordingLogger) Info(msg string, _ ...any)  { l.info = append(l.info, msg) }
func (l *recordingLogger) Warn(msg string, _ ...any)  { l.warn = append(l.warn, msg) }
func (l *recordingLogger) Error(msg string, _ ...any) { l.errs = append(l.errs, msg) }
