package ecs_test

import (
	"testing"

	"github.com/plus3/sigecs/ecs"
	"github.com/stretchr/testify/require"
)

// Common test component types
type Position struct {
	X, Y float32
}

type Velocity struct {
	DX, DY float32
}

type Name struct {
	Value string
}

type Health struct {
	Current int
	Max     int
}

type PlayerController struct{}

// Custom primitive types for testing non-struct components
type Score int32
type Tag string

// MoveSystem requires {Position, Velocity}.
type MoveSystem struct {
	ecs.SystemBase
}

func (s *MoveSystem) Update(w *ecs.World, dt float32) {
	for e := range s.Entities().All() {
		p := ecs.MustGetComponent[Position](w, e)
		v := ecs.MustGetComponent[Velocity](w, e)
		p.X += v.DX * dt
		p.Y += v.DY * dt
	}
}

func (s *MoveSystem) Execute(frame *ecs.UpdateFrame) {
	s.Update(frame.World, float32(frame.DeltaTime))
}

// HealthSystem requires {Health} and declares it itself in Init.
type HealthSystem struct {
	ecs.SystemBase
	Total int
}

func (s *HealthSystem) Init(w *ecs.World) error {
	var sig ecs.Signature
	if err := ecs.Require[Health](w, &sig); err != nil {
		return err
	}
	return ecs.SetSystemSignature[HealthSystem](w, sig)
}

func (s *HealthSystem) Execute(frame *ecs.UpdateFrame) {
	s.Total = 0
	for e := range s.Entities().All() {
		s.Total += ecs.MustGetComponent[Health](frame.World, e).Current
	}
}

// newTestWorld registers Position (0), Velocity (1), Name (2) and Health (3).
func newTestWorld(t testing.TB, maxEntities int) *ecs.World {
	t.Helper()
	w := ecs.NewWorld(ecs.Config{MaxEntities: maxEntities})
	for _, register := range []func(*ecs.World) (ecs.ComponentID, error){
		ecs.RegisterComponent[Position],
		ecs.RegisterComponent[Velocity],
		ecs.RegisterComponent[Name],
		ecs.RegisterComponent[Health],
	} {
		_, err := register(w)
		require.NoError(t, err)
	}
	return w
}

// registerMoveSystem registers MoveSystem with requirement {Position, Velocity}.
func registerMoveSystem(t testing.TB, w *ecs.World) *MoveSystem {
	t.Helper()
	sys, err := ecs.RegisterSystem[MoveSystem](w)
	require.NoError(t, err)

	var sig ecs.Signature
	require.NoError(t, ecs.Require[Position](w, &sig))
	require.NoError(t, ecs.Require[Velocity](w, &sig))
	require.NoError(t, ecs.SetSystemSignature[MoveSystem](w, sig))
	return sys
}
