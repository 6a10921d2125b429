package main

import (
	"math/rand/v2"

	"github.com/plus3/sigecs/ecs"
	"github.com/rotisserie/eris"
)

type Position struct{ X, Y float64 }
type Velocity struct{ DX, DY float64 }
type Health struct{ Current, Max int }
type Mass struct{ Kg float64 }
type Heat struct{ Kelvin float64 }
type Charge struct{ Coulomb float64 }
type Age struct{ Ticks uint32 }
type Team struct{ ID uint8 }

// kind is the type-erased handle the churn loop uses to touch one component
// type without knowing it statically.
type kind struct {
	name        string
	register    func(w *ecs.World) (ecs.ComponentID, error)
	has         func(w *ecs.World, e ecs.Entity) bool
	add         func(w *ecs.World, e ecs.Entity) error
	queueAdd    func(c *ecs.Commands, e ecs.Entity)
	queueRemove func(c *ecs.Commands, e ecs.Entity)
}

func kindOf[T any](name string, zero T) kind {
	return kind{
		name:     name,
		register: ecs.RegisterComponent[T],
		has:      ecs.HasComponent[T],
		add: func(w *ecs.World, e ecs.Entity) error {
			_, err := ecs.AddComponent(w, e, zero)
			return err
		},
		queueAdd: func(c *ecs.Commands, e ecs.Entity) {
			ecs.QueueAdd(c, e, zero)
		},
		queueRemove: func(c *ecs.Commands, e ecs.Entity) {
			ecs.QueueRemove[T](c, e)
		},
	}
}

var kinds = []kind{
	kindOf("Position", Position{}),
	kindOf("Velocity", Velocity{DX: 1, DY: 1}),
	kindOf("Health", Health{Current: 100, Max: 100}),
	kindOf("Mass", Mass{Kg: 1}),
	kindOf("Heat", Heat{Kelvin: 293}),
	kindOf("Charge", Charge{}),
	kindOf("Age", Age{}),
	kindOf("Team", Team{}),
}

func registerComponents(w *ecs.World) error {
	for _, k := range kinds {
		if _, err := k.register(w); err != nil {
			return err
		}
	}
	return nil
}

// spawnRandom creates an entity holding n distinct random component types.
func spawnRandom(w *ecs.World, rng *rand.Rand, n int) (ecs.Entity, error) {
	e, err := w.NewEntity()
	if err != nil {
		return 0, err
	}
	for _, i := range rng.Perm(len(kinds))[:min(n, len(kinds))] {
		if err := kinds[i].add(w, e); err != nil {
			return 0, eris.Wrapf(err, "spawn with %s", kinds[i].name)
		}
	}
	return e, nil
}

// pairSystem touches every entity holding both an A and a B. Each
// instantiation is a distinct system type with requirement {A, B}.
type pairSystem[A, B any] struct {
	ecs.SystemBase
	Visits int
}

func (s *pairSystem[A, B]) Init(w *ecs.World) error {
	var sig ecs.Signature
	if err := ecs.Require[A](w, &sig); err != nil {
		return err
	}
	if err := ecs.Require[B](w, &sig); err != nil {
		return err
	}
	return ecs.SetSystemSignature[pairSystem[A, B]](w, sig)
}

func (s *pairSystem[A, B]) Execute(frame *ecs.UpdateFrame) {
	for e := range s.Entities().All() {
		_ = ecs.MustGetComponent[A](frame.World, e)
		_ = ecs.MustGetComponent[B](frame.World, e)
		s.Visits++
	}
}

// MovementSystem integrates Velocity into Position.
type MovementSystem struct {
	ecs.SystemBase
}

func (s *MovementSystem) Init(w *ecs.World) error {
	var sig ecs.Signature
	if err := ecs.Require[Position](w, &sig); err != nil {
		return err
	}
	if err := ecs.Require[Velocity](w, &sig); err != nil {
		return err
	}
	return ecs.SetSystemSignature[MovementSystem](w, sig)
}

func (s *MovementSystem) Execute(frame *ecs.UpdateFrame) {
	for e := range s.Entities().All() {
		p := ecs.MustGetComponent[Position](frame.World, e)
		v := ecs.MustGetComponent[Velocity](frame.World, e)
		p.X += v.DX * frame.DeltaTime
		p.Y += v.DY * frame.DeltaTime
	}
}

// AgingSystem ages every entity and queues the destruction of those past
// MaxAge.
type AgingSystem struct {
	ecs.SystemBase
	MaxAge uint32
}

func (s *AgingSystem) Init(w *ecs.World) error {
	var sig ecs.Signature
	if err := ecs.Require[Age](w, &sig); err != nil {
		return err
	}
	return ecs.SetSystemSignature[AgingSystem](w, sig)
}

func (s *AgingSystem) Execute(frame *ecs.UpdateFrame) {
	for e := range s.Entities().All() {
		age := ecs.MustGetComponent[Age](frame.World, e)
		age.Ticks++
		if s.MaxAge > 0 && age.Ticks > s.MaxAge {
			frame.Commands.Destroy(e)
		}
	}
}

// ChurnSystem applies random structural changes through the frame's command
// buffer: component toggles on live entities and replacement spawns.
type ChurnSystem struct {
	Rng        *rand.Rand
	Ops        int
	Spawned    int
	SpawnFails int
}

func (s *ChurnSystem) Execute(frame *ecs.UpdateFrame) {
	w := frame.World
	live := make([]ecs.Entity, 0, w.EntityCount())
	for e := range w.Entities() {
		live = append(live, e)
	}
	if len(live) == 0 {
		return
	}

	for range s.Ops {
		e := live[s.Rng.IntN(len(live))]
		k := kinds[s.Rng.IntN(len(kinds))]
		if k.has(w, e) {
			k.queueRemove(frame.Commands, e)
		} else {
			k.queueAdd(frame.Commands, e)
		}
	}

	spawns := s.Rng.IntN(s.Ops + 1)
	frame.Commands.Defer(func() {
		for range spawns {
			if _, err := spawnRandom(w, s.Rng, s.Rng.IntN(5)+1); err != nil {
				s.SpawnFails++
				return
			}
			s.Spawned++
		}
	})
}

func registerSystems(w *ecs.World, scheduler *ecs.Scheduler, churn *ChurnSystem, maxAge uint32) error {
	movement, err := ecs.RegisterSystem[MovementSystem](w)
	if err != nil {
		return err
	}
	scheduler.Register(movement)

	aging, err := ecs.RegisterSystem[AgingSystem](w)
	if err != nil {
		return err
	}
	aging.MaxAge = maxAge
	scheduler.Register(aging)

	pairs := []func(*ecs.World) (ecs.Executor, error){
		registerPair[Health, Team],
		registerPair[Mass, Velocity],
		registerPair[Heat, Charge],
		registerPair[Position, Mass],
		registerPair[Charge, Team],
		registerPair[Age, Health],
	}
	for _, register := range pairs {
		sys, err := register(w)
		if err != nil {
			return err
		}
		scheduler.Register(sys)
	}

	scheduler.Register(churn)
	return nil
}

func registerPair[A, B any](w *ecs.World) (ecs.Executor, error) {
	sys, err := ecs.RegisterSystem[pairSystem[A, B]](w)
	if err != nil {
		return nil, err
	}
	return sys, nil
}
