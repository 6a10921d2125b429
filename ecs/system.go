package ecs

// System is implemented by every registered system. Concrete systems embed
// SystemBase to satisfy it and define their own Update methods taking whatever
// context they need (delta time, camera, input).
type System interface {
	Entities() *EntitySet
}

// SystemBase holds the entity set the World maintains for a system.
type SystemBase struct {
	entities EntitySet
}

// Entities returns the entities whose signature contains the system's requirement.
func (b *SystemBase) Entities() *EntitySet {
	return &b.entities
}

// Initializer is implemented by systems that need set-up after construction,
// such as creating helper entities or allocating private state. Init runs once,
// when the system is first registered.
type Initializer interface {
	Init(w *World) error
}

// Executor is a system the Scheduler can drive once per frame.
type Executor interface {
	Execute(frame *UpdateFrame)
}
