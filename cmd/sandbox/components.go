package main

import (
	"image/color"

	"github.com/plus3/sigecs/ecs"
)

// Transform is an axis-aligned box centred on X, Y.
type Transform struct {
	X, Y float64
	W, H float64
}

func (t Transform) Overlaps(o Transform) bool {
	return abs(t.X-o.X)*2 < t.W+o.W && abs(t.Y-o.Y)*2 < t.H+o.H
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// Body is a point mass. Kinematic bodies ignore gravity.
type Body struct {
	VX, VY    float64
	Kinematic bool
	Grounded  bool
}

type Player struct {
	MoveSpeed float64
	JumpSpeed float64
}

type Pickup struct {
	Floating   bool
	BaseY      float64
	Collecting bool
}

// Animator steps through Frames frames, FrameTime seconds each.
type Animator struct {
	Frames    int
	FrameTime float64
	Loop      bool

	Frame   int
	Elapsed float64
	Playing bool
}

func NewAnimator(frames int, frameTime float64, loop bool) Animator {
	return Animator{Frames: frames, FrameTime: frameTime, Loop: loop, Playing: true}
}

type Shape uint8

const (
	ShapeBox Shape = iota
	ShapeCircle
)

type Sprite struct {
	Color  color.RGBA
	Shape  Shape
	Hidden bool
}

// SoundCue asks the audio system to play a chime at Freq hertz once.
type SoundCue struct {
	Freq float64
}

func registerComponents(w *ecs.World) error {
	for _, register := range []func(*ecs.World) (ecs.ComponentID, error){
		ecs.RegisterComponent[Transform],
		ecs.RegisterComponent[Body],
		ecs.RegisterComponent[Player],
		ecs.RegisterComponent[Pickup],
		ecs.RegisterComponent[Animator],
		ecs.RegisterComponent[Sprite],
		ecs.RegisterComponent[SoundCue],
	} {
		if _, err := register(w); err != nil {
			return err
		}
	}
	return nil
}
