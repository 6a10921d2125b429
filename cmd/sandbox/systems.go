package main

import (
	"fmt"
	"image/color"
	"math"
	"reflect"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/plus3/sigecs/ecs"
)

// PlayerSystem turns arrow keys into player velocity.
type PlayerSystem struct {
	ecs.SystemBase
	// Pressed reports whether a key is held. Defaults to ebiten.IsKeyPressed.
	Pressed func(ebiten.Key) bool
	// Captured reports whether another consumer owns the keyboard this frame.
	Captured func() bool
}

func (s *PlayerSystem) Init(w *ecs.World) error {
	sig, err := ecs.SignatureOf(w, reflect.TypeFor[Transform](), reflect.TypeFor[Body](), reflect.TypeFor[Player]())
	if err != nil {
		return err
	}
	s.Pressed = ebiten.IsKeyPressed
	return ecs.SetSystemSignature[PlayerSystem](w, sig)
}

func (s *PlayerSystem) Execute(frame *ecs.UpdateFrame) {
	if s.Captured != nil && s.Captured() {
		return
	}
	for e := range s.Entities().All() {
		player := ecs.MustGetComponent[Player](frame.World, e)
		body := ecs.MustGetComponent[Body](frame.World, e)

		body.VX = 0
		if s.Pressed(ebiten.KeyArrowLeft) {
			body.VX -= player.MoveSpeed
		}
		if s.Pressed(ebiten.KeyArrowRight) {
			body.VX += player.MoveSpeed
		}
		if s.Pressed(ebiten.KeyArrowUp) && body.Grounded {
			body.VY = -player.JumpSpeed
			body.Grounded = false
		}
		if s.Pressed(ebiten.KeyArrowDown) {
			body.VY += player.MoveSpeed * frame.DeltaTime
		}
	}
}

// PhysicsSystem integrates bodies under gravity and keeps them inside the
// arena.
type PhysicsSystem struct {
	ecs.SystemBase
	Gravity float64
	Floor   float64
	Width   float64
}

func (s *PhysicsSystem) Init(w *ecs.World) error {
	sig, err := ecs.SignatureOf(w, reflect.TypeFor[Transform](), reflect.TypeFor[Body]())
	if err != nil {
		return err
	}
	return ecs.SetSystemSignature[PhysicsSystem](w, sig)
}

func (s *PhysicsSystem) Execute(frame *ecs.UpdateFrame) {
	dt := frame.DeltaTime
	for e := range s.Entities().All() {
		body := ecs.MustGetComponent[Body](frame.World, e)
		if body.Kinematic {
			continue
		}
		t := ecs.MustGetComponent[Transform](frame.World, e)

		body.VY += s.Gravity * dt
		t.X += body.VX * dt
		t.Y += body.VY * dt

		if bottom := t.Y + t.H/2; bottom >= s.Floor {
			t.Y = s.Floor - t.H/2
			body.VY = 0
			body.Grounded = true
		}
		t.X = min(max(t.X, t.W/2), s.Width-t.W/2)
	}
}

// AnimationSystem advances every playing Animator. A one-shot animation stops
// on its last frame.
type AnimationSystem struct {
	ecs.SystemBase
}

func (s *AnimationSystem) Init(w *ecs.World) error {
	sig, err := ecs.SignatureOf(w, reflect.TypeFor[Animator]())
	if err != nil {
		return err
	}
	return ecs.SetSystemSignature[AnimationSystem](w, sig)
}

func (s *AnimationSystem) Execute(frame *ecs.UpdateFrame) {
	for e := range s.Entities().All() {
		step(ecs.MustGetComponent[Animator](frame.World, e), frame.DeltaTime)
	}
}

func step(a *Animator, dt float64) {
	if !a.Playing || a.Frames <= 0 || a.FrameTime <= 0 {
		return
	}
	a.Elapsed += dt
	for a.Elapsed >= a.FrameTime {
		a.Elapsed -= a.FrameTime
		a.Frame++
		if a.Frame < a.Frames {
			continue
		}
		if a.Loop {
			a.Frame = 0
			continue
		}
		a.Frame = a.Frames - 1
		a.Playing = false
		a.Elapsed = 0
		return
	}
}

// PickupSystem bobs floating pickups, starts the collect animation when the
// player touches one, and destroys it once that animation finishes.
type PickupSystem struct {
	ecs.SystemBase
	Player    ecs.Entity
	ChimeFreq float64

	Collected int
	Total     int
	time      float64
}

const (
	pickupBob   = 6.0
	pickupSize  = 24.0
	collectTime = 0.05
)

var (
	pickupColor = color.RGBA{230, 57, 70, 255}
	playerColor = color.RGBA{69, 123, 157, 255}
)

func (s *PickupSystem) Init(w *ecs.World) error {
	sig, err := ecs.SignatureOf(w, reflect.TypeFor[Transform](), reflect.TypeFor[Pickup](), reflect.TypeFor[Animator]())
	if err != nil {
		return err
	}
	s.ChimeFreq = 880
	return ecs.SetSystemSignature[PickupSystem](w, sig)
}

func (s *PickupSystem) Spawn(w *ecs.World, x, y float64) (ecs.Entity, error) {
	e, err := w.NewEntity()
	if err != nil {
		return 0, err
	}
	if _, err := ecs.AddComponent(w, e, Transform{X: x, Y: y, W: pickupSize, H: pickupSize}); err != nil {
		return 0, err
	}
	if _, err := ecs.AddComponent(w, e, Body{Kinematic: true}); err != nil {
		return 0, err
	}
	if _, err := ecs.AddComponent(w, e, Sprite{Color: pickupColor, Shape: ShapeCircle}); err != nil {
		return 0, err
	}
	if _, err := ecs.AddComponent(w, e, Pickup{Floating: true, BaseY: y}); err != nil {
		return 0, err
	}
	if _, err := ecs.AddComponent(w, e, NewAnimator(7, 0.1, true)); err != nil {
		return 0, err
	}
	s.Total++
	return e, nil
}

func (s *PickupSystem) Won() bool {
	return s.Total > 0 && s.Collected >= s.Total
}

func (s *PickupSystem) Execute(frame *ecs.UpdateFrame) {
	w := frame.World
	s.time += frame.DeltaTime

	player, err := ecs.GetComponent[Transform](w, s.Player)
	if err != nil {
		return
	}

	for e := range s.Entities().All() {
		pickup := ecs.MustGetComponent[Pickup](w, e)
		t := ecs.MustGetComponent[Transform](w, e)
		anim := ecs.MustGetComponent[Animator](w, e)

		if pickup.Floating {
			t.Y = pickup.BaseY + math.Sin(s.time*3)*pickupBob
		}

		if !pickup.Collecting && t.Overlaps(*player) {
			pickup.Collecting = true
			pickup.Floating = false
			*anim = NewAnimator(6, collectTime, false)
			ecs.QueueAdd(frame.Commands, e, SoundCue{Freq: s.ChimeFreq})
		}

		if pickup.Collecting && !anim.Playing {
			s.Collected++
			// Destroying invalidates this system's set, so stop for this frame.
			if err := w.DestroyEntity(e); err != nil {
				panic(err)
			}
			break
		}
	}
}

// RenderSystem draws every visible sprite. It is driven from Game.Draw rather
// than the scheduler.
type RenderSystem struct {
	ecs.SystemBase
}

func (s *RenderSystem) Init(w *ecs.World) error {
	sig, err := ecs.SignatureOf(w, reflect.TypeFor[Transform](), reflect.TypeFor[Sprite]())
	if err != nil {
		return err
	}
	return ecs.SetSystemSignature[RenderSystem](w, sig)
}

func (s *RenderSystem) Draw(screen *ebiten.Image, w *ecs.World, pickups *PickupSystem) {
	screen.Fill(color.RGBA{0, 128, 26, 255})

	for e := range s.Entities().All() {
		sprite := ecs.MustGetComponent[Sprite](w, e)
		if sprite.Hidden {
			continue
		}
		t := ecs.MustGetComponent[Transform](w, e)
		width, height := t.W*spriteScale(w, e), t.H*spriteScale(w, e)

		switch sprite.Shape {
		case ShapeCircle:
			vector.DrawFilledCircle(screen, float32(t.X), float32(t.Y), float32(min(width, height)/2), sprite.Color, true)
		default:
			vector.DrawFilledRect(screen, float32(t.X-width/2), float32(t.Y-height/2), float32(width), float32(height), sprite.Color, false)
		}
	}

	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("pickups %d/%d", pickups.Collected, pickups.Total), 8, 8)
	if pickups.Won() {
		cx, cy := float32(screen.Bounds().Dx())/2, float32(screen.Bounds().Dy())/2
		vector.DrawFilledRect(screen, cx-100, cy-30, 200, 60, color.RGBA{20, 20, 20, 220}, false)
		vector.StrokeRect(screen, cx-100, cy-30, 200, 60, 2, color.RGBA{255, 215, 0, 255}, false)
		ebitenutil.DebugPrintAt(screen, "YOU WIN!", int(cx)-24, int(cy)-8)
	}
}

// spriteScale shrinks a pickup through its collect animation.
func spriteScale(w *ecs.World, e ecs.Entity) float64 {
	pickup, err := ecs.GetComponent[Pickup](w, e)
	if err != nil || !pickup.Collecting {
		return 1
	}
	anim := ecs.MustGetComponent[Animator](w, e)
	return 1 - float64(anim.Frame+1)/float64(anim.Frames+1)
}
