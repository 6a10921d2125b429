// Command sandbox is a small pickup game: steer the square with the arrow
// keys and collect every floating pickup.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/sigecs/ecs"
	"github.com/plus3/sigecs/ecs/debugui"
	debugui_ebiten "github.com/plus3/sigecs/ecs/debugui/ebiten"
	"github.com/rotisserie/eris"
)

const (
	ScreenWidth  = 1280
	ScreenHeight = 720
	FloorY       = 640
)

var pickupSpots = [][2]float64{
	{320, 560},
	{560, 600},
	{840, 540},
	{1100, 580},
}

// sandbox is the world and systems of one game, independent of the window.
type sandbox struct {
	world     *ecs.World
	scheduler *ecs.Scheduler
	player    ecs.Entity
	input     *PlayerSystem
	pickups   *PickupSystem
	audio     *AudioSystem
	render    *RenderSystem
}

func newSandbox(logger *slog.Logger, out Output) (*sandbox, error) {
	w := ecs.NewWorld(ecs.Config{
		MaxEntities: 64,
		Logger:      ecs.NewSlogLogger(logger),
	})
	if err := registerComponents(w); err != nil {
		return nil, eris.Wrap(err, "register components")
	}

	s := &sandbox{world: w, scheduler: ecs.NewScheduler(w)}

	var err error
	if s.input, err = ecs.RegisterSystem[PlayerSystem](w); err != nil {
		return nil, err
	}
	physics, err := ecs.RegisterSystem[PhysicsSystem](w)
	if err != nil {
		return nil, err
	}
	physics.Gravity = 1200
	physics.Floor = FloorY
	physics.Width = ScreenWidth
	animation, err := ecs.RegisterSystem[AnimationSystem](w)
	if err != nil {
		return nil, err
	}
	if s.pickups, err = ecs.RegisterSystem[PickupSystem](w); err != nil {
		return nil, err
	}
	if s.audio, err = ecs.RegisterSystem[AudioSystem](w); err != nil {
		return nil, err
	}
	s.audio.Output = out
	if s.render, err = ecs.RegisterSystem[RenderSystem](w); err != nil {
		return nil, err
	}

	s.scheduler.Register(s.input)
	s.scheduler.Register(physics)
	s.scheduler.Register(animation)
	s.scheduler.Register(s.pickups)
	s.scheduler.Register(s.audio)

	if s.player, err = spawnPlayer(w, 110, FloorY-25); err != nil {
		return nil, eris.Wrap(err, "spawn player")
	}
	s.pickups.Player = s.player
	for _, p := range pickupSpots {
		if _, err := s.pickups.Spawn(w, p[0], p[1]); err != nil {
			return nil, eris.Wrap(err, "spawn pickup")
		}
	}
	return s, nil
}

func spawnPlayer(w *ecs.World, x, y float64) (ecs.Entity, error) {
	e, err := w.NewEntity()
	if err != nil {
		return 0, err
	}
	if _, err := ecs.AddComponent(w, e, Transform{X: x, Y: y, W: 40, H: 50}); err != nil {
		return 0, err
	}
	if _, err := ecs.AddComponent(w, e, Body{}); err != nil {
		return 0, err
	}
	if _, err := ecs.AddComponent(w, e, Player{MoveSpeed: 300, JumpSpeed: 560}); err != nil {
		return 0, err
	}
	if _, err := ecs.AddComponent(w, e, Sprite{Color: playerColor}); err != nil {
		return 0, err
	}
	return e, nil
}

type Game struct {
	*sandbox
	backend *debugui_ebiten.ImguiBackend
	log     *slog.Logger
}

func (g *Game) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyEscape) || ebiten.IsKeyPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}

	if g.backend != nil {
		g.backend.BeginFrame()
	}
	if err := g.scheduler.Once(1.0 / 60.0); err != nil {
		g.log.Debug("frame commands rejected", "err", err)
	}
	if g.backend != nil {
		g.backend.EndFrame()
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.render.Draw(screen, g.world, g.pickups)
	if g.backend != nil {
		g.backend.Draw(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if g.backend != nil {
		g.backend.Layout(ScreenWidth, ScreenHeight)
	}
	return ScreenWidth, ScreenHeight
}

func main() {
	debug := flag.Bool("debug", false, "Show the ECS inspector windows.")
	mute := flag.Bool("mute", false, "Disable audio.")
	verbose := flag.Bool("v", false, "Log world diagnostics at debug level.")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	var out Output
	if !*mute {
		var err error
		if out, err = openSpeaker(); err != nil {
			logger.Warn("audio disabled", "err", err)
		}
	}

	s, err := newSandbox(logger, out)
	if err != nil {
		logger.Error("setup failed", "err", eris.ToString(err, false))
		os.Exit(1)
	}
	game := &Game{sandbox: s, log: logger}

	if *debug {
		game.backend = debugui_ebiten.NewImguiBackend("Sandbox", ScreenWidth, ScreenHeight)
		if _, _, err := debugui.Attach(s.world, s.scheduler); err != nil {
			logger.Error("debug ui failed", "err", err)
			os.Exit(1)
		}
		imguiSystem, err := ecs.RegisterSystem[debugui.ImguiSystem](s.world)
		if err != nil {
			logger.Error("debug ui failed", "err", err)
			os.Exit(1)
		}
		s.input.Captured = func() bool { return imguiSystem.InputState().WantCaptureKeyboard }
	} else {
		ebiten.SetWindowSize(ScreenWidth, ScreenHeight)
		ebiten.SetWindowTitle("Sandbox")
	}
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil {
		logger.Error("game exited", "err", err)
		os.Exit(1)
	}
}
