// Package debugui provides Dear ImGui inspection windows for an ecs.World.
// Rendering is driven by ImguiSystem, an ordinary ECS system whose
// requirement is {ImguiItem}.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/sigecs/ecs"
)

// ImguiItem is a component that holds a Dear ImGui render function.
// Attach this to entities that should render ImGui widgets each frame.
type ImguiItem struct {
	Render func()
}

// ImguiInputState tracks whether Dear ImGui is consuming input this frame.
type ImguiInputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// ImguiSystem matches every entity holding an ImguiItem and defers its render
// function to the end of the frame.
type ImguiSystem struct {
	ecs.SystemBase
	input ImguiInputState
}

// Init registers ImguiItem and declares the system's requirement.
func (s *ImguiSystem) Init(w *ecs.World) error {
	if _, err := ecs.RegisterComponent[ImguiItem](w); err != nil {
		return err
	}
	var sig ecs.Signature
	if err := ecs.Require[ImguiItem](w, &sig); err != nil {
		return err
	}
	return ecs.SetSystemSignature[ImguiSystem](w, sig)
}

// Execute updates input state and queues all ImGui render functions.
func (s *ImguiSystem) Execute(frame *ecs.UpdateFrame) {
	io := imgui.CurrentIO()
	s.input.WantCaptureMouse = io.WantCaptureMouse()
	s.input.WantCaptureKeyboard = io.WantCaptureKeyboard()

	for _, render := range s.renderFuncs(frame.World) {
		frame.Commands.Defer(render)
	}
}

// InputState returns the capture state recorded by the last Execute.
func (s *ImguiSystem) InputState() ImguiInputState {
	return s.input
}

func (s *ImguiSystem) renderFuncs(w *ecs.World) []func() {
	funcs := make([]func(), 0, s.Entities().Len())
	for e := range s.Entities().All() {
		item, err := ecs.GetComponent[ImguiItem](w, e)
		if err != nil || item.Render == nil {
			continue
		}
		funcs = append(funcs, item.Render)
	}
	return funcs
}

// Inspector bundles the debug windows and renders them together.
type Inspector struct {
	Browser     *EntityBrowser
	Components  *ComponentInspector
	Systems     *SystemViewer
	Signatures  *SignatureDebugger
	Performance *PerformanceStats

	scheduler *ecs.Scheduler
	timer     *FrameTimer
}

// NewInspector creates the debug windows. The scheduler may be nil, in which
// case the performance window shows world statistics only.
func NewInspector(scheduler *ecs.Scheduler) *Inspector {
	return &Inspector{
		Browser:     NewEntityBrowser(100),
		Components:  NewComponentInspector(),
		Systems:     NewSystemViewer(),
		Signatures:  NewSignatureDebugger(),
		Performance: NewPerformanceStats(120),
		scheduler:   scheduler,
		timer:       NewFrameTimer(),
	}
}

// Render draws every window for w.
func (in *Inspector) Render(w *ecs.World) {
	dt := in.timer.GetDeltaTime()

	in.Browser.Render(w)
	if e, ok := in.Browser.Selected(); ok {
		in.Components.Render(w, e, true)
	} else {
		in.Components.Render(w, 0, false)
	}
	in.Systems.Render(w)
	in.Signatures.Render(w)
	in.Performance.Render(w, in.scheduler, dt)
}

// Attach registers ImguiSystem with w and scheduler and creates an entity
// whose ImguiItem renders a new Inspector.
func Attach(w *ecs.World, scheduler *ecs.Scheduler) (*Inspector, ecs.Entity, error) {
	sys, err := ecs.RegisterSystem[ImguiSystem](w)
	if err != nil {
		return nil, 0, err
	}
	scheduler.Register(sys)

	inspector := NewInspector(scheduler)
	e, err := w.NewEntity()
	if err != nil {
		return nil, 0, err
	}
	if _, err := ecs.AddComponent(w, e, ImguiItem{Render: func() { inspector.Render(w) }}); err != nil {
		_ = w.DestroyEntity(e)
		return nil, 0, err
	}
	return inspector, e, nil
}
