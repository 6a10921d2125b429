package debugui

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/sigecs/ecs"
)

// SignatureDebugger lets the user tick component types and shows which live
// entities, and which systems, a requirement built from them would match.
type SignatureDebugger struct {
	selected map[ecs.ComponentID]bool
}

func NewSignatureDebugger() *SignatureDebugger {
	return &SignatureDebugger{
		selected: make(map[ecs.ComponentID]bool),
	}
}

// Signature returns the requirement built from the ticked component types.
func (sd *SignatureDebugger) Signature() ecs.Signature {
	var sig ecs.Signature
	for id, on := range sd.selected {
		if on {
			sig.Set(id)
		}
	}
	return sig
}

// Toggle flips the selection of id.
func (sd *SignatureDebugger) Toggle(id ecs.ComponentID) {
	if sd.selected[id] {
		delete(sd.selected, id)
		return
	}
	sd.selected[id] = true
}

func (sd *SignatureDebugger) Render(w *ecs.World) {
	if !imgui.BeginV("Signature Debugger", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}
	defer imgui.End()

	imgui.Text("Select Component Types:")
	imgui.Separator()

	if imgui.Button("Clear All") {
		clear(sd.selected)
	}

	for i, t := range w.Components().Types() {
		id := ecs.ComponentID(i)
		on := sd.selected[id]
		if imgui.Checkbox(fmt.Sprintf("%d: %s", id, t), &on) {
			sd.Toggle(id)
		}
	}

	imgui.Separator()

	sig := sd.Signature()
	if sig.IsEmpty() {
		imgui.Text("No component types selected")
		return
	}

	imgui.Text(fmt.Sprintf("Signature: %s", sig))
	imgui.Text(fmt.Sprintf("Matching Entities: %d", len(matchingEntities(w, sig))))

	if imgui.TreeNodeStr("Systems that would see these entities") {
		for _, name := range systemsCovering(w, sig) {
			imgui.BulletText(name)
		}
		imgui.TreePop()
	}
}

// matchingEntities returns the live entities whose signature contains required.
func matchingEntities(w *ecs.World, required ecs.Signature) []ecs.Entity {
	var matches []ecs.Entity
	for e := range w.Entities() {
		sig, err := w.Signature(e)
		if err == nil && sig.Contains(required) {
			matches = append(matches, e)
		}
	}
	return matches
}

// systemsCovering returns the bound systems whose requirement is a subset of
// sig, i.e. those that match any entity holding at least sig.
func systemsCovering(w *ecs.World, sig ecs.Signature) []string {
	var names []string
	for _, info := range w.Systems().Systems() {
		if info.Bound && sig.Contains(info.Requirement) {
			names = append(names, info.Name)
		}
	}
	return names
}
