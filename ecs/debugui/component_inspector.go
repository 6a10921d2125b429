package debugui

import (
	"fmt"
	"math"
	"reflect"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/sigecs/ecs"
)

// ComponentInspector shows and edits the components of one entity. Values are
// edited in place through the pointers the World hands out.
type ComponentInspector struct {
	// AllowDestroy shows a button that destroys the inspected entity.
	AllowDestroy bool
}

func NewComponentInspector() *ComponentInspector {
	return &ComponentInspector{AllowDestroy: true}
}

func (ci *ComponentInspector) Render(w *ecs.World, e ecs.Entity, selected bool) {
	if !imgui.BeginV("Component Inspector", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}
	defer imgui.End()

	if !selected {
		imgui.Text("No entity selected")
		return
	}
	sig, err := w.Signature(e)
	if err != nil {
		imgui.Text(fmt.Sprintf("Entity %d is not alive", e))
		return
	}

	imgui.Text(fmt.Sprintf("Entity: %d", e))
	imgui.Text(fmt.Sprintf("Signature: %s", sig))
	imgui.Separator()

	for _, id := range sig.IDs() {
		t := w.Components().Type(id)
		component, err := w.Component(e, t)
		if err != nil {
			imgui.Text(fmt.Sprintf("%s: %v", t, err))
			continue
		}

		if imgui.TreeNodeStr(t.String()) {
			renderComponent(component, t)
			imgui.TreePop()
		}
	}

	if ci.AllowDestroy && imgui.Button("Destroy Entity") {
		_ = w.DestroyEntity(e)
	}
}

func renderComponent(component any, t reflect.Type) {
	val := reflect.ValueOf(component)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	if t.Kind() != reflect.Struct {
		renderValue("value", val)
		return
	}

	for _, field := range fieldCache.Fields(t) {
		fieldVal := val.Field(field.Index)
		if field.IsPointer {
			if fieldVal.IsNil() {
				imgui.Text(fmt.Sprintf("%s: nil", field.Name))
				continue
			}
			fieldVal = fieldVal.Elem()
		}
		renderValue(field.Name, fieldVal)
	}
}

// renderValue draws an editor for v. v must be addressable for edits to stick.
func renderValue(name string, v reflect.Value) {
	if !v.IsValid() {
		imgui.Text(fmt.Sprintf("%s: <invalid>", name))
		return
	}

	id := "##" + name
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, _ := numericValue(v)
		x := int32(n)
		label(name)
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(id, &x) {
			assignNumber(v, float64(x))
		}

	case reflect.Float32, reflect.Float64:
		x := float32(v.Float())
		label(name)
		imgui.SetNextItemWidth(150)
		if imgui.InputFloat(id, &x) {
			assignNumber(v, float64(x))
		}

	case reflect.Bool:
		b := v.Bool()
		if imgui.Checkbox(name, &b) && v.CanSet() {
			v.SetBool(b)
		}

	case reflect.String:
		s := v.String()
		label(name)
		imgui.SetNextItemWidth(200)
		if imgui.InputTextWithHint(id, "", &s, imgui.InputTextFlagsNone, nil) && v.CanSet() {
			v.SetString(s)
		}

	case reflect.Struct:
		if imgui.TreeNodeStr(name) {
			for _, nf := range fieldCache.Fields(v.Type()) {
				nested := v.Field(nf.Index)
				if nf.IsPointer {
					if nested.IsNil() {
						imgui.Text(fmt.Sprintf("%s: nil", nf.Name))
						continue
					}
					nested = nested.Elem()
				}
				renderValue(nf.Name, nested)
			}
			imgui.TreePop()
		}

	case reflect.Slice, reflect.Array:
		imgui.Text(fmt.Sprintf("%s: [%d items]", name, v.Len()))

	case reflect.Map:
		imgui.Text(fmt.Sprintf("%s: map[%d items]", name, v.Len()))

	case reflect.Func:
		imgui.Text(fmt.Sprintf("%s: func", name))

	default:
		if v.CanInterface() {
			imgui.Text(fmt.Sprintf("%s: %v", name, v.Interface()))
		} else {
			imgui.Text(fmt.Sprintf("%s: %s", name, v.Type()))
		}
	}
}

func label(name string) {
	imgui.Text(name + ":")
	imgui.SameLine()
}

// numericValue reads any integer or float kind as float64.
func numericValue(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	}
	return 0, false
}

// assignNumber stores x into a settable numeric value, rejecting values the
// target kind cannot represent. It reports whether v changed.
func assignNumber(v reflect.Value, x float64) bool {
	if !v.CanSet() {
		return false
	}

	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := int64(math.Round(x))
		if v.OverflowInt(n) {
			return false
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if x < 0 {
			return false
		}
		n := uint64(math.Round(x))
		if v.OverflowUint(n) {
			return false
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		if v.OverflowFloat(x) {
			return false
		}
		v.SetFloat(x)
	default:
		return false
	}
	return true
}
