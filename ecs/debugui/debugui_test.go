package debugui

import (
	"reflect"
	"testing"

	"github.com/plus3/sigecs/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type position struct {
	X, Y float32
}

type health struct {
	Current int16
	Max     uint8
	Label   *string
	hidden  int
}

type poisoned struct{}

type moveSystem struct {
	ecs.SystemBase
}

func newDebugWorld(t *testing.T) *ecs.World {
	t.Helper()
	w := ecs.NewWorld(ecs.Config{MaxEntities: 32})
	_, err := ecs.RegisterComponent[position](w)
	require.NoError(t, err)
	_, err = ecs.RegisterComponent[health](w)
	require.NoError(t, err)
	_, err = ecs.RegisterComponent[poisoned](w)
	require.NoError(t, err)
	return w
}

func spawn(t *testing.T, w *ecs.World, components ...any) ecs.Entity {
	t.Helper()
	e, err := w.NewEntity()
	require.NoError(t, err)
	for _, c := range components {
		switch c := c.(type) {
		case position:
			_, err = ecs.AddComponent(w, e, c)
		case health:
			_, err = ecs.AddComponent(w, e, c)
		case poisoned:
			_, err = ecs.AddComponent(w, e, c)
		}
		require.NoError(t, err)
	}
	return e
}

func TestAttach(t *testing.T) {
	w := newDebugWorld(t)
	scheduler := ecs.NewScheduler(w)

	inspector, e, err := Attach(w, scheduler)
	require.NoError(t, err)
	require.NotNil(t, inspector)
	assert.True(t, ecs.HasComponent[ImguiItem](w, e))
	assert.Equal(t, 1, scheduler.GetStats().SystemCount)

	sys, err := ecs.RegisterSystem[ImguiSystem](w)
	require.NoError(t, err)
	assert.True(t, sys.Entities().Contains(e))

	_, err = ecs.AddComponent(w, spawn(t, w), ImguiItem{})
	require.NoError(t, err)
	assert.Len(t, sys.renderFuncs(w), 1, "items without a render function are skipped")

	require.NoError(t, w.Validate())
}

func TestEntityRows(t *testing.T) {
	w := newDebugWorld(t)
	a := spawn(t, w, position{}, health{})
	b := spawn(t, w, poisoned{})
	c := spawn(t, w)

	rows := collectEntityRows(w, nil)
	require.Len(t, rows, 3)
	assert.Equal(t, EntityRow{
		ID:         a,
		Signature:  ecs.NewSignature(0, 1),
		Components: []string{"debugui.position", "debugui.health"},
	}, rows[0])
	assert.Equal(t, []string{}, rows[2].Components)

	t.Run("filter", func(t *testing.T) {
		assert.Equal(t, []ecs.Entity{b}, rowIDs(filterEntityRows(rows, "POISON")))
		assert.Equal(t, []ecs.Entity{a}, rowIDs(filterEntityRows(rows, "health")))
		assert.Equal(t, []ecs.Entity{c}, rowIDs(filterEntityRows(rows, "2")))
		assert.Len(t, filterEntityRows(rows, ""), 3)
	})

	t.Run("sort", func(t *testing.T) {
		sorted := append([]EntityRow(nil), rows...)
		sortEntityRows(sorted, 3, false)
		assert.Equal(t, []ecs.Entity{a, b, c}, rowIDs(sorted))

		sortEntityRows(sorted, 3, true)
		assert.Equal(t, []ecs.Entity{c, b, a}, rowIDs(sorted))

		sortEntityRows(sorted, 0, true)
		assert.Equal(t, []ecs.Entity{a, b, c}, rowIDs(sorted))
	})

	t.Run("rows follow destruction", func(t *testing.T) {
		require.NoError(t, w.DestroyEntity(b))
		assert.Equal(t, []ecs.Entity{a, c}, rowIDs(collectEntityRows(w, rows)))
	})
}

func rowIDs(rows []EntityRow) []ecs.Entity {
	ids := make([]ecs.Entity, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	return ids
}

func TestPageBounds(t *testing.T) {
	start, end := pageBounds(25, 0, 10)
	assert.Equal(t, [2]int{0, 10}, [2]int{start, end})
	start, end = pageBounds(25, 2, 10)
	assert.Equal(t, [2]int{20, 25}, [2]int{start, end})
	start, end = pageBounds(5, 3, 10)
	assert.Equal(t, [2]int{5, 5}, [2]int{start, end})
}

func TestEntityBrowserSelection(t *testing.T) {
	eb := NewEntityBrowser(0)
	_, ok := eb.Selected()
	assert.False(t, ok)

	eb.Select(0)
	e, ok := eb.Selected()
	assert.True(t, ok)
	assert.Equal(t, ecs.Entity(0), e)
}

func TestSignatureDebugger(t *testing.T) {
	w := newDebugWorld(t)
	a := spawn(t, w, position{}, health{})
	b := spawn(t, w, position{})
	spawn(t, w, health{})

	move, err := ecs.RegisterSystem[moveSystem](w)
	require.NoError(t, err)
	require.NotNil(t, move)
	require.NoError(t, ecs.SetSystemSignature[moveSystem](w, ecs.NewSignature(0)))

	sd := NewSignatureDebugger()
	assert.True(t, sd.Signature().IsEmpty())

	sd.Toggle(0)
	assert.Equal(t, ecs.NewSignature(0), sd.Signature())
	assert.Equal(t, []ecs.Entity{a, b}, matchingEntities(w, sd.Signature()))
	assert.Equal(t, []string{"moveSystem"}, systemsCovering(w, sd.Signature()))

	sd.Toggle(1)
	assert.Equal(t, []ecs.Entity{a}, matchingEntities(w, sd.Signature()))
	assert.Equal(t, []string{"moveSystem"}, systemsCovering(w, sd.Signature()))

	sd.Toggle(0)
	assert.Equal(t, ecs.NewSignature(1), sd.Signature())
	assert.Empty(t, systemsCovering(w, sd.Signature()))
}

func TestSystemRows(t *testing.T) {
	w := newDebugWorld(t)
	spawn(t, w, position{})
	e := spawn(t, w, position{}, health{})

	_, err := ecs.RegisterSystem[moveSystem](w)
	require.NoError(t, err)
	_, err = ecs.RegisterSystem[ImguiSystem](w)
	require.NoError(t, err)
	require.NoError(t, ecs.SetSystemSignature[moveSystem](w, ecs.NewSignature(0)))

	rows := w.CollectStats().Systems
	sortSystemRows(rows, 3, false)
	assert.Equal(t, "moveSystem", rows[0].Name)
	assert.Equal(t, 2, rows[0].EntityCount)

	sortSystemRows(rows, 0, true)
	assert.Equal(t, "ImguiSystem", rows[0].Name)

	require.NoError(t, ecs.RemoveComponent[position](w, e))
	assert.Len(t, systemEntities(w, "moveSystem"), 1)
	assert.Nil(t, systemEntities(w, "missing"))
}

func TestReflectionCache(t *testing.T) {
	rc := NewReflectionCache()

	fields := rc.Fields(reflect.TypeFor[health]())
	require.Len(t, fields, 3, "unexported fields are skipped")
	assert.Equal(t, "Label", fields[2].Name)
	assert.True(t, fields[2].IsPointer)
	assert.Equal(t, reflect.String, fields[2].Kind())

	again := rc.Fields(reflect.TypeFor[health]())
	assert.Same(t, &fields[0], &again[0], "cached slice is reused")

	assert.Empty(t, rc.Fields(reflect.TypeFor[int]()))
}

func TestAssignNumber(t *testing.T) {
	h := health{Current: 5, Max: 10}
	v := reflect.ValueOf(&h).Elem()

	assert.True(t, assignNumber(v.Field(0), 42))
	assert.Equal(t, int16(42), h.Current)

	assert.False(t, assignNumber(v.Field(0), 1<<20), "overflow is rejected")
	assert.False(t, assignNumber(v.Field(1), -1), "negative unsigned is rejected")
	assert.False(t, assignNumber(v.Field(1), 300))
	assert.True(t, assignNumber(v.Field(1), 7.6))
	assert.Equal(t, uint8(8), h.Max)

	p := position{}
	pv := reflect.ValueOf(&p).Elem()
	assert.True(t, assignNumber(pv.Field(1), 2.5))
	assert.Equal(t, float32(2.5), p.Y)

	assert.False(t, assignNumber(reflect.ValueOf(h).Field(0), 1), "unaddressable values are read-only")

	n, ok := numericValue(v.Field(1))
	assert.True(t, ok)
	assert.Equal(t, 8.0, n)
	_, ok = numericValue(v.Field(2))
	assert.False(t, ok)
}

func TestPerformanceStats(t *testing.T) {
	ps := NewPerformanceStats(4)
	for _, dt := range []float32{0.010, 0.020, 0.030, 0.040, 0.050} {
		ps.Record(dt)
	}
	assert.InDelta(t, 35.0, ps.AverageFrameTime(), 0.001)
}
