package ecs

import (
	"context"
	"reflect"
	"time"
)

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	SystemCount     int
	TotalExecutions int64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Name           string
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

// timing accumulates the durations of one executor.
type timing struct {
	name  string
	runs  int64
	min   time.Duration
	max   time.Duration
	last  time.Duration
	total time.Duration
}

func (t *timing) record(d time.Duration) {
	if t.runs == 0 || d < t.min {
		t.min = d
	}
	t.max = max(t.max, d)
	t.last = d
	t.total += d
	t.runs++
}

func (t *timing) stats() SystemStats {
	s := SystemStats{
		Name:           t.name,
		ExecutionCount: t.runs,
		MinDuration:    t.min,
		MaxDuration:    t.max,
		LastDuration:   t.last,
		TotalDuration:  t.total,
	}
	if t.runs > 0 {
		s.AvgDuration = t.total / time.Duration(t.runs)
	}
	return s
}

// Scheduler runs executors in the order they were registered, once per call to
// Once. It is a convenience for game loops; systems can equally be updated by
// hand in whatever order the loop prefers.
type Scheduler struct {
	world   *World
	frame   *UpdateFrame
	systems []Executor
	timings []timing
}

// NewScheduler creates a scheduler bound to w.
func NewScheduler(w *World) *Scheduler {
	return &Scheduler{
		world: w,
		frame: newUpdateFrame(0, w),
	}
}

// Register appends an executor. It is usually a system returned by
// RegisterSystem.
func (s *Scheduler) Register(system Executor) {
	t := reflect.TypeOf(system)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	s.systems = append(s.systems, system)
	s.timings = append(s.timings, timing{name: t.Name()})
}

// Once executes all registered systems with the given delta time, then applies
// the commands they queued. Command errors are returned after logging.
func (s *Scheduler) Once(dt float64) error {
	s.frame.DeltaTime = dt

	for i, system := range s.systems {
		start := time.Now()
		system.Execute(s.frame)
		s.timings[i].record(time.Since(start))
	}

	if err := s.frame.Commands.Flush(s.world); err != nil {
		s.world.log.Error("applying frame commands", "error", err)
		return err
	}
	return nil
}

// Run calls Once every interval until ctx is done or a frame's commands
// fail. dt is the wall time since the previous tick.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			if err := s.Once(dt); err != nil {
				return err
			}
		}
	}
}

// GetStats returns statistics about system execution.
func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{
		SystemCount: len(s.systems),
		Systems:     make([]SystemStats, len(s.timings)),
	}
	for i := range s.timings {
		stats.Systems[i] = s.timings[i].stats()
		stats.TotalExecutions += s.timings[i].runs
	}
	return stats
}
