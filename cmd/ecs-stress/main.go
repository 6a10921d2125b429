package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"runtime"
	"time"

	"github.com/pkg/profile"
	"github.com/plus3/sigecs/ecs"
	"github.com/rotisserie/eris"
)

type config struct {
	Duration       time.Duration
	Entities       int
	Churn          int
	Seed           uint64
	MaxAge         uint
	GCPauseMetrics bool
	Logger         *slog.Logger
}

func main() {
	os.Exit(realMain(os.Args[1:], os.Stdout))
}

// realMain runs the tool and returns the process exit code. Deferred work,
// such as flushing a profile, completes before it returns.
func realMain(args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("ecs-stress", flag.ContinueOnError)
	var cfg config
	fs.DurationVar(&cfg.Duration, "duration", 10*time.Second, "The total duration the test should run for.")
	fs.IntVar(&cfg.Entities, "entities", 2000, "The initial number of entities to create.")
	fs.IntVar(&cfg.Churn, "churn", 16, "Random component toggles queued per frame.")
	fs.Uint64Var(&cfg.Seed, "seed", uint64(time.Now().UnixNano()), "Seed for the random churn.")
	fs.UintVar(&cfg.MaxAge, "max-age", 600, "Frames an aging entity lives before it is destroyed. 0 disables aging.")
	fs.BoolVar(&cfg.GCPauseMetrics, "gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	profileMode := fs.String("profile", "", "Write a cpu or mem profile to the working directory.")
	profileDir := fs.String("profile-dir", ".", "Directory the profile is written to.")
	verbose := fs.Bool("v", false, "Log world diagnostics at debug level.")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	cfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	switch *profileMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(*profileDir), profile.NoShutdownHook, profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(*profileDir), profile.NoShutdownHook, profile.Quiet).Stop()
	default:
		cfg.Logger.Error("unknown profile mode", "mode", *profileMode)
		return 2
	}

	report, err := run(context.Background(), cfg)
	if err != nil {
		cfg.Logger.Error("stress test failed", "err", eris.ToString(err, false))
		return 1
	}

	fmt.Fprintln(stdout, "\n\n--- Stress Test Report ---")
	if err := report.Generate(stdout); err != nil {
		cfg.Logger.Error("failed to generate report", "err", err)
		return 1
	}
	fmt.Fprintln(stdout, "--- End of Report ---")
	return 0
}

func run(ctx context.Context, cfg config) (*Report, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Duration <= 0 || cfg.Entities < 0 {
		return nil, eris.Errorf("invalid run: duration %s, entities %d", cfg.Duration, cfg.Entities)
	}
	logger.Info("starting ECS stress test", "entities", cfg.Entities, "seed", cfg.Seed)

	w := ecs.NewWorld(ecs.Config{
		MaxEntities: max(cfg.Entities*2, 1),
		Logger:      ecs.NewSlogLogger(logger),
	})
	if err := registerComponents(w); err != nil {
		return nil, eris.Wrap(err, "register components")
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	scheduler := ecs.NewScheduler(w)
	churn := &ChurnSystem{Rng: rng, Ops: cfg.Churn}
	if err := registerSystems(w, scheduler, churn, uint32(cfg.MaxAge)); err != nil {
		return nil, eris.Wrap(err, "register systems")
	}

	for range cfg.Entities {
		if _, err := spawnRandom(w, rng, rng.IntN(5)+1); err != nil {
			return nil, eris.Wrap(err, "populate world")
		}
	}
	logger.Info("population complete", "live", w.EntityCount())

	report := &Report{
		Duration:       cfg.Duration,
		Entities:       cfg.Entities,
		MaxEntities:    w.MaxEntities(),
		Components:     len(kinds),
		Seed:           cfg.Seed,
		ChurnOps:       cfg.Churn,
		GCPauseMetrics: cfg.GCPauseMetrics,
	}
	runtime.ReadMemStats(&report.MemStatsStart)

	ctx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	startTime := time.Now()
	lastFrameTime := startTime

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			deltaTime := time.Since(lastFrameTime)
			lastFrameTime = time.Now()

			updateStart := time.Now()
			if err := scheduler.Once(deltaTime.Seconds()); err != nil {
				report.CommandErrors++
			}
			report.UpdateTime.Samples = append(report.UpdateTime.Samples, time.Since(updateStart))
			report.TotalUpdates++
		}
	}

	report.TotalTime = time.Since(startTime)
	report.UpdateTime.Finalize()
	runtime.ReadMemStats(&report.MemStatsEnd)

	report.Spawned = churn.Spawned
	report.SpawnFails = churn.SpawnFails
	report.World = w.CollectStats()
	report.Scheduler = scheduler.GetStats()
	report.Systems = report.Scheduler.SystemCount
	report.Validation = "ok"
	if err := w.Validate(); err != nil {
		report.Validation = err.Error()
		logger.Error("world failed validation", "err", err)
	}

	logger.Info("simulation finished", "updates", report.TotalUpdates, "live", w.EntityCount())
	return report, nil
}
