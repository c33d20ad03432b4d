package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"runtime"
	"time"

	"github.com/plus3/wayfarer/ecs"
	"github.com/plus3/wayfarer/motion"
	"github.com/plus3/wayfarer/settings"
	"github.com/plus3/wayfarer/waypoint"
)

func main() {
	configPath := flag.String("config", "", "Optional key=value settings file.")
	seed := flag.Uint64("seed", 1, "Seed for follower placement.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	flag.Parse()

	cfg, err := settings.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "waypoint-stress: %v\n", err)
		os.Exit(1)
	}
	logger := cfg.Logger()

	registry := ecs.NewComponentRegistry()
	registerComponents(registry)
	storage := ecs.NewStorage(registry)

	var completions int64
	processor := waypoint.NewProcessor(storage,
		waypoint.WithLogger(logger),
		waypoint.WithObserver(waypoint.ObserverFunc(func(waypoint.Finished) {
			completions++
		})),
	)

	scheduler := ecs.NewScheduler(storage, ecs.WithLogger(logger))
	scheduler.Register(&motion.MoveSystem{})
	scheduler.Register(processor)
	scheduler.Register(&motion.BoundsSystem{})

	logger.Info().Int("entities", cfg.StressEntities).Msg("populating storage")
	rng := rand.New(rand.NewPCG(*seed, *seed))
	routes := spawnFollowers(storage, rng, cfg.StressEntities, cfg.StressLoopRatio)
	logger.Info().Int("routes", routes).Msg("population complete")

	duration := time.Duration(cfg.StressSeconds * float64(time.Second))
	report := &Report{
		Duration:       duration,
		Entities:       cfg.StressEntities,
		Routes:         routes,
		LoopRatio:      cfg.StressLoopRatio,
		GCPauseMetrics: *gcPauseMetrics,
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	logger.Info().Dur("duration", duration).Msg("running simulation")
	ctx, cancel := context.WithTimeout(context.Background(), duration)
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
			scheduler.Once(deltaTime.Seconds())
			report.UpdateTime.Samples = append(report.UpdateTime.Samples, time.Since(updateStart))
		}
	}

	report.TotalTime = time.Since(startTime)
	report.TotalUpdates = int64(len(report.UpdateTime.Samples))
	report.UpdateTime.Finalize()
	report.Completions = completions
	report.ActiveRoutes = ecs.NewView[struct{ *waypoint.Route }](storage).Count()
	report.Store = storage.CollectStats()
	report.Scheduler = scheduler.GetStats()
	runtime.ReadMemStats(&report.MemStatsEnd)

	logger.Info().Int64("completions", completions).Msg("simulation finished")

	if err := report.Generate(os.Stdout); err != nil {
		logger.Fatal().Err(err).Msg("failed to generate report")
	}
}
