package main

import (
	"bytes"
	_ "embed"
	"flag"
	"fmt"
	"os"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"

	"github.com/plus3/wayfarer/debugui"
	debugui_ebiten "github.com/plus3/wayfarer/debugui/ebiten"
	"github.com/plus3/wayfarer/ecs"
	"github.com/plus3/wayfarer/motion"
	"github.com/plus3/wayfarer/scenario"
	"github.com/plus3/wayfarer/settings"
	"github.com/plus3/wayfarer/waypoint"
)

//go:embed demo.json
var builtinScenario []byte

func main() {
	configPath := flag.String("config", "", "Optional key=value settings file.")
	scenarioPath := flag.String("scenario", "", "Scenario file; overrides WAYFARER_SCENARIO.")
	flag.Parse()

	cfg, err := settings.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "waypoint-demo: %v\n", err)
		os.Exit(1)
	}
	if *scenarioPath != "" {
		cfg.ScenarioPath = *scenarioPath
	}
	logger := cfg.Logger()

	scn, err := loadScenario(cfg.ScenarioPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.ScenarioPath).Msg("cannot load scenario")
	}

	registry := ecs.NewComponentRegistry()
	scenario.RegisterComponents(registry)
	debugui.RegisterComponents(registry)
	storage := ecs.NewStorage(registry)

	backend := debugui_ebiten.NewImguiBackend(storage, "Wayfarer", cfg.WindowWidth, cfg.WindowHeight)
	ebiten.SetTPS(cfg.TickRate)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	playback := ecs.NewSingleton(storage, Playback{})
	ids := scn.Spawn(storage)
	logger.Info().Int("followers", len(ids)).Msg("scenario spawned")

	scheduler := newScheduler(storage, playback, logger)
	debugui.Spawn(storage)
	storage.Spawn(debugui.ImguiItem{Render: func() { renderPlayback(playback.Get()) }})

	game := &Game{
		storage:   storage,
		scheduler: scheduler,
		backend:   backend,
		playback:  playback,
		frameDt:   cfg.FrameSeconds(),
	}

	if err := ebiten.RunGame(game); err != nil {
		logger.Fatal().Err(err).Msg("game loop failed")
	}
}

func loadScenario(path string) (*scenario.Scenario, error) {
	if path == "" {
		return scenario.Decode(bytes.NewReader(builtinScenario))
	}
	return scenario.Load(path)
}

func newScheduler(storage *ecs.Storage, playback *ecs.Singleton[Playback], logger zerolog.Logger) *ecs.Scheduler {
	processor := waypoint.NewProcessor(storage,
		waypoint.WithLogger(logger),
		waypoint.WithObserver(waypoint.ObserverFunc(func(ev waypoint.Finished) {
			playback.Get().Finished = append(playback.Get().Finished, ev)
			logger.Info().Uint64("entity", uint64(ev.Entity)).Str("tag", ev.Tag).Msg("route finished")
		})),
	)

	scheduler := ecs.NewScheduler(storage, ecs.WithLogger(logger))
	scheduler.Register(&motion.MoveSystem{})
	scheduler.Register(processor)
	scheduler.Register(&motion.BoundsSystem{})
	scheduler.Register(&debugui.ImguiSystem{})
	scheduler.Register(&debugui.WindowSystem{Scheduler: scheduler})
	return scheduler
}

func renderPlayback(p *Playback) {
	imgui.Begin("Playback")
	if p.Paused {
		imgui.Text("Paused (space to resume)")
	} else {
		imgui.Text("Running (space to pause)")
	}
	imgui.Separator()
	imgui.Text(fmt.Sprintf("Finished routes: %d", len(p.Finished)))
	for _, ev := range p.Finished {
		imgui.BulletText(fmt.Sprintf("%s (entity %d)", ev.Tag, ev.Entity))
	}
	imgui.End()
}
