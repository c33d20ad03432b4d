package main

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/plus3/wayfarer/debugui"
	debugui_ebiten "github.com/plus3/wayfarer/debugui/ebiten"
	"github.com/plus3/wayfarer/ecs"
	"github.com/plus3/wayfarer/geometry"
	"github.com/plus3/wayfarer/waypoint"
)

// Playback is the demo's singleton run state.
type Playback struct {
	Paused   bool
	Finished []waypoint.Finished
}

type Game struct {
	storage   *ecs.Storage
	scheduler *ecs.Scheduler
	backend   *ecs.Singleton[debugui_ebiten.ImguiBackend]
	playback  *ecs.Singleton[Playback]
	frameDt   float64

	routes  *ecs.View[routeShape]
	bodies  *ecs.View[body]
	bounded *ecs.View[bounded]
}

type routeShape struct {
	*waypoint.Route
	*geometry.Position
}

type body struct {
	*geometry.Position
	Route *waypoint.Route `ecs:"optional"`
}

type bounded struct {
	*geometry.Bounds
}

var (
	backgroundColor = color.RGBA{24, 26, 33, 255}
	routeColor      = color.RGBA{90, 110, 150, 255}
	waypointColor   = color.RGBA{150, 170, 210, 255}
	targetColor     = color.RGBA{255, 200, 90, 255}
	followerColor   = color.RGBA{120, 220, 160, 255}
	drifterColor    = color.RGBA{220, 130, 160, 255}
	boundsColor     = color.RGBA{70, 70, 80, 255}
)

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	playback := g.playback.Get()
	input := ecs.ReadSingleton[debugui.ImguiInputState](g.storage)
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) && (input == nil || !input.WantCaptureKeyboard) {
		playback.Paused = !playback.Paused
	}

	dt := g.frameDt
	if playback.Paused {
		dt = 0
	}

	g.backend.Get().BeginFrame()
	g.scheduler.Once(dt)
	g.backend.Get().EndFrame()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.routes == nil {
		g.routes = ecs.NewView[routeShape](g.storage)
		g.bodies = ecs.NewView[body](g.storage)
		g.bounded = ecs.NewView[bounded](g.storage)
	}

	screen.Fill(backgroundColor)

	for b := range g.bounded.Values() {
		w, h := float32(b.MaxX-b.MinX), float32(b.MaxY-b.MinY)
		vector.StrokeRect(screen, float32(b.MinX), float32(b.MinY), w, h, 1, boundsColor, false)
	}

	for r := range g.routes.Values() {
		drawRoute(screen, r)
	}

	for b := range g.bodies.Values() {
		c := drifterColor
		if b.Route != nil {
			c = followerColor
		}
		vector.DrawFilledCircle(screen, float32(b.X), float32(b.Y), 6, c, true)
	}

	g.backend.Get().Draw(screen)
}

func drawRoute(screen *ebiten.Image, r routeShape) {
	points := r.Waypoints
	for i := 1; i < len(points); i++ {
		vector.StrokeLine(screen, float32(points[i-1].X), float32(points[i-1].Y),
			float32(points[i].X), float32(points[i].Y), 1, routeColor, true)
	}
	if r.Loop && len(points) > 1 {
		last, first := points[len(points)-1], points[0]
		vector.StrokeLine(screen, float32(last.X), float32(last.Y),
			float32(first.X), float32(first.Y), 1, routeColor, true)
	}

	for _, p := range points {
		vector.DrawFilledRect(screen, float32(p.X)-3, float32(p.Y)-3, 6, 6, waypointColor, false)
	}

	if target, ok := r.Target(); ok {
		vector.StrokeLine(screen, float32(r.Position.X), float32(r.Position.Y),
			float32(target.X), float32(target.Y), 2, targetColor, true)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.backend.Get().Layout(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}
