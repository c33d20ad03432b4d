// Package debugui draws Dear ImGui windows for a running wayfarer world. Windows are
// components: spawn them into the store and register WindowSystem and ImguiSystem,
// and they render between the backend's BeginFrame and EndFrame.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/wayfarer/ecs"
)

// ImguiItem is a component that holds a free-form render function.
type ImguiItem struct {
	Render func()
}

// ImguiInputState is a singleton recording whether ImGui is consuming input this frame.
type ImguiInputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// ImguiSystem updates ImguiInputState and queues every ImguiItem for rendering when
// the frame's commands flush.
type ImguiSystem struct {
	Items      ecs.Query[struct{ *ImguiItem }]
	InputState ecs.Singleton[ImguiInputState]
}

func (i *ImguiSystem) Execute(frame *ecs.UpdateFrame) {
	if state := i.InputState.Get(); state != nil {
		io := imgui.CurrentIO()
		state.WantCaptureMouse = io.WantCaptureMouse()
		state.WantCaptureKeyboard = io.WantCaptureKeyboard()
	}

	for item := range i.Items.Values() {
		if item.Render != nil {
			frame.Commands.Defer(item.Render)
		}
	}
}

// WindowSystem renders the route inspector and performance windows.
type WindowSystem struct {
	Inspectors ecs.Query[struct{ *RouteInspector }]
	Stats      ecs.Query[struct{ *PerformanceStats }]

	// Scheduler, when set, feeds per-system timings to the performance window.
	Scheduler *ecs.Scheduler
	timer     *FrameTimer
}

func (w *WindowSystem) Execute(frame *ecs.UpdateFrame) {
	if w.timer == nil {
		w.timer = NewFrameTimer()
	}
	dt := w.timer.Delta()

	var schedStats *ecs.SchedulerStats
	if w.Scheduler != nil {
		schedStats = w.Scheduler.GetStats()
	}

	for inspector := range w.Inspectors.Values() {
		frame.Commands.Defer(func() { inspector.Render(frame.Storage) })
	}
	for stats := range w.Stats.Values() {
		frame.Commands.Defer(func() { stats.Render(frame.Storage, schedStats, dt) })
	}
}

// RegisterComponents registers the debug UI component types.
func RegisterComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[ImguiItem](registry)
	ecs.RegisterComponent[RouteInspector](registry)
	ecs.RegisterComponent[PerformanceStats](registry)
}

// Spawn adds the standard windows and the input state singleton to storage.
func Spawn(storage *ecs.Storage) {
	ecs.NewSingleton[ImguiInputState](storage)
	storage.Spawn(NewRouteInspector(200))
	storage.Spawn(NewPerformanceStats(120))
}
