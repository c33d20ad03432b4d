// Package ebiten hosts the debug UI on the Ebitengine Dear ImGui backend.
package ebiten

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/wayfarer/ecs"
)

// ImguiBackend is stored as a singleton so systems and the game loop share one
// backend.
type ImguiBackend struct {
	*ebitenbackend.EbitenBackend
}

// NewImguiBackend creates the backend window and stores it in storage. imgui.ini
// persistence is disabled.
func NewImguiBackend(storage *ecs.Storage, title string, width, height int) *ecs.Singleton[ImguiBackend] {
	backend := ebitenbackend.NewEbitenBackend()
	backend.CreateWindow(title, width, height)
	imgui.CurrentIO().SetIniFilename("")

	return ecs.NewSingleton(storage, ImguiBackend{EbitenBackend: backend})
}
