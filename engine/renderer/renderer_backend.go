package renderer

// RendererBackendType selects the GPU API behind a Renderer. WebGPU is the only one.
type RendererBackendType int

const (
	// BackendTypeWGPU renders through wgpu-native.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how the preview window's surface is presented. It has no
// effect on a headless renderer.
type PresentMode int

const (
	// PresentModeVSync waits for vertical blank. The render loop then runs at the
	// display refresh rate.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents immediately, for measuring frame cost.
	PresentModeUncapped
)

// RendererBackend is the backend a Renderer delegates device work to.
type RendererBackend interface {
	wgpuRendererBackend
}
