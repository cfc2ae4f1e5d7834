package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-stereo/engine/profiler"
	"github.com/Carmen-Shannon/oxy-stereo/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables the periodic frame stats log.
//
// Parameters:
//   - enabled: if true, enables profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled.Store(enabled)
	}
}

// WithProfiler replaces the default one-second profiler.
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithTickRate sets the tick loop rate. Values <= 0 keep the 60Hz default.
//
// Parameters:
//   - fps: ticks per second
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.engineTickRate = time.Duration(float64(time.Second) / fps)
	}
}

// WithWindow attaches the window whose messages Run processes. Without one the
// engine runs headless until Quit.
//
// Parameters:
//   - w: an open Window
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithResizer sets the receiver of window framebuffer size changes, usually the renderer.
func WithResizer(r Resizer) EngineBuilderOption {
	return func(e *engine) {
		e.resizer = r
	}
}

// WithRenderFrameLimit caps the render loop rate. Pass 0 to uncap (default).
//
// Parameters:
//   - fps: maximum frames per second
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
	}
}

// WithMaxRenderErrors sets how many consecutive failed frames stop the engine.
// Values <= 0 keep the default of 30.
func WithMaxRenderErrors(n int) EngineBuilderOption {
	return func(e *engine) {
		if n > 0 {
			e.maxRenderErrors = n
		}
	}
}
