package orchestrator

import (
	"time"

	"github.com/Carmen-Shannon/oxy-stereo/engine/camera"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/effect"
)

// OrchestratorOption is a functional option for configuring an Orchestrator.
type OrchestratorOption func(*orchestrator)

// WithSize sets the output size of every eye layer.
//
// Parameters:
//   - width, height: size in pixels
//
// Returns:
//   - OrchestratorOption: functional option to set the output size
func WithSize(width, height int) OrchestratorOption {
	return func(o *orchestrator) {
		o.width = width
		o.height = height
	}
}

// WithEyes sets the number of rendered eyes, 1 for mono or 2 for stereo.
func WithEyes(eyes int) OrchestratorOption {
	return func(o *orchestrator) {
		o.eyes = eyes
	}
}

// WithProfile sets the device profile supplying projections and eye offsets.
//
// Parameters:
//   - profile: the device strategy
//
// Returns:
//   - OrchestratorOption: functional option to set the profile
func WithProfile(profile camera.Profile) OrchestratorOption {
	return func(o *orchestrator) {
		o.profile = profile
	}
}

// WithBrightParams sets the bright extraction threshold and knee.
func WithBrightParams(params effect.BrightParams) OrchestratorOption {
	return func(o *orchestrator) {
		o.bright = params
	}
}

// WithBloomIterations sets the number of blur iterations. Non-positive values keep the default.
func WithBloomIterations(n int) OrchestratorOption {
	return func(o *orchestrator) {
		o.bloomIterations = n
	}
}

// WithCompositeWeights sets the composite slot weights.
func WithCompositeWeights(weights [effect.CompositeSlots]float32) OrchestratorOption {
	return func(o *orchestrator) {
		o.weights = weights
	}
}

// WithCacheCapacity sets the number of resident material textures.
func WithCacheCapacity(capacity int) OrchestratorOption {
	return func(o *orchestrator) {
		o.cacheCapacity = capacity
	}
}

// WithDebugView sets the initial debug view.
func WithDebugView(view DebugView) OrchestratorOption {
	return func(o *orchestrator) {
		o.debugView.Store(int32(view))
	}
}

// WithUniformLayout declares the uniform-texture layout version the consumer
// decodes. NewOrchestrator fails when it differs from the version written.
func WithUniformLayout(version int) OrchestratorOption {
	return func(o *orchestrator) {
		o.uniformLayout = version
	}
}

// WithLookahead sets how far ahead of the frame start the pose is predicted.
//
// Parameters:
//   - d: the prediction interval
//
// Returns:
//   - OrchestratorOption: functional option to set the lookahead
func WithLookahead(d time.Duration) OrchestratorOption {
	return func(o *orchestrator) {
		o.lookahead = d
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) OrchestratorOption {
	return func(o *orchestrator) {
		o.now = now
	}
}
