package camera

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// OrbitPoseProviderOption is a functional option for configuring an OrbitPoseProvider.
type OrbitPoseProviderOption func(*orbitPoseProvider)

// WithRadius sets the initial orbit radius (distance from target).
//
// Parameters:
//   - radius: distance from the orbit target in meters
//
// Returns:
//   - OrbitPoseProviderOption: functional option to set the radius
func WithRadius(radius float32) OrbitPoseProviderOption {
	return func(p *orbitPoseProvider) {
		p.radius = radius
	}
}

// WithElevation sets the vertical angle from the horizontal plane.
//
// Parameters:
//   - elevation: vertical angle in radians (0 = horizontal)
//
// Returns:
//   - OrbitPoseProviderOption: functional option to set the elevation
func WithElevation(elevation float32) OrbitPoseProviderOption {
	return func(p *orbitPoseProvider) {
		p.elevation = elevation
	}
}

// WithTarget sets the orbit pivot point.
//
// Parameters:
//   - target: the world-space point the device looks at
//
// Returns:
//   - OrbitPoseProviderOption: functional option to set the target
func WithTarget(target mgl32.Vec3) OrbitPoseProviderOption {
	return func(p *orbitPoseProvider) {
		p.target = target
	}
}

// WithRadiusBounds sets the minimum and maximum orbit radius.
//
// Parameters:
//   - min: minimum zoom distance
//   - max: maximum zoom distance
//
// Returns:
//   - OrbitPoseProviderOption: functional option to set radius bounds
func WithRadiusBounds(min, max float32) OrbitPoseProviderOption {
	return func(p *orbitPoseProvider) {
		p.minRadius = min
		p.maxRadius = max
	}
}

// WithAngularSpeed sets the automatic orbit speed. Zero disables the automatic orbit.
//
// Parameters:
//   - radiansPerSecond: angular velocity of the orbit
//
// Returns:
//   - OrbitPoseProviderOption: functional option to set the angular speed
func WithAngularSpeed(radiansPerSecond float32) OrbitPoseProviderOption {
	return func(p *orbitPoseProvider) {
		p.angularSpeed = radiansPerSecond
	}
}

// WithOrbitStep sets the azimuth change applied by OrbitLeft and OrbitRight.
func WithOrbitStep(step float32) OrbitPoseProviderOption {
	return func(p *orbitPoseProvider) {
		p.orbitStep = step
	}
}

// WithZoomSpeed sets the zoom speed multiplier.
func WithZoomSpeed(speed float32) OrbitPoseProviderOption {
	return func(p *orbitPoseProvider) {
		p.zoomSpeed = speed
	}
}

// WithWarmup sets how long Start blocks before the provider reports ready.
//
// Parameters:
//   - d: the simulated tracker warm-up
//
// Returns:
//   - OrbitPoseProviderOption: functional option to set the warm-up
func WithWarmup(d time.Duration) OrbitPoseProviderOption {
	return func(p *orbitPoseProvider) {
		p.warmup = d
	}
}

// WithClock replaces time.Now, used for deterministic poses.
func WithClock(now func() time.Time) OrbitPoseProviderOption {
	return func(p *orbitPoseProvider) {
		p.now = now
	}
}
