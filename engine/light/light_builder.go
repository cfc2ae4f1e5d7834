package light

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// SpotLightOption is a function that configures a SpotLight during construction.
type SpotLightOption func(*SpotLight)

// WithPosition is an option builder that sets the world-space apex of the cone.
//
// Parameters:
//   - p: the apex position
//
// Returns:
//   - SpotLightOption: a function that applies the position option
func WithPosition(p mgl32.Vec3) SpotLightOption {
	return func(l *SpotLight) {
		l.Position = p
	}
}

// WithDirection is an option builder that sets the cone axis.
// The direction is normalized before storing; a zero vector keeps the default.
//
// Parameters:
//   - d: the cone axis
//
// Returns:
//   - SpotLightOption: a function that applies the direction option
func WithDirection(d mgl32.Vec3) SpotLightOption {
	return func(l *SpotLight) {
		if d.Len() == 0 {
			return
		}
		l.Direction = d.Normalize()
	}
}

// WithAngleCos is an option builder that sets the cosine of the cone half-angle.
//
// Parameters:
//   - c: cos(half-angle), in (0, 1]
//
// Returns:
//   - SpotLightOption: a function that applies the cone option
func WithAngleCos(c float32) SpotLightOption {
	return func(l *SpotLight) {
		l.AngleCos = c
	}
}

// WithHalfAngle is an option builder that sets the cone half-angle in degrees.
//
// Parameters:
//   - deg: the half-angle in degrees
//
// Returns:
//   - SpotLightOption: a function that applies the cone option
func WithHalfAngle(deg float32) SpotLightOption {
	return func(l *SpotLight) {
		l.AngleCos = float32(math.Cos(float64(deg) * math.Pi / 180.0))
	}
}

// WithColor is an option builder that sets the RGB color of the light.
func WithColor(c mgl32.Vec3) SpotLightOption {
	return func(l *SpotLight) {
		l.Color = c
	}
}

// WithIntensity is an option builder that sets the scalar intensity multiplier.
func WithIntensity(intensity float32) SpotLightOption {
	return func(l *SpotLight) {
		l.Intensity = intensity
	}
}

// WithRange is an option builder that sets the cone length.
//
// Parameters:
//   - r: the range in world units
//
// Returns:
//   - SpotLightOption: a function that applies the range option
func WithRange(r float32) SpotLightOption {
	return func(l *SpotLight) {
		l.Range = r
	}
}
