package light

import (
	"math"

	"github.com/Carmen-Shannon/oxy-stereo/common"
	"github.com/go-gl/mathgl/mgl32"
)

// MaxLights is the number of spot lights the light buffer holds. Extra lights are dropped.
const MaxLights = 100

// DefaultRange is the cone length used when a light has no range set.
const DefaultRange = 10.0

// SpotLight is a cone light. It is a plain value rebuilt by the caller every frame.
type SpotLight struct {
	// Position is the cone apex in world space.
	Position mgl32.Vec3

	// Direction is the normalized cone axis in world space.
	Direction mgl32.Vec3

	// AngleCos is the cosine of the cone half-angle.
	AngleCos float32

	Color     mgl32.Vec3
	Intensity float32

	// Range is the cone length; light contributes nothing beyond it.
	Range float32
}

// NewSpotLight creates a spot light pointing down with a 45 degree half-angle and
// any provided options applied.
//
// Parameters:
//   - opts: variadic list of SpotLightOption functions to configure the light
//
// Returns:
//   - SpotLight: the configured light
func NewSpotLight(opts ...SpotLightOption) SpotLight {
	l := SpotLight{
		Direction: mgl32.Vec3{0, -1, 0},
		AngleCos:  float32(math.Cos(math.Pi / 4)),
		Color:     mgl32.Vec3{1, 1, 1},
		Intensity: 1,
		Range:     DefaultRange,
	}
	for _, opt := range opts {
		opt(&l)
	}
	return l
}

// ConeRadius returns the base radius of the unit-length cone, tan(acos(AngleCos)).
func (l SpotLight) ConeRadius() float32 {
	c := float64(l.AngleCos)
	if c <= 0 {
		// half-angles of 90 degrees and beyond have no finite cone
		return float32(math.Tan(math.Pi/2 - 1e-3))
	}
	return float32(math.Sqrt(1-c*c) / c)
}

// EffectiveRange returns Range, falling back to DefaultRange when unset.
func (l SpotLight) EffectiveRange() float32 {
	if l.Range <= 0 {
		return DefaultRange
	}
	return l.Range
}

// WorldFromModel places the unit cone mesh (apex at the origin, base at y = 1)
// so that it covers the light volume: T(position) * R(+Y to direction) * S(r*L, L, r*L).
//
// Returns:
//   - mgl32.Mat4: the column-major model matrix
func (l SpotLight) WorldFromModel() mgl32.Mat4 {
	length := l.EffectiveRange()
	r := l.ConeRadius() * length
	dir := l.Direction
	if dir.Len() == 0 {
		dir = mgl32.Vec3{0, -1, 0}
	}
	rot := common.RotationBetween(mgl32.Vec3{0, 1, 0}, dir).Mat4()
	return mgl32.Translate3D(l.Position[0], l.Position[1], l.Position[2]).
		Mul4(rot).
		Mul4(mgl32.Scale3D(r, length, r))
}

// DemoLights returns the five downward spot lights of the demo scene: a row at
// y = 3 fanned out about the z axis, cool on the left and warm on the right.
func DemoLights() []SpotLight {
	angles := []float32{math.Pi / 6, math.Pi / 8, 0, -math.Pi / 8, -math.Pi / 6}
	colors := []mgl32.Vec3{
		{0.25, 0.5, 1},
		{0.25, 0.5, 1},
		{1, 1, 1},
		{1, 0.5, 0.5},
		{1, 0.5, 0.5},
	}
	lights := make([]SpotLight, 0, len(angles))
	for i, a := range angles {
		x := -1 + 0.5*float32(i)
		dir := mgl32.QuatRotate(a, mgl32.Vec3{0, 0, 1}).Rotate(mgl32.Vec3{0, -1, 0})
		lights = append(lights, NewSpotLight(
			WithPosition(mgl32.Vec3{x, 3, -1}),
			WithDirection(dir),
			WithAngleCos(float32(math.Cos(math.Pi/4))),
			WithIntensity(0.3),
			WithColor(colors[i]),
		))
	}
	return lights
}
