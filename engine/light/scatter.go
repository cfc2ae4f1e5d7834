package light

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Volumetric scattering constants shared with the volumetric light shader.
const (
	// ScatterDensity is the fraction of light scattered toward the viewer per world unit.
	ScatterDensity = 0.1

	// ScatterSteps is the number of samples taken along the in-cone view segment.
	ScatterSteps = 16
)

// The functions below are the CPU reference of the light shaders. The passes blend
// every light with One/One, so the GPU result for a pixel equals the plain sum these
// functions return.

// Falloff returns the attenuation of l at world point p: zero outside the cone or
// beyond its range, rising linearly from the cone edge to the axis and falling
// quadratically with distance.
//
// Parameters:
//   - l: the light
//   - p: a world-space point
//
// Returns:
//   - float32: attenuation in [0, 1]
func Falloff(l SpotLight, p mgl32.Vec3) float32 {
	toP := p.Sub(l.Position)
	d := toP.Len()
	r := l.EffectiveRange()
	if d <= 0 || d >= r {
		return 0
	}
	cosTheta := toP.Mul(1 / d).Dot(l.Direction)
	if cosTheta <= l.AngleCos {
		return 0
	}
	edge := 1 - l.AngleCos
	if edge < 1e-4 {
		edge = 1e-4
	}
	angular := mgl32.Clamp((cosTheta-l.AngleCos)/edge, 0, 1)
	dist := 1 - d/r
	return angular * dist * dist
}

// SurfaceRadiance is the light reflected toward the viewer by a diffuse surface.
//
// Parameters:
//   - l: the light
//   - p: surface position in world space
//   - n: unit surface normal in world space
//
// Returns:
//   - mgl32.Vec3: RGB radiance
func SurfaceRadiance(l SpotLight, p, n mgl32.Vec3) mgl32.Vec3 {
	f := Falloff(l, p)
	if f == 0 {
		return mgl32.Vec3{}
	}
	toLight := l.Position.Sub(p).Normalize()
	lambert := n.Dot(toLight)
	if lambert <= 0 {
		return mgl32.Vec3{}
	}
	return l.Color.Mul(l.Intensity * f * lambert)
}

// InScatter is the light scattered toward the viewer along the segment a..b that
// lies inside the cone, sampled at ScatterSteps midpoints.
//
// Parameters:
//   - l: the light
//   - a: segment start in world space
//   - b: segment end in world space
//
// Returns:
//   - mgl32.Vec3: RGB radiance
func InScatter(l SpotLight, a, b mgl32.Vec3) mgl32.Vec3 {
	seg := b.Sub(a)
	length := seg.Len()
	if length == 0 {
		return mgl32.Vec3{}
	}
	var sum float32
	for i := 0; i < ScatterSteps; i++ {
		t := (float32(i) + 0.5) / ScatterSteps
		sum += Falloff(l, a.Add(seg.Mul(t)))
	}
	return l.Color.Mul(l.Intensity * ScatterDensity * length * sum / ScatterSteps)
}

// AccumulateSurface sums SurfaceRadiance over lights, as the One/One blend does.
func AccumulateSurface(lights []SpotLight, p, n mgl32.Vec3) mgl32.Vec3 {
	var out mgl32.Vec3
	for _, l := range lights {
		out = out.Add(SurfaceRadiance(l, p, n))
	}
	return out
}

// AccumulateScatter sums InScatter over lights for the same view segment.
func AccumulateScatter(lights []SpotLight, a, b mgl32.Vec3) mgl32.Vec3 {
	var out mgl32.Vec3
	for _, l := range lights {
		out = out.Add(InScatter(l, a, b))
	}
	return out
}
