package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Plane represents a plane in 3D space using the equation: ax + by + cz + d = 0
// where (a, b, c) is the normal and d is the distance from origin.
type Plane struct {
	Normal   [3]float32
	Distance float32
}

// Frustum represents the six planes of a view frustum for culling.
// Planes are oriented so that positive half-space is inside the frustum.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, DepthMin, DepthMax
}

// FrustumPlane indices for clarity
const (
	FrustumLeft     = 0
	FrustumRight    = 1
	FrustumBottom   = 2
	FrustumTop      = 3
	FrustumDepthMin = 4
	FrustumDepthMax = 5
)

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max mgl32.Vec3
}

// ExtractFrustumFromMatrix extracts frustum planes from a clip-from-space matrix
// (projection * view, or projection * view * model to get planes in model space).
// Uses the Gribb/Hartmann method for a [0, 1] clip depth range, so the two depth
// planes are row2 (depth >= 0) and row3 - row2 (depth <= 1). With a reversed
// infinite projection the row2 plane degenerates to a zero normal with positive
// distance and never rejects anything.
//
// Reference: https://www8.cs.umu.se/kurser/5DV051/HT12/lab/plane_extraction.pdf
//
// Parameters:
//   - clip: the column-major matrix
//
// Returns:
//   - Frustum: the extracted frustum with normalized planes
func ExtractFrustumFromMatrix(clip mgl32.Mat4) Frustum {
	var f Frustum
	row := func(i int) [4]float32 {
		return [4]float32{clip.At(i, 0), clip.At(i, 1), clip.At(i, 2), clip.At(i, 3)}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	set := func(idx int, a, b [4]float32, sign float32) {
		p := &f.Planes[idx]
		p.Normal = [3]float32{a[0] + sign*b[0], a[1] + sign*b[1], a[2] + sign*b[2]}
		p.Distance = a[3] + sign*b[3]
	}
	set(FrustumLeft, r3, r0, 1)
	set(FrustumRight, r3, r0, -1)
	set(FrustumBottom, r3, r1, 1)
	set(FrustumTop, r3, r1, -1)
	set(FrustumDepthMin, r2, r2, 0)
	set(FrustumDepthMax, r3, r2, -1)

	for i := range f.Planes {
		f.normalizePlane(i)
	}
	return f
}

// normalizePlane normalizes a frustum plane so that the normal has unit length.
func (f *Frustum) normalizePlane(index int) {
	p := &f.Planes[index]
	length := float32(math.Sqrt(float64(
		p.Normal[0]*p.Normal[0] +
			p.Normal[1]*p.Normal[1] +
			p.Normal[2]*p.Normal[2],
	)))

	if length > 0 {
		invLen := 1.0 / length
		p.Normal[0] *= invLen
		p.Normal[1] *= invLen
		p.Normal[2] *= invLen
		p.Distance *= invLen
	}
}

// IntersectsAABB reports whether box is at least partially inside the frustum.
// For each plane only the box corner farthest along the plane normal is tested,
// so the result is conservative: some boxes near frustum corners pass.
//
// Parameters:
//   - box: the bounds, in the same space the planes were extracted in
//
// Returns:
//   - bool: false only when the box lies entirely outside one plane
func (f Frustum) IntersectsAABB(box AABB) bool {
	for _, p := range f.Planes {
		var d float32 = p.Distance
		for axis := 0; axis < 3; axis++ {
			if p.Normal[axis] >= 0 {
				d += p.Normal[axis] * box.Max[axis]
			} else {
				d += p.Normal[axis] * box.Min[axis]
			}
		}
		if d < 0 {
			return false
		}
	}
	return true
}
