package common

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestFrustumIntersectsAABB(t *testing.T) {
	proj := ReverseInfinitePerspective(math.Pi/2, 1, 0.1)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0})
	f := ExtractFrustumFromMatrix(proj.Mul4(view))

	unit := func(c mgl32.Vec3) AABB {
		return AABB{Min: c.Sub(mgl32.Vec3{0.5, 0.5, 0.5}), Max: c.Add(mgl32.Vec3{0.5, 0.5, 0.5})}
	}
	tests := []struct {
		name string
		box  AABB
		want bool
	}{
		{"ahead", unit(mgl32.Vec3{0, 0, -5}), true},
		{"very far ahead", unit(mgl32.Vec3{0, 0, -1e5}), true},
		{"behind", unit(mgl32.Vec3{0, 0, 5}), false},
		{"far left", unit(mgl32.Vec3{-50, 0, -5}), false},
		{"above", unit(mgl32.Vec3{0, 50, -5}), false},
		{"straddling the edge", unit(mgl32.Vec3{5.2, 0, -5}), true},
	}
	for _, tt := range tests {
		if got := f.IntersectsAABB(tt.box); got != tt.want {
			t.Errorf("%s: IntersectsAABB() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestFrustumDepthMinDegenerates(t *testing.T) {
	f := ExtractFrustumFromMatrix(ReverseInfinitePerspective(1, 1, 0.1))
	p := f.Planes[FrustumDepthMin]
	if p.Normal != [3]float32{} || p.Distance <= 0 {
		t.Errorf("depth-min plane = %+v, want zero normal with positive distance", p)
	}
}
