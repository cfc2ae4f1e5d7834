package light

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const eps = 1e-4

// near3 compares per component against an absolute tolerance.
func near3(a, b mgl32.Vec3, tol float64) bool {
	for i := range a {
		if math.Abs(float64(a[i]-b[i])) > tol {
			return false
		}
	}
	return true
}

func readFloat(buf []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
}

func TestConeRadius(t *testing.T) {
	l := NewSpotLight(WithAngleCos(float32(math.Cos(math.Pi / 4))))
	if got := l.ConeRadius(); math.Abs(float64(got-1)) > eps {
		t.Errorf("ConeRadius() = %v, want 1", got)
	}
}

func TestWorldFromModelCoversCone(t *testing.T) {
	l := NewSpotLight(
		WithPosition(mgl32.Vec3{1, 3, -1}),
		WithDirection(mgl32.Vec3{0, -1, 0}),
		WithHalfAngle(45),
		WithRange(10),
	)
	m := l.WorldFromModel()

	apex := m.Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3()
	if !near3(apex, l.Position, eps) {
		t.Errorf("apex = %v, want %v", apex, l.Position)
	}
	// base center sits one range along the axis
	base := m.Mul4x1(mgl32.Vec4{0, 1, 0, 1}).Vec3()
	want := mgl32.Vec3{1, -7, -1}
	if !near3(base, want, eps) {
		t.Errorf("base center = %v, want %v", base, want)
	}
	// rim radius is r * L = 10
	rim := m.Mul4x1(mgl32.Vec4{1, 1, 0, 1}).Vec3()
	if got := rim.Sub(base).Len(); math.Abs(float64(got-10)) > 1e-3 {
		t.Errorf("rim radius = %v, want 10", got)
	}
}

func TestWorldFromModelUpwardLight(t *testing.T) {
	l := NewSpotLight(WithDirection(mgl32.Vec3{0, 1, 0}), WithRange(2))
	base := l.WorldFromModel().Mul4x1(mgl32.Vec4{0, 1, 0, 1}).Vec3()
	if !near3(base, mgl32.Vec3{0, 2, 0}, eps) {
		t.Errorf("base center = %v, want (0, 2, 0)", base)
	}
}

func TestDemoLights(t *testing.T) {
	lights := DemoLights()
	if len(lights) != 5 {
		t.Fatalf("len(DemoLights()) = %d, want 5", len(lights))
	}
	wantX := []float32{-1, -0.5, 0, 0.5, 1}
	for i, l := range lights {
		if l.Position != (mgl32.Vec3{wantX[i], 3, -1}) {
			t.Errorf("light %d position = %v, want (%v, 3, -1)", i, l.Position, wantX[i])
		}
		if math.Abs(float64(l.Direction.Len()-1)) > eps {
			t.Errorf("light %d direction is not normalized: %v", i, l.Direction)
		}
		if l.Intensity != 0.3 {
			t.Errorf("light %d intensity = %v, want 0.3", i, l.Intensity)
		}
	}
	if !near3(lights[2].Direction, mgl32.Vec3{0, -1, 0}, eps) {
		t.Errorf("center light direction = %v, want (0, -1, 0)", lights[2].Direction)
	}
	// outer lights lean toward the middle
	if lights[0].Direction.X() <= 0 || lights[4].Direction.X() >= 0 {
		t.Errorf("outer light directions = %v, %v, want inward", lights[0].Direction, lights[4].Direction)
	}
}

func TestConeMeshWinding(t *testing.T) {
	pos, idx := ConeMesh(ConeSegments)
	if got, want := len(pos), (ConeSegments+2)*3; got != want {
		t.Fatalf("len(positions) = %d, want %d", got, want)
	}
	if got, want := len(idx), ConeSegments*6; got != want {
		t.Fatalf("len(indices) = %d, want %d", got, want)
	}
	vert := func(i uint32) mgl32.Vec3 {
		return mgl32.Vec3{pos[i*3], pos[i*3+1], pos[i*3+2]}
	}
	for tri := 0; tri < len(idx); tri += 3 {
		a, b, c := vert(idx[tri]), vert(idx[tri+1]), vert(idx[tri+2])
		n := b.Sub(a).Cross(c.Sub(a))
		centroid := a.Add(b).Add(c).Mul(1.0 / 3)
		var outward mgl32.Vec3
		if a.Y() == 1 && b.Y() == 1 && c.Y() == 1 {
			outward = mgl32.Vec3{0, 1, 0}
		} else {
			outward = mgl32.Vec3{centroid.X(), -centroid.Y(), centroid.Z()}
		}
		if n.Dot(outward) <= 0 {
			t.Fatalf("triangle %d faces inward", tri/3)
		}
	}
}

func TestMarshalLights(t *testing.T) {
	lights := DemoLights()
	buf, n := MarshalLights(lights)
	if n != 5 {
		t.Fatalf("MarshalLights() count = %d, want 5", n)
	}
	if got, want := len(buf), 16+5*112; got != want {
		t.Fatalf("len(buf) = %d, want %d", got, want)
	}
	if got := binary.LittleEndian.Uint32(buf); got != 5 {
		t.Errorf("light_count = %d, want 5", got)
	}
	second := 16 + 112
	if got := readFloat(buf, second+64); got != -0.5 {
		t.Errorf("light 1 position.x = %v, want -0.5", got)
	}
	if got := readFloat(buf, second+92); got != 0.3 {
		t.Errorf("light 1 intensity = %v, want 0.3", got)
	}
	if got := readFloat(buf, second+108); got != DefaultRange {
		t.Errorf("light 1 range = %v, want %v", got, DefaultRange)
	}
}

func TestMarshalLightsCapsAtMax(t *testing.T) {
	lights := make([]SpotLight, MaxLights+7)
	for i := range lights {
		lights[i] = NewSpotLight()
	}
	buf, n := MarshalLights(lights)
	if n != MaxLights {
		t.Errorf("MarshalLights() count = %d, want %d", n, MaxLights)
	}
	if len(buf) != LightBufferSize {
		t.Errorf("len(buf) = %d, want %d", len(buf), LightBufferSize)
	}
	var g GPUSpotLight
	if g.Size() != 112 {
		t.Errorf("GPUSpotLight.Size() = %d, want 112", g.Size())
	}
	var h GPULightHeader
	if h.Size() != 16 {
		t.Errorf("GPULightHeader.Size() = %d, want 16", h.Size())
	}
}

func TestFalloff(t *testing.T) {
	l := NewSpotLight(WithPosition(mgl32.Vec3{0, 3, 0}), WithHalfAngle(45), WithRange(10))
	tests := []struct {
		name string
		p    mgl32.Vec3
		want float32
	}{
		{"on axis", mgl32.Vec3{0, 2, 0}, 0.81},
		{"outside cone", mgl32.Vec3{3, 2, 0}, 0},
		{"beyond range", mgl32.Vec3{0, -8, 0}, 0},
		{"at apex", mgl32.Vec3{0, 3, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Falloff(l, tt.p); math.Abs(float64(got-tt.want)) > eps {
				t.Errorf("Falloff() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAccumulationIsAdditive(t *testing.T) {
	lights := DemoLights()
	p := mgl32.Vec3{0, 0, -1}
	n := mgl32.Vec3{0, 1, 0}

	var sum mgl32.Vec3
	for _, l := range lights {
		sum = sum.Add(AccumulateSurface([]SpotLight{l}, p, n))
	}
	if got := AccumulateSurface(lights, p, n); !got.ApproxEqualThreshold(sum, 1e-6) {
		t.Errorf("AccumulateSurface() = %v, want %v", got, sum)
	}
	if got := AccumulateSurface(nil, p, n); got != (mgl32.Vec3{}) {
		t.Errorf("AccumulateSurface(nil) = %v, want zero", got)
	}

	a, b := mgl32.Vec3{-2, 1, -1}, mgl32.Vec3{2, 1, -1}
	sum = mgl32.Vec3{}
	for _, l := range lights {
		sum = sum.Add(InScatter(l, a, b))
	}
	if got := AccumulateScatter(lights, a, b); !got.ApproxEqualThreshold(sum, 1e-6) {
		t.Errorf("AccumulateScatter() = %v, want %v", got, sum)
	}
	if sum.Len() == 0 {
		t.Error("demo lights scatter nothing across the segment under them")
	}
}
