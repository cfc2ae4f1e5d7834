package common

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestPutReadMat4(t *testing.T) {
	m := mgl32.Translate3D(1, 2, 3).Mul4(mgl32.HomogRotate3DY(0.5))
	buf := make([]byte, Mat4Size)
	PutMat4(buf, m)
	if got := ReadMat4(buf); got != m {
		t.Errorf("ReadMat4(PutMat4(m)) = %v, want %v", got, m)
	}
	// column 3 starts at byte 48
	if got := math.Float32frombits(uint32(buf[48]) | uint32(buf[49])<<8 | uint32(buf[50])<<16 | uint32(buf[51])<<24); got != 1 {
		t.Errorf("translation x at byte 48 = %v, want 1", got)
	}
}

func TestReverseInfinitePerspective(t *testing.T) {
	p := ReverseInfinitePerspective(math.Pi/2, 16.0/9.0, 0.1)

	tests := []struct {
		name  string
		point mgl32.Vec4
		depth float32
	}{
		{"near plane", mgl32.Vec4{0, 0, -0.1, 1}, 1},
		{"far away", mgl32.Vec4{0, 0, -1e6, 1}, 1e-7},
	}
	for _, tt := range tests {
		clip := p.Mul4x1(tt.point)
		depth := clip.Z() / clip.W()
		if math.Abs(float64(depth-tt.depth)) > 1e-5 {
			t.Errorf("%s: depth = %v, want %v", tt.name, depth, tt.depth)
		}
	}
	if got := p.At(1, 1) / p.At(0, 0); math.Abs(float64(got-16.0/9.0)) > 1e-5 {
		t.Errorf("P[1][1]/P[0][0] = %v, want %v", got, 16.0/9.0)
	}
}

func TestNormalMatrix(t *testing.T) {
	m := mgl32.Scale3D(2, 1, 1)
	n := NormalMatrix(m)
	// a normal along x shrinks under non-uniform x scale
	got := n.Mul4x1(mgl32.Vec4{1, 0, 0, 0})
	if !got.ApproxEqual(mgl32.Vec4{0.5, 0, 0, 0}) {
		t.Errorf("NormalMatrix(scale(2,1,1)) * x = %v, want (0.5, 0, 0, 0)", got)
	}
	if got := NormalMatrix(mgl32.Mat4{}); got != mgl32.Ident4() {
		t.Errorf("NormalMatrix(zero) = %v, want identity", got)
	}
}

func TestRotationBetween(t *testing.T) {
	up := mgl32.Vec3{0, 1, 0}
	tests := []struct {
		name string
		to   mgl32.Vec3
	}{
		{"same", mgl32.Vec3{0, 1, 0}},
		{"down", mgl32.Vec3{0, -1, 0}},
		{"tilted", mgl32.Vec3{0.5, -1, 0}.Normalize()},
		{"x", mgl32.Vec3{1, 0, 0}},
	}
	for _, tt := range tests {
		got := RotationBetween(up, tt.to).Rotate(up)
		if !got.ApproxEqualThreshold(tt.to, 1e-5) {
			t.Errorf("%s: RotationBetween(up, %v).Rotate(up) = %v", tt.name, tt.to, got)
		}
	}
}

func TestSliceToBytes(t *testing.T) {
	if got := SliceToBytes([]uint32{}); got != nil {
		t.Errorf("SliceToBytes(empty) = %v, want nil", got)
	}
	if got := len(SliceToBytes([]uint32{1, 2, 3})); got != 12 {
		t.Errorf("len(SliceToBytes(3 x uint32)) = %d, want 12", got)
	}
}
