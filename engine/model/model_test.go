package model

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-stereo/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

func TestGPUVertexLayout(t *testing.T) {
	v := GPUVertex{
		Position:  [3]float32{1, 2, 3},
		TexCoord:  [2]float32{4, 5},
		Normal:    [3]float32{6, 7, 8},
		Tangent:   [3]float32{9, 10, 11},
		Bitangent: [3]float32{12, 13, 14},
	}
	if v.Size() != VertexStride {
		t.Fatalf("GPUVertex.Size() = %d, want %d", v.Size(), VertexStride)
	}
	buf := v.Marshal()
	for i := 0; i < 14; i++ {
		got := math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
		if got != float32(i+1) {
			t.Errorf("float %d = %v, want %v", i, got, i+1)
		}
	}

	layout := VertexLayout()
	if layout.ArrayStride != VertexStride {
		t.Errorf("ArrayStride = %d, want %d", layout.ArrayStride, VertexStride)
	}
	wantOffsets := []uint64{0, 12, 20, 32, 44}
	for i, a := range layout.Attributes {
		if a.Offset != wantOffsets[i] || a.ShaderLocation != uint32(i) {
			t.Errorf("attribute %d = offset %d location %d, want offset %d location %d",
				i, a.Offset, a.ShaderLocation, wantOffsets[i], i)
		}
	}
}

func TestGPUModelUniform(t *testing.T) {
	world := mgl32.Translate3D(1, 2, 3).Mul4(mgl32.Scale3D(2, 2, 2))
	u := NewGPUModelUniform(world, mgl32.Vec4{0.5, 0.25, 1, 1})
	if u.Size() != 144 {
		t.Fatalf("GPUModelUniform.Size() = %d, want 144", u.Size())
	}
	buf := u.Marshal()
	if got := common.ReadMat4(buf); got != world {
		t.Errorf("world_from_model = %v, want %v", got, world)
	}
	// uniform scale 2 gives a normal matrix scale of 0.5
	if got := common.ReadMat4(buf[64:]).At(0, 0); math.Abs(float64(got-0.5)) > 1e-6 {
		t.Errorf("normal_matrix[0][0] = %v, want 0.5", got)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(buf[132:])); got != 0.25 {
		t.Errorf("base_color.g = %v, want 0.25", got)
	}
}

func checkOutwardWinding(t *testing.T, name string, vertices []GPUVertex, indices []uint32) {
	t.Helper()
	for i := 0; i < len(indices); i += 3 {
		a := mgl32.Vec3(vertices[indices[i]].Position)
		b := mgl32.Vec3(vertices[indices[i+1]].Position)
		c := mgl32.Vec3(vertices[indices[i+2]].Position)
		n := mgl32.Vec3(vertices[indices[i]].Normal)
		if b.Sub(a).Cross(c.Sub(a)).Dot(n) <= 0 {
			t.Errorf("%s triangle %d winds against its normal", name, i/3)
		}
	}
}

func TestPrimitives(t *testing.T) {
	tests := []struct {
		name         string
		build        func() ([]GPUVertex, []uint32)
		wantVertices int
		wantIndices  int
		wantBounds   common.AABB
	}{
		{"cube", func() ([]GPUVertex, []uint32) { return Cube(2) }, 24, 36,
			common.AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}},
		{"plane", func() ([]GPUVertex, []uint32) { return Plane(10, 4) }, 4, 6,
			common.AABB{Min: mgl32.Vec3{-5, 0, -5}, Max: mgl32.Vec3{5, 0, 5}}},
		{"triangle", func() ([]GPUVertex, []uint32) { return Triangle(1.5) }, 3, 3,
			common.AABB{Min: mgl32.Vec3{-0.75, -0.5, 0}, Max: mgl32.Vec3{0.75, 1, 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vertices, indices := tt.build()
			if len(vertices) != tt.wantVertices || len(indices) != tt.wantIndices {
				t.Fatalf("got %d vertices %d indices, want %d and %d",
					len(vertices), len(indices), tt.wantVertices, tt.wantIndices)
			}
			checkOutwardWinding(t, tt.name, vertices, indices)

			box := ComputeBounds(vertices, indices)
			if !box.Min.ApproxEqualThreshold(tt.wantBounds.Min, 1e-5) || !box.Max.ApproxEqualThreshold(tt.wantBounds.Max, 1e-5) {
				t.Errorf("ComputeBounds() = %v, want %v", box, tt.wantBounds)
			}

			for i, v := range vertices {
				tan := mgl32.Vec3(v.Tangent)
				if math.Abs(float64(tan.Len()-1)) > 1e-4 {
					t.Errorf("vertex %d tangent length = %v, want 1", i, tan.Len())
				}
				if d := tan.Dot(v.Normal); math.Abs(float64(d)) > 1e-4 {
					t.Errorf("vertex %d tangent . normal = %v, want 0", i, d)
				}
			}
		})
	}
}

func TestTriangleTangentFrame(t *testing.T) {
	vertices, _ := Triangle(1)
	if got := mgl32.Vec3(vertices[0].Tangent); !got.ApproxEqualThreshold(mgl32.Vec3{1, 0, 0}, 1e-5) {
		t.Errorf("tangent = %v, want (1, 0, 0)", got)
	}
	// texture V grows downwards
	if got := mgl32.Vec3(vertices[0].Bitangent); !got.ApproxEqualThreshold(mgl32.Vec3{0, -1, 0}, 1e-5) {
		t.Errorf("bitangent = %v, want (0, -1, 0)", got)
	}
}

func TestNewMeshBinding(t *testing.T) {
	vertices, indices := Cube(2)

	m, err := NewMeshBinding("cube", vertices, indices)
	if err != nil {
		t.Fatalf("NewMeshBinding() error = %v", err)
	}
	if got := len(m.Parts()); got != 1 {
		t.Fatalf("len(Parts()) = %d, want 1", got)
	}
	if p := m.Parts()[0]; p.FirstIndex != 0 || p.IndexCount != 36 {
		t.Errorf("Parts()[0] = %+v, want whole index range", p)
	}
	if got := len(m.VertexData()); got != 24*VertexStride {
		t.Errorf("len(VertexData()) = %d, want %d", got, 24*VertexStride)
	}
	if got := len(m.IndexData()); got != 36*4 {
		t.Errorf("len(IndexData()) = %d, want %d", got, 36*4)
	}
	if m.Uploaded() {
		t.Error("Uploaded() = true before InitMeshBuffers")
	}
	if m.Provider().Label() != "cube Mesh" {
		t.Errorf("Provider().Label() = %q, want %q", m.Provider().Label(), "cube Mesh")
	}
}

func TestNewMeshBindingParts(t *testing.T) {
	vertices, indices := Cube(2)

	// first face is +X, second is -X
	m, err := NewMeshBinding("cube", vertices, indices, WithParts(
		Part{FirstIndex: 0, IndexCount: 6},
		Part{FirstIndex: 6, IndexCount: 6},
	))
	if err != nil {
		t.Fatalf("NewMeshBinding() error = %v", err)
	}
	if got := m.Parts()[0].Bounds; got.Min.X() != 1 || got.Max.X() != 1 {
		t.Errorf("+X face bounds = %v, want x = 1", got)
	}
	if got := m.Parts()[1].Bounds; got.Min.X() != -1 || got.Max.X() != -1 {
		t.Errorf("-X face bounds = %v, want x = -1", got)
	}

	if _, err := NewMeshBinding("bad", vertices, indices, WithParts(Part{FirstIndex: 30, IndexCount: 12})); err == nil {
		t.Error("NewMeshBinding() with a part past the end, error = nil")
	}
	if _, err := NewMeshBinding("bad", vertices[:4], indices); err == nil {
		t.Error("NewMeshBinding() with an out of range index, error = nil")
	}
}

func TestLayoutKey(t *testing.T) {
	vertices, indices := Triangle(1)
	full, _ := NewMeshBinding("a", vertices, indices)
	same, _ := NewMeshBinding("b", vertices, indices)
	partial := VertexLayout()
	partial.Attributes = partial.Attributes[:3]
	reduced, _ := NewMeshBinding("c", vertices, indices, WithVertexLayout(partial))

	if full.LayoutKey() != same.LayoutKey() {
		t.Errorf("LayoutKey() differs for identical layouts: %q vs %q", full.LayoutKey(), same.LayoutKey())
	}
	if full.LayoutKey() == reduced.LayoutKey() {
		t.Errorf("LayoutKey() = %q for both layouts, want different keys", full.LayoutKey())
	}
	if got := LayoutKey(wgpu.VertexBufferLayout{ArrayStride: 8}); got != "8" {
		t.Errorf("LayoutKey(empty) = %q, want %q", got, "8")
	}
}
