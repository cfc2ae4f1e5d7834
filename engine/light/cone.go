package light

import (
	"math"

	"github.com/Carmen-Shannon/oxy-stereo/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// ConeSegments is the number of sides of the cone mesh.
const ConeSegments = 24

// ConeMesh builds the unit cone used as volumetric light proxy geometry: apex at
// the origin, base circle of radius 1 at y = 1, closed by a cap. Triangles wind
// counter-clockwise seen from outside.
//
// Parameters:
//   - segments: number of sides (at least 3)
//
// Returns:
//   - []float32: vertex positions, three floats per vertex
//   - []uint32: triangle list indices
func ConeMesh(segments int) ([]float32, []uint32) {
	if segments < 3 {
		segments = 3
	}
	// apex, ring, cap center
	positions := make([]float32, 0, (segments+2)*3)
	positions = append(positions, 0, 0, 0)
	for i := 0; i < segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(segments)
		positions = append(positions, float32(math.Cos(a)), 1, float32(math.Sin(a)))
	}
	capCenter := uint32(segments + 1)
	positions = append(positions, 0, 1, 0)

	indices := make([]uint32, 0, segments*6)
	for i := 0; i < segments; i++ {
		a := uint32(1 + i)
		b := uint32(1 + (i+1)%segments)
		indices = append(indices, 0, a, b)
		// cap faces +Y
		indices = append(indices, capCenter, b, a)
	}
	return positions, indices
}

// ConeMeshBytes returns ConeMesh(ConeSegments) ready for vertex and index buffer upload.
func ConeMeshBytes() (vertices []byte, indices []byte, indexCount uint32) {
	pos, idx := ConeMesh(ConeSegments)
	return common.SliceToBytes(pos), common.SliceToBytes(idx), uint32(len(idx))
}

// ConeVertexLayout is the vertex buffer layout of ConeMeshBytes: one position per
// vertex at @location(0).
func ConeVertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: 3 * 4,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
		},
	}
}
