package model

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-stereo/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// GPUVertexSource is the canonical WGSL definition of the VertexInput struct for mesh pipelines.
// Matches GPUVertex layout exactly (56 bytes, tightly packed vertex attributes).
//
//go:embed assets/vertex.wgsl
var GPUVertexSource string

// GPUModelUniformSource is the canonical WGSL definition of the per-entity ModelUniform struct.
// Matches GPUModelUniform layout exactly (144 bytes).
//
//go:embed assets/model_uniform.wgsl
var GPUModelUniformSource string

// GPUVertex is the GPU representation of a single mesh vertex.
// Vertex attributes are tightly packed, so vec3 fields carry no padding.
// Size: 56 bytes.
type GPUVertex struct {
	Position  [3]float32 // offset  0: model-space position
	TexCoord  [2]float32 // offset 12: UV coordinate
	Normal    [3]float32 // offset 20: model-space normal
	Tangent   [3]float32 // offset 32: +U direction in model space
	Bitangent [3]float32 // offset 44: +V direction in model space
}

// VertexStride is the byte size of one GPUVertex.
const VertexStride = 56

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 56-byte buffer ready for GPU upload.
func (g *GPUVertex) Marshal() []byte {
	buf := make([]byte, VertexStride)
	common.PutFloat32s(buf,
		g.Position[0], g.Position[1], g.Position[2],
		g.TexCoord[0], g.TexCoord[1],
		g.Normal[0], g.Normal[1], g.Normal[2],
		g.Tangent[0], g.Tangent[1], g.Tangent[2],
		g.Bitangent[0], g.Bitangent[1], g.Bitangent[2],
	)
	return buf
}

// VertexLayout describes GPUVertex as a single interleaved vertex buffer.
// Shader locations follow the field order of VertexInput.
//
// Returns:
//   - wgpu.VertexBufferLayout: the layout for buffer slot 0
func VertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: VertexStride,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 12, ShaderLocation: 1},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 20, ShaderLocation: 2},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 32, ShaderLocation: 3},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 44, ShaderLocation: 4},
		},
	}
}

// GPUModelUniform is the per-entity uniform block of the scene pass.
// Size: 144 bytes.
type GPUModelUniform struct {
	WorldFromModel [16]float32 // offset   0
	NormalMatrix   [16]float32 // offset  64: inverse transpose of WorldFromModel
	BaseColor      [4]float32  // offset 128: multiplied with the sampled base-color texture
}

// NewGPUModelUniform builds the uniform block for an entity.
//
// Parameters:
//   - worldFromModel: the entity transform
//   - baseColor: linear RGBA base color
//
// Returns:
//   - GPUModelUniform: the filled block
func NewGPUModelUniform(worldFromModel mgl32.Mat4, baseColor mgl32.Vec4) GPUModelUniform {
	return GPUModelUniform{
		WorldFromModel: worldFromModel,
		NormalMatrix:   common.NormalMatrix(worldFromModel),
		BaseColor:      baseColor,
	}
}

// Size returns the size of the GPUModelUniform struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes (144)
func (g *GPUModelUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUModelUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 144-byte buffer ready for GPU upload.
func (g *GPUModelUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	common.PutMat4(buf, g.WorldFromModel)
	common.PutMat4(buf[64:], g.NormalMatrix)
	common.PutFloat32s(buf[128:], g.BaseColor[0], g.BaseColor[1], g.BaseColor[2], g.BaseColor[3])
	return buf
}
