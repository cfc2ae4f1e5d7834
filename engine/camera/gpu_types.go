package camera

import (
	_ "embed"
	"encoding/binary"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-stereo/common"
)

// GPUEyeBlockSource is the canonical WGSL definition of the EyeUniform and EyeBlock structs.
// Matches GPUEyeBlock layout exactly (528 bytes).
//
//go:embed assets/eye_block.wgsl
var GPUEyeBlockSource string

// GPUSurfaceEyeBlockSource is the canonical WGSL definition of the SurfaceEye and
// SurfaceEyeBlock structs. Matches GPUSurfaceEyeBlock layout exactly (400 bytes).
//
//go:embed assets/surface_eye_block.wgsl
var GPUSurfaceEyeBlockSource string

// GPUEyeUniform is the per-eye block read by geometry passes.
// Size: 256 bytes.
type GPUEyeUniform struct {
	WorldFromCamera   [16]float32 // offset   0
	CameraFromWorld   [16]float32 // offset  64
	Projection        [16]float32 // offset 128
	ProjectionInverse [16]float32 // offset 192
}

// GPUEyeBlock is the uniform bound at group 0 by the scene and volumetric passes.
// The vertex stage selects an eye with instance_index.
// Size: 528 bytes.
type GPUEyeBlock struct {
	Eyes        [MaxEyes]GPUEyeUniform // offset   0
	EyeCount    uint32                 // offset 512
	_pad        uint32                 // offset 516
	TextureSize [2]uint32              // offset 520
}

// NewGPUEyeBlock converts a frame into its GPU block. Mono frames fill both slots with the single eye.
//
// Parameters:
//   - f: the camera frame
//
// Returns:
//   - GPUEyeBlock: the block ready for Marshal
func NewGPUEyeBlock(f Frame) GPUEyeBlock {
	b := GPUEyeBlock{
		EyeCount:    uint32(f.EyeCount),
		TextureSize: [2]uint32{uint32(f.Width), uint32(f.Height)},
	}
	for i := range b.Eyes {
		e := f.Eye(i)
		b.Eyes[i] = GPUEyeUniform{
			WorldFromCamera:   e.WorldFromCamera,
			CameraFromWorld:   e.CameraFromWorld,
			Projection:        e.Projection,
			ProjectionInverse: e.ProjectionInverse,
		}
	}
	return b
}

// Size returns the size of the GPUEyeBlock struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (528)
func (g *GPUEyeBlock) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUEyeBlock struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUEyeBlock) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i, e := range g.Eyes {
		base := i * 256
		common.PutMat4(buf[base:], e.WorldFromCamera)
		common.PutMat4(buf[base+64:], e.CameraFromWorld)
		common.PutMat4(buf[base+128:], e.Projection)
		common.PutMat4(buf[base+192:], e.ProjectionInverse)
	}
	binary.LittleEndian.PutUint32(buf[512:], g.EyeCount)
	binary.LittleEndian.PutUint32(buf[520:], g.TextureSize[0])
	binary.LittleEndian.PutUint32(buf[524:], g.TextureSize[1])
	return buf
}

// GPUSurfaceEye is the per-eye block read by the deferred surface light pass.
// Size: 192 bytes.
type GPUSurfaceEye struct {
	ProjectionInverse [16]float32 // offset   0
	WorldFromCamera   [16]float32 // offset  64
	CameraFromWorld   [16]float32 // offset 128
}

// GPUSurfaceEyeBlock is the uniform bound at group 0 by the surface light pass.
// Size: 400 bytes.
type GPUSurfaceEyeBlock struct {
	Eyes        [MaxEyes]GPUSurfaceEye // offset   0
	EyeCount    uint32                 // offset 384
	_pad        uint32                 // offset 388
	TextureSize [2]uint32              // offset 392
}

// SurfaceEyeFromScene derives the surface light block from the scene block so both
// passes always agree on the eye matrices of a frame.
//
// Parameters:
//   - scene: the block uploaded for the scene pass
//
// Returns:
//   - GPUSurfaceEyeBlock: the block for the surface light pass
func SurfaceEyeFromScene(scene GPUEyeBlock) GPUSurfaceEyeBlock {
	out := GPUSurfaceEyeBlock{
		EyeCount:    scene.EyeCount,
		TextureSize: scene.TextureSize,
	}
	for i, e := range scene.Eyes {
		out.Eyes[i] = GPUSurfaceEye{
			ProjectionInverse: e.ProjectionInverse,
			WorldFromCamera:   e.WorldFromCamera,
			CameraFromWorld:   e.CameraFromWorld,
		}
	}
	return out
}

// Size returns the size of the GPUSurfaceEyeBlock struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (400)
func (g *GPUSurfaceEyeBlock) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUSurfaceEyeBlock struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUSurfaceEyeBlock) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i, e := range g.Eyes {
		base := i * 192
		common.PutMat4(buf[base:], e.ProjectionInverse)
		common.PutMat4(buf[base+64:], e.WorldFromCamera)
		common.PutMat4(buf[base+128:], e.CameraFromWorld)
	}
	binary.LittleEndian.PutUint32(buf[384:], g.EyeCount)
	binary.LittleEndian.PutUint32(buf[392:], g.TextureSize[0])
	binary.LittleEndian.PutUint32(buf[396:], g.TextureSize[1])
	return buf
}
