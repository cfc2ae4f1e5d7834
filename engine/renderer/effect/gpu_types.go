package effect

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-stereo/common"
)

// GPUBrightParamsSource is the canonical WGSL definition of the BrightParams struct.
// Matches GPUBrightParams layout exactly (16 bytes).
//
//go:embed assets/bright_params.wgsl
var GPUBrightParamsSource string

// GPUBloomParamsSource is the canonical WGSL definition of the BloomParams struct.
// Matches GPUBloomParams layout exactly (16 bytes).
//
//go:embed assets/bloom_params.wgsl
var GPUBloomParamsSource string

// GPUCompositeParamsSource is the canonical WGSL definition of the CompositeParams struct.
// Matches GPUCompositeParams layout exactly (16 bytes).
//
//go:embed assets/composite_params.wgsl
var GPUCompositeParamsSource string

// GPUBrightParams is the uniform of the bright-extraction shader.
// Size: 16 bytes.
type GPUBrightParams struct {
	Threshold float32    // offset 0
	Knee      float32    // offset 4
	_pad      [2]float32 // offset 8
}

// NewGPUBrightParams converts BrightParams into its GPU form.
func NewGPUBrightParams(p BrightParams) GPUBrightParams {
	return GPUBrightParams{Threshold: p.Threshold, Knee: p.Knee}
}

// Size returns the size of the GPUBrightParams struct in bytes.
func (g *GPUBrightParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUBrightParams struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload
func (g *GPUBrightParams) Marshal() []byte {
	buf := make([]byte, g.Size())
	common.PutFloat32s(buf, g.Threshold, g.Knee)
	return buf
}

// GPUBloomParams is the uniform of one bloom iteration.
// Size: 16 bytes.
type GPUBloomParams struct {
	Offset [2]float32 // offset 0
	_pad   [2]float32 // offset 8
}

// Size returns the size of the GPUBloomParams struct in bytes.
func (g *GPUBloomParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUBloomParams struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload
func (g *GPUBloomParams) Marshal() []byte {
	buf := make([]byte, g.Size())
	common.PutFloat32s(buf, g.Offset[0], g.Offset[1])
	return buf
}

// GPUCompositeParams is the uniform of the composite shader.
// Size: 16 bytes.
type GPUCompositeParams struct {
	Weights [CompositeSlots]float32 // offset 0
}

// Size returns the size of the GPUCompositeParams struct in bytes.
func (g *GPUCompositeParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUCompositeParams struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload
func (g *GPUCompositeParams) Marshal() []byte {
	buf := make([]byte, g.Size())
	common.PutFloat32s(buf, g.Weights[:]...)
	return buf
}
