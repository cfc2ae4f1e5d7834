package light

import (
	_ "embed"
	"encoding/binary"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-stereo/common"
)

// GPUSpotLightSource is the canonical WGSL definition of the SpotLight struct.
// Matches GPUSpotLight layout exactly (112 bytes).
//
//go:embed assets/spot_light.wgsl
var GPUSpotLightSource string

// GPULightHeaderSource is the canonical WGSL definition of the LightHeader struct.
// Matches GPULightHeader layout exactly (16 bytes).
//
//go:embed assets/light_header.wgsl
var GPULightHeaderSource string

//go:embed assets/light_buffer.wgsl
var lightBufferSource string

// GPULightBufferSource defines LightBuffer together with the structs it embeds,
// so a single include brings the whole light storage layout into a shader.
var GPULightBufferSource = GPULightHeaderSource + "\n" + GPUSpotLightSource + "\n" + lightBufferSource

// GPUConeVertexSource is the canonical WGSL definition of the cone mesh vertex input.
//
//go:embed assets/cone_vertex.wgsl
var GPUConeVertexSource string

// GPUSpotLight is the GPU-aligned representation of a single spot light.
// Size: 112 bytes.
type GPUSpotLight struct {
	WorldFromModel [16]float32 // offset   0: places the unit cone mesh
	Position       [3]float32  // offset  64
	AngleCos       float32     // offset  76
	Direction      [3]float32  // offset  80
	Intensity      float32     // offset  92
	Color          [3]float32  // offset  96
	Range          float32     // offset 108
}

// NewGPUSpotLight converts a light into its GPU form.
func NewGPUSpotLight(l SpotLight) GPUSpotLight {
	return GPUSpotLight{
		WorldFromModel: l.WorldFromModel(),
		Position:       l.Position,
		AngleCos:       l.AngleCos,
		Direction:      l.Direction,
		Intensity:      l.Intensity,
		Color:          l.Color,
		Range:          l.EffectiveRange(),
	}
}

// Size returns the size of the GPUSpotLight struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (112)
func (g *GPUSpotLight) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUSpotLight struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 112-byte buffer ready for GPU upload
func (g *GPUSpotLight) Marshal() []byte {
	buf := make([]byte, g.Size())
	g.put(buf)
	return buf
}

func (g *GPUSpotLight) put(buf []byte) {
	common.PutMat4(buf, g.WorldFromModel)
	common.PutFloat32s(buf[64:], g.Position[0], g.Position[1], g.Position[2], g.AngleCos)
	common.PutFloat32s(buf[80:], g.Direction[0], g.Direction[1], g.Direction[2], g.Intensity)
	common.PutFloat32s(buf[96:], g.Color[0], g.Color[1], g.Color[2], g.Range)
}

// GPULightHeader precedes the light array in the light buffer.
// Size: 16 bytes.
type GPULightHeader struct {
	LightCount uint32    // offset 0: number of valid entries in the light array
	_pad       [3]uint32 // offset 4
}

// Size returns the size of the GPULightHeader struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (16)
func (h *GPULightHeader) Size() int {
	return int(unsafe.Sizeof(*h))
}

// Marshal serializes the GPULightHeader struct into a byte buffer suitable for
// GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload
func (h *GPULightHeader) Marshal() []byte {
	buf := make([]byte, h.Size())
	binary.LittleEndian.PutUint32(buf[0:4], h.LightCount)
	return buf
}

// LightBufferSize is the byte size of the WGSL LightBuffer struct: header plus MaxLights entries.
const LightBufferSize = 16 + MaxLights*112

// MarshalLights serializes up to MaxLights lights into a LightBuffer prefix.
// Only the header and the used entries are written; the GPU ignores entries past light_count.
//
// Parameters:
//   - lights: the frame's lights
//
// Returns:
//   - []byte: header followed by one 112-byte entry per light
//   - int: the number of lights written
func MarshalLights(lights []SpotLight) ([]byte, int) {
	n := min(len(lights), MaxLights)
	buf := make([]byte, 16+n*112)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(n))
	for i := 0; i < n; i++ {
		g := NewGPUSpotLight(lights[i])
		g.put(buf[16+i*112:])
	}
	return buf, n
}
