package material

import (
	"github.com/Carmen-Shannon/oxy-stereo/common"
)

// Handle is an opaque index into an Arena. Handles stay valid for the arena's lifetime.
type Handle uint32

// material is the implementation of the Material interface.
type material struct {
	handle           Handle
	name             string
	baseColor        [4]float32
	baseColorTexture *common.ImportedTexture
}

// Material defines the interface for a flat-shaded render material: a base color
// optionally modulated by a base-color texture.
//
// Materials are immutable after construction. The GPU copy of the texture is
// owned by a TextureCache keyed by Handle, not by the material.
type Material interface {
	// Handle retrieves the arena index of the material.
	//
	// Returns:
	//   - Handle: the material handle
	Handle() Handle

	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// BaseColor retrieves the linear RGBA color multiplied with the texture sample.
	//
	// Returns:
	//   - [4]float32: the base color as RGBA values
	BaseColor() [4]float32

	// BaseColorTexture retrieves the source texture, or nil for a flat color.
	//
	// Returns:
	//   - *common.ImportedTexture: the base-color texture, or nil
	BaseColorTexture() *common.ImportedTexture

	// Textured reports whether the material has a base-color texture.
	//
	// Returns:
	//   - bool: true if BaseColorTexture is non-nil
	Textured() bool
}

var _ Material = &material{}

// NewMaterial creates a new Material instance configured with the provided options.
// Prefer Arena.New, which assigns unique handles.
//
// Parameters:
//   - handle: the arena index of the material
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(handle Handle, options ...MaterialBuilderOption) Material {
	m := &material{
		handle:    handle,
		baseColor: [4]float32{1, 1, 1, 1},
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) Handle() Handle {
	return m.handle
}

func (m *material) Name() string {
	return m.name
}

func (m *material) BaseColor() [4]float32 {
	return m.baseColor
}

func (m *material) BaseColorTexture() *common.ImportedTexture {
	return m.baseColorTexture
}

func (m *material) Textured() bool {
	return m.baseColorTexture != nil
}

// Arena hands out materials with consecutive handles.
// The zero value is ready to use. Not safe for concurrent use.
type Arena struct {
	materials []Material
}

// New creates a material with the next free handle and stores it in the arena.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: the new material
func (a *Arena) New(options ...MaterialBuilderOption) Material {
	m := NewMaterial(Handle(len(a.materials)), options...)
	a.materials = append(a.materials, m)
	return m
}

// Get looks up a material by handle.
//
// Parameters:
//   - h: the handle
//
// Returns:
//   - Material: the material, or nil
//   - bool: false if h was not issued by this arena
func (a *Arena) Get(h Handle) (Material, bool) {
	if int(h) >= len(a.materials) {
		return nil, false
	}
	return a.materials[h], true
}

// Len returns the number of materials in the arena.
func (a *Arena) Len() int {
	return len(a.materials)
}
