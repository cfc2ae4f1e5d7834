package material

import (
	"github.com/Carmen-Shannon/oxy-stereo/common"
)

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithBaseColor is an option builder that sets the linear RGBA base color of the material.
//
// Parameters:
//   - color: the base color as RGBA float32 values
//
// Returns:
//   - MaterialBuilderOption: a function that applies the base color option to a material
func WithBaseColor(color [4]float32) MaterialBuilderOption {
	return func(m *material) {
		m.baseColor = color
	}
}

// WithBaseColorTexture is an option builder that sets the base-color texture source.
//
// Parameters:
//   - tex: the texture, decoded on first use by the scene pass
//
// Returns:
//   - MaterialBuilderOption: a function that applies the texture option to a material
func WithBaseColorTexture(tex *common.ImportedTexture) MaterialBuilderOption {
	return func(m *material) {
		m.baseColorTexture = tex
	}
}
