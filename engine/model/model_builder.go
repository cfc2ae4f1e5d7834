package model

import "github.com/cogentcore/webgpu/wgpu"

// MeshBindingOption is a functional option for configuring a MeshBinding via NewMeshBinding.
type MeshBindingOption func(*MeshBinding)

// WithParts is an option builder that splits the index buffer into draw ranges.
// Part bounds are computed by NewMeshBinding and need not be set.
//
// Parameters:
//   - parts: the index ranges
//
// Returns:
//   - MeshBindingOption: a function that applies the parts option to a mesh binding
func WithParts(parts ...Part) MeshBindingOption {
	return func(m *MeshBinding) {
		m.parts = append(m.parts[:0], parts...)
	}
}

// WithVertexLayout is an option builder that overrides the layout the scene
// pipeline is built with, e.g. to expose only the attributes a shader reads.
// The stride must stay VertexStride.
//
// Parameters:
//   - layout: the layout over GPUVertex data
//
// Returns:
//   - MeshBindingOption: a function that applies the layout option to a mesh binding
func WithVertexLayout(layout wgpu.VertexBufferLayout) MeshBindingOption {
	return func(m *MeshBinding) {
		m.layout = layout
	}
}
