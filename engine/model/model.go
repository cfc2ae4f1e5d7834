package model

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-stereo/common"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// Part is a contiguous index range of a mesh drawn as one call.
type Part struct {
	// FirstIndex is the offset of the first index in the index buffer.
	FirstIndex uint32

	// IndexCount is the number of indices in the range.
	IndexCount uint32

	// Bounds is the model-space box enclosing every vertex referenced by the range.
	Bounds common.AABB
}

// MeshBinding is a GPU-resident mesh: vertex and index buffers held by a
// BindGroupProvider, the parts to draw and the vertex layout the buffers follow.
// A binding is produced once by the host and only read by the render passes.
type MeshBinding struct {
	name       string
	provider   bind_group_provider.BindGroupProvider
	layout     wgpu.VertexBufferLayout
	parts      []Part
	bounds     common.AABB
	vertexData []byte
	indexData  []byte
	indexCount int
}

// NewMeshBinding creates a MeshBinding from CPU vertex and index data.
// When no parts are given the whole index buffer becomes a single part.
// The buffers are created later by Renderer.InitMeshBuffers.
//
// Parameters:
//   - name: label used for the GPU buffers
//   - vertices: the mesh vertices
//   - indices: triangle list indices into vertices
//   - options: a variadic list of MeshBindingOption functions
//
// Returns:
//   - *MeshBinding: the binding, not yet uploaded
//   - error: an error if an index or part range is out of bounds
func NewMeshBinding(name string, vertices []GPUVertex, indices []uint32, options ...MeshBindingOption) (*MeshBinding, error) {
	for i, idx := range indices {
		if int(idx) >= len(vertices) {
			return nil, fmt.Errorf("mesh %q: index %d references vertex %d of %d", name, i, idx, len(vertices))
		}
	}

	m := &MeshBinding{
		name:       name,
		provider:   bind_group_provider.NewBindGroupProvider(name + " Mesh"),
		layout:     VertexLayout(),
		vertexData: make([]byte, 0, len(vertices)*VertexStride),
		indexData:  common.SliceToBytes(indices),
		indexCount: len(indices),
	}
	for i := range vertices {
		m.vertexData = append(m.vertexData, vertices[i].Marshal()...)
	}
	for _, opt := range options {
		opt(m)
	}

	if len(m.parts) == 0 {
		m.parts = []Part{{FirstIndex: 0, IndexCount: uint32(len(indices))}}
	}
	for i := range m.parts {
		p := &m.parts[i]
		if uint64(p.FirstIndex)+uint64(p.IndexCount) > uint64(len(indices)) {
			return nil, fmt.Errorf("mesh %q: part %d exceeds %d indices", name, i, len(indices))
		}
		p.Bounds = ComputeBounds(vertices, indices[p.FirstIndex:p.FirstIndex+p.IndexCount])
	}
	m.bounds = ComputeBounds(vertices, indices)

	return m, nil
}

// Name returns the label of the mesh.
func (m *MeshBinding) Name() string {
	return m.name
}

// Provider returns the BindGroupProvider holding the vertex and index buffers.
//
// Returns:
//   - bind_group_provider.BindGroupProvider: the mesh provider
func (m *MeshBinding) Provider() bind_group_provider.BindGroupProvider {
	return m.provider
}

// Uploaded reports whether the GPU buffers exist.
func (m *MeshBinding) Uploaded() bool {
	return m.provider.VertexBuffer() != nil && m.provider.IndexBuffer() != nil
}

// Layout returns the vertex buffer layout the mesh data follows.
func (m *MeshBinding) Layout() wgpu.VertexBufferLayout {
	return m.layout
}

// LayoutKey returns a string that is equal for two meshes exactly when their
// vertex layouts are interchangeable in one pipeline.
//
// Returns:
//   - string: stride followed by format@offset:location for every attribute
func (m *MeshBinding) LayoutKey() string {
	return LayoutKey(m.layout)
}

// Parts returns the index ranges of the mesh.
func (m *MeshBinding) Parts() []Part {
	return m.parts
}

// Bounds returns the model-space box of all indexed vertices.
func (m *MeshBinding) Bounds() common.AABB {
	return m.bounds
}

// VertexData returns the raw vertex bytes pending or already uploaded.
func (m *MeshBinding) VertexData() []byte {
	return m.vertexData
}

// IndexData returns the raw uint32 index bytes.
func (m *MeshBinding) IndexData() []byte {
	return m.indexData
}

// IndexCount returns the number of indices in the index buffer.
func (m *MeshBinding) IndexCount() int {
	return m.indexCount
}

// Release frees the GPU buffers. The binding may be uploaded again afterwards.
func (m *MeshBinding) Release() {
	m.provider.Release()
}

// LayoutKey formats a vertex buffer layout as a comparable string.
//
// Parameters:
//   - layout: the layout to describe
//
// Returns:
//   - string: the key
func LayoutKey(layout wgpu.VertexBufferLayout) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d", layout.ArrayStride)
	for _, a := range layout.Attributes {
		fmt.Fprintf(&sb, "|%d@%d:%d", a.Format, a.Offset, a.ShaderLocation)
	}
	return sb.String()
}

// ComputeBounds returns the box enclosing the vertices referenced by indices.
// An empty index list yields the zero box.
//
// Parameters:
//   - vertices: the vertex array
//   - indices: indices into vertices
//
// Returns:
//   - common.AABB: the bounds
func ComputeBounds(vertices []GPUVertex, indices []uint32) common.AABB {
	if len(indices) == 0 {
		return common.AABB{}
	}
	first := mgl32.Vec3(vertices[indices[0]].Position)
	box := common.AABB{Min: first, Max: first}
	for _, idx := range indices[1:] {
		p := vertices[idx].Position
		for axis := 0; axis < 3; axis++ {
			box.Min[axis] = min(box.Min[axis], p[axis])
			box.Max[axis] = max(box.Max[axis], p[axis])
		}
	}
	return box
}
