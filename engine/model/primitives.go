package model

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Procedural meshes for the preview scene and tests. All faces wind
// counter-clockwise seen from the side their normal points to.

// Triangle returns a single triangle in the z = 0 plane facing +Z, with its
// centroid at the origin.
//
// Parameters:
//   - size: edge extent of the triangle's bounding square
//
// Returns:
//   - []GPUVertex: three vertices
//   - []uint32: three indices
func Triangle(size float32) ([]GPUVertex, []uint32) {
	h := size / 2
	vertices := []GPUVertex{
		{Position: [3]float32{-h, -h * 2 / 3, 0}, TexCoord: [2]float32{0, 1}},
		{Position: [3]float32{h, -h * 2 / 3, 0}, TexCoord: [2]float32{1, 1}},
		{Position: [3]float32{0, h * 4 / 3, 0}, TexCoord: [2]float32{0.5, 0}},
	}
	for i := range vertices {
		vertices[i].Normal = [3]float32{0, 0, 1}
	}
	indices := []uint32{0, 1, 2}
	ComputeTangents(vertices, indices)
	return vertices, indices
}

// Plane returns a horizontal quad centered at the origin facing +Y.
//
// Parameters:
//   - size: edge length of the square
//   - uvScale: texture repeats across the quad
//
// Returns:
//   - []GPUVertex: four vertices
//   - []uint32: six indices
func Plane(size, uvScale float32) ([]GPUVertex, []uint32) {
	var vertices []GPUVertex
	var indices []uint32
	vertices, indices = appendQuad(vertices, indices,
		mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, size/2, uvScale)
	ComputeTangents(vertices, indices)
	return vertices, indices
}

// Cube returns an axis-aligned cube centered at the origin with one texture
// per face.
//
// Parameters:
//   - size: edge length
//
// Returns:
//   - []GPUVertex: 24 vertices, four per face
//   - []uint32: 36 indices
func Cube(size float32) ([]GPUVertex, []uint32) {
	// u x v = n for every face
	faces := [6][3]mgl32.Vec3{
		{{1, 0, 0}, {0, 0, -1}, {0, 1, 0}},
		{{-1, 0, 0}, {0, 0, 1}, {0, 1, 0}},
		{{0, 1, 0}, {1, 0, 0}, {0, 0, -1}},
		{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}},
		{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}},
		{{0, 0, -1}, {-1, 0, 0}, {0, 1, 0}},
	}
	h := size / 2
	vertices := make([]GPUVertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, f := range faces {
		vertices, indices = appendQuad(vertices, indices, f[0].Mul(h), f[0], f[1], f[2], h, 1)
	}
	ComputeTangents(vertices, indices)
	return vertices, indices
}

func appendQuad(vertices []GPUVertex, indices []uint32, center, n, u, v mgl32.Vec3, half, uvScale float32) ([]GPUVertex, []uint32) {
	base := uint32(len(vertices))
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	for _, c := range corners {
		p := center.Add(u.Mul(c[0] * half)).Add(v.Mul(c[1] * half))
		vertices = append(vertices, GPUVertex{
			Position: p,
			TexCoord: [2]float32{(c[0] + 1) / 2 * uvScale, (1 - c[1]) / 2 * uvScale},
			Normal:   n,
		})
	}
	indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	return vertices, indices
}

// ComputeTangents fills Tangent and Bitangent of every indexed vertex from the
// UV gradients of its triangles, orthogonalized against the vertex normal.
// Triangles with degenerate UVs contribute nothing.
//
// Parameters:
//   - vertices: vertices with Position, TexCoord and Normal set; updated in place
//   - indices: triangle list indices
func ComputeTangents(vertices []GPUVertex, indices []uint32) {
	tangents := make([]mgl32.Vec3, len(vertices))
	bitangents := make([]mgl32.Vec3, len(vertices))

	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		p0 := mgl32.Vec3(vertices[i0].Position)
		e1 := mgl32.Vec3(vertices[i1].Position).Sub(p0)
		e2 := mgl32.Vec3(vertices[i2].Position).Sub(p0)
		uv0 := vertices[i0].TexCoord
		du1, dv1 := vertices[i1].TexCoord[0]-uv0[0], vertices[i1].TexCoord[1]-uv0[1]
		du2, dv2 := vertices[i2].TexCoord[0]-uv0[0], vertices[i2].TexCoord[1]-uv0[1]

		det := du1*dv2 - du2*dv1
		if det == 0 {
			continue
		}
		r := 1 / det
		t := e1.Mul(dv2).Sub(e2.Mul(dv1)).Mul(r)
		b := e2.Mul(du1).Sub(e1.Mul(du2)).Mul(r)
		for _, idx := range [3]uint32{i0, i1, i2} {
			tangents[idx] = tangents[idx].Add(t)
			bitangents[idx] = bitangents[idx].Add(b)
		}
	}

	for i := range vertices {
		n := mgl32.Vec3(vertices[i].Normal)
		t := tangents[i].Sub(n.Mul(n.Dot(tangents[i])))
		if t.Len() > 0 {
			t = t.Normalize()
		}
		b := bitangents[i]
		if b.Len() > 0 {
			b = b.Normalize()
		}
		vertices[i].Tangent = t
		vertices[i].Bitangent = b
	}
}
