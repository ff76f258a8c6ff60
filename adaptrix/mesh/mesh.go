// Package mesh holds the raw indexed-mesh input to the Adaptrix
// preprocessor and the CSR-based adjacency builder.
package mesh

import "unsafe"

// Vertex is the wire-level attribute layout: an 8-float flat struct
// (position, normal, uv), 32 bytes, 16-byte aligned. Deliberately flat
// rather than a nested vec3/vec3/vec2 struct — field order below IS
// the wire order.
type Vertex struct {
	Pos    [3]float32
	Normal [3]float32
	UV     [2]float32
}

const VertexSize = 32

func init() {
	if unsafe.Sizeof(Vertex{}) != VertexSize {
		panic("mesh.Vertex must be exactly 32 bytes to match the LLAD wire layout")
	}
}

// Mesh is a raw indexed triangle mesh: deduplicated vertices and a
// flat triangle index stream (length a multiple of 3).
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }
func (m *Mesh) VertexCount() int   { return len(m.Vertices) }

// Triangle returns the three vertex indices of triangle t.
func (m *Mesh) Triangle(t int) (a, b, c uint32) {
	i := t * 3
	return m.Indices[i], m.Indices[i+1], m.Indices[i+2]
}
