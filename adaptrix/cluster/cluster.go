// Package cluster implements the Adaptrix cluster partitioner: it
// splits a triangle set into bounded clusters of at most 128 vertices
// and 256 triangles, minimizing shared boundary vertices, via greedy
// region-growing seeded from high-valence triangles.
package cluster

import "github.com/go-gl/mathgl/mgl32"

const (
	MaxVertices  = 128
	MaxTriangles = 256
)

// Cluster is the preprocessor's build-time representation of a bounded
// triangle cluster: a local vertex list (indices into whatever source
// mesh the partitioner was given) and a local triangle list addressed
// by single-byte local indices, plus its bounding sphere.
type Cluster struct {
	// SourceVertices maps local vertex index -> index into the
	// mesh the partitioner operated over.
	SourceVertices []uint32
	// LocalTriangles is 3 local-index bytes per triangle.
	LocalTriangles []byte
	Center         mgl32.Vec3
	Radius         float32
}

func (c *Cluster) VertexCount() int   { return len(c.SourceVertices) }
func (c *Cluster) TriangleCount() int { return len(c.LocalTriangles) / 3 }

// LocalTriangle returns the three local vertex indices (0..127) of
// triangle t within this cluster.
func (c *Cluster) LocalTriangle(t int) (a, b, c2 byte) {
	i := t * 3
	return c.LocalTriangles[i], c.LocalTriangles[i+1], c.LocalTriangles[i+2]
}
