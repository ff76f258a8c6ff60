// Package hierarchy implements the Adaptrix hierarchy builder, the
// heart of the preprocessor: it repeatedly groups neighbor clusters,
// simplifies each group, and re-partitions the result, producing a
// DAG of clusters with monotonically non-decreasing parent error.
// Groups are independent once the cluster-adjacency graph is built,
// so each level fans out to a worker pool and reduces on a single
// goroutine.
package hierarchy

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/lume-adaptrix/adaptrix/adaptrix/cluster"
	"github.com/lume-adaptrix/adaptrix/adaptrix/mesh"
)

// ParentErrorInfinite is the sentinel recorded in a node's ParentError
// once the build terminates without ever grouping it into a coarser
// level: there is nothing coarser on this path, so the cut condition
// must always consider it. The culler treats parent_error > 9e9 as
// "no coarser alternative exists".
const ParentErrorInfinite float32 = 1e18

// unpatchedParentError marks a node that has not yet been grouped
// into a coarser level. It is negative so the back-patch's max()
// always overwrites it on the first (and only) patch, even when the
// coarser node's own lod_error happens to be exactly zero.
const unpatchedParentError float32 = -1

// Node is a single cluster of the built hierarchy: unlike
// cluster.Cluster (whose vertex list is indices into a transient,
// level-local mesh), a Node owns its vertex data directly, since each
// hierarchy level is simplified from a different, ephemeral mesh that
// does not outlive that level's build step.
type Node struct {
	Vertices  []mesh.Vertex
	Triangles []byte // 3 local-index bytes per triangle, local index < len(Vertices)
	Center    mgl32.Vec3
	Radius    float32

	// LODError is this node's own geometric error in world units.
	LODError float32
	// ParentError is back-patched to the lod_error of the coarser
	// node this one feeds into, or ParentErrorInfinite if none.
	ParentError float32

	// ChildBase/ChildCount index into DAG.ChildIndices.
	ChildBase  uint32
	ChildCount uint32
}

func (n *Node) VertexCount() int   { return len(n.Vertices) }
func (n *Node) TriangleCount() int { return len(n.Triangles) / 3 }

// LocalTriangle returns the three local vertex indices of triangle t.
func (n *Node) LocalTriangle(t int) (a, b, c byte) {
	i := t * 3
	return n.Triangles[i], n.Triangles[i+1], n.Triangles[i+2]
}

// DAG is the flattened hierarchy: a node's children are named by
// index range rather than nested pointers, so the whole structure
// serializes as two flat arrays.
type DAG struct {
	Nodes        []Node
	ChildIndices []uint32
	Root         uint32
}

// materialize copies a cluster.Cluster's referenced vertices (from
// srcMesh, by the cluster's own index space) into a self-contained
// Node at level 0, where lod_error is always zero: no simplification
// has happened yet.
func materialize(c *cluster.Cluster, srcMesh *mesh.Mesh) Node {
	verts := make([]mesh.Vertex, len(c.SourceVertices))
	for i, srcIdx := range c.SourceVertices {
		verts[i] = srcMesh.Vertices[srcIdx]
	}
	return Node{
		Vertices:    verts,
		Triangles:   append([]byte(nil), c.LocalTriangles...),
		Center:      c.Center,
		Radius:      c.Radius,
		LODError:    0,
		ParentError: unpatchedParentError,
	}
}

// materializeFromMesh is materialize's counterpart for clusters
// produced by re-partitioning a simplified group mesh: the cluster's
// SourceVertices index into that ephemeral mesh instead of the
// original source mesh.
func materializeFromMesh(c *cluster.Cluster, m *mesh.Mesh, lodError float32) Node {
	n := materialize(c, m)
	n.LODError = lodError
	return n
}

// mergeNodes concatenates a group of nodes into a single indexed mesh,
// offsetting each node's local indices into the shared vertex array.
func mergeNodes(nodes []*Node) *mesh.Mesh {
	var verts []mesh.Vertex
	var indices []uint32
	for _, n := range nodes {
		base := uint32(len(verts))
		verts = append(verts, n.Vertices...)
		for _, b := range n.Triangles {
			indices = append(indices, base+uint32(b))
		}
	}
	return &mesh.Mesh{Vertices: verts, Indices: indices}
}
