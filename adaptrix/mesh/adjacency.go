package mesh

import "github.com/lume-adaptrix/adaptrix/adaptrix/aerr"

// Adjacency holds, for every triangle, the up-to-three neighbor
// triangles across its three edges (-1 where the edge is a boundary,
// i.e. has no second incident triangle).
type Adjacency struct {
	Neighbors [][3]int32
}

// BuildOptions bounds the adjacency builder's working-set size.
type BuildOptions struct {
	// MemoryBudget caps the estimated peak bytes of the CSR scratch
	// arrays plus the output neighbor table. Zero means unlimited.
	MemoryBudget int
}

// estimatedPeakBytes is the builder's own accounting of its working
// set, checked up front so Oversize fails before any large
// allocation rather than after an OOM.
func estimatedPeakBytes(vertexCount, triangleCount int) int {
	const i32 = 4
	vertexTriangleCount := vertexCount * i32
	vertexTriangleOffset := (vertexCount + 1) * i32
	vertexTriangle := triangleCount * 3 * i32
	neighbors := triangleCount * 3 * i32
	return vertexTriangleCount + vertexTriangleOffset + vertexTriangle + neighbors
}

// BuildAdjacency computes per-triangle neighbor lists in O(M) time and
// bounded memory using a CSR (compressed sparse row) vertex->triangle
// map: each edge's second incident triangle is found by intersecting
// the two short CSR rows of its endpoints, which is O(1) amortized
// because average vertex valence is low on manifold meshes.
//
// No allocation happens inside the per-triangle inner loop; all
// scratch arrays are sized once up front.
func BuildAdjacency(m *Mesh, opts BuildOptions) (*Adjacency, error) {
	n := m.VertexCount()
	tcount := m.TriangleCount()

	if opts.MemoryBudget > 0 {
		if peak := estimatedPeakBytes(n, tcount); peak > opts.MemoryBudget {
			return nil, aerr.New(aerr.KindOversize, "adjacency builder working set exceeds memory budget")
		}
	}

	vertexTriangleCount := make([]int32, n)
	for t := 0; t < tcount; t++ {
		a, b, c := m.Triangle(t)
		vertexTriangleCount[a]++
		vertexTriangleCount[b]++
		vertexTriangleCount[c]++
	}

	vertexTriangleOffset := make([]int32, n+1)
	for v := 0; v < n; v++ {
		vertexTriangleOffset[v+1] = vertexTriangleOffset[v] + vertexTriangleCount[v]
	}

	// cursor is a working copy of the offsets, consumed as each
	// vertex's row is scattered into.
	cursor := make([]int32, n)
	copy(cursor, vertexTriangleOffset[:n])

	vertexTriangle := make([]int32, vertexTriangleOffset[n])
	for t := 0; t < tcount; t++ {
		a, b, c := m.Triangle(t)
		for _, v := range [3]uint32{a, b, c} {
			vertexTriangle[cursor[v]] = int32(t)
			cursor[v]++
		}
	}

	row := func(v uint32) []int32 {
		return vertexTriangle[vertexTriangleOffset[v]:vertexTriangleOffset[v+1]]
	}

	// findOther returns the triangle sharing edge (v0,v1) with self,
	// or -1 if the edge is a boundary (or non-manifold, in which case
	// the first match found is returned — the simplifier is what
	// enforces manifoldness, not the adjacency builder).
	findOther := func(v0, v1 uint32, self int32) int32 {
		r0, r1 := row(v0), row(v1)
		// Iterate the shorter row against the longer for fewer
		// comparisons; both rows are expected to be short (avg
		// valence < 20 on manifold meshes).
		if len(r1) < len(r0) {
			r0, r1 = r1, r0
		}
		for _, t := range r0 {
			if t == self {
				continue
			}
			for _, t2 := range r1 {
				if t2 == t {
					return t
				}
			}
		}
		return -1
	}

	neighbors := make([][3]int32, tcount)
	for t := 0; t < tcount; t++ {
		a, b, c := m.Triangle(t)
		self := int32(t)
		neighbors[t] = [3]int32{
			findOther(a, b, self),
			findOther(b, c, self),
			findOther(c, a, self),
		}
	}

	return &Adjacency{Neighbors: neighbors}, nil
}
