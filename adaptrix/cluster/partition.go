package cluster

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lume-adaptrix/adaptrix/adaptrix/bitset"
	"github.com/lume-adaptrix/adaptrix/adaptrix/mesh"
)

// Partition splits every triangle of m into clusters of at most
// MaxVertices vertices and MaxTriangles triangles. Every input
// triangle ends up in exactly one cluster; no empty cluster is ever
// emitted.
//
// Seeding: the next cluster always starts from the unvisited triangle
// with the most dual-graph neighbors, counted once over the whole mesh
// before partitioning begins (already-visited neighbors are not
// subtracted), which tends to keep region growth away from thin wedges
// that would otherwise fragment into many tiny clusters.
//
// Growth: a FIFO frontier absorbs neighboring triangles as long as
// doing so keeps the cluster within both budgets; a triangle that
// would overflow the cluster is left for a later cluster rather than
// rejected outright, so completeness is never violated.
func Partition(m *mesh.Mesh, adj *mesh.Adjacency) []*Cluster {
	tcount := m.TriangleCount()
	if tcount == 0 {
		return nil
	}

	visited := bitset.New(tcount)
	valence := make([]int, tcount)
	for t := 0; t < tcount; t++ {
		for _, nb := range adj.Neighbors[t] {
			if nb >= 0 {
				valence[t]++
			}
		}
	}

	var clusters []*Cluster

	for {
		seed := pickSeed(visited, valence)
		if seed < 0 {
			break
		}
		clusters = append(clusters, growCluster(m, adj, visited, seed))
	}

	for _, c := range clusters {
		pts := make([]mgl32.Vec3, len(c.SourceVertices))
		for i, sv := range c.SourceVertices {
			p := m.Vertices[sv].Pos
			pts[i] = mgl32.Vec3{p[0], p[1], p[2]}
		}
		c.Center, c.Radius = RitterSphere(pts)
	}

	// Smaller bounding sphere first, so output ordering stays
	// deterministic independent of map iteration order elsewhere in
	// the pipeline.
	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].Radius < clusters[j].Radius
	})

	return clusters
}

func pickSeed(visited *bitset.Set, valence []int) int {
	best := -1
	bestValence := -1
	for t := 0; t < visited.Len(); t++ {
		if visited.Test(t) {
			continue
		}
		if valence[t] > bestValence {
			bestValence = valence[t]
			best = t
		}
	}
	return best
}

func growCluster(m *mesh.Mesh, adj *mesh.Adjacency, visited *bitset.Set, seed int) *Cluster {
	localIndex := make(map[uint32]byte, MaxVertices)
	var sourceVerts []uint32
	var localTris []byte

	tryAdd := func(t int) bool {
		a, b, c := m.Triangle(t)
		newVerts := 0
		for _, v := range [3]uint32{a, b, c} {
			if _, ok := localIndex[v]; !ok {
				newVerts++
			}
		}
		if len(localTris)/3+1 > MaxTriangles {
			return false
		}
		if len(sourceVerts)+newVerts > MaxVertices {
			return false
		}
		for _, v := range [3]uint32{a, b, c} {
			li, ok := localIndex[v]
			if !ok {
				li = byte(len(sourceVerts))
				localIndex[v] = li
				sourceVerts = append(sourceVerts, v)
			}
			localTris = append(localTris, li)
		}
		visited.Set(t)
		return true
	}

	tryAdd(seed)
	frontier := []int{seed}

	for len(frontier) > 0 {
		t := frontier[0]
		frontier = frontier[1:]
		for _, nb := range adj.Neighbors[t] {
			if nb < 0 || visited.Test(int(nb)) {
				continue
			}
			if tryAdd(int(nb)) {
				frontier = append(frontier, int(nb))
			}
		}
	}

	return &Cluster{SourceVertices: sourceVerts, LocalTriangles: localTris}
}
