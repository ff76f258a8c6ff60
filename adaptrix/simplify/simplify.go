// Package simplify implements the Adaptrix group simplifier:
// quadric-error edge collapse over a merged group of 2-4
// neighboring clusters, halving triangle count while pinning boundary
// (seam) vertices so neighboring groups stay geometrically
// consistent, and reporting the group's world-space geometric error.
package simplify

import (
	"container/heap"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lume-adaptrix/adaptrix/adaptrix/aerr"
	"github.com/lume-adaptrix/adaptrix/adaptrix/mesh"
)

// Result is the simplified group mesh plus its geometric error.
type Result struct {
	Mesh  *mesh.Mesh
	Error float32
}

// Simplify welds groupMesh by quantized position, collapses edges
// until the triangle count halves (pinning vertices on the group's
// outer seam), and returns the simplified mesh together with the
// square root of the maximum quadric error retained by any surviving
// vertex.
//
// If the welded group contains a non-manifold edge (more than two
// triangles sharing it), the simplifier refuses to touch it and
// returns aerr.ErrNonManifold; the caller is expected to pass the
// group through unchanged in that case.
func Simplify(groupMesh *mesh.Mesh) (*Result, error) {
	welded := mesh.Weld(groupMesh, groupMesh.Extent()*1e-5)

	locked, err := boundaryLockedVertices(welded)
	if err != nil {
		return nil, err
	}

	s := newSession(welded, locked)
	target := s.activeTris / 2
	if target < 1 {
		target = 1
	}

	for s.activeTris > target && s.queue.Len() > 0 {
		e := heap.Pop(&s.queue).(*edge)
		s.tryCollapse(e)
	}

	return s.finish(), nil
}

// boundaryLockedVertices returns, per vertex, whether it lies on a
// boundary edge of the welded group mesh (an edge with no second
// incident triangle) — i.e. a seam shared with clusters outside this
// group, which must not move. It also detects non-manifold edges
// (more than two triangles sharing an edge), which the adjacency
// builder's O(1)-amortized neighbor search does not itself flag.
func boundaryLockedVertices(m *mesh.Mesh) ([]bool, error) {
	type edgeKey struct{ a, b uint32 }
	counts := make(map[edgeKey]int)
	bump := func(a, b uint32) {
		if a > b {
			a, b = b, a
		}
		counts[edgeKey{a, b}]++
	}
	for t := 0; t < m.TriangleCount(); t++ {
		a, b, c := m.Triangle(t)
		bump(a, b)
		bump(b, c)
		bump(c, a)
	}

	locked := make([]bool, len(m.Vertices))
	for k, n := range counts {
		if n > 2 {
			return nil, aerr.New(aerr.KindNonManifold, "edge shared by more than two triangles")
		}
		if n == 1 {
			locked[k.a] = true
			locked[k.b] = true
		}
	}
	return locked, nil
}

type edge struct {
	a, b  uint32
	cost  float64
	index int
}

type edgeHeap []*edge

func (h edgeHeap) Len() int            { return len(h) }
func (h edgeHeap) Less(i, j int) bool  { return h[i].cost < h[j].cost }
func (h edgeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index, h[j].index = i, j }
func (h *edgeHeap) Push(x interface{}) { e := x.(*edge); e.index = len(*h); *h = append(*h, e) }
func (h *edgeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

type session struct {
	mesh       *mesh.Mesh
	redirect   []uint32
	locked     []bool
	quadrics   []quadric
	pos        []mgl32.Vec3
	vertTris   [][]int32
	triCorner  [][3]uint32
	triAlive   []bool
	activeTris int
	queue      edgeHeap
}

func newSession(m *mesh.Mesh, locked []bool) *session {
	n := len(m.Vertices)
	s := &session{
		mesh:     m,
		redirect: make([]uint32, n),
		locked:   append([]bool(nil), locked...),
		quadrics: make([]quadric, n),
		pos:      make([]mgl32.Vec3, n),
		vertTris: make([][]int32, n),
		triAlive: make([]bool, m.TriangleCount()),
	}
	for i := range s.redirect {
		s.redirect[i] = uint32(i)
		p := m.Vertices[i].Pos
		s.pos[i] = mgl32.Vec3{p[0], p[1], p[2]}
	}

	s.triCorner = make([][3]uint32, m.TriangleCount())
	for t := 0; t < m.TriangleCount(); t++ {
		a, b, c := m.Triangle(t)
		s.triCorner[t] = [3]uint32{a, b, c}
		s.triAlive[t] = true
		s.activeTris++
		q := planeQuadric(s.pos[a], s.pos[b], s.pos[c])
		s.quadrics[a] = s.quadrics[a].add(q)
		s.quadrics[b] = s.quadrics[b].add(q)
		s.quadrics[c] = s.quadrics[c].add(q)
		s.vertTris[a] = append(s.vertTris[a], int32(t))
		s.vertTris[b] = append(s.vertTris[b], int32(t))
		s.vertTris[c] = append(s.vertTris[c], int32(t))
	}

	seen := make(map[[2]uint32]bool)
	for t := range s.triCorner {
		c := s.triCorner[t]
		pairs := [3][2]uint32{{c[0], c[1]}, {c[1], c[2]}, {c[2], c[0]}}
		for _, p := range pairs {
			a, b := p[0], p[1]
			if a > b {
				a, b = b, a
			}
			if seen[[2]uint32{a, b}] {
				continue
			}
			seen[[2]uint32{a, b}] = true
			if s.locked[a] && s.locked[b] {
				continue
			}
			s.pushEdge(a, b)
		}
	}
	heap.Init(&s.queue)
	return s
}

func (s *session) find(v uint32) uint32 {
	for s.redirect[v] != v {
		s.redirect[v] = s.redirect[s.redirect[v]]
		v = s.redirect[v]
	}
	return v
}

func (s *session) targetPos(a, b uint32) mgl32.Vec3 {
	switch {
	case s.locked[a] && !s.locked[b]:
		return s.pos[a]
	case s.locked[b] && !s.locked[a]:
		return s.pos[b]
	default:
		return s.pos[a].Add(s.pos[b]).Mul(0.5)
	}
}

func (s *session) pushEdge(a, b uint32) {
	combined := s.quadrics[a].add(s.quadrics[b])
	p := s.targetPos(a, b)
	heap.Push(&s.queue, &edge{a: a, b: b, cost: combined.errorAt(p)})
}

func (s *session) tryCollapse(e *edge) {
	a, b := s.find(e.a), s.find(e.b)
	if a == b {
		return
	}
	if s.locked[a] && s.locked[b] {
		return
	}

	survivor, absorbed := a, b
	if s.locked[b] && !s.locked[a] {
		survivor, absorbed = b, a
	}

	newPos := s.targetPos(survivor, absorbed)
	combined := s.quadrics[survivor].add(s.quadrics[absorbed])

	s.redirect[absorbed] = survivor
	s.pos[survivor] = newPos
	s.quadrics[survivor] = combined
	s.locked[survivor] = s.locked[survivor] || s.locked[absorbed]

	touched := s.vertTris[absorbed]
	s.vertTris[survivor] = append(s.vertTris[survivor], touched...)
	s.vertTris[absorbed] = nil

	neighbors := make(map[uint32]bool)
	for _, ti := range touched {
		if !s.triAlive[ti] {
			continue
		}
		c := s.triCorner[ti]
		r0, r1, r2 := s.find(c[0]), s.find(c[1]), s.find(c[2])
		if r0 == r1 || r1 == r2 || r2 == r0 {
			s.triAlive[ti] = false
			s.activeTris--
			continue
		}
		for _, r := range [3]uint32{r0, r1, r2} {
			if r != survivor {
				neighbors[r] = true
			}
		}
	}
	for n := range neighbors {
		if s.locked[survivor] && s.locked[n] {
			continue
		}
		s.pushEdge(survivor, n)
	}
}

func (s *session) finish() *Result {
	// Compact the surviving (canonical root) vertices.
	remap := make(map[uint32]uint32)
	var verts []mesh.Vertex
	for i := range s.mesh.Vertices {
		v := uint32(i)
		if s.find(v) != v {
			continue
		}
		remap[v] = uint32(len(verts))
		orig := s.mesh.Vertices[i]
		orig.Pos = [3]float32{s.pos[v].X(), s.pos[v].Y(), s.pos[v].Z()}
		verts = append(verts, orig)
	}

	var indices []uint32
	for t, alive := range s.triAlive {
		if !alive {
			continue
		}
		c := s.triCorner[t]
		r0, r1, r2 := s.find(c[0]), s.find(c[1]), s.find(c[2])
		indices = append(indices, remap[r0], remap[r1], remap[r2])
	}

	var maxSquaredError float64
	for i := range s.mesh.Vertices {
		v := uint32(i)
		if s.find(v) != v {
			continue
		}
		if e := s.quadrics[v].errorAt(s.pos[v]); e > maxSquaredError {
			maxSquaredError = e
		}
	}
	if maxSquaredError < 0 {
		maxSquaredError = 0
	}

	return &Result{
		Mesh: &mesh.Mesh{Vertices: verts, Indices: indices},
		// The quadric metric is a squared plane distance; take its
		// square root so lod_error is a linear world-space deviation
		// comparable to the culler's screen-space error conversion.
		Error: float32(math.Sqrt(maxSquaredError)),
	}
}
