package simplify

import (
	"errors"
	"testing"

	"github.com/lume-adaptrix/adaptrix/adaptrix/aerr"
	"github.com/lume-adaptrix/adaptrix/adaptrix/mesh"
)

func TestSimplifyHalvesTriangleCount(t *testing.T) {
	m := mesh.UVSphere(1, 20, 20)
	before := m.TriangleCount()

	res, err := Simplify(m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	after := res.Mesh.TriangleCount()
	if after == 0 || after >= before {
		t.Fatalf("expected triangle count to shrink from %d, got %d", before, after)
	}
	// Should land close to half (allow slack since a fully closed
	// sphere has no locked vertices at all and the heap may run dry).
	if after > before/2+1 {
		t.Fatalf("expected roughly half the triangles, before=%d after=%d", before, after)
	}
	if res.Error < 0 {
		t.Fatalf("geometric error must not be negative, got %v", res.Error)
	}
}

func TestSimplifyNonManifold(t *testing.T) {
	// Three triangles sharing a single edge (0,1): non-manifold.
	m := &mesh.Mesh{
		Vertices: make([]mesh.Vertex, 5),
		Indices: []uint32{
			0, 1, 2,
			0, 1, 3,
			0, 1, 4,
		},
	}
	m.Vertices[0].Pos = [3]float32{0, 0, 0}
	m.Vertices[1].Pos = [3]float32{1, 0, 0}
	m.Vertices[2].Pos = [3]float32{0, 1, 0}
	m.Vertices[3].Pos = [3]float32{0, -1, 0}
	m.Vertices[4].Pos = [3]float32{0, 0, 1}

	_, err := Simplify(m)
	if !errors.Is(err, aerr.ErrNonManifold) {
		t.Fatalf("expected NonManifold error, got %v", err)
	}
}

func TestSimplifyPinsBoundaryPositions(t *testing.T) {
	// A single triangle: every vertex is on a boundary edge, so no
	// collapse should move a locked vertex's position away from its
	// original location (there are zero non-boundary edges to collapse
	// at all, since the triangle is just boundary on all sides).
	m := &mesh.Mesh{
		Vertices: []mesh.Vertex{
			{Pos: [3]float32{0, 0, 0}},
			{Pos: [3]float32{1, 0, 0}},
			{Pos: [3]float32{0, 1, 0}},
		},
		Indices: []uint32{0, 1, 2},
	}
	res, err := Simplify(m)
	if err != nil {
		t.Fatal(err)
	}
	if res.Mesh.TriangleCount() != 1 {
		t.Fatalf("a single triangle with all-boundary edges must be left unchanged, got %d triangles", res.Mesh.TriangleCount())
	}
	orig := map[[3]float32]bool{}
	for _, v := range m.Vertices {
		orig[v.Pos] = true
	}
	for _, v := range res.Mesh.Vertices {
		if !orig[v.Pos] {
			t.Fatalf("locked vertex moved to %v", v.Pos)
		}
	}
}
