package mesh

import (
	"errors"
	"testing"

	"github.com/lume-adaptrix/adaptrix/adaptrix/aerr"
)

func tetrahedron() *Mesh {
	return &Mesh{
		Vertices: make([]Vertex, 4),
		Indices: []uint32{
			0, 1, 2,
			0, 2, 3,
			0, 3, 1,
			1, 3, 2,
		},
	}
}

func TestBuildAdjacencyTetrahedron(t *testing.T) {
	m := tetrahedron()
	adj, err := BuildAdjacency(m, BuildOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(adj.Neighbors) != 4 {
		t.Fatalf("expected 4 triangles, got %d", len(adj.Neighbors))
	}
	// A closed tetrahedron has no boundary edges: every edge is
	// shared by exactly two triangles.
	for t2, n := range adj.Neighbors {
		for i, nb := range n {
			if nb < 0 {
				t.Errorf("triangle %d edge %d has no neighbor on a closed tetrahedron", t2, i)
			}
		}
	}
}

func TestBuildAdjacencyBoundary(t *testing.T) {
	// Single triangle: all three edges are boundary.
	m := &Mesh{
		Vertices: make([]Vertex, 3),
		Indices:  []uint32{0, 1, 2},
	}
	adj, err := BuildAdjacency(m, BuildOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, nb := range adj.Neighbors[0] {
		if nb != -1 {
			t.Errorf("expected boundary edge (-1), got %d", nb)
		}
	}
}

func TestBuildAdjacencyOversize(t *testing.T) {
	m := tetrahedron()
	_, err := BuildAdjacency(m, BuildOptions{MemoryBudget: 1})
	if !errors.Is(err, aerr.ErrOversize) {
		t.Fatalf("expected Oversize error, got %v", err)
	}
}
