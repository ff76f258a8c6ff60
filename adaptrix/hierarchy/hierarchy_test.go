package hierarchy

import (
	"testing"

	"github.com/lume-adaptrix/adaptrix/adaptrix/mesh"
)

func TestBuildTetrahedronSingleNode(t *testing.T) {
	m := mesh.Tetrahedron()
	dag, err := Build(m, BuildOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(dag.Nodes) != 1 {
		t.Fatalf("expected a single node for a 4-triangle mesh, got %d", len(dag.Nodes))
	}
	root := dag.Nodes[dag.Root]
	if root.TriangleCount() != 4 {
		t.Fatalf("expected 4 triangles, got %d", root.TriangleCount())
	}
	if root.LODError != 0 {
		t.Fatalf("expected lod_error 0 for a never-simplified node, got %v", root.LODError)
	}
	if root.ParentError != ParentErrorInfinite {
		t.Fatalf("expected parent_error sentinel, got %v", root.ParentError)
	}
}

// TestBuildMonotoneError verifies that along the chain from any leaf
// to the root, lod_error never decreases and parent_error >= lod_error.
func TestBuildMonotoneError(t *testing.T) {
	m := mesh.UVSphere(1, 48, 48)
	dag, err := Build(m, BuildOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(dag.Nodes) < 2 {
		t.Fatalf("expected a multi-level hierarchy for a %d-triangle sphere, got %d nodes", m.TriangleCount(), len(dag.Nodes))
	}

	for i := range dag.Nodes {
		n := &dag.Nodes[i]
		if n.ParentError < n.LODError && n.ParentError != ParentErrorInfinite {
			t.Errorf("node %d: parent_error %v < lod_error %v", i, n.ParentError, n.LODError)
		}
		base, count := n.ChildBase, n.ChildCount
		for c := base; c < base+count; c++ {
			child := dag.Nodes[dag.ChildIndices[c]]
			if child.LODError > n.LODError {
				t.Errorf("child %d lod_error %v exceeds parent %d lod_error %v", dag.ChildIndices[c], child.LODError, i, n.LODError)
			}
		}
	}
}

// TestBuildCompleteness verifies every triangle of the original mesh
// is covered by exactly one level-0 node (the leaf clusters produced
// before any grouping happens).
func TestBuildCompleteness(t *testing.T) {
	m := mesh.UVSphere(1, 30, 30)
	dag, err := Build(m, BuildOptions{})
	if err != nil {
		t.Fatal(err)
	}

	total := 0
	for i := range dag.Nodes {
		n := &dag.Nodes[i]
		if n.LODError == 0 {
			total += n.TriangleCount()
		}
	}
	if total != m.TriangleCount() {
		t.Fatalf("expected level-0 nodes to cover %d triangles, covered %d", m.TriangleCount(), total)
	}
}
