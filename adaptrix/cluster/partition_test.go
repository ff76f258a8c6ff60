package cluster

import (
	"testing"

	"github.com/lume-adaptrix/adaptrix/adaptrix/mesh"
)

func TestPartitionTetrahedronSingleCluster(t *testing.T) {
	m := mesh.Tetrahedron()
	adj, err := mesh.BuildAdjacency(m, mesh.BuildOptions{})
	if err != nil {
		t.Fatal(err)
	}
	clusters := Partition(m, adj)
	if len(clusters) != 1 {
		t.Fatalf("expected a single cluster for a 4-triangle mesh, got %d", len(clusters))
	}
	if clusters[0].TriangleCount() != 4 {
		t.Fatalf("expected 4 triangles in the cluster, got %d", clusters[0].TriangleCount())
	}
}

// TestPartitionCompleteness verifies every input triangle ends up in
// exactly one cluster and the per-cluster bounds are respected.
func TestPartitionCompleteness(t *testing.T) {
	m := mesh.UVSphere(1, 60, 60)
	adj, err := mesh.BuildAdjacency(m, mesh.BuildOptions{})
	if err != nil {
		t.Fatal(err)
	}
	clusters := Partition(m, adj)
	if len(clusters) < 2 {
		t.Fatalf("expected multiple clusters for a %d-triangle sphere, got %d", m.TriangleCount(), len(clusters))
	}

	totalTris := 0
	for _, c := range clusters {
		if c.VertexCount() > MaxVertices {
			t.Errorf("cluster exceeds MaxVertices: %d", c.VertexCount())
		}
		if c.TriangleCount() > MaxTriangles {
			t.Errorf("cluster exceeds MaxTriangles: %d", c.TriangleCount())
		}
		if c.TriangleCount() == 0 {
			t.Errorf("empty cluster emitted")
		}
		totalTris += c.TriangleCount()
	}
	if totalTris != m.TriangleCount() {
		t.Fatalf("expected total clustered triangles %d to equal mesh triangle count %d", totalTris, m.TriangleCount())
	}
}

func TestPartitionTieBreakSortedByRadius(t *testing.T) {
	m := mesh.UVSphere(1, 40, 40)
	adj, _ := mesh.BuildAdjacency(m, mesh.BuildOptions{})
	clusters := Partition(m, adj)
	for i := 1; i < len(clusters); i++ {
		if clusters[i].Radius < clusters[i-1].Radius {
			t.Fatalf("clusters not sorted by ascending radius at index %d", i)
		}
	}
}
