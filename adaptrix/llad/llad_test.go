package llad

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lume-adaptrix/adaptrix/adaptrix/aerr"
	"github.com/lume-adaptrix/adaptrix/adaptrix/hierarchy"
	"github.com/lume-adaptrix/adaptrix/adaptrix/mesh"
)

func buildTetrahedronDAG(t *testing.T) *hierarchy.DAG {
	t.Helper()
	dag, err := hierarchy.Build(mesh.Tetrahedron(), hierarchy.BuildOptions{})
	require.NoError(t, err)
	return dag
}

// TestRoundTrip verifies read(write(asset)) reproduces every blob
// bit-exactly.
func TestRoundTrip(t *testing.T) {
	dag := buildTetrahedronDAG(t)
	path := filepath.Join(t.TempDir(), "asset.llad")

	require.NoError(t, Write(path, dag))
	asset, err := Open(path)
	require.NoError(t, err)
	defer asset.Close()

	verts := asset.Vertices()
	require.Equal(t, len(dag.Nodes[0].Vertices), len(verts), "vertex count")
	for i, v := range verts {
		require.Equal(t, dag.Nodes[0].Vertices[i], v, "vertex %d", i)
	}

	clusters := asset.Clusters()
	require.Equal(t, len(dag.Nodes), len(clusters), "cluster count")
	require.Equal(t, dag.Nodes[0].TriangleCount(), clusters[0].TriangleCount(), "triangle count")
	require.Zero(t, clusters[0].LODError, "root lod_error")
	require.Equal(t, hierarchy.ParentErrorInfinite, clusters[0].ParentError, "root parent_error sentinel")
}

// TestIndexDecodeWithinBounds verifies every decoded local index lies
// in [0, vertex_count).
func TestIndexDecodeWithinBounds(t *testing.T) {
	dag := buildTetrahedronDAG(t)
	path := filepath.Join(t.TempDir(), "asset.llad")
	if err := Write(path, dag); err != nil {
		t.Fatal(err)
	}
	asset, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer asset.Close()

	primitives := asset.PrimitiveIndices()
	for _, c := range asset.Clusters() {
		for i := 0; i < c.TriangleCount()*3; i++ {
			local := primitives[int(c.TriangleOffset)+i]
			if int(local) >= c.VertexCount() {
				t.Fatalf("decoded local index %d out of range [0,%d)", local, c.VertexCount())
			}
		}
	}
}

func TestOpenBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.llad")
	if err := os.WriteFile(path, make([]byte, 128), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Open(path)
	if !errors.Is(err, aerr.ErrBadMagic) {
		t.Fatalf("expected BadMagic, got %v", err)
	}
}

func TestOpenTruncated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.llad")
	if err := os.WriteFile(path, []byte(Magic), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Open(path)
	if !errors.Is(err, aerr.ErrTruncated) {
		t.Fatalf("expected Truncated, got %v", err)
	}
}

func TestOpenUnsupportedVersion(t *testing.T) {
	dag := buildTetrahedronDAG(t)
	path := filepath.Join(t.TempDir(), "asset.llad")
	if err := Write(path, dag); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	raw[4] = 0xFF // corrupt the version field
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err = Open(path)
	if !errors.Is(err, aerr.ErrUnsupported) {
		t.Fatalf("expected Unsupported, got %v", err)
	}
}
