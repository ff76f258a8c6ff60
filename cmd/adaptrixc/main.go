// Command adaptrixc is the offline Adaptrix preprocessor: it turns a
// mesh into a cluster-DAG LLAD asset a viewer can mmap directly.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/lume-adaptrix/adaptrix/adaptrix/alog"
	"github.com/lume-adaptrix/adaptrix/adaptrix/config"
	"github.com/lume-adaptrix/adaptrix/adaptrix/hierarchy"
	"github.com/lume-adaptrix/adaptrix/adaptrix/llad"
	"github.com/lume-adaptrix/adaptrix/adaptrix/mesh"
)

// buildInfo is the debug side-channel recorded next to every built
// asset: which mesh/options produced it, so a stale or misbuilt .llad
// can be traced back to its recipe without re-parsing the binary
// header.
type buildInfo struct {
	BuildID      string    `json:"build_id"`
	BuiltAt      time.Time `json:"built_at"`
	Source       string    `json:"source"`
	Primitive    string    `json:"primitive,omitempty"`
	MemoryBudget int       `json:"memory_budget"`
	ClusterCount int       `json:"cluster_count"`
	VertexCount  int       `json:"vertex_count"`
}

func main() {
	var (
		out          = flag.String("out", "out.llad", "output .llad asset path")
		primitive    = flag.String("primitive", "", "built-in test mesh to preprocess: cube (default), sphere, tetrahedron")
		sphereRings  = flag.Int("sphere-rings", 32, "ring subdivision count when -primitive=sphere")
		sphereSegs   = flag.Int("sphere-segments", 48, "segment subdivision count when -primitive=sphere")
		memoryBudget = flag.Int("memory-budget", 0, "adjacency build memory budget in bytes, 0 = unlimited")
		debug        = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	log := alog.New("adaptrixc", *debug)

	m, source, err := loadMesh(*primitive, *sphereRings, *sphereSegs)
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}

	buildCfg := config.NewBuildConfig().WithMemoryBudget(*memoryBudget).WithLogger(log)
	log.Infof("building hierarchy for %d vertices, %d triangles", m.VertexCount(), m.TriangleCount())

	dag, err := hierarchy.Build(m, hierarchy.BuildOptions{MemoryBudget: buildCfg.MemoryBudget})
	if err != nil {
		log.Errorf("hierarchy build failed: %v", err)
		os.Exit(1)
	}
	log.Infof("built %d cluster nodes, root=%d", len(dag.Nodes), dag.Root)

	if err := llad.Write(*out, dag); err != nil {
		log.Errorf("write asset failed: %v", err)
		os.Exit(1)
	}

	info := buildInfo{
		BuildID:      uuid.NewString(),
		BuiltAt:      time.Now().UTC(),
		Source:       source,
		Primitive:    *primitive,
		MemoryBudget: *memoryBudget,
		ClusterCount: len(dag.Nodes),
		VertexCount:  m.VertexCount(),
	}
	if err := writeBuildInfo(*out, info); err != nil {
		log.Warnf("build info side file not written: %v", err)
	}

	log.Infof("wrote %s", *out)
}

func loadMesh(primitive string, rings, segments int) (*mesh.Mesh, string, error) {
	switch primitive {
	case "", "cube":
		return mesh.Cube(1), "primitive:cube", nil
	case "sphere":
		return mesh.UVSphere(1, rings, segments), "primitive:sphere", nil
	case "tetrahedron":
		return mesh.Tetrahedron(), "primitive:tetrahedron", nil
	default:
		return nil, "", fmt.Errorf("adaptrixc: unknown -primitive %q (want cube, sphere, or tetrahedron)", primitive)
	}
}

func writeBuildInfo(assetPath string, info buildInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(assetPath+".json", data, 0o644)
}
