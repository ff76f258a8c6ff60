package hierarchy

import (
	"runtime"
	"sync"

	"github.com/lume-adaptrix/adaptrix/adaptrix/cluster"
	"github.com/lume-adaptrix/adaptrix/adaptrix/mesh"
	"github.com/lume-adaptrix/adaptrix/adaptrix/simplify"
)

// minHierarchyTriangles is the loop's "triangle count < 128" stop
// condition: once a level's total triangle count drops below this,
// the whole remaining mesh already fits comfortably inside a single
// cluster and further grouping buys nothing.
const minHierarchyTriangles = 128

// maxWorkers caps the level builder's worker pool: GOMAXPROCS is a
// fine default but a pathologically wide machine shouldn't spin up
// hundreds of goroutines for what is usually a few dozen groups.
const maxWorkers = 16

// BuildOptions configures the hierarchy builder.
type BuildOptions struct {
	// MemoryBudget is forwarded to the adjacency builder at every
	// level. Zero means unlimited.
	MemoryBudget int
}

// Build runs the full iterative hierarchy build over a raw indexed
// mesh: partitions it into level-0 leaf clusters, then
// repeatedly groups, simplifies, and re-partitions until a single
// cluster remains or the level's total triangle count drops below
// minHierarchyTriangles.
//
// dag.Nodes grows monotonically as levels are built; a "level" is
// tracked only as a slice of indices into it, never as pointers,
// since dag.Nodes keeps being appended to underneath.
func Build(m *mesh.Mesh, opts BuildOptions) (*DAG, error) {
	adj, err := mesh.BuildAdjacency(m, mesh.BuildOptions{MemoryBudget: opts.MemoryBudget})
	if err != nil {
		return nil, err
	}
	leafClusters := cluster.Partition(m, adj)

	dag := &DAG{}
	level := make([]uint32, len(leafClusters))
	for i, c := range leafClusters {
		dag.Nodes = append(dag.Nodes, materialize(c, m))
		level[i] = uint32(i)
	}

	for len(level) > 1 && totalTriangles(dag, level) >= minHierarchyTriangles {
		before := totalTriangles(dag, level)
		next := buildNextLevel(dag, level)
		if len(next) == 0 {
			break
		}
		level = next
		if totalTriangles(dag, next) >= before {
			// No group in this pass actually shrank the triangle
			// count (e.g. every group came back NonManifold): stop
			// rather than loop forever. next still becomes the final
			// (topmost) level, since its members already reflect
			// whatever progress individual groups made.
			break
		}
	}

	for _, idx := range level {
		if dag.Nodes[idx].ParentError < 0 {
			dag.Nodes[idx].ParentError = ParentErrorInfinite
		}
	}
	dag.Root = level[0]
	for _, idx := range level[1:] {
		if idx < dag.Root {
			dag.Root = idx
		}
	}

	return dag, nil
}

func totalTriangles(dag *DAG, level []uint32) int {
	total := 0
	for _, idx := range level {
		total += dag.Nodes[idx].TriangleCount()
	}
	return total
}

type groupOutcome struct {
	children    []uint32
	newNodes    []Node
	passThrough []uint32
}

// buildNextLevel groups level into clusters of neighbors, dispatches
// each group to a worker pool for independent simplify+re-partition,
// then reduces the workers' thread-local results into dag.Nodes on a
// single goroutine, the only synchronization point in the level.
func buildNextLevel(dag *DAG, level []uint32) []uint32 {
	groups := groupClusters(dag, level)

	jobs := make(chan []int32, len(groups))
	for _, g := range groups {
		jobs <- g
	}
	close(jobs)

	workers := runtime.GOMAXPROCS(0)
	if workers > maxWorkers {
		workers = maxWorkers
	}
	if workers < 1 {
		workers = 1
	}

	results := make(chan []groupOutcome, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			var local []groupOutcome
			for g := range jobs {
				members := make([]uint32, len(g))
				for i, localIdx := range g {
					members[i] = level[localIdx]
				}
				local = append(local, processGroup(dag, members))
			}
			results <- local
		}()
	}
	wg.Wait()
	close(results)

	// Reduce: single-threaded, assigns global indices and child
	// ranges. No locks were held while workers computed quadrics.
	var next []uint32
	for local := range results {
		for _, outcome := range local {
			if len(outcome.passThrough) > 0 {
				next = append(next, outcome.passThrough...)
				continue
			}

			childBase := uint32(len(dag.ChildIndices))
			dag.ChildIndices = append(dag.ChildIndices, outcome.children...)

			for _, n := range outcome.newNodes {
				n.ChildBase = childBase
				n.ChildCount = uint32(len(outcome.children))
				globalIdx := uint32(len(dag.Nodes))
				dag.Nodes = append(dag.Nodes, n)
				next = append(next, globalIdx)
			}

			for _, childIdx := range outcome.children {
				for _, n := range outcome.newNodes {
					if n.LODError > dag.Nodes[childIdx].ParentError {
						dag.Nodes[childIdx].ParentError = n.LODError
					}
				}
			}
		}
	}
	return next
}

// processGroup merges a group's clusters into one mesh, simplifies
// it, and re-partitions the result. A NonManifold group (or any other
// adjacency/simplify failure) is passed through unchanged.
// members are global indices into dag.Nodes; dag is read-only
// during this call (no goroutine appends to it until the reduce step
// that follows worker completion).
func processGroup(dag *DAG, members []uint32) groupOutcome {
	ptrs := make([]*Node, len(members))
	childMaxError := float32(0)
	for i, idx := range members {
		ptrs[i] = &dag.Nodes[idx]
		if dag.Nodes[idx].LODError > childMaxError {
			childMaxError = dag.Nodes[idx].LODError
		}
	}

	merged := mergeNodes(ptrs)
	result, err := simplify.Simplify(merged)
	if err != nil {
		return groupOutcome{passThrough: members}
	}

	adj, err := mesh.BuildAdjacency(result.Mesh, mesh.BuildOptions{})
	if err != nil {
		return groupOutcome{passThrough: members}
	}

	newClusters := cluster.Partition(result.Mesh, adj)
	nodes := make([]Node, len(newClusters))
	for i, c := range newClusters {
		nodes[i] = materializeFromMesh(c, result.Mesh, result.Error)
		if nodes[i].LODError < childMaxError {
			nodes[i].LODError = childMaxError
		}
	}

	return groupOutcome{children: members, newNodes: nodes}
}
