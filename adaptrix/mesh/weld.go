package mesh

import "math"

// Weld merges vertices that land on the same cell of a uniform grid
// of the given absolute cell size, remapping triangle indices onto
// the reduced vertex set. The simplifier uses this to guarantee
// closure at group seams: clusters keep independent local vertex
// copies of shared boundary vertices, and welding by quantized
// position reunites them before edge collapse runs.
func Weld(m *Mesh, cellSize float32) *Mesh {
	if cellSize <= 0 {
		cellSize = 1e-5
	}
	type key [3]int32
	quantize := func(p [3]float32) key {
		return key{
			int32(roundHalfAway(p[0] / cellSize)),
			int32(roundHalfAway(p[1] / cellSize)),
			int32(roundHalfAway(p[2] / cellSize)),
		}
	}

	canonical := make(map[key]uint32, len(m.Vertices))
	remap := make([]uint32, len(m.Vertices))
	var verts []Vertex

	for i, v := range m.Vertices {
		k := quantize(v.Pos)
		if ci, ok := canonical[k]; ok {
			remap[i] = ci
			continue
		}
		ci := uint32(len(verts))
		canonical[k] = ci
		verts = append(verts, v)
		remap[i] = ci
	}

	indices := make([]uint32, len(m.Indices))
	for i, idx := range m.Indices {
		indices[i] = remap[idx]
	}

	return &Mesh{Vertices: verts, Indices: indices}
}

func roundHalfAway(f float32) float32 {
	if f >= 0 {
		return float32(int64(f + 0.5))
	}
	return float32(int64(f - 0.5))
}

// Extent returns the diagonal length of the mesh's axis-aligned
// bounding box, used to derive a relative welding/quantization grid
// size (~1e-5 of the model extent).
func (m *Mesh) Extent() float32 {
	if len(m.Vertices) == 0 {
		return 0
	}
	min := m.Vertices[0].Pos
	max := m.Vertices[0].Pos
	for _, v := range m.Vertices[1:] {
		for i := 0; i < 3; i++ {
			if v.Pos[i] < min[i] {
				min[i] = v.Pos[i]
			}
			if v.Pos[i] > max[i] {
				max[i] = v.Pos[i]
			}
		}
	}
	dx, dy, dz := max[0]-min[0], max[1]-min[1], max[2]-min[2]
	return float32(math.Sqrt(float64(dx*dx + dy*dy + dz*dz)))
}
