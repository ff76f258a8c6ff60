package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Tetrahedron returns the canonical 4-vertex, 4-triangle solid used
// by the end-to-end "single leaf cluster" scenario.
func Tetrahedron() *Mesh {
	positions := [4]mgl32.Vec3{
		{1, 1, 1}, {-1, -1, 1}, {-1, 1, -1}, {1, -1, -1},
	}
	faces := [4][3]uint32{
		{0, 1, 2}, {0, 2, 3}, {0, 3, 1}, {1, 3, 2},
	}
	return buildFromFaces(positions[:], faces[:])
}

// Cube returns a unit cube (8 vertices, 12 triangles) centered at the
// origin with the given half-extent.
func Cube(halfExtent float32) *Mesh {
	h := halfExtent
	positions := []mgl32.Vec3{
		{-h, -h, -h}, {h, -h, -h}, {h, h, -h}, {-h, h, -h},
		{-h, -h, h}, {h, -h, h}, {h, h, h}, {-h, h, h},
	}
	faces := [][3]uint32{
		{0, 1, 2}, {0, 2, 3}, // -Z
		{4, 6, 5}, {4, 7, 6}, // +Z
		{0, 4, 5}, {0, 5, 1}, // -Y
		{3, 2, 6}, {3, 6, 7}, // +Y
		{0, 3, 7}, {0, 7, 4}, // -X
		{1, 5, 6}, {1, 6, 2}, // +X
	}
	return buildFromFaces(positions, faces)
}

// UVSphere generates a latitude/longitude sphere mesh with the given
// radius and ring/segment subdivisions. Used to drive the "two-level
// hierarchy" end-to-end scenario at higher subdivisions.
func UVSphere(radius float32, rings, segments int) *Mesh {
	if rings < 2 {
		rings = 2
	}
	if segments < 3 {
		segments = 3
	}

	var positions []mgl32.Vec3
	for ring := 0; ring <= rings; ring++ {
		theta := math.Pi * float64(ring) / float64(rings)
		y := radius * float32(math.Cos(theta))
		r := radius * float32(math.Sin(theta))
		for seg := 0; seg <= segments; seg++ {
			phi := 2 * math.Pi * float64(seg) / float64(segments)
			x := r * float32(math.Cos(phi))
			z := r * float32(math.Sin(phi))
			positions = append(positions, mgl32.Vec3{x, y, z})
		}
	}

	stride := segments + 1
	var faces [][3]uint32
	for ring := 0; ring < rings; ring++ {
		for seg := 0; seg < segments; seg++ {
			a := uint32(ring*stride + seg)
			b := uint32(ring*stride + seg + 1)
			c := uint32((ring+1)*stride + seg)
			d := uint32((ring+1)*stride + seg + 1)
			if ring != 0 {
				faces = append(faces, [3]uint32{a, c, b})
			}
			if ring != rings-1 {
				faces = append(faces, [3]uint32{b, c, d})
			}
		}
	}
	return buildFromFaces(positions, faces)
}

// buildFromFaces derives per-vertex normals by averaging incident
// face normals and fabricates a planar UV from position, then flattens
// the face list into an index stream. It does not weld duplicate
// positions across faces — callers needing closure (the simplifier,
// in particular) weld separately by quantized position.
func buildFromFaces(positions []mgl32.Vec3, faces [][3]uint32) *Mesh {
	verts := make([]Vertex, len(positions))
	for i, p := range positions {
		verts[i].Pos = [3]float32{p.X(), p.Y(), p.Z()}
		verts[i].UV = [2]float32{p.X()*0.5 + 0.5, p.Y()*0.5 + 0.5}
	}

	normalAccum := make([]mgl32.Vec3, len(positions))
	indices := make([]uint32, 0, len(faces)*3)
	for _, f := range faces {
		p0, p1, p2 := positions[f[0]], positions[f[1]], positions[f[2]]
		n := p1.Sub(p0).Cross(p2.Sub(p0))
		for _, idx := range f {
			normalAccum[idx] = normalAccum[idx].Add(n)
		}
		indices = append(indices, f[0], f[1], f[2])
	}
	for i, n := range normalAccum {
		if n.Len() > 1e-12 {
			n = n.Normalize()
		} else {
			n = mgl32.Vec3{0, 1, 0}
		}
		verts[i].Normal = [3]float32{n.X(), n.Y(), n.Z()}
	}

	return &Mesh{Vertices: verts, Indices: indices}
}
