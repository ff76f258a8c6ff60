package simplify

import "github.com/go-gl/mathgl/mgl32"

// quadric is the upper triangle of the symmetric 4x4 error matrix
// Kp = n*n^T for a plane n = (a,b,c,d). Accumulated in float64 since
// many planes get summed over a collapse sequence and we want the
// retained vertex's lod_error to stay numerically stable.
type quadric struct {
	a2, ab, ac, ad float64
	b2, bc, bd     float64
	c2, cd         float64
	d2             float64
}

func planeQuadric(p0, p1, p2 mgl32.Vec3) quadric {
	n := p1.Sub(p0).Cross(p2.Sub(p0))
	l := n.Len()
	if l < 1e-20 {
		return quadric{}
	}
	n = n.Mul(1 / l)
	d := -n.Dot(p0)
	a, b, c := float64(n.X()), float64(n.Y()), float64(n.Z())
	dd := float64(d)
	return quadric{
		a2: a * a, ab: a * b, ac: a * c, ad: a * dd,
		b2: b * b, bc: b * c, bd: b * dd,
		c2: c * c, cd: c * dd,
		d2: dd * dd,
	}
}

func (q quadric) add(o quadric) quadric {
	return quadric{
		a2: q.a2 + o.a2, ab: q.ab + o.ab, ac: q.ac + o.ac, ad: q.ad + o.ad,
		b2: q.b2 + o.b2, bc: q.bc + o.bc, bd: q.bd + o.bd,
		c2: q.c2 + o.c2, cd: q.cd + o.cd,
		d2: q.d2 + o.d2,
	}
}

// errorAt evaluates v^T Q v for point p, the quadric error metric.
func (q quadric) errorAt(p mgl32.Vec3) float64 {
	x, y, z := float64(p.X()), float64(p.Y()), float64(p.Z())
	return x*x*q.a2 + 2*x*y*q.ab + 2*x*z*q.ac + 2*x*q.ad +
		y*y*q.b2 + 2*y*z*q.bc + 2*y*q.bd +
		z*z*q.c2 + 2*z*q.cd +
		q.d2
}
