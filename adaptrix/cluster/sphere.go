package cluster

import "github.com/go-gl/mathgl/mgl32"

// RitterSphere computes an approximate minimal bounding sphere over
// points using Ritter's algorithm: pick an extremal pair, seed a
// sphere from them, then expand to absorb any outlier. It is not
// exact but is linear-time and good enough for culling bounds.
func RitterSphere(points []mgl32.Vec3) (center mgl32.Vec3, radius float32) {
	if len(points) == 0 {
		return mgl32.Vec3{}, 0
	}
	if len(points) == 1 {
		return points[0], 0
	}

	p0 := points[0]
	p1 := farthestFrom(points, p0)
	p2 := farthestFrom(points, p1)

	center = p1.Add(p2).Mul(0.5)
	radius = p1.Sub(center).Len()

	for _, p := range points {
		d := p.Sub(center).Len()
		if d > radius {
			newRadius := (radius + d) / 2
			k := (newRadius - radius) / d
			center = center.Add(p.Sub(center).Mul(k))
			radius = newRadius
		}
	}
	return center, radius
}

func farthestFrom(points []mgl32.Vec3, from mgl32.Vec3) mgl32.Vec3 {
	best := points[0]
	bestDist := float32(-1)
	for _, p := range points {
		d := p.Sub(from).Len()
		if d > bestDist {
			bestDist = d
			best = p
		}
	}
	return best
}
