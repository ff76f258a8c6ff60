// Package gpu hosts the host-visible half of the Adaptrix runtime
// pipeline: the resource binder that uploads an opened LLAD asset as
// storage buffers, the CPU-testable cull math whose frustum, cut and
// HW/SW split tests the WGSL compute shader in adaptrix/shaders
// mirrors, and the visibility ID encode/decode shared by the HW and SW
// rasterizer passes.
//
// The frustum/cut/HZB arithmetic is kept in plain Go, not only in
// WGSL, so it can be table-tested on the CPU before ever dispatching a
// shader. The shader's HZB test is simpler than HZBOccluded: it samples
// a single texel at the sphere's projected center rather than the
// maximum over the projected footprint.
package gpu

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ParentErrorInfinite mirrors hierarchy.ParentErrorInfinite without an
// import cycle: any cluster whose ParentError exceeds 9e9 is a leaf.
const ParentErrorInfinite float32 = 1e18

const leafParentErrorThreshold = 9e9

// Sphere is the minimal per-cluster input the cull tests need: a
// bounding sphere plus the two error fields from llad.ClusterRecord.
type Sphere struct {
	Center      mgl32.Vec3
	Radius      float32
	LODError    float32
	ParentError float32
}

// IsLeaf reports whether s has no coarser parent on its root-to-leaf
// path (parent_error beyond the infinite-sentinel threshold).
func (s Sphere) IsLeaf() bool { return s.ParentError > leafParentErrorThreshold }

// ExtractFrustumVulkan derives the six frustum planes (Ax+By+Cz+D=0,
// normalized) from a view-projection matrix built for Vulkan/WebGPU
// clip space (Z in [0,1]): left/right/bottom/top follow the standard
// Gribb-Hartmann row add/sub, but near and far differ from an
// OpenGL-style derivation because this clip space has no -1 lower Z
// bound: near is row 2 directly, far is row3-row2.
// Returned order: Left, Right, Bottom, Top, Near, Far.
func ExtractFrustumVulkan(vp mgl32.Mat4) [6]mgl32.Vec4 {
	row := func(i int) mgl32.Vec4 {
		return mgl32.Vec4{vp.At(i, 0), vp.At(i, 1), vp.At(i, 2), vp.At(i, 3)}
	}
	add := func(a, b mgl32.Vec4) mgl32.Vec4 {
		return mgl32.Vec4{a[0] + b[0], a[1] + b[1], a[2] + b[2], a[3] + b[3]}
	}
	sub := func(a, b mgl32.Vec4) mgl32.Vec4 {
		return mgl32.Vec4{a[0] - b[0], a[1] - b[1], a[2] - b[2], a[3] - b[3]}
	}

	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	planes := [6]mgl32.Vec4{
		add(r3, r0), // Left
		sub(r3, r0), // Right
		add(r3, r1), // Bottom
		sub(r3, r1), // Top
		r2,          // Near (Vulkan clip space: Z >= 0 is the near half-space)
		sub(r3, r2), // Far
	}
	for i, p := range planes {
		length := float32(math.Sqrt(float64(p[0]*p[0] + p[1]*p[1] + p[2]*p[2])))
		if length > 0 {
			planes[i] = mgl32.Vec4{p[0] / length, p[1] / length, p[2] / length, p[3] / length}
		}
	}
	return planes
}

// SphereInFrustum rejects a cluster if its bounding sphere is strictly
// outside any plane. A plane's signed distance to the
// center below -radius means the whole sphere is on the outside half
// space of that plane.
func SphereInFrustum(center mgl32.Vec3, radius float32, planes [6]mgl32.Vec4) bool {
	for _, p := range planes {
		dist := p[0]*center.X() + p[1]*center.Y() + p[2]*center.Z() + p[3]
		if dist < -radius {
			return false
		}
	}
	return true
}

// cutEpsilon floors the camera-to-cluster distance so the
// error-to-pixel conversion stays finite as the camera approaches the
// cluster.
const cutEpsilon = 1e-4

// ScreenFactor converts a world-space error into pixel error at unit
// distance: viewport_h / (2*tan(fov/2)).
func ScreenFactor(viewportHeight float32, fovYRadians float32) float32 {
	return viewportHeight / (2 * float32(math.Tan(float64(fovYRadians/2))))
}

// ErrorInPixels converts a world-space error to screen-space pixels at
// distance d from the camera.
func ErrorInPixels(worldError, screenFactor, distance float32) float32 {
	if distance < cutEpsilon {
		distance = cutEpsilon
	}
	return worldError * screenFactor / distance
}

// Distance is ||center-camera|| floored at cutEpsilon.
func Distance(center, camera mgl32.Vec3) float32 {
	d := center.Sub(camera).Len()
	if d < cutEpsilon {
		return cutEpsilon
	}
	return d
}

// ShouldCut implements the Nanite-style "unique cut" condition: a
// cluster is selected iff its own error is within threshold and
// either its parent's error is not (so a coarser level would be too
// imprecise) or it has no parent at all (root of its path). Exactly
// one cluster per root-to-leaf path satisfies this for any given view.
func ShouldCut(s Sphere, ePx, pePx, thresholdPx float32) bool {
	return ePx <= thresholdPx && (pePx > thresholdPx || s.IsLeaf())
}

// CutDecision bundles the full per-cluster cull math: frustum test,
// then (if inside) the cut condition. Occlusion is evaluated by the
// caller via HZBOccluded and ANDed in separately, since occlusion
// culling is an optional, toggleable stage.
func CutDecision(s Sphere, planes [6]mgl32.Vec4, camera mgl32.Vec3, screenFactor, thresholdPx float32) bool {
	if !SphereInFrustum(s.Center, s.Radius, planes) {
		return false
	}
	// Distance to the sphere's surface, not its center, floored at
	// cutEpsilon (same as the cull shader).
	d := Distance(s.Center, camera) - s.Radius
	if d < cutEpsilon {
		d = cutEpsilon
	}
	ePx := ErrorInPixels(s.LODError, screenFactor, d)
	pePx := ErrorInPixels(s.ParentError, screenFactor, d)
	return ShouldCut(s, ePx, pePx, thresholdPx)
}

// HZBOccluded projects the sphere's screen-space footprint and
// compares its nearest depth against the previous frame's Hi-Z
// pyramid. hiz is a single mip level (the caller selects the mip
// whose texel covers the projected radius); w,h are that mip's
// dimensions.
func HZBOccluded(center mgl32.Vec3, radius float32, viewProj mgl32.Mat4, hiz []float32, w, h uint32, eps float32) bool {
	corners := sphereAABBCorners(center, radius)

	nearestDist := float32(math.Inf(1))
	minU, minV := float32(1), float32(1)
	maxU, maxV := float32(0), float32(0)
	anyOnScreen := false

	for _, c := range corners {
		clip := viewProj.Mul4x1(c.Vec4(1.0))
		if clip.W() <= 0 {
			// Intersects the near plane: can't safely project,
			// so conservatively treat as visible.
			return false
		}
		ndc := clip.Vec3().Mul(1.0 / clip.W())
		u := ndc.X()*0.5 + 0.5
		v := ndc.Y()*0.5 + 0.5
		if u < minU {
			minU = u
		}
		if u > maxU {
			maxU = u
		}
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
		anyOnScreen = true
		if clip.W() < nearestDist {
			nearestDist = clip.W()
		}
	}
	if !anyOnScreen || w == 0 || h == 0 {
		return false
	}

	clampf := func(f float32) float32 {
		if f < 0 {
			return 0
		}
		if f > 1 {
			return 1
		}
		return f
	}
	minU, maxU = clampf(minU), clampf(maxU)
	minV, maxV = clampf(minV), clampf(maxV)

	x0 := int(minU * float32(w))
	x1 := int(maxU * float32(w))
	y0 := int(minV * float32(h))
	y1 := int(maxV * float32(h))
	if x1 >= int(w) {
		x1 = int(w) - 1
	}
	if y1 >= int(h) {
		y1 = int(h) - 1
	}

	maxHiZ := float32(0)
	found := false
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if x < 0 || y < 0 || x >= int(w) || y >= int(h) {
				continue
			}
			d := hiz[y*int(w)+x]
			if !found || d > maxHiZ {
				maxHiZ = d
				found = true
			}
		}
	}
	if !found {
		return false
	}
	return nearestDist > maxHiZ+eps
}

func sphereAABBCorners(center mgl32.Vec3, radius float32) [8]mgl32.Vec3 {
	min := center.Sub(mgl32.Vec3{radius, radius, radius})
	max := center.Add(mgl32.Vec3{radius, radius, radius})
	return [8]mgl32.Vec3{
		{min.X(), min.Y(), min.Z()}, {max.X(), min.Y(), min.Z()},
		{min.X(), max.Y(), min.Z()}, {max.X(), max.Y(), min.Z()},
		{min.X(), min.Y(), max.Z()}, {max.X(), min.Y(), max.Z()},
		{min.X(), max.Y(), max.Z()}, {max.X(), max.Y(), max.Z()},
	}
}

// ProjectedExtentPx is the hybrid HW/SW split metric: the projected
// screen-space diameter of the cluster's bounding sphere.
func ProjectedExtentPx(radius, screenFactor, clipW float32) float32 {
	if clipW <= 0 {
		return math.MaxFloat32
	}
	return 2 * radius * screenFactor / clipW
}

// SWThresholdPx is the default hybrid HW/SW split point, in pixels.
const SWThresholdPx = 16
