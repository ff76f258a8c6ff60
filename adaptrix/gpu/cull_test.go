package gpu

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestExtractFrustumVulkanSphere(t *testing.T) {
	proj := mgl32.Perspective(mgl32.DegToRad(90), 1.0, 1.0, 100.0)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0})
	vp := proj.Mul4(view)
	planes := ExtractFrustumVulkan(vp)

	tests := []struct {
		name     string
		center   mgl32.Vec3
		radius   float32
		expected bool
	}{
		{"inside", mgl32.Vec3{0, 0, -10}, 1, true},
		{"outside left", mgl32.Vec3{-20, 0, -10}, 1, false},
		{"outside behind camera", mgl32.Vec3{0, 0, 5}, 1, false},
		// At z=-10 with a 90deg FOV, the left frustum boundary sits at
		// x=-10 (tan(45)=1); a sphere straddling that boundary is still
		// partially visible and must not be rejected.
		{"intersecting left plane", mgl32.Vec3{-10, 0, -10}, 6, true},
	}
	for _, tc := range tests {
		got := SphereInFrustum(tc.center, tc.radius, planes)
		if got != tc.expected {
			t.Errorf("%s: SphereInFrustum() = %v, want %v", tc.name, got, tc.expected)
		}
	}
}

// TestUniqueCut verifies that for a strictly increasing chain of
// errors along a root-to-leaf path, exactly one cluster in the chain
// satisfies ShouldCut at any given threshold.
func TestUniqueCut(t *testing.T) {
	const threshold = float32(5.0)
	// A root-to-leaf path of 5 clusters, finest-detail first (index 0)
	// up to the coarsest root (last index, which has no parent above
	// it and so carries ParentErrorInfinite).
	levelErrors := []float32{1, 3, 9, 20, 40}
	cuts := 0
	for i, e := range levelErrors {
		parentErr := ParentErrorInfinite
		if i+1 < len(levelErrors) {
			parentErr = levelErrors[i+1]
		}
		s := Sphere{LODError: e, ParentError: parentErr}
		if ShouldCut(s, e, parentErr, threshold) {
			cuts++
		}
	}
	if cuts != 1 {
		t.Errorf("expected exactly 1 cut across the path, got %d", cuts)
	}
}

func TestShouldCutRootWithNoParentNeedsNoParentComparison(t *testing.T) {
	s := Sphere{LODError: 2, ParentError: ParentErrorInfinite}
	if !ShouldCut(s, 2, ParentErrorInfinite, 5) {
		t.Error("a root within threshold must cut even though it has no parent to compare against")
	}
}

func TestShouldCutRejectsWhenParentAlsoFine(t *testing.T) {
	s := Sphere{LODError: 2, ParentError: 3}
	if ShouldCut(s, 2, 3, 5) {
		t.Error("a cluster whose parent is also within threshold should not be the cut point")
	}
}

func TestHZBOccludedMatchesReferenceBehavior(t *testing.T) {
	w, h := uint32(4), uint32(4)
	hiz := make([]float32, w*h)
	for i := range hiz {
		hiz[i] = 10.0
	}

	proj := mgl32.Perspective(mgl32.DegToRad(90), 1.0, 1.0, 100.0)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0})
	vp := proj.Mul4(view)

	if HZBOccluded(mgl32.Vec3{0, 0, -5}, 1, vp, hiz, w, h, 0) {
		t.Error("close sphere (dist 5) should not be occluded by a wall at dist 10")
	}
	if !HZBOccluded(mgl32.Vec3{0, 0, -20}, 1, vp, hiz, w, h, 0) {
		t.Error("far sphere (dist 20) must be occluded by a wall at dist 10")
	}

	hiz[2*4+2] = 100.0
	hiz[2*4+3] = 100.0
	hiz[3*4+2] = 100.0
	hiz[3*4+3] = 100.0
	if HZBOccluded(mgl32.Vec3{0, 0, -20}, 1, vp, hiz, w, h, 0) {
		t.Error("far sphere should be visible through the hole in the Hi-Z pyramid")
	}
}

func TestErrorInPixelsFloorsDistance(t *testing.T) {
	sf := ScreenFactor(1080, mgl32.DegToRad(60))
	// At essentially zero distance, the error must not blow up to Inf/NaN.
	e := ErrorInPixels(1.0, sf, 0)
	if e <= 0 {
		t.Fatalf("ErrorInPixels at zero distance should floor to a large-but-finite value, got %v", e)
	}
}
