package gpu

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestDecodeLocalIndexAllOffsetsInWord(t *testing.T) {
	// One packed u32 word: bytes 3,7,2,9 at byte offsets 0..3.
	primIndices := []byte{3, 7, 2, 9}
	want := []byte{3, 7, 2, 9}
	for i, w := range want {
		got := DecodeLocalIndex(primIndices, uint32(i))
		if got != w {
			t.Errorf("DecodeLocalIndex(offset=%d) = %d, want %d", i, got, w)
		}
	}
}

func TestFaceNormalWindingCCW(t *testing.T) {
	// A triangle in the XY plane wound counter-clockwise as seen from
	// +Z must produce a normal pointing toward +Z.
	p0 := mgl32.Vec3{0, 0, 0}
	p1 := mgl32.Vec3{1, 0, 0}
	p2 := mgl32.Vec3{0, 1, 0}
	n := FaceNormal(p0, p1, p2)
	if n.Z() <= 0 {
		t.Errorf("expected a +Z-facing normal for a CCW XY triangle, got %v", n)
	}
}

// TestResolvedNormalDegenerateFallback covers the sub-pixel/degenerate
// triangle case: a triangle whose vertices are (numerically) collinear
// must resolve to the fixed fallback normal rather than NaN.
func TestResolvedNormalDegenerateFallback(t *testing.T) {
	p0 := mgl32.Vec3{0, 0, 0}
	p1 := mgl32.Vec3{1e-7, 0, 0}
	p2 := mgl32.Vec3{2e-7, 0, 0}
	n := ResolvedNormal(p0, p1, p2)
	if n != fallbackNormal {
		t.Errorf("degenerate triangle should resolve to the fallback normal %v, got %v", fallbackNormal, n)
	}
}

func TestResolvedNormalHealthyTriangle(t *testing.T) {
	p0 := mgl32.Vec3{0, 0, 0}
	p1 := mgl32.Vec3{1, 0, 0}
	p2 := mgl32.Vec3{0, 1, 0}
	n := ResolvedNormal(p0, p1, p2)
	if len := n.Len(); len < 0.99 || len > 1.01 {
		t.Errorf("expected a unit normal, got length %v", len)
	}
}

func TestHashClusterColorDeterministicAndDistinct(t *testing.T) {
	a := HashClusterColor(1)
	b := HashClusterColor(1)
	if a != b {
		t.Error("HashClusterColor must be a pure function of its input")
	}
	c := HashClusterColor(2)
	if a == c {
		t.Error("two distinct cluster ids should not hash to the identical color in practice")
	}
}

func TestLambertClampsNegative(t *testing.T) {
	normal := mgl32.Vec3{0, 0, 1}
	lightDir := mgl32.Vec3{0, 0, -1} // pointing away from the normal
	albedo := mgl32.Vec3{1, 1, 1}
	got := Lambert(normal, lightDir, albedo)
	if got != (mgl32.Vec3{0, 0, 0}) {
		t.Errorf("Lambert with light behind the surface should clamp to zero, got %v", got)
	}
}
