package gpu

import "testing"

// TestVisibilityIDRoundTrip verifies every (cluster, triangle) pair
// the wire format can represent survives an encode/decode round trip
// exactly.
func TestVisibilityIDRoundTrip(t *testing.T) {
	cases := []struct{ cluster, triangle uint32 }{
		{0, 0},
		{0, 1023},
		{1, 0},
		{MaxVisibilityCluster, 1023},
		{12345, 255},
	}
	for _, c := range cases {
		id := EncodeVisibilityID(c.cluster, c.triangle)
		gotCluster, gotTriangle := DecodeVisibilityID(id)
		if gotCluster != c.cluster || gotTriangle != c.triangle {
			t.Errorf("EncodeVisibilityID(%d,%d) round trip = (%d,%d)", c.cluster, c.triangle, gotCluster, gotTriangle)
		}
	}
}

func TestVisibilityIDZeroIsReservedForBackground(t *testing.T) {
	id := EncodeVisibilityID(0, 0)
	if id == 0 {
		t.Fatal("EncodeVisibilityID(0,0) must not collide with the background sentinel 0")
	}
}

// TestVisibilityIDSaturatesAtFieldWidth pins the behavior at and past
// the 22-bit cluster field's boundary: the top representable index
// round-trips, and anything beyond it saturates instead of wrapping
// the whole entry to the background sentinel.
func TestVisibilityIDSaturatesAtFieldWidth(t *testing.T) {
	top := EncodeVisibilityID(MaxVisibilityCluster, 7)
	if c, tri := DecodeVisibilityID(top); c != MaxVisibilityCluster || tri != 7 {
		t.Fatalf("top cluster index must round-trip, got (%d,%d)", c, tri)
	}

	for _, over := range []uint32{MaxVisibilityCluster + 1, 1 << 23, ^uint32(0)} {
		id := EncodeVisibilityID(over, 7)
		if id == 0 {
			t.Fatalf("EncodeVisibilityID(%d,7) wrapped to the background sentinel", over)
		}
		if id != top {
			t.Errorf("EncodeVisibilityID(%d,7) = %d, want saturation to %d", over, id, top)
		}
	}
}

func TestHWVisibilityRoundTrip(t *testing.T) {
	depths := []float32{0, 0.25, 0.5, 0.999999, 1.0}
	ids := []uint32{0, 1, EncodeVisibilityID(500, 10)}
	for _, d := range depths {
		for _, id := range ids {
			entry := EncodeHWVisibility(d, id)
			gotDepth, gotID := DecodeHWVisibility(entry)
			if gotDepth != d || gotID != id {
				t.Errorf("EncodeHWVisibility(%v,%d) round trip = (%v,%d)", d, id, gotDepth, gotID)
			}
		}
	}
}

// TestSWVisibilityDepthOrdering verifies the depth-packing direction:
// a nearer fragment (smaller NDC depth) must pack to a strictly larger
// u32 than a farther one, so atomicMax against a zeroed background
// buffer keeps the nearest fragment.
func TestSWVisibilityDepthOrdering(t *testing.T) {
	near := EncodeSWVisibility(0.1, 0, 0)
	far := EncodeSWVisibility(0.9, 0, 0)
	if near <= far {
		t.Fatalf("nearer depth 0.1 must pack larger than farther depth 0.9: got near=%d far=%d", near, far)
	}
	if near == 0 || far == 0 {
		t.Fatal("no encoded entry may collide with the background value 0")
	}
}

func TestSWVisibilityRoundTrip(t *testing.T) {
	cases := []struct {
		depth        float32
		clusterSmall uint32
		triangle     uint32
	}{
		{0, 0, 0},
		{1, 62, 63}, // 62 is the max cluster slot the 6-bit field can hold once +1 is reserved
		{0.5, 31, 17},
	}
	for _, c := range cases {
		entry := EncodeSWVisibility(c.depth, c.clusterSmall, c.triangle)
		gotDepth, gotCluster, gotTriangle, background := DecodeSWVisibility(entry)
		if background {
			t.Fatalf("encoded entry for cluster %d decoded as background", c.clusterSmall)
		}
		if gotCluster != c.clusterSmall || gotTriangle != c.triangle {
			t.Errorf("EncodeSWVisibility(%v,%d,%d) round trip id = (%d,%d)", c.depth, c.clusterSmall, c.triangle, gotCluster, gotTriangle)
		}
		// Depth is quantized to 20 bits; allow the resulting rounding error.
		const depthEps = 1.0 / (1 << 20)
		diff := gotDepth - c.depth
		if diff < 0 {
			diff = -diff
		}
		if diff > depthEps*2 {
			t.Errorf("depth %v round-tripped to %v, outside quantization tolerance", c.depth, gotDepth)
		}
	}
}

func TestSWVisibilityBackgroundIsZero(t *testing.T) {
	_, _, _, background := DecodeSWVisibility(0)
	if !background {
		t.Error("entry 0 must decode as background")
	}
}
