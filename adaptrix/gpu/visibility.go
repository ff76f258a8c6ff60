package gpu

import (
	"math"

	"github.com/lume-adaptrix/adaptrix/adaptrix/llad"
)

// MaxVisibilityCluster is the largest cluster index the visibility
// ID's 22-bit field can carry: cluster+1 must fit in 22 bits, so the
// top index is llad.MaxClusters-1. The asset writer already refuses
// cluster tables beyond llad.MaxClusters, making larger inputs
// unreachable from any valid asset.
const MaxVisibilityCluster = llad.MaxClusters - 1

// EncodeVisibilityID packs (cluster, triangle) into the low 32 bits
// of a visibility entry: ID = ((cluster+1)<<10) | (triangle & 0x3FF).
// The +1 offset reserves 0 for background. Cluster indices past
// MaxVisibilityCluster saturate to it; letting cluster+1 overflow the
// field would wrap the whole entry to the background sentinel.
func EncodeVisibilityID(cluster, triangle uint32) uint32 {
	if cluster > MaxVisibilityCluster {
		cluster = MaxVisibilityCluster
	}
	return ((cluster + 1) << 10) | (triangle & 0x3FF)
}

// DecodeVisibilityID is EncodeVisibilityID's inverse. Callers must
// check id != 0 (background) before decoding.
func DecodeVisibilityID(id uint32) (cluster, triangle uint32) {
	return (id >> 10) - 1, id & 0x3FF
}

// EncodeHWVisibility packs a standard depth value and a visibility ID
// into the 64-bit entry written by the hardware rasterizer: high 32 =
// depth (bitcast f32->u32), low 32 = ID.
func EncodeHWVisibility(depth float32, id uint32) uint64 {
	return uint64(math.Float32bits(depth))<<32 | uint64(id)
}

// DecodeHWVisibility is EncodeHWVisibility's inverse.
func DecodeHWVisibility(entry uint64) (depth float32, id uint32) {
	return math.Float32frombits(uint32(entry >> 32)), uint32(entry)
}

// SW visibility packing: 20 bits of inverted NDC depth in the high
// part and 12 bits of packed (cluster_small+1, triangle) in the low
// part. Depth is inverted so that against a zeroed (background)
// buffer, atomicMax keeps the nearest fragment and background stays
// 0. Nothing in this module assumes a 16:16 split; the WGSL compute
// shader in adaptrix/shaders mirrors this exact layout.
const (
	swDepthBits   = 20
	swIDBits      = 12
	swDepthMax    = (1 << swDepthBits) - 1
	swClusterBits = 6
	swTriBits     = swIDBits - swClusterBits // 6
	// swClusterMax is one less than the field's raw (1<<swClusterBits)-1
	// span: clusterSmall+1 is what actually gets shifted into the
	// packed id, so the top value (which would make clusterSmall+1
	// overflow the field and corrupt the depth bits above it) is never
	// a valid input.
	swClusterMax = (1 << swClusterBits) - 2
	swTriMax     = (1 << swTriBits) - 1
)

// EncodeSWVisibility packs an NDC depth in [0,1] (0 = near, 1 = far,
// stored inverted so the nearest fragment carries the largest packed
// value and atomicMax against a zeroed buffer emulates a standard
// depth test) and a small per-workgroup (cluster,triangle) pair into a
// single u32 for the SW rasterizer. cluster/triangle here are local to
// the SW dispatch's own small-cluster slot, not the full asset-wide
// cluster index — that mapping is recovered by the resolver via the
// sw-visible-cluster list itself, not by decoding more bits than are
// available.
func EncodeSWVisibility(ndcDepth01 float32, clusterSmall, triangle uint32) uint32 {
	d := uint32(ndcDepth01 * swDepthMax)
	if d > swDepthMax {
		d = swDepthMax
	}
	c := clusterSmall & ((1 << swClusterBits) - 1)
	if c > swClusterMax {
		c = swClusterMax
	}
	t := triangle & swTriMax
	packedID := ((c + 1) << swTriBits) | t
	return ((swDepthMax - d) << swIDBits) | packedID
}

// DecodeSWVisibility is EncodeSWVisibility's inverse. id == 0 means
// background.
func DecodeSWVisibility(entry uint32) (ndcDepth01 float32, clusterSmall, triangle uint32, background bool) {
	id := entry & ((1 << swIDBits) - 1)
	if id == 0 {
		return 0, 0, 0, true
	}
	d := swDepthMax - (entry >> swIDBits)
	c := (id >> swTriBits) - 1
	t := id & swTriMax
	return float32(d) / swDepthMax, c, t, false
}
