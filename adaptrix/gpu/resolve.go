package gpu

import "github.com/go-gl/mathgl/mgl32"

// DecodeLocalIndex reads the i-th packed 1-byte local vertex index out
// of a primitive_indices blob: word = byteOffset/4, shift =
// (byteOffset%4)*8, mask 0xFF. primIndices here is the raw byte blob
// (already 4-per-word packed on disk and on the GPU side, but
// addressable byte-wise on the CPU without re-deriving the word math)
// and byteOffset is a byte offset, not a word index.
func DecodeLocalIndex(primIndices []byte, byteOffset uint32) byte {
	word := byteOffset / 4
	shift := (byteOffset % 4) * 8
	// primIndices is stored one byte per local index; reading it as
	// packed u32 words and shifting out the right byte exercises the
	// exact bit arithmetic the GPU-side decode uses, even though a Go
	// slice lets us just index byteOffset directly. Both must agree.
	wordVal := uint32(primIndices[word*4]) |
		uint32(primIndices[word*4+1])<<8 |
		uint32(primIndices[word*4+2])<<16 |
		uint32(primIndices[word*4+3])<<24
	return byte((wordVal >> shift) & 0xFF)
}

// FaceNormal computes the unnormalized cross product of a triangle's
// two edge vectors: n = cross(p1-p0, p2-p0).
func FaceNormal(p0, p1, p2 mgl32.Vec3) mgl32.Vec3 {
	return p1.Sub(p0).Cross(p2.Sub(p0))
}

// degenerateNormalThresholdSq is the robust-normal fallback rule: if
// |n|^2 falls below this, the triangle is treated as degenerate. This
// is what prevents NaN "random holes" on sub-pixel triangles whose
// vertices are nearly collinear once projected.
const degenerateNormalThresholdSq = 1e-12

var fallbackNormal = mgl32.Vec3{0, 1, 0}

// ResolvedNormal returns the normalized face normal of the triangle,
// or the fallback (0,1,0) if the raw cross product is too close to
// zero to normalize safely.
func ResolvedNormal(p0, p1, p2 mgl32.Vec3) mgl32.Vec3 {
	n := FaceNormal(p0, p1, p2)
	lenSq := n.X()*n.X() + n.Y()*n.Y() + n.Z()*n.Z()
	if lenSq < degenerateNormalThresholdSq {
		return fallbackNormal
	}
	return n.Normalize()
}

// HashClusterColor derives a debug shading color from a cluster id: a
// cheap integer hash turned into a stable RGB triple so adjacent
// clusters are visually distinguishable without a color table.
func HashClusterColor(cluster uint32) mgl32.Vec3 {
	h := cluster*2654435761 + 0x9E3779B9
	h ^= h >> 13
	h *= 0x85EBCA6B
	h ^= h >> 16
	r := float32((h>>0)&0xFF) / 255
	g := float32((h>>8)&0xFF) / 255
	b := float32((h>>16)&0xFF) / 255
	return mgl32.Vec3{r, g, b}
}

// Lambert applies a simple N.L term against a fixed debug light
// direction, clamped to zero. A production variant would instead
// reconstruct barycentrics from inv_view_proj and interpolate real
// material attributes; that path isn't implemented here.
func Lambert(normal mgl32.Vec3, lightDir mgl32.Vec3, albedo mgl32.Vec3) mgl32.Vec3 {
	ndotl := normal.Dot(lightDir.Normalize())
	if ndotl < 0 {
		ndotl = 0
	}
	return albedo.Mul(ndotl)
}
