// Package llad implements the Adaptrix on-disk asset container: a
// fixed-layout, 16-byte-aligned blob with a magic header and offset
// table, written via temp-file-plus-rename so a crash never leaves a
// partial asset on disk, and read back as raw mmap'd bytes
// reinterpreted in place (no per-blob heap copy, no decode step) via
// github.com/edsrzf/mmap-go and unsafe.Slice.
package llad

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lume-adaptrix/adaptrix/adaptrix/mesh"
)

const (
	Magic   = "LLAD"
	Version = uint32(1)

	// alignment every blob offset (and the header itself) must
	// satisfy.
	alignment = 16

	numBlobs = 5 // vertices, meshlet_vertex_indices, primitive_indices, clusters, reserved

	// MaxClusters bounds the cluster table: the visibility ID packs
	// cluster+1 into a 22-bit field, so the largest representable
	// cluster index is (1<<22)-2 and the largest count is (1<<22)-1.
	// The writer refuses assets beyond this rather than letting the
	// rasterizers emit IDs that wrap into the background sentinel.
	MaxClusters = 1<<22 - 1

	// ClusterRecordSize is the on-disk size of one cluster, chosen a
	// multiple of 16 so an array of them inherits the blob's own
	// alignment automatically.
	ClusterRecordSize = 48
)

func align16(n int64) int64 {
	return (n + alignment - 1) &^ (alignment - 1)
}

// blobOffsetTableSize is the byte size of the five (offset,size)
// pairs following the fixed magic/version/header_size fields.
const blobOffsetTableSize = numBlobs * 16

// HeaderSize is fixed and computed once: magic(4) + version(4) +
// header_size(4) + 5×(offset u64, size u64), aligned up to 16.
var HeaderSize = align16(4 + 4 + 4 + blobOffsetTableSize)

// ClusterRecord is the fixed on-disk layout of one cluster:
// center+radius, offsets into the meshlet_vertex_indices and
// primitive_indices blobs, packed vertex/triangle counts, the two
// error fields, and a children range.
//
// The field order and types below are the wire layout itself, not a
// friendlier mirror of it: Counts stays a single uint32 (low byte
// vertex count, next bits triangle count) rather than separate
// uint8/uint16 fields, and Reserved stays an explicit uint32, so that
// every field is 4-byte aligned with no compiler-inserted padding and
// a []byte blob can be reinterpreted as []ClusterRecord in place via
// unsafe.Slice (see Asset.Clusters in reader.go) instead of decoded
// element by element.
type ClusterRecord struct {
	Center         mgl32.Vec3
	Radius         float32
	VertexOffset   uint32 // into meshlet_vertex_indices[]
	TriangleOffset uint32 // byte offset into primitive_indices[]
	Counts         uint32 // low byte: vertex count; remaining bits: triangle count
	LODError       float32
	ParentError    float32
	ChildBase      uint32
	ChildCount     uint32
	Reserved       uint32
}

func init() {
	if unsafe.Sizeof(ClusterRecord{}) != ClusterRecordSize {
		panic("llad.ClusterRecord must be exactly 48 bytes to match the LLAD wire layout")
	}
}

// VertexCount is this cluster's vertex count, unpacked from Counts.
func (r ClusterRecord) VertexCount() int { return int(r.Counts & 0xFF) }

// TriangleCount is this cluster's triangle count, unpacked from Counts.
func (r ClusterRecord) TriangleCount() int { return int(r.Counts >> 8) }

// PackCounts builds the Counts field from a cluster's vertex and
// triangle counts: vertex count in the low byte, triangle count in
// the bits above it.
func PackCounts(vertexCount, triangleCount int) uint32 {
	return uint32(vertexCount) | uint32(triangleCount)<<8
}

// PutClusterRecord encodes r into buf[0:ClusterRecordSize]: a
// fixed-size buffer filled field by field via binary.LittleEndian and
// math.Float32bits, not a generic struct encoder. Used only by the
// writer, which assembles the wire
// blob incrementally as each DAG node is visited; the reader never
// calls this, since it reinterprets the already-encoded bytes
// directly (see ClusterRecordFromBytes's doc comment).
func PutClusterRecord(buf []byte, r ClusterRecord) {
	_ = buf[ClusterRecordSize-1]

	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(r.Center.X()))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(r.Center.Y()))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(r.Center.Z()))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(r.Radius))

	binary.LittleEndian.PutUint32(buf[16:20], r.VertexOffset)
	binary.LittleEndian.PutUint32(buf[20:24], r.TriangleOffset)
	binary.LittleEndian.PutUint32(buf[24:28], r.Counts)

	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(r.LODError))
	binary.LittleEndian.PutUint32(buf[32:36], math.Float32bits(r.ParentError))

	binary.LittleEndian.PutUint32(buf[36:40], r.ChildBase)
	binary.LittleEndian.PutUint32(buf[40:44], r.ChildCount)

	// Reserved padding to keep the record a multiple of 16 bytes.
	binary.LittleEndian.PutUint32(buf[44:48], 0)
}

// ClusterRecordFromBytes is PutClusterRecord's inverse. Kept for
// symmetry and for callers that want a single decoded record
// off an arbitrary byte offset without going through Asset; the
// reader's bulk path does not use it (see the package doc comment).
func ClusterRecordFromBytes(buf []byte) ClusterRecord {
	_ = buf[ClusterRecordSize-1]

	return ClusterRecord{
		Center: mgl32.Vec3{
			math.Float32frombits(binary.LittleEndian.Uint32(buf[0:4])),
			math.Float32frombits(binary.LittleEndian.Uint32(buf[4:8])),
			math.Float32frombits(binary.LittleEndian.Uint32(buf[8:12])),
		},
		Radius:         math.Float32frombits(binary.LittleEndian.Uint32(buf[12:16])),
		VertexOffset:   binary.LittleEndian.Uint32(buf[16:20]),
		TriangleOffset: binary.LittleEndian.Uint32(buf[20:24]),
		Counts:         binary.LittleEndian.Uint32(buf[24:28]),
		LODError:       math.Float32frombits(binary.LittleEndian.Uint32(buf[28:32])),
		ParentError:    math.Float32frombits(binary.LittleEndian.Uint32(buf[32:36])),
		ChildBase:      binary.LittleEndian.Uint32(buf[36:40]),
		ChildCount:     binary.LittleEndian.Uint32(buf[40:44]),
	}
}

// PutVertex encodes a mesh.Vertex into its 32-byte wire layout.
func PutVertex(buf []byte, v mesh.Vertex) {
	_ = buf[mesh.VertexSize-1]
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(v.Pos[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(v.Pos[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(v.Pos[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(v.Normal[0]))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(v.Normal[1]))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(v.Normal[2]))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(v.UV[0]))
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(v.UV[1]))
}

// VertexFromBytes is PutVertex's inverse, decoding a single vertex off
// an arbitrary byte offset. The reader's bulk path does not use it
// (Asset.Vertices reinterprets the whole blob in place instead); kept
// for callers that only need one vertex at a known offset.
func VertexFromBytes(buf []byte) mesh.Vertex {
	_ = buf[mesh.VertexSize-1]
	return mesh.Vertex{
		Pos: [3]float32{
			math.Float32frombits(binary.LittleEndian.Uint32(buf[0:4])),
			math.Float32frombits(binary.LittleEndian.Uint32(buf[4:8])),
			math.Float32frombits(binary.LittleEndian.Uint32(buf[8:12])),
		},
		Normal: [3]float32{
			math.Float32frombits(binary.LittleEndian.Uint32(buf[12:16])),
			math.Float32frombits(binary.LittleEndian.Uint32(buf[16:20])),
			math.Float32frombits(binary.LittleEndian.Uint32(buf[20:24])),
		},
		UV: [2]float32{
			math.Float32frombits(binary.LittleEndian.Uint32(buf[24:28])),
			math.Float32frombits(binary.LittleEndian.Uint32(buf[28:32])),
		},
	}
}
