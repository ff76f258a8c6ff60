package llad

import (
	"encoding/binary"
	"os"
	"unsafe"

	"github.com/edsrzf/mmap-go"

	"github.com/lume-adaptrix/adaptrix/adaptrix/aerr"
	"github.com/lume-adaptrix/adaptrix/adaptrix/mesh"
)

// Asset is an opened LLAD file, mapped read-only for its whole
// lifetime. Unlike a ReadAt-based reader, mmap.MMap is a plain []byte
// over the mapped pages, so every blob accessor below reinterprets a
// subslice of that same backing array as its typed view via
// unsafe.Slice instead of copying it into a freshly decoded slice.
// Open never allocates anything blob-sized; the mapping itself is the
// storage.
type Asset struct {
	f       *os.File
	data    mmap.MMap
	offsets [numBlobs]int64
	sizes   [numBlobs]int64
}

// Open verifies the magic and version and parses the offset table,
// but performs no blob decoding: callers pull only the blobs they
// need via Vertices/MeshletVertexIndices/PrimitiveIndices/Clusters,
// each a zero-copy view over the mapping.
func Open(path string) (*Asset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}

	if int64(len(data)) < HeaderSize {
		data.Unmap()
		f.Close()
		return nil, aerr.New(aerr.KindTruncated, "LLAD file shorter than fixed header")
	}
	header := data[:HeaderSize]
	if string(header[0:4]) != Magic {
		data.Unmap()
		f.Close()
		return nil, aerr.New(aerr.KindBadMagic, "missing LLAD magic")
	}
	version := binary.LittleEndian.Uint32(header[4:8])
	if version != Version {
		data.Unmap()
		f.Close()
		return nil, aerr.New(aerr.KindUnsupported, "unsupported LLAD version")
	}

	a := &Asset{f: f, data: data}
	for i := 0; i < numBlobs; i++ {
		off := 12 + i*16
		offset := int64(binary.LittleEndian.Uint64(header[off : off+8]))
		size := int64(binary.LittleEndian.Uint64(header[off+8 : off+16]))
		if offset%alignment != 0 {
			data.Unmap()
			f.Close()
			return nil, aerr.New(aerr.KindMisaligned, "blob offset not 16-byte aligned")
		}
		if offset+size > int64(len(data)) {
			data.Unmap()
			f.Close()
			return nil, aerr.New(aerr.KindTruncated, "blob extends past end of file")
		}
		a.offsets[i], a.sizes[i] = offset, size
	}
	return a, nil
}

// Close unmaps the asset and closes the underlying file handle.
// Callers must ensure every GPU buffer view created from this asset's
// blobs is released first: Close invalidates the pages those views
// were uploaded from.
func (a *Asset) Close() error {
	if err := a.data.Unmap(); err != nil {
		a.f.Close()
		return err
	}
	return a.f.Close()
}

const (
	slotVertices             = 0
	slotMeshletVertexIndices = 1
	slotPrimitiveIndices     = 2
	slotClusters             = 3
)

// blobBytes returns the raw mapped bytes of a blob with no copy: a
// direct subslice of the mmap'd backing array.
func (a *Asset) blobBytes(slot int) []byte {
	if a.sizes[slot] == 0 {
		return nil
	}
	return a.data[a.offsets[slot] : a.offsets[slot]+a.sizes[slot]]
}

// Vertices reinterprets the vertex blob as []mesh.Vertex in place.
// mesh.Vertex's field order and size (asserted at init time) already
// match the wire layout exactly, so no per-element decode is needed.
func (a *Asset) Vertices() []mesh.Vertex {
	raw := a.blobBytes(slotVertices)
	if len(raw) == 0 {
		return nil
	}
	return unsafe.Slice((*mesh.Vertex)(unsafe.Pointer(&raw[0])), len(raw)/mesh.VertexSize)
}

// MeshletVertexIndices reinterprets the local->global vertex index map
// blob as []uint32 in place.
func (a *Asset) MeshletVertexIndices() []uint32 {
	raw := a.blobBytes(slotMeshletVertexIndices)
	if len(raw) == 0 {
		return nil
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(&raw[0])), len(raw)/4)
}

// PrimitiveIndices returns the raw packed local-index bytes (one byte
// per local vertex reference, 4 packed per storage-buffer word on the
// GPU side; exposed here as a flat byte slice since that is bit
// identical to the packed u32 layout). Already a direct mmap subslice.
func (a *Asset) PrimitiveIndices() []byte {
	return a.blobBytes(slotPrimitiveIndices)
}

// Clusters reinterprets the cluster table blob as []ClusterRecord in
// place. ClusterRecord's field order and size (asserted at init time)
// are the wire layout itself, so this is a pointer cast, not a decode.
func (a *Asset) Clusters() []ClusterRecord {
	raw := a.blobBytes(slotClusters)
	if len(raw) == 0 {
		return nil
	}
	return unsafe.Slice((*ClusterRecord)(unsafe.Pointer(&raw[0])), len(raw)/ClusterRecordSize)
}

// ClusterCount is the number of clusters in the asset.
func (a *Asset) ClusterCount() int {
	return len(a.blobBytes(slotClusters)) / ClusterRecordSize
}

// VerticesBytes, MeshletVertexIndicesBytes and ClustersBytes return
// the same mmap subslices as Vertices/MeshletVertexIndices/Clusters,
// but as raw bytes rather than a typed view: the exact storage-buffer
// payload the GPU resource binder uploads, with no intermediate
// Go-struct decode or re-encode in between.
func (a *Asset) VerticesBytes() []byte             { return a.blobBytes(slotVertices) }
func (a *Asset) MeshletVertexIndicesBytes() []byte { return a.blobBytes(slotMeshletVertexIndices) }
func (a *Asset) ClustersBytes() []byte             { return a.blobBytes(slotClusters) }
