package llad

import (
	"encoding/binary"
	"os"
	"path/filepath"

	"github.com/lume-adaptrix/adaptrix/adaptrix/aerr"
	"github.com/lume-adaptrix/adaptrix/adaptrix/hierarchy"
	"github.com/lume-adaptrix/adaptrix/adaptrix/mesh"
)

type blobSlot struct {
	offset int64
	data   []byte
}

// Write serializes dag as an LLAD asset at path. It never leaves a
// partial file behind: the asset is assembled in a temp file in the
// same directory and only renamed into place once fully written and
// synced.
func Write(path string, dag *hierarchy.DAG) error {
	if len(dag.Nodes) > MaxClusters {
		return aerr.New(aerr.KindOversize, "cluster count exceeds the visibility ID's 22-bit cluster field")
	}
	vertices, meshletVertexIndices, primitiveIndices, clusters := buildBlobs(dag)

	slots := make([]blobSlot, numBlobs)
	cursor := HeaderSize
	for i, data := range [][]byte{vertices, meshletVertexIndices, primitiveIndices, clusters, nil} {
		slots[i] = blobSlot{offset: cursor, data: data}
		cursor = align16(cursor + int64(len(data)))
	}

	header := make([]byte, HeaderSize)
	copy(header[0:4], Magic)
	binary.LittleEndian.PutUint32(header[4:8], Version)
	binary.LittleEndian.PutUint32(header[8:12], uint32(HeaderSize))
	for i, s := range slots {
		off := 12 + i*16
		binary.LittleEndian.PutUint64(header[off:off+8], uint64(s.offset))
		binary.LittleEndian.PutUint64(header[off+8:off+16], uint64(len(s.data)))
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".llad-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() {
		// No-op once the rename below succeeds; os.Remove on a
		// renamed-away path is a harmless ENOENT.
		os.Remove(tmpPath)
	}()

	if err := writeAligned(tmp, header, slots); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func writeAligned(w *os.File, header []byte, slots []blobSlot) error {
	if _, err := w.Write(header); err != nil {
		return err
	}
	pos := int64(len(header))
	for _, s := range slots {
		if pad := s.offset - pos; pad > 0 {
			if _, err := w.Write(make([]byte, pad)); err != nil {
				return err
			}
			pos += pad
		}
		if len(s.data) == 0 {
			continue
		}
		if _, err := w.Write(s.data); err != nil {
			return err
		}
		pos += int64(len(s.data))
	}
	return nil
}

// buildBlobs flattens the DAG's nodes into the four wire blobs.
// Vertex data is not deduplicated across clusters: each cluster's
// vertices are appended in order and meshlet_vertex_indices records
// the identity mapping into that same run. This keeps the writer
// linear and allocation-light; a future build could share vertices
// between clusters at a group's welded seam, but nothing in the
// runtime binding contract requires it.
func buildBlobs(dag *hierarchy.DAG) (vertices, meshletVertexIndices, primitiveIndices, clusters []byte) {
	totalVerts := 0
	totalTriBytes := 0
	for i := range dag.Nodes {
		totalVerts += len(dag.Nodes[i].Vertices)
		totalTriBytes += len(dag.Nodes[i].Triangles)
	}

	vertices = make([]byte, totalVerts*mesh.VertexSize)
	meshletVertexIndices = make([]byte, totalVerts*4)
	primitiveIndices = make([]byte, totalTriBytes)
	clusters = make([]byte, len(dag.Nodes)*ClusterRecordSize)

	vertCursor := 0
	triCursor := 0
	for i := range dag.Nodes {
		n := &dag.Nodes[i]
		vertexOffset := uint32(vertCursor)
		triangleOffset := uint32(triCursor)

		for _, v := range n.Vertices {
			PutVertex(vertices[vertCursor*mesh.VertexSize:], v)
			binary.LittleEndian.PutUint32(meshletVertexIndices[vertCursor*4:], uint32(vertCursor))
			vertCursor++
		}
		copy(primitiveIndices[triCursor:], n.Triangles)
		triCursor += len(n.Triangles)

		PutClusterRecord(clusters[i*ClusterRecordSize:], ClusterRecord{
			Center:         n.Center,
			Radius:         n.Radius,
			VertexOffset:   vertexOffset,
			TriangleOffset: triangleOffset,
			Counts:         PackCounts(n.VertexCount(), n.TriangleCount()),
			LODError:       n.LODError,
			ParentError:    n.ParentError,
			ChildBase:      n.ChildBase,
			ChildCount:     n.ChildCount,
		})
	}

	return vertices, meshletVertexIndices, primitiveIndices, clusters
}
