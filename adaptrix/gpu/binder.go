package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/lume-adaptrix/adaptrix/adaptrix/aerr"
	"github.com/lume-adaptrix/adaptrix/adaptrix/llad"
)

// SafeBufferSizeLimit caps a single storage-buffer allocation so a
// pathological asset can't silently try to allocate something a real
// device will reject.
const SafeBufferSizeLimit = 1 << 30

// Binder owns the group-0 (static, per-asset) GPU resources: the four
// read-only asset buffers plus the visible-cluster/indirect-args
// buffers the culler writes into. It borrows device/queue handles
// rather than owning them; the culler and rasterizer passes in turn
// borrow the buffers from the binder.
type Binder struct {
	Device *wgpu.Device
	Queue  *wgpu.Queue

	ClustersBuf             *wgpu.Buffer
	VerticesBuf             *wgpu.Buffer
	MeshletVertexIndicesBuf *wgpu.Buffer
	PrimitiveIndicesBuf     *wgpu.Buffer

	HWVisibleClustersBuf *wgpu.Buffer
	HWDrawArgsBuf        *wgpu.Buffer
	SWDispatchArgsBuf    *wgpu.Buffer
	SWVisibleClustersBuf *wgpu.Buffer

	ClusterCount int

	// The same group-0 buffer set is exposed through two layouts: the
	// compute passes (cull, SW raster) need the visible-cluster lists
	// and indirect args read_write, while the render passes (HW
	// raster, resolve) may only see read-only storage — vertex-stage
	// bindings cannot be read_write at all.
	Group0ComputeLayout *wgpu.BindGroupLayout
	Group0RenderLayout  *wgpu.BindGroupLayout
	group0Compute       *wgpu.BindGroup
	group0Render        *wgpu.BindGroup
}

// NewBinder uploads every blob of an opened LLAD asset as a storage
// buffer and sizes the visible-cluster list buffers to
// asset.ClusterCount capacity, so the culler's atomic appends can
// never outgrow them. Every upload takes the asset's raw mmap'd bytes
// directly (VerticesBytes/MeshletVertexIndicesBytes/PrimitiveIndices/
// ClustersBytes); the blobs are already the storage-buffer payload,
// so there is no decode-then-reencode step here, only the one copy
// CreateBufferInit itself makes into device-visible memory.
func NewBinder(device *wgpu.Device, asset *llad.Asset) (*Binder, error) {
	b := &Binder{Device: device, Queue: device.GetQueue()}

	var err error
	if b.VerticesBuf, err = createStorageBuffer(device, "adaptrix.vertices", asset.VerticesBytes()); err != nil {
		return nil, err
	}
	if b.MeshletVertexIndicesBuf, err = createStorageBuffer(device, "adaptrix.meshlet_vertex_indices", asset.MeshletVertexIndicesBytes()); err != nil {
		return nil, err
	}
	if b.PrimitiveIndicesBuf, err = createStorageBuffer(device, "adaptrix.primitive_indices", asset.PrimitiveIndices()); err != nil {
		return nil, err
	}
	if b.ClustersBuf, err = createStorageBuffer(device, "adaptrix.clusters", asset.ClustersBytes()); err != nil {
		return nil, err
	}

	b.ClusterCount = asset.ClusterCount()
	capacity := uint64(b.ClusterCount)
	if capacity == 0 {
		capacity = 1
	}

	if b.HWVisibleClustersBuf, err = createStorageBuffer(device, "adaptrix.hw_visible_clusters", make([]byte, capacity*4)); err != nil {
		return nil, err
	}
	if b.SWVisibleClustersBuf, err = createStorageBuffer(device, "adaptrix.sw_visible_clusters", make([]byte, capacity*4)); err != nil {
		return nil, err
	}
	if b.HWDrawArgsBuf, err = createIndirectBuffer(device, "adaptrix.hw_draw_args", IndirectDrawArgs{
		VertexCount: 3 * 256,
	}.ToBytes()); err != nil {
		return nil, err
	}
	if b.SWDispatchArgsBuf, err = createIndirectBuffer(device, "adaptrix.sw_dispatch_args", IndirectDispatchArgs{
		Y: 1, Z: 1,
	}.ToBytes()); err != nil {
		return nil, err
	}

	if b.Group0ComputeLayout, err = device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   "adaptrix.group0.compute",
		Entries: group0ComputeEntries(),
	}); err != nil {
		return nil, err
	}
	if b.Group0RenderLayout, err = device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   "adaptrix.group0.render",
		Entries: group0RenderEntries(),
	}); err != nil {
		return nil, err
	}

	entries := []wgpu.BindGroupEntry{
		{Binding: 0, Buffer: b.ClustersBuf, Size: wgpu.WholeSize},
		{Binding: 1, Buffer: b.VerticesBuf, Size: wgpu.WholeSize},
		{Binding: 2, Buffer: b.MeshletVertexIndicesBuf, Size: wgpu.WholeSize},
		{Binding: 3, Buffer: b.PrimitiveIndicesBuf, Size: wgpu.WholeSize},
		{Binding: 4, Buffer: b.HWVisibleClustersBuf, Size: wgpu.WholeSize},
		{Binding: 5, Buffer: b.HWDrawArgsBuf, Size: wgpu.WholeSize},
		{Binding: 6, Buffer: b.SWDispatchArgsBuf, Size: wgpu.WholeSize},
		{Binding: 7, Buffer: b.SWVisibleClustersBuf, Size: wgpu.WholeSize},
	}
	if b.group0Compute, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   "adaptrix.group0.compute",
		Layout:  b.Group0ComputeLayout,
		Entries: entries,
	}); err != nil {
		return nil, err
	}
	if b.group0Render, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "adaptrix.group0.render",
		Layout: b.Group0RenderLayout,
		Entries: []wgpu.BindGroupEntry{
			entries[0], entries[1], entries[2], entries[3], entries[4], entries[7],
		},
	}); err != nil {
		return nil, err
	}

	return b, nil
}

// Group0Compute returns the per-asset bind group the cull and SW
// raster passes use (visible lists and indirect args read_write).
func (b *Binder) Group0Compute() *wgpu.BindGroup { return b.group0Compute }

// Group0Render returns the read-only view of the same buffers for the
// HW raster and resolve passes.
func (b *Binder) Group0Render() *wgpu.BindGroup { return b.group0Render }

// ResetFrame clears the per-frame write targets at the start of every
// frame: instance_count/dispatch-x go back to zero, the
// vertex_count/y/z constants are re-written since a full buffer clear
// would erase them too.
func (b *Binder) ResetFrame() {
	b.Queue.WriteBuffer(b.HWDrawArgsBuf, 0, IndirectDrawArgs{VertexCount: 3 * 256}.ToBytes())
	b.Queue.WriteBuffer(b.SWDispatchArgsBuf, 0, IndirectDispatchArgs{Y: 1, Z: 1}.ToBytes())
}

// Release frees every GPU resource the binder owns. Called before the
// mmap handle backing the asset is released, at shutdown or
// device-lost recovery.
func (b *Binder) Release() {
	for _, buf := range []*wgpu.Buffer{
		b.ClustersBuf, b.VerticesBuf, b.MeshletVertexIndicesBuf, b.PrimitiveIndicesBuf,
		b.HWVisibleClustersBuf, b.HWDrawArgsBuf, b.SWDispatchArgsBuf, b.SWVisibleClustersBuf,
	} {
		if buf != nil {
			buf.Release()
		}
	}
	if b.Group0ComputeLayout != nil {
		b.Group0ComputeLayout.Release()
	}
	if b.Group0RenderLayout != nil {
		b.Group0RenderLayout.Release()
	}
}

func storageEntry(binding uint32, stage wgpu.ShaderStage, readOnly bool) wgpu.BindGroupLayoutEntry {
	t := wgpu.BufferBindingTypeStorage
	if readOnly {
		t = wgpu.BufferBindingTypeReadOnlyStorage
	}
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: stage,
		Buffer:     wgpu.BufferBindingLayout{Type: t},
	}
}

func group0ComputeEntries() []wgpu.BindGroupLayoutEntry {
	c := wgpu.ShaderStageCompute
	return []wgpu.BindGroupLayoutEntry{
		storageEntry(0, c, true),
		storageEntry(1, c, true),
		storageEntry(2, c, true),
		storageEntry(3, c, true),
		storageEntry(4, c, false),
		storageEntry(5, c, false),
		storageEntry(6, c, false),
		storageEntry(7, c, false),
	}
}

func group0RenderEntries() []wgpu.BindGroupLayoutEntry {
	vf := wgpu.ShaderStageVertex | wgpu.ShaderStageFragment
	return []wgpu.BindGroupLayoutEntry{
		storageEntry(0, vf, true),
		storageEntry(1, vf, true),
		storageEntry(2, vf, true),
		storageEntry(3, vf, true),
		storageEntry(4, wgpu.ShaderStageVertex, true),
		storageEntry(7, wgpu.ShaderStageFragment, true),
	}
}

func createStorageBuffer(device *wgpu.Device, label string, data []byte) (*wgpu.Buffer, error) {
	if len(data) == 0 {
		data = make([]byte, 4)
	}
	if len(data) > SafeBufferSizeLimit {
		return nil, aerr.New(aerr.KindOversize, "storage buffer "+label+" exceeds device size limit")
	}
	return device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label,
		Contents: data,
		Usage:    wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst | wgpu.BufferUsageCopySrc,
	})
}

func createIndirectBuffer(device *wgpu.Device, label string, data []byte) (*wgpu.Buffer, error) {
	return device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label,
		Contents: data,
		Usage:    wgpu.BufferUsageStorage | wgpu.BufferUsageIndirect | wgpu.BufferUsageCopyDst | wgpu.BufferUsageCopySrc,
	})
}
