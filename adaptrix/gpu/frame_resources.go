package gpu

import (
	"encoding/binary"
	"math"

	"github.com/cogentcore/webgpu/wgpu"
)

// FrameResources is the per-frame group-1 binding set: the view
// uniform, the HW visibility image (RG32Uint), and the SW id buffer.
// Unlike Binder's group 0, these are sized to one viewport and are
// explicitly reset every frame; nothing in this package resizes them
// when the viewport changes.
type FrameResources struct {
	Device *wgpu.Device
	Queue  *wgpu.Queue

	Width, Height uint32

	ViewUniformBuf  *wgpu.Buffer
	VisibilityImage *wgpu.Texture
	VisibilityView  *wgpu.TextureView
	DepthImage      *wgpu.Texture
	DepthView       *wgpu.TextureView
	SWIDBuf         *wgpu.Buffer

	// HZBImage holds the previous-frame depth pyramid mip the culler
	// samples for occlusion. Until a pyramid builder feeds it, it stays
	// a 1x1 far-plane texel, which occludes nothing.
	HZBImage *wgpu.Texture
	HZBView  *wgpu.TextureView

	Group1Layout *wgpu.BindGroupLayout
	group1       *wgpu.BindGroup
}

// NewFrameResources allocates the visibility image, SW id buffer, and
// view uniform buffer for a viewport of the given size.
func NewFrameResources(device *wgpu.Device, width, height uint32) (*FrameResources, error) {
	f := &FrameResources{Device: device, Queue: device.GetQueue(), Width: width, Height: height}

	var err error
	if f.ViewUniformBuf, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "adaptrix.view_uniform",
		Size:  ViewUniformSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	}); err != nil {
		return nil, err
	}

	f.VisibilityImage, err = device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "adaptrix.visibility",
		Size:          wgpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRG32Uint,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		return nil, err
	}
	if f.VisibilityView, err = f.VisibilityImage.CreateView(nil); err != nil {
		return nil, err
	}

	f.DepthImage, err = device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "adaptrix.depth",
		Size:          wgpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth32Float,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return nil, err
	}
	if f.DepthView, err = f.DepthImage.CreateView(nil); err != nil {
		return nil, err
	}

	if f.SWIDBuf, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "adaptrix.sw_id_buffer",
		Size:  uint64(width) * uint64(height) * 4,
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
	}); err != nil {
		return nil, err
	}

	f.HZBImage, err = device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "adaptrix.hzb",
		Size:          wgpu.Extent3D{Width: 1, Height: 1, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatR32Float,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	if f.HZBView, err = f.HZBImage.CreateView(nil); err != nil {
		return nil, err
	}
	farTexel := make([]byte, 4)
	binary.LittleEndian.PutUint32(farTexel, math.Float32bits(math.MaxFloat32))
	f.Queue.WriteTexture(
		f.HZBImage.AsImageCopy(),
		farTexel,
		&wgpu.TextureDataLayout{BytesPerRow: 4, RowsPerImage: 1},
		&wgpu.Extent3D{Width: 1, Height: 1, DepthOrArrayLayers: 1},
	)

	if f.Group1Layout, err = device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "adaptrix.group1",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageCompute | wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform, MinBindingSize: ViewUniformSize},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Texture:    wgpu.TextureBindingLayout{SampleType: wgpu.TextureSampleTypeUint, ViewDimension: wgpu.TextureViewDimension2D},
			},
			{
				Binding:    2,
				Visibility: wgpu.ShaderStageCompute | wgpu.ShaderStageFragment,
				Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeStorage},
			},
			{
				Binding:    3,
				Visibility: wgpu.ShaderStageCompute,
				Texture:    wgpu.TextureBindingLayout{SampleType: wgpu.TextureSampleTypeUnfilterableFloat, ViewDimension: wgpu.TextureViewDimension2D},
			},
		},
	}); err != nil {
		return nil, err
	}

	if f.group1, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "adaptrix.group1",
		Layout: f.Group1Layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: f.ViewUniformBuf, Size: ViewUniformSize},
			{Binding: 1, TextureView: f.VisibilityView},
			{Binding: 2, Buffer: f.SWIDBuf, Size: wgpu.WholeSize},
			{Binding: 3, TextureView: f.HZBView},
		},
	}); err != nil {
		return nil, err
	}

	return f, nil
}

func (f *FrameResources) Group1() *wgpu.BindGroup { return f.group1 }

// WriteView uploads this frame's camera/cut-condition parameters.
func (f *FrameResources) WriteView(v ViewUniform) {
	f.Queue.WriteBuffer(f.ViewUniformBuf, 0, v.ToBytes())
}

// ClearSWIDBuffer zeroes the SW id buffer (background = 0), since a
// fresh atomicMax pass needs every pixel to start unwritten.
func (f *FrameResources) ClearSWIDBuffer() {
	f.Queue.WriteBuffer(f.SWIDBuf, 0, make([]byte, uint64(f.Width)*uint64(f.Height)*4))
}

func (f *FrameResources) Release() {
	if f.ViewUniformBuf != nil {
		f.ViewUniformBuf.Release()
	}
	if f.VisibilityView != nil {
		f.VisibilityView.Release()
	}
	if f.VisibilityImage != nil {
		f.VisibilityImage.Release()
	}
	if f.DepthView != nil {
		f.DepthView.Release()
	}
	if f.DepthImage != nil {
		f.DepthImage.Release()
	}
	if f.SWIDBuf != nil {
		f.SWIDBuf.Release()
	}
	if f.HZBView != nil {
		f.HZBView.Release()
	}
	if f.HZBImage != nil {
		f.HZBImage.Release()
	}
	if f.Group1Layout != nil {
		f.Group1Layout.Release()
	}
}
