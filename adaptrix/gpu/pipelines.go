package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/lume-adaptrix/adaptrix/adaptrix/shaders"
)

// Pipelines holds the four GPU pipelines of the Adaptrix frame: cull
// (compute), HW raster (render), SW raster (compute), resolve
// (render). One shader module per pass, built against an explicit
// pipeline layout assembled from the Binder/FrameResources bind group
// layouts rather than per-pipeline auto-layout, since group 0 and
// group 1 must stay bit-compatible across all four pipelines.
type Pipelines struct {
	Cull     *wgpu.ComputePipeline
	HWRaster *wgpu.RenderPipeline
	SWRaster *wgpu.ComputePipeline
	Resolve  *wgpu.RenderPipeline
}

// NewPipelines compiles and links all four passes. The compute passes
// (cull, SW raster) link against the binder's read_write group-0
// layout; the render passes (HW raster, resolve) link against the
// read-only one, since vertex-stage storage bindings cannot be
// read_write. Group 1 is shared by all four.
func NewPipelines(device *wgpu.Device, group0Compute, group0Render, group1Layout *wgpu.BindGroupLayout, colorFormat wgpu.TextureFormat) (*Pipelines, error) {
	computeLayout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "adaptrix.pipeline_layout.compute",
		BindGroupLayouts: []*wgpu.BindGroupLayout{group0Compute, group1Layout},
	})
	if err != nil {
		return nil, err
	}
	layout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "adaptrix.pipeline_layout.render",
		BindGroupLayouts: []*wgpu.BindGroupLayout{group0Render, group1Layout},
	})
	if err != nil {
		return nil, err
	}

	p := &Pipelines{}

	if p.Cull, err = computePipeline(device, computeLayout, "adaptrix.cull", shaders.CullWGSL); err != nil {
		return nil, err
	}
	if p.SWRaster, err = computePipeline(device, computeLayout, "adaptrix.sw_raster", shaders.SWRasterWGSL); err != nil {
		return nil, err
	}

	hwModule, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "adaptrix.hw_raster",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.HWRasterWGSL},
	})
	if err != nil {
		return nil, err
	}
	defer hwModule.Release()

	// CullMode = None, winding CCW, standard depth test.
	p.HWRaster, err = device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "adaptrix.hw_raster",
		Layout: layout,
		Vertex: wgpu.VertexState{Module: hwModule, EntryPoint: "vs_main"},
		Fragment: &wgpu.FragmentState{
			Module:     hwModule,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{Format: wgpu.TextureFormatRG32Uint, WriteMask: wgpu.ColorWriteMaskAll},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth32Float,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront: wgpu.StencilFaceState{
				Compare:     wgpu.CompareFunctionAlways,
				FailOp:      wgpu.StencilOperationKeep,
				DepthFailOp: wgpu.StencilOperationKeep,
				PassOp:      wgpu.StencilOperationKeep,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare:     wgpu.CompareFunctionAlways,
				FailOp:      wgpu.StencilOperationKeep,
				DepthFailOp: wgpu.StencilOperationKeep,
				PassOp:      wgpu.StencilOperationKeep,
			},
		},
		Multisample: wgpu.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
	})
	if err != nil {
		return nil, err
	}

	resolveModule, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "adaptrix.resolve",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.ResolveWGSL},
	})
	if err != nil {
		return nil, err
	}
	defer resolveModule.Release()

	p.Resolve, err = device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "adaptrix.resolve",
		Layout: layout,
		Vertex: wgpu.VertexState{Module: resolveModule, EntryPoint: "vs_main"},
		Fragment: &wgpu.FragmentState{
			Module:     resolveModule,
			EntryPoint: "fs_main",
			Targets:    []wgpu.ColorTargetState{{Format: colorFormat, WriteMask: wgpu.ColorWriteMaskAll}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
	})
	if err != nil {
		return nil, err
	}

	return p, nil
}

func computePipeline(device *wgpu.Device, layout *wgpu.PipelineLayout, label, code string) (*wgpu.ComputePipeline, error) {
	mod, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: code},
	})
	if err != nil {
		return nil, err
	}
	defer mod.Release()

	return device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:   label,
		Layout:  layout,
		Compute: wgpu.ProgrammableStageDescriptor{Module: mod, EntryPoint: "main"},
	})
}

func (p *Pipelines) Release() {
	if p.Cull != nil {
		p.Cull.Release()
	}
	if p.HWRaster != nil {
		p.HWRaster.Release()
	}
	if p.SWRaster != nil {
		p.SWRaster.Release()
	}
	if p.Resolve != nil {
		p.Resolve.Release()
	}
}
