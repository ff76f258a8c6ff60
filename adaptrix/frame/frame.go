// Package frame drives the Adaptrix per-frame state machine:
// Idle -> Recording -> Culling -> HwRaster -> SwRaster -> Resolve ->
// Present -> Idle, with one command encoder and one compute/render
// pass per stage.
package frame

import (
	"fmt"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/lume-adaptrix/adaptrix/adaptrix/aerr"
	"github.com/lume-adaptrix/adaptrix/adaptrix/alog"
	"github.com/lume-adaptrix/adaptrix/adaptrix/gpu"
)

// State names one step of the per-frame state machine.
type State int

const (
	Idle State = iota
	Recording
	Culling
	HwRaster
	SwRaster
	Resolve
	Present
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Recording:
		return "Recording"
	case Culling:
		return "Culling"
	case HwRaster:
		return "HwRaster"
	case SwRaster:
		return "SwRaster"
	case Resolve:
		return "Resolve"
	case Present:
		return "Present"
	default:
		return "Unknown"
	}
}

// Runner owns the GPU resources one frame needs and walks them through
// the state machine. It borrows device/queue/surface handles the same
// way Binder and FrameResources do.
type Runner struct {
	Device  *wgpu.Device
	Queue   *wgpu.Queue
	Surface *wgpu.Surface

	Binder    *gpu.Binder
	Resources *gpu.FrameResources
	Pipelines *gpu.Pipelines

	Logger *alog.Logger

	State State
	Stats *Stats
}

// NewRunner wires together an already-opened Binder/FrameResources/
// Pipelines set into a frame driver. log may be nil, in which case a
// no-op logger is installed.
func NewRunner(device *wgpu.Device, surface *wgpu.Surface, binder *gpu.Binder, resources *gpu.FrameResources, pipelines *gpu.Pipelines, log *alog.Logger) *Runner {
	if log == nil {
		log = alog.Nop()
	}
	return &Runner{
		Device:    device,
		Queue:     device.GetQueue(),
		Surface:   surface,
		Binder:    binder,
		Resources: resources,
		Pipelines: pipelines,
		Logger:    log,
		State:     Idle,
		Stats:     NewStats(),
	}
}

// clusterWorkgroups is the cull dispatch size: one thread per cluster,
// 64 threads per workgroup (matches the @workgroup_size(64) declared in
// adaptrix/shaders/cull.wgsl). The SW raster pass does not use it; it
// is dispatched indirectly, one workgroup per SW-visible cluster.
func clusterWorkgroups(clusterCount int) uint32 {
	const wgSize = 64
	if clusterCount == 0 {
		return 0
	}
	return uint32((clusterCount + wgSize - 1) / wgSize)
}

// RunFrame advances Idle->...->Present->Idle once: cull, hardware
// rasterize the visible-cluster list, software rasterize the
// sub-threshold remainder, resolve both visibility sources into the
// swapchain image, and present. Any failure drops only this frame:
// the caller's next RunFrame call starts over from Idle with freshly
// reset indirect args. RunFrame always leaves State at Idle on
// return, success or failure.
func (r *Runner) RunFrame(view gpu.ViewUniform) error {
	defer func() { r.State = Idle }()

	r.State = Recording
	r.Stats.Begin("frame")
	defer r.Stats.End("frame")

	texture, err := r.Surface.GetCurrentTexture()
	if err != nil {
		return r.fail("acquire swapchain texture", err)
	}
	target, err := texture.CreateView(nil)
	if err != nil {
		return r.fail("create swapchain view", err)
	}
	defer target.Release()

	encoder, err := r.Device.CreateCommandEncoder(nil)
	if err != nil {
		return r.fail("create command encoder", err)
	}

	r.Binder.ResetFrame()
	r.Resources.ClearSWIDBuffer()
	r.Resources.WriteView(view)

	if err := r.cullPass(encoder); err != nil {
		return r.fail("cull pass", err)
	}
	if err := r.hwRasterPass(encoder); err != nil {
		return r.fail("hw raster pass", err)
	}
	if err := r.swRasterPass(encoder); err != nil {
		return r.fail("sw raster pass", err)
	}
	if err := r.resolvePass(encoder, target); err != nil {
		return r.fail("resolve pass", err)
	}

	r.State = Present
	r.Stats.Begin("present")
	cmdBuf, err := encoder.Finish(nil)
	if err != nil {
		return r.fail("finish command buffer", err)
	}
	r.Queue.Submit(cmdBuf)
	r.Surface.Present()
	r.Stats.End("present")

	return nil
}

func (r *Runner) cullPass(encoder *wgpu.CommandEncoder) error {
	r.State = Culling
	r.Stats.Begin("cull")
	defer r.Stats.End("cull")

	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(r.Pipelines.Cull)
	pass.SetBindGroup(0, r.Binder.Group0Compute(), nil)
	pass.SetBindGroup(1, r.Resources.Group1(), nil)
	pass.DispatchWorkgroups(clusterWorkgroups(r.Binder.ClusterCount), 1, 1)
	return pass.End()
}

func (r *Runner) hwRasterPass(encoder *wgpu.CommandEncoder) error {
	r.State = HwRaster
	r.Stats.Begin("hw_raster")
	defer r.Stats.End("hw_raster")

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       r.Resources.VisibilityView,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{0, 0, 0, 0},
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            r.Resources.DepthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		},
	})
	pass.SetPipeline(r.Pipelines.HWRaster)
	pass.SetBindGroup(0, r.Binder.Group0Render(), nil)
	pass.SetBindGroup(1, r.Resources.Group1(), nil)
	pass.DrawIndirect(r.Binder.HWDrawArgsBuf, 0)
	return pass.End()
}

func (r *Runner) swRasterPass(encoder *wgpu.CommandEncoder) error {
	r.State = SwRaster
	r.Stats.Begin("sw_raster")
	defer r.Stats.End("sw_raster")

	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(r.Pipelines.SWRaster)
	pass.SetBindGroup(0, r.Binder.Group0Compute(), nil)
	pass.SetBindGroup(1, r.Resources.Group1(), nil)
	pass.DispatchWorkgroupsIndirect(r.Binder.SWDispatchArgsBuf, 0)
	return pass.End()
}

func (r *Runner) resolvePass(encoder *wgpu.CommandEncoder, target *wgpu.TextureView) error {
	r.State = Resolve
	r.Stats.Begin("resolve")
	defer r.Stats.End("resolve")

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       target,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{0, 0, 0, 1},
			},
		},
	})
	pass.SetPipeline(r.Pipelines.Resolve)
	pass.SetBindGroup(0, r.Binder.Group0Render(), nil)
	pass.SetBindGroup(1, r.Resources.Group1(), nil)
	pass.Draw(3, 1, 0, 0)
	return pass.End()
}

func (r *Runner) fail(stage string, err error) error {
	if isDeviceLost(err) {
		err = aerr.New(aerr.KindDeviceLost, err.Error())
	}
	r.Logger.WithStage(r.State.String()).Errorf("%s failed: %v", stage, err)
	return fmt.Errorf("frame: %s: %w", stage, err)
}

// isDeviceLost matches the wgpu-native device-loss report text, the
// only channel the binding surfaces loss through; callers branch on
// the resulting aerr.ErrDeviceLost to tear down and rebuild every GPU
// resource while keeping the asset mmap.
func isDeviceLost(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "device lost") || strings.Contains(s, "devicelost")
}
