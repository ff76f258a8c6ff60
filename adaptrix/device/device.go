// Package device bootstraps the GLFW window and WebGPU
// instance/adapter/device/queue/surface chain the Adaptrix viewer runs
// on. Returns errors instead of panicking, since a missing GPU or
// unsupported surface format is a normal, recoverable startup
// condition for a tool used across many machines, not a programmer
// error.
package device

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	// GLFW must be called from the thread that initialized it.
	runtime.LockOSThread()
}

// Window wraps the GLFW window the Adaptrix viewer renders into.
type Window struct {
	GLFW   *glfw.Window
	Width  int
	Height int
	Title  string
}

// OpenWindow creates a GLFW window configured for a native-API surface
// (no GL context), via the glfw.ClientAPI/NoAPI hint.
func OpenWindow(width, height int, title string) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("device: glfw init: %w", err)
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("device: create window: %w", err)
	}
	return &Window{GLFW: win, Width: width, Height: height, Title: title}, nil
}

func (w *Window) Close() {
	if w.GLFW != nil {
		w.GLFW.Destroy()
	}
}

// GPU holds the WebGPU handles a frame.Runner needs: surface, adapter,
// device, queue, and the current surface configuration (format/size/
// present mode).
type GPU struct {
	Instance *wgpu.Instance
	Surface  *wgpu.Surface
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Config   *wgpu.SurfaceConfiguration
}

// OpenGPU requests a high-performance adapter compatible with win's
// surface, since Adaptrix's hybrid raster pipeline is exactly the kind
// of workload a discrete GPU should take over an integrated one.
func OpenGPU(win *Window) (*GPU, error) {
	instance := wgpu.CreateInstance(nil)
	surface := instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(win.GLFW))

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil, fmt.Errorf("device: request adapter: %w", err)
	}

	dev, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "adaptrix.device",
	})
	if err != nil {
		return nil, fmt.Errorf("device: request device: %w", err)
	}
	queue := dev.GetQueue()

	caps := surface.GetCapabilities(adapter)
	if len(caps.Formats) == 0 {
		return nil, fmt.Errorf("device: surface exposes no formats")
	}
	config := wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(win.Width),
		Height:      uint32(win.Height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	surface.Configure(adapter, dev, &config)

	return &GPU{
		Instance: instance,
		Surface:  surface,
		Adapter:  adapter,
		Device:   dev,
		Queue:    queue,
		Config:   &config,
	}, nil
}

// Resize reconfigures the surface for a new viewport size. The caller
// is responsible for rebuilding gpu.FrameResources at the new
// dimensions afterward, since the visibility image and SW id buffer
// are sized to the viewport, not the surface.
func (g *GPU) Resize(width, height uint32) {
	g.Config.Width = width
	g.Config.Height = height
	g.Surface.Configure(g.Adapter, g.Device, g.Config)
}

func (g *GPU) Release() {
	if g.Instance != nil {
		g.Instance.Release()
	}
}
