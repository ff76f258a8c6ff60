// Command adaptrixview is a minimal GLFW+WebGPU viewer for a built
// .llad asset: open the asset, upload it once via adaptrix/gpu.Binder,
// and drive the frame.Runner state machine every tick (poll events,
// compute a ViewUniform, run one frame, repeat until the window
// closes).
package main

import (
	"errors"
	"flag"
	"math"
	"os"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/lume-adaptrix/adaptrix/adaptrix/aerr"
	"github.com/lume-adaptrix/adaptrix/adaptrix/alog"
	"github.com/lume-adaptrix/adaptrix/adaptrix/config"
	"github.com/lume-adaptrix/adaptrix/adaptrix/device"
	"github.com/lume-adaptrix/adaptrix/adaptrix/frame"
	"github.com/lume-adaptrix/adaptrix/adaptrix/gpu"
	"github.com/lume-adaptrix/adaptrix/adaptrix/llad"
)

func main() {
	var (
		assetPath = flag.String("asset", "", "path to a .llad asset built by adaptrixc")
		width     = flag.Int("width", 1280, "window width")
		height    = flag.Int("height", 720, "window height")
		debug     = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	log := alog.New("adaptrixview", *debug)
	if *assetPath == "" {
		log.Errorf("missing required -asset flag")
		os.Exit(1)
	}

	if err := run(*assetPath, *width, *height, log); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

// runtimeState bundles everything that must be torn down and rebuilt
// after a device loss. The mmap'd asset deliberately stays outside it:
// the mapping survives the loss, only the GPU-side views of it die.
type runtimeState struct {
	gp        *device.GPU
	binder    *gpu.Binder
	resources *gpu.FrameResources
	pipelines *gpu.Pipelines
	runner    *frame.Runner
}

func openRuntime(win *device.Window, asset *llad.Asset, width, height int, log *alog.Logger) (*runtimeState, error) {
	gp, err := device.OpenGPU(win)
	if err != nil {
		return nil, err
	}

	binder, err := gpu.NewBinder(gp.Device, asset)
	if err != nil {
		gp.Release()
		return nil, err
	}

	resources, err := gpu.NewFrameResources(gp.Device, uint32(width), uint32(height))
	if err != nil {
		binder.Release()
		gp.Release()
		return nil, err
	}

	pipelines, err := gpu.NewPipelines(gp.Device, binder.Group0ComputeLayout, binder.Group0RenderLayout, resources.Group1Layout, gp.Config.Format)
	if err != nil {
		resources.Release()
		binder.Release()
		gp.Release()
		return nil, err
	}

	return &runtimeState{
		gp:        gp,
		binder:    binder,
		resources: resources,
		pipelines: pipelines,
		runner:    frame.NewRunner(gp.Device, gp.Surface, binder, resources, pipelines, log),
	}, nil
}

func (s *runtimeState) release() {
	s.pipelines.Release()
	s.resources.Release()
	s.binder.Release()
	s.gp.Release()
}

func run(assetPath string, width, height int, log *alog.Logger) error {
	asset, err := llad.Open(assetPath)
	if err != nil {
		return err
	}
	defer asset.Close()

	win, err := device.OpenWindow(width, height, "adaptrixview")
	if err != nil {
		return err
	}
	defer win.Close()

	rt, err := openRuntime(win, asset, width, height, log)
	if err != nil {
		return err
	}
	defer func() { rt.release() }()

	runtimeCfg := config.NewRuntimeConfig().WithLogger(log)

	orbitRadius := float32(4)
	var angle float64

	for !win.GLFW.ShouldClose() {
		glfw.PollEvents()

		angle += 0.01
		cam := mgl32.Vec3{
			orbitRadius * float32(math.Cos(angle)),
			orbitRadius * 0.5,
			orbitRadius * float32(math.Sin(angle)),
		}
		view := viewUniform(cam, width, height, runtimeCfg)

		if err := rt.runner.RunFrame(view); err != nil {
			if errors.Is(err, aerr.ErrDeviceLost) {
				// Device loss invalidates every GPU handle but not
				// the asset mapping: rebuild the whole runtime state
				// from the still-open mmap and keep going.
				log.Errorf("device lost, rebuilding GPU state: %v", err)
				rt.release()
				rt, err = openRuntime(win, asset, width, height, log)
				if err != nil {
					return err
				}
				continue
			}
			log.Warnf("frame dropped: %v", err)
		}
	}
	return nil
}

func viewUniform(cam mgl32.Vec3, width, height int, cfg *config.RuntimeConfig) gpu.ViewUniform {
	const fovY = math.Pi / 3
	aspect := float32(width) / float32(height)
	proj := mgl32.Perspective(fovY, aspect, 0.05, 1000)
	lookAt := mgl32.LookAtV(cam, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
	viewProj := proj.Mul4(lookAt)
	invViewProj := viewProj.Inv()

	return gpu.ViewUniform{
		ViewProj:       viewProj,
		InvViewProj:    invViewProj,
		CameraPos:      cam,
		ErrorThreshold: cfg.ErrorThresholdPx,
		SWThreshold:    cfg.SWThresholdPx,
		ViewportW:      float32(width),
		ViewportH:      float32(height),
		FovY:           fovY,
		EnableHZB:      cfg.EnableHZB,
	}
}
