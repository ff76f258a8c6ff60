// Package config holds the build-time and runtime configuration
// structs for Adaptrix, populated from flags in cmd/ and assembled
// with a chained builder.
package config

import "github.com/lume-adaptrix/adaptrix/adaptrix/alog"

// BuildConfig configures a single preprocessor run (mesh -> .llad).
type BuildConfig struct {
	// MemoryBudget bounds the adjacency builder's peak memory; zero
	// means unlimited.
	MemoryBudget int
	// Logger is the logger carried with the build configuration;
	// NewBuildConfig sets it to alog.Nop(). hierarchy.Build takes no
	// logger, so build progress is not reported through it.
	Logger *alog.Logger
}

func NewBuildConfig() *BuildConfig {
	return &BuildConfig{Logger: alog.Nop()}
}

func (c *BuildConfig) WithMemoryBudget(bytes int) *BuildConfig {
	c.MemoryBudget = bytes
	return c
}

func (c *BuildConfig) WithLogger(l *alog.Logger) *BuildConfig {
	c.Logger = l
	return c
}

// RuntimeConfig configures the per-frame culling/rendering behavior.
type RuntimeConfig struct {
	// ErrorThresholdPx is the cut condition's screen-space error
	// budget, in pixels.
	ErrorThresholdPx float32
	// SWThresholdPx is the hybrid HW/SW split point; clusters
	// projecting smaller than this go to the SW path.
	SWThresholdPx float32
	// EnableHZB toggles the optional Hi-Z occlusion test. When false
	// the culler performs frustum + cut only.
	EnableHZB bool
	// VisibleClusterCapacity is not read by gpu.Binder, which sizes
	// the hw/sw visible-cluster arrays to the asset's cluster count
	// regardless of this value.
	VisibleClusterCapacity uint32
	Logger                 *alog.Logger
}

func NewRuntimeConfig() *RuntimeConfig {
	return &RuntimeConfig{
		ErrorThresholdPx:       1.0,
		SWThresholdPx:          16,
		EnableHZB:              true,
		VisibleClusterCapacity: 1 << 16,
		Logger:                 alog.Nop(),
	}
}

func (c *RuntimeConfig) WithErrorThresholdPx(px float32) *RuntimeConfig {
	c.ErrorThresholdPx = px
	return c
}

func (c *RuntimeConfig) WithSWThresholdPx(px float32) *RuntimeConfig {
	c.SWThresholdPx = px
	return c
}

func (c *RuntimeConfig) WithHZB(enabled bool) *RuntimeConfig {
	c.EnableHZB = enabled
	return c
}

func (c *RuntimeConfig) WithVisibleClusterCapacity(n uint32) *RuntimeConfig {
	c.VisibleClusterCapacity = n
	return c
}

func (c *RuntimeConfig) WithLogger(l *alog.Logger) *RuntimeConfig {
	c.Logger = l
	return c
}
