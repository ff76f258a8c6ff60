// Package shaders embeds the WGSL sources for the four Adaptrix GPU
// passes: one go:embed string var per source file, nothing else.
package shaders

import _ "embed"

//go:embed cull.wgsl
var CullWGSL string

//go:embed hw_raster.wgsl
var HWRasterWGSL string

//go:embed sw_raster.wgsl
var SWRasterWGSL string

//go:embed resolve.wgsl
var ResolveWGSL string
