package gpu

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ViewUniform is the per-frame uniform buffer (group 1 binding 0):
// camera matrices, cut-condition parameters, and the target viewport.
// The wire layout is a flat array of 4-component vectors (11
// consecutive vec4s) rather than a struct with scalar tail fields, to
// defeat std140/std430 layout divergence between drivers. This layout
// is a contract, mirrored exactly by the WGSL ViewUniform struct in
// every adaptrix/shaders source.
type ViewUniform struct {
	ViewProj       mgl32.Mat4
	InvViewProj    mgl32.Mat4
	CameraPos      mgl32.Vec3
	ErrorThreshold float32 // pixels
	SWThreshold    float32 // pixels
	ViewportW      float32
	ViewportH      float32
	FovY           float32 // radians
	EnableHZB      bool
}

// ViewUniformSize is 11 vec4 rows (176 bytes), 16-byte aligned.
const ViewUniformSize = 11 * 16

// ToBytes encodes u into its wire layout, little-endian, matching the
// WGSL ViewUniform struct field-for-field.
func (u ViewUniform) ToBytes() []byte {
	buf := make([]byte, ViewUniformSize)
	putMat4(buf[0:64], u.ViewProj)
	putMat4(buf[64:128], u.InvViewProj)

	binary.LittleEndian.PutUint32(buf[128:132], math.Float32bits(u.CameraPos.X()))
	binary.LittleEndian.PutUint32(buf[132:136], math.Float32bits(u.CameraPos.Y()))
	binary.LittleEndian.PutUint32(buf[136:140], math.Float32bits(u.CameraPos.Z()))
	binary.LittleEndian.PutUint32(buf[140:144], 0) // camera_pos.w, unused padding lane

	binary.LittleEndian.PutUint32(buf[144:148], math.Float32bits(u.ErrorThreshold))
	binary.LittleEndian.PutUint32(buf[148:152], math.Float32bits(u.SWThreshold))
	binary.LittleEndian.PutUint32(buf[152:156], math.Float32bits(u.ViewportW))
	binary.LittleEndian.PutUint32(buf[156:160], math.Float32bits(u.ViewportH))

	binary.LittleEndian.PutUint32(buf[160:164], math.Float32bits(u.FovY))
	enableHZB := uint32(0)
	if u.EnableHZB {
		enableHZB = 1
	}
	binary.LittleEndian.PutUint32(buf[164:168], enableHZB)
	binary.LittleEndian.PutUint32(buf[168:172], 0)
	binary.LittleEndian.PutUint32(buf[172:176], 0)
	return buf
}

func putMat4(buf []byte, m mgl32.Mat4) {
	for i := 0; i < 16; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], math.Float32bits(m[i]))
	}
}

// IndirectDrawArgs is the 16-byte indirect draw argument struct;
// instance_count MUST sit at byte offset 4 so the culler's atomicAdd
// target matches what draw_indirect consumes.
type IndirectDrawArgs struct {
	VertexCount   uint32
	InstanceCount uint32
	FirstVertex   uint32
	FirstInstance uint32
}

const IndirectDrawArgsSize = 16

func (a IndirectDrawArgs) ToBytes() []byte {
	buf := make([]byte, IndirectDrawArgsSize)
	binary.LittleEndian.PutUint32(buf[0:4], a.VertexCount)
	binary.LittleEndian.PutUint32(buf[4:8], a.InstanceCount)
	binary.LittleEndian.PutUint32(buf[8:12], a.FirstVertex)
	binary.LittleEndian.PutUint32(buf[12:16], a.FirstInstance)
	return buf
}

// IndirectDispatchArgs is the indirect compute-dispatch argument
// struct (atomic<u32> x, u32 y, u32 z).
type IndirectDispatchArgs struct {
	X, Y, Z uint32
}

const IndirectDispatchArgsSize = 12

func (a IndirectDispatchArgs) ToBytes() []byte {
	buf := make([]byte, IndirectDispatchArgsSize)
	binary.LittleEndian.PutUint32(buf[0:4], a.X)
	binary.LittleEndian.PutUint32(buf[4:8], a.Y)
	binary.LittleEndian.PutUint32(buf[8:12], a.Z)
	return buf
}
