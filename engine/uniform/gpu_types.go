package uniform

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUUniformSource is the canonical WGSL definition of the Uniforms struct.
// Matches GPUUniform layout exactly (16 bytes).
//
//go:embed assets/uniforms.wgsl
var GPUUniformSource string

// GPUUniformTypeName is the WGSL type name declared by GPUUniformSource.
const GPUUniformTypeName = "Uniforms"

// GPUUniform is the GPU-aligned representation of the per-frame uniform buffer.
// Size: 16 bytes.
type GPUUniform struct {
	Resolution [2]float32 // offset  0: surface size in pixels (vec2<f32>)
	Time       float32    // offset  8: seconds since the viewer started (f32)
	_pad       uint32     // offset 12: padding to 16 bytes
}

// Size returns the size of the GPUUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (16)
func (g *GPUUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUUniform struct into a little-endian byte buffer for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(g.Resolution[0]))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(g.Resolution[1]))
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(g.Time))
	binary.LittleEndian.PutUint32(buf[12:], 0) // _pad
	return buf
}
