// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package container parses the Xenos shader container format: the
// fixed-offset header, its embedded constant table, definition table,
// and shader header, all stored as big-endian 32-bit words.
package container

import (
	"github.com/xenorecomp/xenorecomp/bitreader"
	"github.com/xenorecomp/xenorecomp/xerr"
)

const headerMagic = 0x102A1100

// Container is a parsed view over a ShaderContainer blob. It holds no
// copies of the underlying bytes — all fields index back into Data.
type Container struct {
	Data []byte

	Flags                 uint32
	VirtualSize           uint32
	PhysicalSize          uint32
	ConstantTableOffset   uint32
	DefinitionTableOffset uint32
	ShaderOffset          uint32
}

// IsVertexShader reports whether this container holds a vertex shader,
// as opposed to a pixel shader.
func (c *Container) IsVertexShader() bool {
	return c.Flags&1 != 0
}

// Length is the total byte span (virtual + physical regions) the
// cache builder's directory scan uses to locate the next embedded
// container.
func (c *Container) Length() uint32 {
	return c.VirtualSize + c.PhysicalSize
}

// Parse validates and parses a ShaderContainer header at the start of
// data.
func Parse(data []byte) (*Container, error) {
	if len(data) < 36 {
		return nil, xerr.New(xerr.BadContainer, "container shorter than header")
	}

	flags := bitreader.U32(data, 0)
	fieldC := bitreader.U32(data, 12)
	field1C := bitreader.U32(data, 28)
	field20 := bitreader.U32(data, 32)

	if flags&0xFFFFFF00 != headerMagic {
		return nil, xerr.Newf(xerr.BadContainer, "magic mismatch: got %#x", flags&0xFFFFFF00)
	}
	if fieldC != 0 || field1C != 0 || field20 != 0 {
		return nil, xerr.New(xerr.BadContainer, "reserved fields are nonzero")
	}

	constantTableOffset := bitreader.U32(data, 16)
	if constantTableOffset == 0 {
		return nil, xerr.New(xerr.BadContainer, "constant_table_offset is zero")
	}

	return &Container{
		Data:                  data,
		Flags:                 flags,
		VirtualSize:           bitreader.U32(data, 4),
		PhysicalSize:          bitreader.U32(data, 8),
		ConstantTableOffset:   constantTableOffset,
		DefinitionTableOffset: bitreader.U32(data, 20),
		ShaderOffset:          bitreader.U32(data, 24),
	}, nil
}

// Float4Definition is a literal float4 constant carried in the
// definition table, pointing at its packed bytes in the physical
// region.
type Float4Definition struct {
	RegisterIndex  uint16
	Count          uint16
	PhysicalOffset uint32
	// Values holds Count*4 raw bit patterns (4 per float4 element, in
	// declaration order), read directly from the physical region at
	// PhysicalOffset. Reinterpret each group of 4 via asfloat/asuint.
	Values []uint32
}

// Int4Definition is a literal int4 constant, its values packed inline
// as four signed bytes per element.
type Int4Definition struct {
	RegisterIndex uint16
	Count         uint16
	Values        []uint32
}

// DefinitionTable holds every literal constant definition embedded in
// the container, float4s first then int4s, as the source format
// stores them.
type DefinitionTable struct {
	Float4s []Float4Definition
	Int4s   []Int4Definition
}

// ParseDefinitionTable reads the two NUL(dword)-terminated sub-tables
// of literal definitions starting at c.DefinitionTableOffset. A zero
// DefinitionTableOffset means the container carries no definitions.
func (c *Container) ParseDefinitionTable() (*DefinitionTable, error) {
	table := &DefinitionTable{}
	if c.DefinitionTableOffset == 0 {
		return table, nil
	}

	// Layout: field0,field4,field8,fieldC,size (5 dwords), then the
	// definitions stream.
	off := int(c.DefinitionTableOffset) + 20

	for {
		word := bitreader.U32(c.Data, off)
		if word == 0 {
			off += 4
			break
		}
		regIndex := bitreader.U16(c.Data, off)
		count := bitreader.U16(c.Data, off+2)
		physOff := bitreader.U32(c.Data, off+4)

		values := make([]uint32, int(count)*4)
		base := int(c.VirtualSize) + int(physOff)
		for i := range values {
			values[i] = bitreader.U32(c.Data, base+i*4)
		}

		table.Float4s = append(table.Float4s, Float4Definition{
			RegisterIndex:  regIndex,
			Count:          count,
			PhysicalOffset: physOff,
			Values:         values,
		})
		off += 8
	}

	for {
		word := bitreader.U32(c.Data, off)
		if word == 0 {
			break
		}
		regIndex := bitreader.U16(c.Data, off)
		count := bitreader.U16(c.Data, off+2)
		off += 8
		values := make([]uint32, count)
		for i := range values {
			values[i] = bitreader.U32(c.Data, off+i*4)
		}
		table.Int4s = append(table.Int4s, Int4Definition{
			RegisterIndex: regIndex,
			Count:         count,
			Values:        values,
		})
		off += int(count) * 4
	}

	return table, nil
}

// VertexElement is one input attribute of a vertex shader.
type VertexElement struct {
	Address    uint32
	Usage      DeclUsage
	UsageIndex uint32
}

// DeclUsage mirrors D3D's D3DDECLUSAGE enumeration as used by the
// vertex-element and interpolator tables.
type DeclUsage uint32

const (
	UsagePosition DeclUsage = iota
	UsageBlendWeight
	UsageBlendIndices
	UsageNormal
	UsagePointSize
	UsageTexCoord
	UsageTangent
	UsageBinormal
	UsageTessFactor
	UsagePositionT
	UsageColor
	UsageFog
	UsageDepth
	UsageSample
)

// Interpolator maps one VS export register (or PS input register) to
// a usage slot.
type Interpolator struct {
	UsageIndex uint32
	Usage      DeclUsage
	Reg        uint32
}

// ShaderHeader is the common prefix of VertexShader and PixelShader.
type ShaderHeader struct {
	PhysicalOffset   uint32
	Size             uint32
	Field8           uint32
	FieldC           uint32
	Field10          uint32
	InterpolatorInfo uint32
}

// SVPositionRegister returns the general-purpose register index that
// receives SV_Position for pixel shaders.
func (h ShaderHeader) SVPositionRegister() uint32 {
	return (h.FieldC >> 8) & 0xFF
}

// InterpolatorCount is the number of Interpolator entries following
// the stage-specific tail.
func (h ShaderHeader) InterpolatorCount() uint32 {
	return (h.InterpolatorInfo >> 5) & 0x1F
}

// PixelShaderOutputs is a bitmask of the color/depth targets a pixel
// shader writes.
type PixelShaderOutputs uint32

const (
	OutputColor0 PixelShaderOutputs = 0x1
	OutputColor1 PixelShaderOutputs = 0x2
	OutputColor2 PixelShaderOutputs = 0x4
	OutputColor3 PixelShaderOutputs = 0x8
	OutputDepth  PixelShaderOutputs = 0x10
)

// VertexShader is the parsed VS-specific shader header: vertex-element
// table followed by interpolator assignments.
type VertexShader struct {
	ShaderHeader
	VertexElements []VertexElement
	Interpolators  []Interpolator
}

// PixelShader is the parsed PS-specific shader header: output mask and
// interpolator-to-input-register mapping.
type PixelShader struct {
	ShaderHeader
	Outputs       PixelShaderOutputs
	Interpolators []Interpolator
}

func parseShaderHeader(data []byte, off int) ShaderHeader {
	return ShaderHeader{
		PhysicalOffset:   bitreader.U32(data, off),
		Size:             bitreader.U32(data, off+4),
		Field8:           bitreader.U32(data, off+8),
		FieldC:           bitreader.U32(data, off+12),
		Field10:          bitreader.U32(data, off+16),
		InterpolatorInfo: bitreader.U32(data, off+20),
	}
}

func decodeVertexElement(word uint32) VertexElement {
	return VertexElement{
		Address:    bitreader.Field(word, 0, 12),
		Usage:      DeclUsage(bitreader.Field(word, 12, 4)),
		UsageIndex: bitreader.Field(word, 16, 4),
	}
}

func decodeInterpolator(word uint32) Interpolator {
	return Interpolator{
		UsageIndex: bitreader.Field(word, 0, 4),
		Usage:      DeclUsage(bitreader.Field(word, 4, 4)),
		Reg:        bitreader.Field(word, 8, 4),
	}
}

// ParseVertexShader parses the VS-specific tail at c.ShaderOffset.
func (c *Container) ParseVertexShader() *VertexShader {
	base := int(c.ShaderOffset)
	header := parseShaderHeader(c.Data, base)

	field18 := bitreader.U32(c.Data, base+24)
	vertexElementCount := bitreader.U32(c.Data, base+28)
	tailBase := base + 36 + int(field18)*4

	vs := &VertexShader{ShaderHeader: header}
	for i := uint32(0); i < vertexElementCount; i++ {
		word := bitreader.U32(c.Data, tailBase+int(i)*4)
		vs.VertexElements = append(vs.VertexElements, decodeVertexElement(word))
	}

	interpCount := header.InterpolatorCount()
	interpBase := tailBase + int(vertexElementCount)*4
	for i := uint32(0); i < interpCount; i++ {
		word := bitreader.U32(c.Data, interpBase+int(i)*4)
		vs.Interpolators = append(vs.Interpolators, decodeInterpolator(word))
	}

	return vs
}

// ParsePixelShader parses the PS-specific tail at c.ShaderOffset.
func (c *Container) ParsePixelShader() *PixelShader {
	base := int(c.ShaderOffset)
	header := parseShaderHeader(c.Data, base)

	outputs := PixelShaderOutputs(bitreader.U32(c.Data, base+28))

	ps := &PixelShader{ShaderHeader: header, Outputs: outputs}
	interpCount := header.InterpolatorCount()
	interpBase := base + 32
	for i := uint32(0); i < interpCount; i++ {
		word := bitreader.U32(c.Data, interpBase+int(i)*4)
		ps.Interpolators = append(ps.Interpolators, decodeInterpolator(word))
	}

	return ps
}

// Microcode returns the raw big-endian 32-bit instruction words for
// the shader, starting at physical_offset within the physical region
// (which begins at VirtualSize) and spanning size bytes.
func (c *Container) Microcode(h ShaderHeader) []byte {
	start := int(c.VirtualSize + h.PhysicalOffset)
	return c.Data[start : start+int(h.Size)]
}
