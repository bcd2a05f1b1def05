// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package container

import (
	"encoding/binary"
	"testing"

	"github.com/xenorecomp/xenorecomp/xerr"
)

func putU32(data []byte, off int, v uint32) {
	binary.BigEndian.PutUint32(data[off:off+4], v)
}

func putU16(data []byte, off int, v uint16) {
	binary.BigEndian.PutUint16(data[off:off+2], v)
}

// buildVertexContainer assembles a minimal but structurally valid
// vertex-shader container: header, one float4 constant, one vertex
// element, no interpolators.
func buildVertexContainer() []byte {
	data := make([]byte, 160)

	const shaderOffset = 100
	const constantTableOffset = 40

	putU32(data, 0, headerMagic|1) // flags: vertex shader bit set
	putU32(data, 4, 0)             // virtualSize
	putU32(data, 8, 0)             // physicalSize
	putU32(data, 12, 0)            // reserved
	putU32(data, 16, constantTableOffset)
	putU32(data, 20, 0) // no definition table
	putU32(data, 24, shaderOffset)
	putU32(data, 28, 0) // reserved
	putU32(data, 32, 0) // reserved

	// ConstantTableContainer at constantTableOffset: size(u32) + ConstantTable.
	ctBase := constantTableOffset + 4
	putU32(data, ctBase+12, 1)  // count
	putU32(data, ctBase+16, 20) // constantInfoOffset, relative to ctBase

	recOff := ctBase + 20
	nameOff := 40 // relative to ctBase
	putU32(data, recOff, uint32(nameOff))
	putU16(data, recOff+4, uint16(2)) // SetFloat4
	putU16(data, recOff+6, 0)         // registerIndex
	putU16(data, recOff+8, 1)         // registerCount

	copy(data[ctBase+nameOff:], "Test\x00")

	// ShaderHeader at shaderOffset.
	putU32(data, shaderOffset, 0)  // physicalOffset
	putU32(data, shaderOffset+4, 8) // size
	putU32(data, shaderOffset+8, 0)
	putU32(data, shaderOffset+12, 0)
	putU32(data, shaderOffset+16, 0)
	putU32(data, shaderOffset+20, 0) // interpolatorInfo: 0 interpolators

	putU32(data, shaderOffset+24, 0) // field18
	putU32(data, shaderOffset+28, 1) // vertexElementCount

	tailBase := shaderOffset + 36
	putU32(data, tailBase, 0) // one vertex element: Position, index 0, address 0

	return data
}

func TestParseValidContainer(t *testing.T) {
	data := buildVertexContainer()

	c, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !c.IsVertexShader() {
		t.Error("IsVertexShader() = false, want true")
	}
	if c.ConstantTableOffset != 40 {
		t.Errorf("ConstantTableOffset = %d, want 40", c.ConstantTableOffset)
	}
}

func TestParseVertexShaderTail(t *testing.T) {
	data := buildVertexContainer()
	c, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	vs := c.ParseVertexShader()
	if len(vs.VertexElements) != 1 {
		t.Fatalf("len(VertexElements) = %d, want 1", len(vs.VertexElements))
	}
	if vs.VertexElements[0].Usage != UsagePosition {
		t.Errorf("Usage = %v, want UsagePosition", vs.VertexElements[0].Usage)
	}
	if len(vs.Interpolators) != 0 {
		t.Errorf("len(Interpolators) = %d, want 0", len(vs.Interpolators))
	}
}

func TestParseRejectsShortInput(t *testing.T) {
	_, err := Parse(make([]byte, 10))
	if !xerr.Is(err, xerr.BadContainer) {
		t.Fatalf("err = %v, want BadContainer", err)
	}
}

func TestParseRejectsBadMagic(t *testing.T) {
	data := buildVertexContainer()
	putU32(data, 0, 0xDEADBEEF)
	_, err := Parse(data)
	if !xerr.Is(err, xerr.BadContainer) {
		t.Fatalf("err = %v, want BadContainer", err)
	}
}

func TestParseRejectsNonzeroReserved(t *testing.T) {
	data := buildVertexContainer()
	putU32(data, 12, 1)
	_, err := Parse(data)
	if !xerr.Is(err, xerr.BadContainer) {
		t.Fatalf("err = %v, want BadContainer", err)
	}
}

func TestParseRejectsZeroConstantTableOffset(t *testing.T) {
	data := buildVertexContainer()
	putU32(data, 16, 0)
	_, err := Parse(data)
	if !xerr.Is(err, xerr.BadContainer) {
		t.Fatalf("err = %v, want BadContainer", err)
	}
}
