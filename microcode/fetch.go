// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package microcode

import "github.com/xenorecomp/xenorecomp/bitreader"

// FetchOpcode classifies a fetch instruction by its low 5-bit opcode
// field.
type FetchOpcode uint32

const (
	FetchVertex                     FetchOpcode = 0
	FetchTexture                    FetchOpcode = 1
	FetchGetTextureBorderColorFrac  FetchOpcode = 16
	FetchGetTextureComputedLod      FetchOpcode = 17
	FetchGetTextureGradients        FetchOpcode = 18
	FetchGetTextureWeights          FetchOpcode = 19
	FetchSetTextureLod              FetchOpcode = 24
	FetchSetTextureGradientsHorz    FetchOpcode = 25
	FetchSetTextureGradientsVert    FetchOpcode = 26
)

// FetchDestinationSwizzle is a 3-bit per-lane selector for a fetch
// instruction's destination.
type FetchDestinationSwizzle uint32

const (
	SwizzleX    FetchDestinationSwizzle = 0
	SwizzleY    FetchDestinationSwizzle = 1
	SwizzleZ    FetchDestinationSwizzle = 2
	SwizzleW    FetchDestinationSwizzle = 3
	SwizzleZero FetchDestinationSwizzle = 4
	SwizzleOne  FetchDestinationSwizzle = 5
	SwizzleKeep FetchDestinationSwizzle = 7
)

// DestSwizzle extracts lane index's 3-bit destination swizzle field.
func DestSwizzle(dstSwizzle uint32, index uint) FetchDestinationSwizzle {
	return FetchDestinationSwizzle(bitreader.Field(dstSwizzle, index*3, 3))
}

// VertexFetch is a decoded vertex-fetch instruction.
type VertexFetch struct {
	Opcode             FetchOpcode
	SrcRegister        uint32
	DstRegister        uint32
	ConstIndex         uint32
	SrcSwizzle         uint32
	DstSwizzle         uint32
	IsPredicated       bool
	PredicateCondition bool
	Offset             int32
	Stride             uint32
}

func (VertexFetch) cfInstruction() {}

// DecodeVertexFetch decodes a vertex-fetch instruction from its three
// big-endian 32-bit words.
func DecodeVertexFetch(data []byte, off int) VertexFetch {
	word0 := bitreader.U32(data, off)
	word1 := bitreader.U32(data, off+4)
	word2 := bitreader.U32(data, off+8)

	return VertexFetch{
		Opcode:             FetchOpcode(bitreader.Field(word0, 0, 5)),
		SrcRegister:        bitreader.Field(word0, 5, 6),
		DstRegister:        bitreader.Field(word0, 12, 6),
		ConstIndex:         bitreader.Field(word0, 20, 5),
		SrcSwizzle:         bitreader.Field(word0, 30, 2),
		DstSwizzle:         bitreader.Field(word1, 0, 12),
		IsPredicated:       bitreader.Field(word1, 31, 1) != 0,
		Stride:             bitreader.Field(word2, 0, 8),
		Offset:             bitreader.SignedField(word2, 8, 23),
		PredicateCondition: bitreader.Field(word2, 31, 1) != 0,
	}
}

// TextureDimension is the texture-fetch dimension field.
type TextureDimension uint32

const (
	Dim1D TextureDimension = iota
	Dim2D
	Dim3D
	DimCube
)

// TextureFetch is a decoded texture-fetch instruction.
type TextureFetch struct {
	Opcode         FetchOpcode
	SrcRegister    uint32
	DstRegister    uint32
	ConstIndex     uint32
	SrcSwizzle     uint32
	DstSwizzle     uint32
	IsPredicated   bool
	Dimension      TextureDimension
	OffsetX        int32
	OffsetY        int32
	OffsetZ        int32
	PredCondition  bool
}

func (TextureFetch) cfInstruction() {}

// DecodeTextureFetch decodes a texture-fetch instruction from its
// three big-endian 32-bit words.
func DecodeTextureFetch(data []byte, off int) TextureFetch {
	word0 := bitreader.U32(data, off)
	word1 := bitreader.U32(data, off+4)
	word2 := bitreader.U32(data, off+8)

	return TextureFetch{
		Opcode:        FetchOpcode(bitreader.Field(word0, 0, 5)),
		SrcRegister:   bitreader.Field(word0, 5, 6),
		DstRegister:   bitreader.Field(word0, 12, 6),
		ConstIndex:    bitreader.Field(word0, 20, 5),
		SrcSwizzle:    bitreader.Field(word0, 26, 6),
		DstSwizzle:    bitreader.Field(word1, 0, 12),
		IsPredicated:  bitreader.Field(word1, 31, 1) != 0,
		Dimension:     TextureDimension(bitreader.Field(word2, 14, 2)),
		OffsetX:       bitreader.SignedField(word2, 16, 5),
		OffsetY:       bitreader.SignedField(word2, 21, 5),
		OffsetZ:       bitreader.SignedField(word2, 26, 5),
		PredCondition: bitreader.Field(word2, 31, 1) != 0,
	}
}

// FetchOpcodeOf returns the low 5-bit opcode field shared by every
// fetch instruction layout, for classifying a data-path word before
// choosing which decoder to invoke.
func FetchOpcodeOf(data []byte, off int) FetchOpcode {
	return FetchOpcode(bitreader.Field(bitreader.U32(data, off), 0, 5))
}
