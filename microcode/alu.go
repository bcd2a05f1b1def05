// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package microcode

import "github.com/xenorecomp/xenorecomp/bitreader"

// AluVectorOpcode is the 5-bit vector-ALU opcode field.
type AluVectorOpcode uint32

const (
	VectorAdd AluVectorOpcode = iota
	VectorMul
	VectorMax
	VectorMin
	VectorSeq
	VectorSgt
	VectorSge
	VectorSne
	VectorFrc
	VectorTrunc
	VectorFloor
	VectorMad
	VectorCndEq
	VectorCndGe
	VectorCndGt
	VectorDp4
	VectorDp3
	VectorDp2Add
	VectorCube
	VectorMax4
	VectorSetpEqPush
	VectorSetpNePush
	VectorSetpGtPush
	VectorSetpGePush
	VectorKillEq
	VectorKillGt
	VectorKillGe
	VectorKillNe
	VectorDst
	VectorMaxA
)

// AluScalarOpcode is the 6-bit scalar-ALU opcode field. Opcode 41 is
// reserved in the source format and never emitted.
type AluScalarOpcode uint32

const (
	ScalarAdds AluScalarOpcode = iota
	ScalarAddsPrev
	ScalarMuls
	ScalarMulsPrev
	ScalarMulsPrev2
	ScalarMaxs
	ScalarMins
	ScalarSeqs
	ScalarSgts
	ScalarSges
	ScalarSnes
	ScalarFrcs
	ScalarTruncs
	ScalarFloors
	ScalarExp
	ScalarLogc
	ScalarLog
	ScalarRcpc
	ScalarRcpf
	ScalarRcp
	ScalarRsqc
	ScalarRsqf
	ScalarRsq
	ScalarMaxAs
	ScalarMaxAsf
	ScalarSubs
	ScalarSubsPrev
	ScalarSetpEq
	ScalarSetpNe
	ScalarSetpGt
	ScalarSetpGe
	ScalarSetpInv
	ScalarSetpPop
	ScalarSetpClr
	ScalarSetpRstr
	ScalarKillsEq
	ScalarKillsGt
	ScalarKillsGe
	ScalarKillsNe
	ScalarKillsOne
	ScalarSqrt
	scalarReserved41
	ScalarMulsc0
	ScalarMulsc1
	ScalarAddsc0
	ScalarAddsc1
	ScalarSubsc0
	ScalarSubsc1
	ScalarSin
	ScalarCos
	ScalarRetainPrev
)

// ExportRegister names the fixed destination registers an ALU
// instruction's result can be routed to instead of a general-purpose
// register.
type ExportRegister uint32

const (
	ExportNone ExportRegister = iota
	ExportPosition
	ExportPointSize
	ExportColor0
	ExportColor1
	ExportColor2
	ExportColor3
	ExportDepth
)

// AluInstruction is a decoded ALU instruction: a co-issued vector op
// and scalar op sharing one 96-bit word, each with its own source
// operands, output write mask, and export routing.
type AluInstruction struct {
	VectorOpcode   AluVectorOpcode
	ScalarOpcode   AluScalarOpcode
	VectorWriteMask uint32
	ScalarWriteMask uint32
	VectorDest     uint32
	ScalarDest     uint32
	VectorDestIsExport bool
	ScalarDestIsExport bool
	ExportReg      ExportRegister
	PredicateCondition bool
	IsPredicated   bool

	Src1Reg    uint32
	Src1Swizzle uint32
	Src1Negate bool
	Src1Abs    bool
	Src1IsConst bool

	Src2Reg    uint32
	Src2Swizzle uint32
	Src2Negate bool
	Src2Abs    bool
	Src2IsConst bool

	Src3Reg    uint32
	Src3Swizzle uint32
	Src3Negate bool
	Src3Abs    bool
	Src3IsConst bool

	ConstSlot uint32
	IsRelative bool
	VectorClamp bool
	ScalarClamp bool
}

func (AluInstruction) cfInstruction() {}

// DecodeAlu decodes an ALU instruction from its three big-endian
// 32-bit words. Field layout follows the source format's packed
// vliw-style ALU encoding: word0 carries the vector opcode, the first
// two source selectors and the first source swizzle; word1 carries the
// scalar opcode, the third source selector, vector destination
// routing and both write masks; word2 carries the second and third
// source swizzles, the negate bits and the scalar destination.
func DecodeAlu(data []byte, off int) AluInstruction {
	word0 := bitreader.U32(data, off)
	word1 := bitreader.U32(data, off+4)
	word2 := bitreader.U32(data, off+8)

	inst := AluInstruction{
		VectorOpcode: AluVectorOpcode(bitreader.Field(word0, 0, 5)),
		Src1Reg:      bitreader.Field(word0, 5, 6),
		Src1IsConst:  bitreader.Field(word0, 11, 1) != 0,
		Src2Reg:      bitreader.Field(word0, 12, 6),
		Src2IsConst:  bitreader.Field(word0, 18, 1) != 0,
		Src1Swizzle:  bitreader.Field(word0, 19, 8),
		Src1Abs:      bitreader.Field(word0, 27, 1) != 0,
		Src2Abs:      bitreader.Field(word0, 28, 1) != 0,
		VectorClamp:  bitreader.Field(word0, 29, 1) != 0,
		IsRelative:   bitreader.Field(word0, 30, 1) != 0,

		ScalarOpcode:       AluScalarOpcode(bitreader.Field(word1, 0, 6)),
		Src3Reg:            bitreader.Field(word1, 6, 6),
		Src3IsConst:        bitreader.Field(word1, 12, 1) != 0,
		VectorDest:         bitreader.Field(word1, 13, 6),
		VectorDestIsExport: bitreader.Field(word1, 19, 1) != 0,
		VectorWriteMask:    bitreader.Field(word1, 20, 4),
		ScalarWriteMask:    bitreader.Field(word1, 24, 4),
		ExportReg:          ExportRegister(bitreader.Field(word1, 28, 3)),
		IsPredicated:       bitreader.Field(word1, 31, 1) != 0,

		Src2Swizzle:        bitreader.Field(word2, 0, 8),
		Src3Swizzle:         bitreader.Field(word2, 8, 8),
		Src3Negate:          bitreader.Field(word2, 16, 1) != 0,
		Src1Negate:          bitreader.Field(word2, 17, 1) != 0,
		Src2Negate:          bitreader.Field(word2, 18, 1) != 0,
		ScalarClamp:         bitreader.Field(word2, 19, 1) != 0,
		ScalarDest:          bitreader.Field(word2, 20, 6),
		ScalarDestIsExport:  bitreader.Field(word2, 26, 1) != 0,
		PredicateCondition:  bitreader.Field(word2, 27, 1) != 0,
		ConstSlot:           bitreader.Field(word2, 28, 4),
	}

	return inst
}
