// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package microcode decodes control-flow, vertex-fetch, texture-fetch,
// and ALU instruction words into tagged Go sum types, mirroring naga's
// marker-method pattern for IR statements and expressions rather than
// an inheritance hierarchy.
package microcode

import "github.com/xenorecomp/xenorecomp/bitreader"

// CFOpcode is the 4-bit control-flow instruction opcode.
type CFOpcode uint32

const (
	CFNop CFOpcode = iota
	CFExecOp
	CFExecEndOp
	CFCondExecOp
	CFCondExecEndOp
	CFCondExecPredOp
	CFCondExecPredEndOp
	CFLoopStartOp
	CFLoopEndOp
	CFCondCallOp
	CFReturnOp
	CFCondJmpOp
	CFAllocOp
	CFCondExecPredCleanOp
	CFCondExecPredCleanEndOp
	CFMarkVsFetchDoneOp
)

// CFInstruction is a decoded control-flow instruction, one of the
// variant types below.
type CFInstruction interface {
	cfInstruction()
}

// Nop carries no fields.
type Nop struct{}

func (Nop) cfInstruction() {}

// Exec begins an unconditional block of Count co-issued instructions
// at Address; End marks this as the ExecEnd variant (terminal).
type Exec struct {
	Address          uint32
	Count            uint32
	Sequence         uint32
	IsYield          bool
	IsPredicateClean bool
	End              bool
}

func (Exec) cfInstruction() {}

// CondExec begins a block gated by a boolean constant; End marks this
// as the CondExecEnd variant, PredClean marks the predicate-clean
// variants (CondExecPredClean/CondExecPredCleanEnd).
type CondExec struct {
	Address     uint32
	Count       uint32
	Sequence    uint32
	BoolAddress uint32
	Condition   bool
	End         bool
	PredClean   bool
}

func (CondExec) cfInstruction() {}

// CondExecPred begins a block gated by the predicate register p0; End
// marks this as the CondExecPredEnd variant.
type CondExecPred struct {
	Address          uint32
	Count            uint32
	Sequence         uint32
	IsPredicateClean bool
	Condition        bool
	End              bool
}

func (CondExecPred) cfInstruction() {}

// LoopStart opens a loop body; LoopId names the loop-bounds register
// i{LoopId}.
type LoopStart struct {
	Address  uint32
	IsRepeat bool
	LoopID   uint32
}

func (LoopStart) cfInstruction() {}

// LoopEnd closes a loop body, jumping back to Address while the loop
// counter is below i{LoopId}.x.
type LoopEnd struct {
	Address           uint32
	LoopID            uint32
	IsPredicatedBreak bool
	Condition         bool
}

func (LoopEnd) cfInstruction() {}

// CondCall is unused by the emitter (the source format's subroutine
// call is not exercised by any real shader) but decoded for
// completeness.
type CondCall struct {
	Address         uint32
	IsUnconditional bool
	IsPredicated    bool
	BoolAddress     uint32
	Condition       bool
}

func (CondCall) cfInstruction() {}

// Return terminates the program.
type Return struct{}

func (Return) cfInstruction() {}

// CondJmp is a conditional or unconditional jump; the control-flow
// shape analyzer classifies the whole program by inspecting every
// CondJmp's IsUnconditional and comparing its Address with the
// jump's own instruction index.
type CondJmp struct {
	Address         uint32
	IsUnconditional bool
	IsPredicated    bool
	Direction       bool
	BoolAddress     uint32
	Condition       bool
}

func (CondJmp) cfInstruction() {}

// Alloc reserves interpolator/export storage; not consumed by the
// emitter beyond being present in the instruction stream.
type Alloc struct {
	Size     uint32
	AllocType uint32
}

func (Alloc) cfInstruction() {}

// MarkVsFetchDone has no decoded fields.
type MarkVsFetchDone struct{}

func (MarkVsFetchDone) cfInstruction() {}

// recombine48 reproduces the source format's packing of two 48-bit
// control-flow instructions into a 96-bit (3×u32) slot:
// low48 = word0 | (word1 & 0xFFFF) << 32
// high48 = (word1 >> 16 | word2 << 16) | (word2 >> 16) << 32
func recombine48(word0, word1, word2 uint32) (low48, high48 uint64) {
	low48 = uint64(word0) | uint64(word1&0xFFFF)<<32
	code2 := (word1 >> 16) | (word2 << 16)
	code3 := word2 >> 16
	high48 = uint64(code2) | uint64(code3)<<32
	return
}

// DecodeCFSlot decodes the two control-flow instructions packed into
// one 96-bit microcode word (three big-endian u32s starting at off).
func DecodeCFSlot(data []byte, off int) (CFInstruction, CFInstruction) {
	word0 := bitreader.U32(data, off)
	word1 := bitreader.U32(data, off+4)
	word2 := bitreader.U32(data, off+8)

	low48, high48 := recombine48(word0, word1, word2)
	return decodeCF(low48), decodeCF(high48)
}

func decodeCF(word uint64) CFInstruction {
	opcode := CFOpcode(bitreader.Field64(word, 44, 4))

	switch opcode {
	case CFNop:
		return Nop{}

	case CFExecOp, CFExecEndOp:
		return Exec{
			Address:          bitreader.Field64(word, 0, 12),
			Count:            bitreader.Field64(word, 12, 3),
			IsYield:          bitreader.Field64(word, 15, 1) != 0,
			Sequence:         bitreader.Field64(word, 16, 12),
			IsPredicateClean: bitreader.Field64(word, 41, 1) != 0,
			End:              opcode == CFExecEndOp,
		}

	case CFCondExecOp, CFCondExecEndOp, CFCondExecPredCleanOp, CFCondExecPredCleanEndOp:
		return CondExec{
			Address:     bitreader.Field64(word, 0, 12),
			Count:       bitreader.Field64(word, 12, 3),
			Sequence:    bitreader.Field64(word, 16, 12),
			BoolAddress: bitreader.Field64(word, 34, 8),
			Condition:   bitreader.Field64(word, 42, 1) != 0,
			End:         opcode == CFCondExecEndOp || opcode == CFCondExecPredCleanEndOp,
			PredClean:   opcode == CFCondExecPredCleanOp || opcode == CFCondExecPredCleanEndOp,
		}

	case CFCondExecPredOp, CFCondExecPredEndOp:
		return CondExecPred{
			Address:          bitreader.Field64(word, 0, 12),
			Count:            bitreader.Field64(word, 12, 3),
			Sequence:         bitreader.Field64(word, 16, 12),
			IsPredicateClean: bitreader.Field64(word, 41, 1) != 0,
			Condition:        bitreader.Field64(word, 42, 1) != 0,
			End:              opcode == CFCondExecPredEndOp,
		}

	case CFLoopStartOp:
		return LoopStart{
			Address:  bitreader.Field64(word, 0, 13),
			IsRepeat: bitreader.Field64(word, 13, 1) != 0,
			LoopID:   bitreader.Field64(word, 16, 5),
		}

	case CFLoopEndOp:
		return LoopEnd{
			Address:           bitreader.Field64(word, 0, 13),
			LoopID:            bitreader.Field64(word, 16, 5),
			IsPredicatedBreak: bitreader.Field64(word, 21, 1) != 0,
			Condition:         bitreader.Field64(word, 42, 1) != 0,
		}

	case CFCondCallOp:
		return CondCall{
			Address:         bitreader.Field64(word, 0, 13),
			IsUnconditional: bitreader.Field64(word, 13, 1) != 0,
			IsPredicated:    bitreader.Field64(word, 14, 1) != 0,
			BoolAddress:     bitreader.Field64(word, 34, 8),
			Condition:       bitreader.Field64(word, 42, 1) != 0,
		}

	case CFReturnOp:
		return Return{}

	case CFCondJmpOp:
		return CondJmp{
			Address:         bitreader.Field64(word, 0, 13),
			IsUnconditional: bitreader.Field64(word, 13, 1) != 0,
			IsPredicated:    bitreader.Field64(word, 14, 1) != 0,
			Direction:       bitreader.Field64(word, 33, 1) != 0,
			BoolAddress:     bitreader.Field64(word, 34, 8),
			Condition:       bitreader.Field64(word, 42, 1) != 0,
		}

	case CFAllocOp:
		return Alloc{
			Size:      bitreader.Field64(word, 0, 3),
			AllocType: bitreader.Field64(word, 41, 2),
		}

	case CFMarkVsFetchDoneOp:
		return MarkVsFetchDone{}

	default:
		return Nop{}
	}
}
