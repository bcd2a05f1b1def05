// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package recompile

import (
	"testing"

	"github.com/xenorecomp/xenorecomp/microcode"
)

// TestDispatchedTerminationOpcodes pins the two resolutions made for
// control-flow termination: CondExecEnd and CondExecPredEnd both
// terminate an Exec-family block identically (their only difference
// is which boolean gates the block, not how it ends), and
// CondExecPredCleanEnd terminates exactly like CondExecPredEnd with
// the predicate-clean flag additionally set.
func TestDispatchedTerminationOpcodes(t *testing.T) {
	cases := []struct {
		name   string
		opcode microcode.CFOpcode
	}{
		{"CondExecEnd", microcode.CFCondExecEndOp},
		{"CondExecPredCleanEnd", microcode.CFCondExecPredCleanEndOp},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			word := uint64(c.opcode) << 44
			inst := decodeCFForTest(word)
			ce, ok := inst.(microcode.CondExec)
			if !ok {
				t.Fatalf("decodeCF(%s) = %T, want CondExec", c.name, inst)
			}
			if !ce.End {
				t.Errorf("%s: End = false, want true", c.name)
			}
		})
	}

	t.Run("CondExecPredCleanEnd sets PredClean", func(t *testing.T) {
		word := uint64(microcode.CFCondExecPredCleanEndOp) << 44
		inst := decodeCFForTest(word)
		ce := inst.(microcode.CondExec)
		if !ce.PredClean {
			t.Error("PredClean = false, want true")
		}
	})

	t.Run("CondExecPredEnd terminates", func(t *testing.T) {
		word := uint64(microcode.CFCondExecPredEndOp) << 44
		inst := decodeCFForTest(word)
		cp, ok := inst.(microcode.CondExecPred)
		if !ok {
			t.Fatalf("decodeCF(CondExecPredEnd) = %T, want CondExecPred", inst)
		}
		if !cp.End {
			t.Error("End = false, want true")
		}
	})
}

// decodeCFForTest packs word into three big-endian u32s the way a
// real control-flow slot stores a single 48-bit instruction in its low
// half, then decodes through the package's normal entry point.
func decodeCFForTest(word uint64) microcode.CFInstruction {
	data := make([]byte, 12)
	word0 := uint32(word)
	word1 := uint32(word >> 32)
	data[0] = byte(word0 >> 24)
	data[1] = byte(word0 >> 16)
	data[2] = byte(word0 >> 8)
	data[3] = byte(word0)
	data[4] = byte(word1 >> 24)
	data[5] = byte(word1 >> 16)
	data[6] = byte(word1 >> 8)
	data[7] = byte(word1)
	low, _ := microcode.DecodeCFSlot(data, 0)
	return low
}

func TestClassifyShapeStructuredWhenAllJumpsForwardAndConditional(t *testing.T) {
	slots := []CFSlot{
		{Low: microcode.CondJmp{Address: 2, IsUnconditional: false}, High: microcode.Nop{}},
		{Low: microcode.Nop{}, High: microcode.Nop{}},
	}
	if got := ClassifyShape(slots); got != Structured {
		t.Errorf("ClassifyShape = %v, want Structured", got)
	}
}

func TestClassifyShapeDispatchedOnBackwardJump(t *testing.T) {
	slots := []CFSlot{
		{Low: microcode.Nop{}, High: microcode.Nop{}},
		{Low: microcode.CondJmp{Address: 0, IsUnconditional: false}, High: microcode.Nop{}},
	}
	if got := ClassifyShape(slots); got != Dispatched {
		t.Errorf("ClassifyShape = %v, want Dispatched", got)
	}
}

func TestClassifyShapeDispatchedOnUnconditionalJump(t *testing.T) {
	slots := []CFSlot{
		{Low: microcode.CondJmp{Address: 1, IsUnconditional: true}, High: microcode.Nop{}},
	}
	if got := ClassifyShape(slots); got != Dispatched {
		t.Errorf("ClassifyShape = %v, want Dispatched", got)
	}
}
