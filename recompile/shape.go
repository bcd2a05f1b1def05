// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package recompile turns decoded Xenos microcode into HLSL source
// text: it classifies the program's control-flow shape, emits
// per-dialect declarations, then walks the instruction stream emitting
// a body for each control-flow block.
package recompile

import "github.com/xenorecomp/xenorecomp/microcode"

// Shape is the classification a program's control-flow is given
// before the body emitter chooses how to lower CondJmp instructions.
type Shape int

const (
	// Structured programs contain no CondJmp that jumps backward and no
	// unconditional CondJmp; every conditional jump becomes a nested
	// `if (!cond) { ... }` closed at the jump target.
	Structured Shape = iota
	// Dispatched programs need a `while (true) switch (pc) { ... }`
	// with explicit `pc = addr; continue;` at every jump, because some
	// CondJmp either jumps backward or is unconditional.
	Dispatched
)

// ClassifyShape scans every decoded control-flow instruction and
// reports whether the program can be emitted as structured nested ifs
// or needs the dispatched pc-switch form.
//
// A program is Dispatched as soon as any CondJmp is unconditional (an
// unconditional forward jump has no corresponding "!cond" to nest
// under) or jumps to an address at or before its own instruction
// index (a backward edge, which nested ifs cannot express).
func ClassifyShape(slots []CFSlot) Shape {
	for i, inst := range cfInstructions(slots) {
		jmp, ok := inst.(microcode.CondJmp)
		if !ok {
			continue
		}
		if jmp.IsUnconditional {
			return Dispatched
		}
		if jmp.Address <= uint32(i) {
			return Dispatched
		}
	}
	return Structured
}

// cfInstructions flattens control-flow slots into one instruction per
// program-counter index. CondJmp.Address (and every other control-flow
// address field) addresses individual control-flow instructions, not
// 96-bit slots, since each slot packs two instructions; this is the
// address space every slot-index consumer (ClassifyShape,
// walkStructured, walkDispatched) must walk in.
func cfInstructions(slots []CFSlot) []microcode.CFInstruction {
	insts := make([]microcode.CFInstruction, 0, len(slots)*2)
	for _, s := range slots {
		insts = append(insts, s.Low, s.High)
	}
	return insts
}

// CFSlot is one decoded 96-bit control-flow slot: two co-packed
// instructions at program-counter index matching the slot's position
// in the control-flow stream.
type CFSlot struct {
	Low, High microcode.CFInstruction
}

// DecodeCFStream decodes every control-flow slot in the microcode's
// control-flow region, stopping after the first slot that holds a
// Return, a MarkVsFetchDone, or an Exec, CondExec or CondExecPred with
// End set, or at the end of data if none appears.
//
// ExecEnd, CondExecEnd and CondExecPredEnd all terminate the stream.
// CondExecPredCleanEnd decodes as a CondExec with both End and
// PredClean set and terminates the same way: isTerminal treats `End`
// uniformly across Exec, CondExec and CondExecPred regardless of the
// PredClean flag.
func DecodeCFStream(data []byte) []CFSlot {
	var slots []CFSlot
	for off := 0; off+12 <= len(data); off += 12 {
		low, high := microcode.DecodeCFSlot(data, off)
		slots = append(slots, CFSlot{Low: low, High: high})

		if isTerminal(low) || isTerminal(high) {
			break
		}
	}
	return slots
}

func isTerminal(inst microcode.CFInstruction) bool {
	switch v := inst.(type) {
	case microcode.Return:
		return true
	case microcode.MarkVsFetchDone:
		return true
	case microcode.Exec:
		return v.End
	case microcode.CondExec:
		return v.End
	case microcode.CondExecPred:
		return v.End
	}
	return false
}
