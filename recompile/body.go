// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package recompile

import (
	"fmt"

	"github.com/xenorecomp/xenorecomp/container"
	"github.com/xenorecomp/xenorecomp/microcode"
	"github.com/xenorecomp/xenorecomp/xerr"
)

// clauseSlotBytes is the width of one ALU/fetch clause slot: the same
// 96-bit (3×u32) width as a control-flow slot.
const clauseSlotBytes = 12

// BodyInput is the per-stage context EmitBody needs beyond the raw
// control-flow stream: which registers vertex fetches and vector/
// scalar exports resolve against, and which title profile is active.
type BodyInput struct {
	IsPixelShader      bool
	SVPositionRegister uint32
	VertexElements     map[uint32]container.VertexElement
	Interpolators      map[uint32]container.Interpolator
	Profile            Profile
}

// bodyState threads per-program emission state through the
// control-flow walk: register/export routing context, the live
// specialization-constant mask, and the first error encountered (body
// emission keeps walking after an error so later statements don't
// dangle mid-block, but EmitBody reports it once the walk completes).
type bodyState struct {
	w       *Writer
	clauses []byte
	in      BodyInput

	specMask  SpecConstants
	err       error
	maxLoopID int
}

// EmitBody walks the decoded control-flow stream and writes the
// function body: register declarations, the control-flow walk
// (structured nested-if or dispatched pc-switch per shape), and
// returns the specialization constants this body actually references.
// clauses is the raw microcode slice starting at the first ALU/fetch
// clause (immediately following the control-flow program).
func EmitBody(w *Writer, slots []CFSlot, shape Shape, clauses []byte, in BodyInput) (SpecConstants, error) {
	st := &bodyState{w: w, clauses: clauses, in: in}

	w.writeLine("float4 c[256] = g_Constants;")
	w.writeLine("float4 r[32];")
	w.writeLine("[unroll] for (int xe_i = 0; xe_i < 32; xe_i++) { r[xe_i] = float4(0, 0, 0, 0); }")
	w.writeLine("bool p0 = false;")
	w.writeLine("int a0 = 0;")
	w.writeLine("int4 aL = int4(0, 0, 0, 0);")
	w.writeLine("float ps = 0.0;")
	if in.IsPixelShader {
		w.writeLine("r[%d] = input.position;", in.SVPositionRegister)
	} else {
		w.writeLine("r[0] = float4(asfloat(input.vertexIndex), asfloat(input.instanceIndex), 0.0, 0.0);")
	}
	w.write("\n")

	insts := cfInstructions(slots)
	switch shape {
	case Structured:
		st.walkStructured(insts, 0, len(insts))
	case Dispatched:
		st.walkDispatched(insts)
	}

	return st.specMask, st.err
}

// writeDefinitionLiterals emits the shader-embedded literal constants
// from the container's definition table as overrides on top of the
// runtime constant file, float4s reinterpreting their raw bit pattern
// and int4s unpacking four signed-byte lanes from one packed dword.
func writeDefinitionLiterals(w *Writer, defs *container.DefinitionTable) {
	if defs == nil {
		return
	}
	for _, d := range defs.Float4s {
		for i := 0; i < int(d.Count) && (i+1)*4 <= len(d.Values); i++ {
			reg := int(d.RegisterIndex) + i
			w0, w1, w2, w3 := d.Values[i*4], d.Values[i*4+1], d.Values[i*4+2], d.Values[i*4+3]
			w.writeLine("c[%d] = asfloat(uint4(%#xU, %#xU, %#xU, %#xU));", reg, w0, w1, w2, w3)
		}
	}
	for _, d := range defs.Int4s {
		for i, v := range d.Values {
			reg := int(d.RegisterIndex) + i
			b0 := int32(int8(v))
			b1 := int32(int8(v >> 8))
			b2 := int32(int8(v >> 16))
			b3 := int32(int8(v >> 24))
			w.writeLine("c[%d] = float4(%d, %d, %d, %d);", reg, b0, b1, b2, b3)
		}
	}
}

func (st *bodyState) fail(err error) {
	if st.err == nil {
		st.err = err
	}
}

func (st *bodyState) useSpec(bit SpecConstants) {
	st.specMask |= bit
}

// walkStructured emits insts[from:to] as a straight-line sequence of
// Exec/CondExec blocks, nesting every CondJmp's target range inside an
// `if (!cond) { ... }` guard. Every CondJmp in a Structured program is
// forward-only and conditional (see ClassifyShape), so the guarded
// range always ends at the jump target and the walk can recurse on
// sub-slices without a label stack. insts is the flattened per-
// instruction control-flow stream (two per 96-bit slot); CondJmp.Address
// indexes into it directly.
func (st *bodyState) walkStructured(insts []microcode.CFInstruction, from, to int) {
	i := from
	for i < to {
		inst := insts[i]
		if jmp, ok := inst.(microcode.CondJmp); ok {
			target := int(jmp.Address)
			if target > to {
				target = to
			}
			st.w.writeLine("if (!%s)", st.condExpr(jmp.BoolAddress, jmp.Condition, jmp.IsPredicated))
			st.w.writeLine("{")
			st.w.pushIndent()
			st.walkStructured(insts, i+1, target)
			st.w.popIndent()
			st.w.writeLine("}")
			i = target
			continue
		}

		st.emitCFInstruction(inst)
		i++
	}
}

// walkDispatched emits the pc-switch fallback: every flattened
// control-flow instruction becomes one numbered case, Exec/CondExec
// bodies are emitted inline, and CondJmp becomes a conditional pc
// reassignment followed by continue.
func (st *bodyState) walkDispatched(insts []microcode.CFInstruction) {
	st.w.writeLine("int pc = 0;")
	st.w.writeLine("[loop] while (true)")
	st.w.writeLine("{")
	st.w.pushIndent()
	st.w.writeLine("switch (pc)")
	st.w.writeLine("{")
	for i, inst := range insts {
		st.w.writeLine("case %d:", i)
		st.w.pushIndent()

		if jmp, ok := inst.(microcode.CondJmp); ok {
			st.w.writeLine("if (%s) { pc = %d; continue; }", st.condExpr(jmp.BoolAddress, jmp.Condition, jmp.IsPredicated), jmp.Address)
		} else {
			st.emitCFInstruction(inst)
		}

		st.w.writeLine("pc = %d;", i+1)
		st.w.writeLine("continue;")
		st.w.popIndent()
	}
	st.w.writeLine("default:")
	st.w.pushIndent()
	st.w.writeLine("break;")
	st.w.popIndent()
	st.w.writeLine("}")
	st.w.writeLine("break;")
	st.w.popIndent()
	st.w.writeLine("}")
}

// condExpr reads one bool constant out of the single g_Booleans dword.
// Vertex-shader bool addresses occupy bits [0:16), pixel-shader bool
// addresses occupy bits [16:32) of the same dword.
func (st *bodyState) condExpr(boolAddress uint32, condition, predicated bool) string {
	if predicated {
		if condition {
			return "p0"
		}
		return "!p0"
	}
	shift := boolAddress
	if st.in.IsPixelShader {
		shift += 16
	}
	expr := fmt.Sprintf("(g_Booleans & (1u << %dU)) != 0", shift)
	if !condition {
		expr = "!" + expr
	}
	return expr
}

// emitCFInstruction lowers one control-flow instruction (Exec/
// CondExec/CondExecPred/LoopStart/LoopEnd/Alloc/Nop); CondJmp is
// handled by its caller, since its lowering depends on walk shape.
func (st *bodyState) emitCFInstruction(inst microcode.CFInstruction) {
	switch v := inst.(type) {
	case microcode.Exec:
		st.emitExecBlock(v.Address, v.Count, v.Sequence)
	case microcode.CondExec:
		st.w.writeLine("if (%s)", st.condExpr(v.BoolAddress, v.Condition, false))
		st.w.writeLine("{")
		st.w.pushIndent()
		st.emitExecBlock(v.Address, v.Count, v.Sequence)
		st.w.popIndent()
		st.w.writeLine("}")
	case microcode.CondExecPred:
		st.w.writeLine("if (%s)", st.condExpr(0, v.Condition, true))
		st.w.writeLine("{")
		st.w.pushIndent()
		st.emitExecBlock(v.Address, v.Count, v.Sequence)
		st.w.popIndent()
		st.w.writeLine("}")
	case microcode.LoopStart:
		st.maxLoopID = max(st.maxLoopID, int(v.LoopID)+1)
		st.w.writeLine("[loop] for (aL.x = 0; aL.x < i%d.x; aL.x += i%d.y)", v.LoopID, v.LoopID)
		st.w.writeLine("{")
		st.w.pushIndent()
	case microcode.LoopEnd:
		st.w.popIndent()
		st.w.writeLine("}")
	case microcode.Alloc, microcode.Nop, microcode.Return, microcode.MarkVsFetchDone, microcode.CondCall:
		// No HLSL is emitted for these; CondCall and Return are not
		// lowered, and stream termination is decided by DecodeCFStream.
	}
}

// emitExecBlock lowers one Exec-family block: count co-issued clause
// slots starting at address, each independently a vertex fetch,
// texture fetch, or ALU instruction per its sequence bit.
func (st *bodyState) emitExecBlock(address, count, sequence uint32) {
	for i := uint32(0); i < count; i++ {
		off := int(address+i) * clauseSlotBytes
		if off+clauseSlotBytes > len(st.clauses) {
			break
		}

		isFetch := (sequence>>(i*2))&1 != 0
		if isFetch {
			st.emitFetch(off)
		} else {
			st.emitAlu(off)
		}
	}
}

func (st *bodyState) writeMaybePredicated(predicated, condition bool, format string, args ...any) {
	stmt := fmt.Sprintf(format, args...)
	if !predicated {
		st.w.writeLine("%s", stmt)
		return
	}
	cond := "p0"
	if !condition {
		cond = "!p0"
	}
	st.w.writeLine("if (%s) { %s }", cond, stmt)
}

func (st *bodyState) emitFetch(off int) {
	opcode := microcode.FetchOpcodeOf(st.clauses, off)
	if opcode == microcode.FetchVertex {
		st.emitVertexFetch(off)
		return
	}
	st.emitTextureFetch(off)
}

// emitVertexFetch resolves the fetch's source register against the
// container's vertex-element table and wraps the raw input in the
// usage-appropriate byte-swap helper (or the packed-normal decode
// helper, gated by a specialization constant), matching the way every
// vertex usage class needs its own endian/packing treatment before the
// body can treat it as a plain float4.
func (st *bodyState) emitVertexFetch(off int) {
	f := microcode.DecodeVertexFetch(st.clauses, off)

	elem, ok := st.in.VertexElements[f.SrcRegister]
	if !ok {
		st.fail(xerr.Newf(xerr.MissingVertexElement, "vertex fetch references undeclared element at address %d", f.SrcRegister))
		return
	}

	input := fmt.Sprintf("input.v%d", elem.Address)
	var wrapped string
	switch elem.Usage {
	case container.UsageNormal:
		wrapped = fmt.Sprintf("((g_SpecConstants & %#xU) != 0 ? tfetchR11G11B10(%s) : swapFloats(g_SwappedNormals, %s, %d))",
			uint32(SpecR11G11B10Normal), input, input, elem.UsageIndex)
		st.useSpec(SpecR11G11B10Normal)
	case container.UsageTangent:
		wrapped = fmt.Sprintf("swapFloats(g_SwappedTangents, %s, %d)", input, elem.UsageIndex)
	case container.UsageBinormal:
		wrapped = fmt.Sprintf("swapFloats(g_SwappedBinormals, %s, %d)", input, elem.UsageIndex)
	case container.UsageBlendWeight:
		wrapped = fmt.Sprintf("swapFloats(g_SwappedBlendWeights, %s, %d)", input, elem.UsageIndex)
	case container.UsageTexCoord:
		wrapped = fmt.Sprintf("swapFloats(g_SwappedTexcoords, %s, %d)", input, elem.UsageIndex)
	default:
		wrapped = input
	}

	expr := fmt.Sprintf("applyFetchSwizzle(%s, %#xU)", wrapped, f.DstSwizzle)
	st.writeMaybePredicated(f.IsPredicated, f.PredicateCondition, "r[%d] = %s;", f.DstRegister, expr)
}

// emitTextureFetch routes by declared dimension to the matching
// tfetch helper, scaling the clause's signed 5-bit texel offsets to
// the half-texel adjustment the helpers expect, with title-profile
// bicubic filtering and the GetTextureWeights sub-opcode as special
// cases ahead of the dimension dispatch.
func (st *bodyState) emitTextureFetch(off int) {
	t := microcode.DecodeTextureFetch(st.clauses, off)
	coord := fmt.Sprintf("r[%d]", t.SrcRegister)
	offset := fmt.Sprintf("float3(%g, %g, %g)", float64(t.OffsetX)*0.5, float64(t.OffsetY)*0.5, float64(t.OffsetZ)*0.5)

	var expr string
	switch {
	case t.Opcode == microcode.FetchGetTextureWeights:
		expr = fmt.Sprintf("getWeights2D(g_texture%d, %s.xy)", t.ConstIndex, coord)
	case st.in.Profile == ProfileUnleashedRecomp && t.ConstIndex == 10:
		expr = fmt.Sprintf("tfetch2DBicubic(g_texture%d, g_sampler%d, %s.xy)", t.ConstIndex, t.ConstIndex, coord)
		st.useSpec(SpecBicubicGIFilter)
	default:
		switch t.Dimension {
		case microcode.Dim3D:
			expr = fmt.Sprintf("tfetch2DArray(g_texture%d, g_sampler%d, %s.xyz, %s.xy)", t.ConstIndex, t.ConstIndex, coord, offset)
		case microcode.DimCube:
			expr = fmt.Sprintf("tfetchCube(g_texture%d, g_sampler%d, %s.xyz)", t.ConstIndex, t.ConstIndex, coord)
		default:
			expr = fmt.Sprintf("tfetch2D(g_texture%d, g_sampler%d, %s.xy, %s.xy)", t.ConstIndex, t.ConstIndex, coord, offset)
		}
	}

	expr = fmt.Sprintf("applyFetchSwizzle(%s, %#xU)", expr, t.DstSwizzle)
	st.writeMaybePredicated(t.IsPredicated, t.PredCondition, "r[%d] = %s;", t.DstRegister, expr)
}

// vectorSwizzle applies the source format's swizzle-as-delta encoding:
// lane i reads component ((raw >> 2i) + i) & 3 of the operand, as
// opposed to a destination write mask's direct bit-to-lane mapping.
func vectorSwizzle(raw uint32) string {
	const letters = "xyzw"
	suffix := make([]byte, 4)
	for i := 0; i < 4; i++ {
		lane := (raw>>uint(2*i) + uint32(i)) & 3
		suffix[i] = letters[lane]
	}
	return string(suffix)
}

// vectorOperand builds one full float4 source-operand expression:
// register or constant-file read, swizzled, then abs/negate applied in
// that order (matching the source format's operand modifier order).
// relative appends the loop-register offset to a constant index; the
// decoded instruction carries one combined relative-addressing flag
// rather than the six independent relative/abs bits the packed source
// format defines per operand, so every constant operand in the same
// instruction shares it.
func vectorOperand(reg, swizzle uint32, isConst, negate, abs, relative bool) string {
	name := fmt.Sprintf("r[%d]", reg)
	if isConst {
		idx := fmt.Sprintf("%d", reg)
		if relative {
			idx += " + aL.x"
		}
		name = fmt.Sprintf("c[%s]", idx)
	}

	suffix := vectorSwizzle(swizzle)
	expr := name
	if suffix != "xyzw" {
		expr = fmt.Sprintf("%s.%s", name, suffix)
	}
	if abs {
		expr = fmt.Sprintf("abs(%s)", expr)
	}
	if negate {
		expr = fmt.Sprintf("-(%s)", expr)
	}
	return expr
}

// scalarLane builds one single-component source-operand expression:
// lane selects which of the operand's four components to read. The
// scalar half of a co-issued instruction reads two independently
// swizzled lanes of the same register (its one scalar source slot),
// packed as the low and next-low two-bit fields of Src3Swizzle.
func scalarLane(reg uint32, lane int, isConst, negate bool) string {
	const letters = "xyzw"
	name := fmt.Sprintf("r[%d]", reg)
	if isConst {
		name = fmt.Sprintf("c[%d]", reg)
	}
	expr := fmt.Sprintf("%s.%c", name, letters[lane&3])
	if negate {
		expr = fmt.Sprintf("-(%s)", expr)
	}
	return expr
}

func (st *bodyState) emitAlu(off int) {
	a := microcode.DecodeAlu(st.clauses, off)

	src1 := vectorOperand(a.Src1Reg, a.Src1Swizzle, a.Src1IsConst, a.Src1Negate, a.Src1Abs, a.IsRelative)
	src2 := vectorOperand(a.Src2Reg, a.Src2Swizzle, a.Src2IsConst, a.Src2Negate, a.Src2Abs, a.IsRelative)
	src3 := vectorOperand(a.Src3Reg, a.Src3Swizzle, a.Src3IsConst, a.Src3Negate, false, a.IsRelative)

	vectorMask := a.VectorWriteMask
	scalarMask := a.ScalarWriteMask
	overlapMask := uint32(0)
	bothExport := a.VectorDestIsExport && a.ScalarDestIsExport && a.VectorDest == a.ScalarDest
	if bothExport {
		overlapMask = vectorMask & scalarMask
		vectorMask &^= overlapMask
		scalarMask &^= overlapMask
	}

	if vectorMask != 0 {
		vexpr := st.vectorExpr(a, src1, src2, src3)
		if a.VectorClamp {
			vexpr = fmt.Sprintf("saturate(%s)", vexpr)
		}
		if a.VectorDestIsExport {
			st.emitExport(a, vexpr, vectorMask, true)
		} else {
			st.w.writeLine("r[%d] = applyMask(r[%d], %s, %#xU);", a.VectorDest, a.VectorDest, vexpr, vectorMask)
		}
	}

	lane0 := int(a.Src3Swizzle & 3)
	lane1 := int((a.Src3Swizzle >> 2) & 3)
	s0 := scalarLane(a.Src3Reg, lane0, a.Src3IsConst, a.Src3Negate)
	s1 := scalarLane(a.Src3Reg, lane1, a.Src3IsConst, a.Src3Negate)
	sconst := fmt.Sprintf("c[%d].x", a.ConstSlot)

	sexpr := st.scalarExpr(a, s0, s1, sconst)
	if a.ScalarClamp {
		sexpr = fmt.Sprintf("saturate(%s)", sexpr)
	}
	st.w.writeLine("ps = %s;", sexpr)

	if scalarMask != 0 {
		scalarVal := "float4(ps, ps, ps, ps)"
		if a.ScalarDestIsExport {
			st.emitExport(a, scalarVal, scalarMask, false)
		} else {
			st.w.writeLine("r[%d] = applyMask(r[%d], %s, %#xU);", a.ScalarDest, a.ScalarDest, scalarVal, scalarMask)
		}
	}

	if bothExport {
		// A write-mask bit targeted by both the vector and scalar halves
		// of an export_data instruction is a literal 1.0 write; a
		// relative destination additionally zero-fills whatever lanes
		// neither half wrote.
		if overlapMask != 0 {
			st.emitExport(a, "float4(1.0, 1.0, 1.0, 1.0)", overlapMask, true)
		}
		if a.IsRelative {
			if zeroMask := 0xF &^ (vectorMask | scalarMask | overlapMask); zeroMask != 0 {
				st.emitExport(a, "float4(0.0, 0.0, 0.0, 0.0)", zeroMask, true)
			}
		}
	}
}

// vectorExpr lowers the vector half of a co-issued ALU instruction.
// Setp*Push and Kill* opcodes emit a companion statement (a predicate
// assignment or a clip) ahead of the expression they also leave
// behind as their ordinary vector result.
func (st *bodyState) vectorExpr(a microcode.AluInstruction, src1, src2, src3 string) string {
	switch a.VectorOpcode {
	case microcode.VectorAdd:
		return fmt.Sprintf("(%s + %s)", src1, src2)
	case microcode.VectorMul:
		return fmt.Sprintf("(%s * %s)", src1, src2)
	case microcode.VectorMax:
		return fmt.Sprintf("max(%s, %s)", src1, src2)
	case microcode.VectorMin:
		return fmt.Sprintf("min(%s, %s)", src1, src2)
	case microcode.VectorSeq:
		return fmt.Sprintf("(float4)(%s == %s)", src1, src2)
	case microcode.VectorSgt:
		return fmt.Sprintf("(float4)(%s > %s)", src1, src2)
	case microcode.VectorSge:
		return fmt.Sprintf("(float4)(%s >= %s)", src1, src2)
	case microcode.VectorSne:
		return fmt.Sprintf("(float4)(%s != %s)", src1, src2)
	case microcode.VectorFrc:
		return fmt.Sprintf("frac(%s)", src1)
	case microcode.VectorTrunc:
		return fmt.Sprintf("trunc(%s)", src1)
	case microcode.VectorFloor:
		return fmt.Sprintf("floor(%s)", src1)
	case microcode.VectorMad:
		return fmt.Sprintf("(%s * %s + %s)", src1, src2, src3)
	case microcode.VectorCndEq:
		return fmt.Sprintf("(%s == 0.0 ? %s : %s)", src3, src1, src2)
	case microcode.VectorCndGe:
		return fmt.Sprintf("(%s >= 0.0 ? %s : %s)", src3, src1, src2)
	case microcode.VectorCndGt:
		return fmt.Sprintf("(%s > 0.0 ? %s : %s)", src3, src1, src2)
	case microcode.VectorDp4:
		return fmt.Sprintf("dot(%s, %s).xxxx", src1, src2)
	case microcode.VectorDp3:
		return fmt.Sprintf("dot(%s.xyz, %s.xyz).xxxx", src1, src2)
	case microcode.VectorDp2Add:
		return fmt.Sprintf("(dot(%s.xy, %s.xy) + %s).xxxx", src1, src2, src3)
	case microcode.VectorCube:
		return fmt.Sprintf("cube(%s, %s)", src1, src2)
	case microcode.VectorMax4:
		return fmt.Sprintf("max4(%s)", src1)
	case microcode.VectorSetpEqPush:
		st.w.writeLine("p0 = (%s.w == 0.0) && (%s.x == 0.0);", src1, src1)
		return fmt.Sprintf("((%s.w != 0.0) ? (%s.x + 1.0) : 0.0).xxxx", src1, src1)
	case microcode.VectorSetpNePush:
		st.w.writeLine("p0 = (%s.w == 0.0) && (%s.x != 0.0);", src1, src1)
		return fmt.Sprintf("((%s.w != 0.0) ? (%s.x + 1.0) : 0.0).xxxx", src1, src1)
	case microcode.VectorSetpGtPush:
		st.w.writeLine("p0 = (%s.w == 0.0) && (%s.x > 0.0);", src1, src1)
		return fmt.Sprintf("((%s.w != 0.0) ? (%s.x + 1.0) : 0.0).xxxx", src1, src1)
	case microcode.VectorSetpGePush:
		st.w.writeLine("p0 = (%s.w == 0.0) && (%s.x >= 0.0);", src1, src1)
		return fmt.Sprintf("((%s.w != 0.0) ? (%s.x + 1.0) : 0.0).xxxx", src1, src1)
	case microcode.VectorKillEq:
		st.w.writeLine("clip(any(%s == %s) ? -1 : 1);", src1, src2)
		return fmt.Sprintf("(float4)(%s == %s)", src1, src2)
	case microcode.VectorKillGt:
		st.w.writeLine("clip(any(%s > %s) ? -1 : 1);", src1, src2)
		return fmt.Sprintf("(float4)(%s > %s)", src1, src2)
	case microcode.VectorKillGe:
		st.w.writeLine("clip(any(%s >= %s) ? -1 : 1);", src1, src2)
		return fmt.Sprintf("(float4)(%s >= %s)", src1, src2)
	case microcode.VectorKillNe:
		st.w.writeLine("clip(any(%s != %s) ? -1 : 1);", src1, src2)
		return fmt.Sprintf("(float4)(%s != %s)", src1, src2)
	case microcode.VectorDst:
		return fmt.Sprintf("float4(1.0, %s.y * %s.y, %s.z, %s.w)", src1, src2, src1, src2)
	case microcode.VectorMaxA:
		st.w.writeLine("a0 = clamp((int)round(%s.w), -16, 16);", src1)
		return fmt.Sprintf("max(%s, %s)", src1, src2)
	default:
		return fmt.Sprintf("%s /* unhandled vector opcode %d */", src1, a.VectorOpcode)
	}
}

// scalarExpr lowers the scalar half of a co-issued ALU instruction.
// Setp* opcodes assign p0 ahead of their ordinary scalar result;
// MaxAs/MaxAsf additionally assign the address register.
func (st *bodyState) scalarExpr(a microcode.AluInstruction, s0, s1, sconst string) string {
	switch a.ScalarOpcode {
	case microcode.ScalarAdds:
		return fmt.Sprintf("(%s + %s)", s0, s1)
	case microcode.ScalarAddsPrev:
		return fmt.Sprintf("(%s + ps)", s0)
	case microcode.ScalarMuls:
		return fmt.Sprintf("(%s * %s)", s0, s1)
	case microcode.ScalarMulsPrev:
		return fmt.Sprintf("(%s * ps)", s0)
	case microcode.ScalarMulsPrev2:
		return fmt.Sprintf("((ps != 0.0 && %s > 0.0) ? (%s * ps) : 0.0)", s1, s0)
	case microcode.ScalarMaxs:
		return fmt.Sprintf("max(%s, %s)", s0, s1)
	case microcode.ScalarMins:
		return fmt.Sprintf("min(%s, %s)", s0, s1)
	case microcode.ScalarSeqs:
		return fmt.Sprintf("(%s == 0.0 ? 1.0 : 0.0)", s0)
	case microcode.ScalarSgts:
		return fmt.Sprintf("(%s > 0.0 ? 1.0 : 0.0)", s0)
	case microcode.ScalarSges:
		return fmt.Sprintf("(%s >= 0.0 ? 1.0 : 0.0)", s0)
	case microcode.ScalarSnes:
		return fmt.Sprintf("(%s != 0.0 ? 1.0 : 0.0)", s0)
	case microcode.ScalarFrcs:
		return fmt.Sprintf("frac(%s)", s0)
	case microcode.ScalarTruncs:
		return fmt.Sprintf("trunc(%s)", s0)
	case microcode.ScalarFloors:
		return fmt.Sprintf("floor(%s)", s0)
	case microcode.ScalarExp:
		return fmt.Sprintf("exp2(%s)", s0)
	case microcode.ScalarLogc:
		return fmt.Sprintf("max(log2(%s), -3.402823466e+38)", s0)
	case microcode.ScalarLog:
		return fmt.Sprintf("log2(%s)", s0)
	case microcode.ScalarRcpc:
		return fmt.Sprintf("clamp(rcp(%s), -3.402823466e+38, 3.402823466e+38)", s0)
	case microcode.ScalarRcpf:
		return fmt.Sprintf("(%s == 0.0 ? 0.0 : rcp(%s))", s0, s0)
	case microcode.ScalarRcp:
		return fmt.Sprintf("rcp(%s)", s0)
	case microcode.ScalarRsqc:
		return fmt.Sprintf("clamp(rsqrt(%s), -3.402823466e+38, 3.402823466e+38)", s0)
	case microcode.ScalarRsqf:
		return fmt.Sprintf("(%s <= 0.0 ? 0.0 : rsqrt(%s))", s0, s0)
	case microcode.ScalarRsq:
		return fmt.Sprintf("rsqrt(%s)", s0)
	case microcode.ScalarMaxAs:
		st.w.writeLine("a0 = clamp((int)round(%s), -16, 16);", s0)
		return fmt.Sprintf("max(%s, %s)", s0, s1)
	case microcode.ScalarMaxAsf:
		st.w.writeLine("a0 = clamp((int)floor(%s), -16, 16);", s0)
		return fmt.Sprintf("max(%s, %s)", s0, s1)
	case microcode.ScalarSubs:
		return fmt.Sprintf("(%s - %s)", s0, s1)
	case microcode.ScalarSubsPrev:
		return fmt.Sprintf("(ps - %s)", s0)
	case microcode.ScalarSetpEq:
		st.w.writeLine("p0 = (%s == 0.0);", s0)
		return fmt.Sprintf("(%s == 0.0 ? 0.0 : 1.0)", s0)
	case microcode.ScalarSetpNe:
		st.w.writeLine("p0 = (%s != 0.0);", s0)
		return fmt.Sprintf("(%s != 0.0 ? 0.0 : 1.0)", s0)
	case microcode.ScalarSetpGt:
		st.w.writeLine("p0 = (%s > 0.0);", s0)
		return fmt.Sprintf("(%s > 0.0 ? 0.0 : 1.0)", s0)
	case microcode.ScalarSetpGe:
		st.w.writeLine("p0 = (%s >= 0.0);", s0)
		return fmt.Sprintf("(%s >= 0.0 ? 0.0 : 1.0)", s0)
	case microcode.ScalarSetpInv:
		st.w.writeLine("p0 = (%s == 1.0);", s0)
		return fmt.Sprintf("(%s == 1.0 ? 0.0 : %s)", s0, s0)
	case microcode.ScalarSetpPop:
		st.w.writeLine("p0 = (%s <= 0.0);", s0)
		return fmt.Sprintf("max(%s - 1.0, 0.0)", s0)
	case microcode.ScalarSetpClr:
		st.w.writeLine("p0 = false;")
		return "3.402823466e+38"
	case microcode.ScalarSetpRstr:
		st.w.writeLine("p0 = (%s == 0.0);", s0)
		return s0
	case microcode.ScalarKillsEq:
		st.w.writeLine("clip(%s == 0.0 ? -1 : 1);", s0)
		return fmt.Sprintf("(%s == 0.0 ? 1.0 : 0.0)", s0)
	case microcode.ScalarKillsGt:
		st.w.writeLine("clip(%s > 0.0 ? -1 : 1);", s0)
		return fmt.Sprintf("(%s > 0.0 ? 1.0 : 0.0)", s0)
	case microcode.ScalarKillsGe:
		st.w.writeLine("clip(%s >= 0.0 ? -1 : 1);", s0)
		return fmt.Sprintf("(%s >= 0.0 ? 1.0 : 0.0)", s0)
	case microcode.ScalarKillsNe:
		st.w.writeLine("clip(%s != 0.0 ? -1 : 1);", s0)
		return fmt.Sprintf("(%s != 0.0 ? 1.0 : 0.0)", s0)
	case microcode.ScalarKillsOne:
		st.w.writeLine("clip(%s == 1.0 ? -1 : 1);", s0)
		return fmt.Sprintf("(%s == 1.0 ? 1.0 : 0.0)", s0)
	case microcode.ScalarSqrt:
		return fmt.Sprintf("sqrt(%s)", s0)
	case microcode.ScalarMulsc0, microcode.ScalarMulsc1:
		return fmt.Sprintf("(%s * %s)", s0, sconst)
	case microcode.ScalarAddsc0, microcode.ScalarAddsc1:
		return fmt.Sprintf("(%s + %s)", s0, sconst)
	case microcode.ScalarSubsc0, microcode.ScalarSubsc1:
		return fmt.Sprintf("(%s - %s)", s0, sconst)
	case microcode.ScalarSin:
		return fmt.Sprintf("sin(%s)", s0)
	case microcode.ScalarCos:
		return fmt.Sprintf("cos(%s)", s0)
	case microcode.ScalarRetainPrev:
		return "ps"
	default:
		return fmt.Sprintf("%s /* unhandled scalar opcode %d */", s0, a.ScalarOpcode)
	}
}

// emitExport routes a vector or scalar ALU result to its fixed
// destination: the narrow ExportReg field for the pixel-shader color/
// depth targets and the vertex-shader position/point-size targets,
// falling back to an interpolator-map lookup keyed by the export's
// general-register-shaped destination field for every other
// vertex-shader export.
func (st *bodyState) emitExport(a microcode.AluInstruction, expr string, mask uint32, isVector bool) {
	if st.in.IsPixelShader {
		switch a.ExportReg {
		case microcode.ExportColor0, microcode.ExportColor1, microcode.ExportColor2, microcode.ExportColor3:
			idx := a.ExportReg - microcode.ExportColor0
			st.w.writeLine("xe_color%d = applyMask(xe_color%d, %s, %#xU);", idx, idx, expr, mask)
		case microcode.ExportDepth:
			st.w.writeLine("xe_depth = %s.x;", expr)
		default:
			st.fail(xerr.Newf(xerr.MissingInterpolator, "pixel shader export targets unrecognized register %d", a.ExportReg))
		}
		return
	}

	switch a.ExportReg {
	case microcode.ExportPosition:
		st.w.writeLine("xe_position = applyMask(xe_position, %s, %#xU);", expr, mask)
		return
	case microcode.ExportPointSize:
		st.w.writeLine("xe_pointSize = %s.x;", expr)
		return
	}

	dest := a.VectorDest
	if !isVector {
		dest = a.ScalarDest
	}
	interp, ok := st.in.Interpolators[dest]
	if !ok {
		st.fail(xerr.Newf(xerr.MissingInterpolator, "vertex shader export references undeclared interpolator register %d", dest))
		return
	}
	st.w.writeLine("output.o%d = applyMask(output.o%d, %s, %#xU);", interp.Reg, interp.Reg, expr, mask)
}
