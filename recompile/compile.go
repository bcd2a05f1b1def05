// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package recompile

import (
	"github.com/xenorecomp/xenorecomp/constants"
	"github.com/xenorecomp/xenorecomp/container"
	"github.com/xenorecomp/xenorecomp/xerr"
)

// helperPreamble is emitted once at the top of every generated
// program: a bitwise write-mask helper the vector-op lowering relies
// on (HLSL has no direct "assign to an arbitrary subset of
// components" syntax) and a fetch destination-swizzle helper, since a
// vertex/texture fetch's per-lane swizzle can select constant 0/1
// lanes as well as source components.
const helperPreamble = `float4 applyMask(float4 dst, float4 src, uint mask)
{
    return float4(
        (mask & 1u) != 0 ? src.x : dst.x,
        (mask & 2u) != 0 ? src.y : dst.y,
        (mask & 4u) != 0 ? src.z : dst.z,
        (mask & 8u) != 0 ? src.w : dst.w);
}

float4 applyFetchSwizzle(float4 v, uint swz)
{
    float lane[4] = { v.x, v.y, v.z, v.w };
    float r[4];
    [unroll] for (int i = 0; i < 4; i++)
    {
        uint code = (swz >> (i * 3)) & 7u;
        r[i] = (code < 4) ? lane[code] : (code == 5 ? 1.0 : 0.0);
    }
    return float4(r[0], r[1], r[2], r[3]);
}

`

// Compile recompiles one shader's microcode into HLSL text for every
// dialect options requests. table and defs come from the container's
// constant and definition tables; vs xor ps selects the stage
// (exactly one must be non-nil).
func Compile(microcodeData []byte, table *constants.Table, defs *container.DefinitionTable, vs *container.VertexShader, ps *container.PixelShader, options *Options) (*Result, error) {
	if options == nil {
		options = DefaultOptions()
	}
	if vs == nil && ps == nil {
		return nil, xerr.New(xerr.BadContainer, "recompile: neither vertex nor pixel shader header supplied")
	}

	cfSlots := DecodeCFStream(microcodeData)
	shape := ClassifyShape(cfSlots)
	clauses := microcodeData[len(cfSlots)*12:]

	dxil, mask, err := renderDialect(DialectDXIL, table, defs, vs, ps, cfSlots, shape, clauses, options.Profile)
	if err != nil {
		return nil, err
	}
	dxil = options.Include + dxil

	result := &Result{HLSL: dxil, SpecConstants: mask}

	if options.EmitSpirvDialect {
		spirv, _, err := renderDialect(DialectSpirv, table, defs, vs, ps, cfSlots, shape, clauses, options.Profile)
		if err != nil {
			return nil, err
		}
		spirv = options.Include + spirv
		result.HLSLSpirv = &spirv
	}
	return result, nil
}

// vertexElementMap and interpolatorMap key the container's slice-typed
// tables by the register the body emitter looks them up by: a vertex
// element by its fetch-clause address, an interpolator by its
// export-clause destination register.
func vertexElementMap(vs *container.VertexShader) map[uint32]container.VertexElement {
	m := make(map[uint32]container.VertexElement, len(vs.VertexElements))
	for _, e := range vs.VertexElements {
		m[e.Address] = e
	}
	return m
}

func interpolatorMap(interpolators []container.Interpolator) map[uint32]container.Interpolator {
	m := make(map[uint32]container.Interpolator, len(interpolators))
	for _, i := range interpolators {
		m[i.Reg] = i
	}
	return m
}

func renderDialect(dialect Dialect, table *constants.Table, defs *container.DefinitionTable, vs *container.VertexShader, ps *container.PixelShader, cfSlots []CFSlot, shape Shape, clauses []byte, profile Profile) (string, SpecConstants, error) {
	w := &Writer{}
	w.write(helperPreamble)
	w.writeConstantDeclarations(dialect, table)

	if vs != nil {
		w.writeVertexIO(vs)
		w.writeLine("VSOutput main(VSInput input)")
		w.writeLine("{")
		w.pushIndent()
		w.writeLine("VSOutput output = (VSOutput)0;")
		w.writeLine("output.clipDistance = 1.0;")
		w.writeLine("float4 xe_position = float4(0, 0, 0, 1);")
		w.writeLine("float xe_pointSize = 0.0;")
		writeDefinitionLiterals(w, defs)

		in := BodyInput{
			IsPixelShader:  false,
			VertexElements: vertexElementMap(vs),
			Interpolators:  interpolatorMap(vs.Interpolators),
			Profile:        profile,
		}
		mask, err := EmitBody(w, cfSlots, shape, clauses, in)
		if err != nil {
			return "", 0, err
		}

		w.writeLine("output.position = xe_position;")
		if profile == ProfileUnleashedRecomp {
			w.writeLine("if (g_ClipPlaneEnabled) output.clipDistance = dot(output.position, g_ClipPlane);")
		}
		w.writeLine("output.position.xy += g_HalfPixelOffset * output.position.w;")
		w.writeLine("return output;")
		w.popIndent()
		w.writeLine("}")
		return w.String(), mask, nil
	}

	w.writePixelIO(ps)
	w.writeLine("PSOutput main(PSInput input)")
	w.writeLine("{")
	w.pushIndent()
	w.writeLine("PSOutput output = (PSOutput)0;")
	for i := 0; i < 4; i++ {
		w.writeLine("float4 xe_color%d = float4(0, 0, 0, 0);", i)
	}
	w.writeLine("float xe_depth = input.position.z;")
	writeDefinitionLiterals(w, defs)

	in := BodyInput{
		IsPixelShader:      true,
		SVPositionRegister: ps.SVPositionRegister(),
		Interpolators:      interpolatorMap(ps.Interpolators),
		Profile:            profile,
	}
	mask, err := EmitBody(w, cfSlots, shape, clauses, in)
	if err != nil {
		return "", 0, err
	}
	if ps.Outputs&container.OutputColor0 != 0 {
		mask |= SpecAlphaTest
		w.writeLine("[branch]")
		w.writeLine("if ((g_SpecConstants & %#xU) != 0)", uint32(SpecAlphaTest))
		w.writeLine("{")
		w.pushIndent()
		w.writeLine("clip(xe_color0.w - g_AlphaThreshold);")
		w.popIndent()
		if profile == ProfileUnleashedRecomp {
			w.writeLine("}")
			w.writeLine("else if ((g_SpecConstants & %#xU) != 0)", uint32(SpecAlphaToCoverage))
			w.writeLine("{")
			w.pushIndent()
			w.writeLine("xe_color0.w = (xe_color0.w - g_AlphaThreshold) / max(fwidth(xe_color0.w), 0.0001) + 0.5;")
			w.popIndent()
			w.writeLine("}")
			mask |= SpecAlphaToCoverage
		} else {
			w.writeLine("}")
		}
		w.writeLine("output.color0 = xe_color0;")
	}
	if ps.Outputs&container.OutputColor1 != 0 {
		w.writeLine("output.color1 = xe_color1;")
	}
	if ps.Outputs&container.OutputColor2 != 0 {
		w.writeLine("output.color2 = xe_color2;")
	}
	if ps.Outputs&container.OutputColor3 != 0 {
		w.writeLine("output.color3 = xe_color3;")
	}
	if ps.Outputs&container.OutputDepth != 0 {
		w.writeLine("output.depth = xe_depth;")
	}
	w.writeLine("return output;")
	w.popIndent()
	w.writeLine("}")
	return w.String(), mask, nil
}
