// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package recompile

import (
	"fmt"
	"sort"

	"github.com/xenorecomp/xenorecomp/constants"
	"github.com/xenorecomp/xenorecomp/container"
)

// usageSemantic maps a DeclUsage/usage-index pair to its HLSL
// semantic name.
var usageSemantic = map[container.DeclUsage]string{
	container.UsagePosition:     "POSITION",
	container.UsageBlendWeight:  "BLENDWEIGHT",
	container.UsageBlendIndices: "BLENDINDICES",
	container.UsageNormal:       "NORMAL",
	container.UsagePointSize:    "PSIZE",
	container.UsageTexCoord:     "TEXCOORD",
	container.UsageTangent:      "TANGENT",
	container.UsageBinormal:     "BINORMAL",
	container.UsageTessFactor:   "TESSFACTOR",
	container.UsagePositionT:    "POSITIONT",
	container.UsageColor:        "COLOR",
	container.UsageFog:          "FOG",
	container.UsageDepth:        "DEPTH",
	container.UsageSample:       "SAMPLE",
}

func semanticName(usage container.DeclUsage, index uint32) string {
	name, ok := usageSemantic[usage]
	if !ok {
		name = "TEXCOORD"
	}
	return fmt.Sprintf("%s%d", name, index)
}

// writeConstantDeclarations emits the cbuffer holding the whole flat
// constant register file plus the shared per-draw state the body
// emitter's termination epilogue and fetch lowering reference, then
// one Texture2D/SamplerState pair per sampler register. Bool constants
// pack into a single dword following the source format's BOOL_CONSTANTS
// layout, bit i + 16 for a pixel-shader read of the same bool address
// (see condExpr).
func (w *Writer) writeConstantDeclarations(dialect Dialect, table *constants.Table) {
	w.writeLine("cbuffer XenosConstants : register(b0)")
	w.writeLine("{")
	w.pushIndent()
	w.writeLine("float4 g_Constants[256];")
	w.writeLine("uint g_Booleans;")
	w.writeLine("float g_AlphaThreshold;")
	w.writeLine("float4 g_ClipPlane;")
	w.writeLine("bool g_ClipPlaneEnabled;")
	w.writeLine("float2 g_HalfPixelOffset;")
	w.writeLine("uint g_SwappedNormals;")
	w.writeLine("uint g_SwappedTangents;")
	w.writeLine("uint g_SwappedBinormals;")
	w.writeLine("uint g_SwappedBlendWeights;")
	w.writeLine("uint g_SwappedTexcoords;")
	w.writeLine("uint g_SpecConstants;")
	w.popIndent()
	w.writeLine("};")
	w.write("\n")

	samplerRegs := make([]uint16, 0, len(table.Sampler))
	for reg := range table.Sampler {
		samplerRegs = append(samplerRegs, reg)
	}
	sort.Slice(samplerRegs, func(i, j int) bool { return samplerRegs[i] < samplerRegs[j] })

	for _, reg := range samplerRegs {
		if dialect == DialectSpirv {
			w.writeLine("[[vk::binding(%d, 1)]] Texture2D g_texture%d;", reg, reg)
			w.writeLine("[[vk::binding(%d, 2)]] SamplerState g_sampler%d;", reg, reg)
		} else {
			w.writeLine("Texture2D g_texture%d : register(t%d);", reg, reg)
			w.writeLine("SamplerState g_sampler%d : register(s%d);", reg, reg)
		}
	}
	if len(samplerRegs) > 0 {
		w.write("\n")
	}
}

// writeVertexIO emits the vertex-shader input struct (one field per
// vertex element, bound by usage semantic) and the output struct (one
// field per interpolator, plus SV_Position).
func (w *Writer) writeVertexIO(vs *container.VertexShader) {
	w.writeLine("struct VSInput")
	w.writeLine("{")
	w.pushIndent()
	for _, elem := range vs.VertexElements {
		w.writeLine("float4 v%d : %s;", elem.Address, semanticName(elem.Usage, elem.UsageIndex))
	}
	w.writeLine("uint vertexIndex : SV_VertexID;")
	w.writeLine("uint instanceIndex : SV_InstanceID;")
	w.popIndent()
	w.writeLine("};")
	w.write("\n")

	w.writeLine("struct VSOutput")
	w.writeLine("{")
	w.pushIndent()
	w.writeLine("float4 position : SV_Position;")
	for _, interp := range vs.Interpolators {
		w.writeLine("float4 o%d : %s;", interp.Reg, semanticName(interp.Usage, interp.UsageIndex))
	}
	w.writeLine("float clipDistance : SV_ClipDistance0;")
	w.popIndent()
	w.writeLine("};")
	w.write("\n")
}

// writePixelIO emits the pixel-shader input struct (SV_Position plus
// one field per interpolator, bound to the register the vertex stage
// assigned it) and the output struct (one SV_TargetN per set output
// bit, plus SV_Depth when OutputDepth is set).
func (w *Writer) writePixelIO(ps *container.PixelShader) {
	w.writeLine("struct PSInput")
	w.writeLine("{")
	w.pushIndent()
	w.writeLine("float4 position : SV_Position;")
	for _, interp := range ps.Interpolators {
		w.writeLine("float4 v%d : %s;", interp.Reg, semanticName(interp.Usage, interp.UsageIndex))
	}
	w.popIndent()
	w.writeLine("};")
	w.write("\n")

	w.writeLine("struct PSOutput")
	w.writeLine("{")
	w.pushIndent()
	targets := []struct {
		bit  container.PixelShaderOutputs
		name string
	}{
		{container.OutputColor0, "SV_Target0"},
		{container.OutputColor1, "SV_Target1"},
		{container.OutputColor2, "SV_Target2"},
		{container.OutputColor3, "SV_Target3"},
	}
	for i, t := range targets {
		if ps.Outputs&t.bit != 0 {
			w.writeLine("float4 color%d : %s;", i, t.name)
		}
	}
	if ps.Outputs&container.OutputDepth != 0 {
		w.writeLine("float depth : SV_Depth;")
	}
	w.popIndent()
	w.writeLine("};")
	w.write("\n")
}
