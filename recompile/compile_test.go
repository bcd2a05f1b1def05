// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package recompile

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/xenorecomp/xenorecomp/constants"
	"github.com/xenorecomp/xenorecomp/container"
)

// emptyExecEndProgram is a one-slot control-flow stream: an immediate
// ExecEnd with zero co-issued instructions, alongside a Nop in the
// slot's other half. Built by hand-deriving the recombine48 packing
// for opcode CFExecEndOp (2) at bit 44 of the low 48-bit half.
func emptyExecEndProgram() []byte {
	data := make([]byte, 12)
	binary.BigEndian.PutUint32(data[0:4], 0)
	binary.BigEndian.PutUint32(data[4:8], 0x2000)
	binary.BigEndian.PutUint32(data[8:12], 0)
	return data
}

func TestCompileVertexShaderProducesHLSLAndSpirv(t *testing.T) {
	table := &constants.Table{
		Float4:  map[uint16]*constants.Info{},
		Bool:    map[uint16]*constants.Info{},
		Sampler: map[uint16]*constants.Info{},
	}
	vs := &container.VertexShader{}

	result, err := Compile(emptyExecEndProgram(), table, nil, vs, nil, nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	if !strings.Contains(result.HLSL, "VSOutput main(VSInput input)") {
		t.Errorf("HLSL missing entry point:\n%s", result.HLSL)
	}
	if result.HLSLSpirv == nil {
		t.Fatal("HLSLSpirv is nil, want populated by default options")
	}
	if !strings.Contains(*result.HLSLSpirv, "VSOutput main(VSInput input)") {
		t.Errorf("HLSLSpirv missing entry point:\n%s", *result.HLSLSpirv)
	}
}

func TestCompileRejectsMissingStage(t *testing.T) {
	table := &constants.Table{Float4: map[uint16]*constants.Info{}, Bool: map[uint16]*constants.Info{}, Sampler: map[uint16]*constants.Info{}}
	_, err := Compile(emptyExecEndProgram(), table, nil, nil, nil, nil)
	if err == nil {
		t.Fatal("expected error for neither vs nor ps")
	}
}

func TestCompilePixelShaderEmitsAlphaTestEpilogue(t *testing.T) {
	table := &constants.Table{Float4: map[uint16]*constants.Info{}, Bool: map[uint16]*constants.Info{}, Sampler: map[uint16]*constants.Info{}}
	ps := &container.PixelShader{Outputs: container.OutputColor0}

	result, err := Compile(emptyExecEndProgram(), table, nil, nil, ps, nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !strings.Contains(result.HLSL, "clip(xe_color0.w - g_AlphaThreshold)") {
		t.Errorf("HLSL missing alpha-test tail:\n%s", result.HLSL)
	}
	if result.SpecConstants&SpecAlphaTest == 0 {
		t.Errorf("SpecConstants = %v, want SpecAlphaTest set", result.SpecConstants)
	}
}

func TestCompileHonorsIncludeText(t *testing.T) {
	table := &constants.Table{Float4: map[uint16]*constants.Info{}, Bool: map[uint16]*constants.Info{}, Sampler: map[uint16]*constants.Info{}}
	vs := &container.VertexShader{}

	result, err := Compile(emptyExecEndProgram(), table, nil, vs, nil, &Options{Include: "// shared helpers\n"})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !strings.HasPrefix(result.HLSL, "// shared helpers\n") {
		t.Errorf("HLSL does not start with include text:\n%s", result.HLSL)
	}
}
