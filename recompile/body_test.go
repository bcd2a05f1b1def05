// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package recompile

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/xenorecomp/xenorecomp/container"
	"github.com/xenorecomp/xenorecomp/microcode"
	"github.com/xenorecomp/xenorecomp/xerr"
)

func TestVectorSwizzleIsDeltaEncoded(t *testing.T) {
	if got := vectorSwizzle(0); got != "xyzw" {
		t.Errorf("vectorSwizzle(0) = %q, want xyzw", got)
	}
	if got := vectorSwizzle(0xFF); got != "wxyz" {
		t.Errorf("vectorSwizzle(0xFF) = %q, want wxyz", got)
	}
}

func TestVectorOperandAppliesAbsThenNegate(t *testing.T) {
	got := vectorOperand(5, 0xFF, false, true, true, false)
	want := "-(abs(r[5].wxyz))"
	if got != want {
		t.Errorf("vectorOperand = %q, want %q", got, want)
	}
}

func TestVectorOperandRelativeConstant(t *testing.T) {
	got := vectorOperand(3, 0, true, false, false, true)
	want := "c[3 + aL.x]"
	if got != want {
		t.Errorf("vectorOperand = %q, want %q", got, want)
	}
}

func TestScalarLaneNegate(t *testing.T) {
	got := scalarLane(2, 2, false, true)
	want := "-(r[2].z)"
	if got != want {
		t.Errorf("scalarLane = %q, want %q", got, want)
	}
}

func TestCondExprBoolBitPosition(t *testing.T) {
	vs := &bodyState{in: BodyInput{IsPixelShader: false}}
	if got := vs.condExpr(5, true, false); got != "(g_Booleans & (1u << 5U)) != 0" {
		t.Errorf("vs condExpr = %q", got)
	}

	ps := &bodyState{in: BodyInput{IsPixelShader: true}}
	if got := ps.condExpr(5, true, false); got != "(g_Booleans & (1u << 21U)) != 0" {
		t.Errorf("ps condExpr = %q, want bit 21 (5 + 16)", got)
	}
}

// vertexFetchClause builds one 96-bit vertex-fetch clause word with
// opcode FetchVertex (0) and the given source register, matching
// DecodeVertexFetch's field layout (word0 bits[5:11)).
func vertexFetchClause(srcRegister uint32) []byte {
	data := make([]byte, 12)
	word0 := srcRegister << 5
	binary.BigEndian.PutUint32(data[0:4], word0)
	return data
}

func TestEmitBodyReportsMissingVertexElement(t *testing.T) {
	slots := []CFSlot{
		{Low: microcode.Exec{Address: 0, Count: 1, Sequence: 1}, High: microcode.Nop{}},
	}
	w := &Writer{}
	_, err := EmitBody(w, slots, Structured, vertexFetchClause(5), BodyInput{
		VertexElements: map[uint32]container.VertexElement{},
	})
	if !xerr.Is(err, xerr.MissingVertexElement) {
		t.Fatalf("EmitBody error = %v, want MissingVertexElement", err)
	}
}

func TestEmitBodyRegisterInit(t *testing.T) {
	w := &Writer{}
	mask, err := EmitBody(w, nil, Structured, nil, BodyInput{IsPixelShader: true, SVPositionRegister: 3})
	if err != nil {
		t.Fatalf("EmitBody: %v", err)
	}
	if mask != 0 {
		t.Errorf("mask = %v, want 0 for an empty body", mask)
	}
	out := w.String()
	if !strings.Contains(out, "r[3] = input.position;") {
		t.Errorf("missing SV_Position prefill:\n%s", out)
	}
	if !strings.Contains(out, "float4 c[256] = g_Constants;") {
		t.Errorf("missing constant file copy:\n%s", out)
	}
}
