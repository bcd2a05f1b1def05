// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"testing"

	"github.com/xenorecomp/xenorecomp/compile"
	"github.com/xenorecomp/xenorecomp/recompile"
)

func TestBuildDeduplicatesByHash(t *testing.T) {
	hlsl := "float4 main() : SV_Target { return float4(1,1,1,1); }"
	sources := []Source{
		{Microcode: []byte("same"), EntryName: "main", Recompile: &recompile.Result{HLSL: hlsl}},
		{Microcode: []byte("same"), EntryName: "main", Recompile: &recompile.Result{HLSL: hlsl}},
		{Microcode: []byte("different"), EntryName: "main", Recompile: &recompile.Result{HLSL: hlsl}},
	}

	data, err := Build(context.Background(), sources, &compile.Fake{Blob: []byte("DXBC")})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	entries, err := Read(data)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
}

func TestBuildRoundTripsDXIL(t *testing.T) {
	sources := []Source{
		{Microcode: []byte("shader-a"), EntryName: "main", Recompile: &recompile.Result{HLSL: "..."}},
	}

	data, err := Build(context.Background(), sources, &compile.Fake{Blob: []byte("hello dxil")})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	entries, err := Read(data)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	blob, err := DXIL(data, entries[0])
	if err != nil {
		t.Fatalf("DXIL: %v", err)
	}
	if string(blob) != "hello dxil" {
		t.Errorf("DXIL blob = %q, want %q", blob, "hello dxil")
	}
}

func TestBuildPropagatesCompilerError(t *testing.T) {
	sources := []Source{
		{Microcode: []byte("shader-a"), EntryName: "main", Recompile: &recompile.Result{HLSL: "..."}},
	}

	wantErr := &testErr{}
	_, err := Build(context.Background(), sources, &compile.Fake{Err: wantErr})
	if err == nil {
		t.Fatal("expected error")
	}
}

type testErr struct{}

func (*testErr) Error() string { return "compile failed" }
