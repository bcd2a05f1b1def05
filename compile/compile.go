// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package compile drives the external downstream compilers (DXC for
// DXIL/SPIR-V, xcrun metal for AIR) that turn the HLSL/MSL text this
// module emits into the binary blobs a runtime actually loads.
package compile

import (
	"bytes"
	"context"
	"errors"
	"os/exec"

	"github.com/xenorecomp/xenorecomp/xerr"
)

// Target selects the binary format a Compiler produces.
type Target int

const (
	TargetDXIL Target = iota
	TargetSpirv
	TargetMetalLib
)

// Compiler turns shader source text into a binary blob for one
// Target. Implementations shell out to a real toolchain; Fake exists
// so callers can test the pipeline that wraps a Compiler without
// spawning a subprocess.
type Compiler interface {
	Compile(ctx context.Context, source string, target Target, entryPoint string) ([]byte, error)
}

// DXC drives the DirectX Shader Compiler binary to produce DXIL or,
// with -spirv, SPIR-V.
type DXC struct {
	// Path is the dxc executable; defaults to "dxc" on $PATH if empty.
	Path string
	// InvertY and UseDXLayout are SPIR-V-only flags: Vulkan's clip
	// space is Y-flipped relative to DirectX's, and SPIR-V's default
	// memory layout differs from HLSL's cbuffer packing, so compiling
	// the same HLSL text for SPIR-V needs -fvk-invert-y and
	// -fvk-use-dx-layout where the DXIL compile needs neither.
	InvertY     bool
	UseDXLayout bool
}

func (d *DXC) path() string {
	if d.Path != "" {
		return d.Path
	}
	return "dxc"
}

// Compile invokes dxc with -Fo pointed at a temp-free pipe via
// -Fo /dev/stdout semantics is not portable, so the implementation
// writes to a temp output path and reads it back.
func (d *DXC) Compile(ctx context.Context, source string, target Target, entryPoint string) ([]byte, error) {
	args := []string{"-T", "ps_6_0", "-E", entryPoint}
	switch target {
	case TargetSpirv:
		args = append(args, "-spirv")
		if d.InvertY {
			args = append(args, "-fvk-invert-y")
		}
		if d.UseDXLayout {
			args = append(args, "-fvk-use-dx-layout")
		}
	case TargetDXIL:
		// default DXIL output, no extra flags
	default:
		return nil, xerr.Newf(xerr.CompileFailed, "dxc: unsupported target %d", target)
	}

	return runToStdout(ctx, d.path(), args, source)
}

// Metal runs Apple's `xcrun metal` compiler driver once on MSL source
// read from stdin and returns its stdout; no separate `xcrun metallib`
// step runs.
type Metal struct {
	// XcrunPath is the xcrun executable; defaults to "xcrun" if empty.
	XcrunPath string
}

func (m *Metal) path() string {
	if m.XcrunPath != "" {
		return m.XcrunPath
	}
	return "xcrun"
}

func (m *Metal) Compile(ctx context.Context, source string, target Target, entryPoint string) ([]byte, error) {
	if target != TargetMetalLib {
		return nil, xerr.Newf(xerr.CompileFailed, "metal: unsupported target %d", target)
	}
	_ = entryPoint
	return runToStdout(ctx, m.path(), []string{"metal", "-x", "metal", "-o", "-", "-"}, source)
}

func runToStdout(ctx context.Context, name string, args []string, stdin string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = bytes.NewBufferString(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if isNotFound(err) {
			return nil, xerr.Newf(xerr.ToolNotFound, "%s: %v", name, err)
		}
		return nil, xerr.Newf(xerr.CompileFailed, "%s: %v: %s", name, err, stderr.String())
	}
	return stdout.Bytes(), nil
}

func isNotFound(err error) bool {
	var execErr *exec.Error
	return errors.As(err, &execErr)
}

// Fake is a Compiler that returns a fixed blob without invoking any
// external tool, for tests that exercise the cache builder's pipeline.
type Fake struct {
	Blob []byte
	Err  error
}

func (f *Fake) Compile(ctx context.Context, source string, target Target, entryPoint string) ([]byte, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Blob, nil
}
