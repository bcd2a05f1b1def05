// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package compile

import (
	"context"
	"errors"
	"testing"

	"github.com/xenorecomp/xenorecomp/xerr"
)

func TestFakeReturnsConfiguredBlob(t *testing.T) {
	f := &Fake{Blob: []byte{1, 2, 3}}
	got, err := f.Compile(context.Background(), "source", TargetDXIL, "main")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if string(got) != "\x01\x02\x03" {
		t.Errorf("Compile = %v, want [1 2 3]", got)
	}
}

func TestFakePropagatesError(t *testing.T) {
	want := errors.New("boom")
	f := &Fake{Err: want}
	_, err := f.Compile(context.Background(), "source", TargetDXIL, "main")
	if !errors.Is(err, want) {
		t.Fatalf("Compile err = %v, want %v", err, want)
	}
}

func TestDXCMissingToolReportsToolNotFound(t *testing.T) {
	d := &DXC{Path: "xenorecomp-dxc-definitely-does-not-exist"}
	_, err := d.Compile(context.Background(), "", TargetDXIL, "main")
	if err == nil {
		t.Fatal("expected error")
	}
	if !xerr.Is(err, xerr.ToolNotFound) {
		t.Errorf("expected a ToolNotFound error, got %v", err)
	}
}
