// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package smolv

import (
	"reflect"
	"testing"
)

func sampleModule() []uint32 {
	return []uint32{
		spirvMagic, 0x00010300, 0, 10, 0,
		uint32(1)<<16 | uint32(opFunctionEnd),
		uint32(2)<<16 | uint32(opLabel), 7,
		uint32(3)<<16 | uint32(opConstant), 7, 1234,
	}
}

func TestRoundTrip(t *testing.T) {
	original := sampleModule()

	encoded, err := Encode(original)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if !reflect.DeepEqual(original, decoded) {
		t.Fatalf("round trip mismatch:\n got  %#v\n want %#v", decoded, original)
	}
}

func TestEncodeRejectsBadMagic(t *testing.T) {
	if _, err := Encode([]uint32{0, 0, 0, 0, 0}); err == nil {
		t.Fatal("expected error for bad magic")
	}
}

func TestDecodeRejectsShortInput(t *testing.T) {
	if _, err := Decode([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for short input")
	}
}

func TestEncodeProducesSmallerOutputThanWords(t *testing.T) {
	original := sampleModule()
	encoded, err := Encode(original)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(encoded) >= len(original)*4 {
		t.Errorf("encoded size %d not smaller than raw word size %d", len(encoded), len(original)*4)
	}
}
