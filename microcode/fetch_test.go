// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package microcode

import (
	"encoding/binary"
	"testing"
)

func wordsToBytes(words ...uint32) []byte {
	data := make([]byte, len(words)*4)
	for i, w := range words {
		binary.BigEndian.PutUint32(data[i*4:], w)
	}
	return data
}

func TestDecodeVertexFetch(t *testing.T) {
	// opcode=FetchVertex(0), srcRegister=5, dstRegister=7, constIndex=2
	word0 := uint32(0) | 5<<5 | 7<<12 | 2<<20
	data := wordsToBytes(word0, 0, 0)

	f := DecodeVertexFetch(data, 0)
	if f.Opcode != FetchVertex {
		t.Errorf("Opcode = %v, want FetchVertex", f.Opcode)
	}
	if f.SrcRegister != 5 || f.DstRegister != 7 || f.ConstIndex != 2 {
		t.Errorf("got Src=%d Dst=%d Const=%d, want 5,7,2", f.SrcRegister, f.DstRegister, f.ConstIndex)
	}
}

func TestFetchOpcodeOf(t *testing.T) {
	data := wordsToBytes(uint32(FetchTexture), 0, 0)
	if got := FetchOpcodeOf(data, 0); got != FetchTexture {
		t.Errorf("FetchOpcodeOf = %v, want FetchTexture", got)
	}
}

func TestDestSwizzle(t *testing.T) {
	// lane 0 -> X(0), lane 1 -> Y(1), lane 2 -> Zero(4)
	mask := uint32(0) | 0<<0 | 1<<3 | 4<<6
	if got := DestSwizzle(mask, 0); got != SwizzleX {
		t.Errorf("lane0 = %v, want SwizzleX", got)
	}
	if got := DestSwizzle(mask, 1); got != SwizzleY {
		t.Errorf("lane1 = %v, want SwizzleY", got)
	}
	if got := DestSwizzle(mask, 2); got != SwizzleZero {
		t.Errorf("lane2 = %v, want SwizzleZero", got)
	}
}
