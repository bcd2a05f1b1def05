// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package bitreader decodes the big-endian scalars and bitfield-packed
// words the Xenos microcode format is built from. The container stores
// every 32-bit word big-endian; bitfields are then defined on the
// byte-swapped (native) value, so every reader here swaps first and
// masks second.
package bitreader

import "encoding/binary"

// U16 reads a big-endian uint16 at offset off.
func U16(data []byte, off int) uint16 {
	return binary.BigEndian.Uint16(data[off : off+2])
}

// U32 reads a big-endian uint32 at offset off.
func U32(data []byte, off int) uint32 {
	return binary.BigEndian.Uint32(data[off : off+4])
}

// U64 reads a big-endian uint64 at offset off.
func U64(data []byte, off int) uint64 {
	return binary.BigEndian.Uint64(data[off : off+8])
}

// CString reads a NUL-terminated string starting at offset off.
func CString(data []byte, off int) string {
	end := off
	for end < len(data) && data[end] != 0 {
		end++
	}
	return string(data[off:end])
}

// Field extracts a width-bit unsigned field starting at bit position
// shift (LSB-first) from a 32-bit word.
func Field(word uint32, shift, width uint) uint32 {
	return (word >> shift) & ((1 << width) - 1)
}

// SignedField extracts a width-bit two's-complement field starting at
// bit position shift and sign-extends it to int32.
func SignedField(word uint32, shift, width uint) int32 {
	v := Field(word, shift, width)
	signBit := uint32(1) << (width - 1)
	if v&signBit != 0 {
		v |= ^uint32(0) << width
	}
	return int32(v)
}

// Field64 extracts a width-bit unsigned field starting at bit position
// shift from a 48-bit control-flow word held in a uint64.
func Field64(word uint64, shift, width uint) uint32 {
	return uint32((word >> shift) & ((1 << width) - 1))
}
