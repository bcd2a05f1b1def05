// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package constants

import (
	"encoding/binary"
	"testing"

	"github.com/xenorecomp/xenorecomp/xerr"
)

func putU32(data []byte, off int, v uint32) {
	binary.BigEndian.PutUint32(data[off:off+4], v)
}

func putU16(data []byte, off int, v uint16) {
	binary.BigEndian.PutUint16(data[off:off+2], v)
}

func buildConstantTable(base uint32, regSet RegisterSet) []byte {
	data := make([]byte, 200)
	ctBase := int(base) + 4

	putU32(data, ctBase+12, 1)  // count
	putU32(data, ctBase+16, 20) // constantInfoOffset

	recOff := ctBase + 20
	putU32(data, recOff, 40) // nameOff relative to ctBase
	putU16(data, recOff+4, uint16(regSet))
	putU16(data, recOff+6, 3) // registerIndex
	putU16(data, recOff+8, 2) // registerCount

	copy(data[ctBase+40:], "myConst\x00")
	return data
}

func TestParseFloat4Table(t *testing.T) {
	data := buildConstantTable(0, SetFloat4)
	table, err := Parse(data, 0)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if len(table.Float4) != 2 {
		t.Fatalf("len(Float4) = %d, want 2 (registers 3 and 4)", len(table.Float4))
	}
	if table.Float4[3].Name != "myConst" || table.Float4[4].Name != "myConst" {
		t.Error("both registers should map to the same descriptor")
	}
	if !table.HasName("myConst") {
		t.Error("HasName(myConst) = false, want true")
	}
}

func TestParseBoolTable(t *testing.T) {
	data := buildConstantTable(0, SetBool)
	table, err := Parse(data, 0)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, ok := table.Bool[3]; !ok {
		t.Error("Bool[3] missing")
	}
}

func TestParseRejectsInt4(t *testing.T) {
	data := buildConstantTable(0, SetInt4)
	_, err := Parse(data, 0)
	if !xerr.Is(err, xerr.UnsupportedConstant) {
		t.Fatalf("err = %v, want UnsupportedConstant", err)
	}
}
