// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package constants interprets a D3DX-style constant table embedded in
// a shader container, classifying each record into the float4, bool,
// and sampler register sets the emitter consumes.
package constants

import (
	"github.com/xenorecomp/xenorecomp/bitreader"
	"github.com/xenorecomp/xenorecomp/xerr"
)

// RegisterSet mirrors D3DXREGISTER_SET.
type RegisterSet uint16

const (
	SetBool RegisterSet = iota
	SetInt4
	SetFloat4
	SetSampler
)

// Info is one ConstantInfo record: a named, typed register range.
type Info struct {
	Name          string
	RegisterSet   RegisterSet
	RegisterIndex uint16
	RegisterCount uint16
}

// Table is the interpreted constant table: per-register lookup maps
// built from the raw ConstantInfo array.
type Table struct {
	// Float4 maps every register occupied by a multi-register float4
	// constant to the owning descriptor.
	Float4 map[uint16]*Info
	// Bool maps a bool constant's register index to its descriptor.
	Bool map[uint16]*Info
	// Sampler maps a sampler's register index to its descriptor.
	Sampler map[uint16]*Info

	// All is every non-Int4 record in declaration order, for declaration
	// emission that needs to walk the table in source order.
	All []*Info
}

// constantInfoSize is sizeof(ConstantInfo): name, registerSet,
// registerIndex, registerCount, reserved, typeInfo, defaultValue.
const constantInfoSize = 20

// Parse reads the ConstantTable at the container's constant-table
// offset and classifies every record.
//
// base is the byte offset of the ConstantTableContainer (i.e.
// c.ConstantTableOffset); data is the full container blob.
func Parse(data []byte, base uint32) (*Table, error) {
	// ConstantTableContainer: size (u32) followed by ConstantTable.
	tableBase := int(base) + 4
	constantTableData := data[tableBase:]

	count := bitreader.U32(constantTableData, 12)
	constantInfoOffset := bitreader.U32(constantTableData, 16)

	table := &Table{
		Float4:  make(map[uint16]*Info),
		Bool:    make(map[uint16]*Info),
		Sampler: make(map[uint16]*Info),
	}

	for i := uint32(0); i < count; i++ {
		recOff := int(constantInfoOffset) + int(i)*constantInfoSize
		nameOff := bitreader.U32(constantTableData, recOff)
		regSet := RegisterSet(bitreader.U16(constantTableData, recOff+4))
		regIndex := bitreader.U16(constantTableData, recOff+6)
		regCount := bitreader.U16(constantTableData, recOff+8)

		if regSet == SetInt4 {
			return nil, xerr.New(xerr.UnsupportedConstant, "constant table declares an Int4 register set")
		}

		info := &Info{
			Name:          bitreader.CString(constantTableData, int(nameOff)),
			RegisterSet:   regSet,
			RegisterIndex: regIndex,
			RegisterCount: regCount,
		}
		table.All = append(table.All, info)

		switch regSet {
		case SetFloat4:
			for r := regIndex; r < regIndex+regCount; r++ {
				table.Float4[r] = info
			}
		case SetBool:
			table.Bool[regIndex] = info
		case SetSampler:
			table.Sampler[regIndex] = info
		}
	}

	return table, nil
}

// HasName reports whether the table declares a constant with the
// given name. The recompile package does not call it.
func (t *Table) HasName(name string) bool {
	for _, info := range t.All {
		if info.Name == name {
			return true
		}
	}
	return false
}
