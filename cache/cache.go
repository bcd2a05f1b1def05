// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package cache builds and reads the on-disk shader cache: a header
// plus one Entry per recompiled shader, deduplicated by content hash,
// with the DXIL blob Zstandard-compressed and the SPIR-V blob
// SMOL-V-encoded then Zstandard-compressed.
package cache

import (
	"bytes"
	"context"
	"encoding/binary"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"

	"github.com/xenorecomp/xenorecomp/compile"
	"github.com/xenorecomp/xenorecomp/recompile"
	"github.com/xenorecomp/xenorecomp/smolv"
	"github.com/xenorecomp/xenorecomp/xerr"
)

// Entry describes one cached shader's location within the assembled
// cache file and the specialization-constant mask it was compiled
// with.
type Entry struct {
	Hash             uint64
	DXILOffset       uint32
	DXILSize         uint32
	SpirvOffset      uint32
	SpirvSize        uint32
	SpecConstantsMask uint32
}

const headerMagic = "XRC1"

// Source is one shader container's bytes together with its already
// recompiled HLSL; Build hashes Microcode to deduplicate identical
// shaders across a batch.
type Source struct {
	Microcode []byte
	EntryName string
	Recompile *recompile.Result
}

// Build deduplicates sources by content hash, compiles each distinct
// source's recompiled HLSL through dxc, and assembles the cache file: a
// header (magic, entry count) followed by the Entry table, followed by
// the concatenated compressed DXIL and SPIR-V blobs. Downstream
// compilation for distinct hashes runs concurrently; dxc is shared
// across all goroutines, so the Compiler implementation must be safe
// for concurrent use (spawning one subprocess per call, as DXC does,
// already satisfies this).
func Build(ctx context.Context, sources []Source, dxc compile.Compiler) ([]byte, error) {
	type job struct {
		hash   uint64
		source Source
	}

	seen := make(map[uint64]bool)
	var jobs []job
	for _, s := range sources {
		h := xxh3.Hash(s.Microcode)
		if seen[h] {
			continue
		}
		seen[h] = true
		jobs = append(jobs, job{hash: h, source: s})
	}

	results := make([]Entry, len(jobs))
	dxilBlobs := make([][]byte, len(jobs))
	spirvBlobs := make([][]byte, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex

	for i, j := range jobs {
		i, j := i, j
		g.Go(func() error {
			dxilRaw, err := dxc.Compile(gctx, j.source.Recompile.HLSL, compile.TargetDXIL, j.source.EntryName)
			if err != nil {
				return err
			}

			var spirvCompressed []byte
			if j.source.Recompile.HLSLSpirv != nil {
				spirvRaw, err := dxc.Compile(gctx, *j.source.Recompile.HLSLSpirv, compile.TargetSpirv, j.source.EntryName)
				if err != nil {
					return err
				}
				encoded, err := encodeSpirv(spirvRaw)
				if err != nil {
					return err
				}
				spirvCompressed, err = compressZstd(encoded)
				if err != nil {
					return err
				}
			}

			dxilCompressed, err := compressZstd(dxilRaw)
			if err != nil {
				return err
			}

			mu.Lock()
			dxilBlobs[i] = dxilCompressed
			spirvBlobs[i] = spirvCompressed
			results[i] = Entry{
				Hash:              j.hash,
				DXILSize:          uint32(len(dxilCompressed)),
				SpirvSize:         uint32(len(spirvCompressed)),
				SpecConstantsMask: uint32(j.source.Recompile.SpecConstants),
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return assemble(results, dxilBlobs, spirvBlobs)
}

func encodeSpirv(raw []byte) ([]byte, error) {
	words := make([]uint32, len(raw)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(raw[i*4:])
	}
	return smolv.Encode(words)
}

func compressZstd(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

func decompressZstd(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}

func assemble(entries []Entry, dxilBlobs, spirvBlobs [][]byte) ([]byte, error) {
	headerSize := 4 + 4
	entrySize := 8 + 4 + 4 + 4 + 4 + 4
	blobStart := headerSize + entrySize*len(entries)

	offset := uint32(blobStart)
	for i := range entries {
		entries[i].DXILOffset = offset
		offset += entries[i].DXILSize
		entries[i].SpirvOffset = offset
		offset += entries[i].SpirvSize
	}

	var buf bytes.Buffer
	buf.WriteString(headerMagic)
	binary.Write(&buf, binary.LittleEndian, uint32(len(entries)))

	for _, e := range entries {
		binary.Write(&buf, binary.LittleEndian, e.Hash)
		binary.Write(&buf, binary.LittleEndian, e.DXILOffset)
		binary.Write(&buf, binary.LittleEndian, e.DXILSize)
		binary.Write(&buf, binary.LittleEndian, e.SpirvOffset)
		binary.Write(&buf, binary.LittleEndian, e.SpirvSize)
		binary.Write(&buf, binary.LittleEndian, e.SpecConstantsMask)
	}

	for i := range entries {
		buf.Write(dxilBlobs[i])
		buf.Write(spirvBlobs[i])
	}

	return buf.Bytes(), nil
}

// Read parses a cache file's header and entry table without
// decompressing any blob, for callers that want to look up a single
// shader by hash before paying for decompression.
func Read(data []byte) ([]Entry, error) {
	if len(data) < 8 || string(data[0:4]) != headerMagic {
		return nil, xerr.New(xerr.BadContainer, "cache: bad magic")
	}
	count := binary.LittleEndian.Uint32(data[4:8])

	entries := make([]Entry, count)
	off := 8
	for i := range entries {
		entries[i] = Entry{
			Hash:              binary.LittleEndian.Uint64(data[off:]),
			DXILOffset:        binary.LittleEndian.Uint32(data[off+8:]),
			DXILSize:          binary.LittleEndian.Uint32(data[off+12:]),
			SpirvOffset:       binary.LittleEndian.Uint32(data[off+16:]),
			SpirvSize:         binary.LittleEndian.Uint32(data[off+20:]),
			SpecConstantsMask: binary.LittleEndian.Uint32(data[off+24:]),
		}
		off += 28
	}
	return entries, nil
}

// DXIL returns entry's decompressed DXIL blob from the assembled
// cache file data.
func DXIL(data []byte, e Entry) ([]byte, error) {
	return decompressZstd(data[e.DXILOffset : e.DXILOffset+e.DXILSize])
}

// Spirv returns entry's decompressed, SMOL-V-decoded SPIR-V words from
// the assembled cache file data.
func Spirv(data []byte, e Entry) ([]uint32, error) {
	if e.SpirvSize == 0 {
		return nil, nil
	}
	encoded, err := decompressZstd(data[e.SpirvOffset : e.SpirvOffset+e.SpirvSize])
	if err != nil {
		return nil, err
	}
	return smolv.Decode(encoded)
}
