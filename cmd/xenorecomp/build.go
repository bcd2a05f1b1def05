// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/edsrzf/mmap-go"
	"github.com/spf13/cobra"

	"github.com/xenorecomp/xenorecomp/cache"
	"github.com/xenorecomp/xenorecomp/compile"
)

func newBuildCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "build <input-dir> <output> <include>",
		Short: "Recompile every shader container in a directory into an assembled cache file",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), args[0], args[1], args[2])
		},
	}
}

func runBuild(ctx context.Context, inputDir, outputPath, includePath string) error {
	include, err := os.ReadFile(includePath)
	if err != nil {
		return fmt.Errorf("reading include: %w", err)
	}

	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return fmt.Errorf("reading input directory: %w", err)
	}

	var sources []cache.Source
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		path := filepath.Join(inputDir, entry.Name())
		data, closeMapping, err := mapFile(path)
		if err != nil {
			return fmt.Errorf("mapping %s: %w", path, err)
		}

		result, err := recompileContainer(data, string(include))
		containerBytes := bytes.Clone(data)
		closeErr := closeMapping()
		if err != nil {
			return fmt.Errorf("recompiling %s: %w", path, err)
		}
		if closeErr != nil {
			return fmt.Errorf("unmapping %s: %w", path, closeErr)
		}

		sources = append(sources, cache.Source{
			Microcode: containerBytes,
			EntryName: "main",
			Recompile: result,
		})
	}

	// cache.Build always compiles through DXC: the assembled cache only
	// has slots for DXIL and SPIR-V.
	compiler := &compile.DXC{Path: dxcPath}

	assembled, err := cache.Build(ctx, sources, compiler)
	if err != nil {
		return fmt.Errorf("building cache: %w", err)
	}

	if err := os.WriteFile(outputPath, assembled, 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// mapFile memory-maps path read-only, handing the caller a byte slice
// backed directly by the page cache rather than a heap copy. The slice
// is valid only until closeFn is called; runBuild keeps a heap copy of
// each container's bytes for cache.Build's content hash.
func mapFile(path string) (data []byte, closeFn func() error, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if info.Size() == 0 {
		f.Close()
		return nil, func() error { return nil }, nil
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, nil, err
	}

	return m, func() error {
		unmapErr := m.Unmap()
		closeErr := f.Close()
		if unmapErr != nil {
			return unmapErr
		}
		return closeErr
	}, nil
}
