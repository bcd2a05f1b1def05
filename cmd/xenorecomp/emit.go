// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xenorecomp/xenorecomp/constants"
	"github.com/xenorecomp/xenorecomp/container"
	"github.com/xenorecomp/xenorecomp/recompile"
)

func newEmitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "emit <input> <output> <include>",
		Short: "Recompile a single shader container to HLSL text",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEmit(args[0], args[1], args[2])
		},
	}
}

func runEmit(inputPath, outputPath, includePath string) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	include, err := os.ReadFile(includePath)
	if err != nil {
		return fmt.Errorf("reading include: %w", err)
	}

	result, err := recompileContainer(data, string(include))
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, []byte(result.HLSL), 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// recompileContainer parses a single shader container and recompiles
// it per the command-line flags shared by every subcommand.
func recompileContainer(data []byte, include string) (*recompile.Result, error) {
	c, err := container.Parse(data)
	if err != nil {
		return nil, err
	}

	table, err := constants.Parse(c.Data, c.ConstantTableOffset)
	if err != nil {
		return nil, err
	}

	defs, err := c.ParseDefinitionTable()
	if err != nil {
		return nil, err
	}

	profile := recompile.ProfileGeneric
	if unleashedProfile {
		profile = recompile.ProfileUnleashedRecomp
	}

	options := &recompile.Options{
		EmitSpirvDialect: true,
		Include:          include,
		Profile:          profile,
	}

	var vs *container.VertexShader
	var ps *container.PixelShader
	var header container.ShaderHeader
	if c.IsVertexShader() {
		vs = c.ParseVertexShader()
		header = vs.ShaderHeader
	} else {
		ps = c.ParsePixelShader()
		header = ps.ShaderHeader
	}

	microcodeData := c.Microcode(header)
	result, err := recompile.Compile(microcodeData, table, defs, vs, ps, options)
	if err != nil {
		return nil, err
	}

	if spirvOnly {
		result.HLSL = *result.HLSLSpirv
	}
	return result, nil
}
