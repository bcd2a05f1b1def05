// Command xenorecomp recompiles Xenos shader containers into HLSL and,
// optionally, SPIR-V-via-HLSL text, and assembles a downstream-compiled
// shader cache from a directory of containers.
//
// Usage:
//
//	xenorecomp emit <input> <output> <include>
//	xenorecomp build <input-dir> <output> <include>
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	spirvOnly        bool
	dxcPath          string
	xcrunPath        string
	unleashedProfile bool
)

func main() {
	root := &cobra.Command{
		Use:   "xenorecomp",
		Short: "Recompile Xenos shader containers into HLSL",
	}

	root.PersistentFlags().BoolVar(&spirvOnly, "spirv-only", false, "skip the DXIL dialect, emit only SPIR-V-targeted HLSL")
	root.PersistentFlags().StringVar(&dxcPath, "dxc-path", "", "path to the dxc executable (default: dxc on $PATH)")
	root.PersistentFlags().StringVar(&xcrunPath, "xcrun-path", "", "path to the xcrun executable (default: xcrun on $PATH)")
	root.PersistentFlags().BoolVar(&unleashedProfile, "unleashed-profile", false, "enable the Unleashed Recompiled title profile (bicubic GI filter, alpha-to-coverage, clip plane)")

	root.AddCommand(newEmitCommand())
	root.AddCommand(newBuildCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
