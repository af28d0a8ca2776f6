package cmd

import (
	"github.com/spf13/cobra"

	"github.com/vesper-os/forge/build"
	"github.com/vesper-os/forge/log"
	"github.com/vesper-os/forge/toolchain"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Args:  cobra.NoArgs,
	Short: "Compiles and links all artifacts for every declared platform.",
	Run:   runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) {
	ws := openWorkspace()
	tools := toolchain.New(ws)
	result := build.Compile(ws, tools)
	build.Link(ws, tools, result)
	log.Success("Build complete.\n")
}
