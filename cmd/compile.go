package cmd

import (
	"github.com/spf13/cobra"

	"github.com/vesper-os/forge/build"
	"github.com/vesper-os/forge/log"
	"github.com/vesper-os/forge/toolchain"
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Args:  cobra.NoArgs,
	Short: "Compiles all out-of-date source files for every declared platform.",
	Run:   runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)
}

func runCompile(cmd *cobra.Command, args []string) {
	ws := openWorkspace()
	build.Compile(ws, toolchain.New(ws))
	log.Success("Compilation complete.\n")
}
