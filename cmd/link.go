package cmd

import (
	"github.com/spf13/cobra"

	"github.com/vesper-os/forge/build"
	"github.com/vesper-os/forge/log"
	"github.com/vesper-os/forge/toolchain"
)

var linkCmd = &cobra.Command{
	Use:   "link",
	Args:  cobra.NoArgs,
	Short: "Links all artifacts, compiling out-of-date objects first.",
	Run:   runLink,
}

func init() {
	rootCmd.AddCommand(linkCmd)
}

func runLink(cmd *cobra.Command, args []string) {
	ws := openWorkspace()
	tools := toolchain.New(ws)
	// Linking consumes the object layout computed by the compile step, which
	// is cheap when everything is up to date.
	result := build.Compile(ws, tools)
	build.Link(ws, tools, result)
	log.Success("Linking complete.\n")
}
