package cmd

import (
	"github.com/spf13/cobra"

	"github.com/vesper-os/forge/log"
	"github.com/vesper-os/forge/util"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Args:  cobra.NoArgs,
	Short: "Removes all build outputs, logs and the ephemeral toolchain build tree.",
	Run:   runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) {
	ws := openWorkspace()
	for _, dir := range []string{ws.ObjRoot(), ws.BinRoot(), ws.LogDir(), ws.ToolsBuildDir()} {
		if err := util.Erase(dir); err != nil {
			log.Fatal("Failed to remove '%s': %s.\n", dir, err)
		}
		log.Debug("Removed '%s'.\n", dir)
	}
	log.Success("Workspace is clean.\n")
}
