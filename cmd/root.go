package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vesper-os/forge/log"
	"github.com/vesper-os/forge/util"
	"github.com/vesper-os/forge/workspace"
)

var rootCmd = &cobra.Command{
	Use:   "forge",
	Short: "The build engine of the Vesper operating system",
	Long: `forge builds the operating system for every platform declared in the build
manifest. Missing cross toolchains are bootstrapped from source: downloaded,
cryptographically verified, configured and installed on demand.`,
}

var force bool
var manifestFile string

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.PersistentFlags().BoolVarP(&log.Verbose, "verbose", "v", false, "Print debug output")
	rootCmd.PersistentFlags().BoolVar(&force, "force", false, "Rebuild everything, ignoring output freshness")
	rootCmd.PersistentFlags().StringVar(&manifestFile, "manifest", util.ManifestFileName, "Name of the build manifest file")
	if rootCmd.Execute() != nil {
		os.Exit(1)
	}
}

// openWorkspace locates the workspace root, prepares the log directory and
// returns the build context every command works on.
func openWorkspace() *workspace.Workspace {
	root, err := workspace.FindRoot(manifestFile)
	if err != nil {
		log.Fatal("%s.\n", err)
	}
	log.Debug("Current workspace is '%s'.\n", root)
	ws := workspace.Open(root, manifestFile, force)
	ws.InitLogDir()
	return ws
}
