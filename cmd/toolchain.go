package cmd

import (
	"github.com/spf13/cobra"

	"github.com/vesper-os/forge/log"
	"github.com/vesper-os/forge/toolchain"
)

var toolchainPlatform string

var toolchainCmd = &cobra.Command{
	Use:   "toolchain <tool>",
	Args:  cobra.ExactArgs(1),
	Short: "Bootstraps a single declared tool from source.",
	Long: `Bootstraps a single tool declared in the manifest: its source packages are
downloaded, verified, unpacked and built. Without --platform the tool is
built for the host.`,
	Run: runToolchain,
}

func init() {
	toolchainCmd.Flags().StringVar(&toolchainPlatform, "platform", "", "Build the tool for this platform's target triplet")
	rootCmd.AddCommand(toolchainCmd)
}

func runToolchain(cmd *cobra.Command, args []string) {
	ws := openWorkspace()
	mf := ws.Manifest()

	triplet := ""
	if toolchainPlatform != "" {
		triplet = mf.Platform(toolchainPlatform).Triplet
	}

	tool := mf.Tool(args[0])
	if err := toolchain.New(ws).Ensure(tool, triplet); err != nil {
		log.Fatal("Failed to bootstrap tool '%s': %s.\n", tool.Name, err)
	}
}
