package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vesper-os/forge/log"
	"github.com/vesper-os/forge/runner"
	"github.com/vesper-os/forge/util"
)

var runArtifact string

var runCmd = &cobra.Command{
	Use:   "run <platform>",
	Args:  cobra.ExactArgs(1),
	Short: "Boots a platform's linked kernel in its declared emulator.",
	Run:   runRun,
}

func init() {
	runCmd.Flags().StringVar(&runArtifact, "artifact", "kernel", "Name of the linked artifact to boot")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) {
	ws := openWorkspace()
	platform := ws.Manifest().Platform(args[0])

	emulator := platform.Qemu
	if emulator == "" {
		emulator = "qemu-system-" + platform.Name
		log.Warning("Platform '%s' declares no emulator, defaulting to '%s'.\n", platform.Name, emulator)
	}

	kernel := filepath.Join(ws.BinDir(platform.Name), runArtifact)
	if !util.FileExists(kernel) {
		log.Fatal("Artifact '%s' has not been built for platform '%s'.\n", runArtifact, platform.Name)
	}

	qemuArgs := append([]string{}, platform.QemuParams...)
	qemuArgs = append(qemuArgs, "-kernel", kernel)
	if err := runner.Run(runner.Command{Name: emulator, Args: qemuArgs}); err != nil {
		log.Fatal("%s.\n", err)
	}
}
