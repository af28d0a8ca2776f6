package toolchain

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vesper-os/forge/config"
	"github.com/vesper-os/forge/log"
	"github.com/vesper-os/forge/manifest"
	"github.com/vesper-os/forge/runner"
	"github.com/vesper-os/forge/util"
)

// build configures, compiles and installs an unpacked tool inside the
// freshly wiped build directory. On any failure all *.log files under the
// build tree are harvested into the permanent log directory before the error
// propagates; they are the only diagnostic aid, there is no retry.
func (b *Bootstrapper) build(tool *manifest.Tool, triplet, srcDir string) error {
	buildDir := b.ws.ToolsBuildDir()
	if err := util.Erase(buildDir, buildDir); err != nil {
		return fmt.Errorf("failed to wipe build directory: %w", err)
	}
	if err := util.MkdirAll(buildDir); err != nil {
		return err
	}

	env := b.buildEnv(tool, triplet)
	if err := b.runBuildSteps(tool, triplet, srcDir, buildDir, env); err != nil {
		b.harvestLogs(buildDir)
		return err
	}
	return nil
}

func (b *Bootstrapper) runBuildSteps(tool *manifest.Tool, triplet, srcDir, buildDir string, env []string) error {
	configure, err := b.configureCommand(triplet, srcDir)
	if err != nil {
		return err
	}
	configure.Dir = buildDir
	configure.Env = env

	log.Log("Configuring '%s'.\n", tool.Name)
	if err := runner.Run(configure); err != nil {
		return err
	}

	jobs := fmt.Sprintf("-j%d", config.Get().Jobs)
	log.Log("Building '%s'.\n", tool.Name)
	if err := runner.Run(runner.Command{Name: "make", Args: []string{jobs}, Dir: buildDir, Env: env}); err != nil {
		return err
	}

	log.Log("Installing '%s'.\n", tool.Name)
	return runner.Run(runner.Command{Name: "make", Args: []string{"install"}, Dir: buildDir, Env: env})
}

// configureCommand probes the unpacked source tree for a supported build
// system: a CMake project file first, then an autotools configure script.
// Anything else is a manifest error.
func (b *Bootstrapper) configureCommand(triplet, srcDir string) (runner.Command, error) {
	prefix := b.ws.ToolsDir()

	if util.FileExists(filepath.Join(srcDir, "CMakeLists.txt")) {
		args := []string{
			"-DCMAKE_INSTALL_PREFIX=" + prefix,
			"-DCMAKE_SYSROOT=" + prefix,
			"-DCMAKE_INSTALL_LIBDIR=" + filepath.Join(prefix, "lib"),
		}
		if triplet != "" {
			args = append(args,
				"-DCMAKE_C_COMPILER_TARGET="+triplet,
				"-DCMAKE_CXX_COMPILER_TARGET="+triplet)
		}
		return runner.Command{Name: "cmake", Args: append(args, srcDir)}, nil
	}

	if util.FileExists(filepath.Join(srcDir, "configure")) {
		args := []string{
			"--prefix=" + prefix,
			"--with-sysroot=" + prefix,
			"--libdir=" + filepath.Join(prefix, "lib"),
		}
		if triplet != "" {
			args = append(args, "--target="+triplet)
		}
		return runner.Command{Name: filepath.Join(srcDir, "configure"), Args: args}, nil
	}

	return runner.Command{}, fmt.Errorf("unsupported build system in '%s': neither CMakeLists.txt nor configure found", srcDir)
}

// buildEnv assembles the environment of a tool's sub-build: the resolved
// compiler as CC/CXX (unless the tool being built is the compiler), the
// tool's declared overrides, on top of the inherited environment.
func (b *Bootstrapper) buildEnv(tool *manifest.Tool, triplet string) []string {
	env := []string{}
	if !providesCompiler(tool) {
		env = append(env, b.hostCompiler(triplet)...)
	}
	for _, variable := range tool.Env {
		env = append(env, variable.Variable+"="+variable.Value)
	}
	return env
}

// harvestLogs copies every *.log file found anywhere under the build tree
// into the permanent log directory, preserving relative paths.
func (b *Bootstrapper) harvestLogs(buildDir string) {
	harvested := 0
	filepath.Walk(buildDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() || !strings.HasSuffix(path, ".log") {
			return nil
		}
		rel, err := filepath.Rel(buildDir, path)
		if err != nil {
			return nil
		}
		if err := util.CopyFile(path, filepath.Join(b.ws.LogDir(), rel)); err != nil {
			log.Warning("Failed to harvest '%s': %s.\n", path, err)
			return nil
		}
		harvested++
		return nil
	})
	if harvested > 0 {
		log.Log("Collected %d build log(s) into '%s'.\n", harvested, b.ws.LogDir())
	}
}
