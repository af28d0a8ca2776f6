// Package toolchain bootstraps third-party tools from source: fetch, verify,
// unpack, configure, build, install. Each tool is built at most once per
// target triplet; an already installed executable resolves immediately.
package toolchain

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vesper-os/forge/log"
	"github.com/vesper-os/forge/manifest"
	"github.com/vesper-os/forge/util"
	"github.com/vesper-os/forge/workspace"
)

// Bootstrapper builds missing tools for one workspace.
type Bootstrapper struct {
	ws *workspace.Workspace
}

// New creates a bootstrapper for the given workspace.
func New(ws *workspace.Workspace) *Bootstrapper {
	return &Bootstrapper{ws: ws}
}

// InstalledPath returns where the named executable of the given target
// triplet is expected after installation. Host-native tools (empty triplet)
// drop the triplet prefix.
func (b *Bootstrapper) InstalledPath(executable, triplet string) string {
	name := executable
	if triplet != "" {
		name = triplet + "-" + executable
	}
	return filepath.Join(b.ws.ToolsBinDir(), name)
}

// Executable resolves the named executable for the given triplet,
// bootstrapping its tool first if it is not installed yet. Resolution
// failures are fatal: a build cannot proceed without its toolchain.
func (b *Bootstrapper) Executable(executable, triplet string) string {
	path := b.InstalledPath(executable, triplet)
	if util.FileExists(path) {
		return path
	}

	tool, err := b.ws.Manifest().ToolForExecutable(executable)
	if err != nil {
		log.Fatal("%s.\n", err)
	}
	if err := b.Ensure(tool, triplet); err != nil {
		log.Fatal("Failed to bootstrap tool '%s': %s.\n", tool.Name, err)
	}
	return path
}

// Ensure runs the bootstrap state machine for one (tool, triplet) pair:
// resolved -> unpack -> configure -> make/install -> cleanup.
func (b *Bootstrapper) Ensure(tool *manifest.Tool, triplet string) error {
	if b.resolved(tool, triplet) {
		log.Debug("Tool '%s' is already installed.\n", tool.Name)
		return nil
	}

	target := tool.Name
	if triplet != "" {
		target = fmt.Sprintf("%s for target '%s'", tool.Name, triplet)
	}
	log.Log("Bootstrapping %s.\n", target)
	log.IndentationLevel++
	defer func() { log.IndentationLevel-- }()

	srcDir := filepath.Join(b.ws.ToolsSrcDir(), tool.Name)
	if err := b.unpack(&tool.Package, srcDir); err != nil {
		return err
	}
	if err := b.build(tool, triplet, srcDir); err != nil {
		return err
	}

	// A finished tool invalidates the staging tree: later tools re-verify
	// their sources instead of trusting stale extracted state.
	if err := os.Remove(b.ledgerPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove the unpack ledger: %w", err)
	}
	if err := util.Erase(b.ws.ToolsSrcDir()); err != nil {
		return fmt.Errorf("failed to remove the package staging tree: %w", err)
	}

	log.Success("Tool '%s' is installed.\n", tool.Name)
	return nil
}

func (b *Bootstrapper) resolved(tool *manifest.Tool, triplet string) bool {
	for _, executable := range tool.Executables {
		if !util.FileExists(b.InstalledPath(executable, triplet)) {
			return false
		}
	}
	return true
}

// providesCompiler reports whether the tool itself installs a C or C++
// compiler. Such a tool must not receive CC/CXX overrides while being built.
func providesCompiler(tool *manifest.Tool) bool {
	for _, executable := range tool.Executables {
		switch executable {
		case "gcc", "g++", "cc", "c++", "clang", "clang++":
			return true
		}
	}
	return false
}

// hostCompiler returns CC/CXX overrides pointing at an already bootstrapped
// compiler for the triplet, or nothing if none is installed yet.
func (b *Bootstrapper) hostCompiler(triplet string) []string {
	env := []string{}
	if cc := b.InstalledPath("gcc", triplet); util.FileExists(cc) {
		env = append(env, "CC="+cc)
	}
	if cxx := b.InstalledPath("g++", triplet); util.FileExists(cxx) {
		env = append(env, "CXX="+cxx)
	}
	return env
}

func isGitURL(url string) bool {
	return strings.HasPrefix(url, "git+") || strings.HasSuffix(url, ".git")
}
