// Package workspace ties one build invocation to its on-disk layout. All
// engine components receive a Workspace instead of consulting global state,
// so tests can construct isolated instances.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vesper-os/forge/log"
	"github.com/vesper-os/forge/manifest"
	"github.com/vesper-os/forge/util"
)

// Workspace is the explicit context of one build invocation.
type Workspace struct {
	// Root is the directory containing the manifest.
	Root string
	// Force disables all freshness checks: output directories are wiped at
	// startup instead of being checked file by file.
	Force bool

	manifestPath string
	manifest     *manifest.Manifest
}

// FindRoot walks upwards from the working directory until it finds a
// directory containing `manifestName`.
func FindRoot(manifestName string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if util.FileExists(filepath.Join(dir, manifestName)) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no '%s' found in the current directory or any parent", manifestName)
		}
		dir = parent
	}
}

// Open creates a workspace rooted at `root`, reading the manifest from
// `manifestPath` on first use.
func Open(root, manifestPath string, force bool) *Workspace {
	if !filepath.IsAbs(manifestPath) {
		manifestPath = filepath.Join(root, manifestPath)
	}
	return &Workspace{Root: root, Force: force, manifestPath: manifestPath}
}

// Manifest returns the build manifest, loading and validating it exactly
// once. A manifest error is fatal before any build step runs.
func (ws *Workspace) Manifest() *manifest.Manifest {
	if ws.manifest == nil {
		m, err := manifest.Load(ws.manifestPath)
		if err != nil {
			log.Fatal("%s.\n", err)
		}
		ws.manifest = m
	}
	return ws.manifest
}

// SrcDir is the root of the operating system's source tree.
func (ws *Workspace) SrcDir() string {
	return filepath.Join(ws.Root, "src")
}

// LogDir receives the invocation log and harvested build logs.
func (ws *Workspace) LogDir() string {
	return filepath.Join(ws.Root, "logs")
}

// ObjRoot is the root of all object output directories.
func (ws *Workspace) ObjRoot() string {
	return filepath.Join(ws.Root, "obj")
}

// ObjDir is the object output directory of one platform.
func (ws *Workspace) ObjDir(platform string) string {
	return filepath.Join(ws.ObjRoot(), platform)
}

// BinRoot is the root of all linked artifact directories.
func (ws *Workspace) BinRoot() string {
	return filepath.Join(ws.Root, "bin")
}

// BinDir is the linked artifact directory of one platform.
func (ws *Workspace) BinDir(platform string) string {
	return filepath.Join(ws.BinRoot(), platform)
}

// ToolsDir is the installation prefix for bootstrapped tools.
func (ws *Workspace) ToolsDir() string {
	return filepath.Join(ws.Root, "tools")
}

// ToolsBinDir holds the installed executables of bootstrapped tools.
func (ws *Workspace) ToolsBinDir() string {
	return filepath.Join(ws.ToolsDir(), "bin")
}

// ToolsSrcDir is the staging tree packages are unpacked into.
func (ws *Workspace) ToolsSrcDir() string {
	return filepath.Join(ws.ToolsDir(), "src")
}

// ToolsBuildDir is the ephemeral build directory, wiped before each configure.
func (ws *Workspace) ToolsBuildDir() string {
	return filepath.Join(ws.ToolsDir(), "build")
}

// ReposDir caches downloaded package archives.
func (ws *Workspace) ReposDir() string {
	return filepath.Join(ws.ToolsDir(), "repos")
}

// GpgDir is the isolated home directory used for signature verification.
func (ws *Workspace) GpgDir() string {
	return filepath.Join(ws.ToolsDir(), "gpg")
}

// IncludeDirs resolves a platform's include directories against the source
// tree, platform-specific directories first.
func (ws *Workspace) IncludeDirs(platform *manifest.Platform) []string {
	dirs := make([]string, 0, len(platform.IncludeDirs))
	for _, dir := range platform.IncludeDirs {
		dirs = append(dirs, filepath.Join(ws.SrcDir(), dir))
	}
	return dirs
}

// InitLogDir recreates the log directory and installs the invocation log
// file as the log sink.
func (ws *Workspace) InitLogDir() {
	if err := util.Erase(ws.LogDir(), ws.LogDir()); err != nil {
		log.Fatal("Failed to clear log directory: %s.\n", err)
	}
	if err := util.MkdirAll(ws.LogDir()); err != nil {
		log.Fatal("%s.\n", err)
	}
	file, err := os.OpenFile(filepath.Join(ws.LogDir(), "forge.log"), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, util.FileMode)
	if err != nil {
		log.Fatal("Failed to create invocation log: %s.\n", err)
	}
	log.SetFile(file)
}
