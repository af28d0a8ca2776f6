// Package build drives compilation and linking across all declared
// platforms, one source file and one artifact at a time. Everything is
// incremental: up-to-date outputs are skipped, stale outputs are pruned.
package build

import (
	"path/filepath"
	"strings"

	"github.com/vesper-os/forge/log"
	"github.com/vesper-os/forge/runner"
	"github.com/vesper-os/forge/scanner"
	"github.com/vesper-os/forge/toolchain"
	"github.com/vesper-os/forge/util"
	"github.com/vesper-os/forge/workspace"
)

var sourceExtensions = map[string]bool{
	".c":   true,
	".cc":  true,
	".cpp": true,
	".s":   true,
	".S":   true,
}

const objectExtension = ".o"

// Result carries the per-platform object paths produced (or confirmed up to
// date) by the compile step, relative to each platform's object directory.
type Result struct {
	Objects map[string][]string
}

// Compile builds every eligible source file for every declared platform and
// prunes stale objects afterwards. It returns the expected object layout for
// the link step.
func Compile(ws *workspace.Workspace, tools *toolchain.Bootstrapper) *Result {
	mf := ws.Manifest()

	if ws.Force {
		if err := util.Erase(ws.ObjRoot(), ws.ObjRoot()); err != nil {
			log.Fatal("Failed to clear object directory: %s.\n", err)
		}
	}

	result := &Result{Objects: map[string][]string{}}
	expected := []string{}
	sources := util.ListFiles(ws.SrcDir())

	for _, platform := range mf.Platforms {
		log.Log("Compiling platform '%s'.\n", platform.Name)
		log.IndentationLevel++

		includes := scanner.New(ws.IncludeDirs(platform))
		compiler := ""

		for _, source := range sources {
			objectRel, eligible := objectPath(source, platform.Name, mf)
			if !eligible {
				continue
			}

			sourcePath := filepath.Join(ws.SrcDir(), source)
			objectAbs := filepath.Join(ws.ObjDir(platform.Name), objectRel)
			result.Objects[platform.Name] = append(result.Objects[platform.Name], objectRel)
			expected = append(expected, objectAbs)

			headers := includes.ResolveIncludes(sourcePath)
			if !NeedsUpdate(objectAbs, append([]string{sourcePath}, headers...)) {
				log.Debug("'%s' is up to date.\n", objectRel)
				continue
			}

			// The compiler is resolved lazily so a fully up-to-date platform
			// never triggers a toolchain bootstrap.
			if compiler == "" {
				compiler = tools.Executable(platform.Compiler, platform.Triplet)
			}
			if err := util.MkdirAll(filepath.Dir(objectAbs)); err != nil {
				log.Fatal("%s.\n", err)
			}

			log.Log("Compiling '%s'.\n", source)
			args := append([]string{}, platform.CompilerParams...)
			for _, include := range ws.IncludeDirs(platform) {
				args = append(args, "-I"+include)
			}
			args = append(args, "-c", "-o", objectAbs, sourcePath)
			if err := runner.Run(runner.Command{Name: compiler, Args: args}); err != nil {
				log.Fatal("%s.\n", err)
			}
		}

		log.IndentationLevel--
	}

	pruneStale(ws.ObjRoot(), expected)
	return result
}

// objectPath maps a source path to its object path relative to the
// platform's object directory. It reports false for files that are not
// sources or are pinned to a different platform through their secondary
// extension segment (e.g. 'boot.i386.S').
func objectPath(source, platform string, mf interface{ HasPlatform(string) bool }) (string, bool) {
	extension := filepath.Ext(source)
	if !sourceExtensions[extension] {
		return "", false
	}
	base := strings.TrimSuffix(source, extension)
	if secondary := strings.TrimPrefix(filepath.Ext(base), "."); secondary != "" && mf.HasPlatform(secondary) {
		if secondary != platform {
			return "", false
		}
		base = strings.TrimSuffix(base, "."+secondary)
	}
	return base + objectExtension, true
}

// pruneStale erases every file under `root` that is not an expected output
// of this run, along with directories emptied by the pruning.
func pruneStale(root string, expected []string) {
	if !util.DirExists(root) {
		return
	}
	if err := util.Erase(root, append(expected, root)...); err != nil {
		log.Fatal("Failed to prune stale outputs under '%s': %s.\n", root, err)
	}
}
