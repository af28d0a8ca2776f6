package build

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/vesper-os/forge/artifact"
	"github.com/vesper-os/forge/log"
	"github.com/vesper-os/forge/runner"
	"github.com/vesper-os/forge/toolchain"
	"github.com/vesper-os/forge/util"
	"github.com/vesper-os/forge/workspace"
)

// linkerScriptName is the linker script picked up by convention from the
// source directory corresponding to an artifact.
const linkerScriptName = "link.ld"

// Link groups each platform's objects into per-directory artifacts and links
// every artifact that is out of date, then prunes stale binaries and map
// files.
func Link(ws *workspace.Workspace, tools *toolchain.Bootstrapper, compiled *Result) {
	mf := ws.Manifest()

	if ws.Force {
		if err := util.Erase(ws.BinRoot(), ws.BinRoot()); err != nil {
			log.Fatal("Failed to clear binary directory: %s.\n", err)
		}
	}

	expected := []string{}

	for _, platform := range mf.Platforms {
		log.Log("Linking platform '%s'.\n", platform.Name)
		log.IndentationLevel++

		tree := artifact.Group(compiled.Objects[platform.Name])
		linker := ""

		for _, subtree := range tree.Subtrees() {
			if subtree.Tree.IsLeaf() {
				log.Warning("Object '%s' sits outside any artifact directory, skipping.\n", subtree.Name)
				continue
			}
			output := filepath.Join(ws.BinDir(platform.Name), subtree.Name)
			mapFile := output + ".map"
			expected = append(expected, output, mapFile)

			objects := []string{}
			for _, leaf := range subtree.Tree.Leaves() {
				objects = append(objects, filepath.Join(ws.ObjDir(platform.Name), subtree.Name, leaf))
			}

			inputs := objects
			script := filepath.Join(ws.SrcDir(), subtree.Name, linkerScriptName)
			if util.FileExists(script) {
				inputs = append(inputs, script)
			} else {
				script = ""
			}

			if !NeedsUpdate(output, inputs) {
				log.Debug("'%s' is up to date.\n", subtree.Name)
				continue
			}

			if linker == "" {
				linker = tools.Executable(platform.Linker, platform.Triplet)
			}
			if err := util.MkdirAll(filepath.Dir(output)); err != nil {
				log.Fatal("%s.\n", err)
			}

			log.Log("Linking '%s'.\n", subtree.Name)
			args := []string{"-o", output, "-Map", mapFile, "-nostdlib", "-s"}
			for _, symbol := range platform.LinkerSymbols {
				args = append(args, "--defsym", symbol.Name+"="+symbol.Value)
			}
			if script != "" {
				checkLinkerScript(script)
				args = append(args, "-T", script)
			}
			args = append(args, objects...)
			if err := runner.Run(runner.Command{Name: linker, Args: args}); err != nil {
				log.Fatal("%s.\n", err)
			}
		}

		log.IndentationLevel--
	}

	pruneStale(ws.BinRoot(), expected)
}

// checkLinkerScript rejects scripts using the INPUT directive: it would add
// link inputs behind the engine's back and break both artifact grouping and
// stale-output pruning.
func checkLinkerScript(script string) {
	content, err := os.ReadFile(script)
	if err != nil {
		log.Fatal("Failed to read linker script '%s': %s.\n", script, err)
	}
	if strings.Contains(string(content), "INPUT(") {
		log.Fatal("Linker script '%s' uses the unsupported INPUT(...) directive.\n", script)
	}
}
