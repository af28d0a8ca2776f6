package build

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vesper-os/forge/toolchain"
	"github.com/vesper-os/forge/util"
	"github.com/vesper-os/forge/workspace"
)

func testWorkspace(t *testing.T, manifest string, force bool) *workspace.Workspace {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, util.ManifestFileName), []byte(manifest), 0644); err != nil {
		t.Fatal(err)
	}
	return workspace.Open(root, util.ManifestFileName, force)
}

func writeOutput(t *testing.T, path string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPruneStaleKeepsExpectedOutputs(t *testing.T) {
	root := filepath.Join(t.TempDir(), "obj")
	expected := writeOutput(t, filepath.Join(root, "i386", "kernel", "main.o"))
	stale := writeOutput(t, filepath.Join(root, "i386", "kernel", "old.o"))
	emptied := writeOutput(t, filepath.Join(root, "i386", "libc", "gone.o"))

	pruneStale(root, []string{expected})

	if !util.FileExists(expected) {
		t.Fatal("expected output must survive pruning")
	}
	if util.FileExists(stale) || util.FileExists(emptied) {
		t.Fatal("unregistered outputs must be pruned")
	}
	if util.DirExists(filepath.Dir(emptied)) {
		t.Fatal("directories emptied by pruning must be removed")
	}
	if !util.DirExists(root) {
		t.Fatal("the output root must survive pruning")
	}
}

func TestCompileForceWipesObjects(t *testing.T) {
	ws := testWorkspace(t, "platforms: []\n", true)
	stale := writeOutput(t, filepath.Join(ws.ObjDir("i386"), "kernel", "old.o"))

	Compile(ws, toolchain.New(ws))

	if util.FileExists(stale) {
		t.Fatal("force mode must wipe previous objects")
	}
}

func TestLinkForceWipesBinaries(t *testing.T) {
	ws := testWorkspace(t, "platforms: []\n", true)
	stale := writeOutput(t, filepath.Join(ws.BinDir("i386"), "kernel"))

	Link(ws, toolchain.New(ws), &Result{Objects: map[string][]string{}})

	if util.FileExists(stale) {
		t.Fatal("force mode must wipe previous binaries")
	}
}

func TestLinkSkipsObjectsOutsideArtifacts(t *testing.T) {
	ws := testWorkspace(t, `platforms:
  - name: i386
    triplet: i686-elf
`, false)

	// An object at the top of the object tree belongs to no artifact
	// directory. It must be skipped instead of producing a linker
	// invocation with no inputs.
	Link(ws, toolchain.New(ws), &Result{Objects: map[string][]string{"i386": {"stray.o"}}})

	if len(util.ListFiles(ws.BinRoot())) != 0 {
		t.Fatal("a stray top-level object must not produce an artifact")
	}
}
