package util

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, path string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestEraseRemovesEverything(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "root")
	writeFile(t, filepath.Join(root, "a", "b"))
	writeFile(t, filepath.Join(root, "c"))

	if err := Erase(root); err != nil {
		t.Fatal(err)
	}
	if DirExists(root) {
		t.Fatal("root must be gone")
	}
}

func TestEraseKeepsExceptions(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "root")
	kept := writeFile(t, filepath.Join(root, "a", "keep"))
	writeFile(t, filepath.Join(root, "a", "drop"))
	writeFile(t, filepath.Join(root, "b", "drop"))

	if err := Erase(root, kept, root); err != nil {
		t.Fatal(err)
	}
	if !FileExists(kept) {
		t.Fatal("excepted file must survive")
	}
	if FileExists(filepath.Join(root, "a", "drop")) || DirExists(filepath.Join(root, "b")) {
		t.Fatal("everything else must be erased")
	}
}

func TestEraseKeepsRootWhenExcepted(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "root")
	writeFile(t, filepath.Join(root, "a"))

	if err := Erase(root, root); err != nil {
		t.Fatal(err)
	}
	if !DirExists(root) {
		t.Fatal("excepted root must survive")
	}
	if FileExists(filepath.Join(root, "a")) {
		t.Fatal("root contents must be erased")
	}
}

func TestEraseUnlinksSymlinks(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "root")
	target := writeFile(t, filepath.Join(dir, "target"))
	if err := os.MkdirAll(root, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(target, filepath.Join(root, "link")); err != nil {
		t.Fatal(err)
	}

	if err := Erase(root); err != nil {
		t.Fatal(err)
	}
	if !FileExists(target) {
		t.Fatal("symlink target must not be followed")
	}
}

func TestEraseMissingPath(t *testing.T) {
	if err := Erase(filepath.Join(t.TempDir(), "missing")); err != nil {
		t.Fatalf("erasing a missing path must be a no-op, got %s", err)
	}
}

func TestListFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "kernel", "main.S"))
	writeFile(t, filepath.Join(dir, "kernel", "boot.i386.S"))
	writeFile(t, filepath.Join(dir, "libc", "string.c"))

	files := ListFiles(dir)
	expected := []string{"kernel/boot.i386.S", "kernel/main.S", "libc/string.c"}
	if !reflect.DeepEqual(files, expected) {
		t.Fatalf("unexpected listing %v", files)
	}

	if got := ListFiles(filepath.Join(dir, "missing")); len(got) != 0 {
		t.Fatalf("missing root must yield an empty listing, got %v", got)
	}
}

func TestModTimeMissingFile(t *testing.T) {
	if !ModTime(filepath.Join(t.TempDir(), "missing")).IsZero() {
		t.Fatal("missing file must report the zero time")
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "src"))
	dest := filepath.Join(dir, "sub", "dest")
	if err := CopyFile(src, dest); err != nil {
		t.Fatal(err)
	}
	if !FileExists(dest) {
		t.Fatal("destination must exist")
	}
}

func TestYamlRoundTrip(t *testing.T) {
	type doc struct {
		Name  string   `yaml:"name"`
		Items []string `yaml:"items"`
	}
	path := filepath.Join(t.TempDir(), "doc.yaml")
	if err := WriteYaml(path, doc{Name: "a", Items: []string{"b", "c"}}); err != nil {
		t.Fatal(err)
	}
	var got doc
	if err := ReadYaml(path, &got); err != nil {
		t.Fatal(err)
	}
	if got.Name != "a" || len(got.Items) != 2 {
		t.Fatalf("unexpected round trip %+v", got)
	}
}
