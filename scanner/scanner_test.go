package scanner

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestResolveQuotedRelativeToIncluder(t *testing.T) {
	dir := t.TempDir()
	header := writeFile(t, filepath.Join(dir, "kernel", "kernel.hpp"), "")
	source := writeFile(t, filepath.Join(dir, "kernel", "main.cpp"), "#include \"kernel.hpp\"\n")

	headers := New(nil).ResolveIncludes(source)
	if !reflect.DeepEqual(headers, []string{header}) {
		t.Fatalf("unexpected headers %v", headers)
	}
}

func TestResolveAngleBracketSearchesIncludeDirsInOrder(t *testing.T) {
	dir := t.TempDir()
	platformInclude := filepath.Join(dir, "include", "i386")
	genericInclude := filepath.Join(dir, "include")
	// The same header name exists in both directories; the platform-specific
	// one must win because its directory is declared first.
	platformHeader := writeFile(t, filepath.Join(platformInclude, "stdint.h"), "")
	writeFile(t, filepath.Join(genericInclude, "stdint.h"), "")
	source := writeFile(t, filepath.Join(dir, "main.cpp"), "#include <stdint.h>\n")

	headers := New([]string{platformInclude, genericInclude}).ResolveIncludes(source)
	if !reflect.DeepEqual(headers, []string{platformHeader}) {
		t.Fatalf("unexpected headers %v", headers)
	}
}

func TestResolveTransitiveClosure(t *testing.T) {
	dir := t.TempDir()
	include := filepath.Join(dir, "include")
	a := writeFile(t, filepath.Join(include, "a.h"), "#include <b.h>\n")
	b := writeFile(t, filepath.Join(include, "b.h"), "#include <c.h>\n")
	c := writeFile(t, filepath.Join(include, "c.h"), "")
	source := writeFile(t, filepath.Join(dir, "main.cpp"), "#include <a.h>\n")

	headers := New([]string{include}).ResolveIncludes(source)
	if !reflect.DeepEqual(headers, []string{a, b, c}) {
		t.Fatalf("unexpected closure %v", headers)
	}
}

func TestResolveBreaksIncludeCycles(t *testing.T) {
	dir := t.TempDir()
	include := filepath.Join(dir, "include")
	a := writeFile(t, filepath.Join(include, "a.h"), "#include <b.h>\n")
	b := writeFile(t, filepath.Join(include, "b.h"), "#include <a.h>\n")
	source := writeFile(t, filepath.Join(dir, "main.cpp"), "#include <a.h>\n")

	headers := New([]string{include}).ResolveIncludes(source)
	// Resolution must terminate and list each header exactly once.
	if !reflect.DeepEqual(headers, []string{a, b}) {
		t.Fatalf("unexpected closure %v", headers)
	}
}

func TestResolveSkipsUnresolvableIncludes(t *testing.T) {
	dir := t.TempDir()
	source := writeFile(t, filepath.Join(dir, "main.cpp"), "#include <no_such_header.h>\n")

	headers := New(nil).ResolveIncludes(source)
	if len(headers) != 0 {
		t.Fatalf("unresolvable include must be skipped, got %v", headers)
	}
}

func TestResolveIsMemoized(t *testing.T) {
	dir := t.TempDir()
	include := filepath.Join(dir, "include")
	writeFile(t, filepath.Join(include, "a.h"), "")
	source := writeFile(t, filepath.Join(dir, "main.cpp"), "#include <a.h>\n")

	scanner := New([]string{include})
	first := scanner.ResolveIncludes(source)

	// Even if the source changes on disk, the memoized result is returned
	// for the rest of the scanner's lifetime.
	writeFile(t, source, "#include <a.h>\n#include <a.h>\n")
	second := scanner.ResolveIncludes(source)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("resolution is not memoized: %v vs %v", first, second)
	}
}
