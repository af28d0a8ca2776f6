package artifact

import (
	"math/rand"
	"reflect"
	"testing"
)

func TestGroupAndFlatten(t *testing.T) {
	tree := Group([]string{
		"kernel/a.o",
		"kernel/b.o",
		"libc/c.o",
	})

	flattened := tree.Flatten()
	expected := []string{"kernel", "kernel/a.o", "kernel/b.o", "libc", "libc/c.o"}
	if !reflect.DeepEqual(flattened, expected) {
		t.Fatalf("unexpected flattening %v", flattened)
	}

	leaves := tree.Leaves()
	expectedLeaves := []string{"kernel/a.o", "kernel/b.o", "libc/c.o"}
	if !reflect.DeepEqual(leaves, expectedLeaves) {
		t.Fatalf("unexpected leaves %v", leaves)
	}
}

func TestSubtreesAreLinkArtifacts(t *testing.T) {
	tree := Group([]string{
		"kernel/a.o",
		"kernel/b.o",
		"libc/c.o",
	})

	subtrees := tree.Subtrees()
	if len(subtrees) != 2 {
		t.Fatalf("expected two artifacts, got %d", len(subtrees))
	}
	if subtrees[0].Name != "kernel" || subtrees[1].Name != "libc" {
		t.Fatalf("unexpected artifact names %v, %v", subtrees[0].Name, subtrees[1].Name)
	}
	if !reflect.DeepEqual(subtrees[0].Tree.Leaves(), []string{"a.o", "b.o"}) {
		t.Fatalf("unexpected kernel objects %v", subtrees[0].Tree.Leaves())
	}
}

func TestFlattenIsDeterministic(t *testing.T) {
	paths := []string{
		"kernel/arch/boot.o",
		"kernel/main.o",
		"libc/string.o",
		"libc/stdio/printf.o",
		"drivers/uart.o",
	}

	reference := Group(paths).Flatten()
	shuffled := append([]string{}, paths...)
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		if got := Group(shuffled).Flatten(); !reflect.DeepEqual(got, reference) {
			t.Fatalf("flattening depends on input order: %v vs %v", got, reference)
		}
	}
}

func TestFlattenEmitsParentsBeforeChildren(t *testing.T) {
	tree := Group([]string{"a/b/c.o", "a/d.o"})
	expected := []string{"a", "a/b", "a/b/c.o", "a/d.o"}
	if got := tree.Flatten(); !reflect.DeepEqual(got, expected) {
		t.Fatalf("unexpected traversal order %v", got)
	}
}

func TestGroupMergesSharedPrefixes(t *testing.T) {
	tree := Group([]string{"a/b.o", "a/c.o", "a/b.o"})
	if got := tree.Leaves(); !reflect.DeepEqual(got, []string{"a/b.o", "a/c.o"}) {
		t.Fatalf("shared prefixes not merged: %v", got)
	}
}

func TestIsLeaf(t *testing.T) {
	tree := Group([]string{"kernel/main.o", "stray.o"})
	for _, subtree := range tree.Subtrees() {
		switch subtree.Name {
		case "kernel":
			if subtree.Tree.IsLeaf() {
				t.Fatal("a directory node must not be a leaf")
			}
		case "stray.o":
			if !subtree.Tree.IsLeaf() {
				t.Fatal("a file node must be a leaf")
			}
		default:
			t.Fatalf("unexpected subtree '%s'", subtree.Name)
		}
	}
}
