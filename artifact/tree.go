// Package artifact groups a flat list of relative object paths into a
// directory tree. Each first-level subtree becomes one link target, and
// flattening a tree yields a deterministic ordering that callers rely on for
// reproducible linker argument lists.
package artifact

import (
	"sort"
	"strings"
)

// Tree is an ordered map of path segment to subtree. Leaves are files,
// inner nodes are directories.
type Tree struct {
	children map[string]*Tree
}

// Subtree is a named child of a tree node.
type Subtree struct {
	Name string
	Tree *Tree
}

// Group builds a tree from relative paths split on '/'. Shared prefixes are
// merged.
func Group(paths []string) *Tree {
	root := &Tree{children: map[string]*Tree{}}
	for _, path := range paths {
		node := root
		for _, segment := range strings.Split(path, "/") {
			if segment == "" {
				continue
			}
			child, exists := node.children[segment]
			if !exists {
				child = &Tree{children: map[string]*Tree{}}
				node.children[segment] = child
			}
			node = child
		}
	}
	return root
}

// IsLeaf reports whether the node has no children, i.e. represents a file.
func (t *Tree) IsLeaf() bool {
	return len(t.children) == 0
}

// Subtrees returns the first-level children in lexicographic order.
func (t *Tree) Subtrees() []Subtree {
	subtrees := make([]Subtree, 0, len(t.children))
	for _, name := range t.segments() {
		subtrees = append(subtrees, Subtree{Name: name, Tree: t.children[name]})
	}
	return subtrees
}

// Flatten returns the paths of all nodes, depth first, each node before its
// children and siblings in lexicographic order of their segment name.
func (t *Tree) Flatten() []string {
	return t.traverse(false)
}

// Leaves returns the paths of all leaf nodes (the files), in Flatten order.
func (t *Tree) Leaves() []string {
	return t.traverse(true)
}

type frame struct {
	path string
	node *Tree
}

func (t *Tree) traverse(leavesOnly bool) []string {
	paths := []string{}
	stack := []frame{}
	push := func(prefix string, node *Tree) {
		segments := node.segments()
		// Reversed so the lexicographically first sibling is popped first.
		for i := len(segments) - 1; i >= 0; i-- {
			path := segments[i]
			if prefix != "" {
				path = prefix + "/" + path
			}
			stack = append(stack, frame{path: path, node: node.children[segments[i]]})
		}
	}
	push("", t)
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !leavesOnly || len(current.node.children) == 0 {
			paths = append(paths, current.path)
		}
		push(current.path, current.node)
	}
	return paths
}

func (t *Tree) segments() []string {
	segments := make([]string, 0, len(t.children))
	for segment := range t.children {
		segments = append(segments, segment)
	}
	sort.Strings(segments)
	return segments
}
