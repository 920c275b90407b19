// Package tree provides read-only snapshots of a repository's file tree at a revision.
package tree

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cchalm/scm-folders/internal/repopath"
)

var (
	ErrNotFound error = fmt.Errorf("path not found")
)

// Node is one entry in a repository tree at some revision. Children are only populated for directories, sorted by
// name, and only as deep as the browse that produced the node
type Node struct {
	Path      string
	Name      string
	Directory bool
	Children  []Node
}

// BrowseRequest describes a tree lookup. An empty Revision means the head of the default branch
type BrowseRequest struct {
	Revision  string
	Path      string
	Recursive bool
}

// IsRoot returns true if the node is the repository root
func (n Node) IsRoot() bool {
	return n.Path == ""
}

// ParentPath returns the path of the directory containing the node
func (n Node) ParentPath() string {
	parent, _ := repopath.Split(n.Path)
	return parent
}

// Child returns the direct child with the given name
func (n Node) Child(name string) (Node, bool) {
	for _, child := range n.Children {
		if child.Name == name {
			return child, true
		}
	}
	return Node{}, false
}

// Entry is one item of a flat tree listing with its full path
type Entry struct {
	Path      string
	Directory bool
}

// Build builds the node at path from a flat listing that contains the node itself and the entries below it. If recursive is false only the
// direct children of the node are populated. Returns ErrNotFound if path does not appear in the listing
func Build(entries []Entry, path string, recursive bool) (Node, error) {
	path = strings.TrimSuffix(path, "/")

	var root Node
	if path == "" {
		root = Node{Path: "", Name: "", Directory: true}
	} else {
		found := false
		for _, e := range entries {
			if e.Path == path {
				_, name := repopath.Split(path)
				root = Node{Path: path, Name: name, Directory: e.Directory}
				found = true
				break
			}
		}
		if !found {
			return Node{}, fmt.Errorf("failed to find '%s': %w", path, ErrNotFound)
		}
	}

	if !root.Directory {
		return root, nil
	}

	// Group entries by parent directory, restricted to the subtree below the requested node
	byParent := map[string][]Entry{}
	for _, e := range entries {
		if !repopath.IsAncestor(path, e.Path) {
			continue
		}
		parent, _ := repopath.Split(e.Path)
		if !recursive && parent != path {
			continue
		}
		byParent[parent] = append(byParent[parent], e)
	}

	return populate(root, byParent), nil
}

func populate(node Node, byParent map[string][]Entry) Node {
	children := byParent[node.Path]
	if len(children) == 0 {
		return node
	}

	sort.Slice(children, func(i, j int) bool { return children[i].Path < children[j].Path })

	node.Children = make([]Node, 0, len(children))
	for _, e := range children {
		_, name := repopath.Split(e.Path)
		child := Node{Path: e.Path, Name: name, Directory: e.Directory}
		if child.Directory {
			child = populate(child, byParent)
		}
		node.Children = append(node.Children, child)
	}
	return node
}
