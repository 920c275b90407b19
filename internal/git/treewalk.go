package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v72/github"

	"github.com/cchalm/scm-folders/internal/repopath"
	"github.com/cchalm/scm-folders/internal/tree"
)

// treeItem is one entry of a git tree with its full path. kind is the git object type: blob, tree or commit for
// submodules
type treeItem struct {
	path string
	mode string
	kind string
	sha  string
}

func (ti treeItem) isDir() bool {
	return ti.kind == "tree"
}

func (ti treeItem) entry() tree.Entry {
	return tree.Entry{Path: ti.path, Directory: ti.isDir()}
}

// treeSource answers questions about a base tree
type treeSource interface {
	// lookup returns the entry at path, or false if there is none
	lookup(ctx context.Context, path string) (treeItem, bool, error)
	// listRecursive returns every entry below the directory
	listRecursive(ctx context.Context, dir treeItem) ([]treeItem, error)
}

// treeWalker resolves paths in a git tree one directory level at a time. Only the directories on the way to the
// requested paths are listed, so the size of the repository does not matter
type treeWalker struct {
	git     *github.GitService
	owner   string
	repo    string
	rootSHA string

	listed map[string][]treeItem // Direct children by directory path
}

func newTreeWalker(gr *githubRepository, rootSHA string) *treeWalker {
	return &treeWalker{
		git:     gr.git,
		owner:   gr.ref.Namespace,
		repo:    gr.ref.Name,
		rootSHA: rootSHA,
		listed:  map[string][]treeItem{},
	}
}

func (w *treeWalker) lookup(ctx context.Context, path string) (treeItem, bool, error) {
	path = strings.TrimSuffix(path, "/")
	parent, _ := repopath.Split(path)

	siblings, ok, err := w.children(ctx, parent)
	if err != nil || !ok {
		return treeItem{}, false, err
	}
	for _, s := range siblings {
		if s.path == path {
			return s, true, nil
		}
	}
	return treeItem{}, false, nil
}

// children returns the direct children of the directory at dir. It returns false if dir is not a directory
func (w *treeWalker) children(ctx context.Context, dir string) ([]treeItem, bool, error) {
	if items, ok := w.listed[dir]; ok {
		return items, true, nil
	}

	sha := w.rootSHA
	if dir != "" {
		item, exists, err := w.lookup(ctx, dir)
		if err != nil {
			return nil, false, err
		}
		if !exists || !item.isDir() {
			return nil, false, nil
		}
		sha = item.sha
	}

	items, err := w.getTree(ctx, sha, false, dir)
	if err != nil {
		return nil, false, err
	}
	w.listed[dir] = items
	return items, true, nil
}

func (w *treeWalker) listRecursive(ctx context.Context, dir treeItem) ([]treeItem, error) {
	return w.getTree(ctx, dir.sha, true, dir.path)
}

func (w *treeWalker) getTree(ctx context.Context, sha string, recursive bool, prefix string) ([]treeItem, error) {
	t, _, err := w.git.GetTree(ctx, w.owner, w.repo, sha, recursive)
	if err != nil {
		return nil, fmt.Errorf("failed to get tree %s: %w", sha, err)
	}
	if t.GetTruncated() {
		return nil, fmt.Errorf("failed to list tree %s: %w", sha, ErrTreeTruncated)
	}

	items := make([]treeItem, 0, len(t.Entries))
	for _, e := range t.Entries {
		items = append(items, treeItem{
			path: repopath.Join(prefix, e.GetPath()),
			mode: e.GetMode(),
			kind: e.GetType(),
			sha:  e.GetSHA(),
		})
	}
	return items, nil
}
