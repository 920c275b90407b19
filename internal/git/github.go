package git

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/google/go-github/v72/github"

	"github.com/cchalm/scm-folders/internal/repopath"
	"github.com/cchalm/scm-folders/internal/repository"
	"github.com/cchalm/scm-folders/internal/tree"
)

var (
	ErrBranchNotFound   error = fmt.Errorf("branch not found")
	ErrRevisionNotFound error = fmt.Errorf("revision not found")
)

// githubRepositoryFactory opens sessions against repositories hosted on GitHub
type githubRepositoryFactory struct {
	git          *github.GitService          // For low-level git operations
	reposService *github.RepositoriesService // For high-level operations supported by the github API
}

// NewGithubRepositoryFactory creates a RepositoryFactory backed by the GitHub API
func NewGithubRepositoryFactory(client *github.Client) RepositoryFactory {
	return &githubRepositoryFactory{
		git:          client.Git,
		reposService: client.Repositories,
	}
}

// Create opens a session against the given repository. It fails with ErrRepositoryNotFound if the repository does not
// exist or is not visible with the client's credentials
func (grf *githubRepositoryFactory) Create(ctx context.Context, ref repository.Ref) (Repository, error) {
	repo, resp, err := grf.reposService.Get(ctx, ref.Namespace, ref.Name)
	if err != nil {
		if statusCode(resp) == http.StatusNotFound {
			return nil, fmt.Errorf("failed to get repository '%s': %w", ref, ErrRepositoryNotFound)
		}
		return nil, fmt.Errorf("failed to get repository '%s': %w", ref, err)
	}

	return &githubRepository{
		git:           grf.git,
		reposService:  grf.reposService,
		ref:           ref,
		defaultBranch: repo.GetDefaultBranch(),
	}, nil
}

// githubRepository implements Repository using the GitHub git data API. It manipulates the remote repository
// directly; commits appear on the remote without a push
type githubRepository struct {
	git          *github.GitService
	reposService *github.RepositoriesService

	ref           repository.Ref
	defaultBranch string
	closed        bool
}

func (gr *githubRepository) Ref() repository.Ref {
	return gr.ref
}

// Close ends the session. The GitHub client holds no per-repository resources, so this only invalidates the session
func (gr *githubRepository) Close() error {
	gr.closed = true
	return nil
}

func (gr *githubRepository) checkOpen() error {
	if gr.closed {
		return ErrClosed
	}
	return nil
}

func (gr *githubRepository) branchOrDefault(branch string) string {
	if branch == "" {
		return gr.defaultBranch
	}
	return branch
}

// Browse resolves the revision to a commit and returns the node at the requested path of that commit's tree
func (gr *githubRepository) Browse(ctx context.Context, req tree.BrowseRequest) (tree.Node, error) {
	if err := gr.checkOpen(); err != nil {
		return tree.Node{}, err
	}

	revision := gr.branchOrDefault(req.Revision)
	sha, resp, err := gr.reposService.GetCommitSHA1(ctx, gr.ref.Namespace, gr.ref.Name, revision, "")
	if err != nil {
		switch statusCode(resp) {
		case http.StatusConflict:
			return tree.Node{}, fmt.Errorf("failed to resolve revision '%s': %w", revision, ErrEmptyRepository)
		case http.StatusNotFound, http.StatusUnprocessableEntity:
			return tree.Node{}, fmt.Errorf("failed to resolve revision '%s': %w", revision, ErrRevisionNotFound)
		}
		return tree.Node{}, fmt.Errorf("failed to resolve revision '%s': %w", revision, err)
	}

	commit, _, err := gr.git.GetCommit(ctx, gr.ref.Namespace, gr.ref.Name, sha)
	if err != nil {
		return tree.Node{}, fmt.Errorf("failed to get commit: %w", err)
	}

	w := newTreeWalker(gr, commit.GetTree().GetSHA())
	path := strings.TrimSuffix(req.Path, "/")

	var entries []tree.Entry
	self := treeItem{kind: "tree", sha: w.rootSHA}
	if path != "" {
		item, exists, err := w.lookup(ctx, path)
		if err != nil {
			return tree.Node{}, err
		}
		if !exists {
			return tree.Node{}, fmt.Errorf("failed to find '%s': %w", path, tree.ErrNotFound)
		}
		self = item
		entries = append(entries, self.entry())
	}

	if self.isDir() {
		var children []treeItem
		if req.Recursive {
			children, err = w.listRecursive(ctx, self)
		} else {
			children, _, err = w.children(ctx, path)
		}
		if err != nil {
			return tree.Node{}, err
		}
		for _, child := range children {
			entries = append(entries, child.entry())
		}
	}

	return tree.Build(entries, path, req.Recursive)
}

// Modify commits the modification to its branch as a single commit. The branch reference is only fast-forwarded, so a
// concurrent commit to the same branch makes this fail instead of being overwritten
func (gr *githubRepository) Modify(ctx context.Context, m *Modification) (string, error) {
	if err := gr.checkOpen(); err != nil {
		return "", err
	}
	if m.IsEmpty() {
		return "", ErrEmptyModification
	}

	branch := gr.branchOrDefault(m.Branch())

	// Get the current branch reference
	ref, resp, err := gr.git.GetRef(ctx, gr.ref.Namespace, gr.ref.Name, fmt.Sprintf("refs/heads/%s", branch))
	if err != nil {
		switch statusCode(resp) {
		case http.StatusConflict:
			return "", fmt.Errorf("failed to get branch reference '%s': %w", branch, ErrEmptyRepository)
		case http.StatusNotFound:
			return "", fmt.Errorf("failed to get branch reference '%s': %w", branch, ErrBranchNotFound)
		}
		return "", fmt.Errorf("failed to get branch reference '%s': %w", branch, err)
	}

	headSHA := ref.GetObject().GetSHA()
	if expected := m.ExpectedRevision(); expected != "" && expected != headSHA {
		return "", fmt.Errorf("%w: branch '%s' is at %s, expected %s", ErrRevisionMismatch, branch, headSHA, expected)
	}

	// Get the commit object that the branch currently points to
	baseCommit, _, err := gr.git.GetCommit(ctx, gr.ref.Namespace, gr.ref.Name, headSHA)
	if err != nil {
		return "", fmt.Errorf("failed to get current commit: %w", err)
	}

	deletions, creations, err := planTreeChanges(ctx, newTreeWalker(gr, baseCommit.GetTree().GetSHA()), m)
	if err != nil {
		return "", err
	}

	var treeChangeEntries []*github.TreeEntry
	for _, deletion := range deletions {
		treeChangeEntries = append(treeChangeEntries, &github.TreeEntry{
			Path: github.Ptr(deletion.path),
			Mode: github.Ptr(deletion.mode),
			Type: github.Ptr(deletion.kind),
			SHA:  nil, // Nil SHA indicates delete
		})
	}

	for _, creation := range creations {
		createdBlob, _, err := gr.git.CreateBlob(ctx, gr.ref.Namespace, gr.ref.Name, &github.Blob{
			Content:  github.Ptr(base64.StdEncoding.EncodeToString(creation.Content)),
			Encoding: github.Ptr("base64"),
		})
		if err != nil {
			return "", fmt.Errorf("failed to create blob for %s: %w", creation.Path, err)
		}

		treeChangeEntries = append(treeChangeEntries, &github.TreeEntry{
			Path: github.Ptr(creation.Path),
			Mode: github.Ptr("100644"), // Regular file mode
			Type: github.Ptr("blob"),
			SHA:  createdBlob.SHA,
		})
	}

	newTree, _, err := gr.git.CreateTree(ctx, gr.ref.Namespace, gr.ref.Name, baseCommit.GetTree().GetSHA(), treeChangeEntries)
	if err != nil {
		return "", fmt.Errorf("failed to create tree: %w", err)
	}

	createdCommit, _, err := gr.git.CreateCommit(ctx, gr.ref.Namespace, gr.ref.Name, &github.Commit{
		Message: github.Ptr(m.CommitMessage()),
		Tree:    newTree,
		Parents: []*github.Commit{baseCommit},
	}, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create commit: %w", err)
	}

	// Update branch reference to point to new commit
	ref.Object.SHA = createdCommit.SHA
	_, resp, err = gr.git.UpdateRef(ctx, gr.ref.Namespace, gr.ref.Name, ref, false)
	if err != nil {
		if statusCode(resp) == http.StatusUnprocessableEntity {
			// Not a fast-forward: someone else committed to the branch since we read its head
			return "", fmt.Errorf("failed to update branch reference '%s': %w", branch, ErrRevisionMismatch)
		}
		return "", fmt.Errorf("failed to update branch reference '%s': %w", branch, err)
	}

	return createdCommit.GetSHA(), nil
}

// planTreeChanges validates the modification against the base tree. It returns the entries to delete, sorted by
// path, and the creations to write. A recursively deleted directory is removed as a whole unless a creation lands
// inside it, in which case only that directory is listed and its files are deleted one by one
func planTreeChanges(ctx context.Context, base treeSource, m *Modification) ([]treeItem, []FileCreation, error) {
	deleted := map[string]treeItem{}
	err := m.ForEachDeleted(func(d FileDeletion) error {
		item, exists, err := base.lookup(ctx, d.Path)
		if err != nil {
			return err
		}
		if !exists {
			return ErrPathNotFound
		}
		if item.isDir() && !d.Recursive {
			return fmt.Errorf("%w: '%s' is a directory and the deletion is not recursive", ErrPathConflict, d.Path)
		}
		deleted[item.path] = item
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	expand := map[string]struct{}{}
	created := map[string]struct{}{}
	var creations []FileCreation
	err = m.ForEachCreated(func(c FileCreation) error {
		path := strings.TrimSuffix(c.Path, "/")
		insideDeletedDir := false
		for parent, _ := repopath.Split(path); parent != ""; parent, _ = repopath.Split(parent) {
			if d, isDeleted := deleted[parent]; isDeleted {
				if d.isDir() {
					expand[parent] = struct{}{}
					insideDeletedDir = true
				}
				continue
			}
			item, exists, err := base.lookup(ctx, parent)
			if err != nil {
				return err
			}
			if exists && !item.isDir() {
				return fmt.Errorf("%w: '%s' is a file", ErrPathConflict, parent)
			}
		}

		item, exists, err := base.lookup(ctx, path)
		if err != nil {
			return err
		}
		_, isDeleted := deleted[path]
		if exists && item.isDir() {
			return fmt.Errorf("%w: '%s' is a directory", ErrPathConflict, path)
		}
		if exists && !isDeleted && !insideDeletedDir && !c.Overwrite {
			return ErrFileExists
		}

		// The creation supersedes a deletion of the same path
		delete(deleted, path)
		created[path] = struct{}{}
		creations = append(creations, c)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	for dir := range expand {
		d := deleted[dir]
		files, err := base.listRecursive(ctx, d)
		if err != nil {
			return nil, nil, err
		}
		delete(deleted, dir)
		for _, f := range files {
			if _, isCreated := created[f.path]; f.isDir() || isCreated {
				continue
			}
			deleted[f.path] = f
		}
	}

	deletions := make([]treeItem, 0, len(deleted))
	for path, item := range deleted {
		if !hasDeletedAncestor(deleted, path) {
			deletions = append(deletions, item)
		}
	}
	sort.Slice(deletions, func(i, j int) bool { return deletions[i].path < deletions[j].path })

	return deletions, creations, nil
}

func hasDeletedAncestor(deleted map[string]treeItem, path string) bool {
	for parent, _ := repopath.Split(path); parent != ""; parent, _ = repopath.Split(parent) {
		if d, ok := deleted[parent]; ok && d.isDir() {
			return true
		}
	}
	return false
}

// GetChangeset reads back a commit by id
func (gr *githubRepository) GetChangeset(ctx context.Context, branch string, id string) (*Changeset, error) {
	if err := gr.checkOpen(); err != nil {
		return nil, err
	}

	commit, _, err := gr.git.GetCommit(ctx, gr.ref.Namespace, gr.ref.Name, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get commit %s: %w", id, err)
	}

	author := commit.GetAuthor()
	return &Changeset{
		ID:          commit.GetSHA(),
		Date:        author.GetDate().Time,
		Author:      Person{Name: author.GetName(), Mail: author.GetEmail()},
		Description: commit.GetMessage(),
		Branches:    []string{gr.branchOrDefault(branch)},
	}, nil
}

// Branches lists all branch names of the repository
func (gr *githubRepository) Branches(ctx context.Context) ([]string, error) {
	if err := gr.checkOpen(); err != nil {
		return nil, err
	}

	var names []string
	opts := &github.BranchListOptions{ListOptions: github.ListOptions{PerPage: 100}}
	for {
		branches, resp, err := gr.reposService.ListBranches(ctx, gr.ref.Namespace, gr.ref.Name, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list branches: %w", err)
		}
		for _, b := range branches {
			names = append(names, b.GetName())
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return names, nil
}

func statusCode(resp *github.Response) int {
	if resp == nil || resp.Response == nil {
		return 0
	}
	return resp.StatusCode
}
