package folder

import (
	"context"
	"fmt"

	"github.com/cchalm/scm-folders/internal/git"
	"github.com/cchalm/scm-folders/internal/guard"
	"github.com/cchalm/scm-folders/internal/permission"
	"github.com/cchalm/scm-folders/internal/repopath"
	"github.com/cchalm/scm-folders/internal/repository"
	"github.com/cchalm/scm-folders/internal/tree"
)

var heartOfGold = repository.Ref{Namespace: "hitchhiker", Name: "HeartOfGold"}

type changesetRequest struct {
	branch string
	id     string
}

// fakeRepository serves browse results from a fixed set of nodes and records every modification
type fakeRepository struct {
	nodes     map[string]tree.Node
	branches  []string
	browseErr error
	modifyErr error
	commitID  string

	browses           []tree.BrowseRequest
	modifications     []*git.Modification
	changesetRequests []changesetRequest
	closed            bool
}

func newFakeRepository(nodes ...tree.Node) *fakeRepository {
	fr := &fakeRepository{nodes: map[string]tree.Node{}, commitID: "1337"}
	for _, n := range nodes {
		fr.nodes[n.Path] = n
	}
	return fr
}

func (fr *fakeRepository) Ref() repository.Ref {
	return heartOfGold
}

func (fr *fakeRepository) Browse(_ context.Context, req tree.BrowseRequest) (tree.Node, error) {
	fr.browses = append(fr.browses, req)
	if fr.browseErr != nil {
		return tree.Node{}, fr.browseErr
	}
	node, ok := fr.nodes[req.Path]
	if !ok {
		return tree.Node{}, fmt.Errorf("failed to find '%s': %w", req.Path, tree.ErrNotFound)
	}
	return node, nil
}

func (fr *fakeRepository) Modify(_ context.Context, m *git.Modification) (string, error) {
	fr.modifications = append(fr.modifications, m)
	if fr.modifyErr != nil {
		return "", fr.modifyErr
	}
	return fr.commitID, nil
}

func (fr *fakeRepository) GetChangeset(_ context.Context, branch string, id string) (*git.Changeset, error) {
	fr.changesetRequests = append(fr.changesetRequests, changesetRequest{branch: branch, id: id})
	return &git.Changeset{ID: id, Author: git.Person{Name: "Trillian"}}, nil
}

func (fr *fakeRepository) Branches(_ context.Context) ([]string, error) {
	return fr.branches, nil
}

func (fr *fakeRepository) Close() error {
	fr.closed = true
	return nil
}

type fakeRepositoryFactory struct {
	repo   *fakeRepository
	opened int
}

func (frf *fakeRepositoryFactory) Create(_ context.Context, ref repository.Ref) (git.Repository, error) {
	frf.opened++
	return frf.repo, nil
}

// fakePermissions grants or denies push and counts how often it was asked
type fakePermissions struct {
	push  bool
	asked int
}

func (fp *fakePermissions) IsPushPermitted(_ context.Context, _ repository.Ref) (bool, error) {
	fp.asked++
	return fp.push, nil
}

// recordingGuard records the changes it was asked about and returns fixed obstacles
type recordingGuard struct {
	obstacles []guard.Obstacle
	seen      []guard.Changes
}

func (rg *recordingGuard) Obstacles(_ context.Context, _ repository.Ref, _ string, changes guard.Changes) ([]guard.Obstacle, error) {
	rg.seen = append(rg.seen, changes)
	return rg.obstacles, nil
}

func fileNode(path string) tree.Node {
	_, name := repopath.Split(path)
	return tree.Node{Path: path, Name: name}
}

func dirNode(path string, children ...tree.Node) tree.Node {
	_, name := repopath.Split(path)
	return tree.Node{Path: path, Name: name, Directory: true, Children: children}
}

func permissionError(err error) permission.CheckerFunc {
	return func(context.Context, repository.Ref) (bool, error) {
		return false, err
	}
}
