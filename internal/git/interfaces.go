// Package git provides the version-control backend used for folder operations: browsing trees, committing
// modifications and reading back changesets.
package git

import (
	"context"
	"fmt"

	"github.com/cchalm/scm-folders/internal/repository"
	"github.com/cchalm/scm-folders/internal/tree"
)

var (
	ErrRepositoryNotFound error = fmt.Errorf("repository not found")
	ErrEmptyRepository    error = fmt.Errorf("repository is empty")
	ErrClosed             error = fmt.Errorf("repository session is closed")
	ErrRevisionMismatch   error = fmt.Errorf("revision mismatch")
	ErrPathNotFound       error = fmt.Errorf("path not found in base tree")
	ErrPathConflict       error = fmt.Errorf("path conflicts with an existing entry")
	ErrFileExists         error = fmt.Errorf("file already exists")
	ErrTreeTruncated      error = fmt.Errorf("tree listing was truncated")
	ErrEmptyModification  error = fmt.Errorf("modification is empty")
)

// Repository is a session against one repository. A session is acquired for the duration of a single operation and
// must be closed when the operation ends
type Repository interface {
	// Ref returns the repository this session belongs to
	Ref() repository.Ref

	// Browse returns a snapshot of the tree node at the requested path and revision
	Browse(ctx context.Context, req tree.BrowseRequest) (tree.Node, error)

	// Modify commits all changes of the modification as a single commit and returns the new commit id
	Modify(ctx context.Context, m *Modification) (string, error)

	// GetChangeset reads back the changeset with the given id
	GetChangeset(ctx context.Context, branch string, id string) (*Changeset, error)

	// Branches lists the names of all branches
	Branches(ctx context.Context) ([]string, error)

	Close() error
}

// RepositoryFactory opens repository sessions
type RepositoryFactory interface {
	Create(ctx context.Context, ref repository.Ref) (Repository, error)
}
