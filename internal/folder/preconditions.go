package folder

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog"

	"github.com/cchalm/scm-folders/internal/git"
	"github.com/cchalm/scm-folders/internal/permission"
	"github.com/cchalm/scm-folders/internal/repository"
	"github.com/cchalm/scm-folders/internal/tree"
)

// Preconditions decides whether folders of a repository may be edited at all, so clients can hide edit actions that
// would fail
type Preconditions struct {
	repositories git.RepositoryFactory
	permissions  permission.Checker
	logger       zerolog.Logger
}

func NewPreconditions(repositories git.RepositoryFactory, permissions permission.Checker, logger zerolog.Logger) *Preconditions {
	return &Preconditions{
		repositories: repositories,
		permissions:  permissions,
		logger:       logger,
	}
}

// IsEditable returns true if the caller may push to the repository and the requested branch can be written to. An
// empty branch means the default branch. An empty repository is always editable
func (p *Preconditions) IsEditable(ctx context.Context, ref repository.Ref, branch string) (bool, error) {
	permitted, err := p.permissions.IsPushPermitted(ctx, ref)
	if err != nil {
		return false, fmt.Errorf("failed to check push permission: %w", err)
	}
	if !permitted {
		p.logger.Trace().Str("repository", ref.String()).Msg("Repository is not editable, because the user has not enough privileges")
		return false, nil
	}

	repo, err := p.repositories.Create(ctx, ref)
	if err != nil {
		return false, fmt.Errorf("could not check if the repository and revision is editable: %w", err)
	}
	defer closeRepository(p.logger.WithContext(ctx), repo)

	if branch == "" {
		return true, nil
	}

	exists, err := p.isExistingBranch(ctx, repo, branch)
	if err != nil {
		return false, err
	}
	if exists {
		return true, nil
	}

	empty, err := p.isEmptyRepository(ctx, repo)
	if err != nil {
		return false, err
	}
	if !empty {
		p.logger.Trace().Str("repository", ref.String()).Str("branch", branch).Msg("Repository is not editable, because the selected branch does not exist")
	}
	return empty, nil
}

func (p *Preconditions) isExistingBranch(ctx context.Context, repo git.Repository, branch string) (bool, error) {
	branches, err := repo.Branches(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list branches: %w", err)
	}
	return slices.Contains(branches, branch), nil
}

func (p *Preconditions) isEmptyRepository(ctx context.Context, repo git.Repository) (bool, error) {
	root, err := repo.Browse(ctx, tree.BrowseRequest{})
	if err != nil {
		if errors.Is(err, git.ErrEmptyRepository) {
			return true, nil
		}
		return false, fmt.Errorf("failed to browse repository root: %w", err)
	}
	return root.Directory && len(root.Children) == 0, nil
}
