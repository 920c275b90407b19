package github

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/go-github/v72/github"

	"github.com/cchalm/scm-folders/internal/guard"
	"github.com/cchalm/scm-folders/internal/repository"
)

// ProtectedBranchKey identifies obstacles raised for protected branches
const ProtectedBranchKey = "protected-branch"

// ProtectedBranchGuard refuses every change on a branch that has GitHub branch protection enabled
type ProtectedBranchGuard struct {
	client *github.Client
}

func NewProtectedBranchGuard(client *github.Client) *ProtectedBranchGuard {
	return &ProtectedBranchGuard{client: client}
}

func (g *ProtectedBranchGuard) Obstacles(ctx context.Context, ref repository.Ref, branch string, _ guard.Changes) ([]guard.Obstacle, error) {
	if branch == "" {
		repo, _, err := g.client.Repositories.Get(ctx, ref.Namespace, ref.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to get default branch of %s: %w", ref, err)
		}
		branch = repo.GetDefaultBranch()
	}

	const maxRedirects = 1
	b, resp, err := g.client.Repositories.GetBranch(ctx, ref.Namespace, ref.Name, branch, maxRedirects)
	if err != nil {
		if statusCode(resp) == http.StatusNotFound {
			// Unknown branches cannot be protected. Committing to them fails later
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get branch '%s' of %s: %w", branch, ref, err)
	}

	if !b.GetProtected() {
		return nil, nil
	}
	return []guard.Obstacle{{
		Key:     ProtectedBranchKey,
		Message: fmt.Sprintf("branch '%s' is protected", branch),
	}}, nil
}
