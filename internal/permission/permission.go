// Package permission defines the authorization contract for repository writes.
package permission

import (
	"context"
	"fmt"

	"github.com/cchalm/scm-folders/internal/repository"
)

var (
	ErrDenied error = fmt.Errorf("permission denied")
)

// Checker answers whether the current caller may push to a repository
type Checker interface {
	IsPushPermitted(ctx context.Context, repo repository.Ref) (bool, error)
}

// CheckerFunc adapts a function to the Checker interface
type CheckerFunc func(ctx context.Context, repo repository.Ref) (bool, error)

func (f CheckerFunc) IsPushPermitted(ctx context.Context, repo repository.Ref) (bool, error) {
	return f(ctx, repo)
}

// CheckPush returns an error wrapping ErrDenied if push is not permitted
func CheckPush(ctx context.Context, checker Checker, repo repository.Ref) error {
	permitted, err := checker.IsPushPermitted(ctx, repo)
	if err != nil {
		return fmt.Errorf("failed to check push permission on '%s': %w", repo, err)
	}
	if !permitted {
		return fmt.Errorf("push to '%s': %w", repo, ErrDenied)
	}
	return nil
}
