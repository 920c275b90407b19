package folder

import (
	"fmt"
	"strings"

	"github.com/cchalm/scm-folders/internal/guard"
	"github.com/cchalm/scm-folders/internal/repository"
)

// ErrorContext identifies where a folder operation failed
type ErrorContext struct {
	Repository repository.Ref
	Branch     string
	Path       string
}

func (ec ErrorContext) String() string {
	var sb strings.Builder
	sb.WriteString("repository '")
	sb.WriteString(ec.Repository.String())
	sb.WriteString("'")
	if ec.Branch != "" {
		sb.WriteString(", branch '")
		sb.WriteString(ec.Branch)
		sb.WriteString("'")
	}
	sb.WriteString(", path '")
	sb.WriteString(ec.Path)
	sb.WriteString("'")
	return sb.String()
}

// InvalidPathError indicates a malformed or empty path. It is detected before any backend access
type InvalidPathError struct {
	Context ErrorContext
	Err     error
}

func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("invalid path '%s': %v", e.Context.Path, e.Err)
}

func (e *InvalidPathError) Unwrap() error { return e.Err }

// PermissionDeniedError indicates the caller may not push to the repository
type PermissionDeniedError struct {
	Context ErrorContext
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("insufficient permissions to push to %s", e.Context)
}

// NotFoundError indicates the folder to delete does not exist below its parent
type NotFoundError struct {
	Context ErrorContext
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("folder not found in %s", e.Context)
}

// PathIsNotADirectoryCode is the stable error code of PathIsNotADirectoryError
const PathIsNotADirectoryCode = "B0Skx4uOG1"

// PathIsNotADirectoryError indicates the path to delete belongs to a file rather than a directory
type PathIsNotADirectoryError struct {
	Context ErrorContext
}

func (e *PathIsNotADirectoryError) Error() string {
	return fmt.Sprintf("the provided path does not belong to a directory, but a file: %s", e.Context)
}

func (e *PathIsNotADirectoryError) Code() string { return PathIsNotADirectoryCode }

// ObstaclesError indicates that one or more change guards vetoed the operation
type ObstaclesError struct {
	Context   ErrorContext
	Obstacles []guard.Obstacle
}

func (e *ObstaclesError) Error() string {
	reasons := make([]string, 0, len(e.Obstacles))
	for _, o := range e.Obstacles {
		reasons = append(reasons, o.String())
	}
	return fmt.Sprintf("change blocked in %s: %s", e.Context, strings.Join(reasons, "; "))
}

// BackendError wraps any failure of the version-control backend or another collaborator
type BackendError struct {
	Context ErrorContext
	Op      string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("failed to %s in %s: %v", e.Op, e.Context, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }
