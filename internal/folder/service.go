// Package folder creates and deletes folders in repositories that only track files. A folder exists as long as it
// contains at least one file, so an otherwise empty folder is kept alive by a placeholder file.
package folder

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/cchalm/scm-folders/internal/git"
	"github.com/cchalm/scm-folders/internal/guard"
	"github.com/cchalm/scm-folders/internal/permission"
	"github.com/cchalm/scm-folders/internal/repopath"
	"github.com/cchalm/scm-folders/internal/repository"
	"github.com/cchalm/scm-folders/internal/telemetry"
	"github.com/cchalm/scm-folders/internal/tree"
)

// Service creates and deletes folders. Every successful operation produces exactly one commit
type Service struct {
	repositories git.RepositoryFactory
	permissions  permission.Checker
	guards       guard.Check
	logger       zerolog.Logger
	tracer       trace.Tracer
}

func NewService(repositories git.RepositoryFactory, permissions permission.Checker, guards guard.Check, logger zerolog.Logger) *Service {
	return &Service{
		repositories: repositories,
		permissions:  permissions,
		guards:       guards,
		logger:       logger,
		tracer:       telemetry.Tracer("folder"),
	}
}

type options struct {
	expectedRevision string
}

// Option customizes a single folder operation
type Option func(*options)

// WithExpectedRevision makes the commit fail if the branch head moved away from revision
func WithExpectedRevision(revision string) Option {
	return func(o *options) {
		o.expectedRevision = revision
	}
}

func collectOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Create creates the folder at path by committing a placeholder file into it. Creating a folder that already exists
// succeeds and produces a new commit. An empty branch targets the default branch
func (s *Service) Create(ctx context.Context, ref repository.Ref, branch string, path string, commitMessage string, opts ...Option) (*git.Changeset, error) {
	ctx, span := s.startOperation(ctx, "create", ref, branch, path)
	defer span.End()

	changeset, err := s.create(ctx, ErrorContext{Repository: ref, Branch: branch, Path: path}, commitMessage, collectOptions(opts))
	s.endOperation(ctx, span, changeset, err)
	return changeset, err
}

func (s *Service) create(ctx context.Context, ec ErrorContext, commitMessage string, o options) (*git.Changeset, error) {
	if err := repopath.Validate(ec.Path); err != nil {
		return nil, &InvalidPathError{Context: ec, Err: err}
	}

	if err := s.checkPush(ctx, ec); err != nil {
		return nil, err
	}

	repo, err := s.repositories.Create(ctx, ec.Repository)
	if err != nil {
		return nil, &BackendError{Context: ec, Op: "open repository", Err: err}
	}
	defer closeRepository(ctx, repo)

	err = s.checkGuards(ctx, ec, guard.Changes{
		PathForCreate: ec.Path,
		FilesToCreate: []string{KeepFilePath(ec.Path)},
	})
	if err != nil {
		return nil, err
	}

	m := git.NewModification()
	StagePlaceholder(m, ec.Path)

	return s.commit(ctx, repo, ec, m, commitMessage, o)
}

// Delete deletes the folder at path together with everything below it. If the folder is the only entry of its parent
// directory, a placeholder file is committed into the parent in the same commit so the parent survives
func (s *Service) Delete(ctx context.Context, ref repository.Ref, branch string, path string, commitMessage string, opts ...Option) (*git.Changeset, error) {
	ctx, span := s.startOperation(ctx, "delete", ref, branch, path)
	defer span.End()

	changeset, err := s.delete(ctx, ErrorContext{Repository: ref, Branch: branch, Path: path}, commitMessage, collectOptions(opts))
	s.endOperation(ctx, span, changeset, err)
	return changeset, err
}

func (s *Service) delete(ctx context.Context, ec ErrorContext, commitMessage string, o options) (*git.Changeset, error) {
	if err := repopath.Validate(ec.Path); err != nil {
		return nil, &InvalidPathError{Context: ec, Err: err}
	}

	if err := s.checkPush(ctx, ec); err != nil {
		return nil, err
	}

	parentPath, folderName := repopath.Split(ec.Path)

	repo, err := s.repositories.Create(ctx, ec.Repository)
	if err != nil {
		return nil, &BackendError{Context: ec, Op: "open repository", Err: err}
	}
	defer closeRepository(ctx, repo)

	parent, err := repo.Browse(ctx, tree.BrowseRequest{Revision: ec.Branch, Path: parentPath})
	if err != nil {
		if errors.Is(err, tree.ErrNotFound) || errors.Is(err, git.ErrEmptyRepository) {
			return nil, &NotFoundError{Context: ec}
		}
		return nil, &BackendError{Context: ec, Op: "browse parent directory", Err: err}
	}

	target, found := parent.Child(folderName)
	if !parent.Directory || !found {
		return nil, &NotFoundError{Context: ec}
	}
	if !target.Directory {
		return nil, &PathIsNotADirectoryError{Context: ec}
	}

	createKeepFileInParent := NeedsPlaceholder(parent, target)

	changes := guard.Changes{FilesToDelete: []string{target.Path}}
	if createKeepFileInParent {
		changes.FilesToCreate = []string{KeepFilePath(parent.Path)}
	}
	if err := s.checkGuards(ctx, ec, changes); err != nil {
		return nil, err
	}

	m := git.NewModification().DeleteFile(target.Path, true)
	if createKeepFileInParent {
		StagePlaceholder(m, parent.Path)
	}

	return s.commit(ctx, repo, ec, m, commitMessage, o)
}

func (s *Service) checkPush(ctx context.Context, ec ErrorContext) error {
	err := permission.CheckPush(ctx, s.permissions, ec.Repository)
	if errors.Is(err, permission.ErrDenied) {
		return &PermissionDeniedError{Context: ec}
	} else if err != nil {
		return &BackendError{Context: ec, Op: "check push permission", Err: err}
	}
	return nil
}

func (s *Service) checkGuards(ctx context.Context, ec ErrorContext, changes guard.Changes) error {
	obstacles, err := s.guards.Evaluate(ctx, ec.Repository, ec.Branch, changes)
	if err != nil {
		return &BackendError{Context: ec, Op: "evaluate change guards", Err: err}
	}
	if len(obstacles) > 0 {
		return &ObstaclesError{Context: ec, Obstacles: obstacles}
	}
	return nil
}

func (s *Service) commit(ctx context.Context, repo git.Repository, ec ErrorContext, m *git.Modification, commitMessage string, o options) (*git.Changeset, error) {
	if ec.Branch != "" {
		m.SetBranch(ec.Branch)
	}
	if o.expectedRevision != "" {
		m.SetExpectedRevision(o.expectedRevision)
	}
	m.SetCommitMessage(commitMessage)

	changesetID, err := repo.Modify(ctx, m)
	if err != nil {
		return nil, &BackendError{Context: ec, Op: "commit changes", Err: err}
	}

	changeset, err := repo.GetChangeset(ctx, ec.Branch, changesetID)
	if err != nil {
		return nil, &BackendError{Context: ec, Op: "read changeset " + changesetID, Err: err}
	}
	return changeset, nil
}

func closeRepository(ctx context.Context, repo git.Repository) {
	if err := repo.Close(); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("Failed to close repository session")
	}
}

func (s *Service) startOperation(ctx context.Context, operation string, ref repository.Ref, branch string, path string) (context.Context, trace.Span) {
	operationID := telemetry.NewOperationID()

	ctx, span := s.tracer.Start(ctx, "folder."+operation, trace.WithAttributes(
		attribute.String("folder.operation_id", operationID),
		attribute.String("folder.repository", ref.String()),
		attribute.String("folder.branch", branch),
		attribute.String("folder.path", path),
	))

	logger := s.logger.With().
		Str("op", operationID).
		Str("operation", operation).
		Str("repository", ref.String()).
		Str("branch", branch).
		Str("path", path).
		Logger()

	return logger.WithContext(ctx), span
}

func (s *Service) endOperation(ctx context.Context, span trace.Span, changeset *git.Changeset, err error) {
	logger := zerolog.Ctx(ctx)
	telemetry.RecordResult(span, err)
	if err != nil {
		logger.Warn().Err(err).Msg("Folder operation failed")
		return
	}
	span.SetAttributes(attribute.String("folder.changeset", changeset.ID))
	logger.Info().Str("changeset", changeset.ID).Msg("Folder operation committed")
}
