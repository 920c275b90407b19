package api

import (
	"errors"
	"net/http"

	"github.com/cchalm/scm-folders/internal/folder"
	"github.com/cchalm/scm-folders/internal/git"
)

// errorResponse maps a folder operation error to a status code and the body describing it
func errorResponse(err error) (int, ErrorResponse) {
	resp := ErrorResponse{Message: err.Error()}

	var (
		invalidPath   *folder.InvalidPathError
		denied        *folder.PermissionDeniedError
		notFound      *folder.NotFoundError
		notADirectory *folder.PathIsNotADirectoryError
		obstacles     *folder.ObstaclesError
		backend       *folder.BackendError
	)
	switch {
	case errors.As(err, &invalidPath):
		resp.Context = newErrorContextResponse(invalidPath.Context)
		return http.StatusBadRequest, resp
	case errors.As(err, &denied):
		resp.Context = newErrorContextResponse(denied.Context)
		return http.StatusForbidden, resp
	case errors.As(err, &notFound):
		resp.Context = newErrorContextResponse(notFound.Context)
		return http.StatusNotFound, resp
	case errors.As(err, &notADirectory):
		resp.Code = notADirectory.Code()
		resp.Context = newErrorContextResponse(notADirectory.Context)
		return http.StatusBadRequest, resp
	case errors.As(err, &obstacles):
		resp.Context = newErrorContextResponse(obstacles.Context)
		for _, o := range obstacles.Obstacles {
			resp.Obstacles = append(resp.Obstacles, ObstacleResponse{Key: o.Key, Message: o.Message})
		}
		return http.StatusConflict, resp
	case errors.As(err, &backend):
		resp.Context = newErrorContextResponse(backend.Context)
		return backendStatus(backend.Err), resp
	default:
		return http.StatusInternalServerError, resp
	}
}

func backendStatus(err error) int {
	switch {
	case errors.Is(err, git.ErrRevisionMismatch), errors.Is(err, git.ErrPathConflict), errors.Is(err, git.ErrFileExists):
		return http.StatusConflict
	case errors.Is(err, git.ErrRepositoryNotFound), errors.Is(err, git.ErrBranchNotFound), errors.Is(err, git.ErrRevisionNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func newErrorContextResponse(ec folder.ErrorContext) *ErrorContextResponse {
	return &ErrorContextResponse{
		Repository: ec.Repository.String(),
		Branch:     ec.Branch,
		Path:       ec.Path,
	}
}
