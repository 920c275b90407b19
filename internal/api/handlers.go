package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/cchalm/scm-folders/internal/folder"
	"github.com/cchalm/scm-folders/internal/git"
	"github.com/cchalm/scm-folders/internal/repository"
)

// FolderService creates and deletes folders
type FolderService interface {
	Create(ctx context.Context, ref repository.Ref, branch string, path string, commitMessage string, opts ...folder.Option) (*git.Changeset, error)
	Delete(ctx context.Context, ref repository.Ref, branch string, path string, commitMessage string, opts ...folder.Option) (*git.Changeset, error)
}

// EditabilityChecker decides whether folders of a repository can be edited
type EditabilityChecker interface {
	IsEditable(ctx context.Context, ref repository.Ref, branch string) (bool, error)
}

// FolderHandler handles folder endpoints
type FolderHandler struct {
	folders     FolderService
	editability EditabilityChecker
}

func NewFolderHandler(folders FolderService, editability EditabilityChecker) *FolderHandler {
	return &FolderHandler{folders: folders, editability: editability}
}

// Create handles the create folder endpoint. The folder is the request body's folder name below the URL path
func (h *FolderHandler) Create(w http.ResponseWriter, req *http.Request) {
	var request CreateFolderRequest
	if !decodeBody(w, req, &request) {
		return
	}

	if request.FolderName == "" || strings.Contains(request.FolderName, "/") {
		sendJSON(w, req, http.StatusBadRequest, ErrorResponse{Message: "folderName must be a single non-empty path segment"})
		return
	}

	path := request.FolderName
	if parent := chi.URLParam(req, "*"); parent != "" {
		path = strings.TrimSuffix(parent, "/") + "/" + request.FolderName
	}

	changeset, err := h.folders.Create(req.Context(), repositoryRef(req), request.Branch, path, request.CommitMessage, revisionOptions(request.ExpectedRevision)...)
	if err != nil {
		sendFolderError(w, req, err)
		return
	}
	sendJSON(w, req, http.StatusCreated, newChangesetResponse(changeset))
}

// Delete handles the delete folder endpoint
func (h *FolderHandler) Delete(w http.ResponseWriter, req *http.Request) {
	var request DeleteFolderRequest
	if !decodeBody(w, req, &request) {
		return
	}

	changeset, err := h.folders.Delete(req.Context(), repositoryRef(req), request.Branch, chi.URLParam(req, "*"), request.CommitMessage, revisionOptions(request.ExpectedRevision)...)
	if err != nil {
		sendFolderError(w, req, err)
		return
	}
	sendJSON(w, req, http.StatusOK, newChangesetResponse(changeset))
}

// Editable handles the editable endpoint. The branch may also be passed as 'revision'
func (h *FolderHandler) Editable(w http.ResponseWriter, req *http.Request) {
	query := req.URL.Query()
	branch := query.Get("branch")
	if branch == "" {
		branch = query.Get("revision")
	}

	editable, err := h.editability.IsEditable(req.Context(), repositoryRef(req), branch)
	if err != nil {
		zerolog.Ctx(req.Context()).Error().Err(err).Msg("Failed to check editability")
		sendJSON(w, req, http.StatusInternalServerError, ErrorResponse{Message: err.Error()})
		return
	}
	sendJSON(w, req, http.StatusOK, EditableResponse{Editable: editable})
}

// Health handles the health check endpoint
func Health(w http.ResponseWriter, req *http.Request) {
	sendJSON(w, req, http.StatusOK, HealthResponse{Status: "ok"})
}

func repositoryRef(req *http.Request) repository.Ref {
	return repository.Ref{Namespace: chi.URLParam(req, "namespace"), Name: chi.URLParam(req, "name")}
}

func revisionOptions(expectedRevision string) []folder.Option {
	if expectedRevision == "" {
		return nil
	}
	return []folder.Option{folder.WithExpectedRevision(expectedRevision)}
}

func decodeBody(w http.ResponseWriter, req *http.Request, v any) bool {
	decoder := json.NewDecoder(req.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		sendJSON(w, req, http.StatusBadRequest, ErrorResponse{Message: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func sendFolderError(w http.ResponseWriter, req *http.Request, err error) {
	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		zerolog.Ctx(req.Context()).Error().Err(err).Msg("Folder operation failed")
	}
	sendJSON(w, req, status, body)
}

// sendJSON sends a JSON response with the given status code and data
func sendJSON(w http.ResponseWriter, req *http.Request, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zerolog.Ctx(req.Context()).Warn().Err(err).Msg("Failed to write response")
	}
}
