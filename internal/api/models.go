package api

import (
	"time"

	"github.com/cchalm/scm-folders/internal/git"
)

// CreateFolderRequest is the body of a create request. The folder is created below the path of the request URL
type CreateFolderRequest struct {
	Branch           string `json:"branch"`
	FolderName       string `json:"folderName"`
	CommitMessage    string `json:"commitMessage"`
	ExpectedRevision string `json:"expectedRevision,omitempty"`
}

// DeleteFolderRequest is the body of a delete request
type DeleteFolderRequest struct {
	Branch           string `json:"branch"`
	CommitMessage    string `json:"commitMessage"`
	ExpectedRevision string `json:"expectedRevision,omitempty"`
}

type PersonResponse struct {
	Name string `json:"name"`
	Mail string `json:"mail,omitempty"`
}

type ChangesetResponse struct {
	ID          string         `json:"id"`
	Date        time.Time      `json:"date"`
	Author      PersonResponse `json:"author"`
	Description string         `json:"description"`
	Branches    []string       `json:"branches,omitempty"`
}

func newChangesetResponse(changeset *git.Changeset) ChangesetResponse {
	return ChangesetResponse{
		ID:          changeset.ID,
		Date:        changeset.Date,
		Author:      PersonResponse{Name: changeset.Author.Name, Mail: changeset.Author.Mail},
		Description: changeset.Description,
		Branches:    changeset.Branches,
	}
}

type EditableResponse struct {
	Editable bool `json:"editable"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type ErrorContextResponse struct {
	Repository string `json:"repository"`
	Branch     string `json:"branch,omitempty"`
	Path       string `json:"path"`
}

type ObstacleResponse struct {
	Key     string `json:"key"`
	Message string `json:"message"`
}

// ErrorResponse describes a failed request. Code is set for errors clients are expected to handle programmatically
type ErrorResponse struct {
	Code      string                `json:"errorCode,omitempty"`
	Message   string                `json:"message"`
	Context   *ErrorContextResponse `json:"context,omitempty"`
	Obstacles []ObstacleResponse    `json:"obstacles,omitempty"`
}
