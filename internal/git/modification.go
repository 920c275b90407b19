package git

import (
	"fmt"
)

// FileCreation is a file to be written by a modification
type FileCreation struct {
	Path      string
	Content   []byte
	Overwrite bool
}

// FileDeletion is a path to be deleted by a modification. A recursive deletion removes everything below the path
type FileDeletion struct {
	Path      string
	Recursive bool
}

// Modification accumulates file creations and deletions that are committed together as one commit
type Modification struct {
	branch           string
	expectedRevision string
	commitMessage    string

	creations []FileCreation
	deletions []FileDeletion
}

// NewModification creates an empty modification. An empty branch targets the default branch
func NewModification() *Modification {
	return &Modification{}
}

// CreateFile stages a file creation. If overwrite is false, committing fails when the file already exists
func (m *Modification) CreateFile(path string, content []byte, overwrite bool) *Modification {
	m.creations = append(m.creations, FileCreation{
		Path:      path,
		Content:   append([]byte(nil), content...),
		Overwrite: overwrite,
	})
	return m
}

// DeleteFile stages a deletion
func (m *Modification) DeleteFile(path string, recursive bool) *Modification {
	m.deletions = append(m.deletions, FileDeletion{Path: path, Recursive: recursive})
	return m
}

func (m *Modification) SetBranch(branch string) *Modification {
	m.branch = branch
	return m
}

// SetExpectedRevision makes the commit fail with ErrRevisionMismatch unless the branch head is still at revision
func (m *Modification) SetExpectedRevision(revision string) *Modification {
	m.expectedRevision = revision
	return m
}

func (m *Modification) SetCommitMessage(message string) *Modification {
	m.commitMessage = message
	return m
}

func (m *Modification) Branch() string           { return m.branch }
func (m *Modification) ExpectedRevision() string { return m.expectedRevision }
func (m *Modification) CommitMessage() string    { return m.commitMessage }

// Creations returns the staged creations in the order they were staged
func (m *Modification) Creations() []FileCreation {
	return append([]FileCreation(nil), m.creations...)
}

// Deletions returns the staged deletions in the order they were staged
func (m *Modification) Deletions() []FileDeletion {
	return append([]FileDeletion(nil), m.deletions...)
}

func (m *Modification) ForEachCreated(fn func(creation FileCreation) error) error {
	for _, c := range m.creations {
		if err := fn(c); err != nil {
			return fmt.Errorf("error while handling created file '%s': %w", c.Path, err)
		}
	}
	return nil
}

func (m *Modification) ForEachDeleted(fn func(deletion FileDeletion) error) error {
	for _, d := range m.deletions {
		if err := fn(d); err != nil {
			return fmt.Errorf("error while handling deleted path '%s': %w", d.Path, err)
		}
	}
	return nil
}

func (m *Modification) IsEmpty() bool {
	return len(m.creations) == 0 && len(m.deletions) == 0
}
