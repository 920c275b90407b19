package folder

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cchalm/scm-folders/internal/git"
	"github.com/cchalm/scm-folders/internal/guard"
	"github.com/cchalm/scm-folders/internal/tree"
)

type serviceFixture struct {
	service     *Service
	repo        *fakeRepository
	factory     *fakeRepositoryFactory
	permissions *fakePermissions
	guard       *recordingGuard
}

func newServiceFixture(nodes ...tree.Node) *serviceFixture {
	repo := newFakeRepository(nodes...)
	f := &serviceFixture{
		repo:        repo,
		factory:     &fakeRepositoryFactory{repo: repo},
		permissions: &fakePermissions{push: true},
		guard:       &recordingGuard{},
	}
	f.service = NewService(f.factory, f.permissions, guard.NewCheck(f.guard), zerolog.Nop())
	return f
}

func (f *serviceFixture) onlyModification(t *testing.T) *git.Modification {
	t.Helper()
	require.Len(t, f.repo.modifications, 1)
	return f.repo.modifications[0]
}

func TestCreate_RejectsInvalidPaths(t *testing.T) {
	for _, path := range []string{"", "/trash//path/", "a//b", "/abs", "a/../b", "./a", "a\\b"} {
		t.Run(path, func(t *testing.T) {
			f := newServiceFixture()

			_, err := f.service.Create(context.Background(), heartOfGold, "master", path, "msg")

			var invalid *InvalidPathError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, path, invalid.Context.Path)
			assert.Zero(t, f.permissions.asked)
			assert.Zero(t, f.factory.opened)
		})
	}
}

func TestCreate_ChecksPushPermission(t *testing.T) {
	f := newServiceFixture()
	f.permissions.push = false

	_, err := f.service.Create(context.Background(), heartOfGold, "master", "newFolder", "msg")

	var denied *PermissionDeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, heartOfGold, denied.Context.Repository)
	assert.Zero(t, f.factory.opened)
	assert.Empty(t, f.repo.modifications)
}

func TestCreate_WrapsPermissionCheckFailure(t *testing.T) {
	f := newServiceFixture()
	boom := errors.New("boom")
	f.service.permissions = permissionError(boom)

	_, err := f.service.Create(context.Background(), heartOfGold, "master", "newFolder", "msg")

	var backend *BackendError
	require.ErrorAs(t, err, &backend)
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, f.factory.opened)
}

func TestCreate_CommitsKeepFile(t *testing.T) {
	f := newServiceFixture()

	changeset, err := f.service.Create(context.Background(), heartOfGold, "master", "newFolder", "msg")
	require.NoError(t, err)

	assert.Equal(t, "1337", changeset.ID)
	m := f.onlyModification(t)
	assert.Equal(t, "master", m.Branch())
	assert.Equal(t, "msg", m.CommitMessage())
	assert.Empty(t, m.ExpectedRevision())
	assert.Equal(t, []git.FileCreation{{Path: "newFolder/.scmkeep", Content: KeepFileContent, Overwrite: true}}, m.Creations())
	assert.Empty(t, m.Deletions())
	assert.Equal(t, []changesetRequest{{branch: "master", id: "1337"}}, f.repo.changesetRequests)
	assert.True(t, f.repo.closed)
}

func TestCreate_TrailingSlashDoesNotDoubleSeparator(t *testing.T) {
	f := newServiceFixture()

	_, err := f.service.Create(context.Background(), heartOfGold, "master", "newFolder/", "msg")
	require.NoError(t, err)

	m := f.onlyModification(t)
	require.Len(t, m.Creations(), 1)
	assert.Equal(t, "newFolder/.scmkeep", m.Creations()[0].Path)
}

func TestCreate_NestedFolder(t *testing.T) {
	f := newServiceFixture()

	_, err := f.service.Create(context.Background(), heartOfGold, "master", "a/b/c", "msg")
	require.NoError(t, err)

	m := f.onlyModification(t)
	require.Len(t, m.Creations(), 1)
	assert.Equal(t, "a/b/c/.scmkeep", m.Creations()[0].Path)
}

func TestCreate_ExistingFolderCommitsAgain(t *testing.T) {
	f := newServiceFixture()

	_, err := f.service.Create(context.Background(), heartOfGold, "master", "newFolder", "first")
	require.NoError(t, err)
	_, err = f.service.Create(context.Background(), heartOfGold, "master", "newFolder", "second")
	require.NoError(t, err)

	require.Len(t, f.repo.modifications, 2)
	assert.True(t, f.repo.modifications[1].Creations()[0].Overwrite)
	assert.Equal(t, "second", f.repo.modifications[1].CommitMessage())
}

func TestCreate_DefaultBranch(t *testing.T) {
	f := newServiceFixture()

	_, err := f.service.Create(context.Background(), heartOfGold, "", "newFolder", "msg")
	require.NoError(t, err)

	assert.Empty(t, f.onlyModification(t).Branch())
}

func TestCreate_PassesExpectedRevision(t *testing.T) {
	f := newServiceFixture()

	_, err := f.service.Create(context.Background(), heartOfGold, "master", "newFolder", "msg", WithExpectedRevision("abc"))
	require.NoError(t, err)

	assert.Equal(t, "abc", f.onlyModification(t).ExpectedRevision())
}

func TestCreate_AbortsOnObstacles(t *testing.T) {
	f := newServiceFixture()
	f.guard.obstacles = []guard.Obstacle{{Key: "protected-path", Message: "nope"}}

	_, err := f.service.Create(context.Background(), heartOfGold, "master", "newFolder", "msg")

	var obstacles *ObstaclesError
	require.ErrorAs(t, err, &obstacles)
	assert.Equal(t, f.guard.obstacles, obstacles.Obstacles)
	assert.Empty(t, f.repo.modifications)
	require.Len(t, f.guard.seen, 1)
	assert.Equal(t, guard.Changes{
		PathForCreate: "newFolder",
		FilesToCreate: []string{"newFolder/.scmkeep"},
	}, f.guard.seen[0])
}

func TestCreate_WrapsCommitFailure(t *testing.T) {
	f := newServiceFixture()
	f.repo.modifyErr = git.ErrRevisionMismatch

	_, err := f.service.Create(context.Background(), heartOfGold, "master", "newFolder", "msg")

	var backend *BackendError
	require.ErrorAs(t, err, &backend)
	assert.Equal(t, "commit changes", backend.Op)
	assert.ErrorIs(t, err, git.ErrRevisionMismatch)
	assert.Empty(t, f.repo.changesetRequests)
	assert.True(t, f.repo.closed)
}

func TestDelete_RejectsInvalidPaths(t *testing.T) {
	for _, path := range []string{"", "/trash//path/", "..", "a/./b"} {
		t.Run(path, func(t *testing.T) {
			f := newServiceFixture()

			_, err := f.service.Delete(context.Background(), heartOfGold, "master", path, "msg")

			var invalid *InvalidPathError
			require.ErrorAs(t, err, &invalid)
			assert.Zero(t, f.permissions.asked)
			assert.Empty(t, f.repo.browses)
		})
	}
}

func TestDelete_ChecksPushPermissionBeforeBrowsing(t *testing.T) {
	f := newServiceFixture()
	f.permissions.push = false

	_, err := f.service.Delete(context.Background(), heartOfGold, "master", "root/folder", "msg")

	var denied *PermissionDeniedError
	require.ErrorAs(t, err, &denied)
	assert.Empty(t, f.repo.browses)
	assert.Empty(t, f.repo.modifications)
}

func TestDelete_BrowsesParentOnBranch(t *testing.T) {
	f := newServiceFixture(dirNode("root", dirNode("root/folder"), fileNode("root/other")))

	_, err := f.service.Delete(context.Background(), heartOfGold, "master", "root/folder", "msg")
	require.NoError(t, err)

	assert.Equal(t, []tree.BrowseRequest{{Revision: "master", Path: "root"}}, f.repo.browses)
}

func TestDelete_RejectsFiles(t *testing.T) {
	f := newServiceFixture(dirNode("root", fileNode("root/notAFolder.txt")))

	_, err := f.service.Delete(context.Background(), heartOfGold, "master", "root/notAFolder.txt", "msg")

	var notADirectory *PathIsNotADirectoryError
	require.ErrorAs(t, err, &notADirectory)
	assert.Equal(t, "B0Skx4uOG1", notADirectory.Code())
	assert.Empty(t, f.repo.modifications)
}

func TestDelete_MissingFolder(t *testing.T) {
	f := newServiceFixture(dirNode("root", dirNode("root/other")))

	_, err := f.service.Delete(context.Background(), heartOfGold, "master", "root/folder", "msg")

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Empty(t, f.repo.modifications)
}

func TestDelete_MissingParent(t *testing.T) {
	f := newServiceFixture()

	_, err := f.service.Delete(context.Background(), heartOfGold, "master", "root/folder", "msg")

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestDelete_ParentIsFile(t *testing.T) {
	f := newServiceFixture(fileNode("root"))

	_, err := f.service.Delete(context.Background(), heartOfGold, "master", "root/folder", "msg")

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestDelete_EmptyRepository(t *testing.T) {
	f := newServiceFixture()
	f.repo.browseErr = git.ErrEmptyRepository

	_, err := f.service.Delete(context.Background(), heartOfGold, "master", "folder", "msg")

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestDelete_WrapsBrowseFailure(t *testing.T) {
	f := newServiceFixture()
	f.repo.browseErr = git.ErrTreeTruncated

	_, err := f.service.Delete(context.Background(), heartOfGold, "master", "root/folder", "msg")

	var backend *BackendError
	require.ErrorAs(t, err, &backend)
	assert.Equal(t, "browse parent directory", backend.Op)
	assert.ErrorIs(t, err, git.ErrTreeTruncated)
}

func TestDelete_FolderWithSiblings(t *testing.T) {
	f := newServiceFixture(dirNode("root", dirNode("root/folder", fileNode("root/folder/a.txt")), dirNode("root/other")))

	changeset, err := f.service.Delete(context.Background(), heartOfGold, "master", "root/folder", "msg")
	require.NoError(t, err)

	assert.Equal(t, "1337", changeset.ID)
	m := f.onlyModification(t)
	assert.Equal(t, []git.FileDeletion{{Path: "root/folder", Recursive: true}}, m.Deletions())
	assert.Empty(t, m.Creations())
	assert.Equal(t, "master", m.Branch())
	assert.Equal(t, "msg", m.CommitMessage())
}

func TestDelete_OnlyChildKeepsParent(t *testing.T) {
	f := newServiceFixture(dirNode("folderWithOneFile", dirNode("folderWithOneFile/subfolder")))

	_, err := f.service.Delete(context.Background(), heartOfGold, "master", "folderWithOneFile/subfolder", "msg")
	require.NoError(t, err)

	m := f.onlyModification(t)
	assert.Equal(t, []git.FileDeletion{{Path: "folderWithOneFile/subfolder", Recursive: true}}, m.Deletions())
	assert.Equal(t, []git.FileCreation{{Path: "folderWithOneFile/.scmkeep", Content: KeepFileContent, Overwrite: true}}, m.Creations())
}

func TestDelete_OnlyChildOfRootNeedsNoPlaceholder(t *testing.T) {
	f := newServiceFixture(dirNode("", dirNode("root")))

	_, err := f.service.Delete(context.Background(), heartOfGold, "master", "root", "msg")
	require.NoError(t, err)

	m := f.onlyModification(t)
	assert.Equal(t, []git.FileDeletion{{Path: "root", Recursive: true}}, m.Deletions())
	assert.Empty(t, m.Creations())
}

func TestDelete_TrailingSlash(t *testing.T) {
	f := newServiceFixture(dirNode("root", dirNode("root/folder"), dirNode("root/other")))

	_, err := f.service.Delete(context.Background(), heartOfGold, "master", "root/folder/", "msg")
	require.NoError(t, err)

	assert.Equal(t, []git.FileDeletion{{Path: "root/folder", Recursive: true}}, f.onlyModification(t).Deletions())
}

func TestDelete_ResolvesTargetByName(t *testing.T) {
	// The only entry of the parent is a different folder
	f := newServiceFixture(dirNode("root", dirNode("root/other")))

	_, err := f.service.Delete(context.Background(), heartOfGold, "master", "root/folder", "msg")

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Empty(t, f.repo.modifications)
}

func TestDelete_AbortsOnObstacles(t *testing.T) {
	f := newServiceFixture(dirNode("folderWithOneFile", dirNode("folderWithOneFile/subfolder")))
	f.guard.obstacles = []guard.Obstacle{{Key: "protected-branch", Message: "branch is protected"}}

	_, err := f.service.Delete(context.Background(), heartOfGold, "master", "folderWithOneFile/subfolder", "msg")

	var obstacles *ObstaclesError
	require.ErrorAs(t, err, &obstacles)
	assert.Empty(t, f.repo.modifications)
	require.Len(t, f.guard.seen, 1)
	assert.Equal(t, guard.Changes{
		FilesToDelete: []string{"folderWithOneFile/subfolder"},
		FilesToCreate: []string{"folderWithOneFile/.scmkeep"},
	}, f.guard.seen[0])
}

func TestDelete_PassesExpectedRevision(t *testing.T) {
	f := newServiceFixture(dirNode("root", dirNode("root/folder"), dirNode("root/other")))

	_, err := f.service.Delete(context.Background(), heartOfGold, "master", "root/folder", "msg", WithExpectedRevision("abc"))
	require.NoError(t, err)

	assert.Equal(t, "abc", f.onlyModification(t).ExpectedRevision())
}
