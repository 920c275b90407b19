package repopath

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidate_Valid(t *testing.T) {
	for _, path := range []string{"newFolder", "newFolder/", "a/b/c", ".github/workflows", "folder with spaces", "a/.scmkeep"} {
		require.NoError(t, Validate(path), path)
	}
}

func TestValidate_Empty(t *testing.T) {
	require.ErrorIs(t, Validate(""), ErrEmpty)
}

func TestValidate_Invalid(t *testing.T) {
	for _, path := range []string{
		"/trash//path/",
		"/absolute",
		"a//b",
		"a/../b",
		"..",
		"./a",
		"a/.",
		`a\b`,
		"a\x00b",
		"line\nbreak",
		"a//",
	} {
		require.ErrorIs(t, Validate(path), ErrInvalid, path)
	}
}

func TestSplit(t *testing.T) {
	testCases := []struct {
		path   string
		parent string
		name   string
	}{
		{"root/folder", "root", "folder"},
		{"root/folder/", "root", "folder"},
		{"folder", "", "folder"},
		{"a/b/c", "a/b", "c"},
	}

	for _, tc := range testCases {
		parent, name := Split(tc.path)
		require.Equal(t, tc.parent, parent, tc.path)
		require.Equal(t, tc.name, name, tc.path)
	}
}

func TestJoin(t *testing.T) {
	require.Equal(t, "a/b", Join("a", "b"))
	require.Equal(t, "a/b", Join("a/", "/b/"))
	require.Equal(t, "b", Join("", "b"))
	require.Equal(t, "", Join("", ""))
}

func TestIsAncestor(t *testing.T) {
	require.True(t, IsAncestor("", "a"))
	require.True(t, IsAncestor("a", "a/b"))
	require.False(t, IsAncestor("a", "a"))
	require.False(t, IsAncestor("a", "ab/c"))
	require.False(t, IsAncestor("", ""))
}
