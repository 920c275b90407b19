package folder

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cchalm/scm-folders/internal/tree"
)

func TestKeepFilePath(t *testing.T) {
	assert.Equal(t, ".scmkeep", KeepFileName)
	assert.Equal(t, "newFolder/.scmkeep", KeepFilePath("newFolder"))
	assert.Equal(t, "newFolder/.scmkeep", KeepFilePath("newFolder/"))
	assert.Equal(t, "a/b/.scmkeep", KeepFilePath("a/b"))
}

func TestNeedsPlaceholder(t *testing.T) {
	target := dirNode("parent/target")

	tests := []struct {
		name   string
		parent tree.Node
		want   bool
	}{
		{"only child", dirNode("parent", target), true},
		{"with sibling", dirNode("parent", target, fileNode("parent/other.txt")), false},
		{"only child is something else", dirNode("parent", dirNode("parent/other")), false},
		{"root", dirNode("", dirNode("target")), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NeedsPlaceholder(tt.parent, target))
		})
	}
}
