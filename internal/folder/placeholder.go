package folder

import (
	"strings"

	"github.com/cchalm/scm-folders/internal/git"
	"github.com/cchalm/scm-folders/internal/tree"
)

// KeepFileName is the name of the placeholder file that keeps an otherwise empty folder alive
const KeepFileName = ".scmkeep"

// KeepFileContent is the content of every placeholder file
var KeepFileContent = []byte("This file was created automatically.")

// KeepFilePath returns the path of the placeholder file inside dir
func KeepFilePath(dir string) string {
	if !strings.HasSuffix(dir, "/") {
		dir += "/"
	}
	return dir + KeepFileName
}

// NeedsPlaceholder reports whether parent would be left without children once target is deleted. The repository root
// never needs a placeholder
func NeedsPlaceholder(parent tree.Node, target tree.Node) bool {
	if parent.IsRoot() {
		return false
	}
	return len(parent.Children) == 1 && parent.Children[0].Path == target.Path
}

// StagePlaceholder stages creation of the placeholder file in dir. Overwriting keeps repeated staging idempotent
func StagePlaceholder(m *git.Modification, dir string) {
	m.CreateFile(KeepFilePath(dir), KeepFileContent, true)
}
