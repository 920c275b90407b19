// Package repopath validates and manipulates slash-separated paths inside a repository tree. The repository root is
// the empty path
package repopath

import (
	"fmt"
	"strings"
	"unicode"
)

var (
	ErrEmpty   error = fmt.Errorf("path is empty")
	ErrInvalid error = fmt.Errorf("path is invalid")
)

// Validate checks that path is a non-empty, relative, slash-separated path without '.' or '..' segments. A single
// trailing slash is allowed
func Validate(path string) error {
	if path == "" {
		return ErrEmpty
	}
	if strings.HasPrefix(path, "/") {
		return fmt.Errorf("%w: leading slash", ErrInvalid)
	}
	if strings.Contains(path, "//") {
		return fmt.Errorf("%w: empty segment", ErrInvalid)
	}
	if strings.Contains(path, `\`) {
		return fmt.Errorf("%w: backslash", ErrInvalid)
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character", ErrInvalid)
		}
	}
	for _, segment := range strings.Split(strings.TrimSuffix(path, "/"), "/") {
		if segment == "." || segment == ".." {
			return fmt.Errorf("%w: relative segment '%s'", ErrInvalid, segment)
		}
	}
	return nil
}

// Split splits path into the path of its parent directory and its last segment. A trailing slash is ignored. The
// parent of a top-level entry is the root, ""
func Split(path string) (parent string, name string) {
	path = strings.TrimSuffix(path, "/")
	idx := strings.LastIndex(path, "/")
	if idx == -1 {
		return "", path
	}
	return path[:idx], path[idx+1:]
}

// Join joins path elements with slashes, skipping empty elements and trimming surrounding slashes
func Join(elem ...string) string {
	parts := make([]string, 0, len(elem))
	for _, e := range elem {
		e = strings.Trim(e, "/")
		if e != "" {
			parts = append(parts, e)
		}
	}
	return strings.Join(parts, "/")
}

// IsAncestor returns true if dir is a proper ancestor directory of path. The root is an ancestor of every non-empty
// path
func IsAncestor(dir string, path string) bool {
	if dir == "" {
		return path != ""
	}
	return strings.HasPrefix(path, dir+"/")
}
