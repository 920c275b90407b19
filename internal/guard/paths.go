package guard

import (
	"context"
	"fmt"
	"strings"

	"github.com/cchalm/scm-folders/internal/repository"
)

// PathPrefixGuard objects to any change touching a path under one of its protected prefixes, e.g. '.github/workflows/'
type PathPrefixGuard struct {
	prefixes []string
}

func NewPathPrefixGuard(prefixes ...string) PathPrefixGuard {
	var cleaned []string
	for _, p := range prefixes {
		p = strings.Trim(strings.TrimSpace(p), "/")
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}
	return PathPrefixGuard{prefixes: cleaned}
}

func (ppg PathPrefixGuard) Obstacles(_ context.Context, _ repository.Ref, _ string, changes Changes) ([]Obstacle, error) {
	var paths []string
	paths = append(paths, changes.FilesToModify...)
	paths = append(paths, changes.FilesToCreate...)
	paths = append(paths, changes.FilesToDelete...)
	if changes.PathForCreate != "" {
		paths = append(paths, changes.PathForCreate)
	}

	var obstacles []Obstacle
	for _, path := range paths {
		if prefix, ok := ppg.protectedBy(path); ok {
			obstacles = append(obstacles, Obstacle{
				Key:     "protected-path",
				Message: fmt.Sprintf("'%s' is inside protected path '%s'", path, prefix),
			})
		}
	}
	return obstacles, nil
}

func (ppg PathPrefixGuard) protectedBy(path string) (string, bool) {
	path = strings.Trim(path, "/")
	for _, prefix := range ppg.prefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return prefix, true
		}
	}
	return "", false
}
