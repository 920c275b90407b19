// Package repository identifies repositories hosted by a version-control backend.
package repository

import (
	"fmt"
	"strings"
)

// Ref identifies a repository by namespace and name. For GitHub the namespace is the owner
type Ref struct {
	Namespace string
	Name      string
}

// ParseRef parses a qualified repository name in the format 'namespace/name'
func ParseRef(qualifiedName string) (Ref, error) {
	parts := strings.Split(qualifiedName, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Ref{}, fmt.Errorf("invalid repository format '%s', expected namespace/name", qualifiedName)
	}
	return Ref{Namespace: parts[0], Name: parts[1]}, nil
}

func (r Ref) String() string {
	return r.Namespace + "/" + r.Name
}
