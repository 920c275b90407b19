// Package guard lets independent policies veto proposed changes to a repository before they are committed.
package guard

import (
	"context"
	"fmt"

	"github.com/cchalm/scm-folders/internal/repository"
)

// Changes describes a proposed mutation of a repository tree
type Changes struct {
	FilesToModify []string
	FilesToCreate []string
	FilesToDelete []string
	// PathForCreate is the directory in which new files will be created, if any
	PathForCreate string
}

// Obstacle is a policy-level objection that blocks a proposed change
type Obstacle struct {
	Key     string
	Message string
}

func (o Obstacle) String() string {
	return fmt.Sprintf("%s: %s", o.Key, o.Message)
}

// Guard inspects proposed changes and returns zero or more obstacles
type Guard interface {
	Obstacles(ctx context.Context, repo repository.Ref, branch string, changes Changes) ([]Obstacle, error)
}

// Func adapts a function to the Guard interface
type Func func(ctx context.Context, repo repository.Ref, branch string, changes Changes) ([]Obstacle, error)

func (f Func) Obstacles(ctx context.Context, repo repository.Ref, branch string, changes Changes) ([]Obstacle, error) {
	return f(ctx, repo, branch, changes)
}

// Check evaluates proposed changes against a list of guards
type Check struct {
	guards []Guard
}

func NewCheck(guards ...Guard) Check {
	return Check{guards: guards}
}

// Evaluate asks every guard about the changes and returns all obstacles in guard order
func (c Check) Evaluate(ctx context.Context, repo repository.Ref, branch string, changes Changes) ([]Obstacle, error) {
	var obstacles []Obstacle
	for i, g := range c.guards {
		o, err := g.Obstacles(ctx, repo, branch, changes)
		if err != nil {
			return nil, fmt.Errorf("change guard %d failed: %w", i, err)
		}
		obstacles = append(obstacles, o...)
	}
	return obstacles, nil
}

func (c Check) IsDeletable(ctx context.Context, repo repository.Ref, branch string, path string) ([]Obstacle, error) {
	return c.Evaluate(ctx, repo, branch, Changes{FilesToDelete: []string{path}})
}

func (c Check) IsModifiable(ctx context.Context, repo repository.Ref, branch string, path string) ([]Obstacle, error) {
	return c.Evaluate(ctx, repo, branch, Changes{FilesToModify: []string{path}})
}

func (c Check) IsModifiableAndCreatable(ctx context.Context, repo repository.Ref, branch string, toBeModified []string, toBeCreated []string) ([]Obstacle, error) {
	return c.Evaluate(ctx, repo, branch, Changes{FilesToModify: toBeModified, FilesToCreate: toBeCreated})
}

func (c Check) CanCreateFilesIn(ctx context.Context, repo repository.Ref, branch string, path string) ([]Obstacle, error) {
	return c.Evaluate(ctx, repo, branch, Changes{PathForCreate: path})
}
