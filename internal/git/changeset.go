package git

import (
	"time"
)

// Person is the author of a changeset
type Person struct {
	Name string
	Mail string
}

// Changeset is an immutable, identified commit
type Changeset struct {
	ID          string
	Date        time.Time
	Author      Person
	Description string
	Branches    []string
}
