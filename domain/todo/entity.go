package todo

import (
	"time"
)

// Todo represents a single to-do item owned by a user.
type Todo struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	DueDate   string    `json:"dueDate,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Patch describes a partial update to a todo. A nil field means
// "leave unchanged"; a non-nil field means "set to this value".
// The id, userId and createdAt fields are immutable and have no
// place in a patch; updatedAt is refreshed by the store on every
// applied patch.
type Patch struct {
	Title     *string
	Completed *bool
	DueDate   *string
}

// IsEmpty reports whether the patch carries no field assignments.
// An empty patch is still a valid update: it only refreshes updatedAt.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Completed == nil && p.DueDate == nil
}
