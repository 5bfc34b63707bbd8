package docstore

import (
	"time"
)

// Folder is a node in the folder tree. FullPath is a materialized path:
// it is computed once at creation time from the parent's path and is not
// recomputed when ancestors change, which is why renames are refused for
// folders that still have children (see the folder service).
type Folder struct {
	ID       string  `json:"id" db:"id"`
	Name     string  `json:"name" db:"name"`
	ParentID *string `json:"parent_id,omitempty" db:"parent_id"` // NULL = root level
	FullPath string  `json:"full_path" db:"full_path"`
	CaseID   *string `json:"case_id,omitempty" db:"case_id"`

	AccessLevel AccessLevel `json:"access_level" db:"access_level"`
	OwnerID     string      `json:"owner_id" db:"owner_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ChildPath derives the materialized path for a child named name.
// For a root folder (f == nil) the path is "/" + name.
func (f *Folder) ChildPath(name string) string {
	if f == nil {
		return "/" + name
	}
	return f.FullPath + "/" + name
}
