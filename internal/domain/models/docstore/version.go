package docstore

import (
	"time"
)

// DocumentVersion is an immutable, numbered snapshot of a document's
// content. Version numbers for a single document form a contiguous
// ascending run 1..current_version with no gaps and no duplicates.
// Version rows are append-only; they are removed only as part of a
// whole-document permanent delete.
type DocumentVersion struct {
	ID         string `json:"id" db:"id"`
	DocumentID string `json:"document_id" db:"document_id"`
	Number     int    `json:"version_number" db:"version_number"`

	// ContentHash is the SHA-256 hex digest of the version's bytes,
	// computed in the same streaming pass as the byte copy.
	ContentHash string `json:"content_hash" db:"content_hash"`
	FileSize    int64  `json:"file_size" db:"file_size"`
	StoragePath string `json:"-" db:"storage_path"`

	ChangeDescription string `json:"change_description" db:"change_description"`
	AuthorID          string `json:"author_id" db:"author_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
