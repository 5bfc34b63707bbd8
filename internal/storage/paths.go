package storage

import (
	"fmt"
	"path/filepath"
)

// PathFor maps a (document ID, version number) pair to the physical path
// where that version's bytes live:
//
//	base/<shard>/<document_id>/v<version>
//
// The shard is the first two characters of the document ID, which bounds
// the fan-out at the base level to the size of the ID alphabet squared
// instead of one directory entry per document. Deterministic and pure;
// the caller ensures parent directories exist before writing.
func PathFor(base, documentID string, version int) string {
	return filepath.Join(base, Shard(documentID), documentID, fmt.Sprintf("v%d", version))
}

// Shard returns the shard directory name for a document ID. IDs shorter
// than two characters shard on the whole ID.
func Shard(documentID string) string {
	if len(documentID) < 2 {
		return documentID
	}
	return documentID[:2]
}
