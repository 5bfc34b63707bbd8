package storage

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// VersionChecker reports whether a (document, version) pair has a backing
// row in the relational store.
type VersionChecker func(ctx context.Context, documentID string, version int) (bool, error)

// SweepReport summarizes one reconciliation pass.
type SweepReport struct {
	Scanned int
	Orphans []string
	Removed int
}

// Sweeper is the out-of-band reconciliation tool for orphaned version
// files. An aborted append can leave a copied-but-uncommitted file on
// disk; versioned paths are never reused, so orphans are a bounded space
// leak rather than a correctness problem, and a periodic sweep reclaims
// them. Not part of the transactional core.
type Sweeper struct {
	base    string
	exists  VersionChecker
	deleteF bool
	logger  *slog.Logger
}

// NewSweeper creates a sweeper rooted at base. With deleteFiles false the
// sweep only reports orphans (dry run).
func NewSweeper(base string, exists VersionChecker, deleteFiles bool, logger *slog.Logger) *Sweeper {
	return &Sweeper{base: base, exists: exists, deleteF: deleteFiles, logger: logger}
}

// Run walks base/<shard>/<document_id>/v<N> and collects files whose
// (document, version) pair has no row.
func (s *Sweeper) Run(ctx context.Context) (*SweepReport, error) {
	report := &SweepReport{}

	err := filepath.WalkDir(s.base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}

		docID, version, ok := parseVersionPath(s.base, path)
		if !ok {
			s.logger.Warn("unrecognized file under storage root", "path", path)
			return nil
		}
		report.Scanned++

		found, err := s.exists(ctx, docID, version)
		if err != nil {
			return fmt.Errorf("check version %s v%d: %w", docID, version, err)
		}
		if found {
			return nil
		}

		report.Orphans = append(report.Orphans, path)
		if s.deleteF {
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("remove orphan %s: %w", path, err)
			}
			report.Removed++
			s.logger.Info("removed orphan file", "path", path, "document_id", docID, "version", version)
		} else {
			s.logger.Info("orphan file found", "path", path, "document_id", docID, "version", version)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return report, nil
}

// parseVersionPath extracts the document ID and version number from a
// path shaped like base/<shard>/<document_id>/v<N>.
func parseVersionPath(base, path string) (string, int, bool) {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return "", 0, false
	}

	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) != 3 {
		return "", 0, false
	}

	docID := parts[1]
	if Shard(docID) != parts[0] {
		return "", 0, false
	}

	if !strings.HasPrefix(parts[2], "v") {
		return "", 0, false
	}
	version, err := strconv.Atoi(strings.TrimPrefix(parts[2], "v"))
	if err != nil || version < 1 {
		return "", 0, false
	}

	return docID, version, true
}
