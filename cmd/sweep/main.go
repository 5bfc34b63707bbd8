// Command sweep reconciles the physical storage tree against the version
// table: files under the storage root with no backing version row are
// orphans left behind by aborted uploads. Dry run by default.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"lexvault/internal/config"
	"lexvault/internal/repository/postgres"
	"lexvault/internal/storage"

	"github.com/joho/godotenv"
)

func main() {
	deleteFiles := flag.Bool("delete", false, "remove orphan files instead of just reporting them")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)
	query := fmt.Sprintf(
		"SELECT EXISTS (SELECT 1 FROM %s WHERE document_id = $1 AND version_number = $2)",
		tables.Versions,
	)

	hasRow := func(ctx context.Context, documentID string, version int) (bool, error) {
		var exists bool
		err := pool.QueryRow(ctx, query, documentID, version).Scan(&exists)
		return exists, err
	}

	sweeper := storage.NewSweeper(cfg.StorageRoot, hasRow, *deleteFiles, logger)

	report, err := sweeper.Run(ctx)
	if err != nil {
		log.Fatalf("Sweep failed: %v", err)
	}

	logger.Info("sweep complete",
		"scanned", report.Scanned,
		"orphans", len(report.Orphans),
		"removed", report.Removed,
		"dry_run", !*deleteFiles,
	)
}
