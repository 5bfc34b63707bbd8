package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	// Read environment to determine table prefix
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "dev" // Default to dev
	}
	prefix := os.Getenv("TABLE_PREFIX")
	if prefix == "" {
		prefix = env + "_"
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = db.Close() }() // Error ignored: script exiting

	// Create all tables with environment-specific prefix
	createSQL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]sfolders (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			parent_id     TEXT REFERENCES %[1]sfolders(id),
			full_path     TEXT NOT NULL,
			case_id       TEXT,
			access_level  INT NOT NULL DEFAULT 0,
			owner_id      TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS %[1]sdocuments (
			id              TEXT PRIMARY KEY,
			filename        TEXT NOT NULL,
			title           TEXT NOT NULL,
			description     TEXT NOT NULL DEFAULT '',
			doc_type        TEXT NOT NULL,
			status          TEXT NOT NULL DEFAULT 'active',
			folder_id       TEXT REFERENCES %[1]sfolders(id),
			case_id         TEXT,
			mime_type       TEXT NOT NULL,
			file_size       BIGINT NOT NULL DEFAULT 0,
			current_version INT NOT NULL DEFAULT 0,
			storage_path    TEXT NOT NULL DEFAULT '',
			access_level    INT NOT NULL DEFAULT 0,
			owner_id        TEXT NOT NULL,
			locked_by       TEXT,
			locked_at       TIMESTAMPTZ,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS %[1]sdocument_versions (
			id                 TEXT PRIMARY KEY,
			document_id        TEXT NOT NULL REFERENCES %[1]sdocuments(id),
			version_number     INT NOT NULL,
			content_hash       TEXT NOT NULL,
			file_size          BIGINT NOT NULL,
			storage_path       TEXT NOT NULL,
			change_description TEXT NOT NULL DEFAULT '',
			author_id          TEXT NOT NULL,
			created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (document_id, version_number)
		);

		CREATE INDEX IF NOT EXISTS %[1]sdocuments_folder_idx ON %[1]sdocuments(folder_id);
		CREATE INDEX IF NOT EXISTS %[1]sdocuments_case_idx ON %[1]sdocuments(case_id);
		CREATE INDEX IF NOT EXISTS %[1]sfolders_parent_idx ON %[1]sfolders(parent_id);
		CREATE INDEX IF NOT EXISTS %[1]sversions_document_idx ON %[1]sdocument_versions(document_id);
	`, prefix)

	if _, err := db.Exec(createSQL); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	fmt.Printf("All tables created successfully (prefix: %s)\n", prefix)
}
