package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// The whole service is one process over one SQLite file, so connection
// setup is the only concurrency tuning there is: WAL lets item fetches
// proceed while a write is in flight, and the busy timeout covers the
// refetch that follows every mutation.
var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	// items, taxonomy_fields, share_links and valuations all reference
	// users(id). The taxonomy ID columns on items are intentionally not
	// foreign keys; they may dangle after a field is deactivated.
	"PRAGMA foreign_keys=ON",
	"PRAGMA synchronous=NORMAL",
}

// Open opens the collection database and applies the connection pragmas.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}

	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying %q: %w", p, err)
		}
	}

	return db, nil
}
