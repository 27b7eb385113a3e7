// Package sqlite provides durable storage for the manifest and query cache.
//
// The manifest is persisted as a single versioned JSON document so swaps stay
// atomic at the row level; the in-memory store remains the authority and this
// layer only loads at startup and writes behind it. The query cache is stored
// row-per-plan with an expiry column.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/shadowgov/artfetch/internal/adapters/driven/storage/memory"
	"github.com/shadowgov/artfetch/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/shadowgov/artfetch/internal/core/domain"
	"github.com/shadowgov/artfetch/internal/core/ports/driven"
	"github.com/shadowgov/artfetch/internal/logger"
)

// manifestSchemaVersion is the document format this build reads and writes.
const manifestSchemaVersion = 1

const manifestNamespace = "manifest"

// Store is a SQLite-backed storage root for the manifest document and the
// query cache.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.artfetch/data/artfetch.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".artfetch", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "artfetch.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Manifest Store ====================

// manifestDocument is the persisted manifest format.
type manifestDocument struct {
	Version int                             `json:"version"`
	Entries map[string]domain.ManifestEntry `json:"entries"`
}

// ManifestStore loads the persisted manifest and returns a store that writes
// every mutation back to the database. A document with an unknown schema
// version is refused.
func (s *Store) ManifestStore() (driven.ManifestStore, error) {
	entries, err := s.loadManifest()
	if err != nil {
		return nil, err
	}
	return memory.NewManifestStoreWith(entries, s.persistManifest), nil
}

func (s *Store) loadManifest() (map[string]domain.ManifestEntry, error) {
	var body string
	err := s.db.QueryRow("SELECT body FROM documents WHERE namespace = ?", manifestNamespace).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading manifest document: %w", err)
	}

	var doc manifestDocument
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, fmt.Errorf("parsing manifest document: %w", err)
	}
	if doc.Version != manifestSchemaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", domain.ErrManifestVersion, doc.Version, manifestSchemaVersion)
	}
	return doc.Entries, nil
}

func (s *Store) persistManifest(entries map[string]domain.ManifestEntry) error {
	body, err := json.Marshal(manifestDocument{
		Version: manifestSchemaVersion,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("marshalling manifest document: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO documents (namespace, body, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(namespace) DO UPDATE SET
			body = excluded.body,
			updated_at = excluded.updated_at
	`, manifestNamespace, string(body), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("writing manifest document: %w", err)
	}
	return nil
}

// ==================== Query Cache ====================

// queryCache implements driven.QueryCache over the query_cache table.
type queryCache struct {
	store *Store
}

var _ driven.QueryCache = (*queryCache)(nil)

// QueryCache returns a QueryCache backed by this store.
func (s *Store) QueryCache() driven.QueryCache {
	return &queryCache{store: s}
}

// Get returns the cached candidate pool for a plan key, if present and fresh.
func (c *queryCache) Get(ctx context.Context, key string) ([]domain.AssetCandidate, bool) {
	var body string
	err := c.store.db.QueryRowContext(ctx,
		"SELECT body FROM query_cache WHERE key = ? AND expires_at > ?",
		key, time.Now().UTC(),
	).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, false
	}
	if err != nil {
		logger.Warn("reading query cache: %v", err)
		return nil, false
	}

	var pool []domain.AssetCandidate
	if err := json.Unmarshal([]byte(body), &pool); err != nil {
		logger.Warn("parsing cached candidate pool: %v", err)
		return nil, false
	}
	return pool, true
}

// Set stores a candidate pool under a plan key with the given TTL.
func (c *queryCache) Set(ctx context.Context, key string, pool []domain.AssetCandidate, ttl time.Duration) {
	body, err := json.Marshal(pool)
	if err != nil {
		logger.Warn("marshalling candidate pool: %v", err)
		return
	}

	_, err = c.store.db.ExecContext(ctx, `
		INSERT INTO query_cache (key, body, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			body = excluded.body,
			expires_at = excluded.expires_at
	`, key, string(body), time.Now().UTC().Add(ttl))
	if err != nil {
		logger.Warn("writing query cache: %v", err)
	}
}

// Clear empties the query cache.
func (c *queryCache) Clear(ctx context.Context) {
	if _, err := c.store.db.ExecContext(ctx, "DELETE FROM query_cache"); err != nil {
		logger.Warn("clearing query cache: %v", err)
	}
}

// PruneExpired removes cache rows past their expiry and returns the count.
func (c *queryCache) PruneExpired(ctx context.Context) (int64, error) {
	res, err := c.store.db.ExecContext(ctx, "DELETE FROM query_cache WHERE expires_at <= ?", time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("pruning query cache: %w", err)
	}
	return res.RowsAffected()
}
