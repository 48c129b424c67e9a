// Package sqlite implements the relational store for the biblio
// circulation system: catalog items, units, loans, requests, and the
// category/series lookup tables, with typed accessors per entity.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/openshelf/biblio/pkg/types"
)

// dbFileName is the database file created inside the data directory.
const dbFileName = "biblio.db"

// Backend owns the SQLite handle and hands out table accessors. The
// database file is the transactional source of truth; there is no
// in-process cache over unit status, so every read reflects fresh
// registry state.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB

	items      *ItemsTable
	units      *UnitsTable
	loans      *LoansTable
	requests   *RequestsTable
	categories *CategoriesTable
	series     *SeriesTable
}

// NewBackend creates a new SQLite backend instance. The backend is not
// attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{}
}

// Attach opens (or creates) the database under config.DataDir and applies
// the schema. Returns ErrAlreadyAttached if called while attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return storageError("creating data dir", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, dbFileName))
	if err != nil {
		return storageError("opening database", err)
	}

	// One connection serializes all writers, so a racing claim observes the
	// committed status instead of SQLITE_BUSY. Pooled connections would
	// each need their own pragma session anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON; PRAGMA busy_timeout = 5000;"); err != nil {
		db.Close()
		return storageError("applying pragmas", err)
	}

	for _, stmt := range append(append([]string{}, schemaDDL...), indexDDL...) {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return storageError("applying schema", err)
		}
	}

	b.db = db
	b.config = config
	b.attached = true

	b.items = &ItemsTable{backend: b}
	b.units = &UnitsTable{backend: b}
	b.loans = &LoansTable{backend: b}
	b.requests = &RequestsTable{backend: b}
	b.categories = &CategoriesTable{backend: b}
	b.series = &SeriesTable{backend: b}

	return nil
}

// Detach closes the database. Idempotent: detaching a detached backend
// succeeds. After Detach, table operations return ErrDetached.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return storageError("closing database", err)
		}
		b.db = nil
	}
	b.attached = false
	return nil
}

// Config returns the configuration the backend was attached with.
func (b *Backend) Config() types.Config {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config
}

// Table accessors.

func (b *Backend) Items() *ItemsTable           { return b.items }
func (b *Backend) Units() *UnitsTable           { return b.units }
func (b *Backend) Loans() *LoansTable           { return b.loans }
func (b *Backend) Requests() *RequestsTable     { return b.requests }
func (b *Backend) Categories() *CategoriesTable { return b.categories }
func (b *Backend) Series() *SeriesTable         { return b.series }

// handle returns the live database handle, or ErrDetached.
func (b *Backend) handle() (*sql.DB, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached || b.db == nil {
		return nil, types.ErrDetached
	}
	return b.db, nil
}

// withTx runs fn inside a transaction, committing on nil and rolling back
// on error.
func (b *Backend) withTx(fn func(tx *sql.Tx) error) error {
	db, err := b.handle()
	if err != nil {
		return err
	}
	tx, err := db.Begin()
	if err != nil {
		return storageError("beginning transaction", err)
	}
	defer tx.Rollback()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return storageError("committing transaction", err)
	}
	return nil
}

// generateID generates a UUID v7 for entity IDs. v7 is time-ordered, so
// lexicographically lowest means oldest; unit selection relies on this.
func generateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails.
		return uuid.New().String()
	}
	return id.String()
}

// storageError classifies a driver fault under the generic storage error.
func storageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", types.ErrStorage, op, err)
}

// fmtTime renders a timestamp for storage; the zero time stores as the
// empty string.
func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// parseTime parses a stored timestamp; the empty string hydrates to the
// zero time.
func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}
