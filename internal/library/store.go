package library

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ironsheep/symbol-tools-mcp/internal/raster"
	"github.com/ironsheep/symbol-tools-mcp/internal/symbol"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store persists templates in a SQLite database. Points are stored as JSON
// and templates are rasterized again when loaded.
type Store struct {
	db *sql.DB
}

// StoreOption configures OpenStore.
type StoreOption func(*storeOptions)

type storeOptions struct {
	logMigrations bool
}

// WithMigrationLog logs applied schema migrations when enabled.
func WithMigrationLog(enabled bool) StoreOption {
	return func(o *storeOptions) { o.logMigrations = enabled }
}

// OpenStore opens or creates the database at path and applies pending
// schema migrations. Use ":memory:" for a throwaway store.
func OpenStore(path string, opts ...StoreOption) (*Store, error) {
	var o storeOptions
	for _, opt := range opts {
		opt(&o)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open template store: %w", err)
	}
	// A second connection to ":memory:" would see an empty database.
	db.SetMaxOpenConns(1)

	if err := migrateUp(db, o.logMigrations); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrateUp(db *sql.DB, logMigrations bool) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}

	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = &migrateLogger{enabled: logMigrations}

	// m is not closed; closing it would close db.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// migrateLogger implements migrate.Logger. It is silent unless enabled.
type migrateLogger struct {
	enabled bool
}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	if l.enabled {
		log.Printf("[migrate] "+format, v...)
	}
}

func (l *migrateLogger) Verbose() bool {
	return false
}

// Save inserts the templates, updating any row with the same id in place so
// it keeps its first-saved position. All rows are written in one transaction.
func (s *Store) Save(ctx context.Context, templates ...*symbol.Template) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO templates (id, label, class, platform, author, points)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			label = excluded.label,
			class = excluded.class,
			platform = excluded.platform,
			author = excluded.author,
			points = excluded.points`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range templates {
		pts, err := json.Marshal(t.Points)
		if err != nil {
			return fmt.Errorf("failed to encode points of %s: %w", t.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, t.ID.String(), t.Label, t.Class, t.Platform, t.Author, string(pts)); err != nil {
			return fmt.Errorf("failed to save template %s: %w", t.ID, err)
		}
	}
	return tx.Commit()
}

// LoadAll returns every stored template in the order it was first saved.
func (s *Store) LoadAll(ctx context.Context) ([]*symbol.Template, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, label, class, platform, author, points
		FROM templates
		ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query templates: %w", err)
	}
	defer rows.Close()

	var out []*symbol.Template
	for rows.Next() {
		var (
			id, pts string
			info    symbol.Info
		)
		if err := rows.Scan(&id, &info.Label, &info.Class, &info.Platform, &info.Author, &pts); err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}

		uid, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("bad template id %q: %w", id, err)
		}
		var points []raster.Point
		if err := json.Unmarshal([]byte(pts), &points); err != nil {
			return nil, fmt.Errorf("bad points for template %s: %w", id, err)
		}

		t, err := symbol.NewWithID(uid, info, points)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Delete removes the template with the given id.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM templates WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete template %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load opens the store at path and adds every stored template to a new
// library.
func Load(ctx context.Context, path string, opts ...StoreOption) (*Library, *Store, error) {
	store, err := OpenStore(path, opts...)
	if err != nil {
		return nil, nil, err
	}
	templates, err := store.LoadAll(ctx)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	lib := New()
	if err := lib.Add(templates...); err != nil {
		store.Close()
		return nil, nil, err
	}
	return lib, store, nil
}
