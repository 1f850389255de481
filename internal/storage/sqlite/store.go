package sqlite

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/mealplanner/internal/logger"
	"github.com/julianstephens/mealplanner/internal/migration"
	"github.com/julianstephens/mealplanner/internal/storage"
	"github.com/julianstephens/mealplanner/migrations"
)

var _ storage.Provider = (*Store)(nil)

// Store is a SQLite backed provider.
type Store struct {
	*storage.SQLStore
	path string
	db   *sql.DB
}

// NewStore returns a store for the database file at path. Call Init to open it.
func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) open() error {
	// busy_timeout lets concurrent handlers wait on the single writer.
	db, err := sql.Open("sqlite", s.path+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db
	s.SQLStore = storage.NewSQLStore(db, migration.SQLite)
	return nil
}

// Init creates the database if needed and applies pending migrations.
func (s *Store) Init() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	if err := s.open(); err != nil {
		return err
	}
	if err := s.runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Load opens an existing database and checks its schema version.
func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("sandbox database not initialized, run 'mealplanner sandbox seed' first")
	}
	if err := s.open(); err != nil {
		return err
	}
	return s.runner().ValidateVersion()
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) Name() string {
	return s.path
}

func (s *Store) runner() *migration.Runner {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		// The directory is embedded at build time.
		panic(err)
	}
	return migration.NewRunner(s.db, subFS, migration.SQLite)
}

func (s *Store) runMigrations() error {
	_, err := s.runner().Apply(func(msg string) {
		logger.Info(msg, "store", "sqlite")
	})
	return err
}
