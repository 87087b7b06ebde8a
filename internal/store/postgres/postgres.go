// Package postgres implements the store.Store interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/alfredjeanlab/quotewidget/internal/model"
	"github.com/alfredjeanlab/quotewidget/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore implements store.Store backed by a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// Compile-time check that PostgresStore implements store.Store.
var _ store.Store = (*PostgresStore)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// NewWithDB wraps an already-open database handle without running migrations.
func NewWithDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) GetPref(ctx context.Context, key string) (*model.Pref, error) {
	return queryGetPref(ctx, s.db, key)
}

func (s *PostgresStore) HasPref(ctx context.Context, key string) (bool, error) {
	return queryHasPref(ctx, s.db, key)
}

func (s *PostgresStore) SetPref(ctx context.Context, pref *model.Pref) error {
	return querySetPref(ctx, s.db, pref)
}

func (s *PostgresStore) DeletePref(ctx context.Context, key string) error {
	return queryDeletePref(ctx, s.db, key)
}

func (s *PostgresStore) ListPrefs(ctx context.Context, widgetID int) ([]*model.Pref, error) {
	return queryListPrefs(ctx, s.db, widgetID)
}

func (s *PostgresStore) ListAllPrefs(ctx context.Context) ([]*model.Pref, error) {
	return queryListAllPrefs(ctx, s.db)
}

func (s *PostgresStore) DeleteWidgetPrefs(ctx context.Context, widgetID int) (int, error) {
	return queryDeleteWidgetPrefs(ctx, s.db, widgetID)
}

func (s *PostgresStore) PlaceWidget(ctx context.Context, widget *model.Widget) error {
	return queryPlaceWidget(ctx, s.db, widget)
}

func (s *PostgresStore) RemoveWidget(ctx context.Context, id int) error {
	return queryRemoveWidget(ctx, s.db, id)
}

func (s *PostgresStore) ListWidgets(ctx context.Context) ([]*model.Widget, error) {
	return queryListWidgets(ctx, s.db)
}

// RunInTransaction begins a database transaction, creates a txStore that
// delegates to it, calls fn, and commits on success or rolls back on error.
func (s *PostgresStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txS := &txStore{tx: tx}
	if err := fn(txS); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txStore implements store.Store using a *sql.Tx.
type txStore struct {
	tx *sql.Tx
}

// Compile-time check that txStore implements store.Store.
var _ store.Store = (*txStore)(nil)

func (s *txStore) GetPref(ctx context.Context, key string) (*model.Pref, error) {
	return queryGetPref(ctx, s.tx, key)
}

func (s *txStore) HasPref(ctx context.Context, key string) (bool, error) {
	return queryHasPref(ctx, s.tx, key)
}

func (s *txStore) SetPref(ctx context.Context, pref *model.Pref) error {
	return querySetPref(ctx, s.tx, pref)
}

func (s *txStore) DeletePref(ctx context.Context, key string) error {
	return queryDeletePref(ctx, s.tx, key)
}

func (s *txStore) ListPrefs(ctx context.Context, widgetID int) ([]*model.Pref, error) {
	return queryListPrefs(ctx, s.tx, widgetID)
}

func (s *txStore) ListAllPrefs(ctx context.Context) ([]*model.Pref, error) {
	return queryListAllPrefs(ctx, s.tx)
}

func (s *txStore) DeleteWidgetPrefs(ctx context.Context, widgetID int) (int, error) {
	return queryDeleteWidgetPrefs(ctx, s.tx, widgetID)
}

func (s *txStore) PlaceWidget(ctx context.Context, widget *model.Widget) error {
	return queryPlaceWidget(ctx, s.tx, widget)
}

func (s *txStore) RemoveWidget(ctx context.Context, id int) error {
	return queryRemoveWidget(ctx, s.tx, id)
}

func (s *txStore) ListWidgets(ctx context.Context) ([]*model.Widget, error) {
	return queryListWidgets(ctx, s.tx)
}

// RunInTransaction on a txStore reuses the existing transaction (no nesting).
func (s *txStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

// Close is a no-op for a transaction store; the parent store owns the connection.
func (s *txStore) Close() error {
	return nil
}
