package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/mliang/daylist/internal/model"
)

// Driver names accepted by New.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// SQLStore implements the Store interface over a relational database.
// It supports a local sqlite file (default) and a hosted Postgres backend
// reached through the pgx stdlib adapter. Queries are written with ?
// placeholders and rebound per driver.
type SQLStore struct {
	db     *sqlx.DB
	driver string
}

// New opens a database connection for the given driver and DSN.
// For sqlite it enables WAL mode and foreign keys and runs any pending
// schema migrations; for postgres the schema is owned by the hosted
// backend and only the connection is verified.
func New(driver, dsn string) (*SQLStore, error) {
	var db *sqlx.DB
	var err error

	switch driver {
	case DriverSQLite:
		db, err = sqlx.Open("sqlite", dsn)
	case DriverPostgres:
		db, err = sqlx.Open("pgx", dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s db: %w", driver, err)
	}

	s := &SQLStore{db: db, driver: driver}

	if driver == DriverSQLite {
		// Pragmas are per-connection; a single connection keeps them in
		// effect for every query and avoids writer lock contention.
		db.SetMaxOpenConns(1)

		// Enable WAL mode for better concurrent read performance.
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enabling WAL mode: %w", err)
		}

		// Cascade deletes from todos to sub_tasks depend on this.
		if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enabling foreign keys: %w", err)
		}

		if err := s.runMigrations(); err != nil {
			db.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	} else {
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, fmt.Errorf("connecting to %s: %w", driver, err)
		}
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// rebind converts ? placeholders to the driver's bind variable syntax.
func (s *SQLStore) rebind(query string) string {
	return s.db.Rebind(query)
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order. Only used for the sqlite driver.
func (s *SQLStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// isUniqueViolation reports whether err is a unique-constraint failure,
// for either backend. Used to treat a racing user insert as "already
// exists" rather than a hard error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// boolToInt converts a boolean to 0 or 1. is_completed columns are stored
// as INTEGER 0/1 so the same scan code works on both backends.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// scanSubTask scans a sub_task row.
func scanSubTask(rows interface{ Scan(dest ...interface{}) error }) (model.SubTask, error) {
	var (
		st           model.SubTask
		completedInt int
	)

	err := rows.Scan(
		&st.ID, &st.TodoID, &st.Text, &completedInt, &st.CreatedAt,
	)
	if err != nil {
		return model.SubTask{}, fmt.Errorf("scanning sub_task row: %w", err)
	}

	st.IsCompleted = completedInt != 0
	return st, nil
}

// scanTodo scans a todo row. SubTasks is initialized to an empty slice;
// local state never carries a nil sub-task list.
func scanTodo(rows interface{ Scan(dest ...interface{}) error }) (model.Todo, error) {
	var (
		todo         model.Todo
		completedInt int
	)

	err := rows.Scan(
		&todo.ID, &todo.UserID, &todo.Title, &completedInt,
		&todo.Date, &todo.CreatedAt,
	)
	if err != nil {
		return model.Todo{}, fmt.Errorf("scanning todo row: %w", err)
	}

	todo.IsCompleted = completedInt != 0
	todo.SubTasks = []model.SubTask{}
	return todo, nil
}
