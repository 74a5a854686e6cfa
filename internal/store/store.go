// Package store implements the durable case store: projects, modules and
// test cases with their status and bug reports. It runs on database/sql
// with a SQLite dialect for local use and a MySQL dialect for shared
// deployments. All multi-row mutations are transactional: a failure mid
// operation leaves prior state intact.
package store

import (
	"database/sql"
	"fmt"

	"mtp/internal/config"
	"mtp/internal/domain"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Store persists projects, modules and test cases.
type Store interface {
	// Projects
	CreateProject(name string) (domain.Project, error)
	DeleteProject(name string) error
	ListProjects() ([]domain.Project, error)
	GetStats(project string) (domain.Stats, error)
	ModuleStats(project string) ([]domain.ModuleStats, error)

	// Modules
	UpsertModule(project, name string) (domain.Module, error)
	ResetModule(project, module string) error
	PendingModules(project string) (map[string]int64, error)

	// Cases
	InsertCases(moduleID int64, contents []string) error
	GetCase(caseID int64) (domain.Case, error)
	SetStatus(caseID int64, status domain.Status, bugReport string) error
	FirstByStatus(project, module string, status domain.Status) (*domain.Case, error)
	ListPaged(project string, page, pageSize int, statusFilter string) ([]domain.Case, int, []string, error)
	BulkDelete(caseIDs []int64) error
	BulkSetStatus(caseIDs []int64, status domain.Status) error

	// Bug reports
	UpdateBugReport(caseID int64, text string) error
	DeleteBugReport(caseID int64) error
	FailedCasesWithReports(project string) ([]domain.Case, error)

	// Search
	SearchCases(project, query string, limit int) ([]domain.Case, error)

	Close() error
}

// SQLStore is the database/sql implementation of Store.
type SQLStore struct {
	db     *sql.DB
	driver string
	logger *zap.Logger
}

// Open connects to the configured database, applies the schema and returns
// a ready store.
func Open(cfg *config.Config, logger *zap.Logger) (*SQLStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	driver := cfg.DBDriver
	if driver == "" {
		driver = config.DefaultDBDriver
	}
	if driver != "sqlite" && driver != "mysql" {
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := sql.Open(driver, cfg.GetDBDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == "sqlite" {
		// A second pool connection would see a different :memory: database
		// and file databases gain nothing from concurrent writers here.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLStore{db: db, driver: driver, logger: logger}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Debug("store opened", zap.String("driver", driver))
	return s, nil
}

// Close closes the underlying database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// projectID resolves a project name to its id within tx.
// Returns domain.ErrNotFound when the project does not exist.
func (s *SQLStore) projectID(q queryer, name string) (int64, error) {
	var id int64
	err := q.QueryRow("SELECT id FROM projects WHERE name = ?", name).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("project %q: %w", name, domain.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("look up project %q: %w", name, err)
	}
	return id, nil
}

// moduleID resolves a (project, module) pair to the module id within tx.
func (s *SQLStore) moduleID(q queryer, project, module string) (int64, error) {
	projID, err := s.projectID(q, project)
	if err != nil {
		return 0, err
	}
	var id int64
	err = q.QueryRow("SELECT id FROM modules WHERE project_id = ? AND name = ?", projID, module).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("module %q: %w", module, domain.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("look up module %q: %w", module, err)
	}
	return id, nil
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryRow(query string, args ...any) *sql.Row
	Query(query string, args ...any) (*sql.Rows, error)
	Exec(query string, args ...any) (sql.Result, error)
}

// inTx runs fn inside a transaction, rolling back on error.
func (s *SQLStore) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
