package store

import "fmt"

// sqliteSchema creates the case store tables for the sqlite dialect.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS modules (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id INTEGER NOT NULL REFERENCES projects(id),
		name TEXT NOT NULL,
		UNIQUE(project_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS test_cases (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		module_id INTEGER NOT NULL REFERENCES modules(id),
		content TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'PENDING',
		bug_report TEXT,
		seq INTEGER NOT NULL UNIQUE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_cases_module_status ON test_cases(module_id, status, seq)`,
}

// mysqlSchema mirrors sqliteSchema for the mysql dialect. Name columns use
// a binary collation so lookups and uniqueness stay case-sensitive, as they
// are under sqlite.
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) COLLATE utf8mb4_bin NOT NULL UNIQUE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS modules (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		project_id BIGINT NOT NULL,
		name VARCHAR(255) COLLATE utf8mb4_bin NOT NULL,
		UNIQUE KEY uniq_project_module (project_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS test_cases (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		module_id BIGINT NOT NULL,
		content TEXT NOT NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'PENDING',
		bug_report TEXT,
		seq BIGINT NOT NULL,
		UNIQUE KEY uniq_seq (seq),
		KEY idx_cases_module_status (module_id, status, seq)
	)`,
}

// initSchema applies the dialect schema. Statements are idempotent so the
// store can be opened repeatedly against the same database.
func (s *SQLStore) initSchema() error {
	schema := sqliteSchema
	if s.driver == "mysql" {
		schema = mysqlSchema
	}
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema statement: %w", err)
		}
	}
	return nil
}
