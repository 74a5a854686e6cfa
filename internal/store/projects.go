package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"mtp/internal/domain"

	"go.uber.org/zap"
)

// CreateProject creates a new named project. The name is trimmed before
// comparison and must be at least 2 characters long.
func (s *SQLStore) CreateProject(name string) (domain.Project, error) {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return domain.Project{}, &domain.ValidationError{Field: "project name", Reason: "must be at least 2 characters"}
	}

	var proj domain.Project
	err := s.inTx(func(tx *sql.Tx) error {
		var existing int64
		err := tx.QueryRow("SELECT id FROM projects WHERE name = ?", name).Scan(&existing)
		if err == nil {
			return fmt.Errorf("project %q: %w", name, domain.ErrAlreadyExists)
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("look up project %q: %w", name, err)
		}

		res, err := tx.Exec("INSERT INTO projects (name) VALUES (?)", name)
		if err != nil {
			return fmt.Errorf("insert project %q: %w", name, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("project insert id: %w", err)
		}
		proj = domain.Project{ID: id, Name: name, CreatedAt: time.Now()}
		return nil
	})
	if err != nil {
		return domain.Project{}, err
	}

	s.logger.Debug("project created", zap.String("project", name), zap.Int64("id", proj.ID))
	return proj, nil
}

// DeleteProject removes a project and cascades to its modules and cases.
// The cascade runs in one transaction; a partial delete is never observable.
func (s *SQLStore) DeleteProject(name string) error {
	name = strings.TrimSpace(name)
	err := s.inTx(func(tx *sql.Tx) error {
		projID, err := s.projectID(tx, name)
		if err != nil {
			return err
		}
		if _, err := tx.Exec("DELETE FROM test_cases WHERE module_id IN (SELECT id FROM modules WHERE project_id = ?)", projID); err != nil {
			return fmt.Errorf("delete cases of project %q: %w", name, err)
		}
		if _, err := tx.Exec("DELETE FROM modules WHERE project_id = ?", projID); err != nil {
			return fmt.Errorf("delete modules of project %q: %w", name, err)
		}
		if _, err := tx.Exec("DELETE FROM projects WHERE id = ?", projID); err != nil {
			return fmt.Errorf("delete project %q: %w", name, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Debug("project deleted", zap.String("project", name))
	return nil
}

// ListProjects returns all projects ordered by creation.
func (s *SQLStore) ListProjects() ([]domain.Project, error) {
	rows, err := s.db.Query("SELECT id, name, created_at FROM projects ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		var p domain.Project
		var created string
		if err := rows.Scan(&p.ID, &p.Name, &created); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		p.CreatedAt = parseTimestamp(created)
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// GetStats returns aggregate counts for a project. A project with no cases
// (or an unknown project) yields a zeroed struct, not an error.
func (s *SQLStore) GetStats(project string) (domain.Stats, error) {
	project = strings.TrimSpace(project)
	row := s.db.QueryRow(`
		SELECT
			COUNT(tc.id),
			COALESCE(SUM(CASE WHEN tc.status = 'PASS' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN tc.status = 'FAILED' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN tc.status = 'PENDING' THEN 1 ELSE 0 END), 0),
			COUNT(DISTINCT m.id)
		FROM projects p
		LEFT JOIN modules m ON m.project_id = p.id
		LEFT JOIN test_cases tc ON tc.module_id = m.id
		WHERE p.name = ?`, project)

	var stats domain.Stats
	if err := row.Scan(&stats.Total, &stats.Passed, &stats.Failed, &stats.Pending, &stats.ModuleCount); err != nil {
		if err == sql.ErrNoRows {
			return domain.Stats{}, nil
		}
		return domain.Stats{}, fmt.Errorf("project stats %q: %w", project, err)
	}
	return stats, nil
}

// ModuleStats returns per-module progress counts for a project.
func (s *SQLStore) ModuleStats(project string) ([]domain.ModuleStats, error) {
	project = strings.TrimSpace(project)
	rows, err := s.db.Query(`
		SELECT
			m.name,
			COUNT(tc.id),
			COALESCE(SUM(CASE WHEN tc.status = 'PASS' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN tc.status = 'FAILED' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN tc.status = 'PENDING' THEN 1 ELSE 0 END), 0)
		FROM modules m
		JOIN projects p ON p.id = m.project_id
		LEFT JOIN test_cases tc ON tc.module_id = m.id
		WHERE p.name = ?
		GROUP BY m.id, m.name
		ORDER BY m.id`, project)
	if err != nil {
		return nil, fmt.Errorf("module stats %q: %w", project, err)
	}
	defer rows.Close()

	var stats []domain.ModuleStats
	for rows.Next() {
		var ms domain.ModuleStats
		if err := rows.Scan(&ms.Name, &ms.Total, &ms.Passed, &ms.Failed, &ms.Pending); err != nil {
			return nil, fmt.Errorf("scan module stats: %w", err)
		}
		stats = append(stats, ms)
	}
	return stats, rows.Err()
}

// UpsertModule returns the module named name in the given project, creating
// it if absent. Idempotent on the (project, name) pair.
func (s *SQLStore) UpsertModule(project, name string) (domain.Module, error) {
	project = strings.TrimSpace(project)
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Module{}, &domain.ValidationError{Field: "module name", Reason: "must not be empty"}
	}

	var mod domain.Module
	err := s.inTx(func(tx *sql.Tx) error {
		projID, err := s.projectID(tx, project)
		if err != nil {
			return err
		}
		err = tx.QueryRow("SELECT id FROM modules WHERE project_id = ? AND name = ?", projID, name).Scan(&mod.ID)
		if err == nil {
			mod.ProjectID, mod.Name = projID, name
			return nil
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("look up module %q: %w", name, err)
		}

		res, err := tx.Exec("INSERT INTO modules (project_id, name) VALUES (?, ?)", projID, name)
		if err != nil {
			return fmt.Errorf("insert module %q: %w", name, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("module insert id: %w", err)
		}
		mod = domain.Module{ID: id, ProjectID: projID, Name: name}
		return nil
	})
	if err != nil {
		return domain.Module{}, err
	}
	return mod, nil
}

// ResetModule returns every case in the module to PENDING and clears all
// bug reports, regardless of current status. Idempotent.
func (s *SQLStore) ResetModule(project, module string) error {
	err := s.inTx(func(tx *sql.Tx) error {
		modID, err := s.moduleID(tx, strings.TrimSpace(project), strings.TrimSpace(module))
		if err != nil {
			return err
		}
		if _, err := tx.Exec("UPDATE test_cases SET status = 'PENDING', bug_report = NULL WHERE module_id = ?", modID); err != nil {
			return fmt.Errorf("reset module %q: %w", module, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Debug("module reset", zap.String("project", project), zap.String("module", module))
	return nil
}

// PendingModules returns every module of the project that still has at least
// one PENDING case, mapped to its lowest pending case id. Modules with only
// terminal cases are omitted.
func (s *SQLStore) PendingModules(project string) (map[string]int64, error) {
	rows, err := s.db.Query(`
		SELECT m.name, MIN(tc.id)
		FROM test_cases tc
		JOIN modules m ON m.id = tc.module_id
		JOIN projects p ON p.id = m.project_id
		WHERE p.name = ? AND tc.status = 'PENDING'
		GROUP BY m.id, m.name`, strings.TrimSpace(project))
	if err != nil {
		return nil, fmt.Errorf("pending modules %q: %w", project, err)
	}
	defer rows.Close()

	pending := make(map[string]int64)
	for rows.Next() {
		var name string
		var anchor int64
		if err := rows.Scan(&name, &anchor); err != nil {
			return nil, fmt.Errorf("scan pending module: %w", err)
		}
		pending[name] = anchor
	}
	return pending, rows.Err()
}

// parseTimestamp handles the timestamp formats the two dialects emit.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05Z"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
