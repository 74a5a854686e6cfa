package store

import (
	"database/sql"
	"fmt"
	"strings"

	"mtp/internal/config"
	"mtp/internal/domain"

	"go.uber.org/zap"
)

// InsertCases appends case rows to a module, preserving input order and
// assigning monotonically increasing sequence numbers. New cases start as
// PENDING with no bug report. The whole batch is one transaction; seq is
// UNIQUE, so a concurrent batch that read the same MAX fails and rolls back
// rather than duplicating a position.
func (s *SQLStore) InsertCases(moduleID int64, contents []string) error {
	if len(contents) == 0 {
		return nil
	}

	err := s.inTx(func(tx *sql.Tx) error {
		var exists int64
		err := tx.QueryRow("SELECT id FROM modules WHERE id = ?", moduleID).Scan(&exists)
		if err == sql.ErrNoRows {
			return fmt.Errorf("module %d: %w", moduleID, domain.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("look up module %d: %w", moduleID, err)
		}

		var seq int64
		if err := tx.QueryRow("SELECT COALESCE(MAX(seq), 0) FROM test_cases").Scan(&seq); err != nil {
			return fmt.Errorf("read sequence: %w", err)
		}

		stmt, err := tx.Prepare("INSERT INTO test_cases (module_id, content, status, seq) VALUES (?, ?, 'PENDING', ?)")
		if err != nil {
			return fmt.Errorf("prepare case insert: %w", err)
		}
		defer stmt.Close()

		for _, content := range contents {
			seq++
			if _, err := stmt.Exec(moduleID, content, seq); err != nil {
				return fmt.Errorf("insert case: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Debug("cases inserted", zap.Int64("module_id", moduleID), zap.Int("count", len(contents)))
	return nil
}

// GetCase returns a single case by id.
func (s *SQLStore) GetCase(caseID int64) (domain.Case, error) {
	row := s.db.QueryRow(`
		SELECT tc.id, tc.module_id, m.name, tc.content, tc.status, COALESCE(tc.bug_report, ''), tc.seq
		FROM test_cases tc
		JOIN modules m ON m.id = tc.module_id
		WHERE tc.id = ?`, caseID)

	c, err := scanCase(row)
	if err == sql.ErrNoRows {
		return domain.Case{}, fmt.Errorf("case %d: %w", caseID, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Case{}, fmt.Errorf("get case %d: %w", caseID, err)
	}
	return c, nil
}

// SetStatus updates a case's status. Setting a non-FAILED status clears any
// existing bug report so a stale report cannot survive a re-pass. Writes to
// an already-terminal case follow last-write-wins.
func (s *SQLStore) SetStatus(caseID int64, status domain.Status, bugReport string) error {
	if !status.Valid() {
		return &domain.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", status)}
	}
	if status != domain.StatusFailed {
		bugReport = ""
	}

	err := s.inTx(func(tx *sql.Tx) error {
		var exists int64
		err := tx.QueryRow("SELECT id FROM test_cases WHERE id = ?", caseID).Scan(&exists)
		if err == sql.ErrNoRows {
			return fmt.Errorf("case %d: %w", caseID, domain.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("look up case %d: %w", caseID, err)
		}

		if _, err := tx.Exec("UPDATE test_cases SET status = ?, bug_report = ? WHERE id = ?",
			string(status), nullable(bugReport), caseID); err != nil {
			return fmt.Errorf("update case %d: %w", caseID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Debug("case status set", zap.Int64("case_id", caseID), zap.String("status", string(status)))
	return nil
}

// FirstByStatus returns the lowest-sequence case with the given status in a
// module, or nil when the module has none.
func (s *SQLStore) FirstByStatus(project, module string, status domain.Status) (*domain.Case, error) {
	row := s.db.QueryRow(`
		SELECT tc.id, tc.module_id, m.name, tc.content, tc.status, COALESCE(tc.bug_report, ''), tc.seq
		FROM test_cases tc
		JOIN modules m ON m.id = tc.module_id
		JOIN projects p ON p.id = m.project_id
		WHERE p.name = ? AND m.name = ? AND tc.status = ?
		ORDER BY tc.seq
		LIMIT 1`, strings.TrimSpace(project), strings.TrimSpace(module), string(status))

	c, err := scanCase(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("first %s case in %q: %w", status, module, err)
	}
	return &c, nil
}

// ListPaged returns one page of a project's cases in sequence order, the
// total matching count, and the distinct module names of the project.
// page is 1-indexed; pageSize is clamped to config.MaxPageSize.
// statusFilter "all" or "" means no filter.
func (s *SQLStore) ListPaged(project string, page, pageSize int, statusFilter string) ([]domain.Case, int, []string, error) {
	project = strings.TrimSpace(project)
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = config.DefaultPageSize
	}
	if pageSize > config.MaxPageSize {
		pageSize = config.MaxPageSize
	}

	where := "p.name = ?"
	args := []any{project}
	if statusFilter != "" && statusFilter != "all" {
		where += " AND tc.status = ?"
		args = append(args, statusFilter)
	}

	var total int
	countQuery := `
		SELECT COUNT(*)
		FROM test_cases tc
		JOIN modules m ON m.id = tc.module_id
		JOIN projects p ON p.id = m.project_id
		WHERE ` + where
	if err := s.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, nil, fmt.Errorf("count cases %q: %w", project, err)
	}

	listQuery := `
		SELECT tc.id, tc.module_id, m.name, tc.content, tc.status, COALESCE(tc.bug_report, ''), tc.seq
		FROM test_cases tc
		JOIN modules m ON m.id = tc.module_id
		JOIN projects p ON p.id = m.project_id
		WHERE ` + where + `
		ORDER BY tc.seq
		LIMIT ? OFFSET ?`
	listArgs := append(args, pageSize, (page-1)*pageSize)

	rows, err := s.db.Query(listQuery, listArgs...)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("list cases %q: %w", project, err)
	}
	defer rows.Close()

	var cases []domain.Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, 0, nil, fmt.Errorf("scan case: %w", err)
		}
		cases = append(cases, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, nil, err
	}

	modRows, err := s.db.Query(`
		SELECT m.name FROM modules m
		JOIN projects p ON p.id = m.project_id
		WHERE p.name = ?
		ORDER BY m.id`, project)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("list modules %q: %w", project, err)
	}
	defer modRows.Close()

	var modules []string
	for modRows.Next() {
		var name string
		if err := modRows.Scan(&name); err != nil {
			return nil, 0, nil, fmt.Errorf("scan module name: %w", err)
		}
		modules = append(modules, name)
	}
	return cases, total, modules, modRows.Err()
}

// BulkDelete removes the given cases in one transaction. Unknown ids are
// skipped silently; the operation is documented best-effort.
func (s *SQLStore) BulkDelete(caseIDs []int64) error {
	if len(caseIDs) == 0 {
		return nil
	}
	err := s.inTx(func(tx *sql.Tx) error {
		query := "DELETE FROM test_cases WHERE id IN (" + placeholders(len(caseIDs)) + ")"
		if _, err := tx.Exec(query, int64Args(caseIDs)...); err != nil {
			return fmt.Errorf("bulk delete cases: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Debug("cases bulk-deleted", zap.Int("count", len(caseIDs)))
	return nil
}

// BulkSetStatus updates the status of the given cases in one transaction,
// clearing bug reports when the new status is not FAILED. Unknown ids are
// skipped silently.
func (s *SQLStore) BulkSetStatus(caseIDs []int64, status domain.Status) error {
	if len(caseIDs) == 0 {
		return nil
	}
	if !status.Valid() {
		return &domain.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", status)}
	}

	err := s.inTx(func(tx *sql.Tx) error {
		query := "UPDATE test_cases SET status = ? WHERE id IN (" + placeholders(len(caseIDs)) + ")"
		args := append([]any{string(status)}, int64Args(caseIDs)...)
		if status != domain.StatusFailed {
			query = "UPDATE test_cases SET status = ?, bug_report = NULL WHERE id IN (" + placeholders(len(caseIDs)) + ")"
		}
		if _, err := tx.Exec(query, args...); err != nil {
			return fmt.Errorf("bulk set status: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Debug("cases bulk-updated", zap.Int("count", len(caseIDs)), zap.String("status", string(status)))
	return nil
}

// UpdateBugReport replaces the bug report text of a FAILED case.
func (s *SQLStore) UpdateBugReport(caseID int64, text string) error {
	return s.inTx(func(tx *sql.Tx) error {
		var status string
		err := tx.QueryRow("SELECT status FROM test_cases WHERE id = ?", caseID).Scan(&status)
		if err == sql.ErrNoRows {
			return fmt.Errorf("case %d: %w", caseID, domain.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("look up case %d: %w", caseID, err)
		}
		if domain.Status(status) != domain.StatusFailed {
			return &domain.ValidationError{Field: "case", Reason: "bug report only allowed on FAILED cases"}
		}
		if _, err := tx.Exec("UPDATE test_cases SET bug_report = ? WHERE id = ?", nullable(text), caseID); err != nil {
			return fmt.Errorf("update bug report %d: %w", caseID, err)
		}
		return nil
	})
}

// DeleteBugReport clears the bug report text of a case without touching its
// status.
func (s *SQLStore) DeleteBugReport(caseID int64) error {
	return s.inTx(func(tx *sql.Tx) error {
		var exists int64
		err := tx.QueryRow("SELECT id FROM test_cases WHERE id = ?", caseID).Scan(&exists)
		if err == sql.ErrNoRows {
			return fmt.Errorf("case %d: %w", caseID, domain.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("look up case %d: %w", caseID, err)
		}
		if _, err := tx.Exec("UPDATE test_cases SET bug_report = NULL WHERE id = ?", caseID); err != nil {
			return fmt.Errorf("delete bug report %d: %w", caseID, err)
		}
		return nil
	})
}

// FailedCasesWithReports returns the project's FAILED cases that carry a
// non-empty bug report, in sequence order.
func (s *SQLStore) FailedCasesWithReports(project string) ([]domain.Case, error) {
	rows, err := s.db.Query(`
		SELECT tc.id, tc.module_id, m.name, tc.content, tc.status, COALESCE(tc.bug_report, ''), tc.seq
		FROM test_cases tc
		JOIN modules m ON m.id = tc.module_id
		JOIN projects p ON p.id = m.project_id
		WHERE p.name = ? AND tc.status = 'FAILED' AND tc.bug_report IS NOT NULL AND tc.bug_report != ''
		ORDER BY tc.seq`, strings.TrimSpace(project))
	if err != nil {
		return nil, fmt.Errorf("failed cases %q: %w", project, err)
	}
	defer rows.Close()
	return collectCases(rows)
}

// SearchCases returns up to limit cases whose content or module name
// contains the query, case-insensitively.
func (s *SQLStore) SearchCases(project, query string, limit int) ([]domain.Case, error) {
	if limit <= 0 {
		limit = 50
	}
	like := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	rows, err := s.db.Query(`
		SELECT tc.id, tc.module_id, m.name, tc.content, tc.status, COALESCE(tc.bug_report, ''), tc.seq
		FROM test_cases tc
		JOIN modules m ON m.id = tc.module_id
		JOIN projects p ON p.id = m.project_id
		WHERE p.name = ? AND (LOWER(tc.content) LIKE ? OR LOWER(m.name) LIKE ?)
		ORDER BY tc.seq
		LIMIT ?`, strings.TrimSpace(project), like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("search cases %q: %w", project, err)
	}
	defer rows.Close()
	return collectCases(rows)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCase(row rowScanner) (domain.Case, error) {
	var c domain.Case
	var status string
	if err := row.Scan(&c.ID, &c.ModuleID, &c.Module, &c.Content, &status, &c.BugReport, &c.Seq); err != nil {
		return domain.Case{}, err
	}
	c.Status = domain.Status(status)
	return c, nil
}

func collectCases(rows *sql.Rows) ([]domain.Case, error) {
	var cases []domain.Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan case: %w", err)
		}
		cases = append(cases, c)
	}
	return cases, rows.Err()
}

// nullable maps "" to NULL so empty reports are stored as absent.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
