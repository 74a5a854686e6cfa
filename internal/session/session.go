// Package session drives a manual test walk: it picks the next case to
// present, records pass/fail verdicts and attaches AI-drafted bug reports
// to failures.
package session

import (
	"context"
	"fmt"
	"strings"

	"mtp/internal/domain"
	"mtp/internal/store"

	"go.uber.org/zap"
)

// ReportDrafter produces a bug report from case text and a tester
// observation. Satisfied by ai.Gateway.
type ReportDrafter interface {
	DraftBugReport(ctx context.Context, caseText, observation string) (string, error)
}

// Orchestrator implements the session walk over a module's cases.
type Orchestrator struct {
	store   store.Store
	drafter ReportDrafter
	logger  *zap.Logger
}

// New creates an Orchestrator.
func New(s store.Store, drafter ReportDrafter, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{store: s, drafter: drafter, logger: logger}
}

// NextCase returns the case the tester should run next: the lowest-seq
// PENDING case, else the lowest-seq FAILED case flagged as a retest.
// Returns nil when the module has nothing left to run.
func (o *Orchestrator) NextCase(project, module string) (*domain.NextCase, error) {
	c, err := o.store.FirstByStatus(project, module, domain.StatusPending)
	if err != nil {
		return nil, err
	}
	if c != nil {
		return &domain.NextCase{Case: *c}, nil
	}

	c, err = o.store.FirstByStatus(project, module, domain.StatusFailed)
	if err != nil {
		return nil, err
	}
	if c != nil {
		return &domain.NextCase{Case: *c, Retest: true}, nil
	}
	return nil, nil
}

// RecordResult applies the tester's verdict to a case.
//
// A pass marks the case PASS and clears any earlier bug report. A fail
// requires a non-empty observation; the bug report is drafted before any
// status change, so a drafting failure leaves the case untouched and the
// error surfaces to the caller.
func (o *Orchestrator) RecordResult(ctx context.Context, caseID int64, outcome domain.Outcome, observation string) error {
	switch outcome {
	case domain.OutcomePass:
		return o.store.SetStatus(caseID, domain.StatusPass, "")

	case domain.OutcomeFail:
		observation = strings.TrimSpace(observation)
		if observation == "" {
			return &domain.ValidationError{Field: "observation", Reason: "required when failing a case"}
		}

		c, err := o.store.GetCase(caseID)
		if err != nil {
			return err
		}

		report, err := o.drafter.DraftBugReport(ctx, c.Content, observation)
		if err != nil {
			o.logger.Warn("bug report draft failed, case left unchanged",
				zap.Int64("case_id", caseID), zap.Error(err))
			return fmt.Errorf("draft bug report: %w", err)
		}
		return o.store.SetStatus(caseID, domain.StatusFailed, report)

	default:
		return &domain.ValidationError{Field: "outcome", Reason: fmt.Sprintf("unknown outcome %q", outcome)}
	}
}

// PendingModules maps each module name with at least one PENDING case to
// the id of its lowest pending case, so a session can resume where it
// left off.
func (o *Orchestrator) PendingModules(project string) (map[string]int64, error) {
	return o.store.PendingModules(project)
}

// ResetModule returns every case in the module to PENDING and discards all
// bug reports, including reports on already failed cases.
func (o *Orchestrator) ResetModule(project, module string) error {
	if err := o.store.ResetModule(project, module); err != nil {
		return err
	}
	o.logger.Info("module reset", zap.String("project", project), zap.String("module", module))
	return nil
}

// Stats returns the project's aggregate counters.
func (o *Orchestrator) Stats(project string) (domain.Stats, error) {
	return o.store.GetStats(project)
}
