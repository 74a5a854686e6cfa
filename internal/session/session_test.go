package session

import (
	"context"
	"errors"
	"testing"

	"mtp/internal/config"
	"mtp/internal/domain"
	"mtp/internal/store"
)

// fakeDrafter returns a fixed report or error.
type fakeDrafter struct {
	report string
	err    error
	calls  int
}

func (f *fakeDrafter) DraftBugReport(ctx context.Context, caseText, observation string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.report, nil
}

func newTestStore(t *testing.T) *store.SQLStore {
	t.Helper()
	cfg := config.New()
	cfg.DBDriver = "sqlite"
	cfg.DBDSN = ":memory:"
	s, err := store.Open(cfg, nil)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seedModule creates one project/module with the given cases and returns
// their ids in insertion order.
func seedModule(t *testing.T, s *store.SQLStore, contents []string) []int64 {
	t.Helper()
	if _, err := s.CreateProject("Webshop"); err != nil {
		t.Fatalf("create project: %v", err)
	}
	mod, err := s.UpsertModule("Webshop", "Login")
	if err != nil {
		t.Fatalf("upsert module: %v", err)
	}
	if err := s.InsertCases(mod.ID, contents); err != nil {
		t.Fatalf("insert cases: %v", err)
	}
	cases, _, _, err := s.ListPaged("Webshop", 1, 100, "")
	if err != nil {
		t.Fatalf("list cases: %v", err)
	}
	ids := make([]int64, len(cases))
	for i, c := range cases {
		ids[i] = c.ID
	}
	return ids
}

func TestNextCase_PendingBeforeFailed(t *testing.T) {
	s := newTestStore(t)
	ids := seedModule(t, s, []string{"a", "b", "c"})
	o := New(s, &fakeDrafter{report: "r"}, nil)

	if err := s.SetStatus(ids[0], domain.StatusFailed, "report"); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	next, err := o.NextCase("Webshop", "Login")
	if err != nil {
		t.Fatalf("NextCase: %v", err)
	}
	if next == nil || next.ID != ids[1] || next.Retest {
		t.Fatalf("next = %+v, want pending case %d without retest flag", next, ids[1])
	}
}

func TestNextCase_RetestWhenOnlyFailedRemain(t *testing.T) {
	s := newTestStore(t)
	ids := seedModule(t, s, []string{"a", "b"})
	o := New(s, &fakeDrafter{report: "r"}, nil)

	if err := s.SetStatus(ids[0], domain.StatusFailed, "report"); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if err := s.SetStatus(ids[1], domain.StatusPass, ""); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	next, err := o.NextCase("Webshop", "Login")
	if err != nil {
		t.Fatalf("NextCase: %v", err)
	}
	if next == nil || next.ID != ids[0] || !next.Retest {
		t.Fatalf("next = %+v, want failed case %d with retest flag", next, ids[0])
	}
}

func TestNextCase_NilWhenComplete(t *testing.T) {
	s := newTestStore(t)
	ids := seedModule(t, s, []string{"a"})
	o := New(s, &fakeDrafter{report: "r"}, nil)

	if err := s.SetStatus(ids[0], domain.StatusPass, ""); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	next, err := o.NextCase("Webshop", "Login")
	if err != nil {
		t.Fatalf("NextCase: %v", err)
	}
	if next != nil {
		t.Fatalf("next = %+v, want nil", next)
	}
}

func TestRecordResult_Pass(t *testing.T) {
	s := newTestStore(t)
	ids := seedModule(t, s, []string{"a"})
	o := New(s, &fakeDrafter{report: "r"}, nil)

	if err := o.RecordResult(context.Background(), ids[0], domain.OutcomePass, ""); err != nil {
		t.Fatalf("RecordResult: %v", err)
	}
	c, err := s.GetCase(ids[0])
	if err != nil {
		t.Fatalf("GetCase: %v", err)
	}
	if c.Status != domain.StatusPass || c.BugReport != "" {
		t.Fatalf("case = %+v, want PASS with no report", c)
	}
}

func TestRecordResult_FailAttachesReport(t *testing.T) {
	s := newTestStore(t)
	ids := seedModule(t, s, []string{"a"})
	drafter := &fakeDrafter{report: "**Title:** broken"}
	o := New(s, drafter, nil)

	err := o.RecordResult(context.Background(), ids[0], domain.OutcomeFail, "button does nothing")
	if err != nil {
		t.Fatalf("RecordResult: %v", err)
	}
	c, err := s.GetCase(ids[0])
	if err != nil {
		t.Fatalf("GetCase: %v", err)
	}
	if c.Status != domain.StatusFailed || c.BugReport != "**Title:** broken" {
		t.Fatalf("case = %+v, want FAILED with drafted report", c)
	}
	if drafter.calls != 1 {
		t.Errorf("drafter calls = %d, want 1", drafter.calls)
	}
}

func TestRecordResult_FailRequiresObservation(t *testing.T) {
	s := newTestStore(t)
	ids := seedModule(t, s, []string{"a"})
	drafter := &fakeDrafter{report: "r"}
	o := New(s, drafter, nil)

	err := o.RecordResult(context.Background(), ids[0], domain.OutcomeFail, "   ")
	if !domain.IsValidation(err) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if drafter.calls != 0 {
		t.Errorf("drafter called despite missing observation")
	}
}

func TestRecordResult_DraftFailureLeavesCasePending(t *testing.T) {
	s := newTestStore(t)
	ids := seedModule(t, s, []string{"a"})
	drafterErr := errors.New("all models exhausted")
	o := New(s, &fakeDrafter{err: drafterErr}, nil)

	err := o.RecordResult(context.Background(), ids[0], domain.OutcomeFail, "broken")
	if !errors.Is(err, drafterErr) {
		t.Fatalf("err = %v, want drafter error", err)
	}
	c, gerr := s.GetCase(ids[0])
	if gerr != nil {
		t.Fatalf("GetCase: %v", gerr)
	}
	if c.Status != domain.StatusPending || c.BugReport != "" {
		t.Fatalf("case = %+v, want untouched PENDING", c)
	}
}

func TestRecordResult_UnknownOutcome(t *testing.T) {
	s := newTestStore(t)
	ids := seedModule(t, s, []string{"a"})
	o := New(s, &fakeDrafter{report: "r"}, nil)

	err := o.RecordResult(context.Background(), ids[0], domain.Outcome("maybe"), "obs")
	if !domain.IsValidation(err) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestResetModule_ClearsReports(t *testing.T) {
	s := newTestStore(t)
	ids := seedModule(t, s, []string{"a", "b"})
	o := New(s, &fakeDrafter{report: "r"}, nil)

	if err := s.SetStatus(ids[0], domain.StatusFailed, "report"); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if err := s.SetStatus(ids[1], domain.StatusPass, ""); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	if err := o.ResetModule("Webshop", "Login"); err != nil {
		t.Fatalf("ResetModule: %v", err)
	}
	for _, id := range ids {
		c, err := s.GetCase(id)
		if err != nil {
			t.Fatalf("GetCase: %v", err)
		}
		if c.Status != domain.StatusPending || c.BugReport != "" {
			t.Fatalf("case %d = %+v, want clean PENDING", id, c)
		}
	}
}
