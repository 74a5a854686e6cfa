package ingest

import (
	"testing"

	"mtp/internal/config"
	"mtp/internal/domain"
	"mtp/internal/store"
)

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

func TestIngest_CreatesProjectAndModule(t *testing.T) {
	s := newTestStore(t)
	ing := New(s, nil)

	res, err := ing.Ingest("  Webshop  ", " Login ", []domain.CaseDraft{
		{Text: "Verify login works"},
		{Text: "Check error message"},
	})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if res.Project != "Webshop" || res.Module != "Login" {
		t.Errorf("result names = %q/%q, want trimmed", res.Project, res.Module)
	}
	if res.Inserted != 2 {
		t.Errorf("inserted = %d, want 2", res.Inserted)
	}

	cases, total, _, err := s.ListPaged("Webshop", 1, 20, "")
	if err != nil {
		t.Fatalf("ListPaged: %v", err)
	}
	if total != 2 {
		t.Fatalf("total = %d, want 2", total)
	}
	if cases[0].Content != "Verify login works" || cases[1].Content != "Check error message" {
		t.Errorf("order not preserved: %q, %q", cases[0].Content, cases[1].Content)
	}
	for _, c := range cases {
		if c.Status != domain.StatusPending {
			t.Errorf("case %d status = %s, want PENDING", c.ID, c.Status)
		}
	}
}

func TestIngest_ExistingProjectIsReused(t *testing.T) {
	s := newTestStore(t)
	ing := New(s, nil)

	if _, err := ing.Ingest("Webshop", "Login", []domain.CaseDraft{{Text: "a"}}); err != nil {
		t.Fatalf("first Ingest: %v", err)
	}
	if _, err := ing.Ingest("Webshop", "Checkout", []domain.CaseDraft{{Text: "b"}}); err != nil {
		t.Fatalf("second Ingest: %v", err)
	}

	projects, err := s.ListProjects()
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("projects = %d, want 1", len(projects))
	}
	stats, err := s.GetStats("Webshop")
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.ModuleCount != 2 || stats.Total != 2 {
		t.Errorf("stats = %+v, want 2 modules with 2 cases", stats)
	}
}

func TestIngest_EmptyDraftsInsertNothing(t *testing.T) {
	s := newTestStore(t)
	ing := New(s, nil)

	res, err := ing.Ingest("Webshop", "Login", nil)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if res.Inserted != 0 {
		t.Errorf("inserted = %d, want 0", res.Inserted)
	}
	stats, err := s.GetStats("Webshop")
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.Total != 0 || stats.ModuleCount != 1 {
		t.Errorf("stats = %+v, want empty module", stats)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		draft domain.CaseDraft
		want  string
	}{
		{
			name:  "plain text",
			draft: domain.CaseDraft{Text: "  Verify login  "},
			want:  "Verify login",
		},
		{
			name:  "structured",
			draft: domain.CaseDraft{Steps: "Open page", ExpectedResult: "Form shown"},
			want:  "Steps: Open page\nExpected Result: Form shown",
		},
		{
			name:  "steps only",
			draft: domain.CaseDraft{Steps: "Open page"},
			want:  "Steps: Open page",
		},
		{
			name:  "serialized object in text",
			draft: domain.CaseDraft{Text: `{"steps": "Open page", "expected_result": "Form shown"}`},
			want:  "Steps: Open page\nExpected Result: Form shown",
		},
		{
			name:  "serialized object with synonym keys",
			draft: domain.CaseDraft{Text: `{"actions": ["Open page", "Press login"], "expected": "Logged in"}`},
			want:  "Steps: Open page Press login\nExpected Result: Logged in",
		},
		{
			name:  "malformed json kept verbatim",
			draft: domain.CaseDraft{Text: `{"steps": "Open page"`},
			want:  `{"steps": "Open page"`,
		},
		{
			name:  "json without recognized fields kept verbatim",
			draft: domain.CaseDraft{Text: `{"note": "not a case shape"}`},
			want:  `{"note": "not a case shape"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.draft); got != tt.want {
				t.Errorf("Normalize() = %q, want %q", got, tt.want)
			}
		})
	}
}
