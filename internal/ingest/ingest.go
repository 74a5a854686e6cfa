// Package ingest turns AI case drafts into stored test cases. It owns the
// one-time normalization of draft shapes: everything past this package sees
// plain rendered content strings.
package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"mtp/internal/domain"
	"mtp/internal/store"

	"go.uber.org/zap"
)

// Ingestor writes extracted cases into the store under a project/module pair.
type Ingestor struct {
	store  store.Store
	logger *zap.Logger
}

// New creates an Ingestor.
func New(s store.Store, logger *zap.Logger) *Ingestor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingestor{store: s, logger: logger}
}

// Result reports what an ingestion run produced.
type Result struct {
	Project  string
	Module   string
	Inserted int
}

// Ingest stores the drafts as PENDING cases under project/module, creating
// both when missing. Draft order is preserved. An empty draft list creates
// the project and module but inserts nothing.
func (i *Ingestor) Ingest(project, module string, drafts []domain.CaseDraft) (Result, error) {
	project = strings.TrimSpace(project)
	module = strings.TrimSpace(module)

	if _, err := i.store.CreateProject(project); err != nil && !errors.Is(err, domain.ErrAlreadyExists) {
		return Result{}, err
	}

	mod, err := i.store.UpsertModule(project, module)
	if err != nil {
		return Result{}, err
	}

	contents := make([]string, 0, len(drafts))
	for _, draft := range drafts {
		content := Normalize(draft)
		if content == "" {
			continue
		}
		contents = append(contents, content)
	}

	if err := i.store.InsertCases(mod.ID, contents); err != nil {
		return Result{}, fmt.Errorf("insert cases: %w", err)
	}

	i.logger.Info("cases ingested",
		zap.String("project", project),
		zap.String("module", module),
		zap.Int("count", len(contents)))
	return Result{Project: project, Module: module, Inserted: len(contents)}, nil
}

// Normalize renders a draft to its canonical content string. A raw text
// draft that is itself a serialized JSON case object (a known model habit)
// is unwrapped first; on parse failure or no recognized fields the original
// string is kept as-is.
func Normalize(draft domain.CaseDraft) string {
	if draft.Structured() {
		return draft.Render()
	}

	text := strings.TrimSpace(draft.Text)
	if !strings.HasPrefix(text, "{") {
		return text
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return text
	}
	unwrapped := domain.CaseDraft{
		Steps:          jsonField(obj, "steps", "step", "actions"),
		ExpectedResult: jsonField(obj, "expected_result", "expected", "result"),
	}
	if !unwrapped.Structured() {
		return text
	}
	return unwrapped.Render()
}

func jsonField(obj map[string]json.RawMessage, keys ...string) string {
	for _, key := range keys {
		raw, ok := obj[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return strings.TrimSpace(s)
		}
		var list []string
		if err := json.Unmarshal(raw, &list); err == nil {
			return strings.TrimSpace(strings.Join(list, " "))
		}
	}
	return ""
}
