package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"mtp/internal/domain"

	"go.uber.org/zap"
)

const extractPrompt = `Act as a Senior QA Engineer.
Analyze the following requirements text.

1. Generate a concise, professional Name for this Module (2-4 words) based on the content.
2. Extract checklist-style test cases.

Requirements:
%s

OUTPUT FORMAT RULES:
1. Return ONLY raw JSON. No markdown, no code fences.
2. Structure:
{
    "module_name": "User Profile Settings",
    "cases": [
        "Verify that...",
        "Check that..."
    ]
}`

const bugReportPrompt = `Act as a Senior QA Engineer.
I found a bug. Write a professional Bug Report in English.

Test Case: %q
Observation: %q

OUTPUT FORMAT:
**Title:** [Summary]
**Description:** [Details]
**Expected Result:** [Exp]
**Actual Result:** [Act]

Return ONLY the report text.`

// Gateway is the single entry point for upstream AI calls. It wraps the
// unreliable provider behind the retry/fallback policy and a fixed output
// contract.
type Gateway struct {
	client        Client
	policy        Policy
	defaultModule string
	logger        *zap.Logger
}

// NewGateway creates a Gateway around the given provider.
func NewGateway(client Client, policy Policy, defaultModule string, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		client:        client,
		policy:        policy,
		defaultModule: defaultModule,
		logger:        logger,
	}
}

// ExtractCases asks the upstream model to infer a module name and an ordered
// list of test cases from free-form requirements text.
//
// A bare JSON array response (older model habit) is tolerated and mapped to
// the configured default module name. A response that cannot be parsed after
// cleaning yields a FormatError; an exhausted fallback chain yields
// ErrUnavailable. An empty case list is not an error here - the caller
// decides whether zero cases is a user-facing failure.
func (g *Gateway) ExtractCases(ctx context.Context, requirementsText string) (string, []domain.CaseDraft, error) {
	prompt := fmt.Sprintf(extractPrompt, requirementsText)

	raw, err := callWithFallback(ctx, g.policy, g.logger, func(ctx context.Context, model string) (string, error) {
		return g.client.Generate(ctx, model, prompt)
	})
	if err != nil {
		return "", nil, err
	}

	module, drafts, err := parseExtractResponse(stripFences(raw))
	if err != nil {
		return "", nil, err
	}
	if module == "" {
		module = g.defaultModule
	}

	g.logger.Debug("cases extracted", zap.String("module", module), zap.Int("count", len(drafts)))
	return module, drafts, nil
}

// DraftBugReport produces a fixed-section bug report from the case text and
// the tester's observation. Failures propagate; no placeholder report is
// ever substituted.
func (g *Gateway) DraftBugReport(ctx context.Context, caseText, observation string) (string, error) {
	prompt := fmt.Sprintf(bugReportPrompt, caseText, observation)

	report, err := callWithFallback(ctx, g.policy, g.logger, func(ctx context.Context, model string) (string, error) {
		return g.client.Generate(ctx, model, prompt)
	})
	if err != nil {
		return "", err
	}

	report = strings.TrimSpace(stripFences(report))
	if report == "" {
		return "", &FormatError{Raw: report, Reason: "empty bug report"}
	}
	return report, nil
}

// stripFences removes markdown code-fence wrappers a model may add despite
// instructions.
func stripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// extractEnvelope is the expected response object shape.
type extractEnvelope struct {
	ModuleName string            `json:"module_name"`
	Cases      []json.RawMessage `json:"cases"`
}

// parseExtractResponse decodes the cleaned response into a module name and
// case drafts. Accepts the envelope object or a bare case array.
func parseExtractResponse(clean string) (string, []domain.CaseDraft, error) {
	if clean == "" {
		return "", nil, &FormatError{Raw: clean, Reason: "empty response"}
	}

	var envelope extractEnvelope
	if err := json.Unmarshal([]byte(clean), &envelope); err == nil {
		drafts, derr := decodeDrafts(envelope.Cases)
		if derr != nil {
			return "", nil, derr
		}
		return strings.TrimSpace(envelope.ModuleName), drafts, nil
	}

	var bare []json.RawMessage
	if err := json.Unmarshal([]byte(clean), &bare); err == nil {
		drafts, derr := decodeDrafts(bare)
		if derr != nil {
			return "", nil, derr
		}
		return "", drafts, nil
	}

	return "", nil, &FormatError{Raw: clean, Reason: "response is neither a case envelope nor a case array"}
}

// draft case objects may name their fields differently between models;
// these are the recognized synonyms.
var (
	stepsKeys  = []string{"steps", "step", "actions"}
	resultKeys = []string{"expected_result", "expected", "result"}
	textKeys   = []string{"case", "text", "description", "title"}
)

// decodeDrafts maps each raw case element to a CaseDraft: plain strings
// stay raw, objects with recognized steps/result keys become structured
// drafts, anything else is kept verbatim as text.
func decodeDrafts(raws []json.RawMessage) ([]domain.CaseDraft, error) {
	drafts := make([]domain.CaseDraft, 0, len(raws))
	for _, raw := range raws {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				drafts = append(drafts, domain.CaseDraft{Text: s})
			}
			continue
		}

		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, &FormatError{Raw: string(raw), Reason: "case element is neither string nor object"}
		}

		draft := domain.CaseDraft{
			Steps:          firstField(obj, stepsKeys),
			ExpectedResult: firstField(obj, resultKeys),
		}
		if !draft.Structured() {
			if text := firstField(obj, textKeys); text != "" {
				draft.Text = text
			} else {
				draft.Text = string(raw)
			}
		}
		drafts = append(drafts, draft)
	}
	return drafts, nil
}

// firstField returns the first recognized key's value rendered as a string.
// Array values are joined in order.
func firstField(obj map[string]json.RawMessage, keys []string) string {
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
