package ai

import (
	"context"
	"errors"
	"testing"
	"time"
)

// cannedClient always returns the same response.
type cannedClient struct {
	response string
	err      error
}

func (c *cannedClient) Generate(ctx context.Context, model, prompt string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	return c.response, nil
}

func newTestGateway(client Client) *Gateway {
	p := Policy{Models: []string{"model-a"}, MaxAttempts: 1, BaseDelay: time.Millisecond}
	return NewGateway(client, p, "Generated Module", nil)
}

func TestExtractCases_Envelope(t *testing.T) {
	g := newTestGateway(&cannedClient{response: `{
		"module_name": "Login Flow",
		"cases": ["Verify login with valid credentials", "Check error on wrong password"]
	}`})

	module, drafts, err := g.ExtractCases(context.Background(), "requirements")
	if err != nil {
		t.Fatalf("ExtractCases: %v", err)
	}
	if module != "Login Flow" {
		t.Errorf("module = %q, want Login Flow", module)
	}
	if len(drafts) != 2 {
		t.Fatalf("drafts = %d, want 2", len(drafts))
	}
	if drafts[0].Text != "Verify login with valid credentials" {
		t.Errorf("first draft = %q", drafts[0].Text)
	}
}

func TestExtractCases_StripsFences(t *testing.T) {
	g := newTestGateway(&cannedClient{response: "```json\n{\"module_name\": \"Cart\", \"cases\": [\"Check totals\"]}\n```"})

	module, drafts, err := g.ExtractCases(context.Background(), "requirements")
	if err != nil {
		t.Fatalf("ExtractCases: %v", err)
	}
	if module != "Cart" || len(drafts) != 1 {
		t.Fatalf("module = %q, drafts = %d", module, len(drafts))
	}
}

func TestExtractCases_BareArrayUsesDefaultModule(t *testing.T) {
	g := newTestGateway(&cannedClient{response: `["Check a", "Check b"]`})

	module, drafts, err := g.ExtractCases(context.Background(), "requirements")
	if err != nil {
		t.Fatalf("ExtractCases: %v", err)
	}
	if module != "Generated Module" {
		t.Errorf("module = %q, want default", module)
	}
	if len(drafts) != 2 {
		t.Fatalf("drafts = %d, want 2", len(drafts))
	}
}

func TestExtractCases_StructuredObjects(t *testing.T) {
	g := newTestGateway(&cannedClient{response: `{
		"module_name": "Checkout",
		"cases": [
			{"steps": "Open cart and press pay", "expected_result": "Payment form shown"},
			{"step": ["Open cart", "Press pay"], "expected": "Payment form shown"},
			{"description": "Plain prose case"}
		]
	}`})

	_, drafts, err := g.ExtractCases(context.Background(), "requirements")
	if err != nil {
		t.Fatalf("ExtractCases: %v", err)
	}
	if len(drafts) != 3 {
		t.Fatalf("drafts = %d, want 3", len(drafts))
	}
	if !drafts[0].Structured() || drafts[0].Steps != "Open cart and press pay" {
		t.Errorf("draft 0 = %+v", drafts[0])
	}
	if !drafts[1].Structured() || drafts[1].Steps != "Open cart Press pay" {
		t.Errorf("draft 1 = %+v", drafts[1])
	}
	if drafts[2].Structured() || drafts[2].Text != "Plain prose case" {
		t.Errorf("draft 2 = %+v", drafts[2])
	}
}

func TestExtractCases_Unparseable(t *testing.T) {
	g := newTestGateway(&cannedClient{response: "Sure! Here are your test cases: first, check the login."})

	_, _, err := g.ExtractCases(context.Background(), "requirements")
	if !IsFormatError(err) {
		t.Fatalf("err = %v, want FormatError", err)
	}
	var fe *FormatError
	if errors.As(err, &fe) && fe.Raw == "" {
		t.Error("FormatError.Raw should carry the response text")
	}
}

func TestExtractCases_UpstreamFailurePropagates(t *testing.T) {
	g := newTestGateway(&cannedClient{err: errors.New("500 internal")})

	_, _, err := g.ExtractCases(context.Background(), "requirements")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestDraftBugReport(t *testing.T) {
	g := newTestGateway(&cannedClient{response: "**Title:** Login fails\n**Description:** ..."})

	report, err := g.DraftBugReport(context.Background(), "Verify login", "button does nothing")
	if err != nil {
		t.Fatalf("DraftBugReport: %v", err)
	}
	if report != "**Title:** Login fails\n**Description:** ..." {
		t.Errorf("report = %q", report)
	}
}

func TestDraftBugReport_FailurePropagates(t *testing.T) {
	g := newTestGateway(&cannedClient{err: errors.New("quota exceeded")})

	_, err := g.DraftBugReport(context.Background(), "case", "observation")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}
