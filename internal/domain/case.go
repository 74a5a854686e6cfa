package domain

// Status is the lifecycle state of a test case.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusPass    Status = "PASS"
	StatusFailed  Status = "FAILED"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPass, StatusFailed:
		return true
	}
	return false
}

// Case is the atomic unit of testing.
type Case struct {
	ID        int64  `json:"id"`
	ModuleID  int64  `json:"module_id"`
	Module    string `json:"module,omitempty"` // module name, filled by listing queries
	Content   string `json:"content"`
	Status    Status `json:"status"`
	BugReport string `json:"bug_report,omitempty"` // non-empty only when Status is FAILED
	Seq       int64  `json:"seq"`
}

// NextCase is a case selected for presentation to the tester.
// Retest is set when the case was already FAILED and is being re-run;
// it is a presentation hint, never persisted.
type NextCase struct {
	Case
	Retest bool `json:"retest"`
}

// Outcome is the tester's verdict on a single case.
type Outcome string

const (
	OutcomePass Outcome = "PASS"
	OutcomeFail Outcome = "FAILED"
)
