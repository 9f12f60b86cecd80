package domain

import "fmt"

type IssueReason string

const (
	ReasonMissing     IssueReason = "missing"
	ReasonInvalidType IssueReason = "invalid_type"
	ReasonInvalidDate IssueReason = "invalid_date"
)

// FieldIssue describes one field that failed validation.
type FieldIssue struct {
	Path    string      `json:"path"`
	Reason  IssueReason `json:"reason"`
	Message string      `json:"message"`
}

func (i FieldIssue) String() string {
	if i.Message == "" {
		return fmt.Sprintf("%s: %s", i.Path, i.Reason)
	}
	return fmt.Sprintf("%s: %s (%s)", i.Path, i.Reason, i.Message)
}
