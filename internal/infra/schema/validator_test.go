package schema

import (
	"context"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/osvaldoandrade/contentschema/internal/domain"
)

const testSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["title", "when"],
  "properties": {
    "title": { "type": "string" },
    "when": { "type": ["string", "number"] },
    "note": { "type": "string" }
  }
}`

func compileTestSchema(t *testing.T) *Checker {
	t.Helper()
	checker, err := (JSONSchemaCompiler{}).Compile(context.Background(), "test", []byte(testSchema))
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	return checker.(*Checker)
}

func TestCompileRejectsInvalidSchema(t *testing.T) {
	_, err := (JSONSchemaCompiler{}).Compile(context.Background(), "bad", []byte(`{"type": 12}`))
	if err == nil {
		t.Fatalf("expected compile error")
	}
}

func TestCompileHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (JSONSchemaCompiler{}).Compile(ctx, "test", []byte(testSchema)); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestCheckAcceptsValidRecord(t *testing.T) {
	checker := compileTestSchema(t)
	issues, err := checker.Check(map[string]any{"title": "Hello", "when": "2023-01-01", "extra": true})
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("expected no issues, got %v", issues)
	}
}

func TestCheckReportsMissingFields(t *testing.T) {
	checker := compileTestSchema(t)
	issues, err := checker.Check(map[string]any{})
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %v", issues)
	}
	for _, issue := range issues {
		if issue.Reason != domain.ReasonMissing {
			t.Fatalf("expected missing reason, got %v", issue)
		}
	}
}

func TestCheckReportsWrongType(t *testing.T) {
	checker := compileTestSchema(t)
	issues, err := checker.Check(map[string]any{"title": 42, "when": true, "note": nil})
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	got := make(map[string]domain.IssueReason)
	for _, issue := range issues {
		got[issue.Path] = issue.Reason
	}
	for _, path := range []string{"title", "when", "note"} {
		if got[path] != domain.ReasonInvalidType {
			t.Fatalf("expected invalid_type for %s, got %v", path, issues)
		}
	}
}

func TestCheckTreatsTimeAsString(t *testing.T) {
	checker := compileTestSchema(t)
	issues, err := checker.Check(map[string]any{
		"title": "Hello",
		"when":  time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("expected no issues, got %v", issues)
	}
}

func TestNormalizeFlattensYAMLMaps(t *testing.T) {
	out, err := Normalize(map[string]any{
		"tags":  []any{"a", map[any]any{"k": 1}},
		"count": 3,
	})
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	tags, ok := out["tags"].([]any)
	if !ok || len(tags) != 2 {
		t.Fatalf("unexpected tags: %#v", out["tags"])
	}
	nested, ok := tags[1].(map[string]any)
	if !ok || nested["k"] != float64(1) {
		t.Fatalf("unexpected nested map: %#v", tags[1])
	}
	if out["count"] != float64(3) {
		t.Fatalf("expected float64 count, got %#v", out["count"])
	}
}

func TestCheckAcceptsInvalidUTF8(t *testing.T) {
	checker := compileTestSchema(t)
	issues, err := checker.Check(map[string]any{
		"title": "caf\xe9",
		"when":  "2023-01-01",
		"notes": "\xff",
	})
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("expected no issues, got %v", issues)
	}
}

func TestCheckIgnoresUndeclaredKeys(t *testing.T) {
	checker := compileTestSchema(t)
	issues, err := checker.Check(map[string]any{
		"title":   "Hello",
		"when":    1672531200000,
		"handler": func() {},
	})
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("expected no issues, got %v", issues)
	}
}

func TestCheckReportsUnencodableDeclaredValue(t *testing.T) {
	checker := compileTestSchema(t)
	issues, err := checker.Check(map[string]any{
		"title": make(chan int),
	})
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if len(issues) != 2 {
		t.Fatalf("expected title and when issues, got %v", issues)
	}
	byPath := make(map[string]domain.FieldIssue, len(issues))
	for _, issue := range issues {
		byPath[issue.Path] = issue
	}
	if byPath["title"].Reason != domain.ReasonInvalidType {
		t.Fatalf("expected invalid_type for title, got %v", byPath["title"])
	}
	if byPath["when"].Reason != domain.ReasonMissing {
		t.Fatalf("expected missing when, got %v", byPath["when"])
	}
}

func TestNormalizeValueReplacesInvalidUTF8(t *testing.T) {
	out, err := NormalizeValue("caf\xe9")
	if err != nil {
		t.Fatalf("NormalizeValue returned error: %v", err)
	}
	text, ok := out.(string)
	if !ok || !utf8.ValidString(text) {
		t.Fatalf("expected valid UTF-8 string, got %#v", out)
	}
}
