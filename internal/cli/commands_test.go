package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeContent(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

const firstPost = `---
title: First
description: Hello world
pubDate: "2023-01-01"
---
Body
`

const sitePortfolio = `---
title: Site
description: A site
banner: /banner.png
repo: https://example.com/site
---
`

func TestCollectionsCommandJSON(t *testing.T) {
	out, err := runCLI(t, "collections", "--json")
	if err != nil {
		t.Fatalf("collections returned error: %v", err)
	}
	var payload []collectionOutput
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(payload) != 2 || payload[0].Name != "blog" || payload[1].Name != "portfolio" {
		t.Fatalf("unexpected collections: %+v", payload)
	}
	if payload[0].Fields[2].Name != "pubDate" || !payload[0].Fields[2].Required {
		t.Fatalf("unexpected blog fields: %+v", payload[0].Fields)
	}
}

func TestSchemaCommand(t *testing.T) {
	out, err := runCLI(t, "schema", "portfolio")
	if err != nil {
		t.Fatalf("schema returned error: %v", err)
	}
	if !strings.Contains(out, `"showcase"`) {
		t.Fatalf("expected portfolio schema, got %s", out)
	}

	_, err = runCLI(t, "schema", "docs")
	if ExitCode(err) != ExitInvalid {
		t.Fatalf("expected validation exit for unknown collection, got %v", err)
	}
}

func TestValidateCommandSuccess(t *testing.T) {
	root := t.TempDir()
	writeContent(t, root, map[string]string{
		"blog/first.md":     firstPost,
		"portfolio/site.md": sitePortfolio,
		"blog/_draft.md":    "not frontmatter",
		"blog/notes.txt":    "ignored",
	})

	out, err := runCLI(t, "validate", "--content", root, "--json", "--concurrency", "2")
	if err != nil {
		t.Fatalf("validate returned error: %v", err)
	}
	var payload validateOutput
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if payload.Valid != 2 || payload.Failed != 0 {
		t.Fatalf("unexpected counts: %+v", payload)
	}
}

func TestValidateCommandReportsFailures(t *testing.T) {
	root := t.TempDir()
	writeContent(t, root, map[string]string{
		"blog/first.md":  firstPost,
		"blog/broken.md": "---\ndescription: no title\npubDate: not-a-date\n---\n",
	})

	out, err := runCLI(t, "validate", "--content", root)
	if ExitCode(err) != ExitInvalid {
		t.Fatalf("expected validation exit, got %v", err)
	}
	if !strings.Contains(out, "FAIL blog/broken") {
		t.Fatalf("expected failure line, got %s", out)
	}
	titleAt := strings.Index(out, "title missing")
	dateAt := strings.Index(out, "pubDate invalid_date")
	if titleAt < 0 || dateAt < 0 || titleAt > dateAt {
		t.Fatalf("expected ordered issues, got %s", out)
	}
}

func TestValidateCommandMissingContentDir(t *testing.T) {
	_, err := runCLI(t, "validate", "--content", filepath.Join(t.TempDir(), "missing"))
	if ExitCode(err) != ExitNotFound {
		t.Fatalf("expected not found exit, got %v", err)
	}
}

func TestIndexSyncAndList(t *testing.T) {
	root := t.TempDir()
	writeContent(t, root, map[string]string{
		"blog/first.md":     firstPost,
		"portfolio/site.md": sitePortfolio,
	})
	dbPath := filepath.Join(t.TempDir(), "index.db")

	out, err := runCLI(t, "index", "sync", "--content", root, "--db", dbPath, "--json")
	if err != nil {
		t.Fatalf("index sync returned error: %v", err)
	}
	var synced indexSyncOutput
	if err := json.Unmarshal([]byte(out), &synced); err != nil {
		t.Fatalf("decode sync output: %v\n%s", err, out)
	}
	if synced.Upserted != 2 || synced.RunID == "" {
		t.Fatalf("unexpected sync result: %+v", synced)
	}

	out, err = runCLI(t, "index", "ls", "blog", "--db", dbPath, "--json")
	if err != nil {
		t.Fatalf("index ls returned error: %v", err)
	}
	var listed []indexEntryOutput
	if err := json.Unmarshal([]byte(out), &listed); err != nil {
		t.Fatalf("decode list output: %v\n%s", err, out)
	}
	if len(listed) != 1 || listed[0].EntryID != "first" {
		t.Fatalf("unexpected entries: %+v", listed)
	}
	if !strings.Contains(string(listed[0].Payload), `"pubDate":"2023-01-01T00:00:00Z"`) {
		t.Fatalf("unexpected payload: %s", listed[0].Payload)
	}

	out, err = runCLI(t, "index", "status", "--db", dbPath, "--json")
	if err != nil {
		t.Fatalf("index status returned error: %v", err)
	}
	var state indexStateOutput
	if err := json.Unmarshal([]byte(out), &state); err != nil {
		t.Fatalf("decode status output: %v\n%s", err, out)
	}
	if state.LastRunID != synced.RunID || state.Entries != 2 {
		t.Fatalf("unexpected state: %+v", state)
	}
}

func TestIndexSyncRefusesInvalidContent(t *testing.T) {
	root := t.TempDir()
	writeContent(t, root, map[string]string{
		"blog/broken.md": "---\ntitle: Only a title\n---\n",
	})
	dbPath := filepath.Join(t.TempDir(), "index.db")

	_, err := runCLI(t, "index", "sync", "--content", root, "--db", dbPath)
	if ExitCode(err) != ExitInvalid {
		t.Fatalf("expected validation exit, got %v", err)
	}
	var exitErr ExitError
	if !errors.As(err, &exitErr) || !strings.Contains(exitErr.Message, "index sync refused") {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, statErr := os.Stat(dbPath); !os.IsNotExist(statErr) {
		t.Fatalf("expected no index database to be created")
	}
}

func TestIndexListUnknownCollection(t *testing.T) {
	_, err := runCLI(t, "index", "ls", "docs", "--db", filepath.Join(t.TempDir(), "index.db"))
	if ExitCode(err) != ExitInvalid {
		t.Fatalf("expected validation exit, got %v", err)
	}
}
