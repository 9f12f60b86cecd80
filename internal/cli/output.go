package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	collectionapp "github.com/osvaldoandrade/contentschema/internal/app/collection"
	indexapp "github.com/osvaldoandrade/contentschema/internal/app/index"
	loadapp "github.com/osvaldoandrade/contentschema/internal/app/load"
	"github.com/osvaldoandrade/contentschema/internal/domain"
	"github.com/spf13/cobra"
)

type collectionOutput struct {
	Name   string                    `json:"name"`
	Fields []collectionapp.FieldSpec `json:"fields"`
}

type entryOutput struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
	Path       string `json:"path"`
}

type failureOutput struct {
	Collection string              `json:"collection"`
	ID         string              `json:"id,omitempty"`
	Path       string              `json:"path,omitempty"`
	Error      string              `json:"error"`
	Issues     []domain.FieldIssue `json:"issues,omitempty"`
}

type validateOutput struct {
	ContentDir string          `json:"content_dir"`
	Valid      int             `json:"valid"`
	Failed     int             `json:"failed"`
	Entries    []entryOutput   `json:"entries"`
	Failures   []failureOutput `json:"failures"`
}

type indexSyncOutput struct {
	RunID       string `json:"run_id"`
	Reset       bool   `json:"reset"`
	Collections int    `json:"collections"`
	Upserted    int    `json:"upserted"`
	Unchanged   int    `json:"unchanged"`
	Removed     int    `json:"removed"`
}

type indexEntryOutput struct {
	EntryID     string          `json:"entry_id"`
	Path        string          `json:"path"`
	ContentHash string          `json:"content_hash"`
	RunID       string          `json:"run_id"`
	UpdatedAt   int64           `json:"updated_at"`
	Payload     json.RawMessage `json:"payload,omitempty"`
}

type indexStateOutput struct {
	LastRunID string `json:"last_run_id"`
	LastRunAt int64  `json:"last_run_at"`
	Entries   int    `json:"entries"`
}

func writeJSON(out io.Writer, payload any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

func writeCollections(cmd *cobra.Command, registry *collectionapp.Registry, asJSON bool) error {
	out := cmd.OutOrStdout()
	collections := registry.Collections()
	names := registry.Names()

	if asJSON {
		payload := make([]collectionOutput, 0, len(names))
		for _, name := range names {
			payload = append(payload, collectionOutput{Name: name, Fields: collections[name].Fields()})
		}
		return writeJSON(out, payload)
	}

	ui := newRenderer(out, asJSON)
	for _, name := range names {
		if _, err := fmt.Fprintln(out, ui.accent(name)); err != nil {
			return err
		}
		for _, field := range collections[name].Fields() {
			presence := ui.dim("optional")
			if field.Required {
				presence = "required"
			}
			if _, err := fmt.Fprintf(out, "  %-12s %-7s %s\n", field.Name, field.Kind, presence); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeSchema(out io.Writer, doc []byte) error {
	if _, err := out.Write(doc); err != nil {
		return err
	}
	if len(doc) > 0 && doc[len(doc)-1] != '\n' {
		_, err := io.WriteString(out, "\n")
		return err
	}
	return nil
}

func writeValidateResult(cmd *cobra.Command, result loadapp.Result, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		payload := validateOutput{
			ContentDir: result.ContentDir,
			Valid:      len(result.Entries),
			Failed:     len(result.Failures),
			Entries:    make([]entryOutput, 0, len(result.Entries)),
			Failures:   make([]failureOutput, 0, len(result.Failures)),
		}
		for _, entry := range result.Entries {
			payload.Entries = append(payload.Entries, entryOutput{Collection: entry.Collection, ID: entry.ID, Path: entry.Path})
		}
		for _, failure := range result.Failures {
			payload.Failures = append(payload.Failures, failureOutput{
				Collection: failure.Collection,
				ID:         failure.ID,
				Path:       failure.Path,
				Error:      failure.Err.Error(),
				Issues:     failureIssues(failure.Err),
			})
		}
		return writeJSON(out, payload)
	}

	ui := newRenderer(out, asJSON)
	for _, failure := range result.Failures {
		label := failure.Collection
		if failure.ID != "" {
			label += "/" + failure.ID
		}
		if _, err := fmt.Fprintf(out, "%s %s\n", ui.err("FAIL"), label); err != nil {
			return err
		}
		issues := failureIssues(failure.Err)
		if len(issues) == 0 {
			if _, err := fmt.Fprintf(out, "     %s\n", ui.dim(failure.Err.Error())); err != nil {
				return err
			}
			continue
		}
		for _, issue := range issues {
			if _, err := fmt.Fprintf(out, "     %s %s\n", ui.warn(issue.Path), issueText(issue)); err != nil {
				return err
			}
		}
	}

	counts := result.CountByCollection()
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%d", name, counts[name]))
	}
	if len(parts) > 0 {
		if err := writeKV(out, ui, "Collections", strings.Join(parts, " ")); err != nil {
			return err
		}
	}

	total := len(result.Entries) + len(result.Failures)
	ratio := 1.0
	if total > 0 {
		ratio = float64(len(result.Entries)) / float64(total)
	}
	status := ui.ok("valid")
	if len(result.Failures) > 0 {
		status = ui.err("invalid")
	}
	return writeKV(out, ui, "Status", fmt.Sprintf("%s %s %d/%d", status, ui.bar(20, ratio), len(result.Entries), total))
}

func failureIssues(err error) []domain.FieldIssue {
	var verr *collectionapp.ValidationError
	if errors.As(err, &verr) {
		return verr.Issues
	}
	return nil
}

func issueText(issue domain.FieldIssue) string {
	if issue.Message == "" {
		return string(issue.Reason)
	}
	return fmt.Sprintf("%s (%s)", issue.Reason, issue.Message)
}

func writeIndexSyncResult(cmd *cobra.Command, result indexapp.SyncResult, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(out, indexSyncOutput{
			RunID:       result.RunID,
			Reset:       result.Reset,
			Collections: result.Collections,
			Upserted:    result.Upserted,
			Unchanged:   result.Unchanged,
			Removed:     result.Removed,
		})
	}

	ui := newRenderer(out, asJSON)
	state := ui.dim("unchanged")
	if result.Upserted > 0 || result.Removed > 0 {
		state = ui.ok("applied")
	}
	if err := writeKV(out, ui, "Status", state); err != nil {
		return err
	}
	if result.Reset {
		if err := writeKV(out, ui, "Reset", ui.warn("true")); err != nil {
			return err
		}
	}
	if err := writeKV(out, ui, "Run", result.RunID); err != nil {
		return err
	}
	if err := writeKV(out, ui, "Collections", fmt.Sprintf("%d", result.Collections)); err != nil {
		return err
	}
	if err := writeKV(out, ui, "Upserted", fmt.Sprintf("%d", result.Upserted)); err != nil {
		return err
	}
	if err := writeKV(out, ui, "Unchanged", fmt.Sprintf("%d", result.Unchanged)); err != nil {
		return err
	}
	return writeKV(out, ui, "Removed", fmt.Sprintf("%d", result.Removed))
}

func writeIndexList(cmd *cobra.Command, collection string, records []indexapp.EntryRecord, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		payload := make([]indexEntryOutput, 0, len(records))
		for _, record := range records {
			payload = append(payload, indexEntryOutput{
				EntryID:     record.EntryID,
				Path:        record.Path,
				ContentHash: record.ContentHash,
				RunID:       record.RunID,
				UpdatedAt:   record.UpdatedAt,
				Payload:     rawJSON(record.Payload),
			})
		}
		return writeJSON(out, payload)
	}

	ui := newRenderer(out, asJSON)
	if len(records) == 0 {
		_, err := fmt.Fprintf(out, "%s\n", ui.dim(fmt.Sprintf("no indexed entries in %s", collection)))
		return err
	}
	for _, record := range records {
		if _, err := fmt.Fprintf(out, "%s  %s  %s  %s\n",
			ui.key(record.EntryID),
			ui.dim(shortHash(record.ContentHash)),
			formatUnixNano(record.UpdatedAt),
			record.Path,
		); err != nil {
			return err
		}
	}
	return nil
}

func writeIndexState(cmd *cobra.Command, state indexapp.State, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(out, indexStateOutput{
			LastRunID: state.LastRunID,
			LastRunAt: state.LastRunAt,
			Entries:   state.Entries,
		})
	}

	ui := newRenderer(out, asJSON)
	if state.LastRunID == "" {
		return writeKV(out, ui, "Last Run", ui.dim("(none)"))
	}
	if err := writeKV(out, ui, "Last Run", state.LastRunID); err != nil {
		return err
	}
	if err := writeKV(out, ui, "Synced At", formatUnixNano(state.LastRunAt)); err != nil {
		return err
	}
	return writeKV(out, ui, "Entries", fmt.Sprintf("%d", state.Entries))
}

func writeKV(out io.Writer, ui renderer, key, value string) error {
	_, err := fmt.Fprintf(out, "%s: %s\n", ui.key(key), value)
	return err
}

func rawJSON(data []byte) json.RawMessage {
	if len(data) == 0 {
		return nil
	}
	return json.RawMessage(data)
}

func shortHash(value string) string {
	if len(value) > 12 {
		return value[:12]
	}
	return value
}

func formatUnixNano(value int64) string {
	if value == 0 {
		return "-"
	}
	return time.Unix(0, value).UTC().Format(time.RFC3339)
}
