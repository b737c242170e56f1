package out_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	sessionadapter "thermolab/internal/modules/session/adapter/out"
	"thermolab/internal/modules/session/domain"
	"thermolab/internal/platform/markdown"
)

func exportView(t *testing.T) domain.ExportView {
	t.Helper()
	schema := domain.Schema{
		ID:         "test-v1",
		Title:      "Bird Thermoregulation",
		PostSubmit: domain.PostSubmitLock,
		Transport:  domain.TransportForm,
		Questions: []domain.Question{
			{ID: "q1", Prompt: "Q1 – Why?\nExplain.", Kind: domain.AnswerText},
			{ID: "q2", Prompt: "Which?", Kind: domain.AnswerMulti, Options: []string{"A", "B"}},
		},
	}
	s := domain.NewSession("S000042", schema, time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC))
	steps := []error{
		s.SetName("Ana Bo"),
		s.EditField(0, domain.FieldAmbient, "10"),
		s.EditField(0, domain.FieldBird, "38"),
		s.SetText("q1", "feathers trap air"),
		s.ToggleOption("q2", "B"),
	}
	for _, err := range steps {
		if err != nil {
			t.Fatalf("prepare session: %v", err)
		}
	}
	return s.ExportView(time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC))
}

func TestMarkdownExporterWritesReport(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	exporter := sessionadapter.NewMarkdownExporter()
	path, err := exporter.Export(context.Background(), dir, exportView(t))
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if filepath.Base(path) != "S000042-ana-bo.md" {
		t.Fatalf("unexpected export path %s", path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	meta, body, err := markdown.SplitFrontmatter(string(raw))
	if err != nil {
		t.Fatalf("split export: %v", err)
	}
	if meta["session_id"] != "S000042" || meta["rows"] != 1 || meta["state"] != "idle" {
		t.Fatalf("unexpected frontmatter %v", meta)
	}
	for _, want := range []string{
		"| 1 | 10 | 38 | Low Altitude |",
		"- Low Altitude: (10, 38)",
		"- High Altitude: no readings",
		"feathers trap air",
		"> Q1 – Why?",
		sessionadapter.ReportStart,
		"## Session code",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("export body missing %q:\n%s", want, body)
		}
	}
}

func TestMarkdownExporterKeepsNotesOnReexport(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	exporter := sessionadapter.NewMarkdownExporter()
	view := exportView(t)
	path, err := exporter.Export(context.Background(), dir, view)
	if err != nil {
		t.Fatalf("first export: %v", err)
	}
	raw, _ := os.ReadFile(path)
	edited := strings.Replace(string(raw), "## Notes\n", "## Notes\n\nGraded: 9/10\n", 1)
	if err := os.WriteFile(path, []byte(edited), 0o644); err != nil {
		t.Fatalf("write notes: %v", err)
	}

	if _, err := exporter.Export(context.Background(), dir, view); err != nil {
		t.Fatalf("second export: %v", err)
	}
	raw, _ = os.ReadFile(path)
	content := string(raw)
	if !strings.Contains(content, "Graded: 9/10") {
		t.Fatalf("notes lost on re-export:\n%s", content)
	}
	if strings.Count(content, sessionadapter.ReportStart) != 1 {
		t.Fatalf("expected a single managed block:\n%s", content)
	}
}
