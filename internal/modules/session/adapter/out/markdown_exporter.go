package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"thermolab/internal/modules/session/domain"
	sessionout "thermolab/internal/modules/session/port/out"
	"thermolab/internal/platform/markdown"
	"thermolab/internal/platform/slug"
)

const (
	ReportStart = "<!-- thermolab:report:start -->"
	ReportEnd   = "<!-- thermolab:report:end -->"
)

type exportFrontmatter struct {
	SessionID   string `yaml:"session_id"`
	Schema      string `yaml:"schema"`
	Name        string `yaml:"name"`
	State       string `yaml:"state"`
	Rows        int    `yaml:"rows"`
	StartedAt   string `yaml:"started_at"`
	GeneratedAt string `yaml:"generated_at"`
}

// MarkdownExporter writes a printable session report. Re-exporting the same
// session rewrites the generated block and keeps anything written around it.
type MarkdownExporter struct{}

func NewMarkdownExporter() sessionout.Exporter {
	return &MarkdownExporter{}
}

func (e *MarkdownExporter) Export(_ context.Context, dir string, view domain.ExportView) (string, error) {
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	path := filepath.Join(dir, view.SessionID+"-"+slug.Make(view.Name, "anonymous")+".md")

	report, err := renderReport(view)
	if err != nil {
		return "", err
	}

	body := ""
	if existing, err := os.ReadFile(path); err == nil {
		if _, existingBody, splitErr := markdown.SplitFrontmatter(string(existing)); splitErr == nil {
			body = existingBody
		}
	}
	if strings.TrimSpace(body) == "" {
		body = "# " + view.SchemaTitle + "\n\n## Notes\n"
	}
	body = markdown.ReplaceManagedBlock(body, ReportStart, ReportEnd, report)

	rendered, err := markdown.RenderFrontmatter(exportFrontmatter{
		SessionID:   view.SessionID,
		Schema:      view.SchemaID,
		Name:        view.Name,
		State:       view.State.String(),
		Rows:        len(domain.ValidReadings(view.Readings)),
		StartedAt:   view.StartedAt.Format(time.RFC3339),
		GeneratedAt: view.GeneratedAt.Format(time.RFC3339),
	}, body)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write session report: %w", err)
	}
	return path, nil
}

func renderReport(view domain.ExportView) (string, error) {
	var sb strings.Builder
	name := view.Name
	if strings.TrimSpace(name) == "" {
		name = "(no name)"
	}
	fmt.Fprintf(&sb, "**Name:** %s  \n**Session:** %s  \n**Generated:** %s\n\n",
		name, view.SessionID, view.GeneratedAt.Format("2006-01-02 15:04"))

	sb.WriteString("## Readings\n\n")
	sb.WriteString("| # | Ambient (°C) | Body (°C) | Behavior |\n|---|---|---|---|\n")
	for i, r := range view.Readings {
		fmt.Fprintf(&sb, "| %d | %s | %s | %s |\n", i+1, r.Ambient, r.Bird, r.Behavior)
	}

	sb.WriteString("\n## Trends\n\n")
	writeSeries(&sb, string(domain.LowAltitude), view.Series.Low)
	writeSeries(&sb, string(domain.HighAltitude), view.Series.High)

	sb.WriteString("\n## Reflections\n\n")
	for _, q := range view.Questions {
		fmt.Fprintf(&sb, "### %s\n\n", q.ID)
		for _, line := range strings.Split(q.Prompt, "\n") {
			fmt.Fprintf(&sb, "> %s\n", line)
		}
		answer := view.Answers.Wire(q)
		if strings.TrimSpace(answer) == "" {
			answer = "_(no answer)_"
		}
		fmt.Fprintf(&sb, "\n%s\n\n", answer)
	}

	code, err := qrcode.New(view.SessionID, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("encode session qr: %w", err)
	}
	sb.WriteString("## Session code\n\n```\n")
	sb.WriteString(code.ToSmallString(false))
	sb.WriteString("```\n")
	return sb.String(), nil
}

func writeSeries(sb *strings.Builder, label string, points []domain.Point) {
	if len(points) == 0 {
		fmt.Fprintf(sb, "- %s: no readings\n", label)
		return
	}
	parts := make([]string, 0, len(points))
	for _, p := range points {
		parts = append(parts, fmt.Sprintf("(%s, %s)", formatFloat(p.Ambient), formatFloat(p.Bird)))
	}
	fmt.Fprintf(sb, "- %s: %s\n", label, strings.Join(parts, " → "))
}

func formatFloat(v float64) string {
	return domain.Celsius(v).String()
}
