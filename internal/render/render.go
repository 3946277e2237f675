// Package render prints summaries for terminals and scripts.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lei/plr-summary/internal/models"
)

// Formats accepted by Write
const (
	FormatPretty = "pretty"
	FormatJSON   = "json"
)

// Printer renders summaries with styles bound to its output
type Printer struct {
	w io.Writer

	title    lipgloss.Style
	label    lipgloss.Style
	dim      lipgloss.Style
	snippet  lipgloss.Style
	statuses map[models.Status]lipgloss.Style
}

// NewPrinter creates a printer writing to w. Colors are only emitted when w
// is a terminal that supports them.
func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)

	return &Printer{
		w:       w,
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		label:   r.NewStyle().Foreground(lipgloss.Color("243")).Width(20),
		dim:     r.NewStyle().Foreground(lipgloss.Color("243")),
		snippet: r.NewStyle().PaddingLeft(2).BorderStyle(lipgloss.NormalBorder()).BorderLeft(true).BorderForeground(lipgloss.Color("196")),
		statuses: map[models.Status]lipgloss.Style{
			models.StatusSucceeded: r.NewStyle().Foreground(lipgloss.Color("46")),
			models.StatusFailed:    r.NewStyle().Foreground(lipgloss.Color("196")),
			models.StatusRunning:   r.NewStyle().Foreground(lipgloss.Color("220")),
			models.StatusPending:   r.NewStyle().Foreground(lipgloss.Color("243")),
			models.StatusUnknown:   r.NewStyle().Foreground(lipgloss.Color("208")),
		},
	}
}

// Write renders v in the named format. Pretty output accepts a Summary or a
// slice of them.
func (p *Printer) Write(format string, v interface{}) error {
	switch format {
	case FormatJSON:
		return JSON(p.w, v)
	case FormatPretty, "":
		switch s := v.(type) {
		case models.Summary:
			return p.Summary(s)
		case *models.Summary:
			return p.Summary(*s)
		case []models.Summary:
			return p.List(s)
		default:
			return fmt.Errorf("cannot render %T as %s", v, format)
		}
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// JSON writes v as indented JSON
func JSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// StatusIcon returns the glyph shown next to a status
func StatusIcon(s models.Status) string {
	switch s {
	case models.StatusSucceeded:
		return "✓"
	case models.StatusFailed:
		return "✗"
	case models.StatusRunning:
		return "●"
	case models.StatusPending:
		return "○"
	default:
		return "?"
	}
}

func (p *Printer) status(s models.Status) string {
	style, ok := p.statuses[s]
	if !ok {
		style = p.statuses[models.StatusUnknown]
	}
	return style.Render(StatusIcon(s) + " " + string(s))
}

// Summary writes the details of one run as labeled fields
func (p *Printer) Summary(s models.Summary) error {
	var b strings.Builder

	b.WriteString(p.title.Render("Pipeline run details") + "\n\n")

	p.field(&b, "Name", s.Name)
	p.field(&b, "Namespace", s.Namespace)
	p.fieldRaw(&b, "Status", p.status(s.Status))
	if s.Message != "" {
		p.field(&b, "Message", s.Message)
	}
	p.field(&b, "Created", s.Created)
	p.field(&b, "Duration", s.Duration.String())
	p.field(&b, "Pipeline", s.Pipeline)
	p.field(&b, "Application", s.Application)
	p.field(&b, "Component", s.Component)
	p.optional(&b, "Type", s.RunType)
	p.optional(&b, "Snapshot", s.Snapshot)
	p.optional(&b, "Integration test", s.IntegrationTest)
	p.optional(&b, "Source", s.SourceURL)
	if s.CommitSHA != "" {
		p.field(&b, "Commit", s.CommitShortSHA)
	}
	p.optional(&b, "Image", s.BuildImage)
	p.optional(&b, "Image digest", s.ImageDigest)
	p.field(&b, "Related pipelines", fmt.Sprintf("%d", s.RelatedCount))

	if sc := s.SnapshotCreation; sc != nil {
		p.field(&b, "Snapshot creation", strings.TrimSpace(sc.Status+" "+sc.Message))
	}
	if to := s.TestOutput; to != nil {
		p.field(&b, "Test result", fmt.Sprintf("%s (%d passed, %d failed, %d warnings)",
			to.Result, to.Successes, to.Failures, to.Warnings))
	}
	if sr := s.Scan; sr != nil {
		p.field(&b, "Vulnerabilities", fmt.Sprintf("%d critical, %d high, %d medium, %d low",
			sr.Critical, sr.High, sr.Medium, sr.Low))
	}

	if len(s.Results) > 0 {
		b.WriteString("\n" + p.title.Render("Results") + "\n")
		for _, r := range s.Results {
			p.field(&b, r.Name, r.Raw)
		}
	}

	if len(s.Tasks) > 0 {
		b.WriteString("\n" + p.title.Render("Task runs") + "\n")
		for _, t := range s.Tasks {
			fmt.Fprintf(&b, "%s  %-30s %s\n", p.status(t.Status), t.PipelineTask, p.dim.Render(t.Duration.String()))
		}
	}

	if sn := s.LogSnippet; sn != nil {
		b.WriteString("\n" + p.title.Render(sn.Title) + "\n")
		if sn.Step != "" {
			b.WriteString(p.dim.Render("step "+sn.Step) + "\n")
		}
		b.WriteString(p.snippet.Render(sn.Text) + "\n")
	}

	_, err := io.WriteString(p.w, b.String())
	return err
}

// List writes one line per run
func (p *Printer) List(summaries []models.Summary) error {
	if len(summaries) == 0 {
		_, err := io.WriteString(p.w, p.dim.Render("No pipeline runs found.")+"\n")
		return err
	}

	var b strings.Builder
	for _, s := range summaries {
		fmt.Fprintf(&b, "%s  %-50s %-16s %s\n",
			p.status(s.Status), s.Name, s.Created, p.dim.Render(s.Duration.String()))
	}
	_, err := io.WriteString(p.w, b.String())
	return err
}

func (p *Printer) field(b *strings.Builder, label, value string) {
	if value == "" {
		value = models.Placeholder
	}
	p.fieldRaw(b, label, value)
}

func (p *Printer) fieldRaw(b *strings.Builder, label, value string) {
	b.WriteString(p.label.Render(label) + value + "\n")
}

func (p *Printer) optional(b *strings.Builder, label, value string) {
	if value != "" {
		p.field(b, label, value)
	}
}
