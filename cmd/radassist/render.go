package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"

	"github.com/radassist-mcp-server/internal/domain"
)

const (
	formatText = "text"
	formatJSON = "json"
)

func checkFormat(format string) error {
	switch format {
	case formatText, formatJSON:
		return nil
	default:
		return fmt.Errorf("unsupported output format %q (want text or json)", format)
	}
}

// write prints result as indented JSON or prints text.
func write(w io.Writer, format string, result any, text string) error {
	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	_, err := io.WriteString(w, text)
	return err
}

func renderVerdict(v *domain.Verdict) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Triage: %s\n", v.Triage)

	sb.WriteString("\nImpressions:\n")
	for i, imp := range v.Impressions {
		fmt.Fprintf(&sb, "%d. [%s] %s\n", i+1, imp.Urgency, imp.Title())
		if imp.NextStep != "" {
			fmt.Fprintf(&sb, "   Next: %s\n", imp.NextStep)
		}
	}

	writeList(&sb, "Differentials", v.Differentials)
	writeList(&sb, "Next steps", v.NextSteps)
	writeList(&sb, "Warnings", v.Warnings)

	if v.ReportSentence != "" {
		fmt.Fprintf(&sb, "\nReport:\n%s\n", v.ReportSentence)
	}
	return sb.String()
}

func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(sb, "- %s\n", item)
	}
}

func renderLesionReport(r domain.LesionReport) string {
	var sb strings.Builder
	sb.WriteString(r.Report)
	sb.WriteString("\n")

	if r.Advisory != nil {
		fmt.Fprintf(&sb, "\nNote: %s\n", r.Advisory.Message)
	}
	if r.LIRADSNote != "" {
		fmt.Fprintf(&sb, "Note: %s\n", r.LIRADSNote)
	}
	if r.FollowUp.Message != "" {
		fmt.Fprintf(&sb, "Suggested follow-up: %s\n", r.FollowUp.Message)
	}
	return sb.String()
}
