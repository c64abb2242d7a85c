package server

import (
	"fmt"
	"strings"

	"github.com/quantfold/vantage/internal/models"
)

// formatReport renders a report document as markdown for MCP clients.
func formatReport(doc *models.ReportDocument) string {
	var sb strings.Builder

	title := doc.Ticker
	if doc.Name != "" {
		title = fmt.Sprintf("%s (%s)", doc.Name, doc.Ticker)
	}
	fmt.Fprintf(&sb, "# Equity Research Report: %s\n\n", title)
	fmt.Fprintf(&sb, "Generated: %s\n", doc.GeneratedAt.Format("2006-01-02 15:04 MST"))
	if !doc.WindowStart.IsZero() && !doc.WindowEnd.IsZero() {
		fmt.Fprintf(&sb, "Window: %s to %s\n",
			doc.WindowStart.Format("2006-01-02"), doc.WindowEnd.Format("2006-01-02"))
	}
	fmt.Fprintf(&sb, "\n**Overall Signal: %s**\n\n", doc.OverallSignal)

	sb.WriteString("## Executive Summary\n\n")
	sb.WriteString(doc.OverallSummary)
	sb.WriteString("\n\n")

	for _, kind := range models.SectionOrder() {
		section := doc.Section(kind)
		if section == nil {
			continue
		}

		fmt.Fprintf(&sb, "## %s\n\n", kind.Title())

		switch section.Status {
		case models.StatusFailed:
			sb.WriteString("*Data unavailable for this section.*\n\n")
		case models.StatusDegraded:
			sb.WriteString("*AI analysis unavailable; metrics only.*\n\n")
		}

		if len(section.Metrics.Values) > 0 {
			sb.WriteString("| Metric | Value |\n|---|---|\n")
			for _, key := range section.Metrics.SortedKeys() {
				fmt.Fprintf(&sb, "| %s | %s |\n", key, section.Metrics.Values[key])
			}
			sb.WriteString("\n")
		}

		for _, note := range section.Metrics.Notes {
			fmt.Fprintf(&sb, "- %s\n", note)
		}
		if len(section.Metrics.Notes) > 0 {
			sb.WriteString("\n")
		}

		if section.Status == models.StatusOk {
			sb.WriteString(section.Insight)
			sb.WriteString("\n\n")
		}

		fmt.Fprintf(&sb, "**Signal: %s**\n\n", section.Signal)
	}

	sb.WriteString("---\n*AI-generated report - not financial advice.*\n")
	return sb.String()
}
