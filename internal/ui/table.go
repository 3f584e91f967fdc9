// Package ui renders aggregated reports as terminal tables or JSON.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"aispend/internal/domain"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	childStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	totalStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	costStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	ruleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// TableOptions controls optional report columns.
type TableOptions struct {
	Title       string // first column header ("Date", "Session", ...)
	ShowPercent bool   // share-of-total column
	ShowCost    bool   // per-model component cost lines
}

// RenderReport renders the aggregated rows as a table. Children are
// indented one level under their bucket.
func RenderReport(report domain.Report, opts TableOptions) string {
	if len(report.Rows) == 0 {
		return "No usage data found.\n"
	}

	var sb strings.Builder

	cols := []string{opts.Title, "Input", "Output", "Cache Write", "Cache Read", "Total Tokens", "Cost"}
	if opts.ShowPercent {
		cols = append(cols, "%")
	}

	widths := columnWidths(cols, report)

	writeRow(&sb, cols, widths, headerStyle)
	writeRule(&sb, widths)

	for _, row := range report.Rows {
		writeDataRow(&sb, row, widths, opts, report.Totals.Cost, labelStyle, "")
		for _, child := range row.Children {
			writeDataRow(&sb, child, widths, opts, report.Totals.Cost, childStyle, "  ")
		}
		if opts.ShowCost {
			for _, b := range row.Breakdowns {
				writeBreakdown(&sb, b)
			}
			for _, child := range row.Children {
				for _, b := range child.Breakdowns {
					writeBreakdown(&sb, b)
				}
			}
		}
	}

	writeRule(&sb, widths)
	writeDataRow(&sb, report.Totals, widths, opts, report.Totals.Cost, totalStyle, "")

	return sb.String()
}

func writeDataRow(sb *strings.Builder, row domain.AggregateRow, widths []int, opts TableOptions, totalCost float64, style lipgloss.Style, indent string) {
	cells := []string{
		indent + DisplayLabel(row.Label),
		humanize.Comma(row.Tokens.Input),
		humanize.Comma(row.Tokens.Output + row.Tokens.Reasoning),
		humanize.Comma(row.Tokens.CacheCreation),
		humanize.Comma(row.Tokens.CacheRead),
		humanize.Comma(row.Tokens.Total()),
		fmt.Sprintf("$%.2f", row.Cost),
	}
	if opts.ShowPercent {
		cells = append(cells, percentOf(row.Cost, totalCost))
	}
	writeRow(sb, cells, widths, style)
}

func writeBreakdown(sb *strings.Builder, b domain.ModelBreakdown) {
	line := fmt.Sprintf("    %s  in $%.4f @%s/M  write $%.4f @%s/M  read $%.4f @%s/M  out $%.4f @%s/M",
		ModelStyle(b.Model).Render(DisplayLabel(b.Model)),
		b.InputCost, b.InputRate,
		b.CacheWriteCost, b.CacheWriteRate,
		b.CacheReadCost, b.CacheReadRate,
		b.OutputCost, b.OutputRate,
	)
	sb.WriteString(costStyle.Render(line))
	sb.WriteString("\n")
}

func percentOf(cost, total float64) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", cost/total*100)
}

// columnWidths sizes each column to its widest cell.
func columnWidths(cols []string, report domain.Report) []int {
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = len(c)
	}

	measure := func(row domain.AggregateRow, indent int) {
		cells := []string{
			DisplayLabel(row.Label),
			humanize.Comma(row.Tokens.Input),
			humanize.Comma(row.Tokens.Output + row.Tokens.Reasoning),
			humanize.Comma(row.Tokens.CacheCreation),
			humanize.Comma(row.Tokens.CacheRead),
			humanize.Comma(row.Tokens.Total()),
			fmt.Sprintf("$%.2f", row.Cost),
		}
		for i, cell := range cells {
			if i >= len(widths) {
				break
			}
			if w := len(cell) + indent; w > widths[i] {
				widths[i] = w
			}
		}
	}

	for _, row := range report.Rows {
		measure(row, 0)
		for _, child := range row.Children {
			measure(child, 2)
		}
	}
	measure(report.Totals, 0)

	return widths
}

func writeRow(sb *strings.Builder, cells []string, widths []int, style lipgloss.Style) {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		width := 0
		if i < len(widths) {
			width = widths[i]
		}
		if i == 0 {
			// Label column is left-aligned, numbers right-aligned
			parts[i] = fmt.Sprintf("%-*s", width, cell)
		} else {
			parts[i] = fmt.Sprintf("%*s", width, cell)
		}
	}
	sb.WriteString(style.Render(strings.Join(parts, "  ")))
	sb.WriteString("\n")
}

func writeRule(sb *strings.Builder, widths []int) {
	total := 0
	for _, w := range widths {
		total += w + 2
	}
	if total > 2 {
		total -= 2
	}
	sb.WriteString(ruleStyle.Render(strings.Repeat("─", total)))
	sb.WriteString("\n")
}
