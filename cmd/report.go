// cmd/report.go
package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/dev-mohitbeniwal/blobsas/consumer"
	"github.com/dev-mohitbeniwal/blobsas/issuer"
)

var (
	accentColor  = lipgloss.Color("#50FA7B")
	dangerColor  = lipgloss.Color("#FF5555")
	warningColor = lipgloss.Color("#FFB86C")
	mutedColor   = lipgloss.Color("#6272A4")
	borderColor  = lipgloss.Color("#44475A")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF79C6"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BE9FD")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(mutedColor)
)

func renderTokens(tokens []issuer.IssuedToken) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Issued shared access signatures"))
	b.WriteString("\n\n")
	for _, token := range tokens {
		b.WriteString(headerStyle.UnsetPadding().Render(token.Label + ":"))
		b.WriteString("\n")
		b.WriteString(token.URI)
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderReport(report consumer.Report) string {
	title := titleStyle.Render("SAS " + report.URI)
	if report.Err != nil {
		return lipgloss.JoinVertical(lipgloss.Left, title,
			lipgloss.NewStyle().Foreground(dangerColor).Render("unusable signed URI: "+report.Err.Error()))
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(borderColor)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	t.Headers("OPERATION", "RESULT", "TARGET", "DETAIL")

	for _, result := range report.Results {
		t.Row(string(result.Operation), status(result), result.Target, detail(result))
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, t.Render())
}

func status(result consumer.OperationResult) string {
	switch {
	case result.Succeeded:
		return lipgloss.NewStyle().Foreground(accentColor).Render("succeeded")
	case result.Reason == consumer.ReasonPreconditionFailed:
		return lipgloss.NewStyle().Foreground(warningColor).Render(string(result.Reason))
	default:
		return lipgloss.NewStyle().Foreground(dangerColor).Render(string(result.Reason))
	}
}

func detail(result consumer.OperationResult) string {
	switch {
	case !result.Succeeded:
		return mutedStyle.Render(result.Message)
	case result.Operation == consumer.OperationList:
		return fmt.Sprintf("%d entries", result.Entries)
	case result.Operation == consumer.OperationRead:
		return fmt.Sprintf("%d bytes", result.Bytes)
	}
	return ""
}
