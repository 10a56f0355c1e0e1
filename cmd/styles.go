package cmd

import "github.com/charmbracelet/lipgloss"

var (
	labelStyle   = lipgloss.NewStyle().Bold(true).Width(12)
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	idleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	levelStyles = map[string]lipgloss.Style{
		"debug": lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		"info":  lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		"warn":  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		"error": lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
)

func field(label, value string) string {
	return labelStyle.Render(label) + " " + value
}

func pendingText(pending bool) string {
	if pending {
		return pendingStyle.Render("pending")
	}
	return idleStyle.Render("idle")
}

func levelText(level string) string {
	style, ok := levelStyles[level]
	if !ok {
		return level
	}
	return style.Render(level)
}
