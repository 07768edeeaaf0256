package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Colors
	primaryColor = lipgloss.Color("205") // Pinkish
	infoColor    = lipgloss.Color("39")  // Blue
	successColor = lipgloss.Color("42")  // Green
	warnColor    = lipgloss.Color("214") // Amber
	errorColor   = lipgloss.Color("160") // Red
	subtleColor  = lipgloss.Color("241") // Grey

	// Styles
	bannerStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			Padding(1, 2)

	infoBadge    = badge("INFO", infoColor)
	successBadge = badge("SUCCESS", successColor)
	warnBadge    = badge("WARN", warnColor)
	errorBadge   = badge("ERROR", errorColor)

	textStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	subtleStyle = lipgloss.NewStyle().
			Foreground(subtleColor)

	// TitleStyle is used for headings inside TUI views.
	TitleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)
)

func badge(label string, bg lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("230")).
		Background(bg).
		Padding(0, 1).
		Bold(true).
		SetString(label)
}

// PrintBanner prints the Sharesheet banner
func PrintBanner() {
	banner := `
 ___  _                         _               _
/ __|| |_   __ _  _ _  ___  ___| |_   ___  ___ | |_
\__ \| ' \ / _' || '_|/ -_)(_-<| ' \ / -_)/ -_)|  _|
|___/|_||_|\__,_||_|  \___|/__/|_||_|\___|\___| \__|
`
	fmt.Println(bannerStyle.Render(strings.Trim(banner, "\n")))
	fmt.Println()
}

// Info prints an info message
func Info(format string, a ...interface{}) {
	msg := fmt.Sprintf(format, a...)
	fmt.Printf("%s %s\n", infoBadge.String(), textStyle.Render(msg))
}

// Success prints a success message
func Success(format string, a ...interface{}) {
	msg := fmt.Sprintf(format, a...)
	fmt.Printf("%s %s\n", successBadge.String(), textStyle.Render(msg))
}

// Warn prints a warning
func Warn(format string, a ...interface{}) {
	msg := fmt.Sprintf(format, a...)
	fmt.Printf("%s %s\n", warnBadge.String(), textStyle.Render(msg))
}

// Error prints an error message
func Error(format string, a ...interface{}) {
	msg := fmt.Sprintf(format, a...)
	fmt.Printf("%s %s\n", errorBadge.String(), textStyle.Render(msg))
}

// Render returns a generic string using the text style
func Render(s string) string {
	return textStyle.Render(s)
}

// Subtle renders s in the muted grey used for secondary details.
func Subtle(s string) string {
	return subtleStyle.Render(s)
}
