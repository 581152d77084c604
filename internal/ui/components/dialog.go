// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/vizchat/internal/ollama"
	"github.com/jeranaias/vizchat/internal/ui/styles"
)

// =============================================================================
// ERROR CATEGORIES
// =============================================================================

// ErrorCategory groups errors for the dialog border title.
type ErrorCategory string

const (
	CategoryNetwork ErrorCategory = "Network"
	CategoryModel   ErrorCategory = "Model"
	CategoryTimeout ErrorCategory = "Timeout"
	CategoryInput   ErrorCategory = "Input"
	CategoryUnknown ErrorCategory = "Error"
)

// =============================================================================
// ERROR DIALOG
// =============================================================================

// ErrorDialog is a blocking error box. While visible it swallows all keys
// until the user dismisses it with enter or esc.
type ErrorDialog struct {
	category    ErrorCategory
	title       string
	message     string
	suggestions []string
	logsPath    string

	visible bool
	width   int
	height  int
}

// NewErrorDialog creates a hidden dialog.
func NewErrorDialog(category ErrorCategory, title, message string, suggestions ...string) ErrorDialog {
	if category == "" {
		category = CategoryUnknown
	}
	return ErrorDialog{
		category:    category,
		title:       title,
		message:     message,
		suggestions: suggestions,
	}
}

// SetLogsPath adds a pointer to the log file.
func (e *ErrorDialog) SetLogsPath(path string) { e.logsPath = path }

// SetSize sets the area the dialog is centered in.
func (e *ErrorDialog) SetSize(width, height int) {
	e.width = width
	e.height = height
}

// Show makes the dialog visible.
func (e *ErrorDialog) Show() { e.visible = true }

// Hide dismisses the dialog.
func (e *ErrorDialog) Hide() { e.visible = false }

// IsVisible returns whether the dialog blocks input.
func (e *ErrorDialog) IsVisible() bool { return e.visible }

// Title returns the dialog title.
func (e *ErrorDialog) Title() string { return e.title }

// Message returns the dialog body.
func (e *ErrorDialog) Message() string { return e.message }

// Category returns the error category.
func (e *ErrorDialog) Category() ErrorCategory { return e.category }

// Update dismisses the dialog on enter or esc.
func (e ErrorDialog) Update(msg tea.Msg) (ErrorDialog, tea.Cmd) {
	if !e.visible {
		return e, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter", "esc", " ":
			e.visible = false
		}
	}
	return e, nil
}

// View renders the dialog centered in its area.
func (e ErrorDialog) View() string {
	if !e.visible {
		return ""
	}

	width := e.width
	if width == 0 {
		width = 60
	}
	boxWidth := min(max(width-8, 30), 72)

	var parts []string
	parts = append(parts, lipgloss.NewStyle().
		Foreground(styles.ErrorHighContrast).
		Bold(true).
		Render(styles.StatusIndicators.Error+" "+e.title))
	parts = append(parts, "")

	if e.message != "" {
		parts = append(parts, lipgloss.NewStyle().
			Foreground(styles.TextPrimary).
			Width(boxWidth-6).
			Render(e.message))
		parts = append(parts, "")
	}

	if len(e.suggestions) > 0 {
		parts = append(parts, lipgloss.NewStyle().
			Foreground(styles.InfoHighContrast).
			Bold(true).
			Render("Suggestions:"))
		bullet := lipgloss.NewStyle().Foreground(styles.Cyan)
		text := lipgloss.NewStyle().Foreground(styles.TextSecondary)
		for _, s := range e.suggestions {
			parts = append(parts, bullet.Render("  * ")+text.Render(s))
		}
		parts = append(parts, "")
	}

	if e.logsPath != "" {
		parts = append(parts, lipgloss.NewStyle().Foreground(styles.WarningHighContrast).Render("[LOG] ")+
			lipgloss.NewStyle().Foreground(styles.TextSecondary).Render(e.logsPath))
		parts = append(parts, "")
	}

	parts = append(parts, lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true).
		Render("[Enter] Dismiss"))

	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.ErrorHighContrast).
		Padding(1, 2).
		Width(boxWidth).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
	box = addTitleToBox(box, " "+string(e.category)+" Error ")

	if e.height > 0 {
		return lipgloss.Place(e.width, e.height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}

// addTitleToBox writes title into the top border of box.
func addTitleToBox(box, title string) string {
	lines := strings.SplitN(box, "\n", 2)
	if len(lines) < 2 {
		return box
	}
	top := []rune(lines[0])
	if len(top) < len([]rune(title))+4 {
		return box
	}
	styled := lipgloss.NewStyle().Foreground(styles.ErrorHighContrast).Bold(true).Render(title)
	border := lipgloss.NewStyle().Foreground(styles.ErrorHighContrast)
	return border.Render("╭─") + styled + border.Render(strings.Repeat("─", max(lipgloss.Width(lines[0])-lipgloss.Width(title)-3, 0))+"╮") + "\n" + lines[1]
}

// =============================================================================
// PREDEFINED ERRORS
// =============================================================================

// NoImageError is shown when the first message is sent without an image.
func NoImageError() ErrorDialog {
	return NewErrorDialog(CategoryInput,
		"No Image",
		"No image loaded. Open one before asking a question.",
		"Press ctrl+e and enter a file path",
		"Right click the image pane and choose Upload Image",
	)
}

// ConnectionError is shown when Ollama cannot be reached.
func ConnectionError(message string) ErrorDialog {
	return NewErrorDialog(CategoryNetwork,
		"Connection Error",
		message,
		"Start Ollama: ollama serve",
		"Check if Ollama is installed: ollama --version",
		"Verify the url in ~/.vizchat/config.toml",
	)
}

// ModelNotFoundError is shown when the selected model is not installed.
func ModelNotFoundError(model, message string) ErrorDialog {
	return NewErrorDialog(CategoryModel,
		"Model Not Found",
		message,
		"List available models: ollama list",
		"Pull the model: ollama pull "+model,
		"Press ctrl+r to refresh the model list",
	)
}

// TimeoutError is shown when a reply exceeds the stream timeout.
func TimeoutError(message string) ErrorDialog {
	return NewErrorDialog(CategoryTimeout,
		"Request Timeout",
		message,
		"Try again",
		"Consider using a smaller model",
		"Raise stream_timeout_secs in the config file",
	)
}

// RequestError picks the dialog that matches a failed request.
func RequestError(model string, err error) ErrorDialog {
	msg := err.Error()
	switch {
	case ollama.IsNotRunning(err):
		return ConnectionError(msg)
	case ollama.IsModelNotFound(err):
		return ModelNotFoundError(model, msg)
	case ollama.IsTimeout(err):
		return TimeoutError(msg)
	default:
		return NewErrorDialog(CategoryUnknown, "Request Failed", msg)
	}
}
