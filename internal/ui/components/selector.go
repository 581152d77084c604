// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/time/rate"

	"github.com/jeranaias/vizchat/internal/model"
	"github.com/jeranaias/vizchat/internal/ui/styles"
	"github.com/jeranaias/vizchat/internal/util"
)

// RefreshInterval is the minimum time between two model list fetches.
const RefreshInterval = 2 * time.Second

// FetchFunc returns the current model list. It must never return an empty
// list; ollama.Client.ModelNames satisfies this.
type FetchFunc func(ctx context.Context) []string

// ModelChangedMsg is emitted whenever the chosen model changes.
type ModelChangedMsg struct {
	Name string
}

// ModelsRefreshedMsg carries a fetched model list back to the selector.
type ModelsRefreshedMsg struct {
	Names []string
}

// RefreshThrottledMsg is emitted when a refresh is asked for too soon.
type RefreshThrottledMsg struct{}

// ModelSelector is the model dropdown in the header: [ and ] cycle through
// the list, ctrl+r fetches it again.
type ModelSelector struct {
	selection *model.Selection
	fetch     FetchFunc
	persisted func() string
	limiter   *rate.Limiter
	theme     *styles.Theme

	loading bool
	width   int
}

// NewModelSelector wraps a selection. persisted reports the model saved in
// the configuration store; it may be nil.
func NewModelSelector(theme *styles.Theme, selection *model.Selection, fetch FetchFunc, persisted func() string) *ModelSelector {
	if persisted == nil {
		persisted = func() string { return "" }
	}
	return &ModelSelector{
		selection: selection,
		fetch:     fetch,
		persisted: persisted,
		limiter:   rate.NewLimiter(rate.Every(RefreshInterval), 1),
		theme:     theme,
		width:     32,
	}
}

// Current returns the chosen model.
func (s *ModelSelector) Current() string { return s.selection.Current() }

// Loading reports whether a refresh is in flight.
func (s *ModelSelector) Loading() bool { return s.loading }

// SetWidth bounds the rendered width.
func (s *ModelSelector) SetWidth(w int) { s.width = w }

// Refresh fetches the model list unless the last fetch was too recent.
func (s *ModelSelector) Refresh() tea.Cmd {
	if s.loading || s.fetch == nil {
		return nil
	}
	if !s.limiter.Allow() {
		return func() tea.Msg { return RefreshThrottledMsg{} }
	}
	s.loading = true
	fetch := s.fetch
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return ModelsRefreshedMsg{Names: fetch(ctx)}
	}
}

// Update handles cycling keys and refresh results.
func (s *ModelSelector) Update(msg tea.Msg) tea.Cmd {
	before := s.selection.Current()

	switch msg := msg.(type) {
	case ModelsRefreshedMsg:
		s.loading = false
		s.selection.Update(msg.Names, s.persisted())

	case tea.KeyMsg:
		switch msg.String() {
		case "]":
			s.selection.Cycle(1)
		case "[":
			s.selection.Cycle(-1)
		case "ctrl+r":
			return s.Refresh()
		default:
			return nil
		}

	default:
		return nil
	}

	if after := s.selection.Current(); after != before {
		return func() tea.Msg { return ModelChangedMsg{Name: after} }
	}
	return nil
}

// View renders "[ name ]" with the position in the list.
func (s *ModelSelector) View() string {
	name := s.selection.Current()
	if s.loading {
		name += " (refreshing)"
	}
	names := s.selection.Names()
	pos := ""
	if len(names) > 1 {
		pos = " " + util.IntToString(s.selection.Index()+1) + "/" + util.IntToString(len(names))
	}
	budget := max(s.width-len(pos)-4, 4)

	var sb strings.Builder
	sb.WriteString(s.theme.ShortcutKey.Render("["))
	sb.WriteString(" ")
	sb.WriteString(s.theme.HeaderModel.Render(util.TruncateWidth(name, budget)))
	sb.WriteString(lipgloss.NewStyle().Foreground(styles.TextMuted).Render(pos))
	sb.WriteString(" ")
	sb.WriteString(s.theme.ShortcutKey.Render("]"))
	return sb.String()
}
