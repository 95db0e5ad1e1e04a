package tui

import (
	"path/filepath"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zuo-Peng/chatstat/internal/analyze"
	"github.com/Zuo-Peng/chatstat/internal/index"
	"github.com/Zuo-Peng/chatstat/internal/render"
)

// previewRenderedMsg is sent when an async preview render completes.
type previewRenderedMsg struct {
	key     string
	content string
	hitLine int
	err     error
}

// loadStatsCmd analyzes an export in the background and renders its summary.
func loadStatsCmd(it item, opts Options) tea.Cmd {
	return func() tea.Msg {
		report, err := analyze.AnalyzeFile(it.path, opts.Analyze)
		if err != nil {
			return previewRenderedMsg{key: it.key(), err: err}
		}
		content := render.Stats(filepath.Base(it.path), report.Stats, render.StatsOptions{Top: opts.Top})
		return previewRenderedMsg{key: it.key(), content: content}
	}
}

// loadConversationCmd renders the messages around a search hit.
func loadConversationCmd(db *index.DB, it item, query string, width int) tea.Cmd {
	return func() tea.Msg {
		msgs, err := db.ChatMessages(it.path)
		if err != nil {
			return previewRenderedMsg{key: it.key(), err: err}
		}
		content, hitLine := render.Conversation(filepath.Base(it.path), msgs, render.Options{
			HitLine: it.line,
			Context: -1,
			Width:   width,
			Query:   query,
		})
		return previewRenderedMsg{key: it.key(), content: content, hitLine: hitLine}
	}
}

// newViewport creates a new viewport model with the given dimensions.
func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.Style = stylePanelBorder
	return vp
}
