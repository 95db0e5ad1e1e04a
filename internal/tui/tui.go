package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Zuo-Peng/chatstat/internal/analyze"
	"github.com/Zuo-Peng/chatstat/internal/index"
	"github.com/Zuo-Peng/chatstat/internal/open"
	"github.com/Zuo-Peng/chatstat/internal/scan"
	"github.com/Zuo-Peng/chatstat/internal/search"
)

const debounceDelay = 200 * time.Millisecond

type tuiMode int

const (
	modeSearch tuiMode = iota
	modeBrowse
)

type Options struct {
	Search  search.Options
	Analyze analyze.Options
	Top     int
}

// message types

type itemsMsg struct {
	query string
	items []item
	err   error
}

type debounceTickMsg struct {
	query string
}

// model

type model struct {
	db          *index.DB
	files       []scan.ExportFile
	opts        Options
	mode        tuiMode
	query       string
	items       []item
	cursor      int
	listOffset  int
	filterInput textinput.Model
	preview     viewport.Model
	previewKey  string // item key, avoids duplicate renders
	width       int
	height      int
	ready       bool
	quitting    bool
	chosen      *item
	edit        bool // open chosen in $EDITOR instead of copying
}

func newInput(placeholder, value string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()
	ti.SetValue(value)
	ti.Prompt = "> "
	ti.PromptStyle = styleInputPrompt
	ti.TextStyle = styleInput
	ti.CharLimit = 256
	return ti
}

// RunSearch starts the TUI over indexed messages and blocks until it exits.
// If the user selects a hit, its location is copied to the clipboard.
func RunSearch(db *index.DB, query string, opts Options) error {
	m := model{
		db:          db,
		opts:        opts,
		mode:        modeSearch,
		query:       query,
		filterInput: newInput("Search messages...", query),
		preview:     viewport.New(0, 0),
	}
	return run(m)
}

// RunBrowse starts the TUI over discovered exports, previewing statistics.
func RunBrowse(files []scan.ExportFile, opts Options) error {
	m := model{
		files:       files,
		opts:        opts,
		mode:        modeBrowse,
		filterInput: newInput("Filter exports...", ""),
		preview:     viewport.New(0, 0),
	}
	return run(m)
}

func run(m model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}

	fm := finalModel.(model)
	switch {
	case fm.chosen == nil:
		return nil
	case fm.edit:
		return open.Export(fm.chosen.path, fm.chosen.line)
	default:
		return copyLocation(*fm.chosen)
	}
}

// copyLocation puts "path" or "path:line" on the clipboard, printing it
// instead when no clipboard is available.
func copyLocation(it item) error {
	loc := it.path
	if it.line > 0 {
		loc = fmt.Sprintf("%s:%d", it.path, it.line)
	}
	if err := clipboard.WriteAll(loc); err != nil {
		fmt.Printf("%s\n", loc)
		return nil
	}
	fmt.Printf("Copied to clipboard: %s\n", loc)
	return nil
}

// Init triggers the initial search/list load.
func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.mode == modeBrowse {
		cmds = append(cmds, m.doFilter(""))
	} else if m.query != "" {
		cmds = append(cmds, m.doSearch(m.query))
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.preview = newViewport(m.previewWidth(), m.panelHeight())
		m.previewKey = ""
		cmds = append(cmds, m.loadCurrentPreview())
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.Copy), key.Matches(msg, keys.Edit):
			if len(m.items) > 0 && m.cursor < len(m.items) {
				it := m.items[m.cursor]
				m.chosen = &it
				m.edit = key.Matches(msg, keys.Edit)
				m.quitting = true
				return m, tea.Quit
			}

		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.adjustListScroll(m.panelHeight())
				cmds = append(cmds, m.loadCurrentPreview())
			}
			return m, tea.Batch(cmds...)

		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.items)-1 {
				m.cursor++
				m.adjustListScroll(m.panelHeight())
				cmds = append(cmds, m.loadCurrentPreview())
			}
			return m, tea.Batch(cmds...)

		case key.Matches(msg, keys.PreviewUp):
			m.preview.LineUp(m.panelHeight() / 2)
			return m, nil

		case key.Matches(msg, keys.PreviewDn):
			m.preview.LineDown(m.panelHeight() / 2)
			return m, nil

		case key.Matches(msg, keys.PageUp):
			m.preview.LineUp(m.panelHeight())
			return m, nil

		case key.Matches(msg, keys.PageDown):
			m.preview.LineDown(m.panelHeight())
			return m, nil
		}

		// Pass remaining keys to text input
		var tiCmd tea.Cmd
		m.filterInput, tiCmd = m.filterInput.Update(msg)
		cmds = append(cmds, tiCmd)

		newQuery := m.filterInput.Value()
		if newQuery != m.query {
			m.query = newQuery
			cmds = append(cmds, m.scheduleDebouncedSearch(newQuery))
		}
		return m, tea.Batch(cmds...)

	case tea.MouseMsg:
		if !m.ready || len(m.items) == 0 {
			return m, nil
		}

		region, itemIdx := m.hitTest(msg.X, msg.Y)

		switch {
		case region == regionList && msg.Button == tea.MouseButtonWheelUp:
			if m.listOffset > 0 {
				m.listOffset--
			}
			return m, nil

		case region == regionList && msg.Button == tea.MouseButtonWheelDown:
			visibleItems := m.panelHeight() / linesPerItem
			maxOffset := max(len(m.items)-visibleItems, 0)
			if m.listOffset < maxOffset {
				m.listOffset++
			}
			return m, nil

		case region == regionList && msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
			if itemIdx >= 0 && itemIdx < len(m.items) && m.cursor != itemIdx {
				m.cursor = itemIdx
				m.adjustListScroll(m.panelHeight())
				cmds = append(cmds, m.loadCurrentPreview())
			}
			return m, tea.Batch(cmds...)

		case region == regionPreview && (msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown):
			var vpCmd tea.Cmd
			m.preview, vpCmd = m.preview.Update(msg)
			if vpCmd != nil {
				cmds = append(cmds, vpCmd)
			}
			return m, tea.Batch(cmds...)
		}

		return m, nil

	case debounceTickMsg:
		// Only fire if the query hasn't changed since the tick was scheduled
		if msg.query == m.query {
			if m.mode == modeBrowse {
				cmds = append(cmds, m.doFilter(msg.query))
			} else {
				cmds = append(cmds, m.doSearch(msg.query))
			}
		}
		return m, tea.Batch(cmds...)

	case itemsMsg:
		if msg.query != m.query {
			return m, nil
		}
		m.cursor = 0
		m.listOffset = 0
		m.previewKey = ""
		if msg.err != nil {
			m.items = nil
			m.preview.SetContent("Error: " + msg.err.Error())
			return m, nil
		}
		m.items = msg.items
		if len(m.items) > 0 {
			cmds = append(cmds, m.loadCurrentPreview())
		} else {
			m.preview.SetContent("")
		}
		return m, tea.Batch(cmds...)

	case previewRenderedMsg:
		if msg.key == m.previewKey {
			return m, nil
		}
		if len(m.items) > 0 && m.cursor < len(m.items) && m.items[m.cursor].key() != msg.key {
			return m, nil // stale preview
		}
		if msg.err != nil {
			m.preview.SetContent("Preview error: " + msg.err.Error())
		} else {
			m.preview.SetContent(msg.content)
			if msg.hitLine > 0 {
				m.preview.SetYOffset(msg.hitLine)
			} else {
				m.preview.GotoTop()
			}
		}
		m.previewKey = msg.key
		return m, nil
	}

	return m, tea.Batch(cmds...)
}

// View renders the full TUI.
func (m model) View() string {
	if m.quitting || !m.ready {
		return ""
	}

	listW := m.listWidth()
	previewW := m.previewWidth()
	panelH := m.panelHeight()

	inputRow := m.filterInput.View()

	listPanel := stylePanelBorder.
		Width(listW).
		Height(panelH).
		Render(m.renderList(listW, panelH))

	m.preview.Width = previewW
	m.preview.Height = panelH
	previewPanel := styleActiveBorder.
		Width(previewW).
		Height(panelH).
		Render(m.preview.View())

	panels := lipgloss.JoinHorizontal(lipgloss.Top, listPanel, previewPanel)

	return lipgloss.JoinVertical(lipgloss.Left, inputRow, panels, m.statusBar())
}

// helper methods

func (m model) listWidth() int {
	if m.width <= 0 {
		return 40
	}
	// 40% for list, minus border padding
	return max(m.width*40/100-4, 20)
}

func (m model) previewWidth() int {
	if m.width <= 0 {
		return 60
	}
	return max(m.width*60/100-4, 20)
}

func (m model) panelHeight() int {
	if m.height <= 0 {
		return 20
	}
	// Subtract input row (1) + status bar (1) + borders (4)
	return max(m.height-6, 5)
}

type mouseRegion int

const (
	regionNone mouseRegion = iota
	regionList
	regionPreview
)

// hitTest maps terminal coordinates to a panel region and list item index.
func (m model) hitTest(x, y int) (mouseRegion, int) {
	contentYStart := 2 // input row (1) + top border (1)
	contentYEnd := contentYStart + m.panelHeight() - 1

	if y < contentYStart || y > contentYEnd {
		return regionNone, -1
	}
	relY := y - contentYStart

	lw := m.listWidth()
	listBoxRight := lw + 1 // col 0=border, 1..lw=content, lw+1=border

	if x >= 1 && x <= lw {
		return regionList, m.listOffset + (relY / linesPerItem)
	}
	if x > listBoxRight+1 {
		return regionPreview, -1
	}
	return regionNone, -1
}

func (m model) statusBar() string {
	noun := "results"
	enter := "Enter copy path:line"
	if m.mode == modeBrowse {
		noun = "exports"
		enter = "Enter copy path"
	}
	parts := []string{
		fmt.Sprintf("%d %s", len(m.items), noun),
		"click/up/dn navigate",
		"scroll/C-u/C-d preview",
		enter,
		"C-o edit",
		"Esc quit",
	}
	return styleStatusBar.Render(strings.Join(parts, " | "))
}

func (m model) doSearch(query string) tea.Cmd {
	db := m.db
	opts := m.opts.Search
	opts.Query = query
	return func() tea.Msg {
		if query == "" {
			return itemsMsg{query: query}
		}
		results, err := search.Search(db, opts)
		if err != nil {
			return itemsMsg{query: query, err: err}
		}
		items := make([]item, len(results))
		for i, r := range results {
			items[i] = resultItem(r)
		}
		return itemsMsg{query: query, items: items}
	}
}

func (m model) doFilter(filter string) tea.Cmd {
	files := m.files
	return func() tea.Msg {
		return itemsMsg{query: filter, items: filterExports(files, filter)}
	}
}

func (m model) scheduleDebouncedSearch(query string) tea.Cmd {
	return tea.Tick(debounceDelay, func(time.Time) tea.Msg {
		return debounceTickMsg{query: query}
	})
}

func (m model) loadCurrentPreview() tea.Cmd {
	if len(m.items) == 0 || m.cursor >= len(m.items) {
		return nil
	}
	it := m.items[m.cursor]
	if it.key() == m.previewKey {
		return nil
	}
	if m.mode == modeBrowse {
		return loadStatsCmd(it, m.opts)
	}
	return loadConversationCmd(m.db, it, m.query, m.previewWidth())
}
