package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/chatstat/internal/parse"
	"github.com/Zuo-Peng/chatstat/internal/scan"
	"github.com/Zuo-Peng/chatstat/internal/search"
)

// linesPerItem is the number of terminal lines each entry occupies.
const linesPerItem = 2

// item is one row of the list: an export in browse mode, a message hit in
// search mode.
type item struct {
	path    string
	line    int // 0 for whole exports
	tag     string
	date    string
	title   string
	detail  string
	variant parse.Variant
}

func (it item) key() string {
	return fmt.Sprintf("%s:%d", it.path, it.line)
}

func exportItem(f scan.ExportFile) item {
	return item{
		path:    f.Path,
		tag:     string(f.Variant),
		date:    time.Unix(f.Mtime, 0).Format("01-02"),
		title:   filepath.Base(f.Path),
		detail:  fmt.Sprintf("%s  %s  %s", humanize.Bytes(uint64(f.Size)), humanize.Time(time.Unix(f.Mtime, 0)), filepath.Dir(f.Path)),
		variant: f.Variant,
	}
}

func resultItem(r search.Result) item {
	date := r.Ts
	if len(date) >= 10 {
		date = date[5:10] // MM-DD
	}
	sender := r.Sender
	if sender == "" {
		sender = "system"
	}
	return item{
		path:   r.FilePath,
		line:   r.LineNumber,
		tag:    sender,
		date:   date,
		title:  filepath.Base(r.FilePath),
		detail: r.Snippet,
	}
}

// filterExports keeps exports whose path contains every filter word,
// ignoring case.
func filterExports(files []scan.ExportFile, filter string) []item {
	words := strings.Fields(strings.ToLower(filter))
	var items []item
	for _, f := range files {
		lower := strings.ToLower(f.Path)
		ok := true
		for _, w := range words {
			if !strings.Contains(lower, w) {
				ok = false
				break
			}
		}
		if ok {
			items = append(items, exportItem(f))
		}
	}
	return items
}

// renderList renders the left panel with scrolling.
func (m model) renderList(width, height int) string {
	if len(m.items) == 0 {
		return lipgloss.NewStyle().
			Foreground(colorDim).
			Width(width).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No results")
	}

	var lines []string
	for i, it := range m.items {
		if i < m.listOffset {
			continue
		}
		if len(lines)+linesPerItem > height {
			break
		}
		lines = append(lines, formatItem(it, width, i == m.cursor)...)
	}

	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}

	return strings.Join(lines, "\n")
}

// formatItem formats a single entry as two lines:
//
//	line 1: [>] tag  MM-DD  title
//	line 2:    detail (dimmed)
func formatItem(it item, width int, selected bool) []string {
	tag := runewidth.Truncate(it.tag, 7, "")
	switch it.variant {
	case parse.VariantBracket:
		tag = styleTagBracket.Render(tag)
	case parse.VariantDash:
		tag = styleTagDash.Render(tag)
	default:
		tag = styleListTag.Render(tag)
	}

	title := strings.ReplaceAll(it.title, "\n", " ")
	titleMax := max(width-2-8-6-2, 0)
	if runewidth.StringWidth(title) > titleMax {
		title = runewidth.Truncate(title, titleMax, "")
	}

	line1 := fmt.Sprintf("%s %s %s", tag, it.date, title)
	if selected {
		line1 = styleListSelected.Render("> ") + line1
	} else {
		line1 = "  " + line1
	}

	detail := strings.ReplaceAll(it.detail, "\n", " ")
	detail = strings.ReplaceAll(detail, "\t", " ")
	detail = strings.ReplaceAll(detail, ">>>", "")
	detail = strings.ReplaceAll(detail, "<<<", "")
	detailMax := max(width-4, 0)
	if runewidth.StringWidth(detail) > detailMax {
		detail = runewidth.Truncate(detail, detailMax, "")
	}
	line2 := "    " + lipgloss.NewStyle().Foreground(colorDim).Render(detail)

	return []string{line1, line2}
}

// adjustListScroll keeps the cursor visible within the list viewport.
func (m *model) adjustListScroll(listHeight int) {
	visibleItems := max(listHeight/linesPerItem, 1)
	if m.cursor < m.listOffset {
		m.listOffset = m.cursor
	}
	if m.cursor >= m.listOffset+visibleItems {
		m.listOffset = m.cursor - visibleItems + 1
	}
}
