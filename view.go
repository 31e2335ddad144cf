package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/LFroesch/treenav/internal/size"
	"github.com/LFroesch/treenav/internal/tree"
)

const maxPreviewItems = 20

func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	header := m.renderHeader()

	var body string
	if m.showHelp {
		body = m.renderHelp()
	} else if m.showPreview {
		treePane := m.renderRows(m.width / 2)
		preview := m.renderPreview(m.width - m.width/2)
		body = lipgloss.JoinHorizontal(lipgloss.Top, treePane, preview)
	} else {
		body = m.renderRows(m.width)
	}

	footer := m.renderFooter()

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m model) renderHeader() string {
	color := m.theme.Border
	if m.viewMode != viewTree {
		color = m.theme.Starred
	}

	style := lipgloss.NewStyle().
		Bold(true).
		Foreground(color).
		Width(m.width)

	return style.Render(runewidth.Truncate(m.headerTitle(), m.width, "…"))
}

func (m model) renderRows(width int) string {
	visible := m.visibleHeight()
	lines := make([]string, 0, visible)

	end := m.scroll + visible
	if end > len(m.rows) {
		end = len(m.rows)
	}

	normalStyle := lipgloss.NewStyle().Foreground(m.theme.Text)
	dimStyle := lipgloss.NewStyle().Foreground(m.theme.Dim)
	cursorStyle := lipgloss.NewStyle().
		Background(m.theme.HighlightBg).
		Foreground(m.theme.Text).
		Bold(true)

	for i := m.scroll; i < end; i++ {
		row := m.rows[i]
		indent := strings.Repeat("  ", row.Depth)

		prefix := "  "
		if i == m.cursor {
			prefix = "▸ "
		}

		line := runewidth.Truncate(prefix+indent+row.Node.Label, width, "…")

		switch {
		case i == m.cursor:
			line = cursorStyle.Width(width).Render(line)
		case row.Node.Err != tree.ErrNone:
			line = dimStyle.Render(line)
		default:
			line = normalStyle.Render(line)
		}
		lines = append(lines, line)
	}

	if len(m.rows) == 0 {
		lines = append(lines, dimStyle.Render("  (empty)"))
	}

	for len(lines) < visible {
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

func (m model) renderPreview(width int) string {
	dimStyle := lipgloss.NewStyle().Foreground(m.theme.Dim)

	lines := make([]string, 0, m.visibleHeight())
	for _, l := range m.previewLines {
		if len(lines) >= m.visibleHeight() {
			break
		}
		lines = append(lines, runewidth.Truncate(l, width-1, "…"))
	}
	for len(lines) < m.visibleHeight() {
		lines = append(lines, "")
	}

	pane := strings.Join(lines, "\n")
	return lipgloss.NewStyle().
		Width(width).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(m.theme.Border).
		Render(dimStyle.Render(pane))
}

func (m model) renderFooter() string {
	dimStyle := lipgloss.NewStyle().Foreground(m.theme.Dim).Width(m.width)
	textStyle := lipgloss.NewStyle().Foreground(m.theme.Text)

	switch m.inputMode {
	case inputSearch:
		count := ""
		if m.searchInput.Value() != "" {
			count = fmt.Sprintf("  %d/%d", m.searchIndex+1, len(m.searchMatches))
			if len(m.searchMatches) == 0 {
				count = "  no matches"
			}
		}
		return textStyle.Render("/" + m.searchInput.View() + dimStyle.Render(count))

	case inputBookmarkLabel:
		return textStyle.Render(fmt.Sprintf("📌 %s → ", filepath.Base(m.bookmarkPath)) + m.bookmarkInput.View())
	}

	if m.statusMsg != "" {
		return dimStyle.Render(runewidth.Truncate(m.statusMsg, m.width, "…"))
	}

	var hints string
	switch m.viewMode {
	case viewTree:
		hints = "↑↓/jk nav · ←→/hl tree · ␣ toggle · ⏎ cd · s star · b mark · / search · . hidden · p preview · ? help · q quit"
	default:
		hints = "↑↓/jk nav · ⏎ cd · S/B/r back · q quit"
	}
	return dimStyle.Render(runewidth.Truncate(hints, m.width, "…"))
}

func (m model) renderHelp() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(m.theme.Border)
	keyStyle := lipgloss.NewStyle().Foreground(m.theme.Starred)

	entries := []struct{ key, desc string }{
		{"↑/k ↓/j", "move selection"},
		{"←/h", "collapse, or jump to parent"},
		{"→/l", "expand directory"},
		{"space", "toggle expansion"},
		{"enter", "choose directory and exit (prints path)"},
		{"s", "star/unstar directory"},
		{"S", "toggle starred view"},
		{"b", "add or edit bookmark"},
		{"B", "toggle bookmarks view"},
		{"r", "toggle recent view"},
		{"/", "fuzzy search loaded entries"},
		{".", "show/hide hidden files"},
		{"p", "toggle preview pane"},
		{"y", "copy path to clipboard"},
		{"o", "open with system handler"},
		{"g/G", "first/last entry"},
		{"PgUp/PgDn, ^u/^d", "page / half page"},
		{"q/esc", "quit"},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("treenav keys"))
	b.WriteString("\n\n")
	for _, e := range entries {
		b.WriteString(fmt.Sprintf("  %s  %s\n", keyStyle.Render(runewidth.FillRight(e.key, 18)), e.desc))
	}
	b.WriteString("\npress any key to close")

	lines := strings.Count(b.String(), "\n") + 1
	pad := m.visibleHeight() - lines
	for i := 0; i < pad; i++ {
		b.WriteString("\n")
	}

	return b.String()
}

// updatePreview refreshes the preview pane content for the selected
// entry. Runs on the tick, never on the render path.
func (m *model) updatePreview() {
	node := m.selectedNode()
	m.previewPath = ""
	m.previewLines = nil
	if node == nil || !m.showPreview {
		return
	}
	m.previewPath = node.Path

	if node.IsDir {
		m.previewLines = previewDirectory(node.Path)
		return
	}
	m.previewLines = previewFile(node.Path)
}

func previewDirectory(path string) []string {
	entries, err := os.ReadDir(path)
	if err != nil {
		return []string{fmt.Sprintf("Error reading directory: %v", err)}
	}

	lines := []string{
		fmt.Sprintf("📁 %s", filepath.Base(path)),
		fmt.Sprintf("Items: %d", len(entries)),
		"",
	}

	for i, entry := range entries {
		if i >= maxPreviewItems {
			lines = append(lines, fmt.Sprintf("… and %d more", len(entries)-maxPreviewItems))
			break
		}
		lines = append(lines, fmt.Sprintf("%s %s", tree.Icon(filepath.Join(path, entry.Name()), entry.IsDir(), false), entry.Name()))
	}
	return lines
}

func previewFile(path string) []string {
	info, err := os.Stat(path)
	if err != nil {
		return []string{fmt.Sprintf("Error: %v", err)}
	}

	lines := []string{
		fmt.Sprintf("%s %s", tree.Icon(path, false, false), filepath.Base(path)),
		fmt.Sprintf("Size: %s", size.Format(info.Size())),
		fmt.Sprintf("Modified: %s", info.ModTime().Format("Jan 2, 2006 15:04")),
		"",
	}

	if info.Size() > 1024*1024 || tree.IsBinary(path) {
		return append(lines, "(binary or large file - preview unavailable)")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return append(lines, fmt.Sprintf("Error reading file: %v", err))
	}

	for i, l := range strings.Split(string(content), "\n") {
		if i >= 100 {
			lines = append(lines, "…")
			break
		}
		lines = append(lines, l)
	}
	return lines
}
