package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/skratchdot/open-golang/open"

	"github.com/LFroesch/treenav/internal/search"
	"github.com/LFroesch/treenav/internal/tree"
)

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Clear expired status messages
	if m.statusMsg != "" && time.Now().After(m.statusExpiry) {
		m.statusMsg = ""
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.keepCursorVisible()
		return m, nil

	case tickMsg:
		// Drain finished size computations; labels pick the results up
		// on the rebuild.
		if m.worker.Drain(m.sizes) && m.viewMode == viewTree && m.inputMode == inputNormal {
			m.rebuild()
		}
		// Preview refresh trails the cursor by at most one tick
		if m.showPreview && m.cursorPath() != m.previewPath {
			m.updatePreview()
		}
		return m, tick()

	case tea.KeyMsg:
		// Any key dismisses the help overlay
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}

		switch m.inputMode {
		case inputSearch:
			return m.handleSearchKey(msg)
		case inputBookmarkLabel:
			return m.handleBookmarkLabelKey(msg)
		default:
			return m.handleNormalKey(msg)
		}

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}

	return m, nil
}

func (m model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit

	case "?":
		m.showHelp = true

	case "/":
		m.enterSearch()
		return m, textinput.Blink

	case "up", "k":
		m.moveCursor(-1)

	case "down", "j":
		m.moveCursor(1)

	case "left", "h":
		if m.viewMode == viewTree {
			m.collapseOrParent()
		}

	case "right", "l":
		if m.viewMode == viewTree {
			m.expandSelected()
		}

	case " ":
		if m.viewMode == viewTree {
			m.toggleSelected()
		}

	case "enter":
		if node := m.selectedNode(); node != nil && node.IsDir {
			m.st.AddRecent(node.Path)
			m.selectedDir = node.Path
			return m, tea.Quit
		}

	case "s":
		if node := m.selectedNode(); node != nil && node.IsDir {
			m.st.ToggleStarred(node.Path)
			m.rebuild()
		}

	case "S":
		m.switchView(viewStarred)

	case "B":
		m.switchView(viewBookmarks)

	case "r":
		m.switchView(viewRecent)

	case "b":
		if node := m.selectedNode(); node != nil && node.IsDir {
			existing := ""
			if bm, ok := m.st.BookmarkFor(node.Path); ok {
				existing = bm.Label
			}
			m.bookmarkPath = node.Path
			m.bookmarkInput.SetValue(existing)
			m.bookmarkInput.CursorEnd()
			m.bookmarkInput.Focus()
			m.inputMode = inputBookmarkLabel
			return m, textinput.Blink
		}

	case ".":
		m.st.ShowHidden = !m.st.ShowHidden
		m.rebuild()

	case "p":
		m.showPreview = !m.showPreview
		m.updatePreview()

	case "y":
		if node := m.selectedNode(); node != nil {
			if err := clipboard.WriteAll(node.Path); err != nil {
				m.setStatus(fmt.Sprintf("Failed to copy: %v", err), 3*time.Second)
			} else {
				m.setStatus(fmt.Sprintf("Copied: %s", node.Path), 2*time.Second)
			}
		}

	case "o":
		if node := m.selectedNode(); node != nil {
			path := node.Path
			return m, func() tea.Msg {
				open.Run(path)
				return nil
			}
		}

	case "pgup":
		m.moveCursor(-m.visibleHeight())

	case "pgdown":
		m.moveCursor(m.visibleHeight())

	case "ctrl+u":
		m.moveCursor(-m.visibleHeight() / 2)

	case "ctrl+d":
		m.moveCursor(m.visibleHeight() / 2)

	case "home", "g":
		m.cursor = 0
		m.keepCursorVisible()

	case "end", "G":
		m.cursor = len(m.rows) - 1
		m.clampCursor()
		m.keepCursorVisible()
	}

	return m, nil
}

// collapseOrParent collapses the selected expanded directory, or moves
// the cursor to the parent entry otherwise.
func (m *model) collapseOrParent() {
	node := m.selectedNode()
	if node == nil {
		return
	}

	if node.IsDir && node.Expanded {
		m.st.SetExpanded(node.Path, false)
		m.rebuild()
		m.keepCursorVisible()
		return
	}

	parent := filepath.Dir(node.Path)
	if parent != m.rootPath && m.selectPath(parent) {
		m.keepCursorVisible()
	}
}

func (m *model) expandSelected() {
	node := m.selectedNode()
	if node == nil || !node.IsDir || node.Expanded || node.Err != tree.ErrNone {
		return
	}
	m.st.SetExpanded(node.Path, true)
	m.requestSize(node.Path)
	m.rebuild()
	m.keepCursorVisible()
}

func (m *model) toggleSelected() {
	node := m.selectedNode()
	if node == nil || !node.IsDir {
		return
	}
	if m.st.IsExpanded(node.Path) {
		m.st.SetExpanded(node.Path, false)
	} else {
		m.st.SetExpanded(node.Path, true)
		m.requestSize(node.Path)
	}
	m.rebuild()
	m.keepCursorVisible()
}

// switchView toggles an alternate view. Toggling the active one
// returns to the Tree view, restoring the snapshot captured on entry;
// switching between alternates keeps the original Tree snapshot.
func (m *model) switchView(target viewMode) {
	if m.viewMode == target {
		m.viewMode = viewTree
		snap := m.saved
		m.saved = nil
		m.rebuild()
		m.cursor, m.scroll = 0, 0
		if snap != nil && snap.cursorPath != "" {
			m.selectPath(snap.cursorPath)
		}
		m.keepCursorVisible()
		return
	}

	if m.viewMode == viewTree {
		m.snapshot()
	}
	m.viewMode = target
	m.rebuild()
	m.cursor, m.scroll = 0, 0
}

func (m *model) enterSearch() {
	m.inputMode = inputSearch
	m.searchInput.SetValue("")
	m.searchInput.Focus()
	m.searchMatches = nil
	m.searchIndex = 0
	// Search always captures what is on screen right now, clobbering any
	// earlier Tree capture: leaving search restores the view it started
	// from, and a later view toggle rebuilds fresh.
	m.saved = &viewSnapshot{forest: m.forest, cursorPath: m.cursorPath()}
	// Freeze the candidate set: search only ever sees paths that are
	// already materialized, so it cannot block on disk I/O.
	m.searchPaths = tree.Paths(m.forest)
	m.searchNodes = tree.Index(m.forest)
}

func (m model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.exitSearch()
		return m, nil

	case "enter":
		m.jumpToSearchResult()
		return m, nil

	case "down", "tab":
		if len(m.searchMatches) > 0 {
			m.searchIndex = (m.searchIndex + 1) % len(m.searchMatches)
			m.selectSearchMatch()
		}
		return m, nil

	case "up", "shift+tab":
		if len(m.searchMatches) > 0 {
			m.searchIndex--
			if m.searchIndex < 0 {
				m.searchIndex = len(m.searchMatches) - 1
			}
			m.selectSearchMatch()
		}
		return m, nil

	default:
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		m.updateSearchMatches()
		return m, cmd
	}
}

// updateSearchMatches rescans the frozen snapshot from scratch for the
// current query and swaps in a flat forest of the ranked results.
func (m *model) updateSearchMatches() {
	query := m.searchInput.Value()
	if query == "" {
		m.searchMatches = nil
		m.searchIndex = 0
		if m.saved != nil {
			m.setForest(m.saved.forest)
		}
		return
	}

	m.searchMatches = search.Rank(m.searchPaths, query)
	m.searchIndex = 0

	results := make([]*tree.Node, 0, len(m.searchMatches))
	for _, match := range m.searchMatches {
		isDir := false
		if n := m.searchNodes[match.Path]; n != nil {
			isDir = n.IsDir
		}
		results = append(results, &tree.Node{
			Path:  match.Path,
			Label: fmt.Sprintf("%s %s", tree.Icon(match.Path, isDir, false), filepath.Base(match.Path)),
			IsDir: isDir,
		})
	}
	m.setForest(results)
}

func (m *model) selectSearchMatch() {
	if len(m.searchMatches) == 0 {
		return
	}
	m.selectPath(m.searchMatches[m.searchIndex].Path)
	m.keepCursorVisible()
}

// exitSearch cancels search mode and restores the forest and selection
// captured on entry.
func (m *model) exitSearch() {
	m.inputMode = inputNormal
	m.searchInput.SetValue("")
	m.searchInput.Blur()
	m.searchMatches = nil
	m.searchIndex = 0
	m.searchPaths = nil
	m.searchNodes = nil
	m.restoreSnapshot()
}

// jumpToSearchResult commits the current match: every ancestor of the
// target is marked expanded, the full Tree forest is rebuilt, and the
// cursor lands on the target. The pre-search snapshot is discarded,
// never restored.
func (m *model) jumpToSearchResult() {
	if len(m.searchMatches) == 0 {
		m.exitSearch()
		return
	}

	target := m.searchMatches[m.searchIndex].Path

	for p := filepath.Dir(target); p != m.rootPath && strings.HasPrefix(p, m.rootPath); p = filepath.Dir(p) {
		m.st.SetExpanded(p, true)
	}

	m.inputMode = inputNormal
	m.searchInput.SetValue("")
	m.searchInput.Blur()
	m.searchMatches = nil
	m.searchIndex = 0
	m.searchPaths = nil
	m.searchNodes = nil
	m.discardSnapshot()

	m.viewMode = viewTree
	m.rebuild()
	m.cursor, m.scroll = 0, 0
	m.selectPath(target)
	m.keepCursorVisible()
}

func (m model) handleBookmarkLabelKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.inputMode = inputNormal
		m.bookmarkInput.SetValue("")
		m.bookmarkInput.Blur()
		m.bookmarkPath = ""
		return m, nil

	case "enter":
		if m.bookmarkPath != "" {
			m.st.AddBookmark(m.bookmarkPath, m.bookmarkInput.Value())
			m.rebuild()
		}
		m.inputMode = inputNormal
		m.bookmarkInput.SetValue("")
		m.bookmarkInput.Blur()
		m.bookmarkPath = ""
		return m, nil

	default:
		var cmd tea.Cmd
		m.bookmarkInput, cmd = m.bookmarkInput.Update(msg)
		return m, cmd
	}
}

func (m model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		if msg.Action == tea.MouseActionPress {
			m.showHelp = false
		}
		return m, nil
	}

	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonWheelUp:
		m.moveCursor(-3)

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonWheelDown:
		m.moveCursor(3)

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		// Body rows start below the single header line
		row := msg.Y - 1
		if row < 0 || row >= m.visibleHeight() {
			return m, nil
		}
		idx := m.scroll + row
		if idx >= len(m.rows) {
			return m, nil
		}

		now := time.Now()
		isDoubleClick := now.Sub(m.lastClickTime) < doubleClickThreshold && msg.Y == m.lastClickRow
		m.lastClickTime = now
		m.lastClickRow = msg.Y

		m.cursor = idx
		m.keepCursorVisible()

		if isDoubleClick && m.viewMode == viewTree && m.inputMode == inputNormal {
			m.toggleSelected()
		}
	}

	return m, nil
}
