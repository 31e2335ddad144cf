package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/LFroesch/treenav/internal/config"
	"github.com/LFroesch/treenav/internal/logger"
	"github.com/LFroesch/treenav/internal/search"
	"github.com/LFroesch/treenav/internal/size"
	"github.com/LFroesch/treenav/internal/state"
	"github.com/LFroesch/treenav/internal/tree"
)

// tickMsg drives the bounded wait of the main loop: size results are
// drained and the screen redrawn even without user input.
type tickMsg time.Time

const (
	tickInterval         = 100 * time.Millisecond
	doubleClickThreshold = 400 * time.Millisecond
)

type viewMode int

const (
	viewTree viewMode = iota
	viewStarred
	viewBookmarks
	viewRecent
)

func (v viewMode) title() string {
	switch v {
	case viewStarred:
		return "★ Starred"
	case viewBookmarks:
		return "📌 Bookmarks"
	case viewRecent:
		return "⏱ Recent"
	default:
		return ""
	}
}

type inputMode int

const (
	inputNormal inputMode = iota
	inputSearch
	inputBookmarkLabel
)

// viewSnapshot is the single saved forest/cursor slot. It is captured
// when leaving the Tree view (alternate views, search) and consumed on
// the way back. Only one alternate context can be active at a time, so
// one slot suffices.
type viewSnapshot struct {
	forest     []*tree.Node
	cursorPath string
}

type model struct {
	rootPath string
	st       *state.State
	theme    config.Theme

	viewMode  viewMode
	inputMode inputMode

	forest []*tree.Node
	rows   []tree.Visible
	cursor int
	scroll int

	width  int
	height int

	showHelp     bool
	showPreview  bool
	previewPath  string
	previewLines []string

	searchInput   textinput.Model
	searchMatches []search.Match
	searchIndex   int
	searchPaths   []string              // frozen snapshot; search never touches the disk
	searchNodes   map[string]*tree.Node // path lookup into the same snapshot

	bookmarkInput textinput.Model
	bookmarkPath  string

	sizes  size.Cache
	worker *size.Worker

	saved *viewSnapshot

	statusMsg    string
	statusExpiry time.Time

	selectedDir string

	lastClickTime time.Time
	lastClickRow  int
}

func initialModel(root string) model {
	st := state.Load()
	cfg := config.Load()

	searchIn := textinput.New()
	searchIn.Placeholder = "fuzzy search..."
	searchIn.CharLimit = 256
	searchIn.Width = 40

	bookmarkIn := textinput.New()
	bookmarkIn.Placeholder = "bookmark label"
	bookmarkIn.CharLimit = 256
	bookmarkIn.Width = 40

	m := model{
		rootPath:      root,
		st:            st,
		theme:         cfg.Theme,
		viewMode:      viewTree,
		inputMode:     inputNormal,
		searchInput:   searchIn,
		bookmarkInput: bookmarkIn,
		sizes:         size.Cache{},
		worker:        size.NewWorker(),
	}

	m.rebuild()
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("treenav"),
		tick(),
	)
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// rebuild regenerates the active view's forest from the current state
// and size cache, preserving the cursor by path where possible. The
// forest is never patched in place.
func (m *model) rebuild() {
	keep := m.cursorPath()

	switch m.viewMode {
	case viewStarred:
		m.forest = tree.BuildStarred(m.st.StarredDirs)
	case viewBookmarks:
		m.forest = tree.BuildBookmarks(m.st.Bookmarks)
	case viewRecent:
		m.forest = tree.BuildRecent(m.st.RecentDirs)
	default:
		// A failed root read keeps the previous forest on screen
		if forest, err := tree.Build(m.rootPath, m.st, m.sizes); err != nil {
			logger.Warn("Failed to read root %s: %v", m.rootPath, err)
		} else {
			m.forest = forest
		}
	}

	m.rows = tree.Flatten(m.forest)
	if keep != "" {
		m.selectPath(keep)
	}
	m.clampCursor()
}

// setForest installs a prebuilt forest (search results, restored
// snapshots) and resets the cursor to the top.
func (m *model) setForest(forest []*tree.Node) {
	m.forest = forest
	m.rows = tree.Flatten(forest)
	m.cursor = 0
	m.scroll = 0
}

func (m *model) cursorPath() string {
	if m.cursor >= 0 && m.cursor < len(m.rows) {
		return m.rows[m.cursor].Node.Path
	}
	return ""
}

func (m *model) selectedNode() *tree.Node {
	if m.cursor >= 0 && m.cursor < len(m.rows) {
		return m.rows[m.cursor].Node
	}
	return nil
}

// selectPath moves the cursor to path if it is visible.
func (m *model) selectPath(path string) bool {
	for i, row := range m.rows {
		if row.Node.Path == path {
			m.cursor = i
			return true
		}
	}
	return false
}

func (m *model) clampCursor() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// requestSize asks the worker for a recursive size the first time a
// directory is expanded this session.
func (m *model) requestSize(path string) {
	m.worker.RequestOnce(m.sizes, path)
}

func (m *model) setStatus(msg string, d time.Duration) {
	m.statusMsg = msg
	m.statusExpiry = time.Now().Add(d)
}

func (m *model) visibleHeight() int {
	// One header line and one footer line around the body
	h := m.height - 2
	if h < 1 {
		h = 1
	}
	return h
}

// keepCursorVisible adjusts the scroll window after cursor movement.
func (m *model) keepCursorVisible() {
	visible := m.visibleHeight()
	if m.cursor < m.scroll {
		m.scroll = m.cursor
	}
	if m.cursor >= m.scroll+visible {
		m.scroll = m.cursor - visible + 1
	}
	if m.scroll < 0 {
		m.scroll = 0
	}
}

func (m *model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
	m.keepCursorVisible()
}

// snapshot captures the current forest and cursor into the single
// saved slot. It never overwrites an existing snapshot: switching
// between alternate views keeps the original Tree capture. Search is
// the one context that replaces the slot (see enterSearch).
func (m *model) snapshot() {
	if m.saved != nil {
		return
	}
	m.saved = &viewSnapshot{
		forest:     m.forest,
		cursorPath: m.cursorPath(),
	}
}

// restoreSnapshot consumes the saved slot, reinstating the captured
// forest and cursor.
func (m *model) restoreSnapshot() {
	snap := m.saved
	m.saved = nil
	if snap == nil {
		m.rebuild()
		m.cursor = 0
		m.scroll = 0
		return
	}
	m.setForest(snap.forest)
	if snap.cursorPath != "" {
		m.selectPath(snap.cursorPath)
	}
	m.keepCursorVisible()
}

// discardSnapshot clears the slot without restoring, for commit paths
// that rebuild instead (e.g. confirming a search jump).
func (m *model) discardSnapshot() {
	m.saved = nil
}

func (m *model) headerTitle() string {
	if m.viewMode == viewTree {
		return fmt.Sprintf(" %s ", m.rootPath)
	}
	return fmt.Sprintf(" %s ", m.viewMode.title())
}
