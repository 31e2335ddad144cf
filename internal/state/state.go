package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/LFroesch/treenav/internal/logger"
)

const maxRecent = 50

// Bookmark is an explicitly labeled saved path. Paths are unique within
// the bookmark list; re-adding a path replaces its entry.
type Bookmark struct {
	Path      string `json:"path"`
	Label     string `json:"label"`
	CreatedAt int64  `json:"created_at"`
}

// State is the session state persisted between runs. It is loaded once at
// startup and written back once at clean exit.
type State struct {
	ExpandedDirs map[string]bool `json:"expanded_dirs"`
	StarredDirs  map[string]bool `json:"starred_dirs"`
	ShowHidden   bool            `json:"show_hidden"`
	Bookmarks    []Bookmark      `json:"bookmarks"`
	RecentDirs   []string        `json:"recent_dirs"` // most recent first
}

// New returns an empty state with initialized sets.
func New() *State {
	return &State{
		ExpandedDirs: make(map[string]bool),
		StarredDirs:  make(map[string]bool),
	}
}

// statePath returns the location of the state file under the user's
// config directory.
func statePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "treenav", "state.json"), nil
}

// Load reads the persisted state. A missing, unreadable or malformed
// file falls back to defaults; Load never fails startup.
func Load() *State {
	st := New()

	path, err := statePath()
	if err != nil {
		logger.Warn("Failed to locate state file: %v", err)
		return st
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return st
	}

	if err := json.Unmarshal(data, st); err != nil {
		logger.Warn("Failed to parse state file %s: %v, using defaults", path, err)
		return New()
	}

	// Maps may be nil when fields are absent from older files
	if st.ExpandedDirs == nil {
		st.ExpandedDirs = make(map[string]bool)
	}
	if st.StarredDirs == nil {
		st.StarredDirs = make(map[string]bool)
	}
	if len(st.RecentDirs) > maxRecent {
		st.RecentDirs = st.RecentDirs[:maxRecent]
	}

	return st
}

// Save writes the full state, creating parent directories as needed.
// Failures are logged and otherwise swallowed.
func (s *State) Save() {
	path, err := statePath()
	if err != nil {
		logger.Error("Failed to locate state file: %v", err)
		return
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		logger.Error("Failed to create state directory: %v", err)
		return
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		logger.Error("Failed to marshal state: %v", err)
		return
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		logger.Error("Failed to write state file %s: %v", path, err)
	}
}

// IsExpanded reports whether path is in the expanded set.
func (s *State) IsExpanded(path string) bool {
	return s.ExpandedDirs[path]
}

// IsStarred reports whether path is in the starred set.
func (s *State) IsStarred(path string) bool {
	return s.StarredDirs[path]
}

// SetExpanded adds or removes path from the expanded set. Both
// directions are idempotent.
func (s *State) SetExpanded(path string, expanded bool) {
	if expanded {
		s.ExpandedDirs[path] = true
	} else {
		delete(s.ExpandedDirs, path)
	}
}

// ToggleStarred flips membership of path in the starred set.
func (s *State) ToggleStarred(path string) {
	if s.StarredDirs[path] {
		delete(s.StarredDirs, path)
	} else {
		s.StarredDirs[path] = true
	}
}

// AddBookmark records a bookmark for path, replacing any existing entry
// for the same path. CreatedAt is set to the current time.
func (s *State) AddBookmark(path, label string) {
	kept := s.Bookmarks[:0]
	for _, b := range s.Bookmarks {
		if b.Path != path {
			kept = append(kept, b)
		}
	}
	s.Bookmarks = append(kept, Bookmark{
		Path:      path,
		Label:     label,
		CreatedAt: time.Now().Unix(),
	})
}

// BookmarkFor returns the bookmark for path, if any.
func (s *State) BookmarkFor(path string) (Bookmark, bool) {
	for _, b := range s.Bookmarks {
		if b.Path == path {
			return b, true
		}
	}
	return Bookmark{}, false
}

// AddRecent moves path to the front of the recent list, deduplicating
// and evicting the oldest entry beyond the cap.
func (s *State) AddRecent(path string) {
	kept := make([]string, 0, len(s.RecentDirs)+1)
	kept = append(kept, path)
	for _, p := range s.RecentDirs {
		if p != path {
			kept = append(kept, p)
		}
	}
	if len(kept) > maxRecent {
		kept = kept[:maxRecent]
	}
	s.RecentDirs = kept
}
