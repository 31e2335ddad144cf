// Package tree builds the display forest from the filesystem, the
// session state, and the size cache. Builds are pure over their inputs
// and only ever read directories the user has expanded.
package tree

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/LFroesch/treenav/internal/size"
	"github.com/LFroesch/treenav/internal/state"
)

// ErrorKind is the coarse category attached to an error leaf.
type ErrorKind int

const (
	ErrNone ErrorKind = iota
	ErrPermission
	ErrNotFound
	ErrOther
)

func (e ErrorKind) String() string {
	switch e {
	case ErrPermission:
		return "Permission denied"
	case ErrNotFound:
		return "Not found"
	case ErrOther:
		return "Error"
	default:
		return ""
	}
}

func classifyError(err error) ErrorKind {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return ErrPermission
	case errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	default:
		return ErrOther
	}
}

// Node is one display entry, identified by its absolute path. The
// forest is rebuilt wholesale on every state mutation and never
// patched in place. Expanded distinguishes a directory whose children
// have been materialized from one that simply has no children.
type Node struct {
	Path     string
	Label    string
	IsDir    bool
	Expanded bool
	Children []*Node
	Err      ErrorKind
}

// Visible is one row of the flattened forest as the renderer sees it.
type Visible struct {
	Node  *Node
	Depth int
}

// Build returns the ordered forest for root. Only directories present
// in the expanded set are read; per-subtree read failures become error
// leaves and never abort the enclosing build. A failure to read root
// itself is returned as an error so the caller can keep its previous
// forest.
func Build(root string, st *state.State, sizes size.Cache) ([]*Node, error) {
	children, err := readEntries(root, st.ShowHidden)
	if err != nil {
		return nil, err
	}

	nodes := make([]*Node, 0, len(children))
	for _, p := range children {
		nodes = append(nodes, buildNode(p, st, sizes))
	}
	return nodes, nil
}

func buildNode(path string, st *state.State, sizes size.Cache) *Node {
	info, err := os.Stat(path)
	isDir := err == nil && info.IsDir()
	expanded := isDir && st.IsExpanded(path)

	node := &Node{
		Path:     path,
		Label:    formatLabel(path, isDir, expanded, st.IsStarred(path), sizes),
		IsDir:    isDir,
		Expanded: expanded,
	}

	if !expanded {
		return node
	}

	children, err := readEntries(path, st.ShowHidden)
	if err != nil {
		// Error leaf: annotated, not recursed, siblings unaffected
		node.Expanded = false
		node.Err = classifyError(err)
		node.Label = fmt.Sprintf("%s [%s]", node.Label, node.Err)
		return node
	}

	node.Children = make([]*Node, 0, len(children))
	for _, p := range children {
		node.Children = append(node.Children, buildNode(p, st, sizes))
	}
	return node
}

// readEntries lists dir, applies the hidden filter, and orders entries
// directories-first then case-insensitive by basename.
func readEntries(dir string, showHidden bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	type entry struct {
		path  string
		name  string
		isDir bool
	}

	filtered := make([]entry, 0, len(entries))
	for _, e := range entries {
		if !showHidden && strings.HasPrefix(e.Name(), ".") {
			continue
		}
		filtered = append(filtered, entry{
			path:  filepath.Join(dir, e.Name()),
			name:  e.Name(),
			isDir: e.IsDir(),
		})
	}

	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].isDir != filtered[j].isDir {
			return filtered[i].isDir
		}
		return strings.ToLower(filtered[i].name) < strings.ToLower(filtered[j].name)
	})

	paths := make([]string, len(filtered))
	for i, e := range filtered {
		paths[i] = e.path
	}
	return paths, nil
}

// formatLabel renders icon + name + star marker + size annotation. The
// size suffix appears only on expanded directories: a placeholder while
// the computation is pending, the formatted magnitude once resolved.
func formatLabel(path string, isDir, expanded, starred bool, sizes size.Cache) string {
	var icon string
	if isDir {
		icon = dirIcon(expanded)
	} else {
		icon = fileIcon(path)
	}

	name := filepath.Base(path)
	star := ""
	if starred {
		star = " ★"
	}

	sizeStr := ""
	if expanded && isDir {
		if v, ok := sizes[path]; ok {
			if v != nil {
				sizeStr = fmt.Sprintf(" [%s]", size.Format(*v))
			} else {
				sizeStr = " [...]"
			}
		}
	}

	return fmt.Sprintf("%s %s%s%s", icon, name, star, sizeStr)
}

// BuildStarred returns the starred paths as a flat list of leaves,
// filtered to paths that still exist, ordered by lowercase basename.
func BuildStarred(starred map[string]bool) []*Node {
	paths := make([]string, 0, len(starred))
	for p := range starred {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool {
		return strings.ToLower(filepath.Base(paths[i])) < strings.ToLower(filepath.Base(paths[j]))
	})

	nodes := make([]*Node, 0, len(paths))
	for _, p := range paths {
		if !pathExists(p) {
			continue
		}
		nodes = append(nodes, &Node{
			Path:  p,
			Label: fmt.Sprintf("★ %s", p),
			IsDir: true,
		})
	}
	return nodes
}

// BuildBookmarks returns bookmarks in stored order, filtered to paths
// that still exist.
func BuildBookmarks(bookmarks []state.Bookmark) []*Node {
	nodes := make([]*Node, 0, len(bookmarks))
	for _, b := range bookmarks {
		if !pathExists(b.Path) {
			continue
		}
		label := fmt.Sprintf("📌 %s", b.Path)
		if b.Label != "" {
			label = fmt.Sprintf("📌 %s (%s)", b.Label, filepath.Base(b.Path))
		}
		nodes = append(nodes, &Node{
			Path:  b.Path,
			Label: label,
			IsDir: true,
		})
	}
	return nodes
}

// BuildRecent returns the recent paths in their given order (already
// most-recent-first), filtered to paths that still exist.
func BuildRecent(recent []string) []*Node {
	nodes := make([]*Node, 0, len(recent))
	for _, p := range recent {
		if !pathExists(p) {
			continue
		}
		nodes = append(nodes, &Node{
			Path:  p,
			Label: fmt.Sprintf("⏱ %s", p),
			IsDir: true,
		})
	}
	return nodes
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Flatten turns the forest into the ordered list of visible rows.
func Flatten(forest []*Node) []Visible {
	var rows []Visible
	var walk func(nodes []*Node, depth int)
	walk = func(nodes []*Node, depth int) {
		for _, n := range nodes {
			rows = append(rows, Visible{Node: n, Depth: depth})
			if n.Expanded {
				walk(n.Children, depth+1)
			}
		}
	}
	walk(forest, 0)
	return rows
}

// Index maps every path in the forest to its node.
func Index(forest []*Node) map[string]*Node {
	nodes := make(map[string]*Node)
	var walk func(ns []*Node)
	walk = func(ns []*Node) {
		for _, n := range ns {
			nodes[n.Path] = n
			walk(n.Children)
		}
	}
	walk(forest)
	return nodes
}

// Icon returns the display icon for an entry without touching the
// filesystem.
func Icon(path string, isDir, expanded bool) string {
	if isDir {
		return dirIcon(expanded)
	}
	return fileIcon(path)
}

// Paths collects every path in the forest, the snapshot the search
// index operates on.
func Paths(forest []*Node) []string {
	var paths []string
	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			paths = append(paths, n.Path)
			walk(n.Children)
		}
	}
	walk(forest)
	return paths
}
