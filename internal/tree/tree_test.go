package tree

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/LFroesch/treenav/internal/size"
	"github.com/LFroesch/treenav/internal/state"
)

func mkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatal(err)
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
}

func build(t *testing.T, root string, st *state.State, sizes size.Cache) []*Node {
	t.Helper()
	forest, err := Build(root, st, sizes)
	if err != nil {
		t.Fatalf("Build(%s) failed: %v", root, err)
	}
	return forest
}

func names(forest []*Node) []string {
	out := make([]string, len(forest))
	for i, n := range forest {
		out[i] = filepath.Base(n.Path)
	}
	return out
}

func TestBuildOrdering(t *testing.T) {
	tempDir := t.TempDir()
	touch(t, filepath.Join(tempDir, "Beta.txt"))
	touch(t, filepath.Join(tempDir, "alpha.txt"))
	mkdir(t, filepath.Join(tempDir, "zdir"))
	mkdir(t, filepath.Join(tempDir, "Adir"))

	forest := build(t, tempDir, state.New(), size.Cache{})

	got := names(forest)
	want := []string{"Adir", "zdir", "alpha.txt", "Beta.txt"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestBuildHiddenFilter(t *testing.T) {
	tempDir := t.TempDir()
	touch(t, filepath.Join(tempDir, ".hidden"))
	touch(t, filepath.Join(tempDir, "visible"))
	mkdir(t, filepath.Join(tempDir, "sub"))
	touch(t, filepath.Join(tempDir, "sub", ".nested"))

	st := state.New()
	st.SetExpanded(filepath.Join(tempDir, "sub"), true)

	forest := build(t, tempDir, st, size.Cache{})
	for _, p := range Paths(forest) {
		if strings.HasPrefix(filepath.Base(p), ".") {
			t.Errorf("hidden entry %s present with ShowHidden=false", p)
		}
	}

	st.ShowHidden = true
	forest = build(t, tempDir, st, size.Cache{})
	found := false
	for _, p := range Paths(forest) {
		if filepath.Base(p) == ".hidden" {
			found = true
		}
	}
	if !found {
		t.Error("hidden entry missing with ShowHidden=true")
	}
}

func TestBuildRecursesOnlyExpanded(t *testing.T) {
	tempDir := t.TempDir()
	open := filepath.Join(tempDir, "open")
	closed := filepath.Join(tempDir, "closed")
	mkdir(t, open)
	mkdir(t, closed)
	touch(t, filepath.Join(open, "inside.txt"))
	touch(t, filepath.Join(closed, "secret.txt"))

	st := state.New()
	st.SetExpanded(open, true)

	forest := build(t, tempDir, st, size.Cache{})

	var openNode, closedNode *Node
	for _, n := range forest {
		switch n.Path {
		case open:
			openNode = n
		case closed:
			closedNode = n
		}
	}
	if openNode == nil || closedNode == nil {
		t.Fatal("expected both directories in forest")
	}

	if !openNode.Expanded || len(openNode.Children) != 1 {
		t.Errorf("expanded dir not materialized: %+v", openNode)
	}
	if closedNode.Expanded || closedNode.Children != nil {
		t.Errorf("collapsed dir was recursed into: %+v", closedNode)
	}
}

func TestBuildCollapsedNeverRead(t *testing.T) {
	tempDir := t.TempDir()
	locked := filepath.Join(tempDir, "locked")
	mkdir(t, locked)
	touch(t, filepath.Join(locked, "f"))

	// Remove read permission; a collapsed dir must never be read, so
	// the build stays error-free.
	if err := os.Chmod(locked, 0000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0755) })

	forest := build(t, tempDir, state.New(), size.Cache{})
	for _, n := range forest {
		if n.Err != ErrNone {
			t.Errorf("collapsed dir produced an error leaf: %+v", n)
		}
	}
}

func TestBuildErrorLeaf(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	tempDir := t.TempDir()
	locked := filepath.Join(tempDir, "locked")
	sibling := filepath.Join(tempDir, "sibling")
	mkdir(t, locked)
	mkdir(t, sibling)
	touch(t, filepath.Join(sibling, "ok.txt"))

	if err := os.Chmod(locked, 0000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0755) })

	st := state.New()
	st.SetExpanded(locked, true)
	st.SetExpanded(sibling, true)

	forest := build(t, tempDir, st, size.Cache{})

	var lockedNode, siblingNode *Node
	for _, n := range forest {
		switch n.Path {
		case locked:
			lockedNode = n
		case sibling:
			siblingNode = n
		}
	}
	if lockedNode == nil || siblingNode == nil {
		t.Fatal("expected both directories in forest")
	}

	if lockedNode.Err != ErrPermission {
		t.Errorf("expected permission error leaf, got %v", lockedNode.Err)
	}
	if !strings.Contains(lockedNode.Label, "Permission denied") {
		t.Errorf("error label missing annotation: %q", lockedNode.Label)
	}
	if len(siblingNode.Children) != 1 {
		t.Error("sibling subtree affected by error leaf")
	}
}

func TestBuildRootUnreadable(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	tempDir := t.TempDir()
	if err := os.Chmod(tempDir, 0000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(tempDir, 0755) })

	forest, err := Build(tempDir, state.New(), size.Cache{})
	if err == nil {
		t.Fatal("expected an error for an unreadable root")
	}
	if forest != nil {
		t.Errorf("expected nil forest, got %d nodes", len(forest))
	}
}

func TestLabelSizeAnnotation(t *testing.T) {
	tempDir := t.TempDir()
	sub := filepath.Join(tempDir, "sub")
	mkdir(t, sub)

	st := state.New()
	st.SetExpanded(sub, true)

	// Absent from the cache: no annotation at all
	forest := build(t, tempDir, st, size.Cache{})
	if strings.Contains(forest[0].Label, "[") {
		t.Errorf("unexpected size annotation: %q", forest[0].Label)
	}

	// Pending entry: placeholder
	cache := size.Cache{sub: nil}
	forest = build(t, tempDir, st, cache)
	if !strings.Contains(forest[0].Label, "[...]") {
		t.Errorf("expected pending placeholder, got %q", forest[0].Label)
	}

	// Resolved entry: formatted magnitude
	bytes := int64(2048)
	cache[sub] = &bytes
	forest = build(t, tempDir, st, cache)
	if !strings.Contains(forest[0].Label, "[2.0K]") {
		t.Errorf("expected resolved size, got %q", forest[0].Label)
	}

	// Collapsed dirs never carry a size annotation
	st.SetExpanded(sub, false)
	forest = build(t, tempDir, st, cache)
	if strings.Contains(forest[0].Label, "[") {
		t.Errorf("collapsed dir should not show size: %q", forest[0].Label)
	}
}

func TestLabelStarMarker(t *testing.T) {
	tempDir := t.TempDir()
	sub := filepath.Join(tempDir, "sub")
	mkdir(t, sub)

	st := state.New()
	st.ToggleStarred(sub)

	forest := build(t, tempDir, st, size.Cache{})
	if !strings.Contains(forest[0].Label, "★") {
		t.Errorf("starred dir missing marker: %q", forest[0].Label)
	}
}

func TestBuildStarred(t *testing.T) {
	tempDir := t.TempDir()
	b := filepath.Join(tempDir, "Bravo")
	a := filepath.Join(tempDir, "alpha")
	mkdir(t, a)
	mkdir(t, b)

	starred := map[string]bool{
		b: true,
		a: true,
		filepath.Join(tempDir, "gone"): true, // does not exist
	}

	nodes := BuildStarred(starred)
	if len(nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(nodes))
	}
	if nodes[0].Path != a || nodes[1].Path != b {
		t.Errorf("wrong order: %v", names(nodes))
	}
}

func TestBuildBookmarksOrderAndLabels(t *testing.T) {
	tempDir := t.TempDir()
	first := filepath.Join(tempDir, "zz")
	second := filepath.Join(tempDir, "aa")
	mkdir(t, first)
	mkdir(t, second)

	bms := []state.Bookmark{
		{Path: first, Label: "work"},
		{Path: second},
		{Path: filepath.Join(tempDir, "gone"), Label: "stale"},
	}

	nodes := BuildBookmarks(bms)
	if len(nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(nodes))
	}
	// Stored order, not name order
	if nodes[0].Path != first || nodes[1].Path != second {
		t.Errorf("bookmark order not preserved: %v", names(nodes))
	}
	if !strings.Contains(nodes[0].Label, "work") {
		t.Errorf("label missing: %q", nodes[0].Label)
	}
}

func TestBuildRecentKeepsOrder(t *testing.T) {
	tempDir := t.TempDir()
	newer := filepath.Join(tempDir, "newer")
	older := filepath.Join(tempDir, "older")
	mkdir(t, newer)
	mkdir(t, older)

	nodes := BuildRecent([]string{newer, older})
	if len(nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(nodes))
	}
	if nodes[0].Path != newer {
		t.Errorf("recency order not preserved: %v", names(nodes))
	}
}

func TestFlattenDepths(t *testing.T) {
	tempDir := t.TempDir()
	sub := filepath.Join(tempDir, "sub")
	mkdir(t, sub)
	touch(t, filepath.Join(sub, "leaf.txt"))

	st := state.New()
	st.SetExpanded(sub, true)

	rows := Flatten(build(t, tempDir, st, size.Cache{}))
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Depth != 0 || rows[1].Depth != 1 {
		t.Errorf("unexpected depths: %d, %d", rows[0].Depth, rows[1].Depth)
	}
	if rows[1].Node.Path != filepath.Join(sub, "leaf.txt") {
		t.Errorf("child not flattened after parent: %s", rows[1].Node.Path)
	}
}

func TestPathsCollectsEverything(t *testing.T) {
	tempDir := t.TempDir()
	sub := filepath.Join(tempDir, "sub")
	mkdir(t, sub)
	touch(t, filepath.Join(sub, "leaf.txt"))
	touch(t, filepath.Join(tempDir, "top.txt"))

	st := state.New()
	st.SetExpanded(sub, true)

	paths := Paths(build(t, tempDir, st, size.Cache{}))
	if len(paths) != 3 {
		t.Fatalf("expected 3 paths, got %d: %v", len(paths), paths)
	}
}
