package size

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path string, n int) {
	t.Helper()
	if err := os.WriteFile(path, make([]byte, n), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDirSize(t *testing.T) {
	tempDir := t.TempDir()
	writeFile(t, filepath.Join(tempDir, "a.bin"), 100)
	writeFile(t, filepath.Join(tempDir, "b.bin"), 200)

	sub := filepath.Join(tempDir, "sub")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(sub, "c.bin"), 50)

	if got := dirSize(tempDir); got != 350 {
		t.Errorf("dirSize = %d, want 350", got)
	}
}

func TestDirSizeMissingPath(t *testing.T) {
	// Errors during the walk contribute 0 and never fail the sum
	if got := dirSize("/nonexistent/path/xyz"); got != 0 {
		t.Errorf("dirSize on missing path = %d, want 0", got)
	}
}

func TestWorkerComputesAndDrains(t *testing.T) {
	tempDir := t.TempDir()
	writeFile(t, filepath.Join(tempDir, "f.bin"), 1234)

	w := NewWorker()
	defer w.Close()

	if !w.Request(tempDir) {
		t.Fatal("request unexpectedly dropped")
	}

	cache := Cache{tempDir: nil}
	deadline := time.Now().Add(5 * time.Second)
	for {
		if w.Drain(cache) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for worker result")
		}
		time.Sleep(10 * time.Millisecond)
	}

	got, ok := cache.Resolved(tempDir)
	if !ok {
		t.Fatal("cache entry still pending after drain")
	}
	if got != 1234 {
		t.Errorf("resolved size = %d, want 1234", got)
	}
}

func TestWorkerSurvivesBadPath(t *testing.T) {
	tempDir := t.TempDir()
	writeFile(t, filepath.Join(tempDir, "f.bin"), 10)

	w := NewWorker()
	defer w.Close()

	// A path error must not kill the worker
	w.Request("/nonexistent/path/xyz")
	w.Request(tempDir)

	cache := Cache{}
	deadline := time.Now().Add(5 * time.Second)
	for len(cache) < 2 {
		w.Drain(cache)
		if time.Now().After(deadline) {
			t.Fatalf("timed out, cache has %d entries", len(cache))
		}
		time.Sleep(10 * time.Millisecond)
	}

	if got, ok := cache.Resolved(tempDir); !ok || got != 10 {
		t.Errorf("second request not resolved correctly: %d, %v", got, ok)
	}
	if got, ok := cache.Resolved("/nonexistent/path/xyz"); !ok || got != 0 {
		t.Errorf("bad path should resolve to 0: %d, %v", got, ok)
	}
}

func TestRequestDropsWhenFull(t *testing.T) {
	// Fill the queue without a worker consuming it
	w := &Worker{
		requests: make(chan string, queueCap),
		results:  make(chan Result, queueCap),
	}

	for i := 0; i < queueCap; i++ {
		if !w.Request("/tmp") {
			t.Fatalf("request %d should have been accepted", i)
		}
	}
	if w.Request("/tmp") {
		t.Error("request beyond capacity should be dropped")
	}
}

func TestRequestOnceDedup(t *testing.T) {
	// No consuming goroutine, so queued jobs can be counted
	w := &Worker{
		requests: make(chan string, queueCap),
		results:  make(chan Result, queueCap),
	}
	cache := Cache{}

	if !w.RequestOnce(cache, "/dir") {
		t.Fatal("first request should enqueue")
	}
	if w.RequestOnce(cache, "/dir") {
		t.Error("second request for a pending path should not enqueue")
	}
	if len(w.requests) != 1 {
		t.Errorf("expected exactly 1 queued job, got %d", len(w.requests))
	}

	bytes := int64(42)
	cache["/resolved"] = &bytes
	if w.RequestOnce(cache, "/resolved") {
		t.Error("resolved path should not be re-requested")
	}
	if len(w.requests) != 1 {
		t.Errorf("queue should be untouched, got %d jobs", len(w.requests))
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{0, "0B"},
		{532, "532B"},
		{1024, "1.0K"},
		{1536, "1.5K"},
		{2 * 1024 * 1024, "2.0M"},
		{1181116006, "1.1G"},
	}

	for _, tt := range tests {
		if got := Format(tt.bytes); got != tt.expected {
			t.Errorf("Format(%d) = %q, want %q", tt.bytes, got, tt.expected)
		}
	}
}
