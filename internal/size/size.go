// Package size computes recursive directory sizes on a background
// goroutine, feeding results back to the UI loop through bounded
// channels.
package size

import (
	"fmt"
	"io/fs"
	"path/filepath"
)

const queueCap = 100

// Cache maps a directory path to its recursively computed byte total.
// A key that is present with a nil value marks a pending computation;
// entries are never removed for the lifetime of the session.
type Cache map[string]*int64

// Resolved returns the computed size for path and whether a resolved
// entry exists.
func (c Cache) Resolved(path string) (int64, bool) {
	if v, ok := c[path]; ok && v != nil {
		return *v, true
	}
	return 0, false
}

// Result carries one finished computation from the worker.
type Result struct {
	Path  string
	Bytes int64
}

// Worker owns the single background goroutine. The UI side never
// blocks: requests are try-sends and results are drained with
// try-receives. The worker's own receive is the only blocking point.
type Worker struct {
	requests chan string
	results  chan Result
}

// NewWorker starts the background goroutine and returns its handle.
func NewWorker() *Worker {
	w := &Worker{
		requests: make(chan string, queueCap),
		results:  make(chan Result, queueCap),
	}
	go w.run()
	return w
}

func (w *Worker) run() {
	for path := range w.requests {
		w.results <- Result{Path: path, Bytes: dirSize(path)}
	}
	close(w.results)
}

// Request enqueues a size computation for path. When the queue is full
// the request is silently dropped; re-expanding the directory later
// re-requests it. Reports whether the request was accepted.
func (w *Worker) Request(path string) bool {
	select {
	case w.requests <- path:
		return true
	default:
		return false
	}
}

// RequestOnce enqueues a computation for path only when the cache has
// no entry for it, pending or resolved. The entry is marked pending
// before the send, so a second call for the same path never enqueues a
// second job.
func (w *Worker) RequestOnce(cache Cache, path string) bool {
	if _, ok := cache[path]; ok {
		return false
	}
	cache[path] = nil
	return w.Request(path)
}

// Drain moves all currently available results into cache without
// blocking and reports whether anything arrived.
func (w *Worker) Drain(cache Cache) bool {
	got := false
	for {
		select {
		case res, ok := <-w.results:
			if !ok {
				return got
			}
			bytes := res.Bytes
			cache[res.Path] = &bytes
			got = true
		default:
			return got
		}
	}
}

// Close shuts the request side down; the worker finishes whatever is
// queued and exits. In-flight computations are not cancelled.
func (w *Worker) Close() {
	close(w.requests)
}

// dirSize sums the sizes of all regular files under path. Entries that
// error during the walk contribute 0; the sum itself never fails.
func dirSize(path string) int64 {
	var total int64
	filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			if info, err := d.Info(); err == nil {
				total += info.Size()
			}
		}
		return nil
	})
	return total
}

// Format renders a byte count as a compact magnitude: 532B, 1.5K,
// 2.0M, 1.1G.
func Format(bytes int64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)

	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.1fG", float64(bytes)/float64(gb))
	case bytes >= mb:
		return fmt.Sprintf("%.1fM", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.1fK", float64(bytes)/float64(kb))
	default:
		return fmt.Sprintf("%dB", bytes)
	}
}
