// ABOUTME: Progress reporting for commands that work through several projects
// ABOUTME: Prints a single updating status line to a terminal and stays silent otherwise

package main

import (
	"fmt"
	"os"
	"sync"
)

// progressTracker counts finished items; safe for concurrent use
type progressTracker struct {
	mu        sync.Mutex
	out       *os.File
	tty       bool
	total     int
	finished  int
	closeOnce sync.Once
}

func newProgressTracker(out *os.File, total int) *progressTracker {
	return &progressTracker{
		out:   out,
		tty:   isTTY(out),
		total: total,
	}
}

// done records one finished item and redraws the status line
func (pt *progressTracker) done(name string) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	pt.finished++
	debugf("[PROGRESS] %d/%d %s", pt.finished, pt.total, name)

	// Guard: only draw on terminals, and only for more than one item
	if !pt.tty || pt.total < 2 {
		return
	}

	fmt.Fprintf(pt.out, "\r\033[KLoading %d/%d %s", pt.finished, pt.total, truncate(name, 50))
}

// close clears the status line exactly once
func (pt *progressTracker) close() {
	pt.closeOnce.Do(func() {
		pt.mu.Lock()
		defer pt.mu.Unlock()

		if pt.tty && pt.total >= 2 {
			fmt.Fprint(pt.out, "\r\033[K")
		}
	})
}
