package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/tonimelisma/gopener/internal/upload"
)

// progressInterval is how often the live progress line is redrawn.
const progressInterval = 150 * time.Millisecond

// isTerminal reports whether f is an interactive terminal.
func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// progressLine renders one snapshot ("1.2 MB / 3.4 MB  35%").
func progressLine(p upload.Progress) string {
	return fmt.Sprintf("%s / %s  %3.0f%%", formatSize(p.BytesUploaded), formatSize(p.TotalBytes), p.Percentage)
}

// renderProgress redraws poll() on w every interval until done is closed,
// then draws the final snapshot and ends the line. The line is rewritten in
// place with a carriage return, so w should be a terminal.
func renderProgress(done <-chan struct{}, poll func() upload.Progress, w io.Writer, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := ""
	draw := func() {
		line := progressLine(poll())
		if line == last {
			return
		}

		// Pad to clear leftovers from a longer previous line.
		fmt.Fprintf(w, "\r%-*s", len(last), line)
		last = line
	}

	for {
		select {
		case <-done:
			draw()
			fmt.Fprintln(w)

			return
		case <-ticker.C:
			draw()
		}
	}
}
