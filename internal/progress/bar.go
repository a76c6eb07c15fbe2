package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

const barWidth = 40

// Bar is a terminal progress bar for a batch of downloads. It is safe for
// concurrent use.
type Bar struct {
	out       io.Writer
	total     int
	current   int
	failed    int
	bytes     uint64
	mu        sync.Mutex
	startTime time.Time
	lastPrint time.Time
	done      bool
}

// New creates a progress bar for total items, rendered to out.
func New(out io.Writer, total int) *Bar {
	now := time.Now()
	return &Bar{
		out:       out,
		total:     total,
		startTime: now,
		lastPrint: now,
	}
}

// Done records one finished item of n bytes.
func (b *Bar) Done(n int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.current++
	if n > 0 {
		b.bytes += uint64(n)
	}
	b.maybeRender()
}

// Fail records one item that could not be fetched.
func (b *Bar) Fail() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.current++
	b.failed++
	b.maybeRender()
}

// Finish renders the final state and ends the line.
func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.done {
		b.render()
		fmt.Fprintln(b.out)
		b.done = true
	}
}

// Redraw at most twice a second, and always for the last item
func (b *Bar) maybeRender() {
	now := time.Now()
	if now.Sub(b.lastPrint) > 500*time.Millisecond || b.current >= b.total {
		b.render()
		b.lastPrint = now
	}
}

func (b *Bar) render() {
	if b.done {
		return
	}

	var percentage float64
	filled := barWidth
	if b.total > 0 {
		percentage = float64(b.current) / float64(b.total) * 100
		filled = barWidth * b.current / b.total
	}
	if filled > barWidth {
		filled = barWidth
	}

	elapsed := time.Since(b.startTime)

	fmt.Fprintf(b.out, "\r[%s%s] %d/%d (%.1f%%) %s - Elapsed: %s",
		strings.Repeat("█", filled),
		strings.Repeat("░", barWidth-filled),
		b.current,
		b.total,
		percentage,
		humanize.Bytes(b.bytes),
		formatDuration(elapsed),
	)
	if b.failed > 0 {
		fmt.Fprintf(b.out, " - %d failed", b.failed)
	}
	fmt.Fprint(b.out, "   ")
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
