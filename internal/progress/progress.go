package progress

import (
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// Reporter receives progress from a scan or a mirror run.
type Reporter interface {
	Start(total int)
	Step(item string)
	Finish()
}

// Nop discards progress.
type Nop struct{}

func (Nop) Start(int)   {}
func (Nop) Step(string) {}
func (Nop) Finish()     {}

// Bar renders a single-line progress bar with the directories of the
// most recent items.
type Bar struct {
	label       string
	total       int64
	current     int64
	width       int
	writer      io.Writer
	mu          sync.Mutex
	currentDirs []string
	enabled     bool
	lastUpdate  time.Time
}

// New returns a bar writing to w. Rendering is disabled when w is a file
// that is not a terminal.
func New(w io.Writer, label string) *Bar {
	return &Bar{
		label:   label,
		width:   40,
		writer:  w,
		enabled: isTerminal(w),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return true
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (b *Bar) Start(total int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.total = int64(total)
	b.current = 0
	b.currentDirs = b.currentDirs[:0]
	b.lastUpdate = time.Now()
}

// Step counts one finished item. Items are relative paths ("/dir/file").
func (b *Bar) Step(item string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.current++
	b.noteDirectory(path.Dir(item))

	if !b.enabled {
		return
	}

	// Update at most every 100ms to reduce flickering
	now := time.Now()
	if now.Sub(b.lastUpdate) > 100*time.Millisecond || b.current == b.total {
		b.lastUpdate = now
		b.render()
	}
}

// noteDirectory keeps the three most recently seen directories.
func (b *Bar) noteDirectory(dir string) {
	for _, d := range b.currentDirs {
		if d == dir {
			return
		}
	}
	b.currentDirs = append(b.currentDirs, dir)
	if len(b.currentDirs) > 3 {
		b.currentDirs = b.currentDirs[len(b.currentDirs)-3:]
	}
}

// render must be called with mu already locked
func (b *Bar) render() {
	if b.total == 0 {
		return
	}

	percent := float64(b.current) / float64(b.total) * 100
	filledWidth := int(float64(b.width) * float64(b.current) / float64(b.total))
	if filledWidth > b.width {
		filledWidth = b.width
	}

	bar := strings.Repeat("█", filledWidth) + strings.Repeat("░", b.width-filledWidth)

	var dirDisplay string
	if len(b.currentDirs) > 0 {
		dirDisplay = " | " + strings.Join(b.currentDirs, ", ")
	}

	fmt.Fprintf(b.writer, "\r\033[K%s [%s] %3d%% (%d/%d)%s",
		b.label, bar, int(percent), b.current, b.total, dirDisplay)
}

func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.enabled || b.total == 0 {
		return
	}

	b.current = b.total
	b.render()
	fmt.Fprintf(b.writer, "\n")
}

// Current returns the number of items stepped since Start.
func (b *Bar) Current() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return int(b.current)
}
