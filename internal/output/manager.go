package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Manager renders a stack of single-line tracks at the bottom of a terminal.
// Tracks are appended by Register and rewritten in place by Update; a single
// mutex guards both the track slice and the writer so escape sequences from
// concurrent updates never interleave.
type Manager struct {
	mu     sync.Mutex
	out    io.Writer
	width  WidthFunc
	tracks []string
}

type ManagerOptions struct {
	// Output receives the rendered rows. Default: os.Stdout
	Output io.Writer
	// Width reports the terminal width. Default: StdoutWidth
	Width WidthFunc
}

func NewManager(opts ManagerOptions) *Manager {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Width == nil {
		opts.Width = StdoutWidth
	}
	return &Manager{
		out:   opts.Output,
		width: opts.Width,
	}
}

// Register reserves a new row below the existing ones and returns its id.
func (m *Manager) Register() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := len(m.tracks)
	m.tracks = append(m.tracks, "")
	io.WriteString(m.out, "\n")
	return id
}

// Update replaces the text of track id and redraws that row only.
// Unknown ids are ignored.
func (m *Manager) Update(id int, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id < 0 || id >= len(m.tracks) {
		return
	}
	m.tracks[id] = text
	io.WriteString(m.out, m.renderLine(id, text))
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tracks)
}

// Text returns the last text written to track id.
func (m *Manager) Text(id int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id < 0 || id >= len(m.tracks) {
		return ""
	}
	return m.tracks[id]
}

func (m *Manager) renderLine(id int, text string) string {
	safe := max(terminalWidth(m.width)-1, 0)
	if VisibleLen(text) >= safe {
		text = TruncateANSI(text, safe)
	}
	up := len(m.tracks) - id
	var b strings.Builder
	b.WriteString("\x1b[?7l") // no wrap
	fmt.Fprintf(&b, "\x1b[%dA\r\x1b[2K", up)
	b.WriteString(text)
	fmt.Fprintf(&b, "\x1b[%dB", up)
	b.WriteString("\x1b[?7h")
	return b.String()
}
